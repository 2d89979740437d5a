package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTierForClamps(t *testing.T) {
	assert.Equal(t, 1, TierFor(0))
	assert.Equal(t, 3, TierFor(3))
	assert.Equal(t, 5, TierFor(6))
}

func TestPeriodOrdering(t *testing.T) {
	assert.True(t, Period{Month: 11, Year: 2023}.Before(Period{Month: 0, Year: 2024}))
	assert.False(t, Period{Month: 2, Year: 2024}.Before(Period{Month: 2, Year: 2024}))
	assert.Equal(t, Period{Month: 11, Year: 2023}, Period{Month: 0, Year: 2024}.Previous())
	assert.Equal(t, Period{Month: 2, Year: 2024}, PeriodOf(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2-2024", Period{Month: 2, Year: 2024}.Key())
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	chest := 90.0
	amount := decimal.NewFromInt(5000)
	snap := Snapshot{
		Students: []Student{{
			ID:          "s1",
			Schedule:    []ScheduleSlot{{ID: "a", Day: Monday, StartTime: "08:00", EndTime: "09:00"}},
			Evaluations: []BodyEvaluation{{ID: "e1", Measurements: Measurements{Chest: &chest}}},
		}},
		Guests:      []GuestRegistration{{ID: "g1", Amount: &amount}},
		RateHistory: []TieredRateHistory{{Month: 2, Year: 2024, Rates: DefaultRates()}},
	}

	clone := snap.Clone()
	clone.Students[0].Schedule[0].StartTime = "09:00"
	*clone.Students[0].Evaluations[0].Measurements.Chest = 100
	*clone.Guests[0].Amount = decimal.NewFromInt(1)
	clone.RateHistory[0].Rates[1] = decimal.NewFromInt(1)

	assert.Equal(t, "08:00", snap.Students[0].Schedule[0].StartTime)
	assert.Equal(t, 90.0, *snap.Students[0].Evaluations[0].Measurements.Chest)
	assert.True(t, snap.Guests[0].Amount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, snap.RateHistory[0].Rates[1].Equal(decimal.NewFromInt(15000)))
}

func TestSettingsApply(t *testing.T) {
	now := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	logo := "data:image/png;base64,AA=="
	s := DefaultSettings()
	s.SimulatedDate = now
	s.GymLogo = &logo

	name := "Iron"
	capacity := 4
	out := s.Apply(SettingsPatch{GymName: &name, MaxCapacityPerShift: &capacity, ClearLogo: true})

	assert.Equal(t, "Iron", out.GymName)
	assert.Equal(t, 4, out.MaxCapacityPerShift)
	assert.Nil(t, out.GymLogo)
	assert.Equal(t, DefaultDebtTemplate, out.WhatsappTemplateDebt)
	assert.True(t, SettingsPatch{}.Empty())
}

func TestWeekdayValid(t *testing.T) {
	assert.True(t, Wednesday.Valid())
	assert.False(t, Weekday("Sab").Valid())
}
