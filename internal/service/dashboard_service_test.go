package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

type stateReaderStub struct {
	snap  models.Snapshot
	clock *Clock
}

func (s stateReaderStub) Snapshot() models.Snapshot { return s.snap }
func (s stateReaderStub) Clock() *Clock             { return s.clock }

func financeState() stateReaderStub {
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)
	snap := baseSnapshot(now, 2,
		activeStudent("s1", slot(models.Monday, "08:00")),
		activeStudent("s2", slot(models.Monday, "08:00"), slot(models.Tuesday, "19:00")),
	)
	snap.Students[1].Name = "Ana"
	snap.Fees = []models.Fee{
		{ID: "f1", StudentID: "s1", Month: 2, Year: 2025, AmountOwed: dec(15000)},
		{ID: "f2", StudentID: "s2", Month: 2, Year: 2025, AmountOwed: dec(18000)},
	}
	snap.Payments = []models.Payment{
		{ID: "p1", StudentID: "s1", Month: 2, Year: 2025, Amount: dec(15000), Date: "2025-03-02"},
		{ID: "p2", StudentID: "gone", Month: 1, Year: 2025, Amount: dec(4000), Date: "2025-03-03"},
		{ID: "p3", StudentID: "s1", Month: 1, Year: 2025, Amount: dec(9000), Date: "2025-02-10"},
	}
	snap.Expenses = []models.Expense{
		{ID: "e1", Category: "Luz", Amount: dec(3000), Date: "2025-03-01"},
		{ID: "e2", Category: "Agua", Amount: dec(1000), Date: "2025-02-28"},
	}
	snap.Attendance = []models.Attendance{{StudentID: "s2", Date: "2025-03-17", Time: "08:00", Present: true}}
	return stateReaderStub{snap: snap, clock: fixedClock(now)}
}

func TestResolveRange(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	period, rng, err := ResolveRange(dto.FinanceFilter{}, now)
	require.NoError(t, err)
	assert.Equal(t, dto.FinancePeriodCurrent, period)
	assert.Equal(t, DateRange{Start: "2025-01-01", End: "2025-01-31"}, rng)

	_, rng, err = ResolveRange(dto.FinanceFilter{Period: "previous"}, now)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Start: "2024-12-01", End: "2024-12-31"}, rng)

	_, _, err = ResolveRange(dto.FinanceFilter{Period: dto.FinancePeriodCustom, Start: "2025-02-01"}, now)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, rng, err = ResolveRange(dto.FinanceFilter{Period: dto.FinancePeriodNone}, now)
	require.NoError(t, err)
	assert.True(t, rng.Contains("1999-01-01"))
}

func TestFinanceSummary(t *testing.T) {
	svc := NewDashboardService(financeState(), nil)

	summary, err := svc.Finance(dto.FinanceFilter{})
	require.NoError(t, err)
	assert.True(t, summary.TotalCollected.Equal(dec(19000)))
	assert.True(t, summary.TotalExpenses.Equal(dec(3000)))
	assert.True(t, summary.NetProfit.Equal(dec(16000)))
	assert.True(t, summary.TotalDelinquentDebt.Equal(dec(18000)))
	assert.Equal(t, 2, summary.ActiveStudents)
	require.Len(t, summary.CollectedByStudent, 2)
	assert.Equal(t, "s1", summary.CollectedByStudent[0].StudentID)
	assert.Equal(t, unknownStudentName, summary.CollectedByStudent[1].Name)

	all, err := svc.Finance(dto.FinanceFilter{Period: dto.FinancePeriodNone})
	require.NoError(t, err)
	assert.True(t, all.TotalCollected.Equal(dec(28000)))
	assert.True(t, all.TotalExpenses.Equal(dec(4000)))
}

func TestYearlyFinance(t *testing.T) {
	svc := NewDashboardService(financeState(), nil)

	yearly := svc.Yearly(0)
	assert.Equal(t, 2025, yearly.Year)
	require.Len(t, yearly.Months, 12)
	assert.True(t, yearly.Months[1].Income.Equal(dec(13000)))
	assert.True(t, yearly.Months[1].Expenses.Equal(dec(1000)))
	assert.True(t, yearly.Months[2].Net.Equal(dec(12000)))
	assert.Equal(t, "Marzo", yearly.Months[2].Name)
}

func TestDelinquentsSortedByDebt(t *testing.T) {
	svc := NewDashboardService(financeState(), nil)

	resp := svc.Delinquents()
	require.Len(t, resp.Students, 1)
	assert.Equal(t, "s2", resp.Students[0].StudentID)
	assert.True(t, resp.Total.Equal(dec(18000)))
}

func TestAgendaGroupsByShift(t *testing.T) {
	svc := NewDashboardService(financeState(), nil)

	agenda := svc.Agenda(dto.AgendaFilter{Day: "Lun", Date: "2025-03-17"})
	require.Len(t, agenda.Shifts, 1)
	shift := agenda.Shifts[0]
	assert.Equal(t, 2, shift.Count)
	assert.True(t, shift.Full)
	require.Len(t, shift.Students, 2)
	assert.False(t, shift.Students[0].Present)
	assert.True(t, shift.Students[1].Present)
	assert.Equal(t, models.PaymentStatusDelinquent, shift.Students[1].PaymentStatus)

	night := svc.Agenda(dto.AgendaFilter{Shift: dto.ShiftNight})
	require.Len(t, night.Shifts, 1)
	assert.Equal(t, "19:00", night.Shifts[0].StartTime)
	assert.Equal(t, "2025-03-20", night.Date)
}
