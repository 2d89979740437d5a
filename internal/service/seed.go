package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// SeedOptions shapes a fresh installation.
type SeedOptions struct {
	GymName       string
	MaxCapacity   int
	DefaultAmount decimal.Decimal
	DemoStudents  bool
}

// SeedSnapshot returns the initial state following the wall clock with the
// default price table recorded for now's month.
func SeedSnapshot(now time.Time, opts SeedOptions) models.Snapshot {
	settings := models.DefaultSettings()
	if opts.GymName != "" {
		settings.GymName = opts.GymName
	}
	if opts.MaxCapacity > 0 {
		settings.MaxCapacityPerShift = opts.MaxCapacity
	}
	if opts.DefaultAmount.IsPositive() {
		settings.DefaultAmount = opts.DefaultAmount
	}

	period := models.PeriodOf(now)
	snap := models.Snapshot{
		Settings:    settings,
		Students:    []models.Student{},
		Fees:        []models.Fee{},
		Payments:    []models.Payment{},
		Expenses:    []models.Expense{},
		Guests:      []models.GuestRegistration{},
		Attendance:  []models.Attendance{},
		RateHistory: []models.TieredRateHistory{{Month: period.Month, Year: period.Year, Rates: models.DefaultRates()}},
	}
	if opts.DemoStudents {
		snap.Students = DemoStudents()
	}
	return snap
}

// DemoStudents is the sample roster loaded on first start and on reset.
func DemoStudents() []models.Student {
	return []models.Student{
		{
			ID:    "s1",
			Name:  "Juan Pérez",
			Email: "juan@example.com",
			Phone: "23454678",
			Schedule: []models.ScheduleSlot{
				{ID: "sc1", Day: models.Monday, StartTime: "08:00", EndTime: "09:00"},
				{ID: "sc2", Day: models.Wednesday, StartTime: "08:00", EndTime: "09:00"},
				{ID: "sc3", Day: models.Friday, StartTime: "08:00", EndTime: "09:00"},
			},
			JoinDate:    "2024-01-01",
			Status:      models.StudentStatusActive,
			BirthDate:   "1995-05-15",
			Address:     models.Address{Street: "Rivadavia", Number: "123", Locality: "Del Carril"},
			Evaluations: []models.BodyEvaluation{},
			Notes:       "Objetivo: Descenso de peso. Prefiere entrenar sin música fuerte.",
		},
		{
			ID:    "s2",
			Name:  "María García",
			Email: "maria@example.com",
			Phone: "23458765",
			Schedule: []models.ScheduleSlot{
				{ID: "sc4", Day: models.Monday, StartTime: "08:00", EndTime: "09:00"},
				{ID: "sc5", Day: models.Wednesday, StartTime: "08:00", EndTime: "09:00"},
			},
			JoinDate:    "2024-01-15",
			Status:      models.StudentStatusActive,
			BirthDate:   "1998-11-22",
			Address:     models.Address{Street: "Mitre", Number: "456", Locality: "Del Carril"},
			Evaluations: []models.BodyEvaluation{},
			Notes:       "Atleta de voley. Foco en potencia de salto.",
		},
		{
			ID:    "s3",
			Name:  "Carlos López",
			Email: "carlos@example.com",
			Phone: "23455566",
			Schedule: []models.ScheduleSlot{
				{ID: "sc6", Day: models.Monday, StartTime: "18:00", EndTime: "19:00"},
				{ID: "sc7", Day: models.Wednesday, StartTime: "18:00", EndTime: "19:00"},
				{ID: "sc8", Day: models.Friday, StartTime: "18:00", EndTime: "19:00"},
			},
			JoinDate:    "2024-02-10",
			Status:      models.StudentStatusActive,
			BirthDate:   "1990-03-10",
			Address:     models.Address{Street: "Sarmiento", Number: "789", Locality: "Del Carril"},
			Evaluations: []models.BodyEvaluation{},
		},
		{
			ID:    "s4",
			Name:  "Ana Martínez",
			Email: "ana@example.com",
			Phone: "23459998",
			Schedule: []models.ScheduleSlot{
				{ID: "sc9", Day: models.Tuesday, StartTime: "20:00", EndTime: "21:00"},
				{ID: "sc10", Day: models.Thursday, StartTime: "20:00", EndTime: "21:00"},
			},
			JoinDate:    "2024-03-05",
			Status:      models.StudentStatusActive,
			BirthDate:   "2001-07-30",
			Address:     models.Address{Street: "Belgrano", Number: "321", Locality: "Del Carril"},
			Evaluations: []models.BodyEvaluation{},
			Notes:       "Recuperación de lesión en menisco izquierdo.",
		},
	}
}
