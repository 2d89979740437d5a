package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// Finance period selectors.
const (
	FinancePeriodCurrent  = "CURRENT"
	FinancePeriodPrevious = "PREVIOUS"
	FinancePeriodCustom   = "CUSTOM"
	FinancePeriodNone     = "NONE"
)

// FinanceFilter selects the date range of the finance summary.
type FinanceFilter struct {
	Period string `form:"period" validate:"omitempty,oneof=CURRENT PREVIOUS CUSTOM NONE"`
	Start  string `form:"start" validate:"omitempty,datetime=2006-01-02"`
	End    string `form:"end" validate:"omitempty,datetime=2006-01-02"`
}

// StudentCollection aggregates payments received from one student.
type StudentCollection struct {
	StudentID string          `json:"studentId"`
	Name      string          `json:"name"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}

// FinanceSummaryResponse is the finance dashboard payload.
type FinanceSummaryResponse struct {
	Period              string              `json:"period"`
	Start               string              `json:"start,omitempty"`
	End                 string              `json:"end,omitempty"`
	TotalCollected      decimal.Decimal     `json:"totalCollected"`
	TotalExpenses       decimal.Decimal     `json:"totalExpenses"`
	NetProfit           decimal.Decimal     `json:"netProfit"`
	TotalDelinquentDebt decimal.Decimal     `json:"totalDelinquentDebt"`
	ActiveStudents      int                 `json:"activeStudents"`
	CollectedByStudent  []StudentCollection `json:"collectedByStudent"`
	Expenses            []models.Expense    `json:"expenses"`
	CurrentRates        models.RateTable    `json:"currentRates"`
}

// MonthlyFinance is one month of the yearly series.
type MonthlyFinance struct {
	Month    int             `json:"month"`
	Name     string          `json:"name"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// YearlyFinanceResponse holds twelve monthly entries.
type YearlyFinanceResponse struct {
	Year   int              `json:"year"`
	Months []MonthlyFinance `json:"months"`
}

// DelinquentEntry is one student of the delinquent list.
type DelinquentEntry struct {
	StudentID string          `json:"studentId"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	TotalDebt decimal.Decimal `json:"totalDebt"`
	Debts     []models.Debt   `json:"debts"`
}

// DelinquentsResponse lists delinquent students, highest debt first.
type DelinquentsResponse struct {
	Total    decimal.Decimal   `json:"total"`
	Students []DelinquentEntry `json:"students"`
}

// Agenda shift filters by start hour.
const (
	ShiftMorning   = "MORNING"
	ShiftAfternoon = "AFTERNOON"
	ShiftNight     = "NIGHT"
)

// AgendaFilter narrows the agenda grid.
type AgendaFilter struct {
	Day   string `form:"day" validate:"omitempty,weekday"`
	Shift string `form:"shift" validate:"omitempty,oneof=MORNING AFTERNOON NIGHT"`
	Date  string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

// AgendaStudent is a student shown inside an agenda cell.
type AgendaStudent struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	IsNew         bool                 `json:"isNew"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Present       bool                 `json:"present"`
}

// AgendaShift is one (day, start time) cell of the agenda.
type AgendaShift struct {
	Day       models.Weekday  `json:"day"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
	Count     int             `json:"count"`
	Capacity  int             `json:"capacity"`
	Full      bool            `json:"full"`
	Students  []AgendaStudent `json:"students"`
}

// AgendaResponse is the weekly agenda grid.
type AgendaResponse struct {
	Date     string        `json:"date"`
	Capacity int           `json:"capacity"`
	Shifts   []AgendaShift `json:"shifts"`
}
