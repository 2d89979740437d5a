package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// PeriodRequest selects a billing period; month is 0-indexed.
type PeriodRequest struct {
	Month *int `json:"month" validate:"required,min=0,max=11"`
	Year  int  `json:"year" validate:"required,min=2000,max=2100"`
}

// Period converts the request into a model period.
func (p PeriodRequest) Period() models.Period {
	month := 0
	if p.Month != nil {
		month = *p.Month
	}
	return models.Period{Month: month, Year: p.Year}
}

// GenerateFeesRequest targets a period; an empty body means the current one.
type GenerateFeesRequest struct {
	Month *int `json:"month" validate:"omitempty,min=0,max=11"`
	Year  *int `json:"year" validate:"omitempty,min=2000,max=2100"`
}

// GenerateFeesResponse lists the fees created by a run.
type GenerateFeesResponse struct {
	Month   int          `json:"month"`
	Year    int          `json:"year"`
	Created []models.Fee `json:"created"`
}

// FeeFilter narrows fee listings.
type FeeFilter struct {
	StudentID string
	Month     *int
	Year      *int
}

// PaymentRequest records a payment against a period.
type PaymentRequest struct {
	StudentID string          `json:"studentId" validate:"required"`
	Month     *int            `json:"month" validate:"required,min=0,max=11"`
	Year      int             `json:"year" validate:"required,min=2000,max=2100"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Date      string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ExpressPaymentRequest spreads one amount over several outstanding periods.
type ExpressPaymentRequest struct {
	StudentID string          `json:"studentId" validate:"required"`
	Periods   []PeriodRequest `json:"periods" validate:"required,min=1,dive"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Date      string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ExpressPaymentResponse lists the payments created and what was left over.
type ExpressPaymentResponse struct {
	Payments  []models.Payment `json:"payments"`
	Remainder decimal.Decimal  `json:"remainder"`
}

// ExpenseRequest creates or replaces an expense.
type ExpenseRequest struct {
	Category    string          `json:"category" validate:"required,max=60"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"max=500"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
}

// GuestRequest registers a walk-in visit.
type GuestRequest struct {
	Name          string           `json:"name" validate:"required,max=120"`
	Phone         string           `json:"phone" validate:"omitempty,max=32"`
	Date          string           `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string           `json:"time" validate:"required,clock"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod string           `json:"paymentMethod" validate:"omitempty,max=40"`
}

// AttendanceToggleRequest flips attendance for a session.
type AttendanceToggleRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,clock"`
}

// AttendanceToggleResponse reports the state after toggling.
type AttendanceToggleResponse struct {
	StudentID string `json:"studentId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Present   bool   `json:"present"`
}

// RatesRequest replaces the price table of one period.
type RatesRequest struct {
	Rates models.RateTable `json:"rates" validate:"required"`
}

// RatesResponse is the price table in force for a period.
type RatesResponse struct {
	Month int              `json:"month"`
	Year  int              `json:"year"`
	Rates models.RateTable `json:"rates"`
}

// GymInfoRequest updates the gym name and logo. A null logo removes it.
type GymInfoRequest struct {
	GymName string  `json:"gymName" validate:"required,max=120"`
	GymLogo *string `json:"gymLogo"`
}

// TemplatesRequest updates both WhatsApp templates.
type TemplatesRequest struct {
	Agenda string `json:"whatsappTemplateAgenda" validate:"required,max=1000"`
	Debt   string `json:"whatsappTemplateDebt" validate:"required,max=1000"`
}

// CapacityRequest sets the per-shift limit.
type CapacityRequest struct {
	MaxCapacityPerShift int `json:"maxCapacityPerShift" validate:"required,min=1,max=500"`
}

// DefaultAmountRequest sets the reference monthly amount.
type DefaultAmountRequest struct {
	DefaultAmount decimal.Decimal `json:"defaultAmount" validate:"gte=0"`
}

// ClockRequest pins the simulated instant.
type ClockRequest struct {
	SimulatedDate time.Time `json:"simulatedDate"`
}

// ShiftClockRequest moves the simulated date by whole days.
type ShiftClockRequest struct {
	Days int `json:"days" validate:"ne=0,min=-3660,max=3660"`
}

// ClockDayRequest moves the simulated date within the current month.
type ClockDayRequest struct {
	Day int `json:"day" validate:"required,min=1,max=31"`
}

// ClockResponse describes the simulated clock.
type ClockResponse struct {
	SimulatedDate time.Time `json:"simulatedDate"`
	Wall          time.Time `json:"wall"`
	Date          string    `json:"date"`
	Day           int       `json:"day"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	Simulated     bool      `json:"simulated"`
}
