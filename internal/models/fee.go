package models

import "github.com/shopspring/decimal"

// Fee is the amount owed by one student for one period. Fees are immutable;
// amendments go through payments.
type Fee struct {
	ID         string          `json:"id"`
	StudentID  string          `json:"studentId"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	AmountOwed decimal.Decimal `json:"amountOwed"`
}

// Period returns the billing period of the fee.
func (f Fee) Period() Period {
	return Period{Month: f.Month, Year: f.Year}
}

// Payment is money received for one student's period. Several payments may
// target the same period and nothing prevents overpaying.
type Payment struct {
	ID        string          `json:"id"`
	StudentID string          `json:"studentId"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
}

// Period returns the billing period the payment is attributed to.
func (p Payment) Period() Period {
	return Period{Month: p.Month, Year: p.Year}
}

// PaymentStatus classifies a student's billing situation.
type PaymentStatus string

const (
	PaymentStatusPaid       PaymentStatus = "PAID"
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusPartial    PaymentStatus = "PARTIAL"
	PaymentStatusDelinquent PaymentStatus = "DELINQUENT"
)

// Debt is one period where the student paid less than owed.
type Debt struct {
	Month   int             `json:"month"`
	Year    int             `json:"year"`
	Owed    decimal.Decimal `json:"owed"`
	Paid    decimal.Decimal `json:"paid"`
	Balance decimal.Decimal `json:"balance"`
}

// Period returns the billing period of the debt.
func (d Debt) Period() Period {
	return Period{Month: d.Month, Year: d.Year}
}
