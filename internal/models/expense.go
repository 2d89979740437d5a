package models

import "github.com/shopspring/decimal"

// Expense is an operating cost, unrelated to students.
type Expense struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// GuestRegistration records a walk-in or trial visit.
type GuestRegistration struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Phone         string           `json:"phone"`
	Date          string           `json:"date"`
	Time          string           `json:"time"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
}

// Attendance marks a student present at a session. A missing record means
// "not recorded", never "absent".
type Attendance struct {
	StudentID string `json:"studentId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Present   bool   `json:"present"`
}

// Matches reports whether the record has the given composite key.
func (a Attendance) Matches(studentID, date, time string) bool {
	return a.StudentID == studentID && a.Date == date && a.Time == time
}
