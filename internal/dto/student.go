package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// ScheduleSlotRequest is a weekly shift submitted by a client.
type ScheduleSlotRequest struct {
	ID        string `json:"id"`
	Day       string `json:"day" validate:"required,weekday"`
	StartTime string `json:"startTime" validate:"required,clock"`
	EndTime   string `json:"endTime" validate:"omitempty,clock"`
}

// AddressRequest carries the postal address.
type AddressRequest struct {
	Street   string `json:"street" validate:"max=120"`
	Number   string `json:"number" validate:"max=16"`
	Locality string `json:"locality" validate:"max=120"`
}

// StudentRequest creates or replaces a student. Status is ignored on create.
type StudentRequest struct {
	Name      string                `json:"name" validate:"required,max=120"`
	Email     string                `json:"email" validate:"omitempty,email"`
	Phone     string                `json:"phone" validate:"omitempty,max=32"`
	Schedule  []ScheduleSlotRequest `json:"schedule" validate:"dive"`
	JoinDate  string                `json:"joinDate" validate:"omitempty,datetime=2006-01-02"`
	BirthDate string                `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Status    string                `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Address   AddressRequest        `json:"address"`
	Notes     string                `json:"notes" validate:"max=2000"`
}

// StudentFilter narrows the roster listing.
type StudentFilter struct {
	Search string
	Status string
}

// MeasurementsRequest holds optional body measurements.
type MeasurementsRequest struct {
	Chest *float64 `json:"chest" validate:"omitempty,gt=0"`
	Waist *float64 `json:"waist" validate:"omitempty,gt=0"`
	Hips  *float64 `json:"hips" validate:"omitempty,gt=0"`
	Arms  *float64 `json:"arms" validate:"omitempty,gt=0"`
}

// EvaluationRequest appends a body evaluation to a student.
type EvaluationRequest struct {
	Date         string              `json:"date" validate:"required,datetime=2006-01-02"`
	Weight       float64             `json:"weight" validate:"gt=0"`
	Measurements MeasurementsRequest `json:"measurements"`
}

// MoveSlotRequest moves a student from one shift to another.
type MoveSlotRequest struct {
	FromDay       string `json:"fromDay" validate:"required,weekday"`
	FromStartTime string `json:"fromStartTime" validate:"required,clock"`
	ToDay         string `json:"toDay" validate:"required,weekday"`
	ToStartTime   string `json:"toStartTime" validate:"required,clock"`
}

// MoveSlotResponse reports the outcome of a move.
type MoveSlotResponse struct {
	Moved   bool            `json:"moved"`
	Student *models.Student `json:"student,omitempty"`
}

// CheckSlotRequest asks whether candidate can join a draft schedule.
type CheckSlotRequest struct {
	StudentID string                `json:"studentId"`
	Schedule  []ScheduleSlotRequest `json:"schedule" validate:"dive"`
	Candidate ScheduleSlotRequest   `json:"candidate"`
}

// CheckSlotResponse reports a successful slot check.
type CheckSlotResponse struct {
	Available bool `json:"available"`
	Occupancy int  `json:"occupancy"`
	Capacity  int  `json:"capacity"`
}

// StudentOverview is a roster row with its billing situation.
type StudentOverview struct {
	models.Student
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	TotalDebt     decimal.Decimal      `json:"totalDebt"`
	IsNew         bool                 `json:"isNew"`
}

// DebtResponse lists a student's outstanding periods.
type DebtResponse struct {
	StudentID string               `json:"studentId"`
	Status    models.PaymentStatus `json:"status"`
	Debts     []models.Debt        `json:"debts"`
	TotalDebt decimal.Decimal      `json:"totalDebt"`
}

// StatusResponse carries a student's payment status.
type StatusResponse struct {
	StudentID string               `json:"studentId"`
	Status    models.PaymentStatus `json:"status"`
}

// MessageResponse is a rendered WhatsApp message and its click-to-chat link.
type MessageResponse struct {
	StudentID string `json:"studentId"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Link      string `json:"link"`
}
