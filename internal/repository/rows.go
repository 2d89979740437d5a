package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

type studentRow struct {
	ID              string         `db:"id"`
	Name            string         `db:"name"`
	Email           string         `db:"email"`
	Phone           string         `db:"phone"`
	AddressStreet   string         `db:"address_street"`
	AddressNumber   string         `db:"address_number"`
	AddressLocality string         `db:"address_locality"`
	BirthDate       string         `db:"birth_date"`
	JoinDate        string         `db:"join_date"`
	Status          string         `db:"status"`
	Schedule        types.JSONText `db:"schedule"`
	Evaluations     types.JSONText `db:"evaluations"`
	Notes           string         `db:"notes"`
}

func newStudentRow(s models.Student) (studentRow, error) {
	schedule := s.Schedule
	if schedule == nil {
		schedule = []models.ScheduleSlot{}
	}
	evaluations := s.Evaluations
	if evaluations == nil {
		evaluations = []models.BodyEvaluation{}
	}
	scheduleJSON, err := json.Marshal(schedule)
	if err != nil {
		return studentRow{}, fmt.Errorf("marshal schedule: %w", err)
	}
	evaluationsJSON, err := json.Marshal(evaluations)
	if err != nil {
		return studentRow{}, fmt.Errorf("marshal evaluations: %w", err)
	}
	return studentRow{
		ID:              s.ID,
		Name:            s.Name,
		Email:           s.Email,
		Phone:           s.Phone,
		AddressStreet:   s.Address.Street,
		AddressNumber:   s.Address.Number,
		AddressLocality: s.Address.Locality,
		BirthDate:       s.BirthDate,
		JoinDate:        s.JoinDate,
		Status:          string(s.Status),
		Schedule:        types.JSONText(scheduleJSON),
		Evaluations:     types.JSONText(evaluationsJSON),
		Notes:           s.Notes,
	}, nil
}

func (r studentRow) model() (models.Student, error) {
	s := models.Student{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		JoinDate:    r.JoinDate,
		Status:      models.StudentStatus(r.Status),
		BirthDate:   r.BirthDate,
		Address:     models.Address{Street: r.AddressStreet, Number: r.AddressNumber, Locality: r.AddressLocality},
		Notes:       r.Notes,
		Schedule:    []models.ScheduleSlot{},
		Evaluations: []models.BodyEvaluation{},
	}
	if len(r.Schedule) > 0 {
		if err := r.Schedule.Unmarshal(&s.Schedule); err != nil {
			return models.Student{}, fmt.Errorf("decode schedule of %s: %w", r.ID, err)
		}
	}
	if len(r.Evaluations) > 0 {
		if err := r.Evaluations.Unmarshal(&s.Evaluations); err != nil {
			return models.Student{}, fmt.Errorf("decode evaluations of %s: %w", r.ID, err)
		}
	}
	return s, nil
}

type feeRow struct {
	ID         string          `db:"id"`
	StudentID  string          `db:"student_id"`
	Month      int             `db:"month"`
	Year       int             `db:"year"`
	AmountOwed decimal.Decimal `db:"amount_owed"`
}

func (r feeRow) model() models.Fee {
	return models.Fee{ID: r.ID, StudentID: r.StudentID, Month: r.Month, Year: r.Year, AmountOwed: r.AmountOwed}
}

type paymentRow struct {
	ID        string          `db:"id"`
	StudentID string          `db:"student_id"`
	Month     int             `db:"month"`
	Year      int             `db:"year"`
	Amount    decimal.Decimal `db:"amount"`
	Date      string          `db:"date"`
}

func (r paymentRow) model() models.Payment {
	return models.Payment{ID: r.ID, StudentID: r.StudentID, Month: r.Month, Year: r.Year, Amount: r.Amount, Date: r.Date}
}

type expenseRow struct {
	ID          string          `db:"id"`
	Category    string          `db:"category"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	Date        string          `db:"date"`
}

func (r expenseRow) model() models.Expense {
	return models.Expense{ID: r.ID, Category: r.Category, Amount: r.Amount, Description: r.Description, Date: r.Date}
}

type guestRow struct {
	ID            string              `db:"id"`
	Name          string              `db:"name"`
	Phone         string              `db:"phone"`
	Date          string              `db:"date"`
	Time          string              `db:"time"`
	Amount        decimal.NullDecimal `db:"amount"`
	PaymentMethod sql.NullString      `db:"payment_method"`
}

func newGuestRow(g models.GuestRegistration) guestRow {
	row := guestRow{ID: g.ID, Name: g.Name, Phone: g.Phone, Date: g.Date, Time: g.Time}
	if g.Amount != nil {
		row.Amount = decimal.NewNullDecimal(*g.Amount)
	}
	if g.PaymentMethod != "" {
		row.PaymentMethod = sql.NullString{String: g.PaymentMethod, Valid: true}
	}
	return row
}

func (r guestRow) model() models.GuestRegistration {
	g := models.GuestRegistration{ID: r.ID, Name: r.Name, Phone: r.Phone, Date: r.Date, Time: r.Time, PaymentMethod: r.PaymentMethod.String}
	if r.Amount.Valid {
		amount := r.Amount.Decimal
		g.Amount = &amount
	}
	return g
}

type attendanceRow struct {
	StudentID string `db:"student_id"`
	Date      string `db:"date"`
	Time      string `db:"time"`
	Present   bool   `db:"present"`
}

func (r attendanceRow) model() models.Attendance {
	return models.Attendance{StudentID: r.StudentID, Date: r.Date, Time: r.Time, Present: r.Present}
}

type rateHistoryRow struct {
	Month int            `db:"month"`
	Year  int            `db:"year"`
	Rates types.JSONText `db:"rates"`
}

func newRateHistoryRow(h models.TieredRateHistory) (rateHistoryRow, error) {
	raw, err := json.Marshal(h.Rates)
	if err != nil {
		return rateHistoryRow{}, fmt.Errorf("marshal rates: %w", err)
	}
	return rateHistoryRow{Month: h.Month, Year: h.Year, Rates: types.JSONText(raw)}, nil
}

func (r rateHistoryRow) model() (models.TieredRateHistory, error) {
	rates := models.RateTable{}
	if err := r.Rates.Unmarshal(&rates); err != nil {
		return models.TieredRateHistory{}, fmt.Errorf("decode rates %d-%d: %w", r.Month, r.Year, err)
	}
	return models.TieredRateHistory{Month: r.Month, Year: r.Year, Rates: rates}, nil
}

type settingsRow struct {
	GymName                string          `db:"gym_name"`
	GymLogo                sql.NullString  `db:"gym_logo"`
	WhatsappTemplateAgenda string          `db:"whatsapp_template_agenda"`
	WhatsappTemplateDebt   string          `db:"whatsapp_template_debt"`
	SimulatedDate          sql.NullTime    `db:"simulated_date"`
	DefaultAmount          decimal.Decimal `db:"default_amount"`
	MaxCapacityPerShift    int             `db:"max_capacity_per_shift"`
}

func newSettingsRow(s models.Settings) settingsRow {
	row := settingsRow{
		GymName:                s.GymName,
		WhatsappTemplateAgenda: s.WhatsappTemplateAgenda,
		WhatsappTemplateDebt:   s.WhatsappTemplateDebt,
		SimulatedDate:          nullTime(s.SimulatedDate),
		DefaultAmount:          s.DefaultAmount,
		MaxCapacityPerShift:    s.MaxCapacityPerShift,
	}
	if s.GymLogo != nil {
		row.GymLogo = sql.NullString{String: *s.GymLogo, Valid: true}
	}
	return row
}

func (r settingsRow) model() models.Settings {
	s := models.Settings{
		GymName:                r.GymName,
		WhatsappTemplateAgenda: r.WhatsappTemplateAgenda,
		WhatsappTemplateDebt:   r.WhatsappTemplateDebt,
		DefaultAmount:          r.DefaultAmount,
		MaxCapacityPerShift:    r.MaxCapacityPerShift,
	}
	if r.SimulatedDate.Valid {
		s.SimulatedDate = r.SimulatedDate.Time
	}
	if r.GymLogo.Valid {
		logo := r.GymLogo.String
		s.GymLogo = &logo
	}
	return s
}

// nullTime stores a zero instant as NULL.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
