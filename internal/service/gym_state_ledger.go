package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

// ListFees returns fees in creation order.
func (s *GymStateService) ListFees(filter dto.FeeFilter) []models.Fee {
	out := []models.Fee{}
	for _, fee := range s.Snapshot().Fees {
		if filter.StudentID != "" && fee.StudentID != filter.StudentID {
			continue
		}
		if filter.Month != nil && fee.Month != *filter.Month {
			continue
		}
		if filter.Year != nil && fee.Year != *filter.Year {
			continue
		}
		out = append(out, fee)
	}
	return out
}

// GenerateFees bills every active student lacking a fee for the requested
// period, defaulting to the simulated one. Re-running is a no-op.
func (s *GymStateService) GenerateFees(ctx context.Context, req dto.GenerateFeesRequest) (dto.GenerateFeesResponse, error) {
	if err := s.validate(req); err != nil {
		return dto.GenerateFeesResponse{}, err
	}
	var period models.Period
	var created []models.Fee
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, now time.Time) ([]WriteIntent, error) {
		period = models.PeriodOf(now)
		if req.Month != nil {
			period.Month = *req.Month
		}
		if req.Year != nil {
			period.Year = *req.Year
		}
		created = GenerateFees(*next, period, s.newID)
		next.Fees = append(next.Fees, created...)
		s.metrics.AddFeesGenerated(len(created))
		return feeIntents(created), nil
	})
	if err != nil {
		return dto.GenerateFeesResponse{}, err
	}
	if created == nil {
		created = []models.Fee{}
	}
	s.logger.Info("fees generated", zap.String("period", period.String()), zap.Int("count", len(created)))
	return dto.GenerateFeesResponse{Month: period.Month, Year: period.Year, Created: created}, nil
}

// ListPayments returns payments, optionally for one student.
func (s *GymStateService) ListPayments(studentID string) []models.Payment {
	out := []models.Payment{}
	for _, p := range s.Snapshot().Payments {
		if studentID != "" && p.StudentID != studentID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AddPayment records money received for a student's period. Overpaying is
// allowed. The date defaults to the simulated day.
func (s *GymStateService) AddPayment(ctx context.Context, req dto.PaymentRequest) (models.Payment, error) {
	if err := s.validate(req); err != nil {
		return models.Payment{}, err
	}
	var payment models.Payment
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, now time.Time) ([]WriteIntent, error) {
		if _, idx := next.FindStudent(req.StudentID); idx < 0 {
			return nil, studentNotFound(req.StudentID)
		}
		payment = models.Payment{
			ID:        s.newID(),
			StudentID: req.StudentID,
			Month:     *req.Month,
			Year:      req.Year,
			Amount:    req.Amount,
			Date:      dateOrToday(req.Date, now),
		}
		next.Payments = append(next.Payments, payment)
		return []WriteIntent{{Kind: IntentUpsertPayment, Payload: payment}}, nil
	})
	if err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

// DeletePayment removes a payment.
func (s *GymStateService) DeletePayment(ctx context.Context, id string) error {
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		for i, p := range next.Payments {
			if p.ID == id {
				next.Payments = append(next.Payments[:i], next.Payments[i+1:]...)
				return []WriteIntent{{Kind: IntentDeletePayment, Payload: idKey{ID: id}}}, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found: "+id)
	})
	return err
}

// ExpressPayment spreads one amount over the selected outstanding periods,
// oldest first, creating one payment per period touched. The share of each
// period never exceeds its balance; any remainder is reported, not recorded.
func (s *GymStateService) ExpressPayment(ctx context.Context, req dto.ExpressPaymentRequest) (dto.ExpressPaymentResponse, error) {
	if err := s.validate(req); err != nil {
		return dto.ExpressPaymentResponse{}, err
	}
	selected := make([]models.Period, 0, len(req.Periods))
	for _, p := range req.Periods {
		selected = append(selected, p.Period())
	}

	resp := dto.ExpressPaymentResponse{Payments: []models.Payment{}}
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, now time.Time) ([]WriteIntent, error) {
		if _, idx := next.FindStudent(req.StudentID); idx < 0 {
			return nil, studentNotFound(req.StudentID)
		}
		shares, remainder := AllocatePayment(DebtFor(*next, req.StudentID), selected, req.Amount)
		if len(shares) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNothingToPay, "")
		}
		date := dateOrToday(req.Date, now)
		intents := make([]WriteIntent, 0, len(shares))
		for _, share := range shares {
			payment := models.Payment{
				ID:        s.newID(),
				StudentID: req.StudentID,
				Month:     share.Month,
				Year:      share.Year,
				Amount:    share.Paid,
				Date:      date,
			}
			next.Payments = append(next.Payments, payment)
			resp.Payments = append(resp.Payments, payment)
			intents = append(intents, WriteIntent{Kind: IntentUpsertPayment, Payload: payment})
		}
		resp.Remainder = remainder
		return intents, nil
	})
	if err != nil {
		return dto.ExpressPaymentResponse{}, err
	}
	return resp, nil
}

func dateOrToday(date string, now time.Time) string {
	if date != "" {
		return date
	}
	return now.Format(DateLayout)
}

// ListExpenses returns all expenses.
func (s *GymStateService) ListExpenses() []models.Expense {
	return append([]models.Expense{}, s.Snapshot().Expenses...)
}

// AddExpense records an operating cost.
func (s *GymStateService) AddExpense(ctx context.Context, req dto.ExpenseRequest) (models.Expense, error) {
	if err := s.validate(req); err != nil {
		return models.Expense{}, err
	}
	expense := models.Expense{
		ID:          s.newID(),
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
	}
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		next.Expenses = append(next.Expenses, expense)
		return []WriteIntent{{Kind: IntentUpsertExpense, Payload: expense}}, nil
	})
	if err != nil {
		return models.Expense{}, err
	}
	return expense, nil
}

// UpdateExpense replaces an expense's fields.
func (s *GymStateService) UpdateExpense(ctx context.Context, id string, req dto.ExpenseRequest) (models.Expense, error) {
	if err := s.validate(req); err != nil {
		return models.Expense{}, err
	}
	var updated models.Expense
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		for i, e := range next.Expenses {
			if e.ID != id {
				continue
			}
			updated = models.Expense{
				ID:          id,
				Category:    strings.TrimSpace(req.Category),
				Amount:      req.Amount,
				Description: req.Description,
				Date:        req.Date,
			}
			next.Expenses[i] = updated
			return []WriteIntent{{Kind: IntentUpdateExpense, Payload: updated}}, nil
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "expense not found: "+id)
	})
	if err != nil {
		return models.Expense{}, err
	}
	return updated, nil
}

// DeleteExpense removes an expense.
func (s *GymStateService) DeleteExpense(ctx context.Context, id string) error {
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		for i, e := range next.Expenses {
			if e.ID == id {
				next.Expenses = append(next.Expenses[:i], next.Expenses[i+1:]...)
				return []WriteIntent{{Kind: IntentDeleteExpense, Payload: idKey{ID: id}}}, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "expense not found: "+id)
	})
	return err
}

// ListGuests returns guest visits, optionally for one date.
func (s *GymStateService) ListGuests(date string) []models.GuestRegistration {
	out := []models.GuestRegistration{}
	for _, g := range s.Snapshot().Guests {
		if date != "" && g.Date != date {
			continue
		}
		out = append(out, g)
	}
	return out
}

// AddGuest registers a walk-in visit.
func (s *GymStateService) AddGuest(ctx context.Context, req dto.GuestRequest) (models.GuestRegistration, error) {
	if err := s.validate(req); err != nil {
		return models.GuestRegistration{}, err
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		return models.GuestRegistration{}, validationError("guest amount cannot be negative")
	}
	guest := models.GuestRegistration{
		ID:            s.newID(),
		Name:          strings.TrimSpace(req.Name),
		Phone:         req.Phone,
		Date:          req.Date,
		Time:          req.Time,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	}
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		next.Guests = append(next.Guests, guest)
		return []WriteIntent{{Kind: IntentUpsertGuest, Payload: guest}}, nil
	})
	if err != nil {
		return models.GuestRegistration{}, err
	}
	return guest, nil
}

// DeleteGuest removes a guest visit.
func (s *GymStateService) DeleteGuest(ctx context.Context, id string) error {
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		for i, g := range next.Guests {
			if g.ID == id {
				next.Guests = append(next.Guests[:i], next.Guests[i+1:]...)
				return []WriteIntent{{Kind: IntentDeleteGuest, Payload: idKey{ID: id}}}, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "guest not found: "+id)
	})
	return err
}

// ListAttendance returns attendance marks, optionally filtered.
func (s *GymStateService) ListAttendance(date, studentID string) []models.Attendance {
	out := []models.Attendance{}
	for _, a := range s.Snapshot().Attendance {
		if date != "" && a.Date != date {
			continue
		}
		if studentID != "" && a.StudentID != studentID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ToggleAttendance marks the student present, or removes the mark when it
// already exists. It returns whether the student is now marked present.
func (s *GymStateService) ToggleAttendance(ctx context.Context, req dto.AttendanceToggleRequest) (dto.AttendanceToggleResponse, error) {
	if err := s.validate(req); err != nil {
		return dto.AttendanceToggleResponse{}, err
	}
	resp := dto.AttendanceToggleResponse{StudentID: req.StudentID, Date: req.Date, Time: req.Time}
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		if _, idx := next.FindStudent(req.StudentID); idx < 0 {
			return nil, studentNotFound(req.StudentID)
		}
		for i, a := range next.Attendance {
			if a.Matches(req.StudentID, req.Date, req.Time) {
				next.Attendance = append(next.Attendance[:i], next.Attendance[i+1:]...)
				resp.Present = false
				return []WriteIntent{{
					Kind:    IntentDeleteAttendance,
					Payload: attendanceKey{StudentID: req.StudentID, Date: req.Date, Time: req.Time},
				}}, nil
			}
		}
		record := models.Attendance{StudentID: req.StudentID, Date: req.Date, Time: req.Time, Present: true}
		next.Attendance = append(next.Attendance, record)
		resp.Present = true
		return []WriteIntent{{Kind: IntentUpsertAttendance, Payload: record}}, nil
	})
	if err != nil {
		return dto.AttendanceToggleResponse{}, err
	}
	return resp, nil
}

// RatesFor resolves the price table in force for a period.
func (s *GymStateService) RatesFor(month, year int) (dto.RatesResponse, error) {
	period := models.Period{Month: month, Year: year}
	if !period.Valid() {
		return dto.RatesResponse{}, validationError("month must be between 0 and 11")
	}
	return dto.RatesResponse{Month: month, Year: year, Rates: RatesForPeriod(s.Snapshot().RateHistory, month, year)}, nil
}

// RateHistory lists price overrides, newest first.
func (s *GymStateService) RateHistory() []models.TieredRateHistory {
	return sortedRateHistory(s.Snapshot().RateHistory)
}

// SetHistoricalRates records the price table for a period, replacing any
// previous entry for it.
func (s *GymStateService) SetHistoricalRates(ctx context.Context, month, year int, req dto.RatesRequest) (models.TieredRateHistory, error) {
	if err := s.validate(req); err != nil {
		return models.TieredRateHistory{}, err
	}
	period := models.Period{Month: month, Year: year}
	if !period.Valid() {
		return models.TieredRateHistory{}, validationError("month must be between 0 and 11")
	}
	if err := validateRates(req.Rates); err != nil {
		return models.TieredRateHistory{}, err
	}
	entry := models.TieredRateHistory{Month: month, Year: year, Rates: req.Rates.Clone()}
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		next.RateHistory = upsertRateHistory(next.RateHistory, entry)
		return []WriteIntent{{Kind: IntentUpsertRateHistory, Payload: entry}}, nil
	})
	if err != nil {
		return models.TieredRateHistory{}, err
	}
	return entry, nil
}

// DeleteHistoricalRates removes the override of a period. Removing an
// absent entry is a no-op.
func (s *GymStateService) DeleteHistoricalRates(ctx context.Context, month, year int) error {
	period := models.Period{Month: month, Year: year}
	if !period.Valid() {
		return validationError(fmt.Sprintf("invalid month %d", month))
	}
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		before := len(next.RateHistory)
		next.RateHistory = removeRateHistory(next.RateHistory, month, year)
		if len(next.RateHistory) == before {
			return nil, nil
		}
		return []WriteIntent{{Kind: IntentDeleteRateHistory, Payload: period}}, nil
	})
	return err
}
