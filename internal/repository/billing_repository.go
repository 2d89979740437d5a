package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// FeeRepository persists monthly fees.
type FeeRepository struct {
	db sqlx.ExtContext
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(db sqlx.ExtContext) *FeeRepository {
	return &FeeRepository{db: db}
}

// List returns fees in creation order.
func (r *FeeRepository) List(ctx context.Context) ([]models.Fee, error) {
	const query = `SELECT id, student_id, month, year, amount_owed FROM fees ORDER BY created_at ASC, id ASC`
	var rows []feeRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	out := make([]models.Fee, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// Upsert inserts or replaces a fee.
func (r *FeeRepository) Upsert(ctx context.Context, fee models.Fee) error {
	const query = `INSERT INTO fees (id, student_id, month, year, amount_owed)
VALUES (:id, :student_id, :month, :year, :amount_owed)
ON CONFLICT (id) DO UPDATE SET student_id = EXCLUDED.student_id, month = EXCLUDED.month,
year = EXCLUDED.year, amount_owed = EXCLUDED.amount_owed`
	row := feeRow{ID: fee.ID, StudentID: fee.StudentID, Month: fee.Month, Year: fee.Year, AmountOwed: fee.AmountOwed}
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("upsert fee %s: %w", fee.ID, err)
	}
	return nil
}

// PaymentRepository persists received payments.
type PaymentRepository struct {
	db sqlx.ExtContext
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db sqlx.ExtContext) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments in creation order.
func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	const query = `SELECT id, student_id, month, year, amount, date FROM payments ORDER BY created_at ASC, id ASC`
	var rows []paymentRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]models.Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// Upsert inserts or replaces a payment.
func (r *PaymentRepository) Upsert(ctx context.Context, payment models.Payment) error {
	const query = `INSERT INTO payments (id, student_id, month, year, amount, date)
VALUES (:id, :student_id, :month, :year, :amount, :date)
ON CONFLICT (id) DO UPDATE SET student_id = EXCLUDED.student_id, month = EXCLUDED.month,
year = EXCLUDED.year, amount = EXCLUDED.amount, date = EXCLUDED.date`
	row := paymentRow{
		ID:        payment.ID,
		StudentID: payment.StudentID,
		Month:     payment.Month,
		Year:      payment.Year,
		Amount:    payment.Amount,
		Date:      payment.Date,
	}
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("upsert payment %s: %w", payment.ID, err)
	}
	return nil
}

// Delete removes a payment; a missing id is not an error.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete payment %s: %w", id, err)
	}
	return nil
}
