package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// ExpenseRepository persists operating expenses.
type ExpenseRepository struct {
	db sqlx.ExtContext
}

// NewExpenseRepository constructs the repository.
func NewExpenseRepository(db sqlx.ExtContext) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// List returns expenses in creation order.
func (r *ExpenseRepository) List(ctx context.Context) ([]models.Expense, error) {
	const query = `SELECT id, category, amount, description, date FROM expenses ORDER BY created_at ASC, id ASC`
	var rows []expenseRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]models.Expense, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// Upsert inserts or replaces an expense.
func (r *ExpenseRepository) Upsert(ctx context.Context, expense models.Expense) error {
	const query = `INSERT INTO expenses (id, category, amount, description, date)
VALUES (:id, :category, :amount, :description, :date)
ON CONFLICT (id) DO UPDATE SET category = EXCLUDED.category, amount = EXCLUDED.amount,
description = EXCLUDED.description, date = EXCLUDED.date`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, expenseRow(expense)); err != nil {
		return fmt.Errorf("upsert expense %s: %w", expense.ID, err)
	}
	return nil
}

// Update changes an existing expense. Updating a missing id is a no-op.
func (r *ExpenseRepository) Update(ctx context.Context, expense models.Expense) error {
	const query = `UPDATE expenses SET category = :category, amount = :amount, description = :description,
date = :date WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, expenseRow(expense)); err != nil {
		return fmt.Errorf("update expense %s: %w", expense.ID, err)
	}
	return nil
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	return nil
}

// GuestRepository persists walk-in registrations.
type GuestRepository struct {
	db sqlx.ExtContext
}

// NewGuestRepository constructs the repository.
func NewGuestRepository(db sqlx.ExtContext) *GuestRepository {
	return &GuestRepository{db: db}
}

// List returns guest visits in creation order.
func (r *GuestRepository) List(ctx context.Context) ([]models.GuestRegistration, error) {
	const query = `SELECT id, name, phone, date, time, amount, payment_method FROM guests ORDER BY created_at ASC, id ASC`
	var rows []guestRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	out := make([]models.GuestRegistration, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// Upsert inserts or replaces a guest visit.
func (r *GuestRepository) Upsert(ctx context.Context, guest models.GuestRegistration) error {
	const query = `INSERT INTO guests (id, name, phone, date, time, amount, payment_method)
VALUES (:id, :name, :phone, :date, :time, :amount, :payment_method)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, date = EXCLUDED.date,
time = EXCLUDED.time, amount = EXCLUDED.amount, payment_method = EXCLUDED.payment_method`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, newGuestRow(guest)); err != nil {
		return fmt.Errorf("upsert guest %s: %w", guest.ID, err)
	}
	return nil
}

// Delete removes a guest visit.
func (r *GuestRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete guest %s: %w", id, err)
	}
	return nil
}

// AttendanceRepository persists attendance marks keyed by student, date
// and time.
type AttendanceRepository struct {
	db sqlx.ExtContext
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db sqlx.ExtContext) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns every attendance mark.
func (r *AttendanceRepository) List(ctx context.Context) ([]models.Attendance, error) {
	const query = `SELECT student_id, date, time, present FROM attendance ORDER BY date ASC, time ASC, student_id ASC`
	var rows []attendanceRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	out := make([]models.Attendance, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// Upsert records a mark.
func (r *AttendanceRepository) Upsert(ctx context.Context, record models.Attendance) error {
	const query = `INSERT INTO attendance (student_id, date, time, present)
VALUES (:student_id, :date, :time, :present)
ON CONFLICT (student_id, date, time) DO UPDATE SET present = EXCLUDED.present`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, attendanceRow(record)); err != nil {
		return fmt.Errorf("upsert attendance %s %s %s: %w", record.StudentID, record.Date, record.Time, err)
	}
	return nil
}

// Delete removes a mark.
func (r *AttendanceRepository) Delete(ctx context.Context, studentID, date, time string) error {
	const query = `DELETE FROM attendance WHERE student_id = $1 AND date = $2 AND time = $3`
	if _, err := r.db.ExecContext(ctx, query, studentID, date, time); err != nil {
		return fmt.Errorf("delete attendance %s %s %s: %w", studentID, date, time, err)
	}
	return nil
}
