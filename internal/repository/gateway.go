package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// PostgresGateway is the PostgreSQL store of record for the gym state.
type PostgresGateway struct {
	db     *sqlx.DB
	logger *zap.Logger

	students   *StudentRepository
	fees       *FeeRepository
	payments   *PaymentRepository
	expenses   *ExpenseRepository
	guests     *GuestRepository
	attendance *AttendanceRepository
	rates      *RateHistoryRepository
	settings   *SettingsRepository
}

// NewPostgresGateway wires the table repositories over db.
func NewPostgresGateway(db *sqlx.DB, logger *zap.Logger) *PostgresGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresGateway{
		db:         db,
		logger:     logger,
		students:   NewStudentRepository(db),
		fees:       NewFeeRepository(db),
		payments:   NewPaymentRepository(db),
		expenses:   NewExpenseRepository(db),
		guests:     NewGuestRepository(db),
		attendance: NewAttendanceRepository(db),
		rates:      NewRateHistoryRepository(db),
		settings:   NewSettingsRepository(db),
	}
}

// LoadAll reads every collection. Missing settings leave a zero value for
// the caller to fill with defaults.
func (g *PostgresGateway) LoadAll(ctx context.Context) (models.Snapshot, error) {
	var (
		snap models.Snapshot
		err  error
	)
	if snap.Settings, _, err = g.settings.Get(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Students, err = g.students.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Fees, err = g.fees.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Payments, err = g.payments.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Expenses, err = g.expenses.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Guests, err = g.guests.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Attendance, err = g.attendance.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.RateHistory, err = g.rates.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (g *PostgresGateway) UpsertStudent(ctx context.Context, student models.Student) error {
	return g.students.Upsert(ctx, student)
}

func (g *PostgresGateway) UpsertFee(ctx context.Context, fee models.Fee) error {
	return g.fees.Upsert(ctx, fee)
}

func (g *PostgresGateway) UpsertPayment(ctx context.Context, payment models.Payment) error {
	return g.payments.Upsert(ctx, payment)
}

func (g *PostgresGateway) DeletePayment(ctx context.Context, id string) error {
	return g.payments.Delete(ctx, id)
}

func (g *PostgresGateway) UpsertExpense(ctx context.Context, expense models.Expense) error {
	return g.expenses.Upsert(ctx, expense)
}

func (g *PostgresGateway) UpdateExpense(ctx context.Context, expense models.Expense) error {
	return g.expenses.Update(ctx, expense)
}

func (g *PostgresGateway) DeleteExpense(ctx context.Context, id string) error {
	return g.expenses.Delete(ctx, id)
}

func (g *PostgresGateway) UpsertGuest(ctx context.Context, guest models.GuestRegistration) error {
	return g.guests.Upsert(ctx, guest)
}

func (g *PostgresGateway) DeleteGuest(ctx context.Context, id string) error {
	return g.guests.Delete(ctx, id)
}

func (g *PostgresGateway) UpsertAttendance(ctx context.Context, record models.Attendance) error {
	return g.attendance.Upsert(ctx, record)
}

func (g *PostgresGateway) DeleteAttendance(ctx context.Context, studentID, date, time string) error {
	return g.attendance.Delete(ctx, studentID, date, time)
}

func (g *PostgresGateway) UpdateSettings(ctx context.Context, patch models.SettingsPatch) error {
	return g.settings.Update(ctx, patch)
}

func (g *PostgresGateway) UpsertRateHistory(ctx context.Context, entry models.TieredRateHistory) error {
	return g.rates.Upsert(ctx, entry)
}

func (g *PostgresGateway) DeleteRateHistory(ctx context.Context, month, year int) error {
	return g.rates.Delete(ctx, month, year)
}

// resetTables lists tables in dependency order for truncation.
var resetTables = []string{"attendance", "guests", "expenses", "payments", "fees", "students", "tiered_rate_history", "settings"}

// ReplaceAll swaps the whole store for snap in one transaction.
func (g *PostgresGateway) ReplaceAll(ctx context.Context, snap models.Snapshot) (err error) {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				g.logger.Warn("replace rollback failed", zap.Error(rbErr))
			}
		}
	}()

	for _, table := range resetTables {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err = NewSettingsRepository(tx).Save(ctx, snap.Settings); err != nil {
		return err
	}
	students := NewStudentRepository(tx)
	for _, s := range snap.Students {
		if err = students.Upsert(ctx, s); err != nil {
			return err
		}
	}
	fees := NewFeeRepository(tx)
	for _, f := range snap.Fees {
		if err = fees.Upsert(ctx, f); err != nil {
			return err
		}
	}
	payments := NewPaymentRepository(tx)
	for _, p := range snap.Payments {
		if err = payments.Upsert(ctx, p); err != nil {
			return err
		}
	}
	expenses := NewExpenseRepository(tx)
	for _, e := range snap.Expenses {
		if err = expenses.Upsert(ctx, e); err != nil {
			return err
		}
	}
	guests := NewGuestRepository(tx)
	for _, gr := range snap.Guests {
		if err = guests.Upsert(ctx, gr); err != nil {
			return err
		}
	}
	attendance := NewAttendanceRepository(tx)
	for _, a := range snap.Attendance {
		if err = attendance.Upsert(ctx, a); err != nil {
			return err
		}
	}
	rates := NewRateHistoryRepository(tx)
	for _, h := range snap.RateHistory {
		if err = rates.Upsert(ctx, h); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	g.logger.Info("remote state replaced", zap.Int("students", len(snap.Students)), zap.Int("fees", len(snap.Fees)))
	return nil
}
