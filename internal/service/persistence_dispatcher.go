package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/models"
	"github.com/noah-isme/gym-manager-api/pkg/config"
	"github.com/noah-isme/gym-manager-api/pkg/jobs"
)

// Gateway is the remote store of record. Writes are idempotent upserts or
// deletes keyed by id.
type Gateway interface {
	LoadAll(ctx context.Context) (models.Snapshot, error)
	UpsertStudent(ctx context.Context, student models.Student) error
	UpsertFee(ctx context.Context, fee models.Fee) error
	UpsertPayment(ctx context.Context, payment models.Payment) error
	DeletePayment(ctx context.Context, id string) error
	UpsertExpense(ctx context.Context, expense models.Expense) error
	UpdateExpense(ctx context.Context, expense models.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	UpsertGuest(ctx context.Context, guest models.GuestRegistration) error
	DeleteGuest(ctx context.Context, id string) error
	UpsertAttendance(ctx context.Context, record models.Attendance) error
	DeleteAttendance(ctx context.Context, studentID, date, time string) error
	UpdateSettings(ctx context.Context, patch models.SettingsPatch) error
	UpsertRateHistory(ctx context.Context, entry models.TieredRateHistory) error
	DeleteRateHistory(ctx context.Context, month, year int) error
	ReplaceAll(ctx context.Context, snapshot models.Snapshot) error
}

// Write intent kinds, one per gateway write.
const (
	IntentUpsertStudent     = "upsert_student"
	IntentUpsertFee         = "upsert_fee"
	IntentUpsertPayment     = "upsert_payment"
	IntentDeletePayment     = "delete_payment"
	IntentUpsertExpense     = "upsert_expense"
	IntentUpdateExpense     = "update_expense"
	IntentDeleteExpense     = "delete_expense"
	IntentUpsertGuest       = "upsert_guest"
	IntentDeleteGuest       = "delete_guest"
	IntentUpsertAttendance  = "upsert_attendance"
	IntentDeleteAttendance  = "delete_attendance"
	IntentUpdateSettings    = "update_settings"
	IntentUpsertRateHistory = "upsert_rate_history"
	IntentDeleteRateHistory = "delete_rate_history"
	IntentReplaceAll        = "replace_all"
)

// WriteIntent is a pending remote write produced by a state mutation.
type WriteIntent struct {
	Kind    string
	Payload interface{}
}

type attendanceKey struct {
	StudentID string
	Date      string
	Time      string
}

type idKey struct {
	ID string
}

func studentIntent(s models.Student) WriteIntent {
	return WriteIntent{Kind: IntentUpsertStudent, Payload: s.Clone()}
}

func feeIntents(fees []models.Fee) []WriteIntent {
	out := make([]WriteIntent, 0, len(fees))
	for _, fee := range fees {
		out = append(out, WriteIntent{Kind: IntentUpsertFee, Payload: fee})
	}
	return out
}

func settingsIntent(patch models.SettingsPatch) WriteIntent {
	return WriteIntent{Kind: IntentUpdateSettings, Payload: patch}
}

// PersistenceDispatcher drains write intents to the gateway on a worker
// pool. Failures are logged and counted; the in-memory state is kept.
type PersistenceDispatcher struct {
	gateway Gateway
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	timeout time.Duration
}

// NewPersistenceDispatcher wires the outbox queue to the gateway.
func NewPersistenceDispatcher(gateway Gateway, cfg config.PersistenceConfig, metrics *MetricsService, logger *zap.Logger) *PersistenceDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := &PersistenceDispatcher{gateway: gateway, metrics: metrics, logger: logger, timeout: timeout}
	d.queue = jobs.NewQueue("persistence", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnDrop: func(job jobs.Job, err error) {
			metrics.RecordPersistenceDrop(job.Type)
		},
	})
	return d
}

// Start launches the workers.
func (d *PersistenceDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains buffered intents and waits for the workers.
func (d *PersistenceDispatcher) Stop() {
	d.queue.Stop()
}

// Pending reports buffered intents.
func (d *PersistenceDispatcher) Pending() int {
	return d.queue.Pending()
}

// Enqueue hands intents to the outbox without blocking. Rejected intents
// are logged and lost.
func (d *PersistenceDispatcher) Enqueue(intents ...WriteIntent) {
	for _, intent := range intents {
		job := jobs.Job{ID: uuid.NewString(), Type: intent.Kind, Payload: intent.Payload}
		if err := d.queue.Enqueue(job); err != nil {
			d.metrics.RecordOutboxRejected()
			d.logger.Error("persistence intent rejected", zap.String("operation", intent.Kind), zap.Error(err))
		}
	}
}

func (d *PersistenceDispatcher) handle(ctx context.Context, job jobs.Job) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.apply(ctx, job)
	d.metrics.ObservePersistence(job.Type, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", job.Type, err)
	}
	return nil
}

var errUnexpectedPayload = errors.New("unexpected payload")

func (d *PersistenceDispatcher) apply(ctx context.Context, job jobs.Job) error {
	switch payload := job.Payload.(type) {
	case models.Student:
		return d.gateway.UpsertStudent(ctx, payload)
	case models.Fee:
		return d.gateway.UpsertFee(ctx, payload)
	case models.Payment:
		return d.gateway.UpsertPayment(ctx, payload)
	case models.Expense:
		if job.Type == IntentUpdateExpense {
			return d.gateway.UpdateExpense(ctx, payload)
		}
		return d.gateway.UpsertExpense(ctx, payload)
	case models.GuestRegistration:
		return d.gateway.UpsertGuest(ctx, payload)
	case models.Attendance:
		return d.gateway.UpsertAttendance(ctx, payload)
	case attendanceKey:
		return d.gateway.DeleteAttendance(ctx, payload.StudentID, payload.Date, payload.Time)
	case idKey:
		switch job.Type {
		case IntentDeletePayment:
			return d.gateway.DeletePayment(ctx, payload.ID)
		case IntentDeleteExpense:
			return d.gateway.DeleteExpense(ctx, payload.ID)
		case IntentDeleteGuest:
			return d.gateway.DeleteGuest(ctx, payload.ID)
		}
	case models.SettingsPatch:
		return d.gateway.UpdateSettings(ctx, payload)
	case models.TieredRateHistory:
		return d.gateway.UpsertRateHistory(ctx, payload)
	case models.Period:
		return d.gateway.DeleteRateHistory(ctx, payload.Month, payload.Year)
	case models.Snapshot:
		return d.gateway.ReplaceAll(ctx, payload)
	}
	return fmt.Errorf("%w %T", errUnexpectedPayload, job.Payload)
}
