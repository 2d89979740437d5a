package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

// Load sources reported by GymStateService.Load.
const (
	LoadSourceRemote = "remote"
	LoadSourceCache  = "cache"
	LoadSourceSeed   = "seed"
)

type snapshotLoader interface {
	LoadAll(ctx context.Context) (models.Snapshot, error)
}

type intentWriter interface {
	Enqueue(intents ...WriteIntent)
}

// SnapshotCache stores the whole state locally as a fallback for the remote
// store. Load returns appErrors.ErrCacheMiss when nothing was saved yet.
type SnapshotCache interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snapshot models.Snapshot) error
}

// GymStateConfig wires the state manager's collaborators. Only Clock is
// required; a nil Loader, Writer or Cache disables that concern.
type GymStateConfig struct {
	Loader       snapshotLoader
	Writer       intentWriter
	Cache        SnapshotCache
	Clock        *Clock
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
	Seed         SeedOptions
	NewID        func() string
	CacheTimeout time.Duration
}

// GymStateService owns the in-memory snapshot. Mutations run under the write
// lock on a copy that is swapped in on success; the resulting write intents
// and the cache save happen after the lock is released.
type GymStateService struct {
	mu     sync.RWMutex
	state  models.Snapshot
	loaded bool

	cacheMu sync.Mutex

	loader       snapshotLoader
	writer       intentWriter
	cache        SnapshotCache
	clock        *Clock
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	seed         SeedOptions
	newID        func() string
	cacheTimeout time.Duration
}

// NewGymStateService constructs the state manager with a seeded snapshot.
// Call Load to replace it with persisted state.
func NewGymStateService(cfg GymStateConfig) *GymStateService {
	if cfg.Clock == nil {
		cfg.Clock = NewClock(nil, nil)
	}
	if cfg.Validator == nil {
		cfg.Validator = NewValidator()
	} else {
		registerValidations(cfg.Validator)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.CacheTimeout <= 0 {
		cfg.CacheTimeout = 2 * time.Second
	}
	svc := &GymStateService{
		loader:       cfg.Loader,
		writer:       cfg.Writer,
		cache:        cfg.Cache,
		clock:        cfg.Clock,
		metrics:      cfg.Metrics,
		validator:    cfg.Validator,
		logger:       cfg.Logger,
		seed:         cfg.Seed,
		newID:        cfg.NewID,
		cacheTimeout: cfg.CacheTimeout,
	}
	svc.state = SeedSnapshot(cfg.Clock.Wall(), cfg.Seed)
	return svc
}

// Load hydrates state from the remote store, falling back to the local
// cache and finally to seed data. A reachable but empty remote store is
// backfilled with whatever state was chosen.
func (s *GymStateService) Load(ctx context.Context) string {
	snap, source, remoteEmpty := s.loadInitial(ctx)
	normalizeSnapshot(&snap)

	s.mu.Lock()
	fees := s.ensureFees(&snap)
	s.state = snap
	s.loaded = true
	s.mu.Unlock()

	var intents []WriteIntent
	if remoteEmpty {
		intents = append(intents, WriteIntent{Kind: IntentReplaceAll, Payload: snap.Clone()})
	} else {
		intents = feeIntents(fees)
	}
	s.metrics.AddFeesGenerated(len(fees))
	s.commit(ctx, snap, intents)

	s.logger.Info("gym state loaded",
		zap.String("source", source),
		zap.Int("students", len(snap.Students)),
		zap.Int("fees_generated", len(fees)),
	)
	return source
}

func (s *GymStateService) loadInitial(ctx context.Context) (models.Snapshot, string, bool) {
	remoteEmpty := false
	if s.loader != nil {
		snap, err := s.loader.LoadAll(ctx)
		switch {
		case err != nil:
			s.logger.Warn("remote load failed, trying local cache", zap.Error(err))
		case snap.Empty():
			remoteEmpty = true
		default:
			return snap, LoadSourceRemote, false
		}
	}

	if s.cache != nil {
		start := time.Now()
		snap, err := s.cache.Load(ctx)
		s.metrics.ObserveCache("load", ignoreMiss(err), time.Since(start))
		switch {
		case err == nil && !snap.Empty():
			return snap, LoadSourceCache, remoteEmpty
		case err != nil && !errors.Is(err, appErrors.ErrCacheMiss):
			s.logger.Warn("local cache load failed", zap.Error(err))
		}
	}

	return SeedSnapshot(s.clock.Wall(), s.seed), LoadSourceSeed, remoteEmpty
}

func ignoreMiss(err error) error {
	if errors.Is(err, appErrors.ErrCacheMiss) {
		return nil
	}
	return err
}

// normalizeSnapshot fills gaps left by older or partial stores.
func normalizeSnapshot(snap *models.Snapshot) {
	defaults := models.DefaultSettings()
	if snap.Settings.GymName == "" {
		snap.Settings.GymName = defaults.GymName
	}
	if snap.Settings.WhatsappTemplateAgenda == "" {
		snap.Settings.WhatsappTemplateAgenda = defaults.WhatsappTemplateAgenda
	}
	if snap.Settings.WhatsappTemplateDebt == "" {
		snap.Settings.WhatsappTemplateDebt = defaults.WhatsappTemplateDebt
	}
	if snap.Settings.MaxCapacityPerShift < 1 {
		snap.Settings.MaxCapacityPerShift = defaults.MaxCapacityPerShift
	}
	if snap.Students == nil {
		snap.Students = []models.Student{}
	}
	for i := range snap.Students {
		if snap.Students[i].Schedule == nil {
			snap.Students[i].Schedule = []models.ScheduleSlot{}
		}
		if snap.Students[i].Evaluations == nil {
			snap.Students[i].Evaluations = []models.BodyEvaluation{}
		}
	}
	if snap.Fees == nil {
		snap.Fees = []models.Fee{}
	}
	if snap.Payments == nil {
		snap.Payments = []models.Payment{}
	}
	if snap.Expenses == nil {
		snap.Expenses = []models.Expense{}
	}
	if snap.Guests == nil {
		snap.Guests = []models.GuestRegistration{}
	}
	if snap.Attendance == nil {
		snap.Attendance = []models.Attendance{}
	}
	if snap.RateHistory == nil {
		snap.RateHistory = []models.TieredRateHistory{}
	}
}

// Ready reports whether Load has completed.
func (s *GymStateService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns the current state. Callers must treat it as read-only.
func (s *GymStateService) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Clock returns the clock used to project the simulated date.
func (s *GymStateService) Clock() *Clock {
	return s.clock
}

// Now returns the simulated instant.
func (s *GymStateService) Now() time.Time {
	return s.clock.Simulated(s.Snapshot().Settings)
}

// EnsureCurrentFees generates any fee missing for the simulated period.
func (s *GymStateService) EnsureCurrentFees(ctx context.Context) []models.Fee {
	_, fees, _ := s.mutate(ctx, func(*models.Snapshot, time.Time) ([]WriteIntent, error) {
		return nil, nil
	})
	return fees
}

type mutation func(next *models.Snapshot, now time.Time) ([]WriteIntent, error)

// mutate applies fn to a copy of the state, tops up fees for the simulated
// period and swaps the copy in. Nothing is committed when fn fails or when
// neither fn nor fee generation produced a change.
func (s *GymStateService) mutate(ctx context.Context, fn mutation) (models.Snapshot, []models.Fee, error) {
	s.mu.Lock()
	next := s.state.Clone()
	intents, err := fn(&next, s.clock.Simulated(next.Settings))
	if err != nil {
		s.mu.Unlock()
		return models.Snapshot{}, nil, err
	}
	fees := s.ensureFees(&next)
	if len(intents) == 0 && len(fees) == 0 {
		current := s.state
		s.mu.Unlock()
		return current, nil, nil
	}

	replaced := false
	for i := range intents {
		if intents[i].Kind == IntentReplaceAll {
			intents[i].Payload = next.Clone()
			replaced = true
		}
	}
	if !replaced {
		intents = append(intents, feeIntents(fees)...)
	}
	s.state = next
	s.mu.Unlock()

	s.metrics.AddFeesGenerated(len(fees))
	s.commit(ctx, next, intents)
	return next, fees, nil
}

func (s *GymStateService) ensureFees(next *models.Snapshot) []models.Fee {
	period := models.PeriodOf(s.clock.Simulated(next.Settings))
	fees := GenerateFees(*next, period, s.newID)
	next.Fees = append(next.Fees, fees...)
	return fees
}

func (s *GymStateService) commit(ctx context.Context, snap models.Snapshot, intents []WriteIntent) {
	if s.writer != nil && len(intents) > 0 {
		s.writer.Enqueue(intents...)
	}
	now := s.clock.Simulated(snap.Settings)
	s.metrics.SetBillingGauges(countActive(snap.Students), TotalDelinquentDebt(snap, now))
	s.saveCache(ctx)
}

// saveCache writes the latest state; serialising saves guarantees the last
// write wins with the newest snapshot.
func (s *GymStateService) saveCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	snap := s.Snapshot()
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cacheTimeout)
	defer cancel()

	start := time.Now()
	err := s.cache.Save(saveCtx, snap)
	s.metrics.ObserveCache("save", err, time.Since(start))
	if err != nil {
		s.logger.Warn("local cache save failed", zap.Error(err))
	}
}

func countActive(students []models.Student) int {
	n := 0
	for _, st := range students {
		if st.IsActive() {
			n++
		}
	}
	return n
}

// ResetData restores the seeded installation and replaces the remote state.
func (s *GymStateService) ResetData(ctx context.Context) models.Snapshot {
	snap, _, _ := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		*next = SeedSnapshot(s.clock.Wall(), s.seed)
		return []WriteIntent{{Kind: IntentReplaceAll}}, nil
	})
	s.logger.Info("gym state reset", zap.Int("students", len(snap.Students)))
	return snap
}

func studentNotFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, "student not found: "+id)
}
