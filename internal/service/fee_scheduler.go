package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

type feeEnsurer interface {
	EnsureCurrentFees(ctx context.Context) []models.Fee
}

// FeeScheduler periodically tops up fees for the simulated period so a
// month rollover is billed without waiting for a mutation.
type FeeScheduler struct {
	state    feeEnsurer
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFeeScheduler constructs the scheduler. A non-positive interval disables it.
func NewFeeScheduler(state feeEnsurer, interval time.Duration, logger *zap.Logger) *FeeScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeScheduler{state: state, interval: interval, logger: logger}
}

// Start boots the ticker goroutine. Calling Start twice is a no-op.
func (s *FeeScheduler) Start(ctx context.Context) {
	if s == nil || s.interval <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single fee check.
func (s *FeeScheduler) RunOnce(ctx context.Context) int {
	fees := s.state.EnsureCurrentFees(ctx)
	if len(fees) > 0 {
		s.logger.Info("scheduled fee generation", zap.Int("created", len(fees)))
	}
	return len(fees)
}

// Stop halts the ticker and waits for the goroutine to exit.
func (s *FeeScheduler) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
