package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

type recordingWriter struct {
	mu      sync.Mutex
	intents []WriteIntent
}

func (w *recordingWriter) Enqueue(intents ...WriteIntent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.intents = append(w.intents, intents...)
}

func (w *recordingWriter) kinds() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.intents))
	for _, i := range w.intents {
		out = append(out, i.Kind)
	}
	return out
}

func (w *recordingWriter) last() WriteIntent {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.intents) == 0 {
		return WriteIntent{}
	}
	return w.intents[len(w.intents)-1]
}

func (w *recordingWriter) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.intents = nil
}

type loaderStub struct {
	snap models.Snapshot
	err  error
}

func (l loaderStub) LoadAll(context.Context) (models.Snapshot, error) {
	return l.snap, l.err
}

type cacheStub struct {
	mu    sync.Mutex
	snap  *models.Snapshot
	err   error
	saves int
}

func (c *cacheStub) Load(context.Context) (models.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return models.Snapshot{}, c.err
	}
	if c.snap == nil {
		return models.Snapshot{}, appErrors.ErrCacheMiss
	}
	return c.snap.Clone(), nil
}

func (c *cacheStub) Save(_ context.Context, snap models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := snap.Clone()
	c.snap = &clone
	c.saves++
	return nil
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedClock(now time.Time) *Clock {
	return NewClock(time.UTC, func() time.Time { return now })
}

func slot(day models.Weekday, start string) models.ScheduleSlot {
	return models.ScheduleSlot{ID: string(day) + start, Day: day, StartTime: start, EndTime: EndTimeFor(start)}
}

func activeStudent(id string, slots ...models.ScheduleSlot) models.Student {
	return models.Student{
		ID:          id,
		Name:        "Student " + id,
		Phone:       "+54 9 11 1234-" + id,
		Schedule:    slots,
		JoinDate:    "2024-01-01",
		Status:      models.StudentStatusActive,
		Evaluations: []models.BodyEvaluation{},
	}
}

func baseSnapshot(now time.Time, capacity int, students ...models.Student) models.Snapshot {
	snap := SeedSnapshot(now, SeedOptions{MaxCapacity: capacity})
	snap.Students = students
	return snap
}

// newLoadedState builds a state service hydrated from snap through a stub
// loader. Fees due for the simulated period are generated during Load.
func newLoadedState(t *testing.T, now time.Time, snap models.Snapshot) (*GymStateService, *recordingWriter) {
	t.Helper()
	writer := &recordingWriter{}
	svc := NewGymStateService(GymStateConfig{
		Loader: loaderStub{snap: snap},
		Writer: writer,
		Clock:  fixedClock(now),
		NewID:  sequentialIDs(),
	})
	require.Equal(t, LoadSourceRemote, svc.Load(context.Background()))
	writer.reset()
	return svc, writer
}

func intPtr(v int) *int { return &v }

// refTime is a Wednesday inside the grace window.
var refTime = time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)
