package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
)

type countingEnsurer struct {
	calls int32
}

func (c *countingEnsurer) EnsureCurrentFees(context.Context) []models.Fee {
	atomic.AddInt32(&c.calls, 1)
	return []models.Fee{{ID: "f"}}
}

func TestFeeSchedulerTicks(t *testing.T) {
	ensurer := &countingEnsurer{}
	scheduler := NewFeeScheduler(ensurer, 5*time.Millisecond, nil)
	scheduler.Start(context.Background())
	scheduler.Start(context.Background())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&ensurer.calls) >= 2 }, time.Second, 5*time.Millisecond)
	scheduler.Stop()
	calls := atomic.LoadInt32(&ensurer.calls)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, atomic.LoadInt32(&ensurer.calls))
	scheduler.Stop()
}

func TestFeeSchedulerDisabled(t *testing.T) {
	ensurer := &countingEnsurer{}
	scheduler := NewFeeScheduler(ensurer, 0, nil)
	scheduler.Start(context.Background())
	scheduler.Stop()
	assert.Equal(t, 1, scheduler.RunOnce(context.Background()))
}

func feesFor(fees []models.Fee, period models.Period) int {
	n := 0
	for _, fee := range fees {
		if fee.Period() == period {
			n++
		}
	}
	return n
}

func TestFeeSchedulerBillsWallClockMonthRollover(t *testing.T) {
	var wall atomic.Value
	wall.Store(time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC))
	writer := &recordingWriter{}
	svc := NewGymStateService(GymStateConfig{
		Loader: loaderStub{snap: baseSnapshot(wall.Load().(time.Time), 10, activeStudent("s1"))},
		Writer: writer,
		Clock:  NewClock(time.UTC, func() time.Time { return wall.Load().(time.Time) }),
		NewID:  sequentialIDs(),
	})
	require.Equal(t, LoadSourceRemote, svc.Load(context.Background()))
	assert.True(t, svc.Settings().SimulatedDate.IsZero())

	scheduler := NewFeeScheduler(svc, time.Minute, nil)
	assert.Equal(t, 0, scheduler.RunOnce(context.Background()))

	wall.Store(time.Date(2024, time.April, 2, 8, 0, 0, 0, time.UTC))
	writer.reset()
	assert.Equal(t, 1, scheduler.RunOnce(context.Background()))

	april := models.Period{Month: 3, Year: 2024}
	assert.Equal(t, 1, feesFor(svc.Snapshot().Fees, april))
	assert.Equal(t, []string{IntentUpsertFee}, writer.kinds())
	assert.Equal(t, "2024-04-02", svc.ClockInfo().Date)
	assert.Equal(t, 0, scheduler.RunOnce(context.Background()))
}

func TestFeeSchedulerIgnoresWallClockWhilePinned(t *testing.T) {
	var wall atomic.Value
	wall.Store(time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC))
	svc := NewGymStateService(GymStateConfig{
		Loader: loaderStub{snap: baseSnapshot(wall.Load().(time.Time), 10, activeStudent("s1"))},
		Clock:  NewClock(time.UTC, func() time.Time { return wall.Load().(time.Time) }),
		NewID:  sequentialIDs(),
	})
	svc.Load(context.Background())
	_, err := svc.SetSimulatedDay(context.Background(), dto.ClockDayRequest{Day: 15})
	require.NoError(t, err)

	wall.Store(time.Date(2024, time.April, 2, 8, 0, 0, 0, time.UTC))
	scheduler := NewFeeScheduler(svc, time.Minute, nil)
	assert.Equal(t, 0, scheduler.RunOnce(context.Background()))
	assert.Equal(t, "2024-03-15", svc.ClockInfo().Date)

	info, err := svc.ResetClock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-04-02", info.Date)
	assert.True(t, svc.Settings().SimulatedDate.IsZero())
	assert.Equal(t, 1, feesFor(svc.Snapshot().Fees, models.Period{Month: 3, Year: 2024}))
}
