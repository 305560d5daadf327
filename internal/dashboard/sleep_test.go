package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/data"
	"github.com/panostzan/0500/internal/localstore"
)

func newSleepFixture(t *testing.T) (*SleepTracker, *data.Service) {
	t.Helper()
	logger := internal.NewNopLogger()
	local, err := localstore.Open(t.TempDir(), "u1", 0, logger)
	require.NoError(t, err)
	svc := data.NewService(nil, local, "", data.NewBus(), logger)
	return NewSleepTracker(svc, logger), svc
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return ts
}

func TestBedtimeThenWakeCompletesOneRecord(t *testing.T) {
	tracker, svc := newSleepFixture(t)
	ctx := context.Background()

	tracker.WithClock(func() time.Time { return at(t, "2026-08-29 21:40") })
	bed, err := tracker.LogBedtime(ctx)
	require.NoError(t, err)
	assert.Equal(t, at(t, "2026-08-29 22:00"), bed, "bedtime shifts forward by the fall-asleep buffer")
	assert.True(t, tracker.Pending(ctx))

	tracker.WithClock(func() time.Time { return at(t, "2026-08-30 05:10") })
	wake, err := tracker.LogWakeUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, at(t, "2026-08-30 05:00"), wake, "wake shifts back by the lie-in adjustment")
	assert.False(t, tracker.Pending(ctx))

	log := svc.LoadSleepLog(ctx)
	require.Len(t, log, 1, "the cycle produces exactly one record")
	assert.Equal(t, "2026-08-29", log[0].Date)
	require.NotNil(t, log[0].Hours)
	assert.InDelta(t, 7.0, *log[0].Hours, 0.01)
}

func TestRepeatedBedtimeMovesTheOpenRecord(t *testing.T) {
	tracker, svc := newSleepFixture(t)
	ctx := context.Background()

	tracker.WithClock(func() time.Time { return at(t, "2026-08-29 21:00") })
	_, err := tracker.LogBedtime(ctx)
	require.NoError(t, err)

	tracker.WithClock(func() time.Time { return at(t, "2026-08-29 22:30") })
	bed, err := tracker.LogBedtime(ctx)
	require.NoError(t, err)

	log := svc.LoadSleepLog(ctx)
	require.Len(t, log, 1, "re-pressing the button must not open a second record")
	assert.Equal(t, bed, *log[0].Bedtime)
}

func TestWakeBeforeBedtimeRollsTheDateBack(t *testing.T) {
	tracker, svc := newSleepFixture(t)
	ctx := context.Background()

	// Bedtime logged just after midnight, so its raw timestamp lands on the
	// same calendar day as the wake-up.
	tracker.WithClock(func() time.Time { return at(t, "2026-08-30 06:00") })
	_, err := tracker.LogBedtime(ctx)
	require.NoError(t, err)

	tracker.WithClock(func() time.Time { return at(t, "2026-08-30 05:40") })
	wake, err := tracker.LogWakeUp(ctx)
	require.NoError(t, err)

	log := svc.LoadSleepLog(ctx)
	require.Len(t, log, 1)
	require.NotNil(t, log[0].Hours)
	assert.True(t, wake.After(*log[0].Bedtime), "wake must end up after bedtime")
	assert.Greater(t, *log[0].Hours, 0.0)
}

func TestWakeWithoutBedtimeEstimatesFromTarget(t *testing.T) {
	tracker, svc := newSleepFixture(t)
	ctx := context.Background()

	tracker.WithClock(func() time.Time { return at(t, "2026-08-30 05:10") })
	wake, err := tracker.LogWakeUp(ctx)
	require.NoError(t, err)

	log := svc.LoadSleepLog(ctx)
	require.Len(t, log, 1)
	require.NotNil(t, log[0].Hours)
	assert.Equal(t, 7.5, *log[0].Hours, "estimated night uses the target hours")
	assert.Equal(t, wake.Add(-7*time.Hour-30*time.Minute), *log[0].Bedtime)
	assert.False(t, tracker.Pending(ctx), "a synthetic record is already complete")
}
