// Package dashboard holds the domain logic behind the morning-dashboard
// panels: the sleep state machine and analytics, the schedule notebook
// helpers, goal bookkeeping, and the weekly review.
package dashboard

import (
	"context"
	"time"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/data"
)

// The bedtime button is usually pressed a while before falling asleep, and
// the wake button a while after waking; both logged times are shifted to
// compensate.
const (
	fallAsleepBuffer = 20 * time.Minute
	wakeAdjustment   = 10 * time.Minute
)

// SleepTracker drives the per-user sleep log: NoPendingSleep -> BedtimeLogged
// -> Complete, transitioning on LogBedtime / LogWakeUp. At most one open
// record (bedtime without wake) exists at a time.
type SleepTracker struct {
	svc    *data.Service
	logger internal.Logger
	now    func() time.Time
}

func NewSleepTracker(svc *data.Service, logger internal.Logger) *SleepTracker {
	return &SleepTracker{svc: svc, logger: logger, now: time.Now}
}

// WithClock fixes the tracker's clock. Tests only.
func (t *SleepTracker) WithClock(now func() time.Time) *SleepTracker {
	t.now = now
	return t
}

// LogBedtime opens tonight's record (or moves the bedtime of an already-open
// one) and returns the recorded bedtime.
func (t *SleepTracker) LogBedtime(ctx context.Context) (time.Time, error) {
	bed := t.now().Add(fallAsleepBuffer)
	log := t.svc.LoadSleepLog(ctx)

	if last := lastRecord(log); last != nil && last.Open() {
		// Re-pressing the button just moves the pending bedtime.
		last.Bedtime = &bed
		return bed, t.svc.UpsertSleepEntry(ctx, *last)
	}

	rec := internal.SleepRecord{
		Date:    bed.Format("2006-01-02"),
		Bedtime: &bed,
	}
	return bed, t.svc.UpsertSleepEntry(ctx, rec)
}

// LogWakeUp closes the open record, computing the slept hours. When the
// recorded bedtime would land after the wake time, its date is rolled back a
// day so wake > bedtime always holds. Without an open record a synthetic
// bedtime is estimated from the target sleep hours instead of opening a
// second record.
func (t *SleepTracker) LogWakeUp(ctx context.Context) (time.Time, error) {
	wake := t.now().Add(-wakeAdjustment)
	log := t.svc.LoadSleepLog(ctx)

	if last := lastRecord(log); last != nil && last.Open() {
		bed := *last.Bedtime
		if !wake.After(bed) {
			bed = bed.AddDate(0, 0, -1)
		}
		hours := wake.Sub(bed).Hours()
		last.Bedtime = &bed
		last.WakeTime = &wake
		last.Hours = &hours
		return wake, t.svc.UpsertSleepEntry(ctx, *last)
	}

	settings := t.svc.LoadSleepSettings(ctx)
	est := wake.Add(-time.Duration(settings.TargetSleepHours * float64(time.Hour)))
	hours := settings.TargetSleepHours
	t.logger.Warnf("wake logged with no pending bedtime, estimating bedtime at %s", est.Format(time.Kitchen))
	rec := internal.SleepRecord{
		Date:     wake.Format("2006-01-02"),
		Bedtime:  &est,
		WakeTime: &wake,
		Hours:    &hours,
	}
	return wake, t.svc.UpsertSleepEntry(ctx, rec)
}

// Pending reports whether an open record exists (bedtime logged, wake not).
func (t *SleepTracker) Pending(ctx context.Context) bool {
	last := lastRecord(t.svc.LoadSleepLog(ctx))
	return last != nil && last.Open()
}

func lastRecord(log []internal.SleepRecord) *internal.SleepRecord {
	if len(log) == 0 {
		return nil
	}
	return &log[len(log)-1]
}
