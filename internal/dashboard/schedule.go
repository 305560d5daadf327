package dashboard

import (
	"context"
	"time"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/data"
)

// NormalizeEntries runs every entry's time through the parser. Activity text
// is left alone.
func NormalizeEntries(entries []internal.ScheduleEntry) []internal.ScheduleEntry {
	out := make([]internal.ScheduleEntry, len(entries))
	for i, e := range entries {
		e.Time = NormalizeTime(e.Time)
		out[i] = e
	}
	return out
}

// PadSchedule grows the schedule to the default slot count. Longer schedules
// (explicit "add row") are kept as-is.
func PadSchedule(entries []internal.ScheduleEntry) []internal.ScheduleEntry {
	for len(entries) < internal.DefaultScheduleSlots {
		entries = append(entries, internal.ScheduleEntry{})
	}
	return entries
}

// MaybeResetDaily clears the schedule back to fresh padding slots once per
// calendar day, going through the explicit clear path rather than a save so
// the empty-payload guard stays strict for ordinary saves.
func MaybeResetDaily(ctx context.Context, svc *data.Service, now time.Time) (bool, error) {
	today := now.Format("2006-01-02")
	if svc.LastScheduleReset() == today {
		return false, nil
	}
	first := svc.LastScheduleReset() == ""
	svc.MarkScheduleReset(today)
	if first {
		// Nothing to clear on the very first run, just stamp the marker.
		return false, nil
	}
	return true, svc.ClearSchedule(ctx)
}
