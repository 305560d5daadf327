package dashboard

import (
	"fmt"
	"time"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/data"
)

// ToggleGoal flips the checkbox at the given category position, stamping
// CompletedAt on check and clearing it on uncheck. The timestamp feeds the
// weekly review's "completed this week" section.
func ToggleGoal(list *internal.GoalList, category string, index int, now time.Time) error {
	goals := list.Category(category)
	if goals == nil {
		return fmt.Errorf("unknown goal category %q", category)
	}
	if index < 0 || index >= len(goals) {
		return fmt.Errorf("goal index %d out of range for %s", index, category)
	}
	goals[index].Checked = !goals[index].Checked
	if goals[index].Checked {
		goals[index].CompletedAt = &now
	} else {
		goals[index].CompletedAt = nil
	}
	return nil
}

// SnapshotDailyGoals records today's daily-goal completion into the local
// history, replacing any earlier snapshot for the same date.
func SnapshotDailyGoals(svc *data.Service, list *internal.GoalList, now time.Time) {
	date := now.Format("2006-01-02")
	completed := 0
	for _, g := range list.Daily {
		if g.Checked {
			completed++
		}
	}
	snap := internal.DailyGoalSnapshot{Date: date, Completed: completed, Total: len(list.Daily)}

	history := svc.LoadDailyGoalHistory()
	replaced := false
	for i := range history {
		if history[i].Date == date {
			history[i] = snap
			replaced = true
			break
		}
	}
	if !replaced {
		history = append(history, snap)
	}
	svc.SaveDailyGoalHistory(history)
}

// CompletedMidTermSince lists mid-term goals checked on or after the cutoff.
func CompletedMidTermSince(list *internal.GoalList, cutoff time.Time) []internal.Goal {
	var out []internal.Goal
	for _, g := range list.MidTerm {
		if g.Checked && g.CompletedAt != nil && !g.CompletedAt.Before(cutoff) {
			out = append(out, g)
		}
	}
	return out
}
