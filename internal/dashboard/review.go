package dashboard

import (
	"context"
	"time"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/data"
)

// SleepSummary is the sleep half of the weekly review.
type SleepSummary struct {
	AvgDuration  *float64 `json:"avgDuration"`
	Score        *int     `json:"score"`
	NightsLogged int      `json:"nightsLogged"`
	Debt         float64  `json:"debt"`
	Streak       int      `json:"streak"`
	BestNight    *DayLog  `json:"bestNight,omitempty"`
	WorstNight   *DayLog  `json:"worstNight,omitempty"`
}

// GoalsSummary is the goal half of the weekly review.
type GoalsSummary struct {
	DailyByDay       []internal.DailyGoalSnapshot `json:"dailyByDay"`
	TotalCompleted   int                          `json:"totalCompleted"`
	TotalGoals       int                          `json:"totalGoals"`
	CompletionRate   *int                         `json:"completionRate"`
	DaysTracked      int                          `json:"daysTracked"`
	MidTermCompleted []internal.Goal              `json:"midTermCompleted"`
}

type WeeklyReview struct {
	Sleep SleepSummary `json:"sleep"`
	Goals GoalsSummary `json:"goals"`
}

// BuildWeeklyReview aggregates the last 7 days of sleep and goal data.
func BuildWeeklyReview(ctx context.Context, svc *data.Service, now time.Time) WeeklyReview {
	log := svc.LoadSleepLog(ctx)
	settings := svc.LoadSleepSettings(ctx)
	days := LastNDays(log, 7, now)

	var review WeeklyReview
	review.Sleep = summarizeSleep(days, log, settings, now)
	review.Goals = summarizeGoals(svc, now)
	return review
}

func summarizeSleep(days []DayLog, log []internal.SleepRecord, settings internal.SleepSettings, now time.Time) SleepSummary {
	s := SleepSummary{
		AvgDuration: WeeklyAverage(log, now),
		Score:       Score(days, settings.TargetSleepHours),
		Debt:        SleepDebt(log, settings, 7, now),
		Streak:      Streak(log, now),
	}
	var best, worst *DayLog
	for i := range days {
		d := &days[i]
		if d.Duration == nil {
			continue
		}
		s.NightsLogged++
		if best == nil || *d.Duration > *best.Duration {
			best = d
		}
		if worst == nil || *d.Duration < *worst.Duration {
			worst = d
		}
	}
	if best != nil && worst != nil && best != worst {
		s.BestNight, s.WorstNight = best, worst
	}
	return s
}

func summarizeGoals(svc *data.Service, now time.Time) GoalsSummary {
	history := svc.LoadDailyGoalHistory()
	byDate := make(map[string]internal.DailyGoalSnapshot, len(history))
	for _, h := range history {
		byDate[h.Date] = h
	}

	g := GoalsSummary{MidTermCompleted: []internal.Goal{}}
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		snap, ok := byDate[date]
		if !ok {
			snap = internal.DailyGoalSnapshot{Date: date}
		}
		g.DailyByDay = append(g.DailyByDay, snap)
		if snap.Total > 0 {
			g.DaysTracked++
			g.TotalCompleted += snap.Completed
			g.TotalGoals += snap.Total
		}
	}
	if g.TotalGoals > 0 {
		rate := int(float64(g.TotalCompleted)/float64(g.TotalGoals)*100 + 0.5)
		g.CompletionRate = &rate
	}

	if goals := svc.CachedGoals(); goals != nil {
		weekAgo := now.AddDate(0, 0, -7)
		g.MidTermCompleted = CompletedMidTermSince(goals, weekAgo)
	}
	return g
}
