package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panostzan/0500/internal"
)

func TestBuildWeeklyReview(t *testing.T) {
	_, svc := newSleepFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	short, long := 6.0, 8.0
	require.NoError(t, svc.SaveSleepLog(ctx, []internal.SleepRecord{
		{Date: "2026-08-28", Hours: &short},
		{Date: "2026-08-29", Hours: &long},
	}))

	svc.SaveDailyGoalHistory([]internal.DailyGoalSnapshot{
		{Date: "2026-08-28", Completed: 2, Total: 4},
		{Date: "2026-08-29", Completed: 3, Total: 4},
		{Date: "2026-08-20", Completed: 1, Total: 1}, // outside the window
	})

	completedAt := now.AddDate(0, 0, -2)
	svc.SaveGoals(ctx, &internal.GoalList{
		MidTerm: []internal.Goal{{Text: "ship it", Checked: true, CompletedAt: &completedAt}},
	})

	review := BuildWeeklyReview(ctx, svc, now)

	assert.Equal(t, 2, review.Sleep.NightsLogged)
	require.NotNil(t, review.Sleep.AvgDuration)
	assert.InDelta(t, 7.0, *review.Sleep.AvgDuration, 0.01)
	require.NotNil(t, review.Sleep.BestNight)
	assert.Equal(t, "2026-08-29", review.Sleep.BestNight.Date)
	assert.Equal(t, "2026-08-28", review.Sleep.WorstNight.Date)

	require.Len(t, review.Goals.DailyByDay, 7)
	assert.Equal(t, 2, review.Goals.DaysTracked)
	assert.Equal(t, 5, review.Goals.TotalCompleted)
	assert.Equal(t, 8, review.Goals.TotalGoals)
	require.NotNil(t, review.Goals.CompletionRate)
	assert.Equal(t, 63, *review.Goals.CompletionRate)
	require.Len(t, review.Goals.MidTermCompleted, 1)
	assert.Equal(t, "ship it", review.Goals.MidTermCompleted[0].Text)
}

func TestBuildWeeklyReviewEmpty(t *testing.T) {
	_, svc := newSleepFixture(t)
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	review := BuildWeeklyReview(context.Background(), svc, now)
	assert.Zero(t, review.Sleep.NightsLogged)
	assert.Nil(t, review.Sleep.AvgDuration)
	assert.Nil(t, review.Goals.CompletionRate)
	assert.Len(t, review.Goals.DailyByDay, 7)
	assert.Empty(t, review.Goals.MidTermCompleted)
}
