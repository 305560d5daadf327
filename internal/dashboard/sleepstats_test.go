package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panostzan/0500/internal"
)

func hoursPtr(h float64) *float64 { return &h }

func logWith(now time.Time, hoursByOffset map[int]float64) []internal.SleepRecord {
	var log []internal.SleepRecord
	for offset, h := range hoursByOffset {
		h := h
		log = append(log, internal.SleepRecord{
			Date:  now.AddDate(0, 0, -offset).Format("2006-01-02"),
			Hours: &h,
		})
	}
	return log
}

func TestLastNDaysFillsGaps(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	log := logWith(now, map[int]float64{0: 7.5, 2: 6})

	days := LastNDays(log, 3, now)
	require.Len(t, days, 3)
	assert.Equal(t, "2026-08-28", days[0].Date)
	assert.Equal(t, 6.0, *days[0].Duration)
	assert.Nil(t, days[1].Duration, "a day without a record stays nil")
	assert.Equal(t, 7.5, *days[2].Duration)
}

func TestSleepDebtCountsOnlyLoggedDays(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	settings := internal.DefaultSleepSettings() // 7.5h target
	log := logWith(now, map[int]float64{0: 6.5, 1: 7.0})

	debt := SleepDebt(log, settings, 7, now)
	assert.InDelta(t, -1.5, debt, 0.01, "13.5 slept against a 15h target for two nights")

	assert.Zero(t, SleepDebt(nil, settings, 7, now), "no data means no debt")
}

func TestWeeklyAverage(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.Nil(t, WeeklyAverage(nil, now))

	log := logWith(now, map[int]float64{0: 6, 1: 8})
	avg := WeeklyAverage(log, now)
	require.NotNil(t, avg)
	assert.InDelta(t, 7.0, *avg, 0.01)
}

func TestScoreNeedsThreeNights(t *testing.T) {
	days := []DayLog{
		{Duration: hoursPtr(7.5)},
		{Duration: hoursPtr(7.5)},
	}
	assert.Nil(t, Score(days, 7.5))

	days = append(days, DayLog{Duration: hoursPtr(6.5)})
	score := Score(days, 7.5)
	require.NotNil(t, score)
	// Two perfect nights and one an hour off: (100+100+85)/3 = 95.
	assert.Equal(t, 95, *score)
}

func TestScoreFloorsAtZeroPerNight(t *testing.T) {
	days := []DayLog{
		{Duration: hoursPtr(0.5)},
		{Duration: hoursPtr(0.5)},
		{Duration: hoursPtr(0.5)},
	}
	score := Score(days, 7.5)
	require.NotNil(t, score)
	assert.Equal(t, 0, *score)
}

func TestStreakSkipsUnloggedToday(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	log := logWith(now, map[int]float64{1: 7.2, 2: 8, 3: 7})
	assert.Equal(t, 3, Streak(log, now), "today not being logged yet must not break the streak")

	log = logWith(now, map[int]float64{0: 7.2, 1: 8, 2: 6.5, 3: 9})
	assert.Equal(t, 2, Streak(log, now), "a short night ends the streak")
}

func TestDurationBand(t *testing.T) {
	assert.Equal(t, "none", DurationBand(nil))
	assert.Equal(t, "poor", DurationBand(hoursPtr(4.5)))
	assert.Equal(t, "low", DurationBand(hoursPtr(5.5)))
	assert.Equal(t, "ok", DurationBand(hoursPtr(6.5)))
	assert.Equal(t, "good", DurationBand(hoursPtr(7.5)))
	assert.Equal(t, "ideal", DurationBand(hoursPtr(8.5)))
}

func TestQualityPercentClamps(t *testing.T) {
	assert.Equal(t, 0.0, QualityPercent(3))
	assert.Equal(t, 100.0, QualityPercent(10))
	assert.InDelta(t, 70.0, QualityPercent(7.5), 0.01)
}

func TestComputeBedtimeWrapsMidnight(t *testing.T) {
	h, m := ComputeBedtime(internal.SleepSettings{WakeHour: 5, WakeMinute: 0, TargetSleepHours: 7.5})
	assert.Equal(t, 21, h)
	assert.Equal(t, 30, m)

	h, m = ComputeBedtime(internal.SleepSettings{WakeHour: 12, WakeMinute: 0, TargetSleepHours: 8})
	assert.Equal(t, 4, h)
	assert.Equal(t, 0, m)
}

func TestInIdealZone(t *testing.T) {
	settings := internal.DefaultSleepSettings() // 21:30 - 22:30

	in := time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC)
	out := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	assert.True(t, InIdealZone(in, settings))
	assert.False(t, InIdealZone(out, settings))

	overnight := internal.SleepSettings{IdealBedtimeStart: "23:00", IdealBedtimeEnd: "01:00"}
	assert.True(t, InIdealZone(time.Date(2026, 8, 30, 0, 30, 0, 0, time.UTC), overnight))
	assert.True(t, InIdealZone(time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC), overnight))
	assert.False(t, InIdealZone(time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC), overnight))
}
