package dashboard

import (
	"fmt"
	"time"

	"github.com/panostzan/0500/internal"
)

// DayLog is one calendar day's view of the sleep log, present or not.
type DayLog struct {
	Date     string     `json:"date"`
	DayName  string     `json:"dayName"`
	Duration *float64   `json:"duration"`
	Bedtime  *time.Time `json:"bedtime"`
}

// LastNDays projects the log onto the last n calendar days ending at now.
// Days without a completed record carry a nil duration.
func LastNDays(log []internal.SleepRecord, n int, now time.Time) []DayLog {
	byDate := make(map[string]*internal.SleepRecord, len(log))
	for i := range log {
		if log[i].Hours != nil {
			byDate[log[i].Date] = &log[i]
		}
	}

	out := make([]DayLog, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := day.Format("2006-01-02")
		d := DayLog{Date: date, DayName: day.Format("Mon")}
		if rec, ok := byDate[date]; ok {
			d.Duration = rec.Hours
			d.Bedtime = rec.Bedtime
		}
		out = append(out, d)
	}
	return out
}

// SleepDebt is actual minus target hours over the last `days` days, counting
// only days that have data. Positive means ahead of target.
func SleepDebt(log []internal.SleepRecord, settings internal.SleepSettings, days int, now time.Time) float64 {
	var actual float64
	withData := 0
	for _, d := range LastNDays(log, days, now) {
		if d.Duration != nil {
			actual += *d.Duration
			withData++
		}
	}
	if withData == 0 {
		return 0
	}
	return actual - float64(withData)*settings.TargetSleepHours
}

// WeeklyAverage is the mean slept hours over the last 7 days with data, nil
// when no day has data.
func WeeklyAverage(log []internal.SleepRecord, now time.Time) *float64 {
	var total float64
	count := 0
	for _, d := range LastNDays(log, 7, now) {
		if d.Duration != nil {
			total += *d.Duration
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

// Score rates the given days 0-100 against the target: each night loses 15
// points per hour of deviation. Needs at least 3 nights of data.
func Score(days []DayLog, targetHours float64) *int {
	var total float64
	count := 0
	for _, d := range days {
		if d.Duration == nil {
			continue
		}
		diff := *d.Duration - targetHours
		if diff < 0 {
			diff = -diff
		}
		night := 100 - diff*15
		if night < 0 {
			night = 0
		}
		total += night
		count++
	}
	if count < 3 {
		return nil
	}
	score := int(total/float64(count) + 0.5)
	return &score
}

// Streak counts consecutive days ending at today (today itself may still be
// unlogged) with at least 7 hours slept, looking back at most 30 days.
func Streak(log []internal.SleepRecord, now time.Time) int {
	byDate := make(map[string]float64, len(log))
	for _, rec := range log {
		if rec.Hours != nil {
			byDate[rec.Date] = *rec.Hours
		}
	}
	streak := 0
	for i := 0; i < 30; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		if hours, ok := byDate[date]; ok && hours >= 7 {
			streak++
		} else if i > 0 {
			break
		}
	}
	return streak
}

// DurationBand maps slept hours onto the display bands.
func DurationBand(hours *float64) string {
	switch {
	case hours == nil:
		return "none"
	case *hours < 5:
		return "poor"
	case *hours < 6:
		return "low"
	case *hours < 7:
		return "ok"
	case *hours < 8:
		return "good"
	default:
		return "ideal"
	}
}

// QualityPercent maps slept hours onto a 0-100 marker position: 4h and below
// is 0, 9h and above is 100.
func QualityPercent(hours float64) float64 {
	if hours <= 4 {
		return 0
	}
	if hours >= 9 {
		return 100
	}
	return (hours - 4) / 5 * 100
}

// ComputeBedtime derives the bedtime clock position from wake time and target
// hours, wrapping across midnight.
func ComputeBedtime(settings internal.SleepSettings) (hour, minute int) {
	bedMinutes := settings.WakeHour*60 + settings.WakeMinute - int(settings.TargetSleepHours*60)
	if bedMinutes < 0 {
		bedMinutes += 24 * 60
	}
	return bedMinutes / 60, bedMinutes % 60
}

// InIdealZone reports whether the bedtime clock position falls inside the
// ideal window, handling windows that span midnight.
func InIdealZone(bed time.Time, settings internal.SleepSettings) bool {
	startH, startM, ok := splitClock(settings.IdealBedtimeStart)
	if !ok {
		return false
	}
	endH, endM, ok := splitClock(settings.IdealBedtimeEnd)
	if !ok {
		return false
	}

	bedMin := bed.Hour()*60 + bed.Minute()
	start := startH*60 + startM
	end := endH*60 + endM

	if end < start {
		end += 24 * 60
		if bedMin < start {
			return bedMin+24*60 <= end
		}
	}
	return bedMin >= start && bedMin <= end
}

func splitClock(v string) (int, int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
