package internal

import "time"

// Goal categories. Order here drives the user-visible order of the sections.
const (
	CategoryDaily    = "daily"
	CategoryMidTerm  = "midTerm"
	CategoryLongTerm = "longTerm"
)

// Categories lists the goal categories in display order.
var Categories = []string{CategoryDaily, CategoryMidTerm, CategoryLongTerm}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Goal is a single list item. ID is assigned by the remote store and is only
// stable while signed in; in local-only mode identity is positional.
type Goal struct {
	ID          string     `json:"id,omitempty"`
	Text        string     `json:"text"`
	Checked     bool       `json:"checked"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// GoalList holds every goal grouped by category. Slice order within a category
// is significant and is persisted as an explicit sort position.
type GoalList struct {
	Daily    []Goal `json:"daily"`
	MidTerm  []Goal `json:"midTerm"`
	LongTerm []Goal `json:"longTerm"`
}

// Category returns the slice for the named category, nil if unknown.
func (l *GoalList) Category(name string) []Goal {
	switch name {
	case CategoryDaily:
		return l.Daily
	case CategoryMidTerm:
		return l.MidTerm
	case CategoryLongTerm:
		return l.LongTerm
	}
	return nil
}

// SetCategory replaces the slice for the named category.
func (l *GoalList) SetCategory(name string, goals []Goal) {
	switch name {
	case CategoryDaily:
		l.Daily = goals
	case CategoryMidTerm:
		l.MidTerm = goals
	case CategoryLongTerm:
		l.LongTerm = goals
	}
}

// Clone returns a copy whose category slices can be mutated without touching
// the receiver. Nil slices stay nil so the JSON shape is preserved.
func (l *GoalList) Clone() *GoalList {
	return &GoalList{
		Daily:    cloneGoals(l.Daily),
		MidTerm:  cloneGoals(l.MidTerm),
		LongTerm: cloneGoals(l.LongTerm),
	}
}

func cloneGoals(in []Goal) []Goal {
	if in == nil {
		return nil
	}
	out := make([]Goal, len(in))
	copy(out, in)
	return out
}

// Total counts goals across all categories.
func (l *GoalList) Total() int {
	return len(l.Daily) + len(l.MidTerm) + len(l.LongTerm)
}

// ScheduleEntry is one row of the daily schedule notebook. Time holds the
// normalized form ("H:MM" or "H:MM AM/PM"); position in the enclosing slice is
// the persisted sort order.
type ScheduleEntry struct {
	ID       string `json:"id,omitempty"`
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

// DefaultScheduleSlots is the number of padding rows a fresh schedule starts with.
const DefaultScheduleSlots = 20

// EmptySchedule builds the default padded schedule.
func EmptySchedule() []ScheduleEntry {
	return make([]ScheduleEntry, DefaultScheduleSlots)
}

// ScheduleHasContent reports whether any entry carries a time or activity.
func ScheduleHasContent(entries []ScheduleEntry) bool {
	for _, e := range entries {
		if e.Time != "" || e.Activity != "" {
			return true
		}
	}
	return false
}

// SleepRecord tracks one night, keyed by (user, Date). A record with a bedtime
// and no wake time is "open"; at most one open record exists per user.
type SleepRecord struct {
	Date     string     `json:"date"` // ISO date, unique per user
	Bedtime  *time.Time `json:"bedtime"`
	WakeTime *time.Time `json:"wakeTime"`
	Hours    *float64   `json:"hours"`
}

// Open reports whether the record has a bedtime but no wake time yet.
func (r *SleepRecord) Open() bool {
	return r.Bedtime != nil && r.WakeTime == nil
}

type SleepSettings struct {
	WakeHour          int     `json:"wakeHour"`
	WakeMinute        int     `json:"wakeMinute"`
	TargetSleepHours  float64 `json:"targetSleepHours"`
	IdealBedtimeStart string  `json:"idealBedtimeStart"`
	IdealBedtimeEnd   string  `json:"idealBedtimeEnd"`
}

// DefaultSleepSettings mirrors the dashboard defaults: 05:00 wake, 7.5h target,
// ideal bedtime window 21:30-22:30.
func DefaultSleepSettings() SleepSettings {
	return SleepSettings{
		WakeHour:          5,
		WakeMinute:        0,
		TargetSleepHours:  7.5,
		IdealBedtimeStart: "21:30",
		IdealBedtimeEnd:   "22:30",
	}
}

// CollapsedState is a UI-only preference: whether each goal section is folded.
type CollapsedState struct {
	Daily    bool `json:"daily"`
	MidTerm  bool `json:"midTerm"`
	LongTerm bool `json:"longTerm"`
}

// DefaultCollapsedState keeps daily open and folds the long-horizon sections.
func DefaultCollapsedState() CollapsedState {
	return CollapsedState{Daily: false, MidTerm: true, LongTerm: true}
}

// DailyGoalSnapshot records one day's daily-goal completion for the weekly review.
type DailyGoalSnapshot struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}
