// Package remotestore is the row-CRUD adapter over the hosted table store.
// Every operation is scoped by the owning user and returns errors as values;
// callers decide whether to retry, fall back, or degrade.
package remotestore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by single-row lookups when no row exists for the user.
var ErrNotFound = errors.New("remotestore: not found")

// GoalRow is one row of the goals table. SortOrder is the explicit position
// within the category.
type GoalRow struct {
	ID        string
	UserID    string
	Category  string
	Text      string
	Checked   bool
	SortOrder int
}

// ScheduleRow is one row of the schedule_entries table.
type ScheduleRow struct {
	ID        string
	UserID    string
	Time      string
	Activity  string
	SortOrder int
}

// SleepRow is one row of the sleep_log table, unique on (UserID, Date).
type SleepRow struct {
	UserID   string
	Date     string
	Bedtime  *time.Time
	WakeTime *time.Time
	Hours    *float64
}

// ProfileRow holds per-user sleep preferences from the profiles table.
type ProfileRow struct {
	ID               string
	WakeTime         string // "HH:MM"
	TargetSleepHours float64
	UpdatedAt        time.Time
}

type GoalStore interface {
	// ListGoals returns the user's goals ordered by category then sort order.
	ListGoals(ctx context.Context, userID string) ([]GoalRow, error)
	DeleteGoals(ctx context.Context, userID string) error
	InsertGoals(ctx context.Context, rows []GoalRow) error
}

type ScheduleStore interface {
	// ListSchedule returns the user's schedule ordered by sort order.
	ListSchedule(ctx context.Context, userID string) ([]ScheduleRow, error)
	DeleteSchedule(ctx context.Context, userID string) error
	InsertSchedule(ctx context.Context, rows []ScheduleRow) error
}

type SleepStore interface {
	// ListSleepLog returns the user's sleep log ordered by date ascending.
	ListSleepLog(ctx context.Context, userID string) ([]SleepRow, error)
	// UpsertSleepEntries inserts or replaces rows keyed by (user_id, date).
	UpsertSleepEntries(ctx context.Context, rows []SleepRow) error
	DeleteSleepEntry(ctx context.Context, userID, date string) error
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*ProfileRow, error)
	UpdateProfile(ctx context.Context, row *ProfileRow) error
}

type NotesStore interface {
	GetNotes(ctx context.Context, userID string) (string, error)
	UpdateNotes(ctx context.Context, userID, content string) error
}

// Store bundles every table adapter. The postgres and memory backends
// implement all of them on one value.
type Store interface {
	GoalStore
	ScheduleStore
	SleepStore
	ProfileStore
	NotesStore

	// Close releases backend resources. Safe to call once at shutdown.
	Close()
}
