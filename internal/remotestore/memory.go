package remotestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/panostzan/0500/internal"
)

// MemoryStore is the in-process backend used in development and tests. It
// mirrors the postgres backend's ordering guarantees.
type MemoryStore struct {
	mu       sync.RWMutex
	goals    map[string][]GoalRow     // userID -> rows
	schedule map[string][]ScheduleRow // userID -> rows
	sleep    map[string][]SleepRow    // userID -> rows, kept sorted by date
	profiles map[string]*ProfileRow
	notes    map[string]string
	logger   internal.Logger
}

func NewMemoryStore(logger internal.Logger) *MemoryStore {
	return &MemoryStore{
		goals:    make(map[string][]GoalRow),
		schedule: make(map[string][]ScheduleRow),
		sleep:    make(map[string][]SleepRow),
		profiles: make(map[string]*ProfileRow),
		notes:    make(map[string]string),
		logger:   logger,
	}
}

// --- GoalStore ---

func (m *MemoryStore) ListGoals(ctx context.Context, userID string) ([]GoalRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := append([]GoalRow(nil), m.goals[userID]...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].SortOrder < rows[j].SortOrder
	})
	return rows, nil
}

func (m *MemoryStore) DeleteGoals(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.goals, userID)
	return nil
}

func (m *MemoryStore) InsertGoals(ctx context.Context, rows []GoalRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		m.goals[r.UserID] = append(m.goals[r.UserID], r)
	}
	return nil
}

// --- ScheduleStore ---

func (m *MemoryStore) ListSchedule(ctx context.Context, userID string) ([]ScheduleRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := append([]ScheduleRow(nil), m.schedule[userID]...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SortOrder < rows[j].SortOrder })
	return rows, nil
}

func (m *MemoryStore) DeleteSchedule(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schedule, userID)
	return nil
}

func (m *MemoryStore) InsertSchedule(ctx context.Context, rows []ScheduleRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		m.schedule[r.UserID] = append(m.schedule[r.UserID], r)
	}
	return nil
}

// --- SleepStore ---

func (m *MemoryStore) ListSleepLog(ctx context.Context, userID string) ([]SleepRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := append([]SleepRow(nil), m.sleep[userID]...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

func (m *MemoryStore) UpsertSleepEntries(ctx context.Context, rows []SleepRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		existing := m.sleep[r.UserID]
		replaced := false
		for i := range existing {
			if existing[i].Date == r.Date {
				existing[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, r)
		}
		m.sleep[r.UserID] = existing
	}
	return nil
}

func (m *MemoryStore) DeleteSleepEntry(ctx context.Context, userID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.sleep[userID]
	for i := range rows {
		if rows[i].Date == date {
			m.sleep[userID] = append(rows[:i], rows[i+1:]...)
			break
		}
	}
	return nil
}

// --- ProfileStore ---

func (m *MemoryStore) GetProfile(ctx context.Context, userID string) (*ProfileRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, row *ProfileRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *row
	cp.UpdatedAt = time.Now()
	m.profiles[row.ID] = &cp
	return nil
}

// --- NotesStore ---

func (m *MemoryStore) GetNotes(ctx context.Context, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notes[userID]
	if !ok {
		return "", ErrNotFound
	}
	return n, nil
}

func (m *MemoryStore) UpdateNotes(ctx context.Context, userID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[userID] = content
	return nil
}

func (m *MemoryStore) Close() {}

var _ Store = (*MemoryStore)(nil)
