package data

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/localstore"
	"github.com/panostzan/0500/internal/remotestore"
)

// fakeRemote records calls and returns injected errors. Zero value behaves as
// an empty, healthy backend.
type fakeRemote struct {
	mu sync.Mutex

	goals        []remotestore.GoalRow
	listGoalsErr error
	deleteErr    error
	insertErr    error
	deleteCalls  int
	insertCalls  int

	// Optional hooks for holding a replace cycle mid-flight. When set,
	// DeleteGoals signals deleteStarted and then blocks on deleteGate.
	deleteStarted chan struct{}
	deleteGate    chan struct{}

	schedule []remotestore.ScheduleRow

	sleep     []remotestore.SleepRow
	upsertErr error

	notes        string
	notesUpdates int
}

func (f *fakeRemote) ListGoals(ctx context.Context, userID string) ([]remotestore.GoalRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listGoalsErr != nil {
		return nil, f.listGoalsErr
	}
	return append([]remotestore.GoalRow(nil), f.goals...), nil
}

func (f *fakeRemote) DeleteGoals(ctx context.Context, userID string) error {
	if f.deleteStarted != nil {
		f.deleteStarted <- struct{}{}
	}
	if f.deleteGate != nil {
		<-f.deleteGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.goals = nil
	return nil
}

func (f *fakeRemote) InsertGoals(ctx context.Context, rows []remotestore.GoalRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.goals = append(f.goals, rows...)
	return nil
}

func (f *fakeRemote) ListSchedule(ctx context.Context, userID string) ([]remotestore.ScheduleRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remotestore.ScheduleRow(nil), f.schedule...), nil
}

func (f *fakeRemote) DeleteSchedule(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedule = nil
	return nil
}

func (f *fakeRemote) InsertSchedule(ctx context.Context, rows []remotestore.ScheduleRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedule = append(f.schedule, rows...)
	return nil
}

func (f *fakeRemote) ListSleepLog(ctx context.Context, userID string) ([]remotestore.SleepRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remotestore.SleepRow(nil), f.sleep...), nil
}

func (f *fakeRemote) UpsertSleepEntries(ctx context.Context, rows []remotestore.SleepRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, r := range rows {
		replaced := false
		for i := range f.sleep {
			if f.sleep[i].Date == r.Date {
				f.sleep[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			f.sleep = append(f.sleep, r)
		}
	}
	return nil
}

func (f *fakeRemote) DeleteSleepEntry(ctx context.Context, userID, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sleep {
		if f.sleep[i].Date == date {
			f.sleep = append(f.sleep[:i], f.sleep[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRemote) GetProfile(ctx context.Context, userID string) (*remotestore.ProfileRow, error) {
	return nil, remotestore.ErrNotFound
}

func (f *fakeRemote) UpdateProfile(ctx context.Context, row *remotestore.ProfileRow) error {
	return nil
}

func (f *fakeRemote) GetNotes(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notes == "" {
		return "", remotestore.ErrNotFound
	}
	return f.notes, nil
}

func (f *fakeRemote) UpdateNotes(ctx context.Context, userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = content
	f.notesUpdates++
	return nil
}

func (f *fakeRemote) Close() {}

var _ remotestore.Store = (*fakeRemote)(nil)

func newTestService(t *testing.T, remote remotestore.Store) (*Service, *localstore.Store) {
	t.Helper()
	logger := internal.NewNopLogger()
	local, err := localstore.Open(t.TempDir(), "u1", 0, logger)
	require.NoError(t, err)
	userID := ""
	if remote != nil {
		userID = "u1"
	}
	return NewService(remote, local, userID, NewBus(), logger), local
}

func sampleGoals() *internal.GoalList {
	return &internal.GoalList{
		Daily:   []internal.Goal{{Text: "wake at 5"}, {Text: "run"}},
		MidTerm: []internal.Goal{{Text: "ship the project"}},
	}
}

func TestLoadGoalsBacksUpRemote(t *testing.T) {
	remote := &fakeRemote{goals: []remotestore.GoalRow{
		{ID: "g1", UserID: "u1", Category: "daily", Text: "wake at 5"},
		{ID: "g2", UserID: "u1", Category: "longTerm", Text: "marathon"},
	}}
	svc, local := newTestService(t, remote)

	goals := svc.LoadGoals(context.Background())
	require.Len(t, goals.Daily, 1)
	require.Len(t, goals.LongTerm, 1)
	assert.Equal(t, "wake at 5", goals.Daily[0].Text)

	var backup internal.GoalList
	assert.True(t, local.GetJSON(localstore.KeyGoals, &backup))
	assert.Equal(t, 2, backup.Total())
}

func TestLoadGoalsFallsBackOnRemoteError(t *testing.T) {
	remote := &fakeRemote{listGoalsErr: errors.New("timeout")}
	svc, local := newTestService(t, remote)
	local.SetJSON(localstore.KeyGoals, sampleGoals())

	goals := svc.LoadGoals(context.Background())
	assert.Equal(t, 3, goals.Total(), "remote failure falls back to the local backup")
}

func TestLoadGoalsKeepsBackupOnEmptyRemote(t *testing.T) {
	remote := &fakeRemote{} // healthy but empty
	svc, local := newTestService(t, remote)
	local.SetJSON(localstore.KeyGoals, sampleGoals())

	goals := svc.LoadGoals(context.Background())
	assert.Equal(t, 3, goals.Total(), "an empty remote read must not wipe the backup")

	var backup internal.GoalList
	assert.True(t, local.GetJSON(localstore.KeyGoals, &backup))
	assert.Equal(t, 3, backup.Total())
}

func TestSaveGoalsRefusesEmptyPayload(t *testing.T) {
	remote := &fakeRemote{goals: []remotestore.GoalRow{
		{ID: "g1", UserID: "u1", Category: "daily", Text: "keep me"},
	}}
	svc, _ := newTestService(t, remote)

	err := svc.SaveGoals(context.Background(), &internal.GoalList{})
	assert.NoError(t, err)
	assert.Equal(t, 0, remote.deleteCalls, "empty payload must never reach the delete cycle")

	rows, _ := remote.ListGoals(context.Background(), "u1")
	assert.Len(t, rows, 1)
}

func TestSaveGoalsReplaceCycle(t *testing.T) {
	remote := &fakeRemote{goals: []remotestore.GoalRow{
		{ID: "old", UserID: "u1", Category: "daily", Text: "stale"},
	}}
	svc, local := newTestService(t, remote)

	err := svc.SaveGoals(context.Background(), sampleGoals())
	require.NoError(t, err)
	assert.Equal(t, 1, remote.deleteCalls)
	assert.Equal(t, 1, remote.insertCalls)

	rows, _ := remote.ListGoals(context.Background(), "u1")
	assert.Len(t, rows, 3, "old rows replaced by the new payload")

	var backup internal.GoalList
	assert.True(t, local.GetJSON(localstore.KeyGoals, &backup))
	assert.Equal(t, 3, backup.Total())
}

func TestSaveGoalsDeleteFailureSkipsInsert(t *testing.T) {
	remote := &fakeRemote{deleteErr: errors.New("conflict")}
	svc, local := newTestService(t, remote)
	local.SetJSON(localstore.KeyGoals, sampleGoals())

	err := svc.SaveGoals(context.Background(), &internal.GoalList{
		Daily: []internal.Goal{{Text: "new"}},
	})
	assert.Error(t, err)
	assert.Equal(t, 0, remote.insertCalls, "insert must not run after a failed delete")

	var backup internal.GoalList
	assert.True(t, local.GetJSON(localstore.KeyGoals, &backup))
	assert.Equal(t, 3, backup.Total(), "backup only refreshed after a successful cycle")
}

func TestSupersededSaveNeverTouchesBackup(t *testing.T) {
	remote := &fakeRemote{
		deleteStarted: make(chan struct{}, 2),
		deleteGate:    make(chan struct{}, 2),
	}
	svc, local := newTestService(t, remote)
	ctx := context.Background()

	goalsFor := func(text string) *internal.GoalList {
		return &internal.GoalList{Daily: []internal.Goal{{Text: text}}}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, svc.SaveGoals(ctx, goalsFor("first")))
	}()
	<-remote.deleteStarted // first cycle is mid-flight

	// Queue a second save, then a third that supersedes it in the queue.
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, svc.SaveGoals(ctx, goalsFor("second")))
	}()
	time.Sleep(50 * time.Millisecond)
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, svc.SaveGoals(ctx, goalsFor("third")))
	}()
	time.Sleep(50 * time.Millisecond)

	// Release the first cycle, then let the winning queued cycle run.
	remote.deleteGate <- struct{}{}
	<-remote.deleteStarted
	remote.deleteGate <- struct{}{}
	wg.Wait()

	rows, err := remote.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "third", rows[0].Text)

	var backup internal.GoalList
	require.True(t, local.GetJSON(localstore.KeyGoals, &backup))
	require.Len(t, backup.Daily, 1)
	assert.Equal(t, rows[0].Text, backup.Daily[0].Text,
		"backup may only hold a payload the remote store confirmed")

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, 2, remote.insertCalls, "the superseded payload never runs its cycle")
}

func TestCachedGoalsReturnsIndependentCopy(t *testing.T) {
	svc, _ := newTestService(t, nil)
	require.NoError(t, svc.SaveGoals(context.Background(), sampleGoals()))

	first := svc.CachedGoals()
	first.Daily[0].Checked = true

	second := svc.CachedGoals()
	assert.False(t, second.Daily[0].Checked,
		"mutating one caller's copy must not leak into the cache")
}

func TestClearGoalsBypassesGuard(t *testing.T) {
	remote := &fakeRemote{goals: []remotestore.GoalRow{
		{ID: "g1", UserID: "u1", Category: "daily", Text: "done with this"},
	}}
	svc, local := newTestService(t, remote)
	local.SetJSON(localstore.KeyGoals, sampleGoals())

	require.NoError(t, svc.ClearGoals(context.Background()))
	rows, _ := remote.ListGoals(context.Background(), "u1")
	assert.Empty(t, rows)
	_, ok := local.GetItem(localstore.KeyGoals)
	assert.False(t, ok)
}

func TestSaveScheduleRefusesBlankPayload(t *testing.T) {
	remote := &fakeRemote{schedule: []remotestore.ScheduleRow{
		{ID: "s1", UserID: "u1", Time: "5:00 AM", Activity: "run"},
	}}
	svc, _ := newTestService(t, remote)

	err := svc.SaveSchedule(context.Background(), internal.EmptySchedule())
	assert.NoError(t, err)
	rows, _ := remote.ListSchedule(context.Background(), "u1")
	assert.Len(t, rows, 1, "all-blank schedule must not replace remote rows")
}

func TestAnonymousGoalsStayLocal(t *testing.T) {
	svc, local := newTestService(t, nil)

	require.NoError(t, svc.SaveGoals(context.Background(), sampleGoals()))
	var backup internal.GoalList
	assert.True(t, local.GetJSON(localstore.KeyGoals, &backup))
	assert.Equal(t, 3, backup.Total())

	goals := svc.LoadGoals(context.Background())
	assert.Equal(t, 3, goals.Total())
}

func TestAnonymousSleepUpsertReplacesByDate(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	hours := 7.0
	require.NoError(t, svc.UpsertSleepEntry(ctx, internal.SleepRecord{Date: "2026-08-29"}))
	require.NoError(t, svc.UpsertSleepEntry(ctx, internal.SleepRecord{Date: "2026-08-29", Hours: &hours}))
	require.NoError(t, svc.UpsertSleepEntry(ctx, internal.SleepRecord{Date: "2026-08-30"}))

	log := svc.LoadSleepLog(ctx)
	require.Len(t, log, 2, "upsert is keyed by date")
	assert.Equal(t, 7.0, *log[0].Hours)
}

func TestDebouncedNotesFlush(t *testing.T) {
	remote := &fakeRemote{}
	svc, local := newTestService(t, remote)

	svc.SaveNotesDebounced("first draft")
	svc.SaveNotesDebounced("second draft")

	// The local write is immediate, before any flush.
	v, ok := local.GetItem(localstore.KeyNotes)
	assert.True(t, ok)
	assert.Equal(t, "second draft", v)

	svc.Flush()
	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, "second draft", remote.notes)
	assert.Equal(t, 1, remote.notesUpdates, "the burst collapses to one remote write")
}

func TestLoadSleepSettingsDefaults(t *testing.T) {
	svc, _ := newTestService(t, &fakeRemote{})
	settings := svc.LoadSleepSettings(context.Background())
	assert.Equal(t, 5, settings.WakeHour)
	assert.Equal(t, 7.5, settings.TargetSleepHours)
	assert.Equal(t, "21:30", settings.IdealBedtimeStart)
}
