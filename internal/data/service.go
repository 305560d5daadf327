// Package data is the synchronization layer between the remote row store and
// the local backup store. Reads prefer the remote store when a user is signed
// in and fall back to the local backup on errors or suspicious empty results;
// whole-collection writes go through a per-resource save lock, and
// per-keystroke writes are debounced with an explicit flush path.
package data

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/localstore"
	"github.com/panostzan/0500/internal/remotestore"
)

// Resource names for the save lock.
const (
	resourceGoals    = "goals"
	resourceSchedule = "schedule"
)

// Service owns one user's dashboard state: in-memory caches, the remote and
// local adapters, and the write coalescing machinery. A Service is created on
// sign-in (or once, anonymously) and closed on sign-out; there is no shared
// global state between users.
type Service struct {
	remote remotestore.Store // nil in anonymous/local-only mode
	local  *localstore.Store
	logger internal.Logger
	userID string // empty in anonymous mode
	locks  *SaveLock
	bus    *Bus

	mu            sync.Mutex
	goalsCache    *internal.GoalList
	scheduleCache []internal.ScheduleEntry

	notesDebounce    *Debouncer
	scheduleDebounce *Debouncer
	pendingNotes     string
	pendingSchedule  []internal.ScheduleEntry
}

// NewService builds a signed-in service when remote is non-nil and userID is
// set, otherwise a local-only one.
func NewService(remote remotestore.Store, local *localstore.Store, userID string, bus *Bus, logger internal.Logger) *Service {
	s := &Service{
		remote: remote,
		local:  local,
		logger: logger,
		userID: userID,
		locks:  NewSaveLock(),
		bus:    bus,
	}
	s.notesDebounce = NewDebouncer(DebounceDelay, s.flushNotes)
	s.scheduleDebounce = NewDebouncer(DebounceDelay, s.flushSchedule)
	return s
}

func (s *Service) signedIn() bool {
	return s.remote != nil && s.userID != ""
}

// Bus exposes the invalidation bus for subscribers.
func (s *Service) Bus() *Bus {
	return s.bus
}

// ActiveSaves reports in-flight replace cycles; used to delay shutdown.
func (s *Service) ActiveSaves() int64 {
	return s.locks.Active()
}

// --- Goals ---

// LoadGoals reads the goal lists, remote-first when signed in. Remote errors
// and suspicious empty reads fall back to the local backup; the backup is only
// refreshed from a non-empty remote read.
func (s *Service) LoadGoals(ctx context.Context) *internal.GoalList {
	if s.signedIn() {
		rows, err := s.remote.ListGoals(ctx, s.userID)
		if err != nil {
			s.logger.Errorf("load goals: %v", err)
			if cached, ok := s.localGoals(); ok {
				return s.cacheGoals(cached)
			}
			return s.cacheGoals(&internal.GoalList{})
		}

		goals := groupGoalRows(rows)
		if len(rows) > 0 {
			s.local.SetJSON(localstore.KeyGoals, goals)
		} else if cached, ok := s.localGoals(); ok && cached.Total() > 0 {
			// Transient empty reads must never look like data loss.
			s.logger.Warnf("load goals: remote returned empty but local backup has %d items, using backup", cached.Total())
			return s.cacheGoals(cached)
		}
		return s.cacheGoals(goals)
	}

	if cached, ok := s.localGoals(); ok {
		return s.cacheGoals(cached)
	}
	return s.cacheGoals(&internal.GoalList{})
}

// SaveGoals replaces the user's goals. The in-memory cache is updated
// optimistically; in signed-in mode the remote rows are replaced with a
// delete-then-insert cycle under the save lock, and the local backup is only
// refreshed after the remote write succeeds. A save carrying zero goals is
// refused outright: an all-empty payload is far more likely a bug than an
// intentional clear (ClearGoals is the explicit path for that).
func (s *Service) SaveGoals(ctx context.Context, goals *internal.GoalList) error {
	s.cacheGoals(goals)

	if !s.signedIn() {
		s.local.SetJSON(localstore.KeyGoals, goals)
		s.bus.Publish(TopicGoalsChanged)
		return nil
	}

	if goals.Total() == 0 {
		s.logger.Warnf("save goals: blocked save with 0 goals (safety guard)")
		return nil
	}

	// The backup write lives inside the locked fn so a save whose payload was
	// superseded in the queue never touches the backup; only the payload that
	// actually reached the remote store may overwrite it.
	err := s.locks.Do(ctx, resourceGoals, func(ctx context.Context) error {
		rows := flattenGoals(s.userID, goals)
		if err := s.remote.DeleteGoals(ctx, s.userID); err != nil {
			s.logger.Errorf("save goals: delete failed: %v", err)
			return err
		}
		if err := s.remote.InsertGoals(ctx, rows); err != nil {
			s.logger.Errorf("save goals: insert failed: %v", err)
			return err
		}
		s.local.SetJSON(localstore.KeyGoals, goals)
		return nil
	})
	s.bus.Publish(TopicGoalsChanged)
	return err
}

// ClearGoals is the intentional clear-everything path, kept separate so the
// empty-payload guard in SaveGoals can stay strict.
func (s *Service) ClearGoals(ctx context.Context) error {
	s.cacheGoals(&internal.GoalList{})
	s.local.RemoveItem(localstore.KeyGoals)
	defer s.bus.Publish(TopicGoalsChanged)
	if !s.signedIn() {
		return nil
	}
	return s.locks.Do(ctx, resourceGoals, func(ctx context.Context) error {
		return s.remote.DeleteGoals(ctx, s.userID)
	})
}

func (s *Service) localGoals() (*internal.GoalList, bool) {
	var g internal.GoalList
	if s.local.GetJSON(localstore.KeyGoals, &g) {
		return &g, true
	}
	return nil, false
}

func (s *Service) cacheGoals(g *internal.GoalList) *internal.GoalList {
	s.mu.Lock()
	s.goalsCache = g
	s.mu.Unlock()
	return g
}

// CachedGoals returns a copy of the optimistic in-memory state, nil before
// first load. The copy is the caller's to mutate; concurrent requests never
// share list contents.
func (s *Service) CachedGoals() *internal.GoalList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.goalsCache == nil {
		return nil
	}
	return s.goalsCache.Clone()
}

func groupGoalRows(rows []remotestore.GoalRow) *internal.GoalList {
	out := &internal.GoalList{}
	for _, r := range rows {
		if !knownCategory(r.Category) {
			// Retired-category rows are dropped here and discarded for good
			// by the next delete-then-insert cycle.
			continue
		}
		out.SetCategory(r.Category, append(out.Category(r.Category), internal.Goal{
			ID:      r.ID,
			Text:    r.Text,
			Checked: r.Checked,
		}))
	}
	return out
}

func knownCategory(name string) bool {
	for _, c := range internal.Categories {
		if c == name {
			return true
		}
	}
	return false
}

func flattenGoals(userID string, goals *internal.GoalList) []remotestore.GoalRow {
	var rows []remotestore.GoalRow
	for _, cat := range internal.Categories {
		for i, g := range goals.Category(cat) {
			rows = append(rows, remotestore.GoalRow{
				UserID:    userID,
				Category:  cat,
				Text:      g.Text,
				Checked:   g.Checked,
				SortOrder: i,
			})
		}
	}
	return rows
}

// --- Schedule ---

func (s *Service) LoadSchedule(ctx context.Context) []internal.ScheduleEntry {
	if s.signedIn() {
		rows, err := s.remote.ListSchedule(ctx, s.userID)
		if err != nil {
			s.logger.Errorf("load schedule: %v", err)
			if cached, ok := s.localSchedule(); ok {
				return s.cacheSchedule(cached)
			}
			return s.cacheSchedule(internal.EmptySchedule())
		}

		if len(rows) == 0 {
			if cached, ok := s.localSchedule(); ok && internal.ScheduleHasContent(cached) {
				s.logger.Warnf("load schedule: remote returned empty but local backup has content, using backup")
				return s.cacheSchedule(cached)
			}
			return s.cacheSchedule(internal.EmptySchedule())
		}

		entries := make([]internal.ScheduleEntry, len(rows))
		for i, r := range rows {
			entries[i] = internal.ScheduleEntry{ID: r.ID, Time: r.Time, Activity: r.Activity}
		}
		s.local.SetJSON(localstore.KeySchedule, entries)
		return s.cacheSchedule(entries)
	}

	if cached, ok := s.localSchedule(); ok {
		return s.cacheSchedule(cached)
	}
	return s.cacheSchedule(internal.EmptySchedule())
}

// SaveSchedule replaces the schedule with the same guard, lock, and backup
// discipline as SaveGoals. A schedule with no time or activity anywhere is
// refused.
func (s *Service) SaveSchedule(ctx context.Context, entries []internal.ScheduleEntry) error {
	s.cacheSchedule(entries)

	if !s.signedIn() {
		s.local.SetJSON(localstore.KeySchedule, entries)
		s.bus.Publish(TopicScheduleChanged)
		return nil
	}

	if len(entries) == 0 || !internal.ScheduleHasContent(entries) {
		s.logger.Warnf("save schedule: blocked save with empty schedule (safety guard)")
		return nil
	}

	err := s.locks.Do(ctx, resourceSchedule, func(ctx context.Context) error {
		if err := s.remote.DeleteSchedule(ctx, s.userID); err != nil {
			s.logger.Errorf("save schedule: delete failed: %v", err)
			return err
		}
		rows := make([]remotestore.ScheduleRow, len(entries))
		for i, e := range entries {
			rows[i] = remotestore.ScheduleRow{
				UserID:    s.userID,
				Time:      e.Time,
				Activity:  e.Activity,
				SortOrder: i,
			}
		}
		if err := s.remote.InsertSchedule(ctx, rows); err != nil {
			s.logger.Errorf("save schedule: insert failed: %v", err)
			return err
		}
		s.local.SetJSON(localstore.KeySchedule, entries)
		return nil
	})
	s.bus.Publish(TopicScheduleChanged)
	return err
}

// ClearSchedule is the intentional clear path for the schedule, used by the
// daily notebook reset. Like ClearGoals it bypasses the empty-payload guard.
func (s *Service) ClearSchedule(ctx context.Context) error {
	s.cacheSchedule(internal.EmptySchedule())
	s.local.RemoveItem(localstore.KeySchedule)
	defer s.bus.Publish(TopicScheduleChanged)
	if !s.signedIn() {
		return nil
	}
	return s.locks.Do(ctx, resourceSchedule, func(ctx context.Context) error {
		return s.remote.DeleteSchedule(ctx, s.userID)
	})
}

// SaveScheduleDebounced records the edit immediately (optimistic cache plus a
// synchronous local write, the last line of defense against losing the final
// keystrokes) and coalesces the remote write behind the idle window.
func (s *Service) SaveScheduleDebounced(entries []internal.ScheduleEntry) {
	s.cacheSchedule(entries)
	s.local.SetJSON(localstore.KeySchedule, entries)
	s.mu.Lock()
	s.pendingSchedule = entries
	s.mu.Unlock()
	s.scheduleDebounce.Trigger()
}

func (s *Service) flushSchedule() {
	s.mu.Lock()
	entries := s.pendingSchedule
	s.pendingSchedule = nil
	s.mu.Unlock()
	if entries == nil {
		return
	}
	if err := s.SaveSchedule(context.Background(), entries); err != nil {
		s.logger.Warnf("debounced schedule save failed: %v", err)
	}
}

func (s *Service) localSchedule() ([]internal.ScheduleEntry, bool) {
	var entries []internal.ScheduleEntry
	if s.local.GetJSON(localstore.KeySchedule, &entries) {
		return entries, true
	}
	return nil, false
}

func (s *Service) cacheSchedule(entries []internal.ScheduleEntry) []internal.ScheduleEntry {
	s.mu.Lock()
	s.scheduleCache = entries
	s.mu.Unlock()
	return entries
}

// CachedSchedule returns a copy of the optimistic in-memory state, nil before
// first load.
func (s *Service) CachedSchedule() []internal.ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduleCache == nil {
		return nil
	}
	out := make([]internal.ScheduleEntry, len(s.scheduleCache))
	copy(out, s.scheduleCache)
	return out
}

// --- Sleep log ---

func (s *Service) LoadSleepLog(ctx context.Context) []internal.SleepRecord {
	if s.signedIn() {
		rows, err := s.remote.ListSleepLog(ctx, s.userID)
		if err != nil {
			s.logger.Errorf("load sleep log: %v", err)
			var cached []internal.SleepRecord
			if s.local.GetJSON(localstore.KeySleepLog, &cached) {
				return cached
			}
			return nil
		}
		out := make([]internal.SleepRecord, len(rows))
		for i, r := range rows {
			out[i] = internal.SleepRecord{Date: r.Date, Bedtime: r.Bedtime, WakeTime: r.WakeTime, Hours: r.Hours}
		}
		return out
	}

	var cached []internal.SleepRecord
	if s.local.GetJSON(localstore.KeySleepLog, &cached) {
		return cached
	}
	return nil
}

// UpsertSleepEntry writes one night's record, keyed by date. Signed-in writes
// are retried with backoff; a lost update here is low-risk and the upsert is
// idempotent.
func (s *Service) UpsertSleepEntry(ctx context.Context, rec internal.SleepRecord) error {
	defer s.bus.Publish(TopicSleepLogChanged)
	if s.signedIn() {
		return WithRetry(ctx, DefaultMaxRetries, func(ctx context.Context) error {
			return s.remote.UpsertSleepEntries(ctx, []remotestore.SleepRow{{
				UserID:   s.userID,
				Date:     rec.Date,
				Bedtime:  rec.Bedtime,
				WakeTime: rec.WakeTime,
				Hours:    rec.Hours,
			}})
		})
	}

	log := s.LoadSleepLog(ctx)
	replaced := false
	for i := range log {
		if log[i].Date == rec.Date {
			log[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		log = append(log, rec)
	}
	s.local.SetJSON(localstore.KeySleepLog, log)
	return nil
}

// SaveSleepLog writes the whole log; used by bulk import and the anonymous path.
func (s *Service) SaveSleepLog(ctx context.Context, log []internal.SleepRecord) error {
	defer s.bus.Publish(TopicSleepLogChanged)
	if s.signedIn() {
		if len(log) == 0 {
			return nil
		}
		return WithRetry(ctx, DefaultMaxRetries, func(ctx context.Context) error {
			rows := make([]remotestore.SleepRow, len(log))
			for i, rec := range log {
				rows[i] = remotestore.SleepRow{
					UserID:   s.userID,
					Date:     rec.Date,
					Bedtime:  rec.Bedtime,
					WakeTime: rec.WakeTime,
					Hours:    rec.Hours,
				}
			}
			return s.remote.UpsertSleepEntries(ctx, rows)
		})
	}
	s.local.SetJSON(localstore.KeySleepLog, log)
	return nil
}

func (s *Service) DeleteSleepEntry(ctx context.Context, date string) error {
	defer s.bus.Publish(TopicSleepLogChanged)
	if s.signedIn() {
		return WithRetry(ctx, DefaultMaxRetries, func(ctx context.Context) error {
			return s.remote.DeleteSleepEntry(ctx, s.userID, date)
		})
	}

	log := s.LoadSleepLog(ctx)
	for i := range log {
		if log[i].Date == date {
			log = append(log[:i], log[i+1:]...)
			break
		}
	}
	s.local.SetJSON(localstore.KeySleepLog, log)
	return nil
}

// --- Sleep settings ---

// LoadSleepSettings reads the profile row when signed in, falling back to the
// local backup and then the defaults. The ideal bedtime window is a local-only
// preference; the profile carries only wake time and target hours.
func (s *Service) LoadSleepSettings(ctx context.Context) internal.SleepSettings {
	local := internal.DefaultSleepSettings()
	s.local.GetJSON(localstore.KeySleepSettings, &local)

	if !s.signedIn() {
		return local
	}

	profile, err := s.remote.GetProfile(ctx, s.userID)
	if err != nil {
		if err != remotestore.ErrNotFound {
			s.logger.Errorf("load sleep settings: %v", err)
		}
		return local
	}

	if h, m, ok := parseClock(profile.WakeTime); ok {
		local.WakeHour, local.WakeMinute = h, m
	}
	if profile.TargetSleepHours > 0 {
		local.TargetSleepHours = profile.TargetSleepHours
	}
	return local
}

func (s *Service) SaveSleepSettings(ctx context.Context, settings internal.SleepSettings) error {
	// Settings are cheap to retry, so the local backup is unconditional.
	s.local.SetJSON(localstore.KeySleepSettings, settings)
	defer s.bus.Publish(TopicSettingsChanged)

	if !s.signedIn() {
		return nil
	}
	return WithRetry(ctx, DefaultMaxRetries, func(ctx context.Context) error {
		return s.remote.UpdateProfile(ctx, &remotestore.ProfileRow{
			ID:               s.userID,
			WakeTime:         fmt.Sprintf("%02d:%02d", settings.WakeHour, settings.WakeMinute),
			TargetSleepHours: settings.TargetSleepHours,
		})
	})
}

func parseClock(v string) (int, int, bool) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// --- Notes ---

func (s *Service) LoadNotes(ctx context.Context) string {
	if s.signedIn() {
		content, err := s.remote.GetNotes(ctx, s.userID)
		if err != nil {
			if err != remotestore.ErrNotFound {
				s.logger.Errorf("load notes: %v", err)
			}
			v, _ := s.local.GetItem(localstore.KeyNotes)
			return v
		}
		return content
	}
	v, _ := s.local.GetItem(localstore.KeyNotes)
	return v
}

func (s *Service) SaveNotes(ctx context.Context, content string) error {
	s.local.SetItem(localstore.KeyNotes, content)
	defer s.bus.Publish(TopicNotesChanged)

	if !s.signedIn() {
		return nil
	}
	return WithRetry(ctx, DefaultMaxRetries, func(ctx context.Context) error {
		return s.remote.UpdateNotes(ctx, s.userID, content)
	})
}

// SaveNotesDebounced coalesces per-keystroke note edits; the local write is
// immediate so nothing is lost if the process goes away mid-window.
func (s *Service) SaveNotesDebounced(content string) {
	s.local.SetItem(localstore.KeyNotes, content)
	s.mu.Lock()
	s.pendingNotes = content
	s.mu.Unlock()
	s.notesDebounce.Trigger()
}

func (s *Service) flushNotes() {
	s.mu.Lock()
	content := s.pendingNotes
	s.mu.Unlock()
	if err := s.SaveNotes(context.Background(), content); err != nil {
		s.logger.Warnf("debounced notes save failed: %v", err)
	}
}

// --- Local-only preferences ---

func (s *Service) LoadCollapsedState() internal.CollapsedState {
	state := internal.DefaultCollapsedState()
	s.local.GetJSON(localstore.KeyCollapsed, &state)
	return state
}

func (s *Service) SaveCollapsedState(state internal.CollapsedState) {
	s.local.SetJSON(localstore.KeyCollapsed, state)
}

func (s *Service) LoadDailyGoalHistory() []internal.DailyGoalSnapshot {
	var history []internal.DailyGoalSnapshot
	s.local.GetJSON(localstore.KeyDailyGoalHistory, &history)
	return history
}

func (s *Service) SaveDailyGoalHistory(history []internal.DailyGoalSnapshot) {
	s.local.SetJSON(localstore.KeyDailyGoalHistory, history)
}

// LastScheduleReset returns the date marker of the last daily schedule reset.
func (s *Service) LastScheduleReset() string {
	v, _ := s.local.GetItem(localstore.KeyLastScheduleReset)
	return v
}

func (s *Service) MarkScheduleReset(date string) {
	s.local.SetItem(localstore.KeyLastScheduleReset, date)
}

// --- Lifecycle ---

// Flush forces all debounced writes through immediately. Called before
// sign-out and on shutdown.
func (s *Service) Flush() {
	s.scheduleDebounce.Flush()
	s.notesDebounce.Flush()
}

// Close flushes pending writes and drops the caches. Waits briefly for
// in-flight replace cycles so a delete-then-insert is not torn down mid-air.
func (s *Service) Close() {
	s.Flush()
	for i := 0; i < 50 && s.locks.Active() > 0; i++ {
		time.Sleep(100 * time.Millisecond)
	}
	s.mu.Lock()
	s.goalsCache = nil
	s.scheduleCache = nil
	s.mu.Unlock()
}
