// Package localstore is the best-effort backup store: a quota-bounded
// key-value map persisted to a single JSON file per user. Writes never fail the
// caller; when the quota is exhausted the store evicts one designated
// low-value key and retries once, then drops the write with a warning.
package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/panostzan/0500/internal"
)

// Well-known keys. KeyUserLocation is the sacrificial key: a cached
// geolocation blob that is large, cheap to regenerate, and safe to drop.
const (
	KeyGoals             = "0500_goals"
	KeySchedule          = "0500_schedule_entries"
	KeySleepLog          = "0500_sleep_log"
	KeySleepSettings     = "0500_sleep_settings"
	KeyNotes             = "0500_notes"
	KeyCollapsed         = "0500_goals_collapsed"
	KeyDailyGoalHistory  = "0500_daily_goal_history"
	KeyUserLocation      = "0500_user_location"
	KeyLastScheduleReset = "0500_last_schedule_reset"
)

var ErrQuotaExceeded = errors.New("localstore: quota exceeded")

// ChangeFunc is notified after a key's value changes, with the key and the new
// value ("" on removal). Used for cross-session cache invalidation.
type ChangeFunc func(key, value string)

type Store struct {
	mu       sync.RWMutex
	items    map[string]string
	path     string
	quota    int64 // total bytes of keys+values; 0 disables the check
	logger   internal.Logger
	onChange ChangeFunc
}

// Open loads (or creates) the store backing file under dir for the given
// namespace, usually a user id or "anonymous".
func Open(dir, namespace string, quota int64, logger internal.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		items:  make(map[string]string),
		path:   filepath.Join(dir, namespace+".json"),
		quota:  quota,
		logger: logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// OnChange registers the change callback. At most one; last registration wins.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &s.items)
}

// SetItem stores value under key. It never returns an error: on quota
// exhaustion it removes the sacrificial key and retries exactly once, and if
// that still does not fit, the write is dropped with a warning.
func (s *Store) SetItem(key, value string) {
	s.mu.Lock()
	err := s.setLocked(key, value)
	if errors.Is(err, ErrQuotaExceeded) {
		s.logger.Warnf("localstore: quota exceeded for key %s, evicting %s", key, KeyUserLocation)
		delete(s.items, KeyUserLocation)
		err = s.setLocked(key, value)
		if err != nil {
			s.logger.Errorf("localstore: quota still exceeded, dropping write for key %s", key)
			// The eviction above changed the map, keep disk in step with it.
			s.persistLocked()
			s.mu.Unlock()
			return
		}
	}
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(key, value)
	}
}

func (s *Store) setLocked(key, value string) error {
	if s.quota > 0 {
		var size int64
		for k, v := range s.items {
			if k == key {
				continue
			}
			size += int64(len(k) + len(v))
		}
		if size+int64(len(key)+len(value)) > s.quota {
			return ErrQuotaExceeded
		}
	}
	s.items[key] = value
	s.persistLocked()
	return nil
}

// GetItem returns the value for key and whether it was present. Never fails.
func (s *Store) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *Store) RemoveItem(key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.persistLocked()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(key, "")
	}
}

// persistLocked writes the map to disk via temp file + rename. Persistence
// failures are logged and swallowed: the in-memory copy stays authoritative
// for this session.
func (s *Store) persistLocked() {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		s.logger.Warnf("localstore: persist failed: %v", err)
		return
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.items); err != nil {
		f.Close()
		os.Remove(tmp)
		s.logger.Warnf("localstore: persist failed: %v", err)
		return
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		s.logger.Warnf("localstore: persist failed: %v", err)
		return
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		s.logger.Warnf("localstore: persist failed: %v", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warnf("localstore: persist failed: %v", err)
	}
}

// GetJSON decodes the value for key into out, reporting whether a decodable
// value was present. A corrupt value is treated as absent.
func (s *Store) GetJSON(key string, out interface{}) bool {
	v, ok := s.GetItem(key)
	if !ok || v == "" {
		return false
	}
	if err := json.Unmarshal([]byte(v), out); err != nil {
		s.logger.Warnf("localstore: corrupt value for key %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key with SetItem semantics.
func (s *Store) SetJSON(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Errorf("localstore: marshal failed for key %s: %v", key, err)
		return
	}
	s.SetItem(key, string(data))
}
