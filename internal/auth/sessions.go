package auth

import "sync"

// Sessions remembers which user each token most recently resolved to and
// fires a callback when a token starts resolving to someone else. The sync
// layer uses that signal to drop the previous identity's caches.
type Sessions struct {
	mu       sync.Mutex
	byToken  map[string]string
	onChange func(oldUserID, newUserID string)
}

func NewSessions(onChange func(oldUserID, newUserID string)) *Sessions {
	return &Sessions{byToken: make(map[string]string), onChange: onChange}
}

// Track records the token's current user, invoking the change callback when
// the identity behind the token differs from last time.
func (s *Sessions) Track(token, userID string) {
	s.mu.Lock()
	prev, had := s.byToken[token]
	s.byToken[token] = userID
	fn := s.onChange
	s.mu.Unlock()
	if had && prev != userID && fn != nil {
		fn(prev, userID)
	}
}

// Drop forgets the token; the sign-out path.
func (s *Sessions) Drop(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}
