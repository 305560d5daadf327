package data

import (
	"context"
	"sync"
	"sync/atomic"
)

// pendingSave is the single queued save for a resource. When a newer save
// arrives while one is queued, the newer fn replaces the old one and the
// earlier waiters are carried along, resolving with the result of the save
// that subsumed them.
type pendingSave struct {
	fn      func(context.Context) error
	waiters []chan error
}

type resourceState struct {
	inProgress bool
	pending    *pendingSave
}

// SaveLock serializes delete-then-insert replace cycles per resource. At most
// one cycle runs at a time; a save requested while one is in flight is queued,
// and queued saves collapse last-write-wins rather than stacking.
type SaveLock struct {
	mu        sync.Mutex
	resources map[string]*resourceState
	active    atomic.Int64
}

func NewSaveLock() *SaveLock {
	return &SaveLock{resources: make(map[string]*resourceState)}
}

// Active reports how many save cycles are currently in flight, used to hold
// off shutdown while a replace cycle is mid-air.
func (l *SaveLock) Active() int64 {
	return l.active.Load()
}

// Do runs fn under the named resource's lock. If a save is already in flight,
// fn replaces any previously queued save and Do blocks until fn (or the save
// that superseded it) completes, returning that save's error.
func (l *SaveLock) Do(ctx context.Context, resource string, fn func(context.Context) error) error {
	l.mu.Lock()
	st := l.resources[resource]
	if st == nil {
		st = &resourceState{}
		l.resources[resource] = st
	}

	if st.inProgress {
		done := make(chan error, 1)
		if st.pending != nil {
			st.pending.fn = fn
			st.pending.waiters = append(st.pending.waiters, done)
		} else {
			st.pending = &pendingSave{fn: fn, waiters: []chan error{done}}
		}
		l.mu.Unlock()
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	st.inProgress = true
	l.active.Add(1)
	l.mu.Unlock()

	err := fn(ctx)

	for {
		l.mu.Lock()
		p := st.pending
		st.pending = nil
		if p == nil {
			st.inProgress = false
			l.active.Add(-1)
			l.mu.Unlock()
			return err
		}
		l.mu.Unlock()

		perr := p.fn(ctx)
		for _, w := range p.waiters {
			w <- perr
		}
	}
}
