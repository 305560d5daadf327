package data

import (
	"sync"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/localstore"
	"github.com/panostzan/0500/internal/remotestore"
)

// Manager hands out one Service per signed-in user and tears it down when the
// identity changes. This replaces the single ambient cache of the browser app
// with explicit per-session state.
type Manager struct {
	remote remotestore.Store
	dir    string
	quota  int64
	logger internal.Logger

	mu       sync.Mutex
	services map[string]*Service
}

func NewManager(remote remotestore.Store, dir string, quota int64, logger internal.Logger) *Manager {
	return &Manager{
		remote:   remote,
		dir:      dir,
		quota:    quota,
		logger:   logger,
		services: make(map[string]*Service),
	}
}

// ForUser returns the user's service, creating it on first use.
func (m *Manager) ForUser(userID string) (*Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if svc, ok := m.services[userID]; ok {
		return svc, nil
	}
	local, err := localstore.Open(m.dir, userID, m.quota, m.logger)
	if err != nil {
		return nil, err
	}
	local.OnChange(func(key, value string) {
		m.logger.Debugf("local backup updated: user=%s key=%s bytes=%d", userID, key, len(value))
	})
	svc := NewService(m.remote, local, userID, NewBus(), m.logger)
	m.services[userID] = svc
	return svc, nil
}

// Release flushes and closes the user's service; the sign-out path.
func (m *Manager) Release(userID string) {
	m.mu.Lock()
	svc, ok := m.services[userID]
	delete(m.services, userID)
	m.mu.Unlock()
	if ok {
		svc.Close()
	}
}

// CloseAll flushes every live service; the shutdown path.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	services := make([]*Service, 0, len(m.services))
	for _, svc := range m.services {
		services = append(services, svc)
	}
	m.services = make(map[string]*Service)
	m.mu.Unlock()
	for _, svc := range services {
		svc.Close()
	}
}
