package session

import (
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Manager tracks live conversation sessions. Sessions that stay idle
// past the TTL are evicted, which is how abandoned emergencies are
// reclaimed without a persistence layer.
type Manager struct {
	sessions *gocache.Cache
	idleTTL  time.Duration
	counter  atomic.Int64
}

// NewManager builds a Manager with the given idle TTL and cleanup
// interval.
func NewManager(idleTTL, cleanupInterval time.Duration) *Manager {
	return &Manager{
		sessions: gocache.New(idleTTL, cleanupInterval),
		idleTTL:  idleTTL,
	}
}

// Create starts a new session. An empty id gets a generated one.
func (m *Manager) Create(sessionID string) *State {
	if sessionID == "" {
		n := m.counter.Add(1)
		sessionID = fmt.Sprintf("session_%d_%s", n, time.Now().Format("20060102150405"))
	}
	s := NewState(sessionID)
	m.sessions.Set(sessionID, s, m.idleTTL)
	return s
}

// Get returns a live session, refreshing its idle deadline.
func (m *Manager) Get(sessionID string) (*State, bool) {
	v, ok := m.sessions.Get(sessionID)
	if !ok {
		return nil, false
	}
	s := v.(*State)
	m.sessions.Set(sessionID, s, m.idleTTL)
	return s, true
}

// GetOrCreate returns the session if it exists, otherwise starts one.
func (m *Manager) GetOrCreate(sessionID string) *State {
	if sessionID != "" {
		if s, ok := m.Get(sessionID); ok {
			return s
		}
	}
	return m.Create(sessionID)
}

// End resolves and removes a session. It reports whether the session
// existed.
func (m *Manager) End(sessionID string) bool {
	v, ok := m.sessions.Get(sessionID)
	if !ok {
		return false
	}
	s := v.(*State)
	s.Lock()
	s.AdvancePhase(PhaseResolved)
	s.Unlock()
	m.sessions.Delete(sessionID)
	return true
}

// ActiveSessions lists the ids of all live sessions.
func (m *Manager) ActiveSessions() []string {
	items := m.sessions.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids
}
