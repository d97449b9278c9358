package session

import (
	"sync"

	"roster/internal/agenthost"
	"roster/internal/log"
)

// Manager owns one session per conversation target. Sessions are created
// on first open and destroyed when their target closes, mirroring the
// run-registry bookkeeping of the process host.
type Manager struct {
	host agenthost.Host

	mu       sync.Mutex
	sessions map[string]*Session // keyed by Target.AgentID
}

// NewManager creates an empty manager over the host.
func NewManager(host agenthost.Host) *Manager {
	return &Manager{host: host, sessions: make(map[string]*Session)}
}

// Open returns the session for the target, creating it if absent.
// The target of an existing session is not updated; close it first to
// change work dir. Model overrides go through Session.Start instead.
func (m *Manager) Open(target Target) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[target.AgentID]; ok {
		return s
	}
	s := New(m.host, target)
	m.sessions[target.AgentID] = s
	log.Debug(log.CatSession, "session opened", "agent", target.AgentID)
	return s
}

// Get returns the session for an agent id without creating one.
func (m *Manager) Get(agentID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[agentID]
	return s, ok
}

// Close destroys the session for an agent id and forgets it.
// Unknown ids are a no-op.
func (m *Manager) Close(agentID string) {
	m.mu.Lock()
	s, ok := m.sessions[agentID]
	delete(m.sessions, agentID)
	m.mu.Unlock()

	if ok {
		s.Destroy()
	}
}

// CloseAll destroys every session. Used at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Destroy()
	}
}

// Len reports the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
