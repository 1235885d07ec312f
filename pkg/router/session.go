package router

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/transport"
)

// LiveSession binds one websocket connection to its component instance.
type LiveSession struct {
	ID        string
	Component core.Component
	Socket    *core.Socket
	Transport transport.Transport
	Params    core.Params
	Session   core.Session
	CreatedAt time.Time

	joinRef    string
	mounted    bool
	version    uint64
	slotHashes map[string]uint64

	closeOnce sync.Once
	mu        sync.Mutex
}

func newLiveSession(id string, comp core.Component, params core.Params, session core.Session) *LiveSession {
	return &LiveSession{
		ID:        id,
		Component: comp,
		Params:    params,
		Session:   session,
		CreatedAt: time.Now(),
	}
}

// Topic is the channel topic of the session.
func (s *LiveSession) Topic() string {
	return "lv:" + s.ID
}

// IsMounted reports whether phx_join has mounted the component.
func (s *LiveSession) IsMounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

func (s *LiveSession) setMounted(joinRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = true
	s.joinRef = joinRef
}

// JoinRef returns the ref of the join that mounted the session.
func (s *LiveSession) JoinRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinRef
}

// swapSlotHashes stores next and returns the previous hashes together with
// the next diff version.
func (s *LiveSession) swapSlotHashes(next map[string]uint64) (prev map[string]uint64, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.slotHashes
	s.slotHashes = next
	s.version++
	return prev, s.version
}

// SessionManager tracks live sessions by id.
type SessionManager struct {
	sessions map[string]*LiveSession
	mu       sync.RWMutex
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*LiveSession)}
}

// Create registers a new session under a fresh id.
func (m *SessionManager) Create(comp core.Component, params core.Params, session core.Session) *LiveSession {
	s := newLiveSession(uuid.NewString(), comp, params, session)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with id.
func (m *SessionManager) Get(id string) (*LiveSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove forgets a session.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Idle returns sessions whose socket has seen no activity for maxIdle.
func (m *SessionManager) Idle(maxIdle time.Duration) []*LiveSession {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var idle []*LiveSession
	for _, s := range m.sessions {
		if s.Socket != nil && s.Socket.LastActivity().Before(cutoff) {
			idle = append(idle, s)
		}
	}
	return idle
}

// StartCleanup closes idle sessions every interval until ctx is done.
func (r *Router) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, s := range r.sessions.Idle(maxIdle) {
					r.logger.Debug("closing idle session", sessionField(s))
					r.disconnect(s, core.TerminateNormal)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
