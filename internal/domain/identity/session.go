package identity

import (
	"context"
	"sync"

	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// SessionStore maps session tokens to identities.
type SessionStore interface {
	// Get returns a copy of the identity bound to token, or
	// shared.ErrAuth when there is none.
	Get(ctx context.Context, token string) (*Identity, error)

	// Put binds token to id, replacing any previous binding.
	Put(ctx context.Context, token string, id Identity) error

	// Delete clears token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// ErrNoSession is returned by SessionStore.Get for unknown tokens.
var ErrNoSession = shared.NewDomainError("identity", "Session", shared.ErrAuth, "no active session")

// Manager is the in-process SessionStore. One mutex guards all sessions;
// readers receive snapshots.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]Identity
}

var _ SessionStore = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]Identity)}
}

func (m *Manager) Get(_ context.Context, token string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.sessions[token]
	if !ok || token == "" {
		return nil, ErrNoSession
	}
	snapshot := id.Clone()
	return &snapshot, nil
}

func (m *Manager) Put(_ context.Context, token string, id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[token] = id.Clone()
	return nil
}

func (m *Manager) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
