// Package memory keeps client sessions in process memory. It backs the
// "memory" session driver and the tests.
package memory

import (
	"context"
	"sync"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

// SessionStorage holds the persisted sessions of every client.
type SessionStorage struct {
	mu       sync.Mutex
	sessions map[string]domain.PersistedSession
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{sessions: make(map[string]domain.PersistedSession)}
}

// Scope satisfies ports.SessionStorageProvider.
func (s *SessionStorage) Scope(clientID string) ports.SessionStorage {
	return &scoped{parent: s, clientID: clientID}
}

type scoped struct {
	parent   *SessionStorage
	clientID string
}

func (s *scoped) Load(_ context.Context) (domain.PersistedSession, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	return s.parent.sessions[s.clientID], nil
}

func (s *scoped) Save(_ context.Context, p domain.PersistedSession) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.sessions[s.clientID] = p
	return nil
}

func (s *scoped) RemoveToken(_ context.Context) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	p, ok := s.parent.sessions[s.clientID]
	if !ok {
		return nil
	}
	p.Token = ""
	s.parent.sessions[s.clientID] = p
	return nil
}

func (s *scoped) Clear(_ context.Context) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.sessions, s.clientID)
	return nil
}
