package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

// SessionStore owns the session of one client. Login and Logout are the only
// mutators and each swaps the whole session at once.
type SessionStore struct {
	mu       sync.RWMutex
	state    domain.Session
	storage  ports.SessionStorage
	clientID string
	log      zerolog.Logger
}

// Login persists the credential and makes it the current session.
func (s *SessionStore) Login(ctx context.Context, token string, userID int64, role domain.Role) error {
	if token == "" {
		return fmt.Errorf("session login: %w", domain.ErrUnauthenticated)
	}
	if !role.Valid() {
		return fmt.Errorf("session login: %w: %q", domain.ErrInvalidServerRole, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Save(ctx, domain.PersistedSession{Token: token, UserID: userID, Role: role}); err != nil {
		return fmt.Errorf("session login: persist: %w", err)
	}
	s.state = domain.Session{
		Token:           token,
		UserID:          userID,
		Role:            role,
		IsAuthenticated: true,
	}

	s.log.Info().Str("client_id", s.clientID).Int64("user_id", userID).Str("role", string(role)).Msg("session started")
	return nil
}

// Logout clears the session. The in-memory session is cleared even when the
// storage fails; the storage error is still returned.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := s.state.UserID
	s.state = domain.Session{}

	if err := s.storage.Clear(ctx); err != nil {
		return fmt.Errorf("session logout: clear storage: %w", err)
	}

	s.log.Info().Str("client_id", s.clientID).Int64("user_id", userID).Msg("session ended")
	return nil
}

// Snapshot returns a consistent copy of the session.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *SessionStore) Token() string                 { return s.Snapshot().Token }
func (s *SessionStore) UserID() int64                 { return s.Snapshot().UserID }
func (s *SessionStore) Role() domain.Role             { return s.Snapshot().Role }
func (s *SessionStore) IsAuthenticated() bool         { return s.Snapshot().IsAuthenticated }
func (s *SessionStore) ClientID() string              { return s.clientID }
func (s *SessionStore) Storage() ports.SessionStorage { return s.storage }

// Sessions opens session stores over a storage provider. It is the single
// owner of session construction; handlers get their store from it.
type Sessions struct {
	provider ports.SessionStorageProvider
	decoder  *TokenDecoder
	events   ports.SessionEventSink
	now      func() time.Time
	log      zerolog.Logger
}

// NewSessions returns a Sessions. events may be nil.
func NewSessions(provider ports.SessionStorageProvider, decoder *TokenDecoder, events ports.SessionEventSink, log zerolog.Logger) *Sessions {
	return &Sessions{
		provider: provider,
		decoder:  decoder,
		events:   events,
		now:      time.Now,
		log:      log,
	}
}

func (m *Sessions) clearStale(ctx context.Context, storage ports.SessionStorage, clientID string) {
	if err := storage.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Str("client_id", clientID).Msg("failed to clear stale session")
	}
}

// Storage returns the storage scoped to clientID.
func (m *Sessions) Storage(clientID string) ports.SessionStorage {
	return m.provider.Scope(clientID)
}

// Open restores the session of clientID from storage. The persisted token is
// validated before the session is marked authenticated; an expired or
// undecodable token leaves an empty session and clears the persisted keys.
// Only a decodable token past its exp is reported as SessionExpired.
func (m *Sessions) Open(ctx context.Context, clientID string) (*SessionStore, error) {
	storage := m.provider.Scope(clientID)
	store := &SessionStore{
		storage:  storage,
		clientID: clientID,
		log:      m.log,
	}

	persisted, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	if persisted.Empty() {
		return store, nil
	}

	payload, err := m.decoder.Parse(persisted.Token)
	if err != nil {
		m.log.Debug().Err(err).Str("client_id", clientID).Msg("persisted token rejected")
		m.clearStale(ctx, storage, clientID)
		return store, nil
	}
	if payload.ExpiredAt(m.decoder.now()) {
		m.clearStale(ctx, storage, clientID)
		m.record(domain.SessionEvent{
			Kind:     domain.SessionExpired,
			ClientID: clientID,
			UserID:   payload.UserID,
			Role:     payload.Role,
		})
		return store, nil
	}

	role := persisted.Role
	if !role.Valid() {
		role = payload.Role
	}
	userID := persisted.UserID
	if userID == 0 {
		userID = payload.UserID
	}

	store.state = domain.Session{
		Token:           persisted.Token,
		UserID:          userID,
		Role:            role,
		IsAuthenticated: true,
	}
	return store, nil
}

func (m *Sessions) record(event domain.SessionEvent) {
	if m.events == nil {
		return
	}
	if event.At.IsZero() {
		event.At = m.now().UTC()
	}
	m.events.Enqueue(event)
}
