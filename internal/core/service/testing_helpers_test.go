package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// stubStorage is a single-client storage that counts mutations.
type stubStorage struct {
	mu       sync.Mutex
	data     domain.PersistedSession
	loadErr  error
	saveErr  error
	clearErr error
	removed  int
	cleared  int
}

func (s *stubStorage) Load(_ context.Context) (domain.PersistedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.loadErr
}

func (s *stubStorage) Save(_ context.Context, p domain.PersistedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data = p
	return nil
}

func (s *stubStorage) RemoveToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed++
	s.data.Token = ""
	return nil
}

func (s *stubStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	s.data = domain.PersistedSession{}
	return s.clearErr
}

func (s *stubStorage) snapshot() domain.PersistedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// stubProvider hands out one stubStorage per client.
type stubProvider struct {
	scopes map[string]*stubStorage
}

func newStubProvider() *stubProvider {
	return &stubProvider{scopes: make(map[string]*stubStorage)}
}

func (p *stubProvider) Scope(clientID string) ports.SessionStorage {
	s, ok := p.scopes[clientID]
	if !ok {
		s = &stubStorage{}
		p.scopes[clientID] = s
	}
	return s
}

type stubSink struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (s *stubSink) Enqueue(e domain.SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *stubSink) kinds() []domain.SessionEventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SessionEventKind, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Kind)
	}
	return out
}

type stubGateway struct {
	loginFn    func(ctx context.Context, req domain.LoginRequest) (domain.Credential, error)
	registerFn func(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResult, error)
	calls      int
}

func (g *stubGateway) Login(ctx context.Context, req domain.LoginRequest) (domain.Credential, error) {
	g.calls++
	if g.loginFn == nil {
		return domain.Credential{}, errors.New("unexpected login call")
	}
	return g.loginFn(ctx, req)
}

func (g *stubGateway) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResult, error) {
	g.calls++
	if g.registerFn == nil {
		return domain.RegisterResult{}, errors.New("unexpected register call")
	}
	return g.registerFn(ctx, req)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func tokenFor(t *testing.T, role string, userID int64, exp time.Time) string {
	t.Helper()
	return signToken(t, jwt.MapClaims{
		"sub":     "user@example.com",
		"role":    role,
		"user_id": userID,
		"exp":     exp.Unix(),
	})
}
