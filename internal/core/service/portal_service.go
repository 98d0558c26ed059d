package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

// PortalService implements the login, registration and logout flows on top
// of the auth gateway, the session stores and the navigator.
type PortalService struct {
	gateway   ports.AuthGateway
	navigator *Navigator
	events    ports.SessionEventSink
	now       func() time.Time
	log       zerolog.Logger
}

var (
	_ ports.PortalService = (*PortalService)(nil)
	_ ports.SessionHandle = (*SessionStore)(nil)
)

// NewPortalService returns a PortalService. events may be nil.
func NewPortalService(gateway ports.AuthGateway, navigator *Navigator, events ports.SessionEventSink, log zerolog.Logger) *PortalService {
	return &PortalService{
		gateway:   gateway,
		navigator: navigator,
		events:    events,
		now:       time.Now,
		log:       log,
	}
}

// Login authenticates against the backend, starts the session and returns
// the landing path for the role the backend reported.
func (s *PortalService) Login(ctx context.Context, session ports.SessionHandle, form ports.LoginForm) (string, error) {
	email := strings.TrimSpace(form.Email)
	if email == "" || form.Password == "" {
		return "", fmt.Errorf("%w: email and password are required", domain.ErrInvalidForm)
	}

	cred, err := s.gateway.Login(ctx, domain.LoginRequest{
		Email:    email,
		Password: form.Password,
		Role:     domain.Role(form.Role),
	})
	if err != nil {
		return "", err
	}

	landing, err := s.navigator.LandingPath(cred.Role)
	if err != nil {
		return "", err
	}

	if err := session.Login(ctx, cred.AccessToken, cred.UserID, cred.Role); err != nil {
		return "", err
	}

	s.record(domain.SessionEvent{
		Kind:     domain.SessionLogin,
		ClientID: session.ClientID(),
		UserID:   cred.UserID,
		Role:     cred.Role,
	})
	return landing, nil
}

// Register submits a new account. Mismatched passwords fail before any
// network call. A successful registration does not log the user in.
func (s *PortalService) Register(ctx context.Context, form ports.RegisterForm) (domain.RegisterResult, error) {
	if form.Password != form.ConfirmPassword {
		return domain.RegisterResult{}, domain.ErrPasswordMismatch
	}

	role := domain.Role(strings.TrimSpace(form.Role))
	if role == "" {
		role = domain.RoleConsultant
	}
	if !role.Valid() {
		return domain.RegisterResult{}, fmt.Errorf("%w: role must be admin or consultant", domain.ErrInvalidForm)
	}

	req := domain.RegisterRequest{
		Name:       strings.TrimSpace(form.Name),
		Email:      strings.TrimSpace(form.Email),
		Password:   form.Password,
		Role:       role,
		Department: strings.TrimSpace(form.Department),
		Skills:     domain.NormalizeSkills(form.Skills),
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return domain.RegisterResult{}, fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidForm)
	}

	result, err := s.gateway.Register(ctx, req)
	if err != nil {
		return domain.RegisterResult{}, err
	}

	s.log.Info().Str("email", req.Email).Str("role", string(role)).Int("skills", len(req.Skills)).Msg("account registered")
	return result, nil
}

// Logout ends the session and returns the login path.
func (s *PortalService) Logout(ctx context.Context, session ports.SessionHandle) (string, error) {
	prev := session.Snapshot()
	err := session.Logout(ctx)

	if prev.IsAuthenticated {
		s.record(domain.SessionEvent{
			Kind:     domain.SessionLogout,
			ClientID: session.ClientID(),
			UserID:   prev.UserID,
			Role:     prev.Role,
		})
	}
	return s.navigator.LoginPath(), err
}

func (s *PortalService) record(event domain.SessionEvent) {
	if s.events == nil {
		return
	}
	event.At = s.now().UTC()
	s.events.Enqueue(event)
}
