package ports

import (
	"context"
	"io"
	"net/http"

	"github.com/poolconsultant/portal/internal/core/domain"
)

// AuthGateway translates login and registration calls against the backend.
// It never touches session state.
type AuthGateway interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.Credential, error)
	Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResult, error)
}

// BackendRequest describes a downstream call made on behalf of a session.
type BackendRequest struct {
	Method      string
	Path        string
	Query       map[string]string
	Body        io.Reader
	ContentType string
}

// Backend performs authenticated calls against the backend. The caller owns
// the returned response body.
type Backend interface {
	Fetch(ctx context.Context, token string, req BackendRequest) (*http.Response, error)
}
