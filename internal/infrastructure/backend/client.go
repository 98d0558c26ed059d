// Package backend is the HTTP client for the consultant management REST
// backend. It translates login and registration calls into domain values and
// forwards authenticated requests with the session's bearer token.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10

	loginPath    = "/auth/login"
	registerPath = "/auth/register"
)

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	// Timeout bounds every call made through the client.
	Timeout time.Duration
}

// Client implements ports.AuthGateway and ports.Backend.
type Client struct {
	baseURL    *url.URL
	timeout    time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

var (
	_ ports.AuthGateway = (*Client)(nil)
	_ ports.Backend     = (*Client)(nil)
)

// New returns a Client. A default timeout is applied when none is provided.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url: %q is not absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    base,
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log,
	}, nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Role        string `json:"role"`
}

// Login posts the credentials to /auth/login. A rejected login carries the
// server detail; a role outside the known set is reported as
// domain.ErrInvalidServerRole.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status, body, err := c.postJSON(ctx, loginPath, req)
	if err != nil {
		return domain.Credential{}, err
	}

	if status < 200 || status > 299 {
		c.log.Info().Int("status", status).Str("email", req.Email).Msg("login rejected by backend")
		return domain.Credential{}, &domain.GatewayError{
			Kind:   domain.ErrLoginFailed,
			Status: status,
			Detail: parseDetail(body),
		}
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Credential{}, &domain.GatewayError{Kind: domain.ErrLoginFailed, Status: status, Detail: "login failed: unreadable server response"}
	}
	if resp.AccessToken == "" {
		return domain.Credential{}, &domain.GatewayError{Kind: domain.ErrLoginFailed, Status: status, Detail: "login failed: server returned no token"}
	}

	role, err := domain.ParseRole(resp.Role)
	if err != nil {
		c.log.Error().Str("role", resp.Role).Int64("user_id", resp.UserID).Msg("backend returned unknown role")
		return domain.Credential{}, err
	}

	return domain.Credential{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		UserID:      resp.UserID,
		Role:        role,
	}, nil
}

type registerResponse struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Role       string            `json:"role"`
	Department string            `json:"department"`
	Skills     []registeredSkill `json:"skills"`
}

type registeredSkill struct {
	Skill string `json:"skill"`
}

// Register posts the account to /auth/register. Validation failures come
// back either as one message or as a list; both are returned as one string.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if req.Skills == nil {
		req.Skills = []string{}
	}

	status, body, err := c.postJSON(ctx, registerPath, req)
	if err != nil {
		return domain.RegisterResult{}, err
	}

	if status < 200 || status > 299 {
		c.log.Info().Int("status", status).Str("email", req.Email).Msg("registration rejected by backend")
		return domain.RegisterResult{}, &domain.GatewayError{
			Kind:   domain.ErrRegistrationFailed,
			Status: status,
			Detail: parseDetail(body),
		}
	}

	result := domain.RegisterResult{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		Skills:     req.Skills,
	}

	// The confirmation body is informational; an unexpected shape is not an error.
	var resp registerResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		result.ID = resp.ID
		if resp.Name != "" {
			result.Name = resp.Name
		}
		if resp.Email != "" {
			result.Email = resp.Email
		}
		if role, err := domain.ParseRole(resp.Role); err == nil {
			result.Role = role
		}
		if len(resp.Skills) > 0 {
			skills := make([]string, 0, len(resp.Skills))
			for _, s := range resp.Skills {
				skills = append(skills, s.Skill)
			}
			result.Skills = skills
		}
	}

	return result, nil
}

// Fetch performs an authenticated request. The response is returned whatever
// its status; the caller must close the body. The client deadline stays
// active until the body is closed.
func (c *Client) Fetch(ctx context.Context, token string, breq ports.BackendRequest) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	req, err := http.NewRequestWithContext(ctx, breq.Method, c.endpoint(breq.Path, breq.Query), breq.Body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if breq.ContentType != "" {
		req.Header.Set("Content-Type", breq.ContentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, c.transportError(breq.Method, breq.Path, err)
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// Ping reports whether the backend answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Fetch(ctx, "", ports.BackendRequest{Method: http.MethodGet, Path: "/"})
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return resp.Body.Close()
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(raw))
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.transportError(http.MethodPost, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return 0, nil, c.transportError(http.MethodPost, path, err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) endpoint(path string, query map[string]string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) transportError(method, path string, err error) error {
	reason := "request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "deadline exceeded"
	} else if errors.Is(err, context.Canceled) {
		reason = "cancelled"
	}
	c.log.Warn().Err(err).Str("method", method).Str("path", path).Str("reason", reason).Msg("backend unreachable")
	return fmt.Errorf("%w: %s %s: %s", domain.ErrBackendUnavailable, method, path, reason)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
