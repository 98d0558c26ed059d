package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: timeout}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "localhost:8000"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for relative url")
	}
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "a@x.com" || body["password"] != "pw" {
			t.Fatalf("unexpected body: %v", body)
		}
		writeJSON(w, http.StatusOK, `{"access_token":"T","token_type":"bearer","user_id":42,"role":"consultant"}`)
	}, 0)

	cred, err := c.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	want := domain.Credential{AccessToken: "T", TokenType: "bearer", UserID: 42, Role: domain.RoleConsultant}
	if cred != want {
		t.Fatalf("expected %+v, got %+v", want, cred)
	}
}

func TestLogin_RejectedWithDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)
	}, 0)

	_, err := c.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "bad"})
	if !errors.Is(err, domain.ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("expected server detail, got %q", err.Error())
	}
	var ge *domain.GatewayError
	if !errors.As(err, &ge) || ge.Status != http.StatusUnauthorized {
		t.Fatalf("expected gateway error with status 401, got %v", err)
	}
}

func TestLogin_RejectedWithoutDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 0)

	_, err := c.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw"})
	if err == nil || err.Error() != "login failed" {
		t.Fatalf("expected generic message, got %v", err)
	}
}

func TestLogin_InvalidRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"access_token":"T","token_type":"bearer","user_id":1,"role":"manager"}`)
	}, 0)

	_, err := c.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw"})
	if !errors.Is(err, domain.ErrInvalidServerRole) {
		t.Fatalf("expected ErrInvalidServerRole, got %v", err)
	}
}

func TestLogin_Unreachable(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = c.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw"})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if domain.DisplayMessage(err) != "unable to reach the server, please try again later" {
		t.Fatalf("unexpected display message %q", domain.DisplayMessage(err))
	}
}

func TestLogin_HungBackendHitsDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	start := time.Now()
	_, err := c.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw"})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("deadline not enforced, call took %s", elapsed)
	}
}

func TestRegister_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body domain.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if !reflect.DeepEqual(body.Skills, []string{"Go", "SQL"}) {
			t.Fatalf("unexpected skills: %v", body.Skills)
		}
		writeJSON(w, http.StatusOK, `{"id":9,"name":"Ann","email":"ann@x.com","role":"consultant","skills":[{"skill":"Go"},{"skill":"SQL"}]}`)
	}, 0)

	res, err := c.Register(context.Background(), domain.RegisterRequest{
		Name: "Ann", Email: "ann@x.com", Password: "password1", Role: domain.RoleConsultant, Skills: []string{"Go", "SQL"},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.ID != 9 || res.Role != domain.RoleConsultant || !reflect.DeepEqual(res.Skills, []string{"Go", "SQL"}) {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRegister_ValidationListIsJoined(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","email"],"msg":"bad email"},{"loc":["body","password"],"msg":"too short"}]}`)
	}, 0)

	_, err := c.Register(context.Background(), domain.RegisterRequest{Name: "Ann", Email: "x", Password: "p", Role: domain.RoleConsultant})
	if !errors.Is(err, domain.ErrRegistrationFailed) {
		t.Fatalf("expected ErrRegistrationFailed, got %v", err)
	}
	if err.Error() != "bad email; too short" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRegister_SendsEmptySkillsArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if string(raw["skills"]) != "[]" {
			t.Fatalf("expected empty skills array, got %s", raw["skills"])
		}
		writeJSON(w, http.StatusOK, `{}`)
	}, 0)

	if _, err := c.Register(context.Background(), domain.RegisterRequest{Name: "Ann", Email: "a@x.com", Password: "p", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestFetch_AttachesBearerAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer T" {
			t.Fatalf("expected bearer header, got %q", got)
		}
		if r.URL.Path != "/consultant-dashboard/42" || r.URL.Query().Get("user_id") != "42" {
			t.Fatalf("unexpected url %s", r.URL.String())
		}
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	}, 0)

	resp, err := c.Fetch(context.Background(), "T", ports.BackendRequest{
		Method: http.MethodGet,
		Path:   "/consultant-dashboard/42",
		Query:  map[string]string{"user_id": "42"},
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != `{"ok":true}` {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, body)
	}
}

func TestFetch_NoTokenNoHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Fatalf("authorization header must be absent")
		}
		w.WriteHeader(http.StatusNoContent)
	}, 0)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
