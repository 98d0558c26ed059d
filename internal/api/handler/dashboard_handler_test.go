package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

type stubBackend struct {
	fetchFn func(ctx context.Context, token string, req ports.BackendRequest) (*http.Response, error)
	calls   []ports.BackendRequest
}

func (b *stubBackend) Fetch(ctx context.Context, token string, req ports.BackendRequest) (*http.Response, error) {
	b.calls = append(b.calls, req)
	return b.fetchFn(ctx, token, req)
}

func response(status int, contentType, body string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(strings.NewReader(body))}
}

func loggedIn(t *testing.T, c echo.Context, role domain.Role, userID int64) {
	t.Helper()
	store := withSession(t, c)
	if err := store.Login(context.Background(), "T", userID, role); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestDashboardHandler_AdminDashboard(t *testing.T) {
	backend := &stubBackend{
		fetchFn: func(_ context.Context, token string, req ports.BackendRequest) (*http.Response, error) {
			if token != "T" {
				t.Fatalf("expected session token, got %q", token)
			}
			if req.Method != http.MethodGet || req.Path != "/admin/consultants" {
				t.Fatalf("unexpected request %+v", req)
			}
			return response(http.StatusOK, "application/json", `[{"id":1}]`), nil
		},
	}
	h := NewDashboardHandler(backend, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), rec)
	loggedIn(t, c, domain.RoleAdmin, 1)

	if err := h.AdminDashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != `[{"id":1}]` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderContentType) != "application/json" {
		t.Fatalf("content type not relayed")
	}
}

func TestDashboardHandler_ConsultantDashboardUsesSessionUser(t *testing.T) {
	backend := &stubBackend{
		fetchFn: func(_ context.Context, _ string, req ports.BackendRequest) (*http.Response, error) {
			if req.Path != "/consultant-dashboard/42" {
				t.Fatalf("unexpected path %s", req.Path)
			}
			return response(http.StatusOK, "application/json", `{}`), nil
		},
	}
	h := NewDashboardHandler(backend, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/consultant/dashboard", nil), rec)
	loggedIn(t, c, domain.RoleConsultant, 42)

	if err := h.ConsultantDashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(backend.calls) != 1 {
		t.Fatalf("expected one backend call, got %d", len(backend.calls))
	}
}

func TestDashboardHandler_ConsultantReport(t *testing.T) {
	backend := &stubBackend{
		fetchFn: func(_ context.Context, _ string, req ports.BackendRequest) (*http.Response, error) {
			if req.Path != "/consultants/7/report" {
				t.Fatalf("unexpected path %s", req.Path)
			}
			resp := response(http.StatusOK, "text/csv", "name,skill\nAnn,Go\n")
			resp.Header.Set("Content-Disposition", `attachment; filename="report.csv"`)
			return resp, nil
		},
	}
	h := NewDashboardHandler(backend, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/admin/consultants/7/report", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	loggedIn(t, c, domain.RoleAdmin, 1)

	if err := h.ConsultantReport(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get(echo.HeaderContentDisposition) == "" {
		t.Fatalf("content disposition not relayed")
	}
	if rec.Body.String() != "name,skill\nAnn,Go\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestDashboardHandler_ConsultantReport_BadID(t *testing.T) {
	h := NewDashboardHandler(&stubBackend{}, zerolog.Nop())

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")
	loggedIn(t, c, domain.RoleAdmin, 1)

	var he *echo.HTTPError
	if err := h.ConsultantReport(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestDashboardHandler_BackendUnavailable(t *testing.T) {
	backend := &stubBackend{
		fetchFn: func(context.Context, string, ports.BackendRequest) (*http.Response, error) {
			return nil, fmt.Errorf("%w: GET /admin/consultants: deadline exceeded", domain.ErrBackendUnavailable)
		},
	}
	h := NewDashboardHandler(backend, zerolog.Nop())

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), httptest.NewRecorder())
	loggedIn(t, c, domain.RoleAdmin, 1)

	if err := h.AdminDashboard(c); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestDashboardHandler_RequiresAuthenticatedSession(t *testing.T) {
	h := NewDashboardHandler(&stubBackend{}, zerolog.Nop())

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), httptest.NewRecorder())
	withSession(t, c)

	var he *echo.HTTPError
	if err := h.AdminDashboard(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func resumeRequest(t *testing.T) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "cv.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.4 resume"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/consultant/resume", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestDashboardHandler_UploadResume(t *testing.T) {
	backend := &stubBackend{
		fetchFn: func(_ context.Context, token string, req ports.BackendRequest) (*http.Response, error) {
			if token != "T" || req.Query["user_id"] != "42" {
				t.Fatalf("unexpected call: token=%q query=%v", token, req.Query)
			}
			if !strings.HasPrefix(req.ContentType, "multipart/form-data") {
				t.Fatalf("unexpected content type %q", req.ContentType)
			}
			body, _ := io.ReadAll(req.Body)
			if !bytes.Contains(body, []byte("%PDF-1.4 resume")) {
				t.Fatalf("file content not forwarded")
			}
			if req.Path == "/process-resume-ai" && !bytes.Contains(body, []byte(`name="user_id"`)) {
				t.Fatalf("user_id field missing from processing call")
			}
			return response(http.StatusOK, "application/json", `{"message":"ok"}`), nil
		},
	}
	h := NewDashboardHandler(backend, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(resumeRequest(t), rec)
	loggedIn(t, c, domain.RoleConsultant, 42)

	if err := h.UploadResume(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(backend.calls) != 2 || backend.calls[0].Path != "/upload-file" || backend.calls[1].Path != "/process-resume-ai" {
		t.Fatalf("unexpected backend calls: %+v", backend.calls)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDashboardHandler_UploadResume_StopsWhenUploadFails(t *testing.T) {
	backend := &stubBackend{
		fetchFn: func(context.Context, string, ports.BackendRequest) (*http.Response, error) {
			return response(http.StatusBadRequest, "application/json", `{"detail":"unsupported file"}`), nil
		},
	}
	h := NewDashboardHandler(backend, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(resumeRequest(t), rec)
	loggedIn(t, c, domain.RoleConsultant, 42)

	if err := h.UploadResume(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(backend.calls) != 1 {
		t.Fatalf("processing must not run after a failed upload, got %d calls", len(backend.calls))
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected backend status relayed, got %d", rec.Code)
	}
}

func TestDashboardHandler_UploadResume_MissingFile(t *testing.T) {
	h := NewDashboardHandler(&stubBackend{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/consultant/resume", strings.NewReader(""))
	c := echo.New().NewContext(req, httptest.NewRecorder())
	loggedIn(t, c, domain.RoleConsultant, 42)

	var he *echo.HTTPError
	if err := h.UploadResume(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
