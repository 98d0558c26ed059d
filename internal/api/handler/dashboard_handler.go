package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/api/metrics"
	"github.com/poolconsultant/portal/internal/core/ports"
)

const maxResumeSize = 10 << 20

// DashboardHandler serves the guarded views. Each one is a call to the
// backend made with the bearer token of the caller's session.
type DashboardHandler struct {
	backend ports.Backend
	log     zerolog.Logger
}

func NewDashboardHandler(backend ports.Backend, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{backend: backend, log: log}
}

// AdminDashboard lists the consultants.
//
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Success      200
// @Failure      302
// @Failure      502  {object}  map[string]string
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) AdminDashboard(c echo.Context) error {
	_, token, err := ctxToken(c)
	if err != nil {
		return err
	}
	return h.proxy(c, "admin_dashboard", token, ports.BackendRequest{
		Method: http.MethodGet,
		Path:   "/admin/consultants",
	})
}

// ConsultantReport streams the report of one consultant, usually a CSV.
//
// @Summary      Consultant report
// @Tags         admin
// @Produce      octet-stream
// @Param        id   path  int  true  "Consultant id"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Router       /admin/consultants/{id}/report [get]
func (h *DashboardHandler) ConsultantReport(c echo.Context) error {
	_, token, err := ctxToken(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid consultant id")
	}
	return h.proxy(c, "consultant_report", token, ports.BackendRequest{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/consultants/%d/report", id),
	})
}

// ConsultantDashboard returns the dashboard of the logged-in consultant.
//
// @Summary      Consultant dashboard
// @Tags         consultant
// @Produce      json
// @Success      200
// @Failure      302
// @Router       /consultant/dashboard [get]
func (h *DashboardHandler) ConsultantDashboard(c echo.Context) error {
	store, token, err := ctxToken(c)
	if err != nil {
		return err
	}
	return h.proxy(c, "consultant_dashboard", token, ports.BackendRequest{
		Method: http.MethodGet,
		Path:   "/consultant-dashboard/" + strconv.FormatInt(store.UserID(), 10),
	})
}

// UploadResume forwards a resume to the backend: first stored, then
// processed. The second call only happens when the first succeeded.
//
// @Summary      Upload resume
// @Tags         consultant
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Resume (pdf or docx)"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Router       /consultant/resume [post]
func (h *DashboardHandler) UploadResume(c echo.Context) error {
	store, token, err := ctxToken(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > maxResumeSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	}
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, maxResumeSize+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if len(content) > maxResumeSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	}

	userID := strconv.FormatInt(store.UserID(), 10)
	query := map[string]string{"user_id": userID}

	body, contentType, err := multipartBody(fh.Filename, content, nil)
	if err != nil {
		return err
	}
	resp, err := h.fetch(c, "resume_upload", token, ports.BackendRequest{
		Method: http.MethodPost, Path: "/upload-file", Query: query, Body: body, ContentType: contentType,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return h.relay(c, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	body, contentType, err = multipartBody(fh.Filename, content, map[string]string{"user_id": userID})
	if err != nil {
		return err
	}
	resp, err = h.fetch(c, "resume_process", token, ports.BackendRequest{
		Method: http.MethodPost, Path: "/process-resume-ai", Query: query, Body: body, ContentType: contentType,
	})
	if err != nil {
		return err
	}

	h.log.Info().Str("user_id", userID).Str("file", fh.Filename).Int("status", resp.StatusCode).Msg("resume forwarded")
	return h.relay(c, resp)
}

func (h *DashboardHandler) proxy(c echo.Context, route, token string, req ports.BackendRequest) error {
	resp, err := h.fetch(c, route, token, req)
	if err != nil {
		return err
	}
	return h.relay(c, resp)
}

func (h *DashboardHandler) fetch(c echo.Context, route, token string, req ports.BackendRequest) (*http.Response, error) {
	start := time.Now()
	resp, err := h.backend.Fetch(c.Request().Context(), token, req)
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.BackendRequestDuration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())
	return resp, err
}

// relay copies the backend response to the client and closes it.
func (h *DashboardHandler) relay(c echo.Context, resp *http.Response) error {
	defer resp.Body.Close()

	header := c.Response().Header()
	for _, k := range []string{echo.HeaderContentType, echo.HeaderContentDisposition, echo.HeaderContentLength} {
		if v := resp.Header.Get(k); v != "" {
			header.Set(k, v)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)

	if _, err := io.Copy(c.Response(), resp.Body); err != nil && !errors.Is(err, io.EOF) {
		h.log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("backend response interrupted")
	}
	return nil
}

func multipartBody(filename string, content []byte, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("build upload: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("build upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build upload: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
