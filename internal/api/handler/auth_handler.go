package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/api/metrics"
	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
	"github.com/poolconsultant/portal/internal/core/service"
)

type AuthHandler struct {
	portal ports.PortalService
	log    zerolog.Logger
}

func NewAuthHandler(portal ports.PortalService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{portal: portal, log: log}
}

type fieldDescriptor struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// viewResponse describes a form view for the client to render.
type viewResponse struct {
	View   string            `json:"view"`
	Action string            `json:"action"`
	Fields []fieldDescriptor `json:"fields"`
	Links  map[string]string `json:"links,omitempty"`
}

type registerResponse struct {
	Message  string                `json:"message"`
	Account  domain.RegisterResult `json:"account"`
	LoginURL string                `json:"login_url"`
}

var roleOptions = []string{string(domain.RoleAdmin), string(domain.RoleConsultant)}

// LoginView describes the login form.
//
// @Summary      Login view
// @Tags         auth
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /login [get]
func (h *AuthHandler) LoginView(c echo.Context) error {
	return c.JSON(http.StatusOK, viewResponse{
		View:   "login",
		Action: service.PathLogin,
		Fields: []fieldDescriptor{
			{Name: "email", Type: "email", Required: true},
			{Name: "password", Type: "password", Required: true},
			{Name: "role", Type: "select", Options: roleOptions},
		},
		Links: map[string]string{"register": service.PathRegister},
	})
}

// RegisterView describes the registration form.
//
// @Summary      Registration view
// @Tags         auth
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /register [get]
func (h *AuthHandler) RegisterView(c echo.Context) error {
	return c.JSON(http.StatusOK, viewResponse{
		View:   "register",
		Action: service.PathRegister,
		Fields: []fieldDescriptor{
			{Name: "name", Type: "text", Required: true},
			{Name: "email", Type: "email", Required: true},
			{Name: "password", Type: "password", Required: true},
			{Name: "confirm_password", Type: "password", Required: true},
			{Name: "role", Type: "select", Options: roleOptions},
			{Name: "department", Type: "text"},
			{Name: "skills", Type: "text"},
		},
		Links: map[string]string{"login": service.PathLogin},
	})
}

// Login authenticates against the backend and redirects to the landing view
// of the role the backend reported.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body  ports.LoginForm  true  "Login credentials"
// @Success      303
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form ports.LoginForm
	if err := c.Bind(&form); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_form").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_form").Inc()
		return err
	}

	landing, err := h.portal.Login(c.Request().Context(), store, form)
	metrics.LoginAttemptsTotal.WithLabelValues(loginOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, landing)
}

// Register creates an account. The user still has to log in afterwards.
//
// @Summary      Register
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      ports.RegisterForm  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var form ports.RegisterForm
	if err := c.Bind(&form); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid_form").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	// A mismatch is reported ahead of any field rule.
	if form.Password != form.ConfirmPassword {
		metrics.RegistrationsTotal.WithLabelValues("mismatch").Inc()
		return domain.ErrPasswordMismatch
	}
	if err := c.Validate(&form); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid_form").Inc()
		return err
	}

	account, err := h.portal.Register(c.Request().Context(), form)
	metrics.RegistrationsTotal.WithLabelValues(registerOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message:  "registration successful, please log in",
		Account:  account,
		LoginURL: service.PathLogin,
	})
}

// Logout ends the session and redirects to the login view. A storage failure
// is logged; the client is logged out regardless.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}

	path, err := h.portal.Logout(c.Request().Context(), store)
	if err != nil {
		h.log.Warn().Err(err).Str("client_id", store.ClientID()).Msg("logout left persisted session behind")
	}
	return c.Redirect(http.StatusSeeOther, path)
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidForm):
		return "invalid_form"
	case errors.Is(err, domain.ErrInvalidServerRole):
		return "invalid_role"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "unavailable"
	default:
		return "rejected"
	}
}

func registerOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrPasswordMismatch):
		return "mismatch"
	case errors.Is(err, domain.ErrInvalidForm):
		return "invalid_form"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "unavailable"
	default:
		return "rejected"
	}
}
