package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to a status and the one message the user should see. Unexpected
// errors are logged and reported as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, validation, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		switch {
		case errors.Is(ge, domain.ErrLoginFailed):
			return http.StatusUnauthorized, ge.Error()
		case errors.Is(ge, domain.ErrRegistrationFailed):
			if ge.Status == http.StatusUnprocessableEntity {
				return http.StatusUnprocessableEntity, ge.Error()
			}
			return http.StatusBadRequest, ge.Error()
		}
	}

	switch {
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusBadGateway, domain.ErrBackendUnavailable.Error()
	case errors.Is(err, domain.ErrInvalidServerRole):
		return http.StatusBadGateway, domain.ErrInvalidServerRole.Error()
	case errors.Is(err, domain.ErrPasswordMismatch):
		return http.StatusBadRequest, domain.ErrPasswordMismatch.Error()
	case errors.Is(err, domain.ErrInvalidForm):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
