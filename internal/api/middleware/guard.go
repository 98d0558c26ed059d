package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/api/metrics"
	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/service"
)

// RequireRole renders the wrapped route only for a live session of role.
// Anything else is redirected to the login view; the requested path is not
// remembered. It must run after Session.
func RequireRole(guard *service.Guard, role domain.Role, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := SessionFrom(c)
			if store == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session not initialised")
			}

			decision := guard.Evaluate(c.Request().Context(), store.Storage(), role)
			metrics.GuardDecisionsTotal.WithLabelValues(string(role), string(decision.State)).Inc()

			if !decision.Allowed() {
				log.Debug().
					Str("client_id", store.ClientID()).
					Str("path", c.Request().URL.Path).
					Str("state", string(decision.State)).
					Msg("navigation rejected")
				return c.Redirect(http.StatusFound, decision.Redirect)
			}

			c.Set(ContextPayload, decision.Payload)
			return next(c)
		}
	}
}
