package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/service"
)

// Session opens the session store of the calling client and stores it in
// the context. It must run after ClientID.
func Session(sessions *service.Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := ClientIDFrom(c)
			if clientID == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing client identity")
			}

			store, err := sessions.Open(c.Request().Context(), clientID)
			if err != nil {
				return err
			}

			c.Set(ContextSession, store)
			return next(c)
		}
	}
}

// SessionFrom returns the store set by Session, or nil.
func SessionFrom(c echo.Context) *service.SessionStore {
	store, _ := c.Get(ContextSession).(*service.SessionStore)
	return store
}

// PayloadFrom returns the token payload set by RequireRole, or nil.
func PayloadFrom(c echo.Context) *domain.TokenPayload {
	p, _ := c.Get(ContextPayload).(*domain.TokenPayload)
	return p
}
