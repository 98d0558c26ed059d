package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by this package.
const (
	ContextClientID = "client_id"
	ContextSession  = "session"
	ContextPayload  = "token_payload"
)

// CookieConfig describes the client identity cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// ClientID identifies the browser behind a request. The id is read from the
// cookie, or a new one is issued when the cookie is missing or not a UUID.
func ClientID(cfg CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cfg.Name); err == nil {
				if parsed, err := uuid.Parse(ck.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cfg.Name,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(ContextClientID, id)
			return next(c)
		}
	}
}

// ClientIDFrom returns the id set by ClientID, or "".
func ClientIDFrom(c echo.Context) string {
	id, _ := c.Get(ContextClientID).(string)
	return id
}
