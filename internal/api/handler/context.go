package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/poolconsultant/portal/internal/api/middleware"
	"github.com/poolconsultant/portal/internal/core/service"
)

// ctxSession returns the session store opened by the Session middleware.
// A missing store means the route was registered without it.
func ctxSession(c echo.Context) (*service.SessionStore, error) {
	store := middleware.SessionFrom(c)
	if store == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session not initialised")
	}
	return store, nil
}

// ctxToken returns the bearer token of an authenticated session. Guarded
// routes always have one; an empty token here is a 401.
func ctxToken(c echo.Context) (*service.SessionStore, string, error) {
	store, err := ctxSession(c)
	if err != nil {
		return nil, "", err
	}
	snap := store.Snapshot()
	if !snap.IsAuthenticated || snap.Token == "" {
		return nil, "", echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return store, snap.Token, nil
}
