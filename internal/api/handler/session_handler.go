package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/service"
)

type SessionHandler struct {
	navigator *service.Navigator
}

func NewSessionHandler(navigator *service.Navigator) *SessionHandler {
	return &SessionHandler{navigator: navigator}
}

// sessionResponse is the session as the view layer sees it. The bearer token
// never leaves the portal.
type sessionResponse struct {
	IsAuthenticated bool        `json:"is_authenticated"`
	UserID          int64       `json:"user_id,omitempty"`
	Role            domain.Role `json:"role,omitempty"`
	Landing         string      `json:"landing"`
}

// Current returns the session of the calling client.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}

	snap := store.Snapshot()
	resp := sessionResponse{
		IsAuthenticated: snap.IsAuthenticated,
		Landing:         h.navigator.LoginPath(),
	}
	if snap.IsAuthenticated {
		resp.UserID = snap.UserID
		resp.Role = snap.Role
		if landing, err := h.navigator.LandingPath(snap.Role); err == nil {
			resp.Landing = landing
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Root sends every visitor to the login view.
func (h *SessionHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.navigator.LoginPath())
}
