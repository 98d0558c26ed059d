package service

import (
	"fmt"

	"github.com/poolconsultant/portal/internal/core/domain"
)

const (
	PathLogin               = "/login"
	PathRegister            = "/register"
	PathAdminDashboard      = "/admin/dashboard"
	PathConsultantDashboard = "/consultant/dashboard"
)

// Navigator maps roles to landing views.
type Navigator struct {
	landing map[domain.Role]string
	login   string
}

func NewNavigator() *Navigator {
	return &Navigator{
		landing: map[domain.Role]string{
			domain.RoleAdmin:      PathAdminDashboard,
			domain.RoleConsultant: PathConsultantDashboard,
		},
		login: PathLogin,
	}
}

// LandingPath returns where a freshly logged-in user of role is sent.
// Unknown roles are never routed.
func (n *Navigator) LandingPath(role domain.Role) (string, error) {
	path, ok := n.landing[role]
	if !ok {
		return "", fmt.Errorf("landing path: %w: %q", domain.ErrInvalidServerRole, role)
	}
	return path, nil
}

// LoginPath is the redirect target after logout and for rejected navigation.
func (n *Navigator) LoginPath() string {
	return n.login
}
