package ports

import (
	"context"

	"github.com/poolconsultant/portal/internal/core/domain"
)

// LoginForm is the login input collected from the client.
type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role,omitempty" form:"role" validate:"omitempty,oneof=admin consultant"`
}

// RegisterForm is the registration input collected from the client. Skills
// are entered as comma-separated free text.
type RegisterForm struct {
	Name            string `json:"name" form:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Role            string `json:"role" form:"role" validate:"omitempty,oneof=admin consultant"`
	Department      string `json:"department" form:"department" validate:"max=50"`
	Skills          string `json:"skills" form:"skills"`
}

// SessionHandle is the part of a session store the portal flows need.
type SessionHandle interface {
	Login(ctx context.Context, token string, userID int64, role domain.Role) error
	Logout(ctx context.Context) error
	Snapshot() domain.Session
	ClientID() string
}

// PortalService runs the login, registration and logout flows.
type PortalService interface {
	Login(ctx context.Context, session SessionHandle, form LoginForm) (string, error)
	Register(ctx context.Context, form RegisterForm) (domain.RegisterResult, error)
	Logout(ctx context.Context, session SessionHandle) (string, error)
}
