package domain

import (
	"fmt"
	"strings"
)

// Role is the account role issued by the backend. It is fixed at
// registration time.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleConsultant Role = "consultant"
)

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleConsultant
}

// ParseRole converts a raw role claim into a Role. The claim must match exactly.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidServerRole, s)
	}
	return r, nil
}

// Credential is what the backend returns on a successful login.
type Credential struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Role        Role   `json:"role"`
}

// LoginRequest is the body sent to POST /auth/login. Role is informational.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// RegisterRequest is the body sent to POST /auth/register.
type RegisterRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Role       Role     `json:"role"`
	Department string   `json:"department"`
	Skills     []string `json:"skills"`
}

// RegisterResult is the confirmation returned by the backend after a
// successful registration. Registration never logs the user in.
type RegisterResult struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       Role     `json:"role"`
	Department string   `json:"department,omitempty"`
	Skills     []string `json:"skills,omitempty"`
}

// NormalizeSkills splits free-text skills on commas, trims each entry and
// drops empty ones. Order is preserved.
func NormalizeSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
