package domain

import "time"

// TokenPayload is the decoded body of a bearer token.
type TokenPayload struct {
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	UserID int64  `json:"user_id"`
	Exp    int64  `json:"exp"`
}

// ExpiredAt reports whether the payload is no longer valid at now.
// A token whose exp equals now is already expired.
func (p TokenPayload) ExpiredAt(now time.Time) bool {
	return p.Exp <= now.Unix()
}

// PersistedSession mirrors the keys a client keeps across reloads.
type PersistedSession struct {
	Token  string
	UserID int64
	Role   Role
}

// Empty reports whether no token is persisted.
func (p PersistedSession) Empty() bool {
	return p.Token == ""
}

// Session is the client-side projection of the accepted credential.
// The zero value is the logged-out session.
type Session struct {
	Token           string `json:"token,omitempty"`
	UserID          int64  `json:"user_id,omitempty"`
	Role            Role   `json:"role,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// SessionEventKind labels audit events emitted by the session layer.
type SessionEventKind string

const (
	SessionLogin   SessionEventKind = "login"
	SessionLogout  SessionEventKind = "logout"
	SessionExpired SessionEventKind = "expired"
)

// SessionEvent is an audit record of a session transition.
type SessionEvent struct {
	Kind     SessionEventKind `json:"kind"`
	ClientID string           `json:"client_id"`
	UserID   int64            `json:"user_id,omitempty"`
	Role     Role             `json:"role,omitempty"`
	At       time.Time        `json:"at"`
}
