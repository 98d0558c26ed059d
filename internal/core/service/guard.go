package service

import (
	"context"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

// GuardState is the outcome of a route authorization check.
type GuardState string

const (
	GuardUnauthenticated GuardState = "unauthenticated"
	GuardWrongRole       GuardState = "wrong-role"
	GuardAuthorized      GuardState = "authorized"
)

// Decision is the result of Guard.Evaluate. Redirect is empty when the view
// may be rendered.
type Decision struct {
	State    GuardState
	Redirect string
	Payload  *domain.TokenPayload
}

// Allowed reports whether the wrapped view may be rendered.
func (d Decision) Allowed() bool {
	return d.State == GuardAuthorized
}

// Guard decides whether a client may see a guarded view. It relies on the
// live token check every time and keeps no state between calls.
type Guard struct {
	decoder   *TokenDecoder
	navigator *Navigator
}

func NewGuard(decoder *TokenDecoder, navigator *Navigator) *Guard {
	return &Guard{decoder: decoder, navigator: navigator}
}

// Evaluate checks the token persisted in storage against requiredRole. An
// empty requiredRole accepts any authenticated client. Both failure states
// send the client to the login view without remembering the target.
func (g *Guard) Evaluate(ctx context.Context, storage ports.SessionStorage, requiredRole domain.Role) Decision {
	payload, ok := g.decoder.Current(ctx, storage)
	if !ok {
		return Decision{State: GuardUnauthenticated, Redirect: g.navigator.LoginPath()}
	}
	if requiredRole != "" && payload.Role != requiredRole {
		return Decision{State: GuardWrongRole, Redirect: g.navigator.LoginPath(), Payload: payload}
	}
	return Decision{State: GuardAuthorized, Payload: payload}
}
