package domain

import "errors"

var (
	ErrBackendUnavailable = errors.New("unable to reach the server, please try again later")
	ErrLoginFailed        = errors.New("login failed")
	ErrInvalidServerRole  = errors.New("invalid role from server")
	ErrRegistrationFailed = errors.New("registration failed, please try again")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidForm        = errors.New("invalid form")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// GatewayError carries the message the backend sent back so it can be shown
// to the user as-is. It unwraps to one of the sentinel errors above.
type GatewayError struct {
	Kind   error
	Status int
	Detail string
}

func (e *GatewayError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Detail
}

func (e *GatewayError) Unwrap() error {
	return e.Kind
}

// DisplayMessage returns the single user-facing string for err.
func DisplayMessage(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Error()
	}
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return ErrPasswordMismatch.Error()
	case errors.Is(err, ErrInvalidServerRole):
		return ErrInvalidServerRole.Error()
	case errors.Is(err, ErrBackendUnavailable):
		return ErrBackendUnavailable.Error()
	}
	return err.Error()
}
