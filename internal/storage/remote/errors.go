package remote

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means the order API rejected the token. The session that owns it is dead.
var ErrUnauthorized = errors.New("order api rejected the token")

// DefaultLoginMessage is shown when the order API gives no reason for a failed login.
const DefaultLoginMessage = "Invalid email or password"

// TransportError is any failure to get a usable answer from the order API.
// Status is 0 when no response was received.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: order api responded %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// LoginError carries the message the user should see after a rejected login.
type LoginError struct {
	Status  int
	Message string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login rejected (%d): %s", e.Status, e.Message)
}
