package portal

import (
	"errors"
	"fmt"
)

// The portal never raises these past the poller; they exist so callers can
// pattern-match on the failure kind instead of probing response shapes.
var (
	// ErrCredentialsInvalid means the login form came back, i.e. the
	// portal rejected the username/password pair.
	ErrCredentialsInvalid = errors.New("portal: invalid credentials")

	// ErrSessionActiveElsewhere means the portal reported a session
	// already open from another browser. Treated like a failed login for
	// backoff purposes, but kept distinct so a caller can surface it.
	ErrSessionActiveElsewhere = errors.New("portal: session already open elsewhere")

	// ErrSessionExpired means a read or control request was answered with
	// a redirect to login (or 401/403) mid-operation.
	ErrSessionExpired = errors.New("portal: session expired")

	// ErrSessionInvalidated means the server discarded its session state
	// (404, empty body, or an unrecognizable page).
	ErrSessionInvalidated = errors.New("portal: session invalidated")

	// ErrNotAuthenticated means an operation was skipped because
	// authentication failed or is in its cooldown window.
	ErrNotAuthenticated = errors.New("portal: not authenticated")

	// ErrInputInvalid means the caller passed an unknown control action.
	ErrInputInvalid = errors.New("portal: invalid action")
)

// TransportError wraps a timeout or connection failure. These degrade the
// current poll to "no data" and are never fatal to the process.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("portal: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
