package domain

import (
	"errors"
	"fmt"
)

// Identity operation errors.
var (
	ErrIdentityOperationFailed = errors.New("identity operation failed")
	ErrIdentityTimeout         = errors.New("identity service did not respond in time")
	ErrIdentityUnavailable     = errors.New("identity provider unavailable")
	ErrNoSession               = errors.New("no active session")
	ErrSessionSuperseded       = errors.New("signed out while the sign-in was in progress")
)

// Form errors.
var (
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrMissingCredentials = errors.New("email and password are required")
)

// Browser session and token errors.
var (
	ErrBrowserTokenInvalid = errors.New("browser token invalid")
	ErrBrowserSecretWeak   = errors.New("browser token secret too weak")
	ErrCSRFSecretMissing   = errors.New("CSRF secret not configured")
	ErrCSRFMismatch        = errors.New("CSRF token mismatch")
)

// Rendering and site errors.
var (
	ErrDocNotFound     = errors.New("document not found")
	ErrDiagramNotFound = errors.New("diagram not found")
	ErrNoColorMode     = errors.New("color mode unavailable outside a browser")
)

// Rate limiting errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)

// OperationError carries the provider's message for a failed identity call.
// Message is shown to the user verbatim.
type OperationError struct {
	Op      string
	Message string
	Status  int
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is makes errors.Is(err, ErrIdentityOperationFailed) hold for every
// OperationError.
func (e *OperationError) Is(target error) bool {
	return target == ErrIdentityOperationFailed
}

// userFacing are the sentinels whose text is safe to show in a form.
var userFacing = []error{
	ErrIdentityTimeout,
	ErrSubmissionInFlight,
	ErrMissingCredentials,
	ErrIdentityUnavailable,
	ErrCSRFMismatch,
	ErrRateLimited,
	ErrSessionSuperseded,
}

// UserMessage returns the text a form shows for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Message
	}
	for _, sentinel := range userFacing {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
