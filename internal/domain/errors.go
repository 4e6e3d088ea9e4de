package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrSameAccount        = errors.New("fromAccount and toAccount must be different")
	ErrNoCredentials      = errors.New("authentication required but no credentials configured")
	ErrTokenMissing       = errors.New("no token received in response")
	ErrEmptyAccountID     = errors.New("account id is required")
	ErrInvalidAccountID   = errors.New("account id must match ACC followed by 4 digits")
	ErrNonPositiveAmount  = errors.New("amount must be greater than 0")
	ErrUnexpectedResponse = errors.New("unexpected response from server")
)

// ValidationError reports a client-side validation failure. It is produced
// before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NetworkError wraps a transport-level failure (connect, DNS, timeout,
// cancelled context). Op names the operation being attempted.
type NetworkError struct {
	Op    string
	Cause error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: network error: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: network error", e.Op)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// AuthError reports a credential or token failure (HTTP 401/403, or a token
// endpoint that returned no usable token).
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// APIError reports a non-2xx HTTP response not otherwise classified.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.Status, e.Message)
}

// TransferError reports a transfer the server accepted at the HTTP level but
// rejected in the response body (status "FAILED"). It is never retried.
type TransferError struct {
	FromAccount string
	ToAccount   string
	Message     string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s -> %s failed: %s", e.FromAccount, e.ToAccount, e.Message)
}
