package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seansukamto/bankclient/internal/domain"
)

// serverError is the error shape the banking service uses, plus the keys
// other gateways in front of it have been seen to use.
type serverError struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

// Classify maps the outcome of an HTTP attempt to the typed error taxonomy.
// It is a pure function of (transport error, status, body) and is called by
// the executor on every transport failure or non-2xx response.
func Classify(op string, status int, body []byte, err error) error {
	if err != nil {
		return &domain.NetworkError{Op: op, Cause: err}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &domain.AuthError{Status: status, Message: serverMessage(body)}
	case status < 200 || status >= 300:
		return &domain.APIError{Op: op, Status: status, Message: serverMessage(body)}
	}
	return nil
}

// serverMessage pulls a human-readable message out of an error body,
// falling back to the raw body when it is not JSON.
func serverMessage(body []byte) string {
	var e serverError
	if json.Unmarshal(body, &e) == nil {
		switch {
		case e.Message != "":
			return e.Message
		case e.Detail != "":
			return e.Detail
		case e.Error != "":
			return e.Error
		}
	}
	return string(body)
}

// retryableNetwork reports whether a transport error is worth retrying.
// A per-attempt timeout is; the caller's own context being cancelled or past
// its deadline is terminal. The ctx check matters because the HTTP client's
// per-attempt timeout error also matches context.DeadlineExceeded.
func retryableNetwork(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled)
}
