package testutil

import (
	"context"
	"sync"

	"github.com/seansukamto/bankclient/internal/client"
)

// MockExecutor is a scripted implementation of service.Executor. It records
// every request so tests can assert on call counts and payloads.
type MockExecutor struct {
	mu       sync.Mutex
	Requests []client.Request
	// Responses are returned in order; the last one repeats.
	Responses []*client.Response
	// Errors are paired with Responses by index; nil means success.
	Errors []error
	// ExecuteFn, when set, overrides the scripted behavior entirely.
	ExecuteFn func(ctx context.Context, r client.Request) (*client.Response, error)
}

// NewMockExecutor creates an empty MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Respond appends a scripted outcome.
func (m *MockExecutor) Respond(resp *client.Response, err error) *MockExecutor {
	m.Responses = append(m.Responses, resp)
	m.Errors = append(m.Errors, err)
	return m
}

// Execute returns the next scripted outcome.
func (m *MockExecutor) Execute(ctx context.Context, r client.Request) (*client.Response, error) {
	if m.ExecuteFn != nil {
		m.mu.Lock()
		m.Requests = append(m.Requests, r)
		m.mu.Unlock()
		return m.ExecuteFn(ctx, r)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.Requests)
	m.Requests = append(m.Requests, r)

	if len(m.Responses) == 0 {
		return &client.Response{Status: 200, Body: []byte(`{}`)}, nil
	}
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], m.Errors[i]
}

// Calls returns how many requests were executed.
func (m *MockExecutor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
