package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/seansukamto/bankclient/internal/domain"
)

// DefaultTimeout bounds each individual attempt, not the whole call chain.
const DefaultTimeout = 30 * time.Second

// Request describes one logical call to the banking service.
type Request struct {
	Method       string
	Path         string
	Body         any
	RequiresAuth bool
	// Idempotent marks the request as safe to retry. GETs are; a transfer
	// is not unless the caller supplies an IdempotencyKey the server can
	// deduplicate on.
	Idempotent     bool
	IdempotencyKey string
}

// Response is the raw terminal response: a 2xx or a non-retryable error
// status, after the retry budget is spent.
type Response struct {
	Status int
	Body   []byte
}

// Executor issues HTTP requests against the banking service with pooled
// connections, per-attempt timeouts and the configured retry policy. It is
// stateless per call and safe for concurrent use.
type Executor struct {
	httpClient *http.Client
	baseURL    string
	auth       *Authenticator
	store      *TokenStore
	retry      RetryPolicy
	limiter    *rate.Limiter
	logger     zerolog.Logger

	// sleep waits between attempts; swapped for a recording fake in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) ExecutorOption {
	return func(e *Executor) { e.retry = p }
}

// WithRateLimit paces outgoing attempts.
func WithRateLimit(l *rate.Limiter) ExecutorOption {
	return func(e *Executor) { e.limiter = l }
}

// NewHTTPClient builds the pooled HTTP client shared by the Executor and
// the Authenticator, so token requests reuse the same connections. The
// timeout bounds a single attempt.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewExecutor creates an Executor. auth may be nil when the client is used
// without credentials; authenticated requests then fail with AuthError.
func NewExecutor(httpClient *http.Client, baseURL string, auth *Authenticator, store *TokenStore, logger zerolog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		httpClient: httpClient,
		baseURL:    baseURL,
		auth:       auth,
		store:      store,
		retry:      DefaultRetryPolicy(),
		logger:     logger,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the request to a terminal response. Transport failures and
// retryable statuses are retried with exponential backoff, but only when the
// request is idempotent or carries an idempotency key. A 401 on an
// authenticated call clears the token store and re-authenticates exactly
// once before giving up.
func (e *Executor) Execute(ctx context.Context, r Request) (*Response, error) {
	op := fmt.Sprintf("%s %s", r.Method, r.Path)

	var body []byte
	if r.Body != nil {
		var err error
		body, err = json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request body: %w", op, err)
		}
	}

	attempts := 1
	if r.Idempotent || r.IdempotencyKey != "" {
		attempts = e.retry.MaxAttempts
	}

	var lastErr error
	reauthed := false
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := e.retry.Delay(attempt - 1)
			e.logger.Debug().Str("op", op).Int("attempt", attempt).Dur("delay", delay).Msg("retrying")
			if err := e.sleep(ctx, delay); err != nil {
				return nil, &domain.NetworkError{Op: op, Cause: err}
			}
		}
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, &domain.NetworkError{Op: op, Cause: err}
			}
		}

		resp, err := e.attempt(ctx, op, r, body)
		if err != nil {
			if nerr, ok := err.(*domain.NetworkError); ok && retryableNetwork(ctx, nerr.Cause) && attempts > 1 {
				lastErr = err
				continue
			}
			return nil, err
		}

		switch {
		case resp.Status >= 200 && resp.Status < 300:
			return resp, nil

		case resp.Status == http.StatusUnauthorized && r.RequiresAuth && !reauthed:
			// The token may have been revoked or expired server side.
			// Force a fresh one and resend without spending the budget.
			e.logger.Warn().Str("op", op).Msg("token rejected, re-authenticating")
			e.store.Clear()
			if e.auth == nil {
				return nil, &domain.AuthError{Status: resp.Status, Message: domain.ErrNoCredentials.Error()}
			}
			if _, err := e.auth.Authenticate(ctx); err != nil {
				return nil, err
			}
			reauthed = true
			attempt--
			continue

		case e.retry.Retryable(resp.Status) && attempt < attempts-1:
			lastErr = Classify(op, resp.Status, resp.Body, nil)
			continue

		default:
			return nil, Classify(op, resp.Status, resp.Body, nil)
		}
	}

	if lastErr == nil {
		lastErr = &domain.NetworkError{Op: op}
	}
	return nil, lastErr
}

// attempt performs a single HTTP exchange.
func (e *Executor) attempt(ctx context.Context, op string, r Request, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, e.baseURL+r.Path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", r.IdempotencyKey)
	}

	if r.RequiresAuth {
		token, ok := e.store.Get()
		if !ok {
			if e.auth == nil {
				return nil, &domain.AuthError{Message: domain.ErrNoCredentials.Error()}
			}
			token, err = e.auth.Authenticate(ctx)
			if err != nil {
				return nil, err
			}
		}
		req.Header.Set("Authorization", "Bearer "+token.Value)
	}

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Cause: err}
	}

	e.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	return &Response{Status: resp.StatusCode, Body: respBody}, nil
}

// sleepCtx waits for d or until the context is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
