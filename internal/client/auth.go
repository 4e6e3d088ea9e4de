package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/seansukamto/bankclient/internal/domain"
)

// DefaultTokenTTL is assumed when the server returns a token without an
// expiry and the token itself carries no exp claim.
const DefaultTokenTTL = 5 * time.Minute

// Credentials is the username/password pair plus the claim scope requested
// when obtaining a token.
type Credentials struct {
	Username string
	Password string
	Claim    string
}

// Authenticator obtains tokens from POST /authToken and installs them into
// the TokenStore. Concurrent refresh attempts for the same claim are
// coalesced into a single request.
type Authenticator struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
	store      *TokenStore
	group      singleflight.Group
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthenticator creates an Authenticator writing into store. The
// http.Client is shared with the executor so connections are pooled.
func NewAuthenticator(httpClient *http.Client, baseURL string, creds Credentials, store *TokenStore, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		httpClient: httpClient,
		baseURL:    baseURL,
		creds:      creds,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expiresAt"`
}

// Authenticate returns a usable token, requesting a new one only if the
// store has none. At most one token request per claim is in flight at a
// time; losers of the race share the winner's result.
func (a *Authenticator) Authenticate(ctx context.Context) (domain.AuthToken, error) {
	if token, ok := a.store.Get(); ok {
		return token, nil
	}

	v, err, _ := a.group.Do(a.creds.Claim, func() (interface{}, error) {
		// Re-check under the flight: a competing caller may have already
		// refreshed between our Get miss and winning the flight.
		if token, ok := a.store.Get(); ok {
			return token, nil
		}

		token, err := a.requestToken(ctx)
		if err != nil {
			return nil, err
		}
		a.store.Set(token)
		return token, nil
	})
	if err != nil {
		return domain.AuthToken{}, err
	}
	return v.(domain.AuthToken), nil
}

// requestToken performs the actual POST /authToken call.
func (a *Authenticator) requestToken(ctx context.Context) (domain.AuthToken, error) {
	if a.creds.Username == "" {
		return domain.AuthToken{}, &domain.AuthError{Message: domain.ErrNoCredentials.Error()}
	}

	body, err := json.Marshal(authRequest{Username: a.creds.Username, Password: a.creds.Password})
	if err != nil {
		return domain.AuthToken{}, fmt.Errorf("marshal auth request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/authToken?claim=%s", a.baseURL, url.QueryEscape(a.creds.Claim))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.AuthToken{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	a.logger.Debug().Str("claim", a.creds.Claim).Msg("requesting auth token")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return domain.AuthToken{}, &domain.NetworkError{Op: "authenticate", Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AuthToken{}, &domain.NetworkError{Op: "authenticate", Cause: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.AuthToken{}, &domain.AuthError{Status: resp.StatusCode, Message: serverMessage(respBody)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.AuthToken{}, &domain.APIError{Op: "authenticate", Status: resp.StatusCode, Message: serverMessage(respBody)}
	}

	var parsed authResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return domain.AuthToken{}, fmt.Errorf("parse auth response: %w", err)
	}

	value := parsed.Token
	if value == "" {
		value = parsed.AccessToken
	}
	if value == "" {
		return domain.AuthToken{}, &domain.AuthError{Message: domain.ErrTokenMissing.Error()}
	}

	token := domain.AuthToken{
		Value:     value,
		Claim:     a.creds.Claim,
		ExpiresAt: a.tokenExpiry(parsed, value),
	}

	a.logger.Info().Str("claim", token.Claim).Time("expires_at", token.ExpiresAt).Msg("authenticated")
	return token, nil
}

// tokenExpiry resolves the token expiry: the expiresAt field if the server
// sent one, else the token's own exp claim, else a short default.
func (a *Authenticator) tokenExpiry(parsed authResponse, value string) time.Time {
	if parsed.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, parsed.ExpiresAt); err == nil {
			return t
		}
	}
	if exp, ok := jwtExpiry(value); ok {
		return exp
	}
	return a.now().Add(DefaultTokenTTL)
}

// jwtExpiry extracts the exp claim from a JWT without verifying the
// signature. The client does not hold the signing key; expiry is only used
// to schedule refreshes, never to trust the token.
func jwtExpiry(value string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(value, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
