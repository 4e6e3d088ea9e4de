package client

import (
	"sync"
	"time"

	"github.com/seansukamto/bankclient/internal/domain"
)

// DefaultExpiryMargin is how long before its expiry a token stops being
// handed out, so requests do not race against imminent expiry.
const DefaultExpiryMargin = 30 * time.Second

// TokenStore holds the current auth token. It is safe for concurrent use;
// only the Authenticator writes to it.
type TokenStore struct {
	mu     sync.RWMutex
	token  domain.AuthToken
	margin time.Duration
	now    func() time.Time
}

// NewTokenStore creates an empty store with the default expiry margin.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		margin: DefaultExpiryMargin,
		now:    time.Now,
	}
}

// Get returns the stored token if it is still usable. ok=false signals the
// caller to refresh.
func (s *TokenStore) Get() (token domain.AuthToken, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.token.Usable(s.now(), s.margin) {
		return domain.AuthToken{}, false
	}
	return s.token, true
}

// Set replaces the stored token.
func (s *TokenStore) Set(token domain.AuthToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear drops the stored token, forcing the next Get to miss.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = domain.AuthToken{}
}
