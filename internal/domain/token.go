package domain

import "time"

// AuthToken is an opaque bearer token with its claim scope and expiry.
// Tokens are replaced wholesale on refresh, never mutated in place.
type AuthToken struct {
	Value     string
	Claim     string
	ExpiresAt time.Time
}

// Usable reports whether the token is still safe to attach to a request at
// the given time. A token within margin of its expiry is treated as expired
// so an in-flight request does not race against the server clock.
func (t AuthToken) Usable(now time.Time, margin time.Duration) bool {
	if t.Value == "" {
		return false
	}
	return now.Before(t.ExpiresAt.Add(-margin))
}
