package client

import (
	"math/rand"
	"time"
)

// RetryPolicy controls how the executor retries failed attempts. It is plain
// configuration: the delay schedule and the set of retryable status codes.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt.
	BaseDelay time.Duration
	// Multiplier grows the delay for each subsequent attempt.
	Multiplier float64
	// Jitter adds up to this fraction of the computed delay at random.
	Jitter float64
	// RetryableStatus is the set of HTTP status codes worth retrying.
	RetryableStatus map[int]bool
}

// DefaultRetryPolicy mirrors the retry strategy used against the banking
// service: 3 attempts, 500ms base delay doubling each attempt, retrying the
// gateway and overload statuses.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2,
		RetryableStatus: map[int]bool{
			429: true,
			500: true,
			502: true,
			503: true,
			504: true,
		},
	}
}

// Retryable reports whether an HTTP status code should be retried.
func (p RetryPolicy) Retryable(status int) bool {
	return p.RetryableStatus[status]
}

// Delay returns how long to wait after the given zero-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		d *= p.Multiplier
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * rand.Float64()
	}
	return time.Duration(d)
}
