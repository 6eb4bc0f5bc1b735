package pipeline

import (
	"errors"
	"math/rand/v2"
	"net"
	"time"

	"segmark/internal/kb"
)

// IsRetryable checks if an error is worth retrying. Rate limits,
// server-side failures, and network timeouts are transient; everything
// else fails fast.
func IsRetryable(err error) bool {
	var statusErr *kb.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
