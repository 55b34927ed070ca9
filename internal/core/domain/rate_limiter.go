// Package domain concentra entidades e estruturas centrais do rate limiter.
package domain

import "time"

// Limit describes a sliding window: at most MaxRequests requests are
// admitted per client key within any interval of length Window.
type Limit struct {
	Window      time.Duration
	MaxRequests int
}

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed bool
	Key     string

	// Remaining is the request budget left in the window after an
	// admission. Zero on rejection.
	Remaining int

	// RetryAfterSeconds is set on rejection. It is computed from the
	// oldest timestamp still inside the window and rounded up to a whole
	// second, so it is a safe upper bound: a client that waits this long
	// is guaranteed to be at or past window expiry, never before it.
	RetryAfterSeconds int
}
