package reliability

import "time"

// RetryableStatus reports whether an upstream HTTP status is worth retrying.
// Client errors other than 429 are not: the request will not get better.
func RetryableStatus(code int) bool {
	if code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

// Backoff returns a deterministic capped doubling backoff for the given
// attempt (0-based).
func Backoff(attempt int, base, max time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}
