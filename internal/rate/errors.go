package rate

import "errors"

var (
	// ErrRateLimited indicates the caller exhausted the attempt budget.
	ErrRateLimited = errors.New("rate limited")

	// ErrRedisUnavailable indicates the limiter backend could not be reached.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
