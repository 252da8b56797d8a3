package coach

import "errors"

// Sentinel kinds for coach errors.
var (
	ErrUnavailable = errors.New("coach is not configured")
	ErrRateLimited = errors.New("coach rate limited")
	ErrRequest     = errors.New("coach request failed")
	ErrBlocked     = errors.New("coach prompt blocked")
	ErrEmpty       = errors.New("coach returned no text")
)
