package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrConnect = errors.New("connect redis")
	ErrCache   = errors.New("leaderboard cache")
)
