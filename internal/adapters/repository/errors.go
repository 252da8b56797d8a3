package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrUserNotFound = errors.New("user not found")
	ErrConflict     = errors.New("record already exists")
	ErrInvalidLimit = errors.New("invalid limit")
)
