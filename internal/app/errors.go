package service

import (
	"errors"
	"fmt"

	"github.com/okian/fitquest/internal/adapters/coach"
	"github.com/okian/fitquest/internal/adapters/repository"
)

// Sentinel kinds returned by the service. The HTTP layer maps them with
// errors.Is; anything else is an internal failure.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("duplicate request")
	ErrConflict         = errors.New("conflict")
	ErrRateLimited      = errors.New("rate limited")
	ErrCoachUnavailable = errors.New("coach unavailable")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storeErr maps repository errors onto service kinds.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	case errors.Is(err, repository.ErrInvalidLimit):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidInput, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func coachErr(op string, err error) error {
	if errors.Is(err, coach.ErrRateLimited) {
		return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrCoachUnavailable, err)
}
