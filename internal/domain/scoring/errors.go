package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidDuration  = errors.New("duration must be between 1 and 1440 minutes")
	ErrInvalidIntensity = errors.New("intensity must be one of low, moderate, high, very_high")
)
