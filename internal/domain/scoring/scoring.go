// Package scoring converts workouts into points and maintains streaks.
package scoring

import (
	"fmt"
	"strings"
)

// Intensity is a workout exertion tier.
type Intensity string

// Intensity tiers.
const (
	Low      Intensity = "low"
	Moderate Intensity = "moderate"
	High     Intensity = "high"
	VeryHigh Intensity = "very_high"
)

// multipliers are expressed in tenths so rounding stays exact.
var multipliers = map[Intensity]int64{ //nolint:gochecknoglobals // fixed tier table
	Low:      10,
	Moderate: 12,
	High:     15,
	VeryHigh: 18,
}

// ParseIntensity validates a tier label.
func ParseIntensity(s string) (Intensity, error) {
	in := Intensity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := multipliers[in]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidIntensity, s)
	}
	return in, nil
}

// Multiplier returns the tier multiplier, e.g. 1.2 for moderate.
func (i Intensity) Multiplier() float64 {
	return float64(multipliers[i]) / 10
}

// Valid reports whether i is a known tier.
func (i Intensity) Valid() bool {
	_, ok := multipliers[i]
	return ok
}

// MaxDuration is the longest accepted session: one day, in minutes.
const MaxDuration = 24 * 60

// BasePoints is round(duration * 0.5), half up.
func BasePoints(duration int) int64 {
	return (int64(duration) + 1) / 2
}

// Points returns round(round(duration*0.5) * multiplier), both roundings half
// up. The same value is stored on the workout and added to the user total.
func Points(duration int, intensity Intensity) (int64, error) {
	if duration <= 0 || duration > MaxDuration {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	m, ok := multipliers[intensity]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIntensity, intensity)
	}
	return (BasePoints(duration)*m + 5) / 10, nil
}
