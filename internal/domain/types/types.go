// Package types contains leaderboard types shared by the store, cache and API.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LeaderboardSize is the number of entries a leaderboard returns.
const LeaderboardSize = 10

// Entry is one leaderboard row. Points is the score for the requested
// period; TotalPoints is always the lifetime total.
type Entry struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"id"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	Points          int64  `json:"points"`
	TotalPoints     int64  `json:"totalPoints"`
}

// Period selects the leaderboard window.
type Period string

// Leaderboard periods.
const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ErrInvalidPeriod is returned for an unknown period label.
var ErrInvalidPeriod = errors.New("period must be one of week, month, all")

// ParsePeriod maps a query value to a Period. Empty means week.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodWeek, nil
	case PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Window returns the inclusive start of the period containing now.
// Weeks start Monday 00:00 UTC and months on the 1st. The all period
// has no window and reports ok=false.
func (p Period) Window(now time.Time) (since time.Time, ok bool) {
	now = now.UTC()
	y, m, d := now.Date()
	switch p {
	case PeriodWeek:
		offset := (int(now.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC), true
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}

// Rank assigns 1-based ranks in slice order.
func Rank(entries []Entry) []Entry {
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
