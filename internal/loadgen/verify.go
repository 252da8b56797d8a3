package loadgen

import (
	"context"
	"fmt"

	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/internal/domain/types"
	"github.com/okian/fitquest/pkg/logger"
)

// expectedTotals sums points of accepted submissions per user.
func expectedTotals(users []User, subs []Submission, accepted []bool) map[string]int64 {
	totals := make(map[string]int64, len(users))
	for _, u := range users {
		totals[u.ID] = 0
	}
	for i := range subs {
		if accepted[i] {
			totals[users[subs[i].User].ID] += subs[i].Points
		}
	}
	return totals
}

// verify compares each user's stats with the accepted workouts and checks
// the all-time leaderboard is ordered and agrees with those totals.
func verify(ctx context.Context, log logger.Logger, c *client, users []User, subs []Submission, accepted []bool, stats *Stats) error {
	want := expectedTotals(users, subs, accepted)

	var mismatches int
	for _, u := range users {
		var got model.UserStats
		if err := c.getJSON(ctx, "/api/stats", u.Token, &got); err != nil {
			return fmt.Errorf("stats for %s: %w", u.ID, err)
		}
		if got.TotalPoints != want[u.ID] {
			mismatches++
			log.Warn(ctx, "total points mismatch",
				logger.String("user", u.ID),
				logger.Int64("want", want[u.ID]),
				logger.Int64("got", got.TotalPoints))
			continue
		}
		stats.Verified++
	}

	var board []types.Entry
	if err := c.getJSON(ctx, "/api/leaderboard?period=all", users[0].Token, &board); err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	for i := range board {
		if i > 0 && board[i].Points > board[i-1].Points {
			return fmt.Errorf("%w: leaderboard entry %d outranks entry %d", ErrMismatch, i, i-1)
		}
		if w, ours := want[board[i].UserID]; ours && board[i].Points != w {
			mismatches++
			log.Warn(ctx, "leaderboard points mismatch",
				logger.String("user", board[i].UserID),
				logger.Int64("want", w),
				logger.Int64("got", board[i].Points))
		}
	}

	if mismatches > 0 {
		return fmt.Errorf("%w: %d mismatches", ErrMismatch, mismatches)
	}
	log.Info(ctx, "totals verified", logger.Int("users", stats.Verified), logger.Int("leaderboard", len(board)))
	return nil
}
