// Package loadgen drives a running fitquest server with synthetic users and
// workouts, then checks that the reported totals match locally computed
// points.
package loadgen

import (
	"time"

	"github.com/okian/fitquest/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Users    int           // Number of synthetic users
	Workouts int           // Workouts to submit across all users
	Replays  int           // Workouts resubmitted with the same Idempotency-Key
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Secret   string        // HS256 secret shared with the server
	Issuer   string        // JWT issuer; empty omits the claim
	Verbose  bool
}

// User is a synthetic account and the bearer token it signs in with.
type User struct {
	ID    string
	Token string
}

// Submission is one workout to post.
type Submission struct {
	User           int
	IdempotencyKey string
	Workout        model.NewWorkout
	Points         int64
}

// Stats holds run statistics.
type Stats struct {
	Users      int
	Submitted  int64
	Accepted   int64
	Duplicates int64
	Failed     int64
	Verified   int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
