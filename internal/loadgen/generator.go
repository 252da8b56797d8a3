package loadgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/internal/domain/scoring"
)

const (
	minDuration   = 5
	durationRange = 116 // 5..120 minutes
	tokenTTL      = 24 * time.Hour
)

var intensities = []scoring.Intensity{scoring.Low, scoring.Moderate, scoring.High, scoring.VeryHigh} //nolint:gochecknoglobals // fixed tier list

var exercises = []string{"running", "cycling", "swimming", "strength", "yoga", "hiit"} //nolint:gochecknoglobals // fixed sample list

// randomInt returns a value in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateUsers creates n users with signed tokens.
func generateUsers(cfg *Config) ([]User, error) {
	users := make([]User, cfg.Users)
	for i := range users {
		id := "loadgen-" + uuid.NewString()
		token, err := signToken(cfg, id, fmt.Sprintf("Load%d", i))
		if err != nil {
			return nil, fmt.Errorf("sign token for %s: %w", id, err)
		}
		users[i] = User{ID: id, Token: token}
	}
	return users, nil
}

func signToken(cfg *Config, sub, firstName string) (string, error) {
	claims := jwt.MapClaims{
		"sub":        sub,
		"first_name": firstName,
		"last_name":  "Generator",
		"exp":        time.Now().Add(tokenTTL).Unix(),
	}
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// generateWorkouts spreads cfg.Workouts round-robin over the users and
// appends cfg.Replays copies of earlier submissions.
func generateWorkouts(cfg *Config) ([]Submission, error) {
	subs := make([]Submission, 0, cfg.Workouts+cfg.Replays)
	for i := 0; i < cfg.Workouts; i++ {
		duration := minDuration + randomInt(durationRange)
		intensity := intensities[randomInt(len(intensities))]
		points, err := scoring.Points(duration, intensity)
		if err != nil {
			return nil, err
		}
		subs = append(subs, Submission{
			User:           i % cfg.Users,
			IdempotencyKey: uuid.NewString(),
			Workout: model.NewWorkout{
				ExerciseType: exercises[randomInt(len(exercises))],
				Duration:     duration,
				Intensity:    string(intensity),
			},
			Points: points,
		})
	}
	for i := 0; i < cfg.Replays && len(subs) > 0; i++ {
		subs = append(subs, subs[randomInt(cfg.Workouts)])
	}
	return subs, nil
}
