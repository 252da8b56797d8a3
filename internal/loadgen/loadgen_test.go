package loadgen

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fitquest/internal/adapters/http/api"
	"github.com/okian/fitquest/internal/adapters/repository"
	service "github.com/okian/fitquest/internal/app"
	"github.com/okian/fitquest/internal/domain/scoring"
	"github.com/okian/fitquest/pkg/logger"
)

const (
	testSecret = "loadgen-secret"
	testIssuer = "fitquest"
)

func newTestServer() *httptest.Server {
	svc := service.New(repository.NewMemoryStore())
	return httptest.NewServer(api.NewServer(svc, api.NewAuthenticator(testSecret, testIssuer, svc.SignIn)).Handler())
}

func TestGenerateWorkouts(t *testing.T) {
	Convey("Given a load config", t, func() {
		cfg := &Config{Users: 3, Workouts: 30, Replays: 5, Secret: testSecret}

		Convey("Workouts are spread over users with scored points", func() {
			subs, err := generateWorkouts(cfg)
			So(err, ShouldBeNil)
			So(subs, ShouldHaveLength, 35)

			for _, s := range subs[:30] {
				So(s.User, ShouldBeBetweenOrEqual, 0, 2)
				So(s.Workout.Duration, ShouldBeBetweenOrEqual, minDuration, minDuration+durationRange-1)
				want, err := scoring.Points(s.Workout.Duration, scoring.Intensity(s.Workout.Intensity))
				So(err, ShouldBeNil)
				So(s.Points, ShouldEqual, want)
			}
		})

		Convey("Replays reuse an earlier idempotency key", func() {
			subs, err := generateWorkouts(cfg)
			So(err, ShouldBeNil)
			keys := make(map[string]bool)
			for _, s := range subs[:30] {
				keys[s.IdempotencyKey] = true
			}
			So(keys, ShouldHaveLength, 30)
			for _, s := range subs[30:] {
				So(keys[s.IdempotencyKey], ShouldBeTrue)
			}
		})

		Convey("Users get distinct ids and tokens", func() {
			users, err := generateUsers(cfg)
			So(err, ShouldBeNil)
			So(users, ShouldHaveLength, 3)
			So(users[0].ID, ShouldNotEqual, users[1].ID)
			So(users[0].Token, ShouldNotBeEmpty)
		})
	})
}

func TestExpectedTotals(t *testing.T) {
	Convey("Only accepted submissions count toward a user's total", t, func() {
		users := []User{{ID: "a"}, {ID: "b"}}
		subs := []Submission{{User: 0, Points: 18}, {User: 0, Points: 35}, {User: 1, Points: 7}}

		totals := expectedTotals(users, subs, []bool{true, false, true})
		So(totals["a"], ShouldEqual, 18)
		So(totals["b"], ShouldEqual, 7)
	})
}

func TestRun(t *testing.T) {
	_ = logger.Init(logger.WithOutput(io.Discard))

	Convey("Given a running server", t, func() {
		srv := newTestServer()
		defer srv.Close()

		ctx := context.Background()
		cfg := &Config{
			BaseURL:  srv.URL,
			Users:    4,
			Workouts: 40,
			Replays:  6,
			Workers:  4,
			Timeout:  5 * time.Second,
			Secret:   testSecret,
			Issuer:   testIssuer,
		}

		Convey("A full run verifies every user's totals", func() {
			stats, err := Run(ctx, cfg)
			So(err, ShouldBeNil)
			So(stats.Submitted, ShouldEqual, 46)
			So(stats.Accepted, ShouldEqual, 40)
			So(stats.Duplicates, ShouldEqual, 6)
			So(stats.Failed, ShouldEqual, 0)
			So(stats.Verified, ShouldEqual, 4)
		})

		Convey("A wrong secret fails every submission", func() {
			cfg.Secret = "other"
			stats, err := Run(ctx, cfg)
			So(err, ShouldNotBeNil)
			So(stats.Failed, ShouldEqual, 46)
		})

		Convey("Invalid configs are rejected before any request", func() {
			cfg.Users = 0
			_, err := Run(ctx, cfg)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("An unreachable server is reported as unhealthy", t, func() {
		srv := newTestServer()
		url := srv.URL
		srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: url, Users: 1, Workouts: 1, Secret: testSecret, Timeout: time.Second})
		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
	})
}
