package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/fitquest/internal/config"
	"github.com/okian/fitquest/internal/loadgen"
)

// Default load run settings.
const (
	defaultLoadUsers    = 50
	defaultLoadWorkouts = 5000
	defaultLoadReplays  = 250
	defaultLoadTimeout  = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
	workersPerCPU       = 2
)

func newLoadgenCmd() *cobra.Command {
	lc := &loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Submit synthetic workouts to a running server and verify the totals",
		Long: `loadgen signs tokens for synthetic users with FITQUEST_JWT_SECRET, posts
random workouts concurrently, replays some of them with the same
Idempotency-Key and checks /api/stats and /api/leaderboard against the
locally computed points.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := initLogger(cfg); err != nil {
				return err
			}
			if lc.Secret == "" {
				lc.Secret = cfg.JWTSecret
			}
			if lc.Issuer == "" {
				lc.Issuer = cfg.JWTIssuer
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()

			_, err = loadgen.Run(ctx, lc)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&lc.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&lc.Users, "users", defaultLoadUsers, "Number of synthetic users")
	f.IntVar(&lc.Workouts, "workouts", defaultLoadWorkouts, "Number of workouts to submit")
	f.IntVar(&lc.Replays, "replays", defaultLoadReplays, "Workouts resubmitted with a used Idempotency-Key")
	f.IntVar(&lc.Workers, "workers", runtime.NumCPU()*workersPerCPU, "Number of concurrent workers")
	f.DurationVar(&lc.Timeout, "timeout", defaultLoadTimeout, "HTTP request timeout")
	f.StringVar(&lc.Secret, "secret", "", "JWT secret (default FITQUEST_JWT_SECRET)")
	f.StringVar(&lc.Issuer, "issuer", "", "JWT issuer (default FITQUEST_JWT_ISSUER)")
	f.BoolVar(&lc.Verbose, "verbose", false, "Log progress while submitting")
	return cmd
}
