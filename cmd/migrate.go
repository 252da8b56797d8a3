package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/fitquest/internal/adapters/repository/postgres"
	"github.com/okian/fitquest/internal/config"
	"github.com/okian/fitquest/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert the Postgres schema",
		Long:      "Applies (up, the default) or reverts (down) every migration against FITQUEST_DATABASE_URL.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(postgres.Up), string(postgres.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := postgres.Up
			if len(args) == 1 {
				dir = postgres.Direction(args[0])
			}

			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := initLogger(cfg); err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("migrate: %w", errNoDatabase)
			}

			pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			if err := postgres.Migrate(pool, dir); err != nil {
				return fmt.Errorf("migrate %s: %w", dir, err)
			}
			logger.Get().Info(ctx, "migrations applied", logger.String("direction", string(dir)))
			return nil
		},
	}
}
