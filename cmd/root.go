package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fitquest",
		Short: "Fitness tracking API with workout scoring and leaderboards",
		Long: `fitquest serves the workout, tracking, social and coach API.

Configuration is read from FITQUEST_* environment variables, an optional
.env file and the YAML file named by FITQUEST_CONFIG.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newLoadgenCmd())
	return root
}
