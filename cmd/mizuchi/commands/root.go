// Package commands implements the mizuchi command-line interface: the HTTP
// server plus the operational tooling around its SQLite datastore.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"mizuchi/internal/config"
	"mizuchi/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "mizuchi",
	Short: "Irrigation consortium shift scheduler",
	Long:  "Mizuchi schedules irrigation turns across consortium branches and serves them over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		logger.Get(logger.InfoLevel).Errorw("command failed", "err", err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		createSuperuserCmd(),
		collectStaticCmd(),
		importLegacyCmd(),
		convertDumpCmd(),
	)
}

// loadConfig resolves configuration and a matching logger.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Get(cfg.LogLevel), nil
}
