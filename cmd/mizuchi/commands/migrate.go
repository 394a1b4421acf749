package commands

import (
	"github.com/spf13/cobra"

	"mizuchi/internal/repository/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the SQLite schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			conn, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.EnsureSchema(conn); err != nil {
				return err
			}
			log.Infow("schema up to date", "path", cfg.DBPath)
			return nil
		},
	}
}
