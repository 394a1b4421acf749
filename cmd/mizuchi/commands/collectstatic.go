package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"mizuchi/internal/staticfiles"
)

func collectStaticCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collectstatic",
		Short: "Copy static assets into the serving root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StaticSrc == "" || cfg.StaticRoot == "" {
				return errors.New("STATIC_SRC and STATIC_ROOT must be set")
			}

			n, err := staticfiles.Collect(cfg.StaticSrc, cfg.StaticRoot)
			if err != nil {
				return err
			}
			log.Infow("static files collected", "count", n, "src", cfg.StaticSrc, "dst", cfg.StaticRoot)
			return nil
		},
	}
}
