package commands

import (
	"github.com/spf13/cobra"

	"mizuchi/internal/dumpconv"
	"mizuchi/internal/logger"
)

func convertDumpCmd() *cobra.Command {
	var (
		schemas              []string
		includeSystemSchemas bool
		encoding             string
	)

	cmd := &cobra.Command{
		Use:   "convert-dump <dump.sql> <out.sqlite3>",
		Short: "Convert a MySQL dump into a SQLite database",
		Long: "Convert a phpMyAdmin-style MySQL dump into SQLite, rewriting " +
			"MySQL-specific syntax on the fly. Defaults to the chiamogna schema.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Get(logger.InfoLevel)

			include := map[string]bool{"chiamogna": true}
			if len(schemas) > 0 {
				include = make(map[string]bool, len(schemas))
				for _, s := range schemas {
					include[s] = true
				}
			}

			res, err := dumpconv.ImportDump(cmd.Context(), dumpconv.Options{
				DumpPath:             args[0],
				SQLitePath:           args[1],
				IncludeSchemas:       include,
				IncludeSystemSchemas: includeSystemSchemas,
				Encoding:             encoding,
			})
			if err != nil {
				return err
			}

			log.Infow("dump converted",
				"sqlite", args[1],
				"executed", res.Executed,
				"skipped", res.Skipped,
			)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&schemas, "schema", nil, "schema to include (repeatable, default chiamogna)")
	cmd.Flags().BoolVar(&includeSystemSchemas, "include-system-schemas", false, "also import mysql system schemas")
	cmd.Flags().StringVar(&encoding, "encoding", "latin1", "input dump encoding")
	return cmd
}
