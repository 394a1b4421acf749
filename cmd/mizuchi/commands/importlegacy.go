package commands

import (
	"github.com/spf13/cobra"

	"mizuchi/internal/importer"
	"mizuchi/internal/repository/db"
)

func importLegacyCmd() *cobra.Command {
	opts := importer.Options{}

	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Import a legacy chiamogna sqlite database",
		Long: "Import the legacy chiamogna.sqlite3 data into the current datastore. " +
			"Existing domain rows are wiped first unless --no-reset is given.",
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

			res, err := importer.Run(cmd.Context(), conn, opts, log.SugaredLogger)
			if err != nil {
				return err
			}

			log.Infow("import completed",
				"persone", res.Persone,
				"consorzi", res.Consorzi,
				"rami", res.Rami,
				"giri", res.Giri,
				"turni", res.Turni,
				"proprietari", res.Proprietari,
			)
			log.Infow("skips and remaps",
				"missing_utilizzatore", res.SkippedMissingUtilizzatore,
				"missing_giro_key", res.SkippedMissingGiroKey,
				"missing_turno", res.SkippedMissingTurno,
				"missing_proprietario", res.SkippedMissingProprietario,
				"remapped_ordini", res.RemappedOrdini,
				"turni_without_proprietario", res.TurniWithoutProprietario,
				"durata_mismatches", res.DurataMismatches,
			)
			for _, ex := range res.RemappedExamples {
				log.Infow("remapped duplicate ordine", "detail", ex)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "old_data/chiamogna.sqlite3", "path to the legacy sqlite database")
	cmd.Flags().StringVar(&opts.ConsorzioName, "consorzio-name", "Chiamogna", "consorzio to use or create for imported records")
	cmd.Flags().BoolVar(&opts.NoReset, "no-reset", false, "keep existing data instead of wiping it first")
	return cmd
}
