package importer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"mizuchi/internal/models"
)

// Options controls a legacy chiamogna.sqlite3 import.
type Options struct {
	// Source is the path of the legacy sqlite database.
	Source string
	// ConsorzioName is the consortium to use or create for imported rows.
	ConsorzioName string
	// NoReset keeps existing data instead of wiping it before the import.
	NoReset bool
}

// Result reports what a completed import did.
type Result struct {
	Persone     int `json:"persone"`
	Consorzi    int `json:"consorzi"`
	Rami        int `json:"rami"`
	Giri        int `json:"giri"`
	Turni       int `json:"turni"`
	Proprietari int `json:"proprietari"`

	SkippedMissingUtilizzatore int `json:"skipped_missing_utilizzatore"`
	SkippedMissingGiroKey      int `json:"skipped_missing_giro_key"`
	SkippedMissingTurno        int `json:"skipped_missing_turno"`
	SkippedMissingProprietario int `json:"skipped_missing_proprietario"`

	RemappedOrdini   int      `json:"remapped_ordini"`
	RemappedExamples []string `json:"remapped_examples,omitempty"`

	TurniWithoutProprietario int `json:"turni_without_proprietario"`
	DurataMismatches         int `json:"durata_mismatches"`
}

// legacy row shapes, matching the old schema column for column.
type legacyPersona struct {
	ID   int64
	Nome string
}

type legacyGiro struct {
	ID             int64
	RamoBealera    string
	TipoGiro       string
	Ordine         int
	IDUtilizzatore int64
}

type legacyRuolo struct {
	ID              int64
	IDGiro          int64
	IDUtente        int64
	IntervalloTempo string
}

// Run imports the legacy database at opts.Source into dest inside a single
// transaction. Unless NoReset is set, all existing domain rows are deleted
// first. Rows referencing missing people or rounds are skipped with a
// warning; duplicate ordine values within a giro are bumped to the next free
// slot.
func Run(ctx context.Context, dest *sql.DB, opts Options, log *zap.SugaredLogger) (*Result, error) {
	if strings.TrimSpace(opts.ConsorzioName) == "" {
		return nil, fmt.Errorf("consorzio name cannot be empty")
	}
	if st, err := os.Stat(opts.Source); err != nil || st.IsDir() {
		return nil, fmt.Errorf("source database not found: %s", opts.Source)
	}

	src, err := sql.Open("sqlite", opts.Source)
	if err != nil {
		return nil, fmt.Errorf("open source database: %w", err)
	}
	defer src.Close()

	persone, err := readLegacyPersone(ctx, src)
	if err != nil {
		return nil, err
	}
	giri, err := readLegacyGiri(ctx, src)
	if err != nil {
		return nil, err
	}
	ruoli, err := readLegacyRuoli(ctx, src)
	if err != nil {
		return nil, err
	}

	tx, err := dest.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	res := &Result{}

	if !opts.NoReset {
		log.Infow("reset enabled, deleting existing data")
		for _, table := range []string{"turno_proprietari", "turni", "giri", "rami", "consorzi", "persone"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return nil, fmt.Errorf("reset %s: %w", table, err)
			}
		}
	}

	consorzioID, created, err := getOrCreateConsorzio(ctx, tx, strings.TrimSpace(opts.ConsorzioName))
	if err != nil {
		return nil, err
	}
	if created {
		res.Consorzi = 1
	}

	// Legacy "nome" holds the family name; nome proper is unknown.
	personaIDs := make(map[int64]int64, len(persone))
	for _, p := range persone {
		cognome := strings.TrimSpace(p.Nome)
		if cognome == "" {
			cognome = "-"
		}
		r, err := tx.ExecContext(ctx,
			"INSERT INTO persone (nome, cognome) VALUES ('-', ?)", cognome)
		if err != nil {
			return nil, fmt.Errorf("insert persona: %w", err)
		}
		id, err := r.LastInsertId()
		if err != nil {
			return nil, err
		}
		personaIDs[p.ID] = id
		res.Persone++
	}

	inizio := time.Date(models.AbstractYear, 1, 1, 0, 0, 0, 0, time.UTC)

	ramoNames := distinctRamoNames(giri)
	ramoIDs := make(map[string]int64, len(ramoNames))
	for _, name := range ramoNames {
		r, err := tx.ExecContext(ctx,
			"INSERT INTO rami (nome, descrizione, consorzio_id, inizio_astratto) VALUES (?, '', ?, ?)",
			name, consorzioID, inizio)
		if err != nil {
			return nil, fmt.Errorf("insert ramo %q: %w", name, err)
		}
		id, err := r.LastInsertId()
		if err != nil {
			return nil, err
		}
		ramoIDs[name] = id
		res.Rami++
	}

	// Tipo A and B keep fixed positions 1 and 2; any other tipo takes the
	// next free position in discovery order.
	type giroKey struct{ ramo, tipo string }
	giroIDs := make(map[giroKey]int64)
	tipoFallback := 3
	for _, ramoName := range ramoNames {
		for _, tipo := range distinctTipiForRamo(giri, ramoName) {
			var ordine int
			switch tipo {
			case "A":
				ordine = 1
			case "B":
				ordine = 2
			default:
				ordine = tipoFallback
				tipoFallback++
			}
			descr := fmt.Sprintf("Import legacy: ramo_bealera=%s, tipo_giro=%s", ramoName, tipo)
			r, err := tx.ExecContext(ctx,
				"INSERT INTO giri (nome, ordine, descrizione, ramo_id) VALUES (?, ?, ?, ?)",
				"Giro "+tipo, ordine, descr, ramoIDs[ramoName])
			if err != nil {
				return nil, fmt.Errorf("insert giro %s/%s: %w", ramoName, tipo, err)
			}
			id, err := r.LastInsertId()
			if err != nil {
				return nil, err
			}
			giroIDs[giroKey{ramoName, tipo}] = id
			res.Giri++
		}
	}

	turnoIDs := make(map[int64]int64, len(giri))
	usedOrdini := make(map[int64]map[int]bool)
	for _, g := range giri {
		ramoName := strings.TrimSpace(g.RamoBealera)
		tipo := strings.TrimSpace(g.TipoGiro)

		utilizzatoreID, ok := personaIDs[g.IDUtilizzatore]
		if !ok {
			res.SkippedMissingUtilizzatore++
			log.Warnw("skipping legacy giro, missing persona",
				"legacy_giro_id", g.ID, "legacy_persona_id", g.IDUtilizzatore)
			continue
		}
		giroID, ok := giroIDs[giroKey{ramoName, tipo}]
		if !ok {
			res.SkippedMissingGiroKey++
			log.Warnw("skipping legacy giro, missing giro key",
				"legacy_giro_id", g.ID, "ramo", ramoName, "tipo", tipo)
			continue
		}

		used := usedOrdini[giroID]
		if used == nil {
			used = make(map[int]bool)
			usedOrdini[giroID] = used
		}
		ordine := g.Ordine
		for used[ordine] {
			ordine++
		}
		if ordine != g.Ordine {
			res.RemappedOrdini++
			res.RemappedExamples = append(res.RemappedExamples,
				fmt.Sprintf("legacy_giro_id=%d (%s/%s): %d->%d", g.ID, ramoName, tipo, g.Ordine, ordine))
		}
		used[ordine] = true

		r, err := tx.ExecContext(ctx,
			"INSERT INTO turni (utilizzatore_id, ordine, durata_s, giro_id) VALUES (?, ?, 0, ?)",
			utilizzatoreID, ordine, giroID)
		if err != nil {
			return nil, fmt.Errorf("insert turno for legacy giro %d: %w", g.ID, err)
		}
		id, err := r.LastInsertId()
		if err != nil {
			return nil, err
		}
		turnoIDs[g.ID] = id
		res.Turni++
	}

	durataByTurno := make(map[int64]int64)
	for _, ru := range ruoli {
		tempo, err := models.ParseDurataHHMMSS(strings.TrimSpace(ru.IntervalloTempo))
		if err != nil {
			return nil, fmt.Errorf("ruolo id=%d: %w", ru.ID, err)
		}

		turnoID, ok := turnoIDs[ru.IDGiro]
		if !ok {
			res.SkippedMissingTurno++
			log.Warnw("skipping ruolo, missing imported turno",
				"ruolo_id", ru.ID, "legacy_giro_id", ru.IDGiro)
			continue
		}
		proprietarioID, ok := personaIDs[ru.IDUtente]
		if !ok {
			res.SkippedMissingProprietario++
			log.Warnw("skipping ruolo, missing persona",
				"ruolo_id", ru.ID, "legacy_persona_id", ru.IDUtente)
			continue
		}

		tempoS := int64(tempo.Seconds())
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO turno_proprietari (turno_id, proprietario_id, tempo_s) VALUES (?, ?, ?)",
			turnoID, proprietarioID, tempoS); err != nil {
			return nil, fmt.Errorf("insert turno_proprietario for ruolo %d: %w", ru.ID, err)
		}
		durataByTurno[turnoID] += tempoS
		res.Proprietari++
	}

	// Durata denormalizes the owner tempo sum.
	for turnoID, durata := range durataByTurno {
		if _, err := tx.ExecContext(ctx,
			"UPDATE turni SET durata_s = ? WHERE id = ?", durata, turnoID); err != nil {
			return nil, fmt.Errorf("update turno durata: %w", err)
		}
	}

	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM turni t
		WHERE NOT EXISTS (SELECT 1 FROM turno_proprietari tp WHERE tp.turno_id = t.id)`,
	).Scan(&res.TurniWithoutProprietario); err != nil {
		return nil, fmt.Errorf("count turni without proprietario: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM turni t
		WHERE t.durata_s <> COALESCE(
			(SELECT SUM(tp.tempo_s) FROM turno_proprietari tp WHERE tp.turno_id = t.id), 0)`,
	).Scan(&res.DurataMismatches); err != nil {
		return nil, fmt.Errorf("count durata mismatches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return res, nil
}

func readLegacyPersone(ctx context.Context, src *sql.DB) ([]legacyPersona, error) {
	rows, err := src.QueryContext(ctx, "SELECT id, nome FROM persona ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("read legacy persone: %w", err)
	}
	defer rows.Close()

	var out []legacyPersona
	for rows.Next() {
		var p legacyPersona
		var nome sql.NullString
		if err := rows.Scan(&p.ID, &nome); err != nil {
			return nil, err
		}
		p.Nome = nome.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func readLegacyGiri(ctx context.Context, src *sql.DB) ([]legacyGiro, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT id, ramo_bealera, tipo_giro, ordine, id_utilizzatore
		FROM giro
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read legacy giri: %w", err)
	}
	defer rows.Close()

	var out []legacyGiro
	for rows.Next() {
		var g legacyGiro
		if err := rows.Scan(&g.ID, &g.RamoBealera, &g.TipoGiro, &g.Ordine, &g.IDUtilizzatore); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func readLegacyRuoli(ctx context.Context, src *sql.DB) ([]legacyRuolo, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT id, id_giro, id_utente, intervallo_tempo
		FROM ruolo
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read legacy ruoli: %w", err)
	}
	defer rows.Close()

	var out []legacyRuolo
	for rows.Next() {
		var r legacyRuolo
		if err := rows.Scan(&r.ID, &r.IDGiro, &r.IDUtente, &r.IntervalloTempo); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func getOrCreateConsorzio(ctx context.Context, tx *sql.Tx, name string) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM consorzi WHERE nome = ?", name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("lookup consorzio %q: %w", name, err)
	}
	r, err := tx.ExecContext(ctx,
		"INSERT INTO consorzi (nome, descrizione) VALUES (?, ?)",
		name, "Import legacy chiamogna.sqlite3")
	if err != nil {
		return 0, false, fmt.Errorf("insert consorzio %q: %w", name, err)
	}
	id, err = r.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func distinctRamoNames(giri []legacyGiro) []string {
	seen := make(map[string]bool)
	var names []string
	for _, g := range giri {
		name := strings.TrimSpace(g.RamoBealera)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func distinctTipiForRamo(giri []legacyGiro, ramo string) []string {
	seen := make(map[string]bool)
	var tipi []string
	for _, g := range giri {
		if strings.TrimSpace(g.RamoBealera) != ramo {
			continue
		}
		tipo := strings.TrimSpace(g.TipoGiro)
		if !seen[tipo] {
			seen[tipo] = true
			tipi = append(tipi, tipo)
		}
	}
	sort.Strings(tipi)
	return tipi
}
