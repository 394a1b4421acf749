package importer

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mizuchi/internal/repository/db"
)

func createLegacyDB(t *testing.T, path string, includeDuplicate bool) {
	t.Helper()

	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`
		CREATE TABLE persona (
		  id INTEGER NOT NULL,
		  nome TEXT NOT NULL,
		  UNIQUE (id)
		);
		CREATE TABLE giro (
		  id INTEGER NOT NULL,
		  ramo_bealera TEXT NOT NULL,
		  tipo_giro TEXT NOT NULL,
		  ordine INTEGER NOT NULL,
		  id_utilizzatore INTEGER NOT NULL,
		  int_tempo TIME NOT NULL,
		  PRIMARY KEY (id)
		);
		CREATE TABLE ruolo (
		  id INTEGER NOT NULL,
		  id_giro INTEGER NOT NULL,
		  id_utilizzatore INTEGER NOT NULL,
		  id_utente INTEGER NOT NULL,
		  intervallo_tempo TIME NOT NULL,
		  ramo_bealera TEXT NOT NULL,
		  PRIMARY KEY (id)
		);`)
	require.NoError(t, err)

	for _, p := range [][]any{
		{1, "Mario Rossi"},
		{2, "Luigi Bianchi"},
		{3, "Anna Verdi"},
	} {
		_, err = conn.Exec("INSERT INTO persona (id, nome) VALUES (?, ?)", p...)
		require.NoError(t, err)
	}

	giroRows := [][]any{
		{10, "BOSCHETTO", "A", 30, 1, "03:00:00"},
		{11, "BOSCHETTO", "A", 60, 2, "01:30:00"},
		{12, "VARDA", "B", 40, 3, "02:00:00"},
	}
	if includeDuplicate {
		giroRows = append(giroRows, []any{13, "BOSCHETTO", "A", 60, 3, "02:00:00"})
	}
	for _, g := range giroRows {
		_, err = conn.Exec(`
			INSERT INTO giro (id, ramo_bealera, tipo_giro, ordine, id_utilizzatore, int_tempo)
			VALUES (?, ?, ?, ?, ?, ?)`, g...)
		require.NoError(t, err)
	}

	for _, r := range [][]any{
		{1, 10, 1, 1, "01:00:00", "BOSCHETTO"},
		{2, 10, 1, 2, "02:00:00", "BOSCHETTO"},
		{3, 11, 2, 2, "01:30:00", "BOSCHETTO"},
		{4, 12, 3, 3, "02:00:00", "VARDA"},
	} {
		_, err = conn.Exec(`
			INSERT INTO ruolo (id, id_giro, id_utilizzatore, id_utente, intervallo_tempo, ramo_bealera)
			VALUES (?, ?, ?, ?, ?, ?)`, r...)
		require.NoError(t, err)
	}
}

func openDest(t *testing.T) *sql.DB {
	t.Helper()

	dest, err := db.Open(filepath.Join(t.TempDir(), "mizuchi.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { dest.Close() })
	require.NoError(t, db.EnsureSchema(dest))
	return dest
}

func countRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRun_ImportsLegacyDataAndDurationsMatch(t *testing.T) {
	source := filepath.Join(t.TempDir(), "legacy.sqlite3")
	createLegacyDB(t, source, false)

	dest := openDest(t)

	// Pre-existing row that a reset must remove.
	_, err := dest.Exec("INSERT INTO persone (nome, cognome) VALUES ('to-delete', 'to-delete')")
	require.NoError(t, err)

	res, err := Run(context.Background(), dest, Options{
		Source:        source,
		ConsorzioName: "Chiamogna",
	}, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Persone)
	assert.Equal(t, 1, res.Consorzi)
	assert.Equal(t, 2, res.Rami)
	assert.Equal(t, 2, res.Giri)
	assert.Equal(t, 3, res.Turni)
	assert.Equal(t, 4, res.Proprietari)
	assert.Equal(t, 0, res.TurniWithoutProprietario)
	assert.Equal(t, 0, res.DurataMismatches)

	assert.Equal(t, 1, countRows(t, dest, "consorzi"))
	assert.Equal(t, 3, countRows(t, dest, "persone"))
	assert.Equal(t, 2, countRows(t, dest, "rami"))
	assert.Equal(t, 2, countRows(t, dest, "giri"))
	assert.Equal(t, 3, countRows(t, dest, "turni"))
	assert.Equal(t, 4, countRows(t, dest, "turno_proprietari"))

	var nome string
	require.NoError(t, dest.QueryRow("SELECT nome FROM consorzi").Scan(&nome))
	assert.Equal(t, "Chiamogna", nome)

	var leftovers int
	require.NoError(t, dest.QueryRow(
		"SELECT COUNT(*) FROM persone WHERE cognome = 'to-delete' OR nome <> '-'").Scan(&leftovers))
	assert.Zero(t, leftovers)

	// Turno 10 has two owners of 1h and 2h, so its durata is their sum.
	var durata int64
	require.NoError(t, dest.QueryRow(
		"SELECT durata_s FROM turni WHERE ordine = 30").Scan(&durata))
	assert.Equal(t, int64(3*3600), durata)
}

func TestRun_RemapsDuplicateOrdine(t *testing.T) {
	source := filepath.Join(t.TempDir(), "legacy.sqlite3")
	createLegacyDB(t, source, true)

	dest := openDest(t)

	res, err := Run(context.Background(), dest, Options{
		Source:        source,
		ConsorzioName: "Chiamogna",
	}, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, 1, res.RemappedOrdini)
	require.Len(t, res.RemappedExamples, 1)
	assert.Contains(t, res.RemappedExamples[0], "60->61")

	rows, err := dest.Query(`
		SELECT t.ordine FROM turni t
		JOIN giri g ON g.id = t.giro_id
		JOIN rami r ON r.id = g.ramo_id
		WHERE r.nome = 'BOSCHETTO' AND g.nome = 'Giro A'
		ORDER BY t.ordine`)
	require.NoError(t, err)
	defer rows.Close()

	var ordini []int
	for rows.Next() {
		var o int
		require.NoError(t, rows.Scan(&o))
		ordini = append(ordini, o)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int{30, 60, 61}, ordini)
}

func TestRun_MissingSourceFails(t *testing.T) {
	dest := openDest(t)

	_, err := Run(context.Background(), dest, Options{
		Source:        "/tmp/definitely-missing-file.sqlite3",
		ConsorzioName: "Chiamogna",
	}, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source database not found")
}

func TestRun_NoResetKeepsExistingData(t *testing.T) {
	source := filepath.Join(t.TempDir(), "legacy.sqlite3")
	createLegacyDB(t, source, false)

	dest := openDest(t)
	_, err := dest.Exec("INSERT INTO persone (nome, cognome) VALUES ('Carla', 'Neri')")
	require.NoError(t, err)

	res, err := Run(context.Background(), dest, Options{
		Source:        source,
		ConsorzioName: "Chiamogna",
		NoReset:       true,
	}, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Persone)
	assert.Equal(t, 4, countRows(t, dest, "persone"))
}

func TestRun_EmptyConsorzioNameFails(t *testing.T) {
	dest := openDest(t)

	_, err := Run(context.Background(), dest, Options{
		Source:        "/tmp/irrelevant.sqlite3",
		ConsorzioName: "   ",
	}, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consorzio name")
}
