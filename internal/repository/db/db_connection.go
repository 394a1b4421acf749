package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// Open opens/creates a SQLite DB file, applies pragmas and ensures the
// schema exists.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings: SQLite is not great with many writers.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := EnsureSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached.
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return conn, nil
}

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

const schemaPersone = `
CREATE TABLE IF NOT EXISTS persone (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nome TEXT NOT NULL,
    cognome TEXT NOT NULL,
    telefono TEXT,
    email TEXT,
    indirizzo TEXT
);
`

const schemaConsorzi = `
CREATE TABLE IF NOT EXISTS consorzi (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nome TEXT NOT NULL,
    descrizione TEXT
);
`

const schemaRami = `
CREATE TABLE IF NOT EXISTS rami (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nome TEXT NOT NULL,
    descrizione TEXT,
    consorzio_id INTEGER NOT NULL REFERENCES consorzi(id) ON DELETE CASCADE,
    inizio_astratto TIMESTAMP NOT NULL
);
`

const schemaGiri = `
CREATE TABLE IF NOT EXISTS giri (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nome TEXT NOT NULL,
    ordine INTEGER NOT NULL,
    descrizione TEXT,
    ramo_id INTEGER NOT NULL REFERENCES rami(id) ON DELETE CASCADE
);
`

const schemaTurni = `
CREATE TABLE IF NOT EXISTS turni (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    utilizzatore_id INTEGER NOT NULL REFERENCES persone(id) ON DELETE CASCADE,
    ordine INTEGER NOT NULL,
    durata_s INTEGER NOT NULL DEFAULT 0,
    giro_id INTEGER NOT NULL REFERENCES giri(id) ON DELETE CASCADE,
    UNIQUE (giro_id, ordine)
);
`

const schemaTurnoProprietari = `
CREATE TABLE IF NOT EXISTS turno_proprietari (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    turno_id INTEGER NOT NULL REFERENCES turni(id) ON DELETE CASCADE,
    proprietario_id INTEGER NOT NULL REFERENCES persone(id) ON DELETE CASCADE,
    tempo_s INTEGER NOT NULL DEFAULT 0,
    UNIQUE (turno_id, proprietario_id)
);
`

const schemaAuditLog = `
CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    action TEXT NOT NULL,
    entity TEXT NOT NULL,
    entity_id INTEGER,
    detail TEXT,
    meta TEXT
);
`

// EnsureSchema applies the schema statements in a single transaction. This
// doubles as the migrate command's work.
func EnsureSchema(conn *sql.DB) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction.
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaUsers,
		schemaPersone,
		schemaConsorzi,
		schemaRami,
		schemaGiri,
		schemaTurni,
		schemaTurnoProprietari,
		schemaAuditLog,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
