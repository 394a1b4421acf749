package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mizuchi/internal/models"
)

type TurnoSQLite struct {
	db *sql.DB
}

func NewTurnoSQLite(db *sql.DB) *TurnoSQLite { return &TurnoSQLite{db: db} }

var _ TurnoRepo = (*TurnoSQLite)(nil)

// ErrOrdineTaken signals a (giro, ordine) uniqueness violation.
var ErrOrdineTaken = errors.New("ordine already taken in this giro")

const selectTurnoBase = `
	SELECT t.id, t.utilizzatore_id, p.nome || ' ' || p.cognome, t.ordine, t.durata_s, t.giro_id
	FROM turni t JOIN persone p ON p.id = t.utilizzatore_id
`

func (r *TurnoSQLite) Create(ctx context.Context, t models.Turno) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO turni (utilizzatore_id, ordine, durata_s, giro_id)
		VALUES (?, ?, ?, ?)
	`, t.UtilizzatoreID, t.Ordine, int64(t.Durata.Seconds()), t.GiroID)
	if err != nil {
		return 0, wrapOrdineErr(err, t.GiroID, t.Ordine)
	}
	return res.LastInsertId()
}

func (r *TurnoSQLite) Update(ctx context.Context, t models.Turno) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE turni SET utilizzatore_id=?, ordine=?, durata_s=?, giro_id=? WHERE id=?
	`, t.UtilizzatoreID, t.Ordine, int64(t.Durata.Seconds()), t.GiroID, t.ID)
	if err != nil {
		return wrapOrdineErr(err, t.GiroID, t.Ordine)
	}
	return requireRow(res)
}

func (r *TurnoSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM turni WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete turno %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *TurnoSQLite) Get(ctx context.Context, id int64) (*models.Turno, error) {
	row := r.db.QueryRowContext(ctx, selectTurnoBase+` WHERE t.id=?`, id)
	t, err := scanTurno(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select turno %d: %w", id, err)
	}
	owners, err := r.listProprietari(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Proprietari = owners
	return t, nil
}

// ListByGiro returns turns of one round ordered by ordine, owners included.
func (r *TurnoSQLite) ListByGiro(ctx context.Context, giroID int64) ([]models.Turno, error) {
	return r.list(ctx, selectTurnoBase+` WHERE t.giro_id=? ORDER BY t.ordine`, giroID)
}

// ListAll returns every turn ordered by (giro, ordine), owners included.
func (r *TurnoSQLite) ListAll(ctx context.Context) ([]models.Turno, error) {
	return r.list(ctx, selectTurnoBase+` ORDER BY t.giro_id, t.ordine`)
}

func (r *TurnoSQLite) list(ctx context.Context, q string, args ...any) ([]models.Turno, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list turni: %w", err)
	}
	defer rows.Close()

	out := make([]models.Turno, 0, 64)
	for rows.Next() {
		t, err := scanTurno(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		owners, err := r.listProprietari(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Proprietari = owners
	}
	return out, nil
}

// ReplaceProprietari swaps the owner set of a turn and recomputes durata as
// the sum of owner tempo, in one transaction.
func (r *TurnoSQLite) ReplaceProprietari(ctx context.Context, turnoID int64, owners []models.Proprietario) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace proprietari: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM turno_proprietari WHERE turno_id=?`, turnoID); err != nil {
		return fmt.Errorf("clear proprietari for turno %d: %w", turnoID, err)
	}

	var total time.Duration
	for _, o := range owners {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO turno_proprietari (turno_id, proprietario_id, tempo_s)
			VALUES (?, ?, ?)
		`, turnoID, o.PersonaID, int64(o.Tempo.Seconds())); err != nil {
			return fmt.Errorf("insert proprietario %d for turno %d: %w", o.PersonaID, turnoID, err)
		}
		total += o.Tempo.Duration
	}

	res, err := tx.ExecContext(ctx, `UPDATE turni SET durata_s=? WHERE id=?`,
		int64(total.Seconds()), turnoID)
	if err != nil {
		return fmt.Errorf("update durata for turno %d: %w", turnoID, err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// RamoIDForGiro resolves the branch a round belongs to (used for cache
// invalidation after turn mutations).
func (r *TurnoSQLite) RamoIDForGiro(ctx context.Context, giroID int64) (int64, error) {
	var ramoID int64
	err := r.db.QueryRowContext(ctx, `SELECT ramo_id FROM giri WHERE id=?`, giroID).Scan(&ramoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("select ramo for giro %d: %w", giroID, err)
	}
	return ramoID, nil
}

func (r *TurnoSQLite) listProprietari(ctx context.Context, turnoID int64) ([]models.Proprietario, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tp.proprietario_id, p.nome, p.cognome, tp.tempo_s
		FROM turno_proprietari tp JOIN persone p ON p.id = tp.proprietario_id
		WHERE tp.turno_id=?
		ORDER BY p.cognome, p.nome
	`, turnoID)
	if err != nil {
		return nil, fmt.Errorf("list proprietari for turno %d: %w", turnoID, err)
	}
	defer rows.Close()

	var out []models.Proprietario
	for rows.Next() {
		var o models.Proprietario
		var tempoSeconds int64
		if err := rows.Scan(&o.PersonaID, &o.Nome, &o.Cognome, &tempoSeconds); err != nil {
			return nil, err
		}
		o.Tempo = models.Durata{Duration: time.Duration(tempoSeconds) * time.Second}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanTurno(row rowScanner) (*models.Turno, error) {
	var t models.Turno
	var durataSeconds int64
	if err := row.Scan(&t.ID, &t.UtilizzatoreID, &t.Utilizzatore, &t.Ordine, &durataSeconds, &t.GiroID); err != nil {
		return nil, err
	}
	t.Durata = models.Durata{Duration: time.Duration(durataSeconds) * time.Second}
	return &t, nil
}

// wrapOrdineErr maps a unique-constraint failure on (giro_id, ordine) to
// ErrOrdineTaken; other errors pass through wrapped.
func wrapOrdineErr(err error, giroID int64, ordine int) error {
	if err == nil {
		return nil
	}
	// modernc.org/sqlite reports constraint violations in the message.
	if msg := err.Error(); strings.Contains(msg, "UNIQUE") && strings.Contains(msg, "turni") {
		return fmt.Errorf("%w: giro %d ordine %d", ErrOrdineTaken, giroID, ordine)
	}
	return fmt.Errorf("write turno: %w", err)
}
