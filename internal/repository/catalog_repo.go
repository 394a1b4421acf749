package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mizuchi/internal/models"
)

// ConsorzioSQLite, RamoSQLite and GiroSQLite persist the catalog hierarchy:
// consorzio -> ramo -> giro. Turni live in turno_repo.go.

type ConsorzioSQLite struct {
	db *sql.DB
}

func NewConsorzioSQLite(db *sql.DB) *ConsorzioSQLite { return &ConsorzioSQLite{db: db} }

var _ ConsorzioRepo = (*ConsorzioSQLite)(nil)

func (r *ConsorzioSQLite) Create(ctx context.Context, c models.Consorzio) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO consorzi (nome, descrizione) VALUES (?, ?)`,
		c.Nome, nullable(c.Descrizione))
	if err != nil {
		return 0, fmt.Errorf("insert consorzio: %w", err)
	}
	return res.LastInsertId()
}

func (r *ConsorzioSQLite) Update(ctx context.Context, c models.Consorzio) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE consorzi SET nome=?, descrizione=? WHERE id=?`,
		c.Nome, nullable(c.Descrizione), c.ID)
	if err != nil {
		return fmt.Errorf("update consorzio %d: %w", c.ID, err)
	}
	return requireRow(res)
}

func (r *ConsorzioSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM consorzi WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete consorzio %d: %w", id, err)
	}
	return requireRow(res)
}

// Get includes the branch count, which list views display next to the name.
func (r *ConsorzioSQLite) Get(ctx context.Context, id int64) (*models.Consorzio, error) {
	var c models.Consorzio
	var descrizione sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.nome, c.descrizione,
			(SELECT COUNT(*) FROM rami r WHERE r.consorzio_id = c.id)
		FROM consorzi c WHERE c.id=?
	`, id).Scan(&c.ID, &c.Nome, &descrizione, &c.NumRami)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select consorzio %d: %w", id, err)
	}
	c.Descrizione = descrizione.String
	return &c, nil
}

func (r *ConsorzioSQLite) List(ctx context.Context) ([]models.Consorzio, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.nome, c.descrizione,
			(SELECT COUNT(*) FROM rami r WHERE r.consorzio_id = c.id)
		FROM consorzi c ORDER BY c.nome
	`)
	if err != nil {
		return nil, fmt.Errorf("list consorzi: %w", err)
	}
	defer rows.Close()

	var out []models.Consorzio
	for rows.Next() {
		var c models.Consorzio
		var descrizione sql.NullString
		if err := rows.Scan(&c.ID, &c.Nome, &descrizione, &c.NumRami); err != nil {
			return nil, err
		}
		c.Descrizione = descrizione.String
		out = append(out, c)
	}
	return out, rows.Err()
}

type RamoSQLite struct {
	db *sql.DB
}

func NewRamoSQLite(db *sql.DB) *RamoSQLite { return &RamoSQLite{db: db} }

var _ RamoRepo = (*RamoSQLite)(nil)

func (r *RamoSQLite) Create(ctx context.Context, m models.Ramo) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO rami (nome, descrizione, consorzio_id, inizio_astratto)
		VALUES (?, ?, ?, ?)
	`, m.Nome, nullable(m.Descrizione), m.ConsorzioID, models.NormalizeInizio(m.InizioAstratto))
	if err != nil {
		return 0, fmt.Errorf("insert ramo: %w", err)
	}
	return res.LastInsertId()
}

func (r *RamoSQLite) Update(ctx context.Context, m models.Ramo) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rami SET nome=?, descrizione=?, consorzio_id=?, inizio_astratto=?
		WHERE id=?
	`, m.Nome, nullable(m.Descrizione), m.ConsorzioID, models.NormalizeInizio(m.InizioAstratto), m.ID)
	if err != nil {
		return fmt.Errorf("update ramo %d: %w", m.ID, err)
	}
	return requireRow(res)
}

func (r *RamoSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rami WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete ramo %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *RamoSQLite) Get(ctx context.Context, id int64) (*models.Ramo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, nome, descrizione, consorzio_id, inizio_astratto
		FROM rami WHERE id=?
	`, id)
	m, err := scanRamo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select ramo %d: %w", id, err)
	}
	return m, nil
}

// List returns branches ordered by (consorzio, nome); consorzioID narrows to
// one consortium when non-zero.
func (r *RamoSQLite) List(ctx context.Context, consorzioID int64) ([]models.Ramo, error) {
	q := `
		SELECT r.id, r.nome, r.descrizione, r.consorzio_id, r.inizio_astratto
		FROM rami r JOIN consorzi c ON c.id = r.consorzio_id
	`
	var args []any
	if consorzioID != 0 {
		q += ` WHERE r.consorzio_id = ?`
		args = append(args, consorzioID)
	}
	q += ` ORDER BY c.nome, r.nome`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list rami: %w", err)
	}
	defer rows.Close()

	var out []models.Ramo
	for rows.Next() {
		m, err := scanRamo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func scanRamo(row rowScanner) (*models.Ramo, error) {
	var m models.Ramo
	var descrizione sql.NullString
	var inizio time.Time
	if err := row.Scan(&m.ID, &m.Nome, &descrizione, &m.ConsorzioID, &inizio); err != nil {
		return nil, err
	}
	m.Descrizione = descrizione.String
	m.InizioAstratto = inizio.UTC()
	return &m, nil
}

type GiroSQLite struct {
	db *sql.DB
}

func NewGiroSQLite(db *sql.DB) *GiroSQLite { return &GiroSQLite{db: db} }

var _ GiroRepo = (*GiroSQLite)(nil)

func (r *GiroSQLite) Create(ctx context.Context, g models.Giro) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO giri (nome, ordine, descrizione, ramo_id)
		VALUES (?, ?, ?, ?)
	`, g.Nome, g.Ordine, nullable(g.Descrizione), g.RamoID)
	if err != nil {
		return 0, fmt.Errorf("insert giro: %w", err)
	}
	return res.LastInsertId()
}

func (r *GiroSQLite) Update(ctx context.Context, g models.Giro) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE giri SET nome=?, ordine=?, descrizione=?, ramo_id=? WHERE id=?
	`, g.Nome, g.Ordine, nullable(g.Descrizione), g.RamoID, g.ID)
	if err != nil {
		return fmt.Errorf("update giro %d: %w", g.ID, err)
	}
	return requireRow(res)
}

func (r *GiroSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM giri WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete giro %d: %w", id, err)
	}
	return requireRow(res)
}

// Get includes the turn count and the summed duration of all turns, the two
// computed columns the round views display.
func (r *GiroSQLite) Get(ctx context.Context, id int64) (*models.Giro, error) {
	var g models.Giro
	var descrizione sql.NullString
	var totalSeconds sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT g.id, g.nome, g.ordine, g.descrizione, g.ramo_id,
			(SELECT COUNT(*) FROM turni t WHERE t.giro_id = g.id),
			(SELECT SUM(t.durata_s) FROM turni t WHERE t.giro_id = g.id)
		FROM giri g WHERE g.id=?
	`, id).Scan(&g.ID, &g.Nome, &g.Ordine, &descrizione, &g.RamoID, &g.NumTurni, &totalSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select giro %d: %w", id, err)
	}
	g.Descrizione = descrizione.String
	if totalSeconds.Valid {
		total := models.Durata{Duration: time.Duration(totalSeconds.Int64) * time.Second}
		g.DurataTotale = &total
	}
	return &g, nil
}

// List returns rounds ordered by ordine; ramoID narrows to one branch when
// non-zero.
func (r *GiroSQLite) List(ctx context.Context, ramoID int64) ([]models.Giro, error) {
	q := `SELECT id, nome, ordine, descrizione, ramo_id FROM giri`
	var args []any
	if ramoID != 0 {
		q += ` WHERE ramo_id = ?`
		args = append(args, ramoID)
	}
	q += ` ORDER BY ramo_id, ordine, nome`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list giri: %w", err)
	}
	defer rows.Close()

	var out []models.Giro
	for rows.Next() {
		var g models.Giro
		var descrizione sql.NullString
		if err := rows.Scan(&g.ID, &g.Nome, &g.Ordine, &descrizione, &g.RamoID); err != nil {
			return nil, err
		}
		g.Descrizione = descrizione.String
		out = append(out, g)
	}
	return out, rows.Err()
}
