package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mizuchi/internal/models"
)

type PersonaSQLite struct {
	db *sql.DB
}

func NewPersonaSQLite(db *sql.DB) *PersonaSQLite {
	return &PersonaSQLite{db: db}
}

var _ PersonaRepo = (*PersonaSQLite)(nil)

const (
	insertPersonaSQL = `
		INSERT INTO persone (nome, cognome, telefono, email, indirizzo)
		VALUES (?, ?, ?, ?, ?)
	`
	updatePersonaSQL = `
		UPDATE persone SET nome=?, cognome=?, telefono=?, email=?, indirizzo=?
		WHERE id=?
	`
	deletePersonaSQL = `DELETE FROM persone WHERE id=?`
	selectPersonaSQL = `
		SELECT id, nome, cognome, telefono, email, indirizzo
		FROM persone WHERE id=?
	`
	listPersoneSQL = `
		SELECT id, nome, cognome, telefono, email, indirizzo
		FROM persone
	`
	// Listing follows the registry convention: surname first.
	listPersoneOrder = ` ORDER BY cognome, nome`
)

// ErrNotFound is returned when an entity referenced by id does not exist.
var ErrNotFound = errors.New("not found")

func (r *PersonaSQLite) Create(ctx context.Context, p models.Persona) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertPersonaSQL,
		p.Nome, p.Cognome, nullable(p.Telefono), nullable(p.Email), nullable(p.Indirizzo))
	if err != nil {
		return 0, fmt.Errorf("insert persona: %w", err)
	}
	return res.LastInsertId()
}

func (r *PersonaSQLite) Update(ctx context.Context, p models.Persona) error {
	res, err := r.db.ExecContext(ctx, updatePersonaSQL,
		p.Nome, p.Cognome, nullable(p.Telefono), nullable(p.Email), nullable(p.Indirizzo), p.ID)
	if err != nil {
		return fmt.Errorf("update persona %d: %w", p.ID, err)
	}
	return requireRow(res)
}

func (r *PersonaSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deletePersonaSQL, id)
	if err != nil {
		return fmt.Errorf("delete persona %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *PersonaSQLite) Get(ctx context.Context, id int64) (*models.Persona, error) {
	row := r.db.QueryRowContext(ctx, selectPersonaSQL, id)
	p, err := scanPersona(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select persona %d: %w", id, err)
	}
	return p, nil
}

// List returns people ordered by (cognome, nome). A non-empty query narrows
// the result with a case-insensitive match over nome, cognome and email.
func (r *PersonaSQLite) List(ctx context.Context, query string) ([]models.Persona, error) {
	q := listPersoneSQL
	var args []any
	if query != "" {
		q += ` WHERE nome LIKE ? COLLATE NOCASE
			OR cognome LIKE ? COLLATE NOCASE
			OR email LIKE ? COLLATE NOCASE`
		like := "%" + query + "%"
		args = append(args, like, like, like)
	}
	q += listPersoneOrder

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list persone: %w", err)
	}
	defer rows.Close()

	out := make([]models.Persona, 0, 32)
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPersona(row rowScanner) (*models.Persona, error) {
	var p models.Persona
	var telefono, email, indirizzo sql.NullString
	if err := row.Scan(&p.ID, &p.Nome, &p.Cognome, &telefono, &email, &indirizzo); err != nil {
		return nil, err
	}
	p.Telefono = telefono.String
	p.Email = email.String
	p.Indirizzo = indirizzo.String
	return &p, nil
}

// nullable maps empty strings to NULL so optional columns stay NULL in the DB.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
