package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mizuchi/internal/models"
)

type AuditSQLite struct {
	db *sql.DB
}

func NewAuditSQLite(db *sql.DB) *AuditSQLite { return &AuditSQLite{db: db} }

var _ AuditRepo = (*AuditSQLite)(nil)

const selectAuditSQL = `SELECT id, occurred_at, action, entity, entity_id, detail, meta FROM audit_log`

// Append inserts a new audit entry. If EntryID or OccurredAt are empty,
// they are set here.
func (r *AuditSQLite) Append(ctx context.Context, e models.AuditEntry) error {
	if e.EntryID == "" {
		e.EntryID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, occurred_at, action, entity, entity_id, detail, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.EntryID,
		e.OccurredAt,
		strings.ToUpper(strings.TrimSpace(e.Action)),
		e.Entity,
		e.EntityID,
		e.Detail,
		metaPtr,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns entries filtered by [from, to] (inclusive) and/or action,
// ordered ascending by time.
func (r *AuditSQLite) List(ctx context.Context, from, to time.Time, action string) ([]models.AuditEntry, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if action = strings.ToUpper(strings.TrimSpace(action)); action != "" {
		conds = append(conds, "action = ?")
		args = append(args, action)
	}

	q := selectAuditSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	return r.query(ctx, q, args...)
}

// ListSince returns entries strictly newer than since, ascending. Used by
// the live audit feed.
func (r *AuditSQLite) ListSince(ctx context.Context, since time.Time) ([]models.AuditEntry, error) {
	return r.query(ctx, selectAuditSQL+" WHERE occurred_at > ? ORDER BY occurred_at ASC", since.UTC())
}

func (r *AuditSQLite) query(ctx context.Context, q string, args ...any) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	out := make([]models.AuditEntry, 0, 64)
	for rows.Next() {
		var e models.AuditEntry
		var entityID sql.NullInt64
		var detail, metaStr sql.NullString
		if err := rows.Scan(&e.EntryID, &e.OccurredAt, &e.Action, &e.Entity, &entityID, &detail, &metaStr); err != nil {
			return nil, err
		}
		e.OccurredAt = e.OccurredAt.UTC()
		e.EntityID = entityID.Int64
		e.Detail = detail.String

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				e.Metadata = v
			} else {
				e.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
