package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mizuchi/internal/models"
	"mizuchi/internal/repository"
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// AuditLogService wraps the append-only action log.
type AuditLogService struct {
	audit repository.AuditRepo
}

func NewAuditLogService(audit repository.AuditRepo) *AuditLogService {
	return &AuditLogService{audit: audit}
}

var _ AuditLog = (*AuditLogService)(nil)

// Record appends an entry, best-effort: audit failures never fail the
// mutation they describe.
func (s *AuditLogService) Record(ctx context.Context, action, entity string, entityID int64, detail string) {
	_ = s.audit.Append(ctx, models.AuditEntry{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	})
}

func (s *AuditLogService) List(ctx context.Context, f AuditFilter) ([]models.AuditEntry, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.audit.List(ctx, from, to, normalizeAction(f.Action))
}

func (s *AuditLogService) Since(ctx context.Context, t time.Time) ([]models.AuditEntry, error) {
	return s.audit.ListSince(ctx, t)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAction trims spaces and uppercases the action filter.
func normalizeAction(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
