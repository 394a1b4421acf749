package service

import (
	"context"
	"time"

	"mizuchi/internal/models"
	"mizuchi/internal/repository"
)

// Hand-rolled stubs over the repository interfaces. Only the methods a test
// exercises need to be assigned.

type stubTurnoRepo struct {
	createFn      func(ctx context.Context, t models.Turno) (int64, error)
	updateFn      func(ctx context.Context, t models.Turno) error
	deleteFn      func(ctx context.Context, id int64) error
	getFn         func(ctx context.Context, id int64) (*models.Turno, error)
	listByGiroFn  func(ctx context.Context, giroID int64) ([]models.Turno, error)
	listAllFn     func(ctx context.Context) ([]models.Turno, error)
	replaceFn     func(ctx context.Context, turnoID int64, owners []models.Proprietario) error
	ramoForGiroFn func(ctx context.Context, giroID int64) (int64, error)
}

var _ repository.TurnoRepo = (*stubTurnoRepo)(nil)

func (s *stubTurnoRepo) Create(ctx context.Context, t models.Turno) (int64, error) {
	return s.createFn(ctx, t)
}
func (s *stubTurnoRepo) Update(ctx context.Context, t models.Turno) error {
	return s.updateFn(ctx, t)
}
func (s *stubTurnoRepo) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}
func (s *stubTurnoRepo) Get(ctx context.Context, id int64) (*models.Turno, error) {
	return s.getFn(ctx, id)
}
func (s *stubTurnoRepo) ListByGiro(ctx context.Context, giroID int64) ([]models.Turno, error) {
	return s.listByGiroFn(ctx, giroID)
}
func (s *stubTurnoRepo) ListAll(ctx context.Context) ([]models.Turno, error) {
	return s.listAllFn(ctx)
}
func (s *stubTurnoRepo) ReplaceProprietari(ctx context.Context, turnoID int64, owners []models.Proprietario) error {
	return s.replaceFn(ctx, turnoID, owners)
}
func (s *stubTurnoRepo) RamoIDForGiro(ctx context.Context, giroID int64) (int64, error) {
	if s.ramoForGiroFn == nil {
		return 0, repository.ErrNotFound
	}
	return s.ramoForGiroFn(ctx, giroID)
}

type stubRamoRepo struct {
	getFn  func(ctx context.Context, id int64) (*models.Ramo, error)
	listFn func(ctx context.Context, consorzioID int64) ([]models.Ramo, error)
}

var _ repository.RamoRepo = (*stubRamoRepo)(nil)

func (s *stubRamoRepo) Create(ctx context.Context, r models.Ramo) (int64, error) { return 0, nil }
func (s *stubRamoRepo) Update(ctx context.Context, r models.Ramo) error          { return nil }
func (s *stubRamoRepo) Delete(ctx context.Context, id int64) error               { return nil }
func (s *stubRamoRepo) Get(ctx context.Context, id int64) (*models.Ramo, error) {
	return s.getFn(ctx, id)
}
func (s *stubRamoRepo) List(ctx context.Context, consorzioID int64) ([]models.Ramo, error) {
	return s.listFn(ctx, consorzioID)
}

type stubGiroRepo struct {
	listFn func(ctx context.Context, ramoID int64) ([]models.Giro, error)
}

var _ repository.GiroRepo = (*stubGiroRepo)(nil)

func (s *stubGiroRepo) Create(ctx context.Context, g models.Giro) (int64, error) { return 0, nil }
func (s *stubGiroRepo) Update(ctx context.Context, g models.Giro) error          { return nil }
func (s *stubGiroRepo) Delete(ctx context.Context, id int64) error               { return nil }
func (s *stubGiroRepo) Get(ctx context.Context, id int64) (*models.Giro, error)  { return nil, nil }
func (s *stubGiroRepo) List(ctx context.Context, ramoID int64) ([]models.Giro, error) {
	return s.listFn(ctx, ramoID)
}

type stubConsorzioRepo struct {
	listFn func(ctx context.Context) ([]models.Consorzio, error)
}

var _ repository.ConsorzioRepo = (*stubConsorzioRepo)(nil)

func (s *stubConsorzioRepo) Create(ctx context.Context, c models.Consorzio) (int64, error) {
	return 0, nil
}
func (s *stubConsorzioRepo) Update(ctx context.Context, c models.Consorzio) error { return nil }
func (s *stubConsorzioRepo) Delete(ctx context.Context, id int64) error           { return nil }
func (s *stubConsorzioRepo) Get(ctx context.Context, id int64) (*models.Consorzio, error) {
	return nil, nil
}
func (s *stubConsorzioRepo) List(ctx context.Context) ([]models.Consorzio, error) {
	return s.listFn(ctx)
}

type stubAuthRepo struct {
	users  map[string]*models.User
	nextID int
}

var _ repository.Authorization = (*stubAuthRepo)(nil)

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*models.User), nextID: 1}
}

func (s *stubAuthRepo) Create(username, hash string) (int, error) {
	id := s.nextID
	s.nextID++
	s.users[username] = &models.User{ID: id, Username: username, PasswordHash: hash}
	return id, nil
}

func (s *stubAuthRepo) GetByUsername(username string) (*models.User, error) {
	return s.users[username], nil
}

type stubAuditRepo struct {
	entries []models.AuditEntry
	listFn  func(ctx context.Context, from, to time.Time, action string) ([]models.AuditEntry, error)
}

var _ repository.AuditRepo = (*stubAuditRepo)(nil)

func (s *stubAuditRepo) Append(ctx context.Context, e models.AuditEntry) error {
	s.entries = append(s.entries, e)
	return nil
}
func (s *stubAuditRepo) List(ctx context.Context, from, to time.Time, action string) ([]models.AuditEntry, error) {
	if s.listFn != nil {
		return s.listFn(ctx, from, to, action)
	}
	return s.entries, nil
}
func (s *stubAuditRepo) ListSince(ctx context.Context, since time.Time) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	for _, e := range s.entries {
		if e.OccurredAt.After(since) {
			out = append(out, e)
		}
	}
	return out, nil
}
