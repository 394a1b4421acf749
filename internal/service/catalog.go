package service

import (
	"context"
	"errors"
	"strings"

	"mizuchi/internal/cache"
	"mizuchi/internal/models"
	"mizuchi/internal/repository"
)

var errNameRequired = errors.New("nome is required")

// CatalogService manages the consorzio -> ramo -> giro hierarchy. Mutations
// touching a branch drop that branch's cached schedule.
type CatalogService struct {
	consorzi repository.ConsorzioRepo
	rami     repository.RamoRepo
	giri     repository.GiroRepo
	cache    *cache.Cache
}

func NewCatalogService(consorzi repository.ConsorzioRepo, rami repository.RamoRepo, giri repository.GiroRepo, c *cache.Cache) *CatalogService {
	return &CatalogService{consorzi: consorzi, rami: rami, giri: giri, cache: c}
}

var _ Catalog = (*CatalogService)(nil)

func (s *CatalogService) CreateConsorzio(ctx context.Context, c models.Consorzio) (int64, error) {
	if strings.TrimSpace(c.Nome) == "" {
		return 0, errNameRequired
	}
	return s.consorzi.Create(ctx, c)
}

func (s *CatalogService) UpdateConsorzio(ctx context.Context, c models.Consorzio) error {
	if strings.TrimSpace(c.Nome) == "" {
		return errNameRequired
	}
	return s.consorzi.Update(ctx, c)
}

func (s *CatalogService) DeleteConsorzio(ctx context.Context, id int64) error {
	// Cascade removes rami beneath; their cached schedules expire via TTL.
	return s.consorzi.Delete(ctx, id)
}

func (s *CatalogService) GetConsorzio(ctx context.Context, id int64) (*models.Consorzio, error) {
	return s.consorzi.Get(ctx, id)
}

func (s *CatalogService) ListConsorzi(ctx context.Context) ([]models.Consorzio, error) {
	return s.consorzi.List(ctx)
}

func (s *CatalogService) CreateRamo(ctx context.Context, r models.Ramo) (int64, error) {
	if strings.TrimSpace(r.Nome) == "" {
		return 0, errNameRequired
	}
	if r.InizioAstratto.IsZero() {
		return 0, errors.New("inizio_astratto is required")
	}
	return s.rami.Create(ctx, r)
}

func (s *CatalogService) UpdateRamo(ctx context.Context, r models.Ramo) error {
	if strings.TrimSpace(r.Nome) == "" {
		return errNameRequired
	}
	if err := s.rami.Update(ctx, r); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.ScheduleKey(r.ID))
	return nil
}

func (s *CatalogService) DeleteRamo(ctx context.Context, id int64) error {
	if err := s.rami.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.ScheduleKey(id))
	return nil
}

func (s *CatalogService) GetRamo(ctx context.Context, id int64) (*models.Ramo, error) {
	return s.rami.Get(ctx, id)
}

func (s *CatalogService) ListRami(ctx context.Context, consorzioID int64) ([]models.Ramo, error) {
	return s.rami.List(ctx, consorzioID)
}

func (s *CatalogService) CreateGiro(ctx context.Context, g models.Giro) (int64, error) {
	if strings.TrimSpace(g.Nome) == "" {
		return 0, errNameRequired
	}
	id, err := s.giri.Create(ctx, g)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, cache.ScheduleKey(g.RamoID))
	return id, nil
}

func (s *CatalogService) UpdateGiro(ctx context.Context, g models.Giro) error {
	if strings.TrimSpace(g.Nome) == "" {
		return errNameRequired
	}
	if err := s.giri.Update(ctx, g); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.ScheduleKey(g.RamoID))
	return nil
}

func (s *CatalogService) DeleteGiro(ctx context.Context, id int64) error {
	g, err := s.giri.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.giri.Delete(ctx, id); err != nil {
		return err
	}
	if g != nil {
		s.cache.Invalidate(ctx, cache.ScheduleKey(g.RamoID))
	}
	return nil
}

func (s *CatalogService) GetGiro(ctx context.Context, id int64) (*models.Giro, error) {
	return s.giri.Get(ctx, id)
}

func (s *CatalogService) ListGiri(ctx context.Context, ramoID int64) ([]models.Giro, error) {
	return s.giri.List(ctx, ramoID)
}
