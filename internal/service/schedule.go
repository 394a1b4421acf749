package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"mizuchi/internal/cache"
	"mizuchi/internal/models"
	"mizuchi/internal/repository"
)

var (
	errDurataRequired = errors.New("durata must not be negative")
	errOrdineRequired = errors.New("ordine must be greater than zero")
	ErrRamoNotFound   = errors.New("ramo not found")
	ErrTurnoNotFound  = errors.New("turno not found")
)

// ScheduleService manages turns and computes the derived branch rotation.
type ScheduleService struct {
	turni repository.TurnoRepo
	rami  repository.RamoRepo
	giri  repository.GiroRepo
	cache *cache.Cache
}

func NewScheduleService(turni repository.TurnoRepo, rami repository.RamoRepo, giri repository.GiroRepo, c *cache.Cache) *ScheduleService {
	return &ScheduleService{turni: turni, rami: rami, giri: giri, cache: c}
}

var _ Schedule = (*ScheduleService)(nil)

func (s *ScheduleService) CreateTurno(ctx context.Context, t models.Turno) (int64, error) {
	if err := validateTurno(t); err != nil {
		return 0, err
	}
	id, err := s.turni.Create(ctx, t)
	if err != nil {
		return 0, err
	}
	s.invalidateForGiro(ctx, t.GiroID)
	return id, nil
}

func (s *ScheduleService) UpdateTurno(ctx context.Context, t models.Turno) error {
	if err := validateTurno(t); err != nil {
		return err
	}
	if err := s.turni.Update(ctx, t); err != nil {
		return err
	}
	s.invalidateForGiro(ctx, t.GiroID)
	return nil
}

func (s *ScheduleService) DeleteTurno(ctx context.Context, id int64) error {
	t, err := s.turni.Get(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTurnoNotFound
	}
	if err := s.turni.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateForGiro(ctx, t.GiroID)
	return nil
}

func (s *ScheduleService) GetTurno(ctx context.Context, id int64) (*models.Turno, error) {
	return s.turni.Get(ctx, id)
}

// ListTurni returns turns ordered by ordine; giroID of zero lists all turns
// ordered by (giro, ordine).
func (s *ScheduleService) ListTurni(ctx context.Context, giroID int64) ([]models.Turno, error) {
	if giroID == 0 {
		return s.turni.ListAll(ctx)
	}
	return s.turni.ListByGiro(ctx, giroID)
}

// SetProprietari replaces a turn's owner set. The turn's durata becomes the
// sum of the owners' tempo.
func (s *ScheduleService) SetProprietari(ctx context.Context, turnoID int64, owners []models.Proprietario) error {
	t, err := s.turni.Get(ctx, turnoID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTurnoNotFound
	}
	if err := s.turni.ReplaceProprietari(ctx, turnoID, owners); err != nil {
		return err
	}
	s.invalidateForGiro(ctx, t.GiroID)
	return nil
}

// RamoSchedule computes the rotation of one branch: starting from the
// branch's abstract start, giri are walked by ordine and their turni by
// ordine, each turn occupying [cursor, cursor+durata). Results are cached
// when a cache is configured.
func (s *ScheduleService) RamoSchedule(ctx context.Context, ramoID int64) ([]models.ScheduleSlot, error) {
	var cached []models.ScheduleSlot
	if s.cache.GetJSON(ctx, cache.ScheduleKey(ramoID), &cached) {
		return cached, nil
	}

	ramo, err := s.rami.Get(ctx, ramoID)
	if err != nil {
		return nil, err
	}
	if ramo == nil {
		return nil, ErrRamoNotFound
	}

	giri, err := s.giri.List(ctx, ramoID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(giri, func(i, j int) bool { return giri[i].Ordine < giri[j].Ordine })

	cursor := ramo.InizioAstratto
	slots := make([]models.ScheduleSlot, 0, 64)
	for _, g := range giri {
		turni, err := s.turni.ListByGiro(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("load turni for giro %d: %w", g.ID, err)
		}
		for _, t := range turni {
			end := cursor.Add(t.Durata.Duration)
			slots = append(slots, models.ScheduleSlot{
				TurnoID:      t.ID,
				Giro:         g.Nome,
				GiroOrdine:   g.Ordine,
				Ordine:       t.Ordine,
				Utilizzatore: t.Utilizzatore,
				Start:        cursor,
				End:          end,
				Durata:       t.Durata,
			})
			cursor = end
		}
	}

	s.cache.SetJSON(ctx, cache.ScheduleKey(ramoID), slots)
	return slots, nil
}

func (s *ScheduleService) invalidateForGiro(ctx context.Context, giroID int64) {
	ramoID, err := s.turni.RamoIDForGiro(ctx, giroID)
	if err != nil {
		return
	}
	s.cache.Invalidate(ctx, cache.ScheduleKey(ramoID))
}

func validateTurno(t models.Turno) error {
	if t.Ordine <= 0 {
		return errOrdineRequired
	}
	if t.Durata.Duration < 0 {
		return errDurataRequired
	}
	return nil
}
