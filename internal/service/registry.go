package service

import (
	"context"
	"errors"
	"strings"

	"mizuchi/internal/models"
	"mizuchi/internal/repository"
)

var errNomeRequired = errors.New("nome and cognome are required")

// RegistryService manages the people directory.
type RegistryService struct {
	persone repository.PersonaRepo
}

func NewRegistryService(persone repository.PersonaRepo) *RegistryService {
	return &RegistryService{persone: persone}
}

var _ Registry = (*RegistryService)(nil)

func (s *RegistryService) Create(ctx context.Context, p models.Persona) (int64, error) {
	if err := validatePersona(&p); err != nil {
		return 0, err
	}
	return s.persone.Create(ctx, p)
}

func (s *RegistryService) Update(ctx context.Context, p models.Persona) error {
	if err := validatePersona(&p); err != nil {
		return err
	}
	return s.persone.Update(ctx, p)
}

func (s *RegistryService) Delete(ctx context.Context, id int64) error {
	return s.persone.Delete(ctx, id)
}

func (s *RegistryService) Get(ctx context.Context, id int64) (*models.Persona, error) {
	return s.persone.Get(ctx, id)
}

func (s *RegistryService) List(ctx context.Context, query string) ([]models.Persona, error) {
	return s.persone.List(ctx, strings.TrimSpace(query))
}

func validatePersona(p *models.Persona) error {
	p.Nome = strings.TrimSpace(p.Nome)
	p.Cognome = strings.TrimSpace(p.Cognome)
	if p.Nome == "" || p.Cognome == "" {
		return errNomeRequired
	}
	return nil
}
