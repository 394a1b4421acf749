package repository

import (
	"context"
	"database/sql"
	"time"

	"mizuchi/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type PersonaRepo interface {
	Create(ctx context.Context, p models.Persona) (int64, error)
	Update(ctx context.Context, p models.Persona) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Persona, error)
	List(ctx context.Context, query string) ([]models.Persona, error)
}

type ConsorzioRepo interface {
	Create(ctx context.Context, c models.Consorzio) (int64, error)
	Update(ctx context.Context, c models.Consorzio) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Consorzio, error)
	List(ctx context.Context) ([]models.Consorzio, error)
}

type RamoRepo interface {
	Create(ctx context.Context, r models.Ramo) (int64, error)
	Update(ctx context.Context, r models.Ramo) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Ramo, error)
	List(ctx context.Context, consorzioID int64) ([]models.Ramo, error)
}

type GiroRepo interface {
	Create(ctx context.Context, g models.Giro) (int64, error)
	Update(ctx context.Context, g models.Giro) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Giro, error)
	List(ctx context.Context, ramoID int64) ([]models.Giro, error)
}

type TurnoRepo interface {
	Create(ctx context.Context, t models.Turno) (int64, error)
	Update(ctx context.Context, t models.Turno) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Turno, error)
	ListByGiro(ctx context.Context, giroID int64) ([]models.Turno, error)
	ListAll(ctx context.Context) ([]models.Turno, error)
	ReplaceProprietari(ctx context.Context, turnoID int64, owners []models.Proprietario) error
	RamoIDForGiro(ctx context.Context, giroID int64) (int64, error)
}

type AuditRepo interface {
	Append(ctx context.Context, e models.AuditEntry) error
	List(ctx context.Context, from, to time.Time, action string) ([]models.AuditEntry, error)
	ListSince(ctx context.Context, since time.Time) ([]models.AuditEntry, error)
}

type Repository struct {
	Auth     Authorization
	Persone  PersonaRepo
	Consorzi ConsorzioRepo
	Rami     RamoRepo
	Giri     GiroRepo
	Turni    TurnoRepo
	Audit    AuditRepo
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		Auth:     NewUserRepository(conn),
		Persone:  NewPersonaSQLite(conn),
		Consorzi: NewConsorzioSQLite(conn),
		Rami:     NewRamoSQLite(conn),
		Giri:     NewGiroSQLite(conn),
		Turni:    NewTurnoSQLite(conn),
		Audit:    NewAuditSQLite(conn),
	}
}
