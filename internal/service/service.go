package service

import (
	"context"
	"time"

	"mizuchi/internal/cache"
	"mizuchi/internal/models"
	"mizuchi/internal/repository"
)

type Authorization interface {
	CreateUser(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Registry exposes the people directory.
type Registry interface {
	Create(ctx context.Context, p models.Persona) (int64, error)
	Update(ctx context.Context, p models.Persona) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Persona, error)
	List(ctx context.Context, query string) ([]models.Persona, error)
}

// Catalog exposes the consorzio/ramo/giro hierarchy.
type Catalog interface {
	CreateConsorzio(ctx context.Context, c models.Consorzio) (int64, error)
	UpdateConsorzio(ctx context.Context, c models.Consorzio) error
	DeleteConsorzio(ctx context.Context, id int64) error
	GetConsorzio(ctx context.Context, id int64) (*models.Consorzio, error)
	ListConsorzi(ctx context.Context) ([]models.Consorzio, error)

	CreateRamo(ctx context.Context, r models.Ramo) (int64, error)
	UpdateRamo(ctx context.Context, r models.Ramo) error
	DeleteRamo(ctx context.Context, id int64) error
	GetRamo(ctx context.Context, id int64) (*models.Ramo, error)
	ListRami(ctx context.Context, consorzioID int64) ([]models.Ramo, error)

	CreateGiro(ctx context.Context, g models.Giro) (int64, error)
	UpdateGiro(ctx context.Context, g models.Giro) error
	DeleteGiro(ctx context.Context, id int64) error
	GetGiro(ctx context.Context, id int64) (*models.Giro, error)
	ListGiri(ctx context.Context, ramoID int64) ([]models.Giro, error)
}

// Schedule exposes turns and the derived branch rotation.
type Schedule interface {
	CreateTurno(ctx context.Context, t models.Turno) (int64, error)
	UpdateTurno(ctx context.Context, t models.Turno) error
	DeleteTurno(ctx context.Context, id int64) error
	GetTurno(ctx context.Context, id int64) (*models.Turno, error)
	ListTurni(ctx context.Context, giroID int64) ([]models.Turno, error)
	SetProprietari(ctx context.Context, turnoID int64, owners []models.Proprietario) error
	RamoSchedule(ctx context.Context, ramoID int64) ([]models.ScheduleSlot, error)
}

// Export renders the full turn table as CSV or XLSX.
type Export interface {
	TurniCSV(ctx context.Context) ([]byte, error)
	TurniXLSX(ctx context.Context) ([]byte, error)
}

// AuditLog exposes the append-only action log with filtering access.
type AuditLog interface {
	Record(ctx context.Context, action, entity string, entityID int64, detail string)
	List(ctx context.Context, f AuditFilter) ([]models.AuditEntry, error)
	Since(ctx context.Context, t time.Time) ([]models.AuditEntry, error)
}

// AuditFilter narrows audit queries.
type AuditFilter struct {
	From   time.Time
	To     time.Time
	Action string
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Registry
	Catalog
	Schedule
	Export
	AuditLog
}

// Deps carries cross-cutting dependencies for service construction.
type Deps struct {
	Repos     *repository.Repository
	Cache     *cache.Cache
	SecretKey string
}

// NewService wires the repository layer into concrete services.
func NewService(d Deps) *Service {
	audit := NewAuditLogService(d.Repos.Audit)
	return &Service{
		Authorization: NewAuthService(d.Repos.Auth, d.SecretKey),
		Registry:      NewRegistryService(d.Repos.Persone),
		Catalog:       NewCatalogService(d.Repos.Consorzi, d.Repos.Rami, d.Repos.Giri, d.Cache),
		Schedule:      NewScheduleService(d.Repos.Turni, d.Repos.Rami, d.Repos.Giri, d.Cache),
		Export:        NewExportService(d.Repos.Turni, d.Repos.Rami, d.Repos.Giri, d.Repos.Consorzi),
		AuditLog:      audit,
	}
}
