package handlers

import (
	"context"
	"time"

	"mizuchi/internal/models"
	"mizuchi/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	createID      int
	createErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) CreateUser(username, password string) (int, error) {
	return m.createID, m.createErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockRegistry struct {
	createID   int64
	createErr  error
	updateErr  error
	deleteErr  error
	getPersona *models.Persona
	getErr     error
	list       []models.Persona
	listErr    error

	lastQuery   string
	lastPersona models.Persona
}

func (m *mockRegistry) Create(ctx context.Context, p models.Persona) (int64, error) {
	m.lastPersona = p
	return m.createID, m.createErr
}
func (m *mockRegistry) Update(ctx context.Context, p models.Persona) error {
	m.lastPersona = p
	return m.updateErr
}
func (m *mockRegistry) Delete(ctx context.Context, id int64) error { return m.deleteErr }
func (m *mockRegistry) Get(ctx context.Context, id int64) (*models.Persona, error) {
	return m.getPersona, m.getErr
}
func (m *mockRegistry) List(ctx context.Context, query string) ([]models.Persona, error) {
	m.lastQuery = query
	return m.list, m.listErr
}

type mockCatalog struct {
	consorzi []models.Consorzio
	rami     []models.Ramo
	giri     []models.Giro

	consorzio *models.Consorzio
	ramo      *models.Ramo
	giro      *models.Giro

	createID  int64
	createErr error
	writeErr  error
}

func (m *mockCatalog) CreateConsorzio(ctx context.Context, c models.Consorzio) (int64, error) {
	return m.createID, m.createErr
}
func (m *mockCatalog) UpdateConsorzio(ctx context.Context, c models.Consorzio) error {
	return m.writeErr
}
func (m *mockCatalog) DeleteConsorzio(ctx context.Context, id int64) error { return m.writeErr }
func (m *mockCatalog) GetConsorzio(ctx context.Context, id int64) (*models.Consorzio, error) {
	return m.consorzio, nil
}
func (m *mockCatalog) ListConsorzi(ctx context.Context) ([]models.Consorzio, error) {
	return m.consorzi, nil
}

func (m *mockCatalog) CreateRamo(ctx context.Context, r models.Ramo) (int64, error) {
	return m.createID, m.createErr
}
func (m *mockCatalog) UpdateRamo(ctx context.Context, r models.Ramo) error { return m.writeErr }
func (m *mockCatalog) DeleteRamo(ctx context.Context, id int64) error      { return m.writeErr }
func (m *mockCatalog) GetRamo(ctx context.Context, id int64) (*models.Ramo, error) {
	return m.ramo, nil
}
func (m *mockCatalog) ListRami(ctx context.Context, consorzioID int64) ([]models.Ramo, error) {
	return m.rami, nil
}

func (m *mockCatalog) CreateGiro(ctx context.Context, g models.Giro) (int64, error) {
	return m.createID, m.createErr
}
func (m *mockCatalog) UpdateGiro(ctx context.Context, g models.Giro) error { return m.writeErr }
func (m *mockCatalog) DeleteGiro(ctx context.Context, id int64) error      { return m.writeErr }
func (m *mockCatalog) GetGiro(ctx context.Context, id int64) (*models.Giro, error) {
	return m.giro, nil
}
func (m *mockCatalog) ListGiri(ctx context.Context, ramoID int64) ([]models.Giro, error) {
	return m.giri, nil
}

type mockSchedule struct {
	createID  int64
	createErr error
	writeErr  error
	turno     *models.Turno
	getErr    error
	turni     []models.Turno
	slots     []models.ScheduleSlot
	slotsErr  error

	lastOwners []models.Proprietario
}

func (m *mockSchedule) CreateTurno(ctx context.Context, t models.Turno) (int64, error) {
	return m.createID, m.createErr
}
func (m *mockSchedule) UpdateTurno(ctx context.Context, t models.Turno) error { return m.writeErr }
func (m *mockSchedule) DeleteTurno(ctx context.Context, id int64) error       { return m.writeErr }
func (m *mockSchedule) GetTurno(ctx context.Context, id int64) (*models.Turno, error) {
	return m.turno, m.getErr
}
func (m *mockSchedule) ListTurni(ctx context.Context, giroID int64) ([]models.Turno, error) {
	return m.turni, nil
}
func (m *mockSchedule) SetProprietari(ctx context.Context, turnoID int64, owners []models.Proprietario) error {
	m.lastOwners = owners
	return m.writeErr
}
func (m *mockSchedule) RamoSchedule(ctx context.Context, ramoID int64) ([]models.ScheduleSlot, error) {
	return m.slots, m.slotsErr
}

type mockExport struct {
	csv     []byte
	xlsx    []byte
	csvErr  error
	xlsxErr error
}

func (m *mockExport) TurniCSV(ctx context.Context) ([]byte, error)  { return m.csv, m.csvErr }
func (m *mockExport) TurniXLSX(ctx context.Context) ([]byte, error) { return m.xlsx, m.xlsxErr }

type mockAuditLog struct {
	entries []models.AuditEntry
	listErr error

	recorded []models.AuditEntry
	lastF    service.AuditFilter
}

func (m *mockAuditLog) Record(ctx context.Context, action, entity string, entityID int64, detail string) {
	m.recorded = append(m.recorded, models.AuditEntry{
		Action: action, Entity: entity, EntityID: entityID, Detail: detail,
	})
}
func (m *mockAuditLog) List(ctx context.Context, f service.AuditFilter) ([]models.AuditEntry, error) {
	m.lastF = f
	return m.entries, m.listErr
}
func (m *mockAuditLog) Since(ctx context.Context, t time.Time) ([]models.AuditEntry, error) {
	return m.entries, nil
}
