package models

import "time"

// AbstractYear pins every Ramo start instant to a fixed leap year: only the
// month, day and time of day are meaningful, the year is a storage convention.
const AbstractYear = 2000

// Persona is a person registered with a consortium: a water user, an owner
// of watering time, or both.
type Persona struct {
	ID        int64  `json:"id"`
	Nome      string `json:"nome" binding:"required"`
	Cognome   string `json:"cognome" binding:"required"`
	Telefono  string `json:"telefono,omitempty"`
	Email     string `json:"email,omitempty"`
	Indirizzo string `json:"indirizzo,omitempty"`
}

// Consorzio is an irrigation consortium; the root of the catalog.
type Consorzio struct {
	ID          int64  `json:"id"`
	Nome        string `json:"nome" binding:"required"`
	Descrizione string `json:"descrizione,omitempty"`
	NumRami     int    `json:"num_rami,omitempty"`
}

// Ramo is a branch channel of a consortium. InizioAstratto is the abstract
// instant the rotation starts from, with its year normalized to AbstractYear.
type Ramo struct {
	ID             int64     `json:"id"`
	Nome           string    `json:"nome" binding:"required"`
	Descrizione    string    `json:"descrizione,omitempty"`
	ConsorzioID    int64     `json:"consorzio_id" binding:"required"`
	InizioAstratto time.Time `json:"inizio_astratto" binding:"required"`
}

// NormalizeInizio returns t with its year forced to AbstractYear, in UTC.
func NormalizeInizio(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(AbstractYear, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// Giro is a rotation round within a branch, ordered by Ordine.
type Giro struct {
	ID           int64   `json:"id"`
	Nome         string  `json:"nome" binding:"required"`
	Ordine       int     `json:"ordine"`
	Descrizione  string  `json:"descrizione,omitempty"`
	RamoID       int64   `json:"ramo_id" binding:"required"`
	NumTurni     int     `json:"num_turni,omitempty"`
	DurataTotale *Durata `json:"durata_totale,omitempty"`
}

// Proprietario is one owner's share of a turn.
type Proprietario struct {
	PersonaID int64  `json:"persona_id" binding:"required"`
	Nome      string `json:"nome,omitempty"`
	Cognome   string `json:"cognome,omitempty"`
	Tempo     Durata `json:"tempo"`
}

// Turno is a single watering turn: who uses the water, for how long, in
// which round, and which owners the time belongs to. (GiroID, Ordine) is
// unique within the schedule.
type Turno struct {
	ID             int64          `json:"id"`
	UtilizzatoreID int64          `json:"utilizzatore_id" binding:"required"`
	Utilizzatore   string         `json:"utilizzatore,omitempty"`
	Ordine         int            `json:"ordine"`
	Durata         Durata         `json:"durata"`
	GiroID         int64          `json:"giro_id" binding:"required"`
	Proprietari    []Proprietario `json:"proprietari,omitempty"`
}

// ScheduleSlot is a derived entry of a branch rotation: the window a turn
// occupies, computed by walking giri and turni in order from the branch's
// abstract start.
type ScheduleSlot struct {
	TurnoID      int64     `json:"turno_id"`
	Giro         string    `json:"giro"`
	GiroOrdine   int       `json:"giro_ordine"`
	Ordine       int       `json:"ordine"`
	Utilizzatore string    `json:"utilizzatore"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Durata       Durata    `json:"durata"`
}

// Audit action types.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
	AuditImport = "IMPORT"
)

// AuditEntry records a mutating API or CLI action.
type AuditEntry struct {
	EntryID    string    `json:"entry_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Action     string    `json:"action"` // CREATE | UPDATE | DELETE | IMPORT
	Entity     string    `json:"entity"` // persona | consorzio | ramo | giro | turno
	EntityID   int64     `json:"entity_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Metadata   any       `json:"metadata,omitempty"`
}

// User is an administrative account.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // never expose the hash
}
