package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"mizuchi/internal/models"
)

func durata(d time.Duration) models.Durata { return models.Durata{Duration: d} }

func TestTurnoCreate_MapsUniqueViolation(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewTurnoSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(`
			INSERT INTO turni (utilizzatore_id, ordine, durata_s, giro_id)
			VALUES (?, ?, ?, ?)
		`)).
		WithArgs(int64(1), 5, int64(3600), int64(2)).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: turni.giro_id, turni.ordine"))

	_, err := repo.Create(ctx(t), models.Turno{
		UtilizzatoreID: 1,
		Ordine:         5,
		Durata:         durata(time.Hour),
		GiroID:         2,
	})
	if !errors.Is(err, ErrOrdineTaken) {
		t.Fatalf("err = %v, want ErrOrdineTaken", err)
	}
	expectationsMet(t, mock)
}

func TestTurnoGet_LoadsOwners(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewTurnoSQLite(db)

	mock.ExpectQuery("SELECT t.id, t.utilizzatore_id").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "utilizzatore_id", "utilizzatore", "ordine", "durata_s", "giro_id"}).
			AddRow(10, 1, "Mario Rossi", 30, 10800, 4))

	mock.ExpectQuery("SELECT tp.proprietario_id, p.nome, p.cognome, tp.tempo_s").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"proprietario_id", "nome", "cognome", "tempo_s"}).
			AddRow(2, "Luigi", "Bianchi", 7200).
			AddRow(1, "Mario", "Rossi", 3600))

	turno, err := repo.Get(ctx(t), 10)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if turno == nil {
		t.Fatal("turno is nil")
	}
	if turno.Utilizzatore != "Mario Rossi" || turno.Ordine != 30 {
		t.Fatalf("turno = %+v", turno)
	}
	if turno.Durata.Duration != 3*time.Hour {
		t.Fatalf("durata = %v, want 3h", turno.Durata.Duration)
	}
	if len(turno.Proprietari) != 2 {
		t.Fatalf("owners = %d, want 2", len(turno.Proprietari))
	}
	if turno.Proprietari[0].Cognome != "Bianchi" || turno.Proprietari[0].Tempo.Duration != 2*time.Hour {
		t.Fatalf("first owner = %+v", turno.Proprietari[0])
	}
	expectationsMet(t, mock)
}

func TestReplaceProprietari_RecomputesDurata(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewTurnoSQLite(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM turno_proprietari WHERE turno_id=?`)).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`
				INSERT INTO turno_proprietari (turno_id, proprietario_id, tempo_s)
				VALUES (?, ?, ?)
			`)).
		WithArgs(int64(10), int64(1), int64(3600)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
				INSERT INTO turno_proprietari (turno_id, proprietario_id, tempo_s)
				VALUES (?, ?, ?)
			`)).
		WithArgs(int64(10), int64(2), int64(5400)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE turni SET durata_s=? WHERE id=?`)).
		WithArgs(int64(9000), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceProprietari(ctx(t), 10, []models.Proprietario{
		{PersonaID: 1, Tempo: durata(time.Hour)},
		{PersonaID: 2, Tempo: durata(90 * time.Minute)},
	})
	if err != nil {
		t.Fatalf("ReplaceProprietari: %v", err)
	}
	expectationsMet(t, mock)
}

func TestReplaceProprietari_MissingTurno(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewTurnoSQLite(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM turno_proprietari WHERE turno_id=?`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE turni SET durata_s=? WHERE id=?`)).
		WithArgs(int64(0), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ReplaceProprietari(ctx(t), 99, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	expectationsMet(t, mock)
}

func TestRamoIDForGiro_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewTurnoSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ramo_id FROM giri WHERE id=?`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"ramo_id"}))

	_, err := repo.RamoIDForGiro(ctx(t), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	expectationsMet(t, mock)
}
