package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"mizuchi/internal/models"
	"mizuchi/internal/repository"
)

// exportHeader matches the legacy spreadsheet layout the consortiums are
// used to reading.
var exportHeader = []string{
	"Consorzio - Ramo", "Giro", "Ordine", "Utilizzatore", "Durata (hh:mm)", "Proprietari",
}

// ExportService renders the full turn programme grouped by branch.
type ExportService struct {
	turni    repository.TurnoRepo
	rami     repository.RamoRepo
	giri     repository.GiroRepo
	consorzi repository.ConsorzioRepo
}

func NewExportService(turni repository.TurnoRepo, rami repository.RamoRepo, giri repository.GiroRepo, consorzi repository.ConsorzioRepo) *ExportService {
	return &ExportService{turni: turni, rami: rami, giri: giri, consorzi: consorzi}
}

var _ Export = (*ExportService)(nil)

// exportRow is one rendered line of the programme.
type exportRow struct {
	RamoLabel    string
	Giro         string
	GiroOrdine   int
	Ordine       int
	Utilizzatore string
	Durata       string
	Proprietari  string
}

// TurniCSV renders the programme as CSV. A UTF-8 BOM is prepended so Excel
// opens the file with the right encoding.
func (s *ExportService) TurniCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.collectRows(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.RamoLabel, r.Giro, fmt.Sprintf("%d", r.Ordine),
			r.Utilizzatore, r.Durata, r.Proprietari,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TurniXLSX renders the same table as a spreadsheet.
func (s *ExportService) TurniXLSX(ctx context.Context) ([]byte, error) {
	rows, err := s.collectRows(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Programmazione"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{r.RamoLabel, r.Giro, r.Ordine, r.Utilizzatore, r.Durata, r.Proprietari}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// collectRows builds the programme: rows grouped by branch label (sorted),
// ordered within a branch by (giro.ordine, turno.ordine).
func (s *ExportService) collectRows(ctx context.Context) ([]exportRow, error) {
	consorzi, err := s.consorzi.List(ctx)
	if err != nil {
		return nil, err
	}
	consorzioName := make(map[int64]string, len(consorzi))
	for _, c := range consorzi {
		consorzioName[c.ID] = c.Nome
	}

	rami, err := s.rami.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	ramoLabel := make(map[int64]string, len(rami))
	for _, r := range rami {
		ramoLabel[r.ID] = consorzioName[r.ConsorzioID] + " - " + r.Nome
	}

	giri, err := s.giri.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	giroByID := make(map[int64]models.Giro, len(giri))
	for _, g := range giri {
		giroByID[g.ID] = g
	}

	turni, err := s.turni.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]exportRow, 0, len(turni))
	for _, t := range turni {
		g, ok := giroByID[t.GiroID]
		if !ok {
			continue
		}
		rows = append(rows, exportRow{
			RamoLabel:    ramoLabel[g.RamoID],
			Giro:         g.Nome,
			GiroOrdine:   g.Ordine,
			Ordine:       t.Ordine,
			Utilizzatore: t.Utilizzatore,
			Durata:       t.Durata.String(),
			Proprietari:  ownersLabel(t.Proprietari),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RamoLabel != rows[j].RamoLabel {
			return rows[i].RamoLabel < rows[j].RamoLabel
		}
		if rows[i].GiroOrdine != rows[j].GiroOrdine {
			return rows[i].GiroOrdine < rows[j].GiroOrdine
		}
		return rows[i].Ordine < rows[j].Ordine
	})
	return rows, nil
}

func ownersLabel(owners []models.Proprietario) string {
	parts := make([]string, 0, len(owners))
	for _, o := range owners {
		parts = append(parts, strings.TrimSpace(o.Nome+" "+o.Cognome))
	}
	return strings.Join(parts, ", ")
}
