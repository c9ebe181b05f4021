// Package export writes stored sessions to spreadsheet files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/stats"
)

const (
	sessionsSheet = "Sessions"
	wordsSheet    = "Words"
)

// SessionHeaders are the column titles of the sessions sheet.
var SessionHeaders = []string{
	"ID", "Created At", "Mode", "Passage", "Reference", "Recognized",
	"Reference Words", "Correct", "Substitutions", "Deletions", "Insertions",
	"WER", "Accuracy", "Tier", "Feedback", "Duration (s)",
}

// WordHeaders are the column titles of the per-word sheet.
var WordHeaders = []string{"Word", "Attempts", "Correct", "Misrecognized", "Skipped", "Accuracy"}

// Write exports records to path. The format follows the file extension:
// .xlsx writes a workbook, .csv writes the sessions table only.
func Write(path string, records []model.SessionRecord) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, records)
	case ".csv":
		return WriteCSV(path, records)
	default:
		return fmt.Errorf("unsupported export format %q (use .xlsx or .csv)", filepath.Ext(path))
	}
}

// WriteXLSX writes a workbook with a sessions sheet and a per-word sheet.
func WriteXLSX(path string, records []model.SessionRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sessionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSheet(f, sessionsSheet, SessionHeaders, sessionRows(records)); err != nil {
		return err
	}
	if _, err := f.NewSheet(wordsSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := writeSheet(f, wordsSheet, WordHeaders, wordRows(stats.WordAggregates(records))); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

func sessionRows(records []model.SessionRecord) [][]any {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		r := rec.Result
		var duration any = ""
		if rec.Duration != nil {
			duration = *rec.Duration
		}
		rows = append(rows, []any{
			rec.ID,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.Mode.String(),
			rec.PassageID,
			r.ReferenceText,
			r.RecognizedText,
			r.TotalReferenceWords,
			r.Correct,
			r.Substitutions,
			r.Deletions,
			r.Insertions,
			r.WordErrorRate,
			r.Accuracy,
			rec.Tier.Label(),
			rec.Feedback,
			duration,
		})
	}
	return rows
}

func wordRows(aggs []model.WordAggregate) [][]any {
	rows := make([][]any, 0, len(aggs))
	for _, agg := range stats.SortWeakest(aggs) {
		rows = append(rows, []any{
			agg.Word,
			agg.Attempts,
			agg.Correct,
			agg.Substituted,
			agg.Deleted,
			stats.WordAccuracy(agg) * 100,
		})
	}
	return rows
}

// WriteCSV writes one line per session after a header line.
func WriteCSV(path string, records []model.SessionRecord) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(SessionHeaders); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range sessionRows(records) {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = formatField(v)
		}
		if err := w.Write(fields); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatField(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
