// Package artifact persists export artifacts produced from an aggregated
// analysis result.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

type Writer struct {
	dir string
}

func New(dir string) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// WriteText stores the rendered case report as a UTF-8 text/plain artifact.
func (w *Writer) WriteText(filename, content string) (string, error) {
	path := filepath.Join(w.dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report artifact: %w", err)
	}
	return path, nil
}

// WriteWorkbook stores the companion XLSX workbook: a summary sheet for the
// case and one row per similar case. Absent optional sections are simply
// blank cells, never an error.
func (w *Writer) WriteWorkbook(filename string, result *domain.AnalysisResult, similars []domain.SimilarEvent) (string, error) {
	if result == nil {
		return "", fmt.Errorf("write workbook: nil result")
	}

	book := excelize.NewFile()
	defer book.Close()

	const summarySheet = "Summary"
	if err := book.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", fmt.Errorf("rename summary sheet: %w", err)
	}

	summaryRows := [][]any{
		{"Report ID", result.ReportID},
		{"Drug", result.Drugname},
		{"Adverse Event", result.AdverseEvent},
		{"Prediction", result.Classification.Prediction},
		{"Confidence", result.Classification.Confidence},
		{"Serious Probability", result.Classification.SeriousProbability},
		{"Risk Level", string(result.Escalation.RiskLevel)},
		{"Final Score", result.Escalation.FinalScore},
		{"Escalated", result.Escalation.ShouldEscalate},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", fmt.Errorf("summary cell name: %w", err)
		}
		if err := book.SetSheetRow(summarySheet, cell, &row); err != nil {
			return "", fmt.Errorf("write summary row: %w", err)
		}
	}

	const similarSheet = "Similar Cases"
	if _, err := book.NewSheet(similarSheet); err != nil {
		return "", fmt.Errorf("create similar-cases sheet: %w", err)
	}
	header := []any{"Report ID", "Drug", "Adverse Event", "Risk Level", "ML Probability", "Timestamp"}
	if err := book.SetSheetRow(similarSheet, "A1", &header); err != nil {
		return "", fmt.Errorf("write similar-cases header: %w", err)
	}
	for i, similar := range similars {
		row := []any{
			similar.ReportID,
			similar.Drugname,
			similar.AdverseEvent,
			string(similar.RiskLevel),
			"",
			similar.Timestamp,
		}
		if similar.MLProbability != nil {
			row[4] = *similar.MLProbability
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("similar-cases cell name: %w", err)
		}
		if err := book.SetSheetRow(similarSheet, cell, &row); err != nil {
			return "", fmt.Errorf("write similar-case row: %w", err)
		}
	}

	path := filepath.Join(w.dir, filename)
	if err := book.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}
