package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pharmawatch/ae-console/internal/core/domain"
	"github.com/pharmawatch/ae-console/internal/core/ports"
	"github.com/pharmawatch/ae-console/internal/observability/metrics"
)

const reportRule = "------------------------------------------"

// CaseExporter serializes the current aggregated result into downloadable
// artifacts. Rendering is deterministic and total: absent optional sections
// produce their sentinel text, never a failure.
type CaseExporter struct {
	writer  ports.ArtifactWriter
	logger  *slog.Logger
	metrics *metrics.ClientMetrics
	service string
}

func NewCaseExporter(writer ports.ArtifactWriter, logger *slog.Logger, metricsSink *metrics.ClientMetrics, service string) *CaseExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaseExporter{writer: writer, logger: logger, metrics: metricsSink, service: service}
}

// ExportText writes the plain-text case report, named after the report id.
func (e *CaseExporter) ExportText(result *domain.AnalysisResult, similars []domain.SimilarEvent) (string, error) {
	if result == nil {
		return "", errors.New("export: no result to export")
	}
	path, err := e.writer.WriteText(ReportFilename(result), RenderCaseReport(result, similars))
	if err != nil {
		return "", fmt.Errorf("export text: %w", err)
	}
	if e.metrics != nil {
		e.metrics.RecordExport(e.service, "text")
	}
	e.logger.Info("case_report_exported", "report_id", result.ReportID, "path", path)
	return path, nil
}

// ExportWorkbook writes the spreadsheet supplement next to the text artifact.
func (e *CaseExporter) ExportWorkbook(result *domain.AnalysisResult, similars []domain.SimilarEvent) (string, error) {
	if result == nil {
		return "", errors.New("export: no result to export")
	}
	path, err := e.writer.WriteWorkbook(result.ReportID+".xlsx", result, similars)
	if err != nil {
		return "", fmt.Errorf("export workbook: %w", err)
	}
	if e.metrics != nil {
		e.metrics.RecordExport(e.service, "workbook")
	}
	e.logger.Info("case_workbook_exported", "report_id", result.ReportID, "path", path)
	return path, nil
}

// ReportFilename is the suggested artifact name for a result.
func ReportFilename(result *domain.AnalysisResult) string {
	return result.ReportID + ".txt"
}

// RenderCaseReport produces the fixed plain-text case report. Every optional
// section renders a sentinel when absent.
func RenderCaseReport(result *domain.AnalysisResult, similars []domain.SimilarEvent) string {
	view := BuildResultView(result, similars)

	var b strings.Builder
	b.WriteString("==========================================\n")
	b.WriteString(" ADVERSE EVENT CASE REPORT\n")
	b.WriteString("==========================================\n\n")

	fmt.Fprintf(&b, "Report ID     : %s\n", view.ReportID)
	fmt.Fprintf(&b, "Drug          : %s\n", view.Drugname)
	fmt.Fprintf(&b, "Adverse Event : %s\n", view.AdverseEvent)

	b.WriteString("\n" + reportRule + "\n")
	b.WriteString(" CLASSIFICATION & RISK\n")
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Prediction          : %s\n", view.Prediction)
	fmt.Fprintf(&b, "Confidence          : %s\n", view.ConfidencePct)
	fmt.Fprintf(&b, "Serious Probability : %s\n", view.SeriousProbPct)
	fmt.Fprintf(&b, "Risk Level          : %s\n", view.RiskLevel)
	fmt.Fprintf(&b, "Final Score         : %s\n", view.FinalScorePct)
	fmt.Fprintf(&b, "Escalated           : %s\n", yesNo(view.Escalated))
	if view.NeedsHumanReview {
		fmt.Fprintf(&b, "Needs Human Review  : Yes (%s)\n", view.ReviewReason)
	}

	b.WriteString("\nTriggered Keywords: ")
	if len(view.TriggeredKeywords) == 0 {
		b.WriteString("None\n")
	} else {
		b.WriteString("\n")
		for _, kw := range view.TriggeredKeywords {
			fmt.Fprintf(&b, "  - %s\n", kw)
		}
	}

	b.WriteString("\n" + reportRule + "\n")
	b.WriteString(" MEDICAL REASONING\n")
	b.WriteString(reportRule + "\n")
	if view.HasReasoning {
		fmt.Fprintf(&b, "Alignment : %s\n", view.Reasoning.Alignment)
		fmt.Fprintf(&b, "Certainty : %s\n", view.Reasoning.Certainty)
		if view.Reasoning.Reasoning != "" {
			fmt.Fprintf(&b, "\n%s\n", view.Reasoning.Reasoning)
		}
		if len(view.Reasoning.KeyFactors) > 0 {
			b.WriteString("\nKey Factors:\n")
			for _, f := range view.Reasoning.KeyFactors {
				fmt.Fprintf(&b, "  - %s\n", f)
			}
		}
	} else {
		b.WriteString("Medical reasoning not available.\n")
	}

	b.WriteString("\n" + reportRule + "\n")
	b.WriteString(" CLINICAL EXPLANATION\n")
	b.WriteString(reportRule + "\n")
	if view.HasExplanation {
		fmt.Fprintf(&b, "%s\n", view.Explanation)
	} else {
		b.WriteString("N/A\n")
	}

	b.WriteString("\n" + reportRule + "\n")
	b.WriteString(" DRUG INFORMATION\n")
	b.WriteString(reportRule + "\n")
	if view.HasDrugInfo {
		fmt.Fprintf(&b, "Source            : %s\n", view.DrugInfo.Source)
		fmt.Fprintf(&b, "Indications       : %s\n", view.DrugInfo.Indications)
		fmt.Fprintf(&b, "Warnings          : %s\n", view.DrugInfo.Warnings)
		fmt.Fprintf(&b, "Adverse Reactions : %s\n", view.DrugInfo.AdverseReactions)
	} else {
		b.WriteString("Not available\n")
	}

	b.WriteString("\n" + reportRule + "\n")
	b.WriteString(" SIMILAR HISTORICAL CASES\n")
	b.WriteString(reportRule + "\n")
	if len(view.Similars) == 0 {
		b.WriteString("No similar cases found.\n")
	} else {
		fmt.Fprintf(&b, "Total: %d  High Risk: %d", view.SimilarStats.Count, view.SimilarStats.HighRiskCount)
		if view.SimilarStats.MeanMLProbability != nil {
			fmt.Fprintf(&b, "  Mean ML Probability: %s", FormatPercent(*view.SimilarStats.MeanMLProbability))
		}
		b.WriteString("\n\n")
		for i, s := range view.Similars {
			fmt.Fprintf(&b, "%d. %s", i+1, s.ReportID)
			if s.Drugname != "" {
				fmt.Fprintf(&b, " | %s", s.Drugname)
			}
			if s.RiskLevel != "" {
				fmt.Fprintf(&b, " | %s", s.RiskLevel)
			}
			if s.MLProbability != nil {
				fmt.Fprintf(&b, " | ML %s", FormatPercent(*s.MLProbability))
			}
			b.WriteString("\n")
			if s.AdverseEvent != "" {
				fmt.Fprintf(&b, "   %s\n", s.AdverseEvent)
			}
		}
	}

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
