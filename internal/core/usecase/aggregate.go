package usecase

import (
	"fmt"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

// The aggregator is a pure transformation over the current result and
// similar-cases sequence. No I/O happens here; the exporter and the terminal
// views both render from the model it produces.

// FormatPercent renders a [0,1] probability as a fixed-point percentage with
// one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// RiskCategory maps a risk level onto a visual category. Unknown tiers fall
// through to the baseline so unexpected backend values degrade quietly.
func RiskCategory(level domain.RiskLevel) string {
	switch level {
	case domain.RiskCritical:
		return "critical"
	case domain.RiskHigh:
		return "high"
	case domain.RiskMedium:
		return "medium"
	default:
		return "low"
	}
}

// SimilarStats aggregates the similar-cases sequence. MeanMLProbability is
// computed only over entries that define the field; entries without it stay
// out of both numerator and denominator. Nil means no entry defined it.
type SimilarStats struct {
	Count             int
	HighRiskCount     int
	MeanMLProbability *float64
}

func SummarizeSimilars(similars []domain.SimilarEvent) SimilarStats {
	stats := SimilarStats{Count: len(similars)}

	var sum float64
	var defined int
	for _, s := range similars {
		if s.RiskLevel.IsElevated() {
			stats.HighRiskCount++
		}
		if s.MLProbability != nil {
			sum += *s.MLProbability
			defined++
		}
	}
	if defined > 0 {
		mean := sum / float64(defined)
		stats.MeanMLProbability = &mean
	}
	return stats
}

// ResultView is the display model for one analysis result. Presence flags
// drive conditional disclosure: absent optional sub-objects are a valid
// variant, never an error.
type ResultView struct {
	ReportID     string
	Drugname     string
	AdverseEvent string

	Prediction        string
	ConfidencePct     string
	SeriousProbPct    string
	FinalScorePct     string
	RiskLevel         domain.RiskLevel
	RiskCategory      string
	Escalated         bool
	EscalationSummary string
	TriggeredKeywords []string
	NeedsHumanReview  bool
	ReviewReason      string

	HasReasoning   bool
	Reasoning      domain.ReasoningAnalysis
	HasDrugInfo    bool
	DrugInfo       domain.DrugInfo
	HasExplanation bool
	Explanation    string

	Similars     []domain.SimilarEvent
	SimilarStats SimilarStats
}

// BuildResultView normalizes a result plus its similar-cases sequence into
// the single model every downstream surface consumes.
func BuildResultView(result *domain.AnalysisResult, similars []domain.SimilarEvent) ResultView {
	if result == nil {
		return ResultView{}
	}

	view := ResultView{
		ReportID:     result.ReportID,
		Drugname:     result.Drugname,
		AdverseEvent: result.AdverseEvent,

		Prediction:        result.Classification.Prediction,
		ConfidencePct:     FormatPercent(result.Classification.Confidence),
		SeriousProbPct:    FormatPercent(result.Classification.SeriousProbability),
		FinalScorePct:     FormatPercent(result.Escalation.FinalScore),
		RiskLevel:         result.Escalation.RiskLevel,
		RiskCategory:      RiskCategory(result.Escalation.RiskLevel),
		Escalated:         result.Escalation.ShouldEscalate,
		TriggeredKeywords: result.Escalation.TriggeredKeywords,
		NeedsHumanReview:  result.NeedsHumanReview,
		ReviewReason:      result.ReviewReason,

		Similars:     similars,
		SimilarStats: SummarizeSimilars(similars),
	}

	if result.Escalation.ShouldEscalate {
		view.EscalationSummary = fmt.Sprintf("Escalated for review at risk level %s.", result.Escalation.RiskLevel)
	} else {
		view.EscalationSummary = "This case was not escalated."
	}

	if result.Reasoning != nil {
		view.HasReasoning = true
		view.Reasoning = *result.Reasoning
	}
	if result.DrugInfo != nil {
		view.HasDrugInfo = true
		view.DrugInfo = *result.DrugInfo
	}
	if result.Explanation != "" {
		view.HasExplanation = true
		view.Explanation = result.Explanation
	}
	return view
}

// SimilarDetail resolves the focused similar case by report id, nil when the
// id is not in the current sequence.
func SimilarDetail(similars []domain.SimilarEvent, reportID string) *domain.SimilarEvent {
	for i := range similars {
		if similars[i].ReportID == reportID {
			return &similars[i]
		}
	}
	return nil
}
