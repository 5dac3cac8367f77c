package domain

// RiskLevel is the backend's escalation tier for a processed case.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// SeverityRank orders risk levels for display purposes. Unknown values rank
// below LOW so that unexpected backend tiers degrade to the baseline style.
func (r RiskLevel) SeverityRank() int {
	switch r {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

func (r RiskLevel) IsElevated() bool {
	return r == RiskCritical || r == RiskHigh
}

// AnalysisMode discriminates the two intake flows.
type AnalysisMode string

const (
	ModeManual   AnalysisMode = "manual"
	ModeDocument AnalysisMode = "document"
)

// Classification is the ML verdict sub-object of an analysis response.
type Classification struct {
	Prediction            string  `json:"prediction"`
	SeriousProbability    float64 `json:"serious_probability"`
	NonSeriousProbability float64 `json:"non_serious_probability"`
	Confidence            float64 `json:"confidence"`
}

// Escalation is the rule-engine verdict sub-object.
type Escalation struct {
	ShouldEscalate    bool      `json:"should_escalate"`
	RiskLevel         RiskLevel `json:"risk_level"`
	FinalScore        float64   `json:"final_score"`
	MLProbability     float64   `json:"ml_probability"`
	KeywordScore      float64   `json:"keyword_score"`
	TriggeredKeywords []string  `json:"triggered_keywords"`
	Explanation       string    `json:"explanation"`
}

// ExtractedEntities is what the backend pulled out of the narrative.
type ExtractedEntities struct {
	Drug             string   `json:"drug"`
	Symptoms         []string `json:"symptoms"`
	ExtractionMethod string   `json:"extraction_method"`
}

// DrugInfo is the optional reference-label sub-object (DailyMed sourced).
type DrugInfo struct {
	Source           string `json:"source"`
	Indications      string `json:"indications"`
	Warnings         string `json:"warnings"`
	AdverseReactions string `json:"adverse_reactions"`
}

// ReasoningAnalysis is the optional medical-reasoning sub-object. Alignment
// is SUPPORTS, CHALLENGES, UNKNOWN or UNAVAILABLE; certainty is HIGH, MEDIUM,
// LOW or UNKNOWN.
type ReasoningAnalysis struct {
	Alignment  string   `json:"reasoning_alignment"`
	Reasoning  string   `json:"reasoning"`
	KeyFactors []string `json:"key_factors"`
	Certainty  string   `json:"reasoning_certainty"`
}

// SimilarEvent is one historical case the backend judged related to the
// current submission. Pointer fields distinguish absent values from zeros;
// MLProbability in particular must stay distinguishable for averaging.
type SimilarEvent struct {
	ReportID        string    `json:"report_id"`
	Drugname        string    `json:"drugname,omitempty"`
	AdverseEvent    string    `json:"adverse_event"`
	Timestamp       string    `json:"timestamp,omitempty"`
	RiskLevel       RiskLevel `json:"risk_level,omitempty"`
	MLProbability   *float64  `json:"ml_probability,omitempty"`
	FinalScore      *float64  `json:"final_score,omitempty"`
	MatchedSymptoms []string  `json:"matched_symptoms,omitempty"`
}

// AnalysisResult is the backend's full response for one processed case.
// Optional sub-objects are pointers; their absence is a valid variant, not an
// error. A result is always replaced wholesale, never merged.
type AnalysisResult struct {
	ReportID          string             `json:"report_id"`
	Drugname          string             `json:"drugname"`
	AdverseEvent      string             `json:"adverse_event"`
	Entities          *ExtractedEntities `json:"entities,omitempty"`
	Classification    Classification     `json:"classification"`
	Escalation        Escalation         `json:"escalation"`
	ProcessingTimeMS  float64            `json:"processing_time_ms"`
	Explanation       string             `json:"explanation,omitempty"`
	EmailNotification map[string]any     `json:"email_notification,omitempty"`
	SimilarEvents     []SimilarEvent     `json:"similar_events,omitempty"`
	DrugInfo          *DrugInfo          `json:"drug_info,omitempty"`
	Reasoning         *ReasoningAnalysis `json:"phi3_reasoning,omitempty"`
	NeedsHumanReview  bool               `json:"needs_human_review,omitempty"`
	ReviewReason      string             `json:"review_reason,omitempty"`
}

// ManualRequest is the manual-mode submission payload.
type ManualRequest struct {
	Drugname     string `json:"drugname"`
	AdverseEvent string `json:"adverse_event"`
}

// SuggestionSet is the transient autocomplete state: the candidates for the
// input value that triggered the fetch. Superseded, never merged.
type SuggestionSet struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
	Visible     bool     `json:"visible"`
}

// Health is the backend liveness snapshot.
type Health struct {
	Status            string `json:"status"`
	ModelLoaded       bool   `json:"model_loaded"`
	LLMAvailable      bool   `json:"llm_available"`
	DatabaseConnected bool   `json:"database_connected"`
	ReasoningAvail    *bool  `json:"phi3_available,omitempty"`
	Timestamp         string `json:"timestamp"`
}
