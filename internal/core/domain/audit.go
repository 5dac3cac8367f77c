package domain

// AuditRecord is one historical decision row. The viewer renders it opaquely.
type AuditRecord struct {
	ID                 int       `json:"id"`
	ReportID           string    `json:"report_id"`
	Timestamp          string    `json:"timestamp"`
	Drugname           string    `json:"drugname"`
	AdverseEvent       string    `json:"adverse_event"`
	MLPrediction       string    `json:"ml_prediction"`
	MLProbability      float64   `json:"ml_probability"`
	ExtractedDrug      string    `json:"extracted_drug,omitempty"`
	ExtractedSymptoms  string    `json:"extracted_symptoms,omitempty"`
	EscalationDecision string    `json:"escalation_decision"`
	RiskLevel          RiskLevel `json:"risk_level"`
	FinalScore         float64   `json:"final_score"`
	TriggeredKeywords  string    `json:"triggered_keywords,omitempty"`
	Explanation        string    `json:"explanation,omitempty"`
	ProcessingTimeMS   float64   `json:"processing_time_ms,omitempty"`
}

// AuditQuery is passed through verbatim to the backend audit endpoint.
type AuditQuery struct {
	Limit         int
	Offset        int
	RiskLevel     RiskLevel
	EscalatedOnly bool
}
