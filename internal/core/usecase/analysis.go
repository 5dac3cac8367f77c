package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pharmawatch/ae-console/internal/core/domain"
	"github.com/pharmawatch/ae-console/internal/core/ports"
	"github.com/pharmawatch/ae-console/internal/observability/metrics"
)

// Phase is the lifecycle of one intake mode.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// ModeStatus is the per-mode slice of workflow state. Message carries the
// user-facing error text when Phase is PhaseFailed.
type ModeStatus struct {
	Phase   Phase
	Message string
}

// WorkflowState is a point-in-time snapshot of the dual-mode intake flow.
// SimilarCases is nil until a submission succeeds; a successful submission
// whose response carried no similar cases yields an empty non-nil slice, so
// "not fetched" and "fetched, none found" stay distinguishable.
type WorkflowState struct {
	ActiveMode   domain.AnalysisMode
	Manual       ModeStatus
	Document     ModeStatus
	Result       *domain.AnalysisResult
	SimilarCases []domain.SimilarEvent
}

// VisibleError is the error banner for the active mode only. Switching modes
// hides the inactive mode's failure without clearing it.
func (s WorkflowState) VisibleError() string {
	if s.ActiveMode == domain.ModeDocument {
		if s.Document.Phase == PhaseFailed {
			return s.Document.Message
		}
		return ""
	}
	if s.Manual.Phase == PhaseFailed {
		return s.Manual.Message
	}
	return ""
}

const (
	manualFailureFallback   = "Failed to process the report. Please try again."
	documentFailureFallback = "Failed to process the document. Please try again."

	// The backend signals extraction failure with this phrase inside the
	// error detail. Matching is deliberately confined to this constant and
	// rewriteDocumentError.
	detectionFailureMarker = "could not be detected"
	detectionFailureNotice = "The drug name could not be detected from the document. Please enter the drug name manually and resubmit."
)

// AnalysisWorkflow drives the dual-mode case intake. The two modes hold
// independent in-flight state but share one result slot, which is always
// replaced wholesale. Submissions are never retried automatically; every
// processed submission creates a case record on the backend.
type AnalysisWorkflow struct {
	gateway   ports.BackendGateway
	sessions  ports.SessionManager
	inspector ports.DocumentInspector
	logger    *slog.Logger
	metrics   *metrics.ClientMetrics
	service   string

	mu       sync.Mutex
	active   domain.AnalysisMode
	manual   ModeStatus
	document ModeStatus
	result   *domain.AnalysisResult
	similars []domain.SimilarEvent
}

func NewAnalysisWorkflow(gateway ports.BackendGateway, sessions ports.SessionManager, inspector ports.DocumentInspector, logger *slog.Logger, metricsSink *metrics.ClientMetrics, service string) *AnalysisWorkflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisWorkflow{
		gateway:   gateway,
		sessions:  sessions,
		inspector: inspector,
		logger:    logger,
		metrics:   metricsSink,
		service:   service,
		active:    domain.ModeManual,
		manual:    ModeStatus{Phase: PhaseIdle},
		document:  ModeStatus{Phase: PhaseIdle},
	}
}

// SetActiveMode switches the visible intake form. Mode state survives the
// switch untouched.
func (w *AnalysisWorkflow) SetActiveMode(mode domain.AnalysisMode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if mode != domain.ModeManual && mode != domain.ModeDocument {
		return
	}
	w.active = mode
}

// SubmitManual runs the manual-entry path. Field validation happens before
// any network activity, and the previous result is discarded before dispatch
// so a failed submission never shows stale findings.
func (w *AnalysisWorkflow) SubmitManual(ctx context.Context, drugname, adverseEvent string) (*domain.AnalysisResult, error) {
	drugname = strings.TrimSpace(drugname)
	adverseEvent = strings.TrimSpace(adverseEvent)

	w.mu.Lock()
	if w.manual.Phase == PhaseSubmitting {
		w.mu.Unlock()
		return nil, domain.ErrSubmitInFlight
	}
	if drugname == "" || adverseEvent == "" {
		w.manual = ModeStatus{Phase: PhaseFailed, Message: "Both drug name and adverse event description are required."}
		w.mu.Unlock()
		return nil, domain.WrapError(domain.ErrValidation, "manual submission", errors.New("missing required fields"))
	}
	w.manual = ModeStatus{Phase: PhaseSubmitting}
	w.clearResultLocked()
	w.mu.Unlock()

	session, err := w.sessions.EnsureAuthenticated(ctx)
	if err != nil {
		w.finishFailure(domain.ModeManual, "Session expired. Please log in again.")
		return nil, err
	}

	result, err := w.gateway.ProcessManual(ctx, session.Token, domain.ManualRequest{
		Drugname:     drugname,
		AdverseEvent: adverseEvent,
	})
	if err != nil {
		message := userMessage(err, manualFailureFallback)
		w.finishFailure(domain.ModeManual, message)
		w.logger.Error("manual_submission_failed", "error", err)
		return nil, fmt.Errorf("manual submission: %w", err)
	}

	w.finishSuccess(domain.ModeManual, result)
	w.logger.Info("manual_submission_succeeded",
		"report_id", result.ReportID,
		"risk_level", result.Escalation.RiskLevel,
		"escalated", result.Escalation.ShouldEscalate,
	)
	return result, nil
}

// SubmitDocument runs the PDF upload path. The file is inspected locally
// before upload; an extraction failure from the backend is rewritten into an
// instruction to fall back to manual entry with an override.
func (w *AnalysisWorkflow) SubmitDocument(ctx context.Context, path, drugnameOverride string) (*domain.AnalysisResult, error) {
	drugnameOverride = strings.TrimSpace(drugnameOverride)

	w.mu.Lock()
	if w.document.Phase == PhaseSubmitting {
		w.mu.Unlock()
		return nil, domain.ErrSubmitInFlight
	}
	if strings.TrimSpace(path) == "" {
		w.document = ModeStatus{Phase: PhaseFailed, Message: "Please select a PDF file."}
		w.mu.Unlock()
		return nil, domain.WrapError(domain.ErrValidation, "document submission", errors.New("no file selected"))
	}
	w.document = ModeStatus{Phase: PhaseSubmitting}
	w.mu.Unlock()

	if _, err := w.inspector.Inspect(path); err != nil {
		w.finishFailure(domain.ModeDocument, "The selected file is not a readable PDF.")
		return nil, fmt.Errorf("inspect document: %w", err)
	}

	w.mu.Lock()
	w.clearResultLocked()
	w.mu.Unlock()

	session, err := w.sessions.EnsureAuthenticated(ctx)
	if err != nil {
		w.finishFailure(domain.ModeDocument, "Session expired. Please log in again.")
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		w.finishFailure(domain.ModeDocument, "The selected file could not be opened.")
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	result, err := w.gateway.ProcessDocument(ctx, session.Token, filepath.Base(path), file, drugnameOverride)
	if err != nil {
		message := rewriteDocumentError(err)
		w.finishFailure(domain.ModeDocument, message)
		w.logger.Error("document_submission_failed", "file", filepath.Base(path), "error", err)
		return nil, fmt.Errorf("document submission: %w", err)
	}

	w.finishSuccess(domain.ModeDocument, result)
	w.logger.Info("document_submission_succeeded",
		"report_id", result.ReportID,
		"file", filepath.Base(path),
		"risk_level", result.Escalation.RiskLevel,
	)
	return result, nil
}

// State returns a snapshot. The similar-cases slice is copied so callers
// cannot mutate workflow state through it.
func (w *AnalysisWorkflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()

	var similars []domain.SimilarEvent
	if w.similars != nil {
		similars = make([]domain.SimilarEvent, len(w.similars))
		copy(similars, w.similars)
	}
	return WorkflowState{
		ActiveMode:   w.active,
		Manual:       w.manual,
		Document:     w.document,
		Result:       w.result,
		SimilarCases: similars,
	}
}

// clearResultLocked must run under w.mu. Discarding the shared result slot
// before the request leaves keeps stale findings off screen while a new case
// is processing.
func (w *AnalysisWorkflow) clearResultLocked() {
	w.result = nil
	w.similars = nil
}

func (w *AnalysisWorkflow) finishSuccess(mode domain.AnalysisMode, result *domain.AnalysisResult) {
	w.mu.Lock()
	w.result = result
	if result.SimilarEvents != nil {
		w.similars = result.SimilarEvents
	} else {
		w.similars = []domain.SimilarEvent{}
	}
	if mode == domain.ModeDocument {
		w.document = ModeStatus{Phase: PhaseSucceeded}
	} else {
		w.manual = ModeStatus{Phase: PhaseSucceeded}
	}
	w.mu.Unlock()
	w.recordSubmission(mode, "success")
}

func (w *AnalysisWorkflow) finishFailure(mode domain.AnalysisMode, message string) {
	w.mu.Lock()
	if mode == domain.ModeDocument {
		w.document = ModeStatus{Phase: PhaseFailed, Message: message}
	} else {
		w.manual = ModeStatus{Phase: PhaseFailed, Message: message}
	}
	w.mu.Unlock()
	w.recordSubmission(mode, "failure")
}

func (w *AnalysisWorkflow) recordSubmission(mode domain.AnalysisMode, outcome string) {
	if w.metrics == nil {
		return
	}
	w.metrics.RecordSubmission(w.service, string(mode), outcome)
}

// rewriteDocumentError turns backend detail into the document-mode banner.
// The extraction-failure phrase gets a dedicated notice that points the user
// at the manual override.
func rewriteDocumentError(err error) string {
	message := userMessage(err, documentFailureFallback)
	if strings.Contains(message, detectionFailureMarker) {
		return detectionFailureNotice
	}
	return message
}

// userMessage prefers server-provided detail over the generic fallback.
func userMessage(err error, fallback string) string {
	var detailed interface{ UserMessage() string }
	if errors.As(err, &detailed) {
		if msg := detailed.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
