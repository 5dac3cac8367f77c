package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

type detailErr struct{ detail string }

func (e *detailErr) Error() string       { return e.detail }
func (e *detailErr) UserMessage() string { return e.detail }

func newWorkflow(gateway *gatewayFake, inspector *inspectorFake) *AnalysisWorkflow {
	sessions := &sessionFake{session: domain.Session{Token: "t1", User: &domain.User{Username: "alice"}}}
	return NewAnalysisWorkflow(gateway, sessions, inspector, nil, nil, "test")
}

func TestSubmitManualEmptyFieldsNeverDispatches(t *testing.T) {
	gateway := &gatewayFake{}
	wf := newWorkflow(gateway, &inspectorFake{})

	for _, tc := range []struct{ drug, event string }{
		{"", ""},
		{"Aspirin", ""},
		{"", "nausea"},
		{"   ", "nausea"},
	} {
		_, err := wf.SubmitManual(context.Background(), tc.drug, tc.event)
		if !domain.IsKind(err, domain.ErrValidation) {
			t.Fatalf("drug=%q event=%q: expected validation error, got %v", tc.drug, tc.event, err)
		}
	}
	if gateway.countManual() != 0 {
		t.Fatalf("expected no network calls, got %d", gateway.countManual())
	}
	state := wf.State()
	if state.Manual.Phase != PhaseFailed || state.Manual.Message == "" {
		t.Fatalf("expected failed manual state with message, got %+v", state.Manual)
	}
}

func TestSubmitManualNotEscalatedYieldsExplicitEmptySimilars(t *testing.T) {
	gateway := &gatewayFake{
		processResult: &domain.AnalysisResult{
			ReportID:     "RPT-42",
			Drugname:     "Amoxicillin",
			AdverseEvent: "jaundice",
			Escalation:   domain.Escalation{ShouldEscalate: false, RiskLevel: domain.RiskLow},
		},
	}
	wf := newWorkflow(gateway, &inspectorFake{})

	result, err := wf.SubmitManual(context.Background(), "Amoxicillin", "jaundice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReportID != "RPT-42" {
		t.Fatalf("unexpected result: %+v", result)
	}

	state := wf.State()
	if state.SimilarCases == nil {
		t.Fatal("expected explicit empty similar-cases slice, got nil")
	}
	if len(state.SimilarCases) != 0 {
		t.Fatalf("expected no similar cases, got %d", len(state.SimilarCases))
	}
	view := BuildResultView(state.Result, state.SimilarCases)
	if view.EscalationSummary != "This case was not escalated." {
		t.Fatalf("unexpected escalation summary: %q", view.EscalationSummary)
	}
}

func TestSubmitManualClearsPriorResultBeforeDispatch(t *testing.T) {
	gateway := &gatewayFake{
		processResult: &domain.AnalysisResult{
			ReportID:      "RPT-1",
			SimilarEvents: []domain.SimilarEvent{{ReportID: "RPT-0"}},
		},
	}
	wf := newWorkflow(gateway, &inspectorFake{})

	if _, err := wf.SubmitManual(context.Background(), "Aspirin", "bleeding"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.State().Result == nil {
		t.Fatal("expected first result assigned")
	}

	gate := make(chan struct{})
	gateway.mu.Lock()
	gateway.processGate = gate
	gateway.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = wf.SubmitManual(context.Background(), "Ibuprofen", "rash")
	}()

	waitFor(t, func() bool { return gateway.countManual() == 2 })
	state := wf.State()
	if state.Result != nil || state.SimilarCases != nil {
		t.Fatalf("expected prior result cleared while submitting, got %+v", state)
	}
	if state.Manual.Phase != PhaseSubmitting {
		t.Fatalf("expected submitting phase, got %s", state.Manual.Phase)
	}

	close(gate)
	<-done
	if wf.State().Result == nil {
		t.Fatal("expected new result assigned after completion")
	}
}

func TestSubmitManualRejectsWhileInFlight(t *testing.T) {
	gateway := &gatewayFake{processResult: &domain.AnalysisResult{ReportID: "RPT-1"}}
	gate := make(chan struct{})
	gateway.processGate = gate
	wf := newWorkflow(gateway, &inspectorFake{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = wf.SubmitManual(context.Background(), "Aspirin", "bleeding")
	}()
	waitFor(t, func() bool { return gateway.countManual() == 1 })

	_, err := wf.SubmitManual(context.Background(), "Aspirin", "bleeding")
	if !errors.Is(err, domain.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(gate)
	<-done
	if gateway.countManual() != 1 {
		t.Fatalf("expected single dispatch, got %d", gateway.countManual())
	}
}

func TestSubmitManualSurfacesServerDetail(t *testing.T) {
	gateway := &gatewayFake{processErr: &detailErr{detail: "Adverse event text too long"}}
	wf := newWorkflow(gateway, &inspectorFake{})

	_, err := wf.SubmitManual(context.Background(), "Aspirin", "bleeding")
	if err == nil {
		t.Fatal("expected error")
	}
	state := wf.State()
	if state.Manual.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %s", state.Manual.Phase)
	}
	if state.Manual.Message != "Adverse event text too long" {
		t.Fatalf("expected server detail surfaced, got %q", state.Manual.Message)
	}
}

func TestSubmitManualGenericFallbackWithoutDetail(t *testing.T) {
	gateway := &gatewayFake{processErr: errors.New("connection reset")}
	wf := newWorkflow(gateway, &inspectorFake{})

	_, _ = wf.SubmitManual(context.Background(), "Aspirin", "bleeding")
	if got := wf.State().Manual.Message; got != manualFailureFallback {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

func TestSubmitDocumentRewritesDetectionFailure(t *testing.T) {
	gateway := &gatewayFake{processErr: &detailErr{
		detail: "Drug name could not be detected or validated. Please enter a valid drug name manually.",
	}}
	wf := newWorkflow(gateway, &inspectorFake{pages: 1})
	path := writeTempPDF(t)

	_, err := wf.SubmitDocument(context.Background(), path, "")
	if err == nil {
		t.Fatal("expected error")
	}
	state := wf.State()
	if state.Document.Message != detectionFailureNotice {
		t.Fatalf("expected rewritten notice, got %q", state.Document.Message)
	}
}

func TestSubmitDocumentRequiresFile(t *testing.T) {
	gateway := &gatewayFake{}
	wf := newWorkflow(gateway, &inspectorFake{})

	_, err := wf.SubmitDocument(context.Background(), "", "")
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gateway.documentCalls != 0 {
		t.Fatalf("expected no dispatch, got %d", gateway.documentCalls)
	}
}

func TestSubmitDocumentFailsOnRejectedInspection(t *testing.T) {
	gateway := &gatewayFake{}
	inspector := &inspectorFake{err: domain.ErrValidation}
	wf := newWorkflow(gateway, inspector)
	path := writeTempPDF(t)

	_, err := wf.SubmitDocument(context.Background(), path, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if gateway.documentCalls != 0 {
		t.Fatalf("expected no dispatch after failed inspection, got %d", gateway.documentCalls)
	}
	if wf.State().Document.Phase != PhaseFailed {
		t.Fatalf("expected failed document phase, got %s", wf.State().Document.Phase)
	}
}

func TestSubmitDocumentPassesOverrideAndFilename(t *testing.T) {
	gateway := &gatewayFake{processResult: &domain.AnalysisResult{ReportID: "RPT-9"}}
	wf := newWorkflow(gateway, &inspectorFake{pages: 2})
	path := writeTempPDF(t)

	_, err := wf.SubmitDocument(context.Background(), path, "Aspirin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gateway.lastFilename != filepath.Base(path) {
		t.Fatalf("expected base filename, got %q", gateway.lastFilename)
	}
	if gateway.lastOverride != "Aspirin" {
		t.Fatalf("expected override passed through, got %q", gateway.lastOverride)
	}
}

func TestModeSwitchHidesInactiveError(t *testing.T) {
	gateway := &gatewayFake{processErr: errors.New("boom")}
	wf := newWorkflow(gateway, &inspectorFake{})

	_, _ = wf.SubmitManual(context.Background(), "Aspirin", "bleeding")
	if wf.State().VisibleError() == "" {
		t.Fatal("expected visible manual error")
	}

	wf.SetActiveMode(domain.ModeDocument)
	state := wf.State()
	if state.VisibleError() != "" {
		t.Fatalf("expected inactive error hidden, got %q", state.VisibleError())
	}
	if state.Manual.Phase != PhaseFailed {
		t.Fatal("expected manual failure retained behind the switch")
	}

	wf.SetActiveMode(domain.ModeManual)
	if wf.State().VisibleError() == "" {
		t.Fatal("expected manual error visible again")
	}
}

func TestSubmitExpiredSessionFailsWithoutDispatch(t *testing.T) {
	gateway := &gatewayFake{}
	sessions := &sessionFake{err: domain.ErrNotAuthenticated}
	wf := NewAnalysisWorkflow(gateway, sessions, &inspectorFake{}, nil, nil, "test")

	_, err := wf.SubmitManual(context.Background(), "Aspirin", "bleeding")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if gateway.countManual() != 0 {
		t.Fatalf("expected no dispatch, got %d", gateway.countManual())
	}
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
