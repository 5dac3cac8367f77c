package ports

import (
	"context"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

// SessionManager is the inbound contract for the session guard.
type SessionManager interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	Signup(ctx context.Context, username, email, password string) (*domain.User, error)
	EnsureAuthenticated(ctx context.Context) (domain.Session, error)
	Logout() error
	State() domain.SessionState
}

// AnalysisSubmitter is the inbound contract for the dual-mode intake flow.
type AnalysisSubmitter interface {
	SubmitManual(ctx context.Context, drugname, adverseEvent string) (*domain.AnalysisResult, error)
	SubmitDocument(ctx context.Context, path, drugnameOverride string) (*domain.AnalysisResult, error)
}

// SuggestionProvider is the inbound contract for drug-name autocomplete.
type SuggestionProvider interface {
	SetInput(ctx context.Context, value string)
	Select(name string) string
	Current() domain.SuggestionSet
}

// AuditViewer is the inbound contract for the read-only history surface.
type AuditViewer interface {
	Fetch(ctx context.Context, query domain.AuditQuery) ([]domain.AuditRecord, error)
}
