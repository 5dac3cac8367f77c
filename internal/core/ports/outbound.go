package ports

import (
	"context"
	"io"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

// BackendGateway is the HTTP surface of the analysis engine, consumed as an
// opaque collaborator. Implementations attach the bearer token from the
// session they are given and never place credentials in URLs.
type BackendGateway interface {
	Login(ctx context.Context, username, password string) (token string, user *domain.User, err error)
	Signup(ctx context.Context, username, email, password string) (*domain.User, error)
	Identity(ctx context.Context, token string) (*domain.User, error)

	ProcessManual(ctx context.Context, token string, req domain.ManualRequest) (*domain.AnalysisResult, error)
	ProcessDocument(ctx context.Context, token string, filename string, file io.Reader, drugnameOverride string) (*domain.AnalysisResult, error)

	SuggestDrugs(ctx context.Context, token, prefix string, limit int) ([]string, error)
	AuditLogs(ctx context.Context, token string, query domain.AuditQuery) ([]domain.AuditRecord, error)
	Healthz(ctx context.Context) (*domain.Health, error)
}

// CredentialStore persists the bearer token and cached identity between runs.
// Save and Clear are atomic over the pair.
type CredentialStore interface {
	Load() (domain.Session, error)
	Save(session domain.Session) error
	Clear() error
}

// DocumentInspector validates a candidate upload before it leaves the client.
type DocumentInspector interface {
	Inspect(path string) (pages int, err error)
}

// ArtifactWriter persists export artifacts produced from an aggregated result.
type ArtifactWriter interface {
	WriteText(filename string, content string) (path string, err error)
	WriteWorkbook(filename string, result *domain.AnalysisResult, similars []domain.SimilarEvent) (path string, err error)
}
