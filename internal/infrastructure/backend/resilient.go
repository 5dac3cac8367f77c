package backend

import (
	"context"
	"io"

	"github.com/pharmawatch/ae-console/internal/core/domain"
	"github.com/pharmawatch/ae-console/internal/core/ports"
	"github.com/pharmawatch/ae-console/internal/infrastructure/resilience"
)

// ResilientGateway wraps a gateway with bounded retries and per-operation
// circuit breakers for the non-critical read paths. Authentication and
// analysis submissions pass through untouched: a duplicate submission creates
// a duplicate case record, and a failed identity check must fail exactly once.
type ResilientGateway struct {
	inner ports.BackendGateway
	exec  *resilience.Executor
}

func NewResilientGateway(inner ports.BackendGateway, exec *resilience.Executor) *ResilientGateway {
	return &ResilientGateway{inner: inner, exec: exec}
}

func (g *ResilientGateway) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return g.inner.Login(ctx, username, password)
}

func (g *ResilientGateway) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	return g.inner.Signup(ctx, username, email, password)
}

func (g *ResilientGateway) Identity(ctx context.Context, token string) (*domain.User, error) {
	return g.inner.Identity(ctx, token)
}

func (g *ResilientGateway) ProcessManual(ctx context.Context, token string, req domain.ManualRequest) (*domain.AnalysisResult, error) {
	return g.inner.ProcessManual(ctx, token, req)
}

func (g *ResilientGateway) ProcessDocument(ctx context.Context, token, filename string, file io.Reader, drugnameOverride string) (*domain.AnalysisResult, error) {
	return g.inner.ProcessDocument(ctx, token, filename, file, drugnameOverride)
}

func (g *ResilientGateway) SuggestDrugs(ctx context.Context, token, prefix string, limit int) ([]string, error) {
	var suggestions []string
	err := g.exec.Execute(ctx, "suggest_drugs", func(ctx context.Context) error {
		var innerErr error
		suggestions, innerErr = g.inner.SuggestDrugs(ctx, token, prefix, limit)
		return innerErr
	}, ClassifyError)
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (g *ResilientGateway) AuditLogs(ctx context.Context, token string, query domain.AuditQuery) ([]domain.AuditRecord, error) {
	var records []domain.AuditRecord
	err := g.exec.Execute(ctx, "audit_logs", func(ctx context.Context) error {
		var innerErr error
		records, innerErr = g.inner.AuditLogs(ctx, token, query)
		return innerErr
	}, ClassifyError)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (g *ResilientGateway) Healthz(ctx context.Context) (*domain.Health, error) {
	var health *domain.Health
	err := g.exec.Execute(ctx, "healthz", func(ctx context.Context) error {
		var innerErr error
		health, innerErr = g.inner.Healthz(ctx)
		return innerErr
	}, ClassifyError)
	if err != nil {
		return nil, err
	}
	return health, nil
}
