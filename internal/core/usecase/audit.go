package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pharmawatch/ae-console/internal/core/domain"
	"github.com/pharmawatch/ae-console/internal/core/ports"
)

// AuditLog is the read-only history surface: one fetch per view, errors
// surfaced to the caller, no local state.
type AuditLog struct {
	gateway  ports.BackendGateway
	sessions ports.SessionManager
	logger   *slog.Logger
}

func NewAuditLog(gateway ports.BackendGateway, sessions ports.SessionManager, logger *slog.Logger) *AuditLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLog{gateway: gateway, sessions: sessions, logger: logger}
}

func (a *AuditLog) Fetch(ctx context.Context, query domain.AuditQuery) ([]domain.AuditRecord, error) {
	session, err := a.sessions.EnsureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	records, err := a.gateway.AuditLogs(ctx, session.Token, query)
	if err != nil {
		a.logger.Error("audit_fetch_failed", "error", err)
		return nil, fmt.Errorf("audit fetch: %w", err)
	}
	a.logger.Info("audit_fetched", "count", len(records))
	return records, nil
}
