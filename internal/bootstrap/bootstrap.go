package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pharmawatch/ae-console/internal/config"
	"github.com/pharmawatch/ae-console/internal/core/ports"
	"github.com/pharmawatch/ae-console/internal/core/usecase"
	"github.com/pharmawatch/ae-console/internal/infrastructure/artifact"
	"github.com/pharmawatch/ae-console/internal/infrastructure/backend"
	"github.com/pharmawatch/ae-console/internal/infrastructure/credstore"
	"github.com/pharmawatch/ae-console/internal/infrastructure/document/pdfcheck"
	"github.com/pharmawatch/ae-console/internal/infrastructure/resilience"
	"github.com/pharmawatch/ae-console/internal/observability/logging"
	"github.com/pharmawatch/ae-console/internal/observability/metrics"
)

const serviceName = "ae-console"

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.ClientMetrics

	Gateway ports.BackendGateway

	Sessions    *usecase.SessionGuard
	Workflow    *usecase.AnalysisWorkflow
	Suggestions *usecase.SuggestionController
	Audit       *usecase.AuditLog
	Exporter    *usecase.CaseExporter
}

func New(cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	clientMetrics := metrics.NewClientMetrics(serviceName)

	raw := backend.New(cfg.APIBaseURL, cfg.HTTPTimeout, serviceName, clientMetrics)
	exec := resilience.NewExecutor(resilience.DefaultConfig())
	gateway := backend.NewResilientGateway(raw, exec)

	store, err := credstore.New(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("init credential store: %w", err)
	}

	writer, err := artifact.New(cfg.ExportDir)
	if err != nil {
		return nil, fmt.Errorf("init export dir: %w", err)
	}

	sessions := usecase.NewSessionGuard(gateway, store, logger, clientMetrics)
	inspector := pdfcheck.New()
	workflow := usecase.NewAnalysisWorkflow(gateway, sessions, inspector, logger, clientMetrics, serviceName)

	var minInterval rate.Limit = rate.Inf
	if cfg.SuggestMinInterval > 0 {
		minInterval = rate.Every(cfg.SuggestMinInterval)
	}
	suggestions := usecase.NewSuggestionController(
		gateway,
		func() string { return sessions.Current().Token },
		cfg.SuggestLimit,
		minInterval,
		logger,
		clientMetrics,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: clientMetrics,

		Gateway: gateway,

		Sessions:    sessions,
		Workflow:    workflow,
		Suggestions: suggestions,
		Audit:       usecase.NewAuditLog(gateway, sessions, logger),
		Exporter:    usecase.NewCaseExporter(writer, logger, clientMetrics, serviceName),
	}, nil
}

// ServeMetrics blocks on the Prometheus listener. Callers run it in a
// goroutine; it is skipped entirely when no port is configured.
func (a *App) ServeMetrics() error {
	if a.Config.MetricsPort == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	addr := ":" + a.Config.MetricsPort
	a.Logger.Info("metrics_listener_started", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
