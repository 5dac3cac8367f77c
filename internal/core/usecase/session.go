package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pharmawatch/ae-console/internal/core/domain"
	"github.com/pharmawatch/ae-console/internal/core/ports"
	"github.com/pharmawatch/ae-console/internal/observability/metrics"
)

// SessionGuard owns the credential lifecycle. Every protected operation goes
// through EnsureAuthenticated, which must resolve before protected work runs.
type SessionGuard struct {
	gateway ports.BackendGateway
	store   ports.CredentialStore
	logger  *slog.Logger
	metrics *metrics.ClientMetrics

	mu      sync.Mutex
	state   domain.SessionState
	session domain.Session
}

func NewSessionGuard(gateway ports.BackendGateway, store ports.CredentialStore, logger *slog.Logger, metricsSink *metrics.ClientMetrics) *SessionGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionGuard{
		gateway: gateway,
		store:   store,
		logger:  logger,
		metrics: metricsSink,
		state:   domain.SessionUnchecked,
	}
}

// Login authenticates, then persists token and identity as one atomic pair.
func (g *SessionGuard) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if username == "" || password == "" {
		return domain.Session{}, domain.WrapError(domain.ErrValidation, "login", fmt.Errorf("username and password are required"))
	}

	token, user, err := g.gateway.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}

	session := domain.Session{Token: token, User: user}
	if err := g.store.Save(session); err != nil {
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}

	g.setState(domain.SessionAuthenticated, session)
	g.logger.Info("login_succeeded", "username", username)
	return session, nil
}

func (g *SessionGuard) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, domain.WrapError(domain.ErrValidation, "signup", fmt.Errorf("username, email and password are required"))
	}
	user, err := g.gateway.Signup(ctx, username, email, password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return user, nil
}

// EnsureAuthenticated is the protected-view mount check. An absent token is a
// terminal unauthenticated state decided without any network call; a present
// token is validated against the identity endpoint, and any failure tears the
// stored pair down before reporting unauthenticated. The redirect itself is
// the user-facing signal, so teardown is silent.
func (g *SessionGuard) EnsureAuthenticated(ctx context.Context) (domain.Session, error) {
	g.setState(domain.SessionChecking, domain.Session{})

	stored, err := g.store.Load()
	if err != nil {
		g.logger.Warn("credential_load_failed", "error", err)
		g.teardown()
		return domain.Session{}, domain.WrapError(domain.ErrNotAuthenticated, "session check", err)
	}
	if stored.Token == "" {
		g.setState(domain.SessionUnauthenticated, domain.Session{})
		return domain.Session{}, domain.ErrNotAuthenticated
	}

	user, err := g.gateway.Identity(ctx, stored.Token)
	if err != nil {
		g.teardown()
		return domain.Session{}, domain.WrapError(domain.ErrNotAuthenticated, "session check", err)
	}

	session := domain.Session{Token: stored.Token, User: user}
	if err := g.store.Save(session); err != nil {
		g.logger.Warn("identity_cache_refresh_failed", "error", err)
	}
	g.setState(domain.SessionAuthenticated, session)
	return session, nil
}

// Logout clears token and identity synchronously. The caller navigates to the
// login surface with replace semantics; there is nothing to come back to.
func (g *SessionGuard) Logout() error {
	if err := g.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	g.setState(domain.SessionUnauthenticated, domain.Session{})
	g.logger.Info("logout")
	return nil
}

func (g *SessionGuard) State() domain.SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Current returns the last validated session. Empty until
// EnsureAuthenticated or Login succeeds.
func (g *SessionGuard) Current() domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

func (g *SessionGuard) setState(state domain.SessionState, session domain.Session) {
	g.mu.Lock()
	g.state = state
	g.session = session
	g.mu.Unlock()
}

func (g *SessionGuard) teardown() {
	if err := g.store.Clear(); err != nil {
		g.logger.Warn("session_teardown_failed", "error", err)
	}
	if g.metrics != nil {
		g.metrics.RecordSessionTeardown()
	}
	g.setState(domain.SessionUnauthenticated, domain.Session{})
}
