package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

type gatewayFake struct {
	mu sync.Mutex

	loginToken string
	loginUser  *domain.User
	loginErr   error

	signupUser *domain.User
	signupErr  error

	identityUser  *domain.User
	identityErr   error
	identityCalls int

	processResult *domain.AnalysisResult
	processErr    error
	manualCalls   int
	documentCalls int
	lastManual    domain.ManualRequest
	lastFilename  string
	lastOverride  string
	processGate   chan struct{}

	suggestFn    func(prefix string) ([]string, error)
	suggestCalls []string

	auditRecords []domain.AuditRecord
	auditErr     error
	lastQuery    domain.AuditQuery

	health    *domain.Health
	healthErr error
}

func (f *gatewayFake) Login(context.Context, string, string) (string, *domain.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func (f *gatewayFake) Signup(context.Context, string, string, string) (*domain.User, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return f.signupUser, nil
}

func (f *gatewayFake) Identity(context.Context, string) (*domain.User, error) {
	f.mu.Lock()
	f.identityCalls++
	f.mu.Unlock()
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return f.identityUser, nil
}

func (f *gatewayFake) ProcessManual(_ context.Context, _ string, req domain.ManualRequest) (*domain.AnalysisResult, error) {
	f.mu.Lock()
	f.manualCalls++
	f.lastManual = req
	gate := f.processGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.processResult, nil
}

func (f *gatewayFake) ProcessDocument(_ context.Context, _ string, filename string, file io.Reader, override string) (*domain.AnalysisResult, error) {
	f.mu.Lock()
	f.documentCalls++
	f.lastFilename = filename
	f.lastOverride = override
	f.mu.Unlock()
	if file != nil {
		_, _ = io.Copy(io.Discard, file)
	}
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.processResult, nil
}

func (f *gatewayFake) SuggestDrugs(_ context.Context, _ string, prefix string, _ int) ([]string, error) {
	f.mu.Lock()
	f.suggestCalls = append(f.suggestCalls, prefix)
	fn := f.suggestFn
	f.mu.Unlock()
	if fn != nil {
		return fn(prefix)
	}
	return nil, nil
}

func (f *gatewayFake) AuditLogs(_ context.Context, _ string, query domain.AuditQuery) ([]domain.AuditRecord, error) {
	f.mu.Lock()
	f.lastQuery = query
	f.mu.Unlock()
	if f.auditErr != nil {
		return nil, f.auditErr
	}
	return f.auditRecords, nil
}

func (f *gatewayFake) Healthz(context.Context) (*domain.Health, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return f.health, nil
}

func (f *gatewayFake) countManual() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.manualCalls
}

type storeFake struct {
	mu      sync.Mutex
	session domain.Session
	loadErr error
	saveErr error
	saved   []domain.Session
	clears  int
}

func (f *storeFake) Load() (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return domain.Session{}, f.loadErr
	}
	return f.session, nil
}

func (f *storeFake) Save(session domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.session = session
	f.saved = append(f.saved, session)
	return nil
}

func (f *storeFake) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.session = domain.Session{}
	return nil
}

type sessionFake struct {
	session domain.Session
	err     error
	calls   int
}

func (f *sessionFake) Login(context.Context, string, string) (domain.Session, error) {
	return f.session, f.err
}

func (f *sessionFake) Signup(context.Context, string, string, string) (*domain.User, error) {
	return f.session.User, f.err
}

func (f *sessionFake) EnsureAuthenticated(context.Context) (domain.Session, error) {
	f.calls++
	if f.err != nil {
		return domain.Session{}, f.err
	}
	return f.session, nil
}

func (f *sessionFake) Logout() error { return nil }

func (f *sessionFake) State() domain.SessionState { return domain.SessionAuthenticated }

type inspectorFake struct {
	pages int
	err   error
	paths []string
}

func (f *inspectorFake) Inspect(path string) (int, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return 0, f.err
	}
	return f.pages, nil
}

type writerFake struct {
	texts     map[string]string
	workbooks map[string]*domain.AnalysisResult
	err       error
}

func newWriterFake() *writerFake {
	return &writerFake{
		texts:     make(map[string]string),
		workbooks: make(map[string]*domain.AnalysisResult),
	}
}

func (f *writerFake) WriteText(filename, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.texts[filename] = content
	return "/exports/" + filename, nil
}

func (f *writerFake) WriteWorkbook(filename string, result *domain.AnalysisResult, _ []domain.SimilarEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.workbooks[filename] = result
	return "/exports/" + filename, nil
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func floatPtr(v float64) *float64 { return &v }
