package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/pharmawatch/ae-console/internal/core/domain"
	"github.com/pharmawatch/ae-console/internal/core/ports"
	"github.com/pharmawatch/ae-console/internal/observability/metrics"
)

// minPrefixLength is the shortest input that triggers a fetch. Anything
// shorter clears the panel immediately.
const minPrefixLength = 2

// SuggestionController races keystrokes against in-flight autocomplete
// fetches. Correctness rule: the visible suggestion set always belongs to the
// current input value. A response for a superseded value is discarded, no
// matter when it arrives.
type SuggestionController struct {
	gateway ports.BackendGateway
	token   func() string
	logger  *slog.Logger
	metrics *metrics.ClientMetrics
	limiter *rate.Limiter
	limit   int

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
	set     domain.SuggestionSet

	// onUpdate fires after every state change, outside the lock. Set once
	// before use; nil is fine.
	onUpdate func(domain.SuggestionSet)
}

func NewSuggestionController(gateway ports.BackendGateway, token func() string, limit int, minInterval rate.Limit, logger *slog.Logger, metricsSink *metrics.ClientMetrics) *SuggestionController {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 10
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &SuggestionController{
		gateway: gateway,
		token:   token,
		logger:  logger,
		metrics: metricsSink,
		limiter: rate.NewLimiter(minInterval, 1),
		limit:   limit,
	}
}

// SetOnUpdate registers a listener for suggestion-set changes. Must be called
// before the first SetInput.
func (c *SuggestionController) SetOnUpdate(fn func(domain.SuggestionSet)) {
	c.onUpdate = fn
}

// SetInput records a new input value. Any in-flight fetch for a previous
// value is cancelled, and a short value hides the panel without a request.
func (c *SuggestionController) SetInput(ctx context.Context, value string) {
	value = strings.TrimSpace(value)

	c.mu.Lock()
	c.current = value
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if utf8.RuneCountInString(value) < minPrefixLength {
		c.set = domain.SuggestionSet{Query: value}
		set := c.set
		c.mu.Unlock()
		c.notify(set)
		return
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go c.fetch(fetchCtx, value)
}

// Select closes the panel and returns the chosen name verbatim for the
// caller to place into the input field.
func (c *SuggestionController) Select(name string) string {
	c.mu.Lock()
	c.current = name
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.set = domain.SuggestionSet{Query: name}
	set := c.set
	c.mu.Unlock()
	c.notify(set)
	return name
}

// Current returns the suggestion set as of now. The slice is copied.
func (c *SuggestionController) Current() domain.SuggestionSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.set
	if set.Suggestions != nil {
		copied := make([]string, len(set.Suggestions))
		copy(copied, set.Suggestions)
		set.Suggestions = copied
	}
	return set
}

func (c *SuggestionController) fetch(ctx context.Context, value string) {
	if err := c.limiter.Wait(ctx); err != nil {
		return
	}

	suggestions, err := c.gateway.SuggestDrugs(ctx, c.token(), value, c.limit)

	c.mu.Lock()
	if c.current != value {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.RecordSuggestDiscard()
		}
		return
	}
	if err != nil {
		// Autocomplete is assistive; failures clear the panel silently.
		c.set = domain.SuggestionSet{Query: value}
		set := c.set
		c.mu.Unlock()
		c.logger.Debug("suggestion_fetch_failed", "prefix", value, "error", err)
		c.notify(set)
		return
	}
	c.set = domain.SuggestionSet{Query: value, Suggestions: suggestions, Visible: len(suggestions) > 0}
	set := c.set
	c.mu.Unlock()
	c.notify(set)
}

func (c *SuggestionController) notify(set domain.SuggestionSet) {
	if c.onUpdate != nil {
		c.onUpdate(set)
	}
}
