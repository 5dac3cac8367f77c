// Package backend is the HTTP gateway to the pharmacovigilance analysis
// engine. The engine is an opaque collaborator; this package only shapes
// requests, attaches the bearer credential, and decodes typed responses.
package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pharmawatch/ae-console/internal/core/domain"
	"github.com/pharmawatch/ae-console/internal/observability/metrics"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.ClientMetrics
	service    string
}

// New builds a gateway client. A zero timeout means requests hang until the
// server answers or the context is cancelled; that is the baseline contract.
// metricsSink may be nil.
func New(baseURL string, timeout time.Duration, service string, metricsSink *metrics.ClientMetrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metricsSink,
		service:    service,
	}
}

type loginResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

func (c *Client) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	payload := map[string]string{
		"username": username,
		"password": password,
	}
	var resp loginResponse
	if err := c.postJSON(ctx, "/api/auth/login", "", payload, &resp, "login"); err != nil {
		return "", nil, err
	}
	if resp.AccessToken == "" {
		return "", nil, fmt.Errorf("login response missing access token")
	}
	return resp.AccessToken, resp.User, nil
}

type signupResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

func (c *Client) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	var resp signupResponse
	if err := c.postJSON(ctx, "/api/auth/signup", "", payload, &resp, "signup"); err != nil {
		return nil, err
	}
	return resp.User, nil
}

type identityResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

// Identity validates the token against the identity endpoint. The token
// travels only in the Authorization header.
func (c *Client) Identity(ctx context.Context, token string) (*domain.User, error) {
	var resp identityResponse
	if err := c.getJSON(ctx, "/api/auth/me", token, &resp, "identity"); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("identity response missing user")
	}
	return resp.User, nil
}

func (c *Client) ProcessManual(ctx context.Context, token string, req domain.ManualRequest) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := c.postJSON(ctx, "/api/process", token, req, &result, "process_manual"); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessDocument submits the PDF as a multipart body with the optional
// drug-name override as a sibling form field.
func (c *Client) ProcessDocument(ctx context.Context, token, filename string, file io.Reader, drugnameOverride string) (*domain.AnalysisResult, error) {
	body := &strings.Builder{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file into multipart body: %w", err)
	}
	if drugnameOverride != "" {
		if err := writer.WriteField("drugname", drugnameOverride); err != nil {
			return nil, fmt.Errorf("write drugname field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	var result domain.AnalysisResult
	err = c.doJSON(ctx, http.MethodPost, "/api/process-pdf", token, writer.FormDataContentType(), strings.NewReader(body.String()), &result, "process_document")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type suggestResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

func (c *Client) SuggestDrugs(ctx context.Context, token, prefix string, limit int) ([]string, error) {
	values := url.Values{}
	values.Set("q", prefix)
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	var resp suggestResponse
	if err := c.getJSON(ctx, "/api/drugs/suggest?"+values.Encode(), token, &resp, "suggest"); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

type auditResponse struct {
	Total   int                  `json:"total"`
	Records []domain.AuditRecord `json:"records"`
}

func (c *Client) AuditLogs(ctx context.Context, token string, query domain.AuditQuery) ([]domain.AuditRecord, error) {
	values := url.Values{}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}
	if query.RiskLevel != "" {
		values.Set("risk_level", string(query.RiskLevel))
	}
	if query.EscalatedOnly {
		values.Set("escalated_only", "true")
	}
	path := "/api/audit"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var resp auditResponse
	if err := c.getJSON(ctx, path, token, &resp, "audit"); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func (c *Client) Healthz(ctx context.Context) (*domain.Health, error) {
	var health domain.Health
	if err := c.getJSON(ctx, "/api/health", "", &health, "health"); err != nil {
		return nil, err
	}
	return &health, nil
}
