package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func (c *Client) postJSON(ctx context.Context, path, token string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	return c.doJSON(ctx, http.MethodPost, path, token, "application/json", bytes.NewReader(body), out, operation)
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any, operation string) error {
	return c.doJSON(ctx, http.MethodGet, path, token, "", nil, out, operation)
}

func (c *Client) doJSON(ctx context.Context, method, path, token, contentType string, body io.Reader, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())

	start := time.Now()
	if c.metrics != nil {
		c.metrics.StartRequest()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.finish(operation, "transport_error", start)
		return fmt.Errorf("backend %s request: %w", operation, err)
	}
	defer resp.Body.Close()
	c.finish(operation, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode >= 300 {
		return newStatusError(operation, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) finish(operation, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.FinishRequest(c.service, operation, status, time.Since(start))
}

// StatusError is a definitive non-2xx answer from the backend. Detail holds
// the server-provided detail field when the body carried one.
type StatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Detail     string
	Body       string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "backend status error"
	}
	msg := e.Detail
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		return fmt.Sprintf("backend %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("backend %s status: %s: %s", e.Operation, e.Status, msg)
}

// UserMessage is the server-provided detail suitable for display, empty when
// the body carried none.
func (e *StatusError) UserMessage() string {
	if e == nil {
		return ""
	}
	return e.Detail
}

func newStatusError(operation string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Detail:     extractDetail(body),
		Body:       string(body),
	}
}

// extractDetail pulls the "detail" field out of an error body. The backend
// usually sends {"detail": "..."} but detail can also be a structured value
// or absent; only a string detail is surfaced verbatim.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	detail, ok := envelope.Detail.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(detail)
}
