// Package client talks to the metrics HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/internal/domain/types"
	"github.com/okian/locmetrics/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Client is a thin typed wrapper over the HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EventAck is the server's answer to an event submission.
type EventAck struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
}

// eventPayload is the request body of the event endpoints. An empty
// timestamp lets the server stamp the event.
type eventPayload struct {
	Source        model.Source   `json:"source"`
	Lines         int            `json:"lines"`
	FilePath      string         `json:"file_path"`
	DeveloperID   string         `json:"developer_id"`
	Timestamp     string         `json:"timestamp,omitempty"`
	Metadata      model.Metadata `json:"metadata,omitempty"`
	Language      string         `json:"language,omitempty"`
	TestFramework string         `json:"test_framework,omitempty"`
	Coverage      *float64       `json:"coverage,omitempty"`
	DocType       string         `json:"doc_type,omitempty"`
}

// SubmitEvent posts e to the endpoint of its category.
func (c *Client) SubmitEvent(ctx context.Context, e model.Event) (EventAck, error) {
	if !e.Category.Valid() {
		return EventAck{}, fmt.Errorf("%w: unknown category %q", ErrRequest, e.Category)
	}
	payload := eventPayload{
		Source:        e.Source,
		Lines:         e.Lines,
		FilePath:      e.FilePath,
		DeveloperID:   e.DeveloperID,
		Metadata:      e.Metadata,
		Language:      e.Language,
		TestFramework: e.TestFramework,
		Coverage:      e.Coverage,
		DocType:       e.DocType,
	}
	if !e.Timestamp.IsZero() {
		payload.Timestamp = e.Timestamp.Format(time.RFC3339Nano)
	}

	var ack EventAck
	err := c.do(ctx, http.MethodPost, "/api/events/"+string(e.Category), nil, payload, &ack)
	return ack, err
}

// DeveloperReport fetches the report of one developer.
func (c *Client) DeveloperReport(ctx context.Context, developerID string, start, end *time.Time) (types.DeveloperReport, error) {
	var r types.DeveloperReport
	err := c.do(ctx, http.MethodGet, "/api/metrics/developer/"+url.PathEscape(developerID), periodQuery(start, end), nil, &r)
	return r, err
}

// TeamReport fetches the team report and leaderboard.
func (c *Client) TeamReport(ctx context.Context, start, end *time.Time) (types.TeamReport, error) {
	var r types.TeamReport
	err := c.do(ctx, http.MethodGet, "/api/metrics/team", periodQuery(start, end), nil, &r)
	return r, err
}

// Trends fetches daily metrics. An empty developerID covers the team.
func (c *Client) Trends(ctx context.Context, developerID string, days int) (types.TrendsReport, error) {
	q := url.Values{}
	if developerID != "" {
		q.Set("developer_id", developerID)
	}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var r types.TrendsReport
	err := c.do(ctx, http.MethodGet, "/api/metrics/trends", q, nil, &r)
	return r, err
}

// FeatureReport fetches the most recently updated features.
func (c *Client) FeatureReport(ctx context.Context, limit int) (types.FeatureReport, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var r types.FeatureReport
	err := c.do(ctx, http.MethodGet, "/api/metrics/features", q, nil, &r)
	return r, err
}

// Health checks that the server answers /api/metrics/health.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]string
	if err := c.do(ctx, http.MethodGet, "/api/metrics/health", nil, nil, &out); err != nil {
		return err
	}
	if out["status"] != "healthy" {
		return fmt.Errorf("%w: status %q", ErrRequest, out["status"])
	}
	return nil
}

func periodQuery(start, end *time.Time) url.Values {
	q := url.Values{}
	if start != nil {
		q.Set("start_date", start.Format(time.RFC3339Nano))
	}
	if end != nil {
		q.Set("end_date", end.Format(time.RFC3339Nano))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %w", ErrRequest, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrRequest, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug(ctx, "api call",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrRequest, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Code, apiErr.Message = body.Code, body.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrRequest, err)
	}
	return nil
}
