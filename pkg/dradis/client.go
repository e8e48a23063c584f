package dradis

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
	"github.com/dradis-tools/dradis-mcp/pkg/httpclient"
	"github.com/dradis-tools/dradis-mcp/pkg/iohelper"
	"github.com/dradis-tools/dradis-mcp/pkg/jsonutil"
	"github.com/dradis-tools/dradis-mcp/pkg/metrics"
)

// Client talks to a single Dradis Pro instance.
type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	logger     *slog.Logger
	fieldOrder []string
	recorder   *metrics.Recorder
	tracer     trace.Tracer
}

// Options configures optional Client collaborators.
type Options struct {
	// HTTPClient overrides the shared default client (tests).
	HTTPClient *http.Client

	// Logger for structured logging (default: slog.Default()).
	Logger *slog.Logger

	// Recorder receives per-request metrics. Nil disables recording.
	Recorder *metrics.Recorder
}

// NewClient creates a Dradis API client. baseURL must not end in a slash
// (config.Load guarantees this). fieldOrder is the configured vulnerability
// field list; it fixes the codec's encoding order.
func NewClient(baseURL, token string, fieldOrder []string, opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = httpclient.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		http:       httpc,
		logger:     logger,
		fieldOrder: fieldOrder,
		recorder:   opts.Recorder,
		tracer:     otel.Tracer(defaults.ToolName),
	}
}

// FieldOrder returns the configured vulnerability field list.
func (c *Client) FieldOrder() []string { return c.fieldOrder }

// request performs one HTTP round-trip against the API. projectID > 0 adds
// the project header. payload (if non-nil) is marshaled as the JSON body.
// On 2xx the response body is decoded into out (if non-nil). Non-2xx
// responses become *RequestError; transport failures become *NetworkError.
func (c *Client) request(ctx context.Context, method, endpoint string, projectID int, payload, out any) error {
	fullURL := c.baseURL + endpoint

	ctx, span := c.tracer.Start(ctx, method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", fullURL),
			attribute.Int("dradis.project_id", projectID),
		))
	defer span.End()

	var body *bytes.Reader
	if payload != nil {
		data, err := jsonutil.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Authorization", "Token token="+c.token)
	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
	req.Header.Set("User-Agent", defaults.ToolName+"/"+defaults.Version)
	if projectID > 0 {
		req.Header.Set(defaults.ProjectHeader, strconv.Itoa(projectID))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)

	resource := resourceLabel(endpoint)
	if err != nil {
		c.recorder.ObserveRequest(resource, method, 0, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "network failure")
		netErr := &NetworkError{URL: fullURL, Err: err}
		c.logger.Error("request failed",
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.String("error", err.Error()))
		return netErr
	}
	defer iohelper.DrainAndClose(resp.Body)

	c.recorder.ObserveRequest(resource, method, resp.StatusCode, elapsed)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := iohelper.ReadBodyDefault(resp.Body)
	if err != nil {
		return &NetworkError{URL: fullURL, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		reqErr := &RequestError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			URL:        fullURL,
			Body:       errorBody(raw),
		}
		c.logger.Warn("API error",
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.Int("status", resp.StatusCode))
		return reqErr
	}

	c.logger.Debug("API call",
		slog.String("method", method),
		slog.String("url", fullURL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", elapsed))

	if out == nil {
		return nil
	}
	if err := jsonutil.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", fullURL, err)
	}
	return nil
}

// errorBody renders a non-2xx response body for error messages: the
// original JSON when the body is valid JSON, raw text otherwise.
func errorBody(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if jsonutil.Valid(trimmed) {
		return string(trimmed)
	}
	return string(raw)
}

// resourceLabel maps an endpoint path to its metrics label: the first
// path segment after the API prefix, with trailing ids and query dropped.
func resourceLabel(endpoint string) string {
	path := strings.TrimPrefix(endpoint, defaults.APIPrefix)
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = "unknown"
	}
	return path
}
