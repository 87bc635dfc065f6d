// Package apiclient talks to the external document analysis API.
//
// Every call (upload, verify, analyze, chat, summarize, health) goes through the
// same retry loop: a per-attempt timeout, exponential backoff between attempts,
// and a RequestError wrapping the last failure once the budget is spent.
// Calls carry no idempotency key, so a retried upload may be stored twice by the backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docverify/internal/analysis/models"
	"docverify/internal/platform/metrics"
)

// Endpoints of the external API.
const (
	EndpointHealth              = "/health"
	EndpointUpload              = "/upload"
	EndpointVerify              = "/verify"
	EndpointAnalyzeAlterability = "/analyze-alterability"
	EndpointChat                = "/chat"
	EndpointSummarize           = "/summarize"
)

const (
	DefaultTimeout       = 60 * time.Second
	DefaultUploadTimeout = 30 * time.Second
)

// Client is safe for concurrent use.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	policy        Policy
	timeout       time.Duration
	uploadTimeout time.Duration
	sleep         Sleeper
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithTimeouts sets the per-attempt timeout for regular calls and for uploads.
// Zero values keep the defaults.
func WithTimeouts(timeout, upload time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
		if upload > 0 {
			c.uploadTimeout = upload
		}
	}
}

// WithSleeper replaces the backoff wait; tests use it to avoid real delays.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer("docverify/apiclient")
		}
	}
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		httpClient:    &http.Client{},
		baseURL:       strings.TrimSuffix(u.String(), "/"),
		policy:        DefaultPolicy(),
		timeout:       DefaultTimeout,
		uploadTimeout: DefaultUploadTimeout,
		sleep:         sleepContext,
		logger:        slog.New(slog.DiscardHandler),
		tracer:        otel.Tracer("docverify/apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call describes one logical request; body is replayed on every attempt.
type call struct {
	endpoint    string
	method      string
	contentType string
	body        []byte
	timeout     time.Duration
}

func (c *Client) jsonCall(endpoint string, payload any) (call, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return call{}, fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	return call{
		endpoint:    endpoint,
		method:      http.MethodPost,
		contentType: "application/json",
		body:        body,
		timeout:     c.timeout,
	}, nil
}

// do runs the retry loop. The parent context aborts it immediately.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	ctx, span := c.tracer.Start(ctx, "apiclient "+cl.endpoint, trace.WithAttributes(
		attribute.String("http.method", cl.method),
		attribute.String("apiclient.endpoint", cl.endpoint),
	))
	defer span.End()

	attempts := c.policy.Attempts()
	delays := c.policy.BackOff(ctx)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		c.logger.DebugContext(ctx, "outbound request",
			"endpoint", cl.endpoint,
			"attempt", attempt+1,
			"max_attempts", attempts,
		)

		start := time.Now()
		err := c.attempt(ctx, cl, out)
		c.metrics.ObserveAttempt(cl.endpoint, time.Since(start), err)
		if err == nil {
			span.SetAttributes(attribute.Int("apiclient.attempts", attempt+1))
			return nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return c.fail(span, &RequestError{Endpoint: cl.endpoint, Attempts: attempt + 1, Err: fmt.Errorf("%w: %w", ctxErr, lastErr)})
		}

		c.logger.WarnContext(ctx, "outbound attempt failed",
			"endpoint", cl.endpoint,
			"attempt", attempt+1,
			"max_attempts", attempts,
			"timeout", IsTimeout(err),
			"error", err,
		)
		delay := delays.NextBackOff()
		if delay == backoff.Stop {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return c.fail(span, &RequestError{Endpoint: cl.endpoint, Attempts: attempt + 1, Err: fmt.Errorf("%w: %w", ctxErr, lastErr)})
			}
			break
		}
		c.metrics.IncrementRetry(cl.endpoint)
		c.logger.InfoContext(ctx, "retrying outbound request",
			"endpoint", cl.endpoint,
			"delay", delay.String(),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return c.fail(span, &RequestError{Endpoint: cl.endpoint, Attempts: attempt + 1, Err: fmt.Errorf("%w: %w", err, lastErr)})
		}
	}

	c.logger.ErrorContext(ctx, "outbound request gave up",
		"endpoint", cl.endpoint,
		"attempts", attempts,
		"error", lastErr,
	)
	return c.fail(span, &RequestError{Endpoint: cl.endpoint, Attempts: attempts, Err: lastErr})
}

func (c *Client) fail(span trace.Span, err *RequestError) error {
	span.SetAttributes(attribute.Int("apiclient.attempts", err.Attempts))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (c *Client) attempt(parent context.Context, cl call, out any) error {
	ctx, cancel := context.WithTimeout(parent, cl.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classify(parent, ctx, cl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.classify(parent, ctx, cl, fmt.Errorf("decode %s response: %w", cl.endpoint, err))
	}
	return nil
}

// classify marks failures caused by the per-attempt deadline (not the caller's) as timeouts.
func (c *Client) classify(parent, attemptCtx context.Context, cl call, err error) error {
	if parent.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Endpoint: cl.endpoint, Timeout: cl.timeout.String(), Err: err}
	}
	return err
}

// Upload sends the file as multipart field "file" and returns the backend's file id.
func (c *Client) Upload(ctx context.Context, name, contentType string, content []byte) (models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return models.UploadResult{}, fmt.Errorf("write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.UploadResult{}, fmt.Errorf("close multipart writer: %w", err)
	}

	c.logger.InfoContext(ctx, "uploading file",
		"filename", name,
		"size", len(content),
		"content_type", contentType,
	)

	var res models.UploadResult
	err = c.do(ctx, call{
		endpoint:    EndpointUpload,
		method:      http.MethodPost,
		contentType: mw.FormDataContentType(),
		body:        buf.Bytes(),
		timeout:     c.uploadTimeout,
	}, &res)
	if err != nil {
		return models.UploadResult{}, err
	}
	if res.FileID == "" {
		return models.UploadResult{}, fmt.Errorf("upload response missing file_id")
	}
	return res, nil
}

func (c *Client) Verify(ctx context.Context, fileID, documentType string) (models.VerificationResult, error) {
	var res models.VerificationResult
	cl, err := c.jsonCall(EndpointVerify, models.VerifyRequest{FileID: fileID, DocumentType: documentType})
	if err != nil {
		return res, err
	}
	err = c.do(ctx, cl, &res)
	return res, err
}

func (c *Client) AnalyzeAlterability(ctx context.Context, fileID string) (models.AlterabilityAnalysis, error) {
	var res models.AlterabilityAnalysis
	cl, err := c.jsonCall(EndpointAnalyzeAlterability, models.FileRequest{FileID: fileID})
	if err != nil {
		return res, err
	}
	err = c.do(ctx, cl, &res)
	return res, err
}

func (c *Client) Chat(ctx context.Context, fileID, message string, history []models.ChatMessage) (models.ChatResponse, error) {
	var res models.ChatResponse
	if history == nil {
		history = []models.ChatMessage{}
	}
	cl, err := c.jsonCall(EndpointChat, models.ChatRequest{FileID: fileID, Message: message, ChatHistory: history})
	if err != nil {
		return res, err
	}
	err = c.do(ctx, cl, &res)
	return res, err
}

func (c *Client) Summarize(ctx context.Context, fileID string) (models.Summary, error) {
	var res models.Summary
	cl, err := c.jsonCall(EndpointSummarize, models.FileRequest{FileID: fileID})
	if err != nil {
		return res, err
	}
	err = c.do(ctx, cl, &res)
	return res, err
}

func (c *Client) Health(ctx context.Context) (models.Health, error) {
	var res models.Health
	err := c.do(ctx, call{
		endpoint: EndpointHealth,
		method:   http.MethodGet,
		timeout:  c.timeout,
	}, &res)
	return res, err
}
