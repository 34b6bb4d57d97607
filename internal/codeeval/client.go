// Package codeeval talks to the out-of-process code evaluation service.
//
// Chunks are evaluated inside one lazily created session, strictly one at a
// time and in the order they are submitted, since a chunk may depend on the
// interpreter state left by the previous ones.
package codeeval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sentinel errors for code evaluation.
var (
	ErrSessionCreate = errors.New("could not create an evaluation session")
	ErrEvaluation    = errors.New("code chunk evaluation failed")
	ErrNotReady      = errors.New("evaluator not ready")
)

// Defaults for readiness polling.
const (
	DefaultURL          = "http://127.0.0.1:5000"
	DefaultPingAttempts = 10
	DefaultPingDelay    = time.Second
)

// maxResponseBytes caps evaluator responses.
const maxResponseBytes = 16 << 20

// Evaluator evaluates code chunks.
type Evaluator interface {
	Evaluate(ctx context.Context, src string) (Result, error)
}

// Compile-time interface check.
var _ Evaluator = (*Client)(nil)

// Result is the value and type name of an evaluated expression.
type Result struct {
	Value string
	Type  string
}

// String renders the result for embedding in a document. Unknown types
// render as a diagnostic instead of failing.
func (r Result) String() string {
	switch r.Type {
	case "str":
		return r.Value
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(r.Value), 10, 64)
		if err != nil {
			return fmt.Sprintf("Invalid int: '%s'", r.Value)
		}
		return strconv.FormatInt(n, 10)
	default:
		return fmt.Sprintf("Unknown type: '%s'", r.Type)
	}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithPing sets the readiness polling budget.
func WithPing(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.pingAttempts = attempts
		}
		if delay >= 0 {
			c.pingDelay = delay
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client is an HTTP client for the evaluation service.
type Client struct {
	base         string
	http         *http.Client
	pingAttempts int
	pingDelay    time.Duration
	log          *zap.SugaredLogger

	mu     sync.Mutex
	sid    string
	chunks int
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		base:         strings.TrimSuffix(baseURL, "/"),
		http:         &http.Client{Timeout: 60 * time.Second},
		pingAttempts: DefaultPingAttempts,
		pingDelay:    DefaultPingDelay,
		log:          zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the service base URL.
func (c *Client) URL() string {
	return c.base
}

type response struct {
	Result     string          `json:"result"`
	SID        string          `json:"sid"`
	ExprResult json.RawMessage `json:"expr_result"`
	ExprType   string          `json:"expr_type"`
	Error      string          `json:"error"`
	Reply      string          `json:"reply"`
}

type evalRequest struct {
	SID string `json:"sid"`
	Src string `json:"src"`
}

// Evaluate runs src in the client session, creating the session on first
// use once the service answers its health check. Concurrent callers are
// serialized.
func (c *Client) Evaluate(ctx context.Context, src string) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sid == "" {
		if err := c.WaitReady(ctx); err != nil {
			return Result{}, err
		}
		sid, err := c.newSession(ctx)
		if err != nil {
			return Result{}, err
		}
		c.sid = sid
		c.log.Debugw("evaluation session created", "sid", sid)
	}

	start := time.Now()
	res, err := c.post(ctx, "/evalChunk", evalRequest{SID: c.sid, Src: src})
	c.chunks++
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	if res.Result != "ok" {
		return Result{}, fmt.Errorf("%w: %s", ErrEvaluation, res.Error)
	}
	c.log.Debugw("chunk evaluated", "chunk", c.chunks, "type", res.ExprType,
		"duration_ms", time.Since(start).Milliseconds())
	return Result{Value: rawString(res.ExprResult), Type: res.ExprType}, nil
}

func (c *Client) newSession(ctx context.Context) (string, error) {
	res, err := c.post(ctx, "/newSession", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionCreate, err)
	}
	if res.Result != "ok" || res.SID == "" {
		return "", fmt.Errorf("%w: result %q", ErrSessionCreate, res.Result)
	}
	return res.SID, nil
}

// Ping checks the service once.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.do(ctx, http.MethodGet, "/ping", nil)
	if err != nil {
		return err
	}
	if res.Result != "ok" || res.Reply != "pong" {
		return fmt.Errorf("%w: unexpected ping reply %q", ErrNotReady, res.Reply)
	}
	return nil
}

// WaitReady polls Ping until it succeeds or the attempt budget is spent.
func (c *Client) WaitReady(ctx context.Context) error {
	var last error
	for attempt := 1; attempt <= c.pingAttempts; attempt++ {
		if last = c.Ping(ctx); last == nil {
			return nil
		}
		c.log.Debugw("evaluator not ready", "attempt", attempt, "error", last)
		if attempt == c.pingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pingDelay):
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrNotReady, c.pingAttempts, last)
}

func (c *Client) post(ctx context.Context, route string, body any) (*response, error) {
	return c.do(ctx, http.MethodPost, route, body)
}

func (c *Client) do(ctx context.Context, method, route string, body any) (*response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", route, err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+route, rd)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", route, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var res response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&res); err != nil {
		return nil, fmt.Errorf("decoding %s response (status %d): %w", route, resp.StatusCode, err)
	}
	return &res, nil
}

// rawString turns a JSON scalar into its text. Strings lose their quotes;
// numbers and other values keep their JSON spelling.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
