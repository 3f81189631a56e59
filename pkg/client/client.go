package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/primarycell/assessment/internal/model"
)

// Defaults applied by New
const (
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 5 * time.Second
	DefaultTimeout         = 10 * time.Second
	DefaultMaxRetryAfter   = 30 * time.Second
	DefaultUserAgent       = "assessment-client/1"
)

// Header names shared with the server
const (
	HeaderCSRFToken      = "X-CSRF-Token"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// Config configures a Client
type Config struct {
	BaseURL string
	// HTTPClient is used as-is except that a cookie jar is added when missing
	HTTPClient      *http.Client
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// Timeout applies per attempt when HTTPClient is nil
	Timeout time.Duration
	// MaxRetryAfter bounds how long a Retry-After header may delay a retry;
	// longer waits fail immediately
	MaxRetryAfter time.Duration
	UserAgent     string
	Logger        *slog.Logger
}

// Client calls the assessment API with retries and CSRF handling
type Client struct {
	base          *url.URL
	http          *http.Client
	maxAttempts   uint
	initial       time.Duration
	maxInterval   time.Duration
	maxRetryAfter time.Duration
	userAgent     string
	logger        *slog.Logger

	mu    sync.Mutex
	token string
}

// New creates a client for the API at cfg.BaseURL
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	var hc *http.Client
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		if copied.Jar == nil {
			copied.Jar = jar
		}
		hc = &copied
	} else {
		hc = &http.Client{Jar: jar, Timeout: cfg.Timeout}
	}

	c := &Client{
		base:          base,
		http:          hc,
		maxAttempts:   uint(cfg.MaxAttempts),
		initial:       cfg.InitialInterval,
		maxInterval:   cfg.MaxInterval,
		maxRetryAfter: cfg.MaxRetryAfter,
		userAgent:     cfg.UserAgent,
		logger:        cfg.Logger,
	}
	if cfg.MaxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.initial <= 0 {
		c.initial = DefaultInitialInterval
	}
	if c.maxInterval <= 0 {
		c.maxInterval = DefaultMaxInterval
	}
	if c.maxRetryAfter <= 0 {
		c.maxRetryAfter = DefaultMaxRetryAfter
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// request describes one logical API call
type request struct {
	method string
	path   string
	body   any
	out    any
	// envelope unwraps {"data": ...} before decoding into out
	envelope bool
}

// do performs a logical call. Unsafe methods carry a CSRF token and a single
// Idempotency-Key for every attempt. A CSRF rejection refreshes the token and
// replays the call exactly once.
func (c *Client) do(ctx context.Context, req request) error {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	unsafe := isUnsafe(req.method)
	var key string
	if unsafe {
		key = uuid.NewString()
	}

	err := c.send(ctx, req, payload, key, unsafe)
	if unsafe && IsCSRFError(err) {
		c.logger.DebugContext(ctx, "csrf token rejected, refreshing", slog.String("path", req.path))
		c.clearToken()
		err = c.send(ctx, req, payload, key, unsafe)
	}
	return err
}

// send runs the retry loop for one request
func (c *Client) send(ctx context.Context, req request, payload []byte, key string, withToken bool) error {
	var token string
	if withToken {
		var err error
		if token, err = c.ensureToken(ctx); err != nil {
			return err
		}
	}

	// RetryAfterError does not carry the cause, so remember it
	var lastErr error
	op := func() (struct{}, error) {
		err := c.attempt(ctx, req, payload, key, token)
		if err == nil {
			return struct{}{}, nil
		}
		lastErr = err
		return struct{}{}, c.classify(ctx, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	b.MaxInterval = c.maxInterval

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.DebugContext(ctx, "retrying request",
				slog.String("method", req.method),
				slog.String("path", req.path),
				slog.Duration("backoff", next),
				slog.String("error", lastErr.Error()),
			)
		}),
	)
	if err != nil {
		var retryAfter *backoff.RetryAfterError
		if errors.As(err, &retryAfter) && lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}

// classify turns an attempt error into the form backoff.Retry expects
func (c *Client) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return backoff.Permanent(err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		// transport failure
		return err
	}
	if !apiErr.retryable() {
		return backoff.Permanent(err)
	}
	if apiErr.StatusCode == http.StatusTooManyRequests && apiErr.Problem != nil && apiErr.Problem.RetryAfter != nil {
		wait := time.Duration(*apiErr.Problem.RetryAfter) * time.Second
		if wait > c.maxRetryAfter {
			return backoff.Permanent(err)
		}
		return backoff.RetryAfter(*apiErr.Problem.RetryAfter)
	}
	return err
}

// attempt sends the request once and decodes the response
func (c *Client) attempt(ctx context.Context, req request, payload []byte, key, token string) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.base.String()+req.path, body)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set(HeaderCSRFToken, token)
	}
	if key != "" {
		httpReq.Header.Set(HeaderIdempotencyKey, key)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, raw)
	}
	if req.out == nil || len(raw) == 0 {
		return nil
	}

	if req.envelope {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		raw = env.Data
	}
	if err := json.Unmarshal(raw, req.out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func newAPIError(resp *http.Response, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, body: string(raw)}

	var pd model.ProblemDetails
	if err := json.Unmarshal(raw, &pd); err == nil && (pd.Type != "" || pd.Title != "") {
		apiErr.Problem = &pd
	} else {
		apiErr.Problem = &model.ProblemDetails{
			Status: resp.StatusCode,
			Title:  http.StatusText(resp.StatusCode),
		}
	}
	if apiErr.Problem.RetryAfter == nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			apiErr.Problem.RetryAfter = &secs
		}
	}
	return apiErr
}

// ensureToken returns the cached CSRF token, fetching one when absent
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}
	return c.FetchCSRFToken(ctx)
}

func (c *Client) clearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func isUnsafe(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
