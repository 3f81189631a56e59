package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/primarycell/assessment/internal/handler"
	"github.com/primarycell/assessment/internal/middleware"
	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/internal/service"
	"github.com/primarycell/assessment/internal/telemetry"
	"github.com/primarycell/assessment/pkg/client"
	"github.com/primarycell/assessment/pkg/csrf"
)

// ============================================================================
// Application Harness
// ============================================================================

// TestCSRFSecret signs the tokens of every App
var TestCSRFSecret = []byte("test-secret-test-secret-test-secret")

// AppConfig customizes the application under test
type AppConfig struct {
	Notifier service.Notifier
	// Clock drives the services
	Clock func() time.Time
	// CSRFClock drives token issue and validation. Cookie expiry is computed
	// against wall time, so offset it from time.Now rather than pinning it.
	CSRFClock    func() time.Time
	SubmitLimit  int
	DefaultLimit int
	CSRFTTL      time.Duration
	// FollowUpBatch bounds one follow-up run (0 uses the service default)
	FollowUpBatch int
}

// App is a fully wired API backed by a real store
type App struct {
	Handler  http.Handler
	Server   *httptest.Server
	Tokens   *csrf.Service
	Quiz     *service.QuizService
	FollowUp *service.FollowUpService
	Metrics  *telemetry.Metrics
}

// NewApp wires services, middleware and router over store and starts an
// httptest server that is closed when the test ends
func NewApp(t *testing.T, store service.LeadRepository, opts ...func(*AppConfig)) *App {
	t.Helper()

	cfg := &AppConfig{
		Clock:        time.Now,
		CSRFClock:    time.Now,
		SubmitLimit:  10,
		DefaultLimit: 100,
		CSRFTTL:      time.Hour,
	}
	for _, fn := range opts {
		fn(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := csrf.NewTestService(TestCSRFSecret, cfg.CSRFTTL, cfg.CSRFClock)
	metrics := telemetry.NewMetrics()

	quiz := service.NewQuizService(service.QuizServiceConfig{
		Repo:            store,
		Notifier:        cfg.Notifier,
		Clock:           cfg.Clock,
		WelcomeVideoURL: "https://example.test/welcome",
		Logger:          logger,
	})
	followUp := service.NewFollowUpService(service.FollowUpServiceConfig{
		Repo:      store,
		Notifier:  cfg.Notifier,
		Clock:     cfg.Clock,
		BatchSize: cfg.FollowUpBatch,
		Logger:    logger,
	})

	defaultLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Rate: cfg.DefaultLimit, Window: 15 * time.Minute})
	submitLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Rate: cfg.SubmitLimit, Window: 15 * time.Minute})
	idem := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{})
	t.Cleanup(func() {
		defaultLimiter.Stop()
		submitLimiter.Stop()
		idem.Stop()
	})

	h := handler.NewRouter(handler.RouterConfig{
		Quiz:           quiz,
		Store:          quiz,
		Tokens:         tokens,
		Version:        "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		DefaultLimiter: defaultLimiter,
		SubmitLimiter:  submitLimiter,
		Idempotency:    idem,
		Metrics:        metrics,
		Logger:         logger,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &App{
		Handler:  h,
		Server:   srv,
		Tokens:   tokens,
		Quiz:     quiz,
		FollowUp: followUp,
		Metrics:  metrics,
	}
}

// Client returns an API client for the app's server that does not wait
// between retries
func (a *App) Client(t *testing.T, opts ...func(*client.Config)) *client.Client {
	t.Helper()

	cfg := client.Config{
		BaseURL:         a.Server.URL,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range opts {
		fn(&cfg)
	}
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("helpers: failed to create client: %v", err)
	}
	return c
}

// Serve runs req through the app's handler
func (a *App) Serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	return rec
}

// Token mints a CSRF token accepted by the app
func (a *App) Token(t *testing.T) string {
	t.Helper()
	token, _, err := a.Tokens.Issue()
	if err != nil {
		t.Fatalf("helpers: failed to issue token: %v", err)
	}
	return token
}

// ============================================================================
// HTTP Request Helpers
// ============================================================================

// RequestBuilder helps construct HTTP requests for testing
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    interface{}
	headers map[string]string
	csrf    string
}

// NewRequest creates a new request builder
func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{
		t:       t,
		method:  method,
		path:    path,
		headers: make(map[string]string),
	}
}

// WithBody sets the request body (will be JSON encoded)
func (rb *RequestBuilder) WithBody(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

// WithHeader adds a header to the request
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// WithCSRF sends token in both the header and the cookie
func (rb *RequestBuilder) WithCSRF(token string) *RequestBuilder {
	rb.csrf = token
	return rb
}

// Build creates the HTTP request
func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var bodyReader io.Reader
	if rb.body != nil {
		bodyBytes, err := json.Marshal(rb.body)
		if err != nil {
			rb.t.Fatalf("helpers: failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(rb.method, rb.path, bodyReader)

	if rb.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	if rb.csrf != "" {
		req.Header.Set(middleware.CSRFHeader, rb.csrf)
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: rb.csrf})
	}

	return req
}

// ============================================================================
// Response Assertion Helpers
// ============================================================================

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.Code, resp.Body.String())
	}
}

// AssertProblemDetails validates an RFC 9457 Problem Details error response
func AssertProblemDetails(t *testing.T, resp *httptest.ResponseRecorder, expectedStatus int, expectedCode model.ErrorCode) *model.ProblemDetails {
	t.Helper()

	AssertStatus(t, resp, expectedStatus)

	var problem model.ProblemDetails
	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v. Body: %s", err, string(bodyBytes))
	}

	if problem.Status != expectedStatus {
		t.Errorf("expected problem.status %d, got %d", expectedStatus, problem.Status)
	}
	if expectedCode != 0 && problem.Code != expectedCode {
		t.Errorf("expected problem.code %d, got %d", expectedCode, problem.Code)
	}
	return &problem
}

// AssertValidationError checks for a validation error on a specific field
func AssertValidationError(t *testing.T, resp *httptest.ResponseRecorder, field string) {
	t.Helper()

	problem := AssertProblemDetails(t, resp, http.StatusUnprocessableEntity, model.ErrCodeValidation)
	for _, fe := range problem.Errors {
		if fe.Field == field {
			return
		}
	}

	t.Errorf("expected validation error on field %q, but not found. Errors: %+v", field, problem.Errors)
}

// DecodeResponse decodes the response body into the given struct
func DecodeResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, string(bodyBytes))
	}
}

// DecodeData decodes the "data" member of a response envelope into v
func DecodeData(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, string(bodyBytes))
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v. Body: %s", err, string(bodyBytes))
	}
}

// ============================================================================
// Value Helpers
// ============================================================================

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// MustParseTime parses a time string or fails the test
func MustParseTime(t *testing.T, layout, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(layout, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}
