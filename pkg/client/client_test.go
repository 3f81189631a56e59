package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primarycell/assessment/internal/model"
)

// ============================================================================
// Fake API
// ============================================================================

// fakeAPI issues numbered CSRF tokens and lets each test script the POST handler
type fakeAPI struct {
	mu         sync.Mutex
	tokens     int
	tokenCalls atomic.Int32
	posts      atomic.Int32
	keys       []string
	handle     func(w http.ResponseWriter, r *http.Request, attempt int)
}

func (f *fakeAPI) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return "tok-" + strconv.Itoa(f.tokens)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/csrf-token" {
		f.tokenCalls.Add(1)
		f.mu.Lock()
		f.tokens++
		token := "tok-" + strconv.Itoa(f.tokens)
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "csrf_token", Value: token, Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TokenResponse{Token: token, ExpiresIn: 3600})
		return
	}

	attempt := int(f.posts.Add(1))
	f.mu.Lock()
	f.keys = append(f.keys, r.Header.Get(HeaderIdempotencyKey))
	f.mu.Unlock()
	f.handle(w, r, attempt)
}

func newTestClient(t *testing.T, api http.Handler, opts ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := Config{
		BaseURL:         srv.URL,
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
	for _, o := range opts {
		o(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func writeData(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func writeProblem(w http.ResponseWriter, pd *model.ProblemDetails) {
	pd.WriteJSON(w)
}

func okSubmit(w http.ResponseWriter) {
	writeData(w, http.StatusCreated, model.SubmitQuizResult{
		Success: true, QuizID: "quiz-1", QualificationStatus: model.StatusQualified,
	})
}

// ============================================================================
// Tests
// ============================================================================

func TestNew_RejectsBadBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestClient_RetriesServerErrorsWithSameIdempotencyKey(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		if attempt < 3 {
			writeProblem(w, model.NewInternalError(""))
			return
		}
		okSubmit(w)
	}}
	c := newTestClient(t, api)

	res, err := c.SubmitQuiz(context.Background(), &model.QuizResponse{QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusQualified, res.QualificationStatus)
	assert.EqualValues(t, 3, api.posts.Load())

	require.Len(t, api.keys, 3)
	assert.NotEmpty(t, api.keys[0])
	assert.Equal(t, api.keys[0], api.keys[1])
	assert.Equal(t, api.keys[0], api.keys[2])
}

func TestClient_NewKeyPerLogicalCall(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) { okSubmit(w) }}
	c := newTestClient(t, api)

	for i := 0; i < 2; i++ {
		_, err := c.SubmitQuiz(context.Background(), &model.QuizResponse{QuizID: "quiz-1"})
		require.NoError(t, err)
	}
	require.Len(t, api.keys, 2)
	assert.NotEqual(t, api.keys[0], api.keys[1])
	assert.EqualValues(t, 1, api.tokenCalls.Load(), "token should be cached between calls")
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		writeProblem(w, model.NewServiceUnavailableError("down"))
	}}
	c := newTestClient(t, api)

	_, err := c.SubmitQuiz(context.Background(), &model.QuizResponse{QuizID: "quiz-1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	assert.EqualValues(t, 3, api.posts.Load())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		writeProblem(w, model.NewValidationError([]model.FieldError{{Field: "email", Message: "invalid email"}}))
	}}
	c := newTestClient(t, api)

	_, err := c.SubmitContact(context.Background(), model.ContactSubmission{QuizID: "quiz-1"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, model.ErrCodeValidation, apiErr.Problem.Code)
	require.Len(t, apiErr.Problem.Errors, 1)
	assert.Equal(t, "email", apiErr.Problem.Errors[0].Field)
	assert.EqualValues(t, 1, api.posts.Load())
}

func TestClient_HonoursRetryAfter(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		if attempt == 1 {
			w.Header().Set("Retry-After", "0")
			writeProblem(w, model.NewRateLimitError(0, 10))
			return
		}
		okSubmit(w)
	}}
	c := newTestClient(t, api)

	_, err := c.SubmitQuiz(context.Background(), &model.QuizResponse{QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, api.posts.Load())
}

func TestClient_LongRetryAfterFailsFast(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		writeProblem(w, model.NewRateLimitError(900, 10))
	}}
	c := newTestClient(t, api, func(cfg *Config) { cfg.MaxRetryAfter = time.Second })

	_, err := c.SubmitQuiz(context.Background(), &model.QuizResponse{QuizID: "quiz-1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(err))
	assert.EqualValues(t, 1, api.posts.Load())
}

func TestClient_RefreshesCSRFTokenOnce(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		cookie, err := r.Cookie("csrf_token")
		if err != nil || cookie.Value != r.Header.Get(HeaderCSRFToken) {
			writeProblem(w, model.NewCSRFError("token does not match cookie"))
			return
		}
		// the first issued token is treated as expired
		if r.Header.Get(HeaderCSRFToken) == "tok-1" {
			writeProblem(w, model.NewCSRFError("token expired"))
			return
		}
		okSubmit(w)
	}}
	c := newTestClient(t, api)

	res, err := c.SubmitQuiz(context.Background(), &model.QuizResponse{QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.EqualValues(t, 2, api.tokenCalls.Load())
	assert.EqualValues(t, 2, api.posts.Load())
	assert.Equal(t, "tok-2", api.currentToken())

	require.Len(t, api.keys, 2)
	assert.Equal(t, api.keys[0], api.keys[1], "replay keeps the idempotency key")
}

func TestClient_CSRFRefreshIsNotRepeated(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		writeProblem(w, model.NewCSRFError("always wrong"))
	}}
	c := newTestClient(t, api)

	_, err := c.SubmitQuiz(context.Background(), &model.QuizResponse{QuizID: "quiz-1"})
	require.Error(t, err)
	assert.True(t, IsCSRFError(err))
	assert.EqualValues(t, 2, api.posts.Load())
	assert.EqualValues(t, 2, api.tokenCalls.Load())
}

func TestClient_PlainForbiddenIsNotCSRF(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		writeProblem(w, model.NewForbiddenError("not allowed"))
	}}
	c := newTestClient(t, api)

	_, err := c.SubmitQuiz(context.Background(), &model.QuizResponse{QuizID: "quiz-1"})
	require.Error(t, err)
	assert.False(t, IsCSRFError(err))
	assert.EqualValues(t, 1, api.posts.Load())
}

func TestAPIError_IsCSRF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *APIError
		want bool
	}{
		{"problem type", &APIError{StatusCode: 403, Problem: model.NewCSRFError("")}, true},
		{"code only", &APIError{StatusCode: 403, Problem: &model.ProblemDetails{Code: model.ErrCodeCSRF}}, true},
		{"body mentions csrf", &APIError{StatusCode: 403, Problem: &model.ProblemDetails{}, body: "Invalid CSRF token"}, true},
		{"other 403", &APIError{StatusCode: 403, Problem: model.NewForbiddenError("no")}, false},
		{"not 403", &APIError{StatusCode: 400, Problem: &model.ProblemDetails{}, body: "csrf"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.IsCSRF())
		})
	}
}

func TestClient_ContextCancelStopsRetries(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request, attempt int) {
		writeProblem(w, model.NewInternalError(""))
	}}
	c := newTestClient(t, api, func(cfg *Config) {
		cfg.MaxAttempts = 100
		cfg.InitialInterval = 50 * time.Millisecond
		cfg.MaxInterval = 50 * time.Millisecond
	})

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	_, err := c.SubmitQuiz(ctx, &model.QuizResponse{QuizID: "quiz-1"})
	require.Error(t, err)
	assert.Less(t, api.posts.Load(), int32(10))
}

func TestClient_GetQuizDecodesEnvelope(t *testing.T) {
	t.Parallel()

	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/quiz/{quizId}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.PathValue("quizId")
		writeData(w, http.StatusOK, model.QuizResponse{QuizID: gotPath, QualificationStatus: model.StatusManualReview})
	})
	c := newTestClient(t, mux)

	q, err := c.GetQuiz(context.Background(), "quiz 1")
	require.NoError(t, err)
	assert.Equal(t, "quiz 1", gotPath)
	assert.Equal(t, model.StatusManualReview, q.QualificationStatus)
}

func TestClient_GetDoesNotFetchToken(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	mux := http.NewServeMux()
	mux.Handle("/api/csrf-token", api)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(HeaderCSRFToken))
		assert.Empty(t, r.Header.Get(HeaderIdempotencyKey))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	c := newTestClient(t, mux)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 0, api.tokenCalls.Load())
}
