package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primarycell/assessment/internal/model"
)

// =============================================================================
// Helpers
// =============================================================================

type recordedRequest struct {
	Method string
	Path   string
	Token  string
	Body   []byte
}

// newAPI serves canned envelopes and records each request
func newAPI(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest

	mux := http.NewServeMux()
	record := func(r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		seen = append(seen, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Token:  r.Header.Get("X-CSRF-Token"),
			Body:   buf.Bytes(),
		})
	}
	data := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
	}

	mux.HandleFunc("GET /api/csrf-token", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"csrf_token": "tok-1", "expires_in": 3600})
	})
	mux.HandleFunc("POST /api/quiz/submit-quiz", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		data(w, http.StatusCreated, model.SubmitQuizResult{
			Success:             true,
			QuizID:              "q-1",
			QualificationStatus: model.StatusQualified,
			Message:             "Quiz submitted successfully",
		})
	})
	mux.HandleFunc("POST /api/quiz/analyze-conditions", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		data(w, http.StatusOK, model.ConditionAnalysis{QualificationStatus: model.StatusManualReview, RequiresManualReview: true})
	})
	mux.HandleFunc("POST /api/quiz/submit-contact", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		data(w, http.StatusOK, model.ContactResult{Success: true, RedirectTo: "/welcome"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seen
}

// run executes the CLI against baseURL and returns stdout
func run(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("QUIZCTL_BASE_URL", baseURL)
	t.Setenv("QUIZCTL_MAX_ATTEMPTS", "1")

	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// =============================================================================
// Commands
// =============================================================================

func TestToken_PrintsToken(t *testing.T) {
	srv, _ := newAPI(t)

	out, err := run(t, srv.URL, "token")

	require.NoError(t, err)
	assert.Equal(t, "tok-1\n", out)
}

func TestSubmit_AssignsQuizIDAndSendsToken(t *testing.T) {
	srv, seen := newAPI(t)
	path := filepath.Join(t.TempDir(), "quiz.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pain_duration":"more_than_6_months","conditions":["chronic_back_pain"]}`), 0o600))

	out, err := run(t, srv.URL, "submit", "--file", path)

	require.NoError(t, err)
	assert.Contains(t, out, `"quiz_id": "q-1"`)

	require.Len(t, *seen, 2)
	submit := (*seen)[1]
	assert.Equal(t, "/api/quiz/submit-quiz", submit.Path)
	assert.Equal(t, "tok-1", submit.Token)

	var sent model.QuizResponse
	require.NoError(t, json.Unmarshal(submit.Body, &sent))
	assert.NotEmpty(t, sent.QuizID)
	assert.Equal(t, []string{"chronic_back_pain"}, sent.Conditions)
}

func TestSubmit_RejectsUnknownFields(t *testing.T) {
	srv, seen := newAPI(t)
	path := filepath.Join(t.TempDir(), "quiz.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pain":"x"}`), 0o600))

	_, err := run(t, srv.URL, "submit", "-f", path)

	require.Error(t, err)
	assert.Empty(t, *seen)
}

func TestAnalyze_RepeatableConditions(t *testing.T) {
	srv, seen := newAPI(t)

	out, err := run(t, srv.URL, "analyze", "-c", "chronic_back_pain", "-c", "fibromyalgia")

	require.NoError(t, err)
	assert.Contains(t, out, string(model.StatusManualReview))

	var req model.AnalyzeConditionsRequest
	require.NoError(t, json.Unmarshal((*seen)[len(*seen)-1].Body, &req))
	assert.Equal(t, []string{"chronic_back_pain", "fibromyalgia"}, req.Conditions)
}

func TestContact_NoTextSendsConsentFalse(t *testing.T) {
	srv, seen := newAPI(t)

	_, err := run(t, srv.URL, "contact", "q-1", "--name", "Jane Doe", "--email", "jane@example.com", "--no-text")

	require.NoError(t, err)
	body := string((*seen)[len(*seen)-1].Body)
	assert.True(t, strings.Contains(body, `"consent_to_text":false`), body)
}

func TestContact_RequiresName(t *testing.T) {
	srv, _ := newAPI(t)

	_, err := run(t, srv.URL, "contact", "q-1", "--email", "jane@example.com")

	require.Error(t, err)
}

func TestGet_RequiresQuizID(t *testing.T) {
	srv, _ := newAPI(t)

	_, err := run(t, srv.URL, "get")

	require.Error(t, err)
}
