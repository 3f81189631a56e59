package model

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================================
// Error() Interface Tests
// ============================================================================

func TestProblemDetails_Error_ReturnsFormattedMessage(t *testing.T) {
	t.Parallel()

	pd := &ProblemDetails{
		Status: http.StatusNotFound,
		Title:  "Not Found",
		Detail: "quiz not found",
	}

	errMsg := pd.Error()

	if !strings.Contains(errMsg, "404") {
		t.Errorf("error message should contain status code, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "Not Found") {
		t.Errorf("error message should contain title, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "quiz not found") {
		t.Errorf("error message should contain detail, got: %s", errMsg)
	}
}

// ============================================================================
// WriteJSON Tests
// ============================================================================

func TestProblemDetails_WriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	t.Parallel()

	pd := NewNotFoundError("quiz")
	rr := httptest.NewRecorder()

	pd.WriteJSON(rr)

	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected Content-Type 'application/problem+json', got %q", ct)
	}
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}

	var decoded ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if decoded.Detail != "quiz not found" {
		t.Errorf("expected detail 'quiz not found', got %q", decoded.Detail)
	}
	if decoded.Code != ErrCodeNotFound {
		t.Errorf("expected code %d, got %d", ErrCodeNotFound, decoded.Code)
	}
}

// ============================================================================
// Constructor Tests
// ============================================================================

func TestNewCSRFError_IsCSRF(t *testing.T) {
	t.Parallel()

	pd := NewCSRFError("token expired")

	if pd.Status != http.StatusForbidden {
		t.Errorf("expected 403, got %d", pd.Status)
	}
	if !pd.IsCSRF() {
		t.Error("CSRF problem should report IsCSRF")
	}
	if NewForbiddenError("nope").IsCSRF() {
		t.Error("plain forbidden problem should not report IsCSRF")
	}

	var nilProblem *ProblemDetails
	if nilProblem.IsCSRF() {
		t.Error("nil problem should not report IsCSRF")
	}
}

func TestNewValidationError_SummarisesFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		errors []FieldError
		want   string
	}{
		{"no fields", nil, "One or more fields failed validation"},
		{"one field", []FieldError{{Field: "email", Message: "invalid"}}, "email: invalid"},
		{"many fields", []FieldError{
			{Field: "email", Message: "invalid"},
			{Field: "phone", Message: "too short"},
			{Field: "name", Message: "required"},
		}, "email: invalid (and 2 more errors)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd := NewValidationError(tt.errors)
			if pd.Detail != tt.want {
				t.Errorf("detail = %q, want %q", pd.Detail, tt.want)
			}
			if pd.Status != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d", pd.Status)
			}
		})
	}
}

func TestNewRateLimitError_CarriesRetryAfter(t *testing.T) {
	t.Parallel()

	pd := NewRateLimitError(42, 10)

	if pd.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", pd.Status)
	}
	if pd.RetryAfter == nil || *pd.RetryAfter != 42 {
		t.Errorf("expected retry_after 42, got %v", pd.RetryAfter)
	}
	if pd.Limit == nil || *pd.Limit != 10 {
		t.Errorf("expected limit 10, got %v", pd.Limit)
	}
}

func TestNewInternalError_DefaultDetail(t *testing.T) {
	t.Parallel()

	if pd := NewInternalError(""); pd.Detail == "" {
		t.Error("expected default detail for empty internal error")
	}
	if pd := NewInternalError("boom"); pd.Detail != "boom" {
		t.Errorf("expected detail 'boom', got %q", pd.Detail)
	}
}

// ============================================================================
// Catalog Tests
// ============================================================================

func TestConditionCatalogs_AreDisjoint(t *testing.T) {
	t.Parallel()

	for _, v := range TreatableConditions.Values() {
		if NonTreatableConditions.Contains(v) {
			t.Errorf("condition %q is in both catalogs", v)
		}
	}
}

func TestFilterConditions_SortsAndDeduplicates(t *testing.T) {
	t.Parallel()

	got := FilterConditions([]string{"pelvic_pain", "fibromyalgia", "chronic_back_pain", "pelvic_pain", "made_up"}, TreatableConditions)
	want := []string{"chronic_back_pain", "pelvic_pain"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStep_IsTerminal(t *testing.T) {
	t.Parallel()

	terminal := []Step{StepWelcome, StepDisqualifiedTooSoon, StepDisqualifiedNonTreatable}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if StepConditions.IsTerminal() {
		t.Error("conditions should not be terminal")
	}
}
