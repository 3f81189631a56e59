package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/internal/service"
)

// Factory creates leads in a store
type Factory struct {
	store service.LeadRepository
}

// New creates a new fixture factory
func New(store service.LeadRepository) *Factory {
	return &Factory{store: store}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// Quiz Builders
// ============================================================================

// QuizOpt customizes a quiz response
type QuizOpt func(*model.QuizResponse)

// Quiz returns a complete response that qualifies for the primary program.
// Qualification fields are left empty; the server derives them.
func Quiz(opts ...QuizOpt) *model.QuizResponse {
	q := &model.QuizResponse{
		QuizID:            "quiz_" + randomID(),
		PainDuration:      model.PainDurationMoreThanSixMonth,
		TreatmentsTried:   []string{"physical_therapy"},
		Conditions:        []string{"chronic_back_pain"},
		MissingActivities: []string{"exercise"},
		UrgencyLevel:      "very_urgent",
		AnnualSpending:    "1000_5000",
	}
	for _, fn := range opts {
		fn(q)
	}
	return q
}

// WithQuizID sets the quiz id
func WithQuizID(id string) QuizOpt {
	return func(q *model.QuizResponse) { q.QuizID = id }
}

// WithConditions replaces the selected conditions
func WithConditions(conditions ...string) QuizOpt {
	return func(q *model.QuizResponse) { q.Conditions = conditions }
}

// WithConditionOther sets the free-text condition
func WithConditionOther(other string) QuizOpt {
	return func(q *model.QuizResponse) { q.ConditionOther = other }
}

// WithRecentPain marks the pain as six months or less
func WithRecentPain() QuizOpt {
	return func(q *model.QuizResponse) { q.PainDuration = model.PainDurationSixMonthsOrLess }
}

// WithContact fills the contact fields
func WithContact(name, email, phone string) QuizOpt {
	return func(q *model.QuizResponse) {
		q.Name = name
		q.Email = email
		q.Phone = phone
	}
}

// ============================================================================
// Stored Fixtures
// ============================================================================

// CreateQuiz stores a quiz with its qualification derived the way the
// service derives it
func (f *Factory) CreateQuiz(t *testing.T, opts ...QuizOpt) *model.QuizResponse {
	t.Helper()

	q := Quiz(opts...)
	if q.PainDuration == model.PainDurationSixMonthsOrLess {
		q.QualificationStatus = model.StatusDisqualifiedTooSoon
	} else {
		a := service.AnalyzeConditions(q.Conditions, q.ConditionOther != "")
		q.QualificationStatus = a.QualificationStatus
		q.TreatableConditions = a.TreatableConditions
		q.NonTreatableConditions = a.NonTreatableConditions
		q.RequiresManualReview = a.RequiresManualReview
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	q.StartedAt = now
	q.CompletedAt = &now

	if err := f.store.SaveQuiz(ctx(t), q); err != nil {
		t.Fatalf("fixtures: failed to save quiz: %v", err)
	}
	return q
}

// WaitingListOpts customizes waiting-list entry creation
type WaitingListOpts struct {
	Name       string
	Email      string
	Phone      string
	PainStart  string
	FollowUpAt time.Time
}

// CreateWaitingListEntry stores a waiting-list entry for quiz, due for
// follow-up an hour ago unless overridden
func (f *Factory) CreateWaitingListEntry(t *testing.T, quiz *model.QuizResponse, opts ...func(*WaitingListOpts)) *model.WaitingListEntry {
	t.Helper()

	id := randomID()
	o := &WaitingListOpts{
		Name:       "Lead " + id,
		Email:      fmt.Sprintf("lead_%s@test.local", id),
		Phone:      "+15555550100",
		FollowUpAt: time.Now().Add(-time.Hour),
	}
	for _, fn := range opts {
		fn(o)
	}

	entry := &model.WaitingListEntry{
		ID:                       "wl_" + id,
		QuizID:                   quiz.QuizID,
		Contact:                  model.Contact{Name: o.Name, Email: o.Email, Phone: o.Phone},
		ApproximatePainStartDate: o.PainStart,
		FollowUpAt:               o.FollowUpAt.UTC().Truncate(time.Millisecond),
		CreatedOn:                time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := f.store.SaveWaitingListEntry(ctx(t), entry); err != nil {
		t.Fatalf("fixtures: failed to save waiting list entry: %v", err)
	}
	return entry
}
