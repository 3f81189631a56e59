package tests

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/internal/testing/fixtures"
	"github.com/primarycell/assessment/internal/testing/helpers"
	"github.com/primarycell/assessment/internal/testing/testdb"
	"github.com/primarycell/assessment/pkg/client"
)

/*
FEATURE: Quiz Funnel
DOMAIN: Lead Qualification

ACCEPTANCE CRITERIA:
===================

AC-QUIZ-001: Qualified Funnel
  GIVEN a respondent with more than six months of treatable pain
  WHEN they walk every step, submit the quiz and their contact details
  THEN each step routes to the next in order
  AND the stored quiz is qualified with start and completion times
  AND the welcome email and SMS are sent

AC-QUIZ-002: Pain Medication Branch
  GIVEN a respondent who tried pain medications
  WHEN they leave the treatments step
  THEN they are routed to the medication follow-up before conditions

AC-QUIZ-003: Too Soon
  GIVEN a respondent with six months of pain or less
  WHEN they submit the quiz
  THEN the quiz is disqualified as too soon

AC-QUIZ-004: Non-Treatable Only
  GIVEN a respondent with only non-treatable conditions
  WHEN they leave the conditions step
  THEN they are routed to the non-treatable page

AC-QUIZ-005: Manual Review
  GIVEN a respondent who only describes an "other" condition
  WHEN conditions are analyzed
  THEN the lead needs manual review and sees the alternative education page

AC-QUIZ-006: Server-Side Qualification
  GIVEN a submission claiming a qualified status
  WHEN its conditions are non-treatable only
  THEN the stored status is recomputed as disqualified

AC-QUIZ-007: Incomplete Step
  GIVEN a step with no answer
  WHEN next-step is requested
  THEN a 422 names the missing field

AC-QUIZ-008: Resubmission Keeps Contact
  GIVEN a quiz that already has contact details
  WHEN the quiz is submitted again
  THEN the contact and start time are preserved

AC-QUIZ-009: Contact Sanitisation
  GIVEN contact details containing markup and an invalid email
  WHEN they are submitted
  THEN markup is stripped from the name
  AND an invalid email is rejected with a 422 on "email"

AC-QUIZ-010: Unknown Quiz
  GIVEN no stored quiz
  WHEN it is fetched or contact details are attached
  THEN the API answers 404

AC-QUIZ-011: Review Queue
  GIVEN a submitted quiz that needs manual review
  WHEN the respondent leaves contact details
  THEN the stored quiz records when it was flagged for review
  AND a qualified quiz is never flagged
*/

func walk(t *testing.T, c *client.Client, current model.Step, resp model.QuizResponse) *model.StepDecision {
	t.Helper()
	d, err := c.NextStep(testCtx(t), model.NextStepRequest{Current: current, Response: resp})
	require.NoError(t, err, "step %s", current)
	return d
}

func TestQuiz_QualifiedFunnel(t *testing.T) {
	// AC-QUIZ-001: Qualified Funnel
	tdb := testdb.New(t)
	notifier := &recordingNotifier{}
	app := helpers.NewApp(t, tdb.Store, func(c *helpers.AppConfig) { c.Notifier = notifier })
	c := app.Client(t)
	ctx := testCtx(t)

	info, err := c.Steps(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, info.Steps)
	assert.Equal(t, model.StepDuration, info.Steps[0])
	assert.NotEmpty(t, info.Catalogs.TreatableConditions)

	quiz := fixtures.Quiz()

	route := []struct {
		from model.Step
		to   model.Step
	}{
		{model.StepDuration, model.StepTreatments},
		{model.StepTreatments, model.StepConditions},
		{model.StepConditions, model.StepEducationPrimaryCell},
		{model.StepEducationPrimaryCell, model.StepMissing},
		{model.StepMissing, model.StepUrgency},
		{model.StepUrgency, model.StepSpending},
		{model.StepSpending, model.StepQuestions},
		{model.StepQuestions, model.StepCongratulations},
		{model.StepCongratulations, model.StepWelcome},
	}
	lastPos := 0
	for _, r := range route {
		d := walk(t, c, r.from, *quiz)
		assert.Equal(t, r.to, d.Next, "after %s", r.from)
		assert.Greater(t, d.Position, lastPos, "progress after %s", r.from)
		lastPos = d.Position
		if r.from == model.StepConditions {
			require.NotNil(t, d.Analysis)
			assert.Equal(t, model.StatusQualified, d.Status)
			assert.True(t, d.Analysis.ShouldShowPrimaryCell)
		}
	}

	res, err := c.SubmitQuiz(ctx, quiz)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, quiz.QuizID, res.QuizID)
	assert.Equal(t, model.StatusQualified, res.QualificationStatus)

	contact, err := c.SubmitContact(ctx, model.ContactSubmission{
		QuizID: quiz.QuizID,
		Name:   "Jane Doe",
		Email:  "Jane@Example.com",
		Phone:  "(555) 555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "/welcome", contact.RedirectTo)

	stored, err := c.GetQuiz(ctx, quiz.QuizID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusQualified, stored.QualificationStatus)
	assert.Equal(t, "jane@example.com", stored.Email)
	assert.False(t, stored.StartedAt.IsZero())
	require.NotNil(t, stored.CompletedAt)

	require.Len(t, notifier.emails, 1)
	assert.Equal(t, "https://example.test/welcome", notifier.emails[0].VideoLink)
	assert.Len(t, notifier.sms, 1)
}

func TestQuiz_PainMedicationBranch(t *testing.T) {
	// AC-QUIZ-002: Pain Medication Branch
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)
	c := app.Client(t)

	quiz := fixtures.Quiz()
	quiz.TreatmentsTried = []string{"massage", model.TreatmentPainMedications}
	quiz.PainMedicationsTypes = []string{"opioids"}

	d := walk(t, c, model.StepTreatments, *quiz)
	assert.Equal(t, model.StepPainMedications, d.Next)

	d = walk(t, c, model.StepPainMedications, *quiz)
	assert.Equal(t, model.StepConditions, d.Next)
}

func TestQuiz_TooSoon(t *testing.T) {
	// AC-QUIZ-003: Too Soon
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)
	c := app.Client(t)

	quiz := fixtures.Quiz(fixtures.WithRecentPain())

	d := walk(t, c, model.StepDuration, *quiz)
	assert.Equal(t, model.StepDisqualifiedTooSoon, d.Next)
	assert.Equal(t, model.StatusDisqualifiedTooSoon, d.Status)

	res, err := c.SubmitQuiz(testCtx(t), quiz)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDisqualifiedTooSoon, res.QualificationStatus)
}

func TestQuiz_NonTreatableOnly(t *testing.T) {
	// AC-QUIZ-004: Non-Treatable Only
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)
	c := app.Client(t)

	quiz := fixtures.Quiz(fixtures.WithConditions("fibromyalgia", "autoimmune_diseases"))

	d := walk(t, c, model.StepConditions, *quiz)
	assert.Equal(t, model.StepDisqualifiedNonTreatable, d.Next)
	assert.Equal(t, model.StatusDisqualifiedNonTreatable, d.Status)
	require.NotNil(t, d.Analysis)
	assert.ElementsMatch(t, []string{"fibromyalgia", "autoimmune_diseases"}, d.Analysis.NonTreatableConditions)
}

func TestQuiz_ManualReview(t *testing.T) {
	// AC-QUIZ-005: Manual Review
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)
	c := app.Client(t)

	a, err := c.AnalyzeConditions(testCtx(t), model.AnalyzeConditionsRequest{ConditionOther: "jaw pain"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusManualReview, a.QualificationStatus)
	assert.True(t, a.RequiresManualReview)
	assert.True(t, a.ShouldShowAlternativePrimaryCell)
	assert.False(t, a.ShouldShowPrimaryCell)

	d := walk(t, c, model.StepConditions, *fixtures.Quiz(fixtures.WithConditions(), fixtures.WithConditionOther("jaw pain")))
	assert.Equal(t, model.StepEducationAlternative, d.Next)
}

func TestQuiz_ServerSideQualification(t *testing.T) {
	// AC-QUIZ-006: Server-Side Qualification
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)
	c := app.Client(t)

	quiz := fixtures.Quiz(fixtures.WithConditions("fibromyalgia"))
	quiz.QualificationStatus = model.StatusQualified
	quiz.TreatableConditions = []string{"chronic_back_pain"}

	res, err := c.SubmitQuiz(testCtx(t), quiz)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDisqualifiedNonTreatable, res.QualificationStatus)

	stored, err := tdb.Store.GetQuiz(tdb.Ctx(), quiz.QuizID)
	require.NoError(t, err)
	assert.Empty(t, stored.TreatableConditions)
	assert.Equal(t, []string{"fibromyalgia"}, stored.NonTreatableConditions)
}

func TestQuiz_IncompleteStep(t *testing.T) {
	// AC-QUIZ-007: Incomplete Step
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)

	resp := app.Serve(helpers.NewRequest(t, http.MethodPost, "/api/quiz/next-step").
		WithBody(model.NextStepRequest{Current: model.StepDuration}).
		WithCSRF(app.Token(t)).
		Build())

	helpers.AssertValidationError(t, resp, "pain_duration")
}

func TestQuiz_ResubmissionKeepsContact(t *testing.T) {
	// AC-QUIZ-008: Resubmission Keeps Contact
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)
	c := app.Client(t)
	ctx := testCtx(t)

	f := fixtures.New(tdb.Store)
	existing := f.CreateQuiz(t)
	_, err := c.SubmitContact(ctx, model.ContactSubmission{
		QuizID: existing.QuizID,
		Name:   "Sam Lee",
		Email:  "sam@example.com",
		Phone:  "5555550100",
	})
	require.NoError(t, err)

	again := fixtures.Quiz(fixtures.WithQuizID(existing.QuizID))
	again.UrgencyLevel = "extremely_urgent"
	_, err = c.SubmitQuiz(ctx, again)
	require.NoError(t, err)

	stored, err := c.GetQuiz(ctx, existing.QuizID)
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", stored.Email)
	assert.Equal(t, "extremely_urgent", stored.UrgencyLevel)
	assert.True(t, stored.StartedAt.Equal(existing.StartedAt), "started_at %v, want %v", stored.StartedAt, existing.StartedAt)
}

func TestQuiz_ContactSanitisation(t *testing.T) {
	// AC-QUIZ-009: Contact Sanitisation
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)
	c := app.Client(t)
	ctx := testCtx(t)
	quiz := fixtures.New(tdb.Store).CreateQuiz(t)

	_, err := c.SubmitContact(ctx, model.ContactSubmission{
		QuizID: quiz.QuizID,
		Name:   "<b>Jane</b>   Doe",
		Email:  "jane@example.com",
		Phone:  "5555550100",
	})
	require.NoError(t, err)

	stored, err := c.GetQuiz(ctx, quiz.QuizID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stored.Name)

	resp := app.Serve(helpers.NewRequest(t, http.MethodPost, "/api/quiz/submit-contact").
		WithBody(model.ContactSubmission{QuizID: quiz.QuizID, Name: "Jane", Email: "not-an-email", Phone: "5555550100"}).
		WithCSRF(app.Token(t)).
		Build())
	helpers.AssertValidationError(t, resp, "email")
}

func TestQuiz_UnknownQuiz(t *testing.T) {
	// AC-QUIZ-010: Unknown Quiz
	tdb := testdb.New(t)
	app := helpers.NewApp(t, tdb.Store)
	c := app.Client(t)
	ctx := testCtx(t)

	_, err := c.GetQuiz(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, client.StatusCode(err))

	_, err = c.SubmitContact(ctx, model.ContactSubmission{QuizID: "missing", Name: "Jane", Email: "jane@example.com", Phone: "5555550100"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.NotNil(t, apiErr.Problem)
	assert.Equal(t, model.ErrCodeNotFound, apiErr.Problem.Code)
}

func TestQuiz_ReviewQueue(t *testing.T) {
	// AC-QUIZ-011: Review Queue
	tdb := testdb.New(t)
	clock := newFakeClock()
	app := helpers.NewApp(t, tdb.Store, func(c *helpers.AppConfig) { c.Clock = clock.Now })
	c := app.Client(t)
	ctx := testCtx(t)

	review := fixtures.Quiz(fixtures.WithConditions(), fixtures.WithConditionOther("jaw pain"))
	qualified := fixtures.Quiz()
	for _, q := range []*model.QuizResponse{review, qualified} {
		_, err := c.SubmitQuiz(ctx, q)
		require.NoError(t, err)
		_, err = c.SubmitContact(ctx, model.ContactSubmission{
			QuizID: q.QuizID,
			Name:   "Jane Doe",
			Email:  "jane@example.com",
			Phone:  "5555550100",
		})
		require.NoError(t, err)
	}

	stored, err := c.GetQuiz(ctx, review.QuizID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusManualReview, stored.QualificationStatus)
	require.NotNil(t, stored.ReviewFlaggedAt)
	assert.True(t, stored.ReviewFlaggedAt.Equal(clock.Now()))

	stored, err = c.GetQuiz(ctx, qualified.QuizID)
	require.NoError(t, err)
	assert.Nil(t, stored.ReviewFlaggedAt)
}
