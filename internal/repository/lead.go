package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/primarycell/assessment/internal/database"
	"github.com/primarycell/assessment/internal/model"
)

// schema is applied by Migrate; tables stay schemaless
const schema = `
DEFINE TABLE IF NOT EXISTS quiz_response SCHEMALESS;
DEFINE INDEX IF NOT EXISTS quiz_response_status ON quiz_response FIELDS qualification_status;
DEFINE INDEX IF NOT EXISTS quiz_response_review ON quiz_response FIELDS review_flagged_at;
DEFINE TABLE IF NOT EXISTS waiting_list SCHEMALESS;
DEFINE INDEX IF NOT EXISTS waiting_list_due ON waiting_list FIELDS notified, follow_up_at;
DEFINE TABLE IF NOT EXISTS notify_request SCHEMALESS;
DEFINE INDEX IF NOT EXISTS notify_request_quiz ON notify_request FIELDS quiz_id;
`

// LeadRepository handles quiz and lead data access in SurrealDB
type LeadRepository struct {
	db database.Database
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db database.Database) *LeadRepository {
	return &LeadRepository{db: db}
}

// Migrate defines the tables and indexes used by the repository
func (r *LeadRepository) Migrate(ctx context.Context) error {
	return r.db.Execute(ctx, schema, nil)
}

// Ping checks the database connection
func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SaveQuiz creates or replaces the quiz response keyed by its quiz ID
func (r *LeadRepository) SaveQuiz(ctx context.Context, q *model.QuizResponse) error {
	if strings.TrimSpace(q.QuizID) == "" {
		return errors.New("quiz id is required")
	}
	startedAt := q.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	fields := []string{
		"quiz_id: $quiz_id",
		"pain_duration: $pain_duration",
		"treatments_tried: $treatments_tried",
		"pain_medications_types: $pain_medications_types",
		"conditions: $conditions",
		"condition_other: $condition_other",
		"missing_activities: $missing_activities",
		"missing_other: $missing_other",
		"urgency_level: $urgency_level",
		"annual_spending: $annual_spending",
		"open_questions: $open_questions",
		"name: $name",
		"email: $email",
		"phone: $phone",
		"qualification_status: $qualification_status",
		"treatable_conditions: $treatable_conditions",
		"non_treatable_conditions: $non_treatable_conditions",
		"requires_manual_review: $requires_manual_review",
		"approximate_pain_start_date: $approximate_pain_start_date",
		"started_at: <datetime> $started_at",
		"updated_on: time::now()",
	}
	vars := map[string]interface{}{
		"quiz_id":                     q.QuizID,
		"pain_duration":               q.PainDuration,
		"treatments_tried":            stringSlice(q.TreatmentsTried),
		"pain_medications_types":      stringSlice(q.PainMedicationsTypes),
		"conditions":                  stringSlice(q.Conditions),
		"condition_other":             q.ConditionOther,
		"missing_activities":          stringSlice(q.MissingActivities),
		"missing_other":               q.MissingOther,
		"urgency_level":               q.UrgencyLevel,
		"annual_spending":             q.AnnualSpending,
		"open_questions":              q.OpenQuestions,
		"name":                        q.Name,
		"email":                       q.Email,
		"phone":                       q.Phone,
		"qualification_status":        string(q.QualificationStatus),
		"treatable_conditions":        stringSlice(q.TreatableConditions),
		"non_treatable_conditions":    stringSlice(q.NonTreatableConditions),
		"requires_manual_review":      q.RequiresManualReview,
		"approximate_pain_start_date": q.ApproximatePainStartDate,
		"started_at":                  formatTime(startedAt),
	}
	if q.CompletedAt != nil {
		fields = append(fields, "completed_at: <datetime> $completed_at")
		vars["completed_at"] = formatTime(*q.CompletedAt)
	}
	if q.WantsNotification != nil {
		fields = append(fields, "wants_notification: $wants_notification")
		vars["wants_notification"] = *q.WantsNotification
	}
	if q.ReviewFlaggedAt != nil {
		fields = append(fields, "review_flagged_at: <datetime> $review_flagged_at")
		vars["review_flagged_at"] = formatTime(*q.ReviewFlaggedAt)
	}

	query := fmt.Sprintf(`UPSERT type::thing("quiz_response", $quiz_id) CONTENT { %s }`, strings.Join(fields, ", "))
	return r.db.Execute(ctx, query, vars)
}

// GetQuiz retrieves a quiz response by quiz ID, or nil when it does not exist
func (r *LeadRepository) GetQuiz(ctx context.Context, quizID string) (*model.QuizResponse, error) {
	query := `SELECT * FROM type::thing("quiz_response", $quiz_id)`
	vars := map[string]interface{}{"quiz_id": quizID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseQuiz(result)
}

// SaveContact attaches contact details to an existing quiz response
func (r *LeadRepository) SaveContact(ctx context.Context, quizID string, c model.Contact) error {
	query := `
		UPDATE type::thing("quiz_response", $quiz_id)
		SET name = $name, email = $email, phone = $phone, updated_on = time::now()
		WHERE quiz_id = $quiz_id
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"quiz_id": quizID,
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
	}

	if _, err := r.db.QueryOne(ctx, query, vars); err != nil {
		return fmt.Errorf("save contact for quiz %s: %w", quizID, err)
	}
	return nil
}

// FlagForReview records when a lead was queued for practitioner review
func (r *LeadRepository) FlagForReview(ctx context.Context, quizID string, at time.Time) error {
	query := `
		UPDATE type::thing("quiz_response", $quiz_id)
		SET review_flagged_at = <datetime> $at, updated_on = time::now()
		WHERE quiz_id = $quiz_id
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"quiz_id": quizID,
		"at":      formatTime(at),
	}

	if _, err := r.db.QueryOne(ctx, query, vars); err != nil {
		return fmt.Errorf("flag quiz %s for review: %w", quizID, err)
	}
	return nil
}

// SaveWaitingListEntry creates a waiting-list entry and sets its ID
func (r *LeadRepository) SaveWaitingListEntry(ctx context.Context, e *model.WaitingListEntry) error {
	createdOn := e.CreatedOn
	if createdOn.IsZero() {
		createdOn = time.Now()
	}
	query := `
		CREATE waiting_list CONTENT {
			quiz_id: $quiz_id,
			name: $name,
			email: $email,
			phone: $phone,
			approximate_pain_start_date: $approximate_pain_start_date,
			follow_up_at: <datetime> $follow_up_at,
			notified: false,
			follow_up_attempts: 0,
			created_on: <datetime> $created_on
		}
	`
	vars := map[string]interface{}{
		"quiz_id":                     e.QuizID,
		"name":                        e.Contact.Name,
		"email":                       e.Contact.Email,
		"phone":                       e.Contact.Phone,
		"approximate_pain_start_date": e.ApproximatePainStartDate,
		"follow_up_at":                formatTime(e.FollowUpAt),
		"created_on":                  formatTime(createdOn),
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}
	data, ok := result.(map[string]interface{})
	if !ok {
		return errors.New("unexpected result format")
	}
	e.ID = extractRecordID(data["id"])
	e.CreatedOn = createdOn.UTC()
	return nil
}

// ListDueWaitingList returns un-notified entries due at or before the given time,
// skipping entries deferred after a failed delivery
func (r *LeadRepository) ListDueWaitingList(ctx context.Context, before time.Time, limit int) ([]*model.WaitingListEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT * FROM waiting_list
		WHERE notified = false AND follow_up_at <= <datetime> $before
			AND (next_attempt_at IS NONE OR next_attempt_at <= <datetime> $before)
		ORDER BY follow_up_at ASC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"before": formatTime(before),
		"limit":  limit,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records := extractQueryResults(result)
	entries := make([]*model.WaitingListEntry, 0, len(records))
	for _, rec := range records {
		data, ok := rec.(map[string]interface{})
		if !ok {
			continue
		}
		entries = append(entries, parseWaitingListEntry(data))
	}
	return entries, nil
}

// MarkWaitingListNotified records that a follow-up was sent
func (r *LeadRepository) MarkWaitingListNotified(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE type::record($id) SET notified = true, notified_at = <datetime> $at RETURN AFTER`
	vars := map[string]interface{}{
		"id": id,
		"at": formatTime(at),
	}

	if _, err := r.db.QueryOne(ctx, query, vars); err != nil {
		return fmt.Errorf("mark waiting list entry %s: %w", id, err)
	}
	return nil
}

// RecordFollowUpFailure counts a failed delivery and defers the entry until retryAt
func (r *LeadRepository) RecordFollowUpFailure(ctx context.Context, id string, retryAt time.Time) error {
	query := `UPDATE type::record($id) SET follow_up_attempts += 1, next_attempt_at = <datetime> $retry_at RETURN AFTER`
	vars := map[string]interface{}{
		"id":       id,
		"retry_at": formatTime(retryAt),
	}

	if _, err := r.db.QueryOne(ctx, query, vars); err != nil {
		return fmt.Errorf("record follow-up failure for %s: %w", id, err)
	}
	return nil
}

// SaveNotifyRequest creates a notification request and sets its ID
func (r *LeadRepository) SaveNotifyRequest(ctx context.Context, n *model.NotifyRequest) error {
	createdOn := n.CreatedOn
	if createdOn.IsZero() {
		createdOn = time.Now()
	}
	query := `
		CREATE notify_request CONTENT {
			quiz_id: $quiz_id,
			name: $name,
			email: $email,
			phone: $phone,
			non_treatable_conditions: $non_treatable_conditions,
			created_on: <datetime> $created_on
		}
	`
	vars := map[string]interface{}{
		"quiz_id":                  n.QuizID,
		"name":                     n.Contact.Name,
		"email":                    n.Contact.Email,
		"phone":                    n.Contact.Phone,
		"non_treatable_conditions": stringSlice(n.NonTreatableConditions),
		"created_on":               formatTime(createdOn),
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}
	data, ok := result.(map[string]interface{})
	if !ok {
		return errors.New("unexpected result format")
	}
	n.ID = extractRecordID(data["id"])
	n.CreatedOn = createdOn.UTC()
	return nil
}

func parseQuiz(result interface{}) (*model.QuizResponse, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	q := &model.QuizResponse{
		QuizID:                   getString(data, "quiz_id"),
		PainDuration:             getString(data, "pain_duration"),
		TreatmentsTried:          getStringSlice(data, "treatments_tried"),
		PainMedicationsTypes:     getStringSlice(data, "pain_medications_types"),
		Conditions:               getStringSlice(data, "conditions"),
		ConditionOther:           getString(data, "condition_other"),
		MissingActivities:        getStringSlice(data, "missing_activities"),
		MissingOther:             getString(data, "missing_other"),
		UrgencyLevel:             getString(data, "urgency_level"),
		AnnualSpending:           getString(data, "annual_spending"),
		OpenQuestions:            getString(data, "open_questions"),
		Name:                     getString(data, "name"),
		Email:                    getString(data, "email"),
		Phone:                    getString(data, "phone"),
		QualificationStatus:      model.QualificationStatus(getString(data, "qualification_status")),
		TreatableConditions:      getStringSlice(data, "treatable_conditions"),
		NonTreatableConditions:   getStringSlice(data, "non_treatable_conditions"),
		RequiresManualReview:     getBool(data, "requires_manual_review"),
		ApproximatePainStartDate: getString(data, "approximate_pain_start_date"),
		StartedAt:                getTimeValue(data, "started_at"),
		CompletedAt:              getTime(data, "completed_at"),
		WantsNotification:        getBoolPtr(data, "wants_notification"),
		ReviewFlaggedAt:          getTime(data, "review_flagged_at"),
	}
	return q, nil
}

func parseWaitingListEntry(data map[string]interface{}) *model.WaitingListEntry {
	return &model.WaitingListEntry{
		ID:     extractRecordID(data["id"]),
		QuizID: getString(data, "quiz_id"),
		Contact: model.Contact{
			Name:  getString(data, "name"),
			Email: getString(data, "email"),
			Phone: getString(data, "phone"),
		},
		ApproximatePainStartDate: getString(data, "approximate_pain_start_date"),
		FollowUpAt:               getTimeValue(data, "follow_up_at"),
		NotifiedAt:               getTime(data, "notified_at"),
		FollowUpAttempts:         getInt(data, "follow_up_attempts"),
		NextAttemptAt:            getTime(data, "next_attempt_at"),
		CreatedOn:                getTimeValue(data, "created_on"),
	}
}
