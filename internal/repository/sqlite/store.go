// Package sqlite provides a SQLite-backed lead storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/internal/repository/sqlite/migrations"
)

// ErrNotFound is returned by updates that match no record
var ErrNotFound = errors.New("record not found")

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Store persists quiz responses and leads in SQLite.
type Store struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite lead store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveQuiz inserts or replaces a quiz response by quiz_id
func (s *Store) SaveQuiz(ctx context.Context, q *model.QuizResponse) error {
	if strings.TrimSpace(q.QuizID) == "" {
		return fmt.Errorf("quiz id is required")
	}

	var completedAt sql.NullInt64
	if q.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: toMillis(*q.CompletedAt), Valid: true}
	}
	var wantsNotification sql.NullBool
	if q.WantsNotification != nil {
		wantsNotification = sql.NullBool{Bool: *q.WantsNotification, Valid: true}
	}
	var reviewFlaggedAt sql.NullInt64
	if q.ReviewFlaggedAt != nil {
		reviewFlaggedAt = sql.NullInt64{Int64: toMillis(*q.ReviewFlaggedAt), Valid: true}
	}
	startedAt := q.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_responses (
		   quiz_id, pain_duration, treatments_tried, pain_medications_types,
		   conditions, condition_other, missing_activities, missing_other,
		   urgency_level, annual_spending, open_questions,
		   name, email, phone,
		   qualification_status, treatable_conditions, non_treatable_conditions, requires_manual_review,
		   approximate_pain_start_date, wants_notification, review_flagged_at,
		   started_at, completed_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(quiz_id) DO UPDATE SET
		   pain_duration = excluded.pain_duration,
		   treatments_tried = excluded.treatments_tried,
		   pain_medications_types = excluded.pain_medications_types,
		   conditions = excluded.conditions,
		   condition_other = excluded.condition_other,
		   missing_activities = excluded.missing_activities,
		   missing_other = excluded.missing_other,
		   urgency_level = excluded.urgency_level,
		   annual_spending = excluded.annual_spending,
		   open_questions = excluded.open_questions,
		   name = excluded.name,
		   email = excluded.email,
		   phone = excluded.phone,
		   qualification_status = excluded.qualification_status,
		   treatable_conditions = excluded.treatable_conditions,
		   non_treatable_conditions = excluded.non_treatable_conditions,
		   requires_manual_review = excluded.requires_manual_review,
		   approximate_pain_start_date = excluded.approximate_pain_start_date,
		   wants_notification = excluded.wants_notification,
		   review_flagged_at = excluded.review_flagged_at,
		   started_at = excluded.started_at,
		   completed_at = excluded.completed_at,
		   updated_at = excluded.updated_at`,
		q.QuizID, q.PainDuration, encodeList(q.TreatmentsTried), encodeList(q.PainMedicationsTypes),
		encodeList(q.Conditions), q.ConditionOther, encodeList(q.MissingActivities), q.MissingOther,
		q.UrgencyLevel, q.AnnualSpending, q.OpenQuestions,
		q.Name, q.Email, q.Phone,
		string(q.QualificationStatus), encodeList(q.TreatableConditions), encodeList(q.NonTreatableConditions), q.RequiresManualReview,
		q.ApproximatePainStartDate, wantsNotification, reviewFlaggedAt,
		toMillis(startedAt), completedAt, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

// GetQuiz returns a quiz response by ID, or nil when it does not exist
func (s *Store) GetQuiz(ctx context.Context, quizID string) (*model.QuizResponse, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT quiz_id, pain_duration, treatments_tried, pain_medications_types,
		        conditions, condition_other, missing_activities, missing_other,
		        urgency_level, annual_spending, open_questions,
		        name, email, phone,
		        qualification_status, treatable_conditions, non_treatable_conditions, requires_manual_review,
		        approximate_pain_start_date, wants_notification, review_flagged_at,
		        started_at, completed_at
		   FROM quiz_responses
		  WHERE quiz_id = ?`,
		quizID,
	)

	var (
		q                                                             model.QuizResponse
		treatments, medications, conditions, missing, treat, nonTreat string
		status                                                        string
		wantsNotification                                             sql.NullBool
		startedAt                                                     int64
		completedAt, reviewFlaggedAt                                  sql.NullInt64
	)
	err := row.Scan(
		&q.QuizID, &q.PainDuration, &treatments, &medications,
		&conditions, &q.ConditionOther, &missing, &q.MissingOther,
		&q.UrgencyLevel, &q.AnnualSpending, &q.OpenQuestions,
		&q.Name, &q.Email, &q.Phone,
		&status, &treat, &nonTreat, &q.RequiresManualReview,
		&q.ApproximatePainStartDate, &wantsNotification, &reviewFlaggedAt,
		&startedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	q.TreatmentsTried = decodeList(treatments)
	q.PainMedicationsTypes = decodeList(medications)
	q.Conditions = decodeList(conditions)
	q.MissingActivities = decodeList(missing)
	q.TreatableConditions = decodeList(treat)
	q.NonTreatableConditions = decodeList(nonTreat)
	q.QualificationStatus = model.QualificationStatus(status)
	q.StartedAt = fromMillis(startedAt)
	if completedAt.Valid {
		t := fromMillis(completedAt.Int64)
		q.CompletedAt = &t
	}
	if wantsNotification.Valid {
		b := wantsNotification.Bool
		q.WantsNotification = &b
	}
	if reviewFlaggedAt.Valid {
		t := fromMillis(reviewFlaggedAt.Int64)
		q.ReviewFlaggedAt = &t
	}
	return &q, nil
}

// SaveContact attaches contact details to an existing quiz response
func (s *Store) SaveContact(ctx context.Context, quizID string, c model.Contact) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_responses SET name = ?, email = ?, phone = ?, updated_at = ? WHERE quiz_id = ?`,
		c.Name, c.Email, c.Phone, toMillis(time.Now()), quizID,
	)
	if err != nil {
		return fmt.Errorf("save contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save contact: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("save contact for quiz %s: %w", quizID, ErrNotFound)
	}
	return nil
}

// FlagForReview records when a lead was queued for practitioner review
func (s *Store) FlagForReview(ctx context.Context, quizID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_responses SET review_flagged_at = ?, updated_at = ? WHERE quiz_id = ?`,
		toMillis(at), toMillis(time.Now()), quizID,
	)
	if err != nil {
		return fmt.Errorf("flag for review: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("flag quiz %s for review: %w", quizID, ErrNotFound)
	}
	return nil
}

// SaveWaitingListEntry inserts a waiting-list entry, assigning an ID when empty
func (s *Store) SaveWaitingListEntry(ctx context.Context, e *model.WaitingListEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedOn.IsZero() {
		e.CreatedOn = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO waiting_list (
		   id, quiz_id, name, email, phone, approximate_pain_start_date,
		   follow_up_at, notified_at, created_on
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
		e.ID, e.QuizID, e.Contact.Name, e.Contact.Email, e.Contact.Phone, e.ApproximatePainStartDate,
		toMillis(e.FollowUpAt), toMillis(e.CreatedOn),
	)
	if err != nil {
		return fmt.Errorf("save waiting list entry: %w", err)
	}
	return nil
}

// ListDueWaitingList returns un-notified entries due at or before the given time,
// oldest follow-up first. Entries deferred after a failed delivery are skipped
// until their next attempt time.
func (s *Store) ListDueWaitingList(ctx context.Context, before time.Time, limit int) ([]*model.WaitingListEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, quiz_id, name, email, phone, approximate_pain_start_date, follow_up_at,
		        follow_up_attempts, next_attempt_at, created_on
		   FROM waiting_list
		  WHERE notified_at IS NULL AND follow_up_at <= ?
		    AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
		  ORDER BY follow_up_at ASC, id ASC
		  LIMIT ?`,
		toMillis(before), toMillis(before), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due waiting list: %w", err)
	}
	defer rows.Close()

	var entries []*model.WaitingListEntry
	for rows.Next() {
		var e model.WaitingListEntry
		var followUp, created int64
		var nextAttempt sql.NullInt64
		if err := rows.Scan(&e.ID, &e.QuizID, &e.Contact.Name, &e.Contact.Email, &e.Contact.Phone,
			&e.ApproximatePainStartDate, &followUp, &e.FollowUpAttempts, &nextAttempt, &created); err != nil {
			return nil, fmt.Errorf("scan waiting list entry: %w", err)
		}
		e.FollowUpAt = fromMillis(followUp)
		e.CreatedOn = fromMillis(created)
		if nextAttempt.Valid {
			t := fromMillis(nextAttempt.Int64)
			e.NextAttemptAt = &t
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// MarkWaitingListNotified records that a follow-up was sent
func (s *Store) MarkWaitingListNotified(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE waiting_list SET notified_at = ? WHERE id = ?`,
		toMillis(at), id,
	)
	if err != nil {
		return fmt.Errorf("mark waiting list notified: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark waiting list entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecordFollowUpFailure counts a failed delivery and defers the entry until retryAt
func (s *Store) RecordFollowUpFailure(ctx context.Context, id string, retryAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE waiting_list SET follow_up_attempts = follow_up_attempts + 1, next_attempt_at = ? WHERE id = ?`,
		toMillis(retryAt), id,
	)
	if err != nil {
		return fmt.Errorf("record follow-up failure: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record follow-up failure for %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveNotifyRequest inserts a notification request, assigning an ID when empty
func (s *Store) SaveNotifyRequest(ctx context.Context, r *model.NotifyRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedOn.IsZero() {
		r.CreatedOn = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notify_requests (id, quiz_id, name, email, phone, non_treatable_conditions, created_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.QuizID, r.Contact.Name, r.Contact.Email, r.Contact.Phone,
		encodeList(r.NonTreatableConditions), toMillis(r.CreatedOn),
	)
	if err != nil {
		return fmt.Errorf("save notify request: %w", err)
	}
	return nil
}

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw string) []string {
	var out []string
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}
