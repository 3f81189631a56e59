package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/internal/sanitize"
	"github.com/primarycell/assessment/pkg/logging"
)

// Accepted layouts for the approximate pain start date
var painStartLayouts = []string{"2006-01-02", "2006-01"}

// LeadRepository defines the interface for quiz and lead storage.
// Lookups return (nil, nil) when the record does not exist.
type LeadRepository interface {
	SaveQuiz(ctx context.Context, quiz *model.QuizResponse) error
	GetQuiz(ctx context.Context, quizID string) (*model.QuizResponse, error)
	SaveContact(ctx context.Context, quizID string, contact model.Contact) error
	FlagForReview(ctx context.Context, quizID string, at time.Time) error
	SaveWaitingListEntry(ctx context.Context, entry *model.WaitingListEntry) error
	// ListDueWaitingList skips entries whose NextAttemptAt is after before
	ListDueWaitingList(ctx context.Context, before time.Time, limit int) ([]*model.WaitingListEntry, error)
	MarkWaitingListNotified(ctx context.Context, id string, at time.Time) error
	// RecordFollowUpFailure counts a failed delivery and defers the entry until retryAt
	RecordFollowUpFailure(ctx context.Context, id string, retryAt time.Time) error
	SaveNotifyRequest(ctx context.Context, req *model.NotifyRequest) error
	Ping(ctx context.Context) error
}

// QuizService handles quiz routing and lead capture
type QuizService struct {
	repo         LeadRepository
	notifier     Notifier
	now          func() time.Time
	welcomeVideo string
	logger       *slog.Logger
}

// QuizServiceConfig holds configuration for the quiz service
type QuizServiceConfig struct {
	Repo     LeadRepository
	Notifier Notifier
	// Clock defaults to time.Now
	Clock func() time.Time
	// WelcomeVideoURL is sent in the welcome email
	WelcomeVideoURL string
	Logger          *slog.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(cfg QuizServiceConfig) *QuizService {
	s := &QuizService{
		repo:         cfg.Repo,
		notifier:     cfg.Notifier,
		now:          cfg.Clock,
		welcomeVideo: cfg.WelcomeVideoURL,
		logger:       cfg.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.logger)
	}
	return s
}

// Ping checks the backing store
func (s *QuizService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// AnalyzeConditions classifies a conditions answer
func (s *QuizService) AnalyzeConditions(_ context.Context, req model.AnalyzeConditionsRequest) model.ConditionAnalysis {
	other := sanitize.Text(req.ConditionOther, model.MaxOtherTextLength)
	return AnalyzeConditions(sanitize.Options(req.Conditions), other != "")
}

// NextStep routes from req.Current to the following page
func (s *QuizService) NextStep(_ context.Context, req model.NextStepRequest) (*model.StepDecision, error) {
	d, err := NextStep(req.Current, req.Response)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetQuiz retrieves a stored quiz response
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (*model.QuizResponse, error) {
	if quizID == "" {
		return nil, ErrQuizIDRequired
	}
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

// SubmitQuiz cleans, validates and stores a completed quiz response.
// Qualification fields are always recomputed from the answers; values sent by
// the client are ignored.
func (s *QuizService) SubmitQuiz(ctx context.Context, resp *model.QuizResponse) (*model.SubmitQuizResult, error) {
	if err := cleanQuiz(resp); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if resp.QuizID == "" {
		resp.QuizID = uuid.NewString()
	}

	existing, err := s.repo.GetQuiz(ctx, resp.QuizID)
	if err != nil {
		return nil, err
	}
	resp.ReviewFlaggedAt = nil
	if existing != nil {
		mergeContact(resp, existing)
		resp.ReviewFlaggedAt = existing.ReviewFlaggedAt
		if !existing.StartedAt.IsZero() {
			resp.StartedAt = existing.StartedAt
		}
	}
	if resp.StartedAt.IsZero() {
		resp.StartedAt = now
	}
	resp.CompletedAt = &now

	qualify(resp)

	if err := s.repo.SaveQuiz(ctx, resp); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "quiz submitted",
		slog.String("quiz_id", resp.QuizID),
		slog.String("qualification_status", string(resp.QualificationStatus)),
		slog.Bool("requires_manual_review", resp.RequiresManualReview),
	)

	return &model.SubmitQuizResult{
		Success:             true,
		QuizID:              resp.QuizID,
		QualificationStatus: resp.QualificationStatus,
		Message:             "Quiz response recorded successfully",
	}, nil
}

// SubmitContact attaches contact details to a stored quiz and sends the
// welcome messages
func (s *QuizService) SubmitContact(ctx context.Context, sub model.ContactSubmission) (*model.ContactResult, error) {
	quizID := sanitize.Text(sub.QuizID, model.MaxQuizIDLength)
	if quizID == "" {
		return nil, fieldErr("quiz_id", ErrQuizIDRequired)
	}
	contact, err := cleanContact(sub.Name, sub.Email, sub.Phone)
	if err != nil {
		return nil, err
	}

	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	if err := s.repo.SaveContact(ctx, quizID, contact); err != nil {
		return nil, err
	}
	if quiz.RequiresManualReview && quiz.ReviewFlaggedAt == nil {
		if err := s.repo.FlagForReview(ctx, quizID, s.now().UTC()); err != nil {
			return nil, err
		}
	}

	if err := s.notifier.SendWelcomeEmail(ctx, model.WelcomeEmailRequest{
		Email:     contact.Email,
		Name:      contact.Name,
		VideoLink: s.welcomeVideo,
	}); err != nil {
		s.logger.WarnContext(ctx, "welcome email failed", slog.String("quiz_id", quizID), slog.String("error", err.Error()))
	}
	if sub.Consent() {
		if err := s.notifier.SendWelcomeSMS(ctx, model.WelcomeSMSRequest{
			Phone: contact.Phone,
			Name:  contact.Name,
		}); err != nil {
			s.logger.WarnContext(ctx, "welcome sms failed", slog.String("quiz_id", quizID), slog.String("error", err.Error()))
		}
	}
	if quiz.RequiresManualReview {
		s.logger.InfoContext(ctx, "lead flagged for practitioner review",
			slog.String("quiz_id", quizID),
			slog.String("qualification_status", string(quiz.QualificationStatus)),
		)
	}

	return &model.ContactResult{
		Success:    true,
		Message:    "Contact information received",
		RedirectTo: "/welcome",
	}, nil
}

// JoinWaitingList stores a too-soon respondent for follow-up six months after
// their pain started
func (s *QuizService) JoinWaitingList(ctx context.Context, req model.WaitingListRequest) (*model.MessageResult, error) {
	quizID := sanitize.Text(req.QuizID, model.MaxQuizIDLength)
	if quizID == "" {
		return nil, fieldErr("quiz_id", ErrQuizIDRequired)
	}
	contact, err := cleanContact(req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	startDate := sanitize.Text(req.ApproximatePainStartDate, 10)
	followUp, err := followUpDate(startDate, now)
	if err != nil {
		return nil, fieldErr("approximate_pain_start_date", err)
	}

	entry := &model.WaitingListEntry{
		QuizID:                   quizID,
		Contact:                  contact,
		ApproximatePainStartDate: startDate,
		FollowUpAt:               followUp,
		CreatedOn:                now,
	}
	if err := s.repo.SaveWaitingListEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "waiting list joined",
		slog.String("quiz_id", quizID),
		logging.PII("email", contact.Email),
		slog.Time("follow_up_at", followUp),
	)

	return &model.MessageResult{
		Success: true,
		Message: "Added to waiting list successfully",
	}, nil
}

// NotifyMe stores a non-treatable respondent's notification preferences
func (s *QuizService) NotifyMe(ctx context.Context, req model.NotifyMeRequest) (*model.MessageResult, error) {
	quizID := sanitize.Text(req.QuizID, model.MaxQuizIDLength)
	if quizID == "" {
		return nil, fieldErr("quiz_id", ErrQuizIDRequired)
	}
	contact, err := cleanContact(req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	requested := sanitize.Options(req.NonTreatableConditions)
	conditions := model.FilterConditions(requested, model.NonTreatableConditions)
	if len(requested) == 0 {
		return nil, fieldErr("non_treatable_conditions", ErrStepIncomplete)
	}
	if len(conditions) == 0 {
		return nil, fieldErr("non_treatable_conditions", ErrInvalidOption)
	}

	nr := &model.NotifyRequest{
		QuizID:                 quizID,
		Contact:                contact,
		NonTreatableConditions: conditions,
		CreatedOn:              s.now().UTC(),
	}
	if err := s.repo.SaveNotifyRequest(ctx, nr); err != nil {
		return nil, err
	}

	return &model.MessageResult{
		Success: true,
		Message: "Notification preferences saved",
	}, nil
}

// SendWelcomeEmail sends the welcome email through the configured notifier
func (s *QuizService) SendWelcomeEmail(ctx context.Context, req model.WelcomeEmailRequest) (*model.MessageResult, error) {
	req.Email = sanitize.Email(req.Email)
	if !sanitize.ValidEmail(req.Email) {
		return nil, fieldErr("email", ErrInvalidEmail)
	}
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	req.Name = name
	req.VideoLink = sanitize.Text(req.VideoLink, model.MaxOtherTextLength)
	if req.VideoLink == "" {
		req.VideoLink = s.welcomeVideo
	}

	if err := s.notifier.SendWelcomeEmail(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}
	return &model.MessageResult{
		Success:     true,
		Message:     "Email endpoint ready - connect your email service to activate",
		Placeholder: true,
	}, nil
}

// SendWelcomeSMS sends the welcome SMS through the configured notifier
func (s *QuizService) SendWelcomeSMS(ctx context.Context, req model.WelcomeSMSRequest) (*model.MessageResult, error) {
	req.Phone = sanitize.Phone(req.Phone)
	if !sanitize.ValidPhone(req.Phone) {
		return nil, fieldErr("phone", ErrInvalidPhone)
	}
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	req.Name = name

	if err := s.notifier.SendWelcomeSMS(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}
	return &model.MessageResult{
		Success:     true,
		Message:     "SMS endpoint ready - connect your SMS service to activate",
		Placeholder: true,
	}, nil
}

// qualify recomputes the derived qualification fields of resp
func qualify(resp *model.QuizResponse) {
	analysis := AnalyzeConditions(resp.Conditions, resp.ConditionOther != "")
	resp.TreatableConditions = analysis.TreatableConditions
	resp.NonTreatableConditions = analysis.NonTreatableConditions
	resp.QualificationStatus = analysis.QualificationStatus
	resp.RequiresManualReview = analysis.RequiresManualReview

	if resp.PainDuration == model.PainDurationSixMonthsOrLess {
		resp.QualificationStatus = model.StatusDisqualifiedTooSoon
		resp.RequiresManualReview = false
	}
}

// cleanQuiz sanitises every field of resp in place and rejects values that
// are not in their option catalog. Unknown condition IDs are dropped.
func cleanQuiz(resp *model.QuizResponse) error {
	resp.QuizID = sanitize.Text(resp.QuizID, model.MaxQuizIDLength)

	resp.PainDuration = sanitize.Text(resp.PainDuration, 0)
	if resp.PainDuration != "" && !model.PainDurations.Contains(resp.PainDuration) {
		return fieldErr("pain_duration", ErrInvalidOption)
	}

	var err error
	if resp.TreatmentsTried, err = cleanOptions("treatments_tried", resp.TreatmentsTried, model.Treatments); err != nil {
		return err
	}
	if resp.PainMedicationsTypes, err = cleanOptions("pain_medications_types", resp.PainMedicationsTypes, model.PainMedicationTypes); err != nil {
		return err
	}
	if resp.MissingActivities, err = cleanOptions("missing_activities", resp.MissingActivities, model.MissingActivities); err != nil {
		return err
	}

	resp.Conditions = model.FilterConditions(sanitize.Options(resp.Conditions), model.AllConditions())
	resp.ConditionOther = sanitize.Text(resp.ConditionOther, model.MaxOtherTextLength)
	resp.MissingOther = sanitize.Text(resp.MissingOther, model.MaxOtherTextLength)
	resp.OpenQuestions = sanitize.Text(resp.OpenQuestions, model.MaxFreeTextLength)

	resp.UrgencyLevel = sanitize.Text(resp.UrgencyLevel, 0)
	if resp.UrgencyLevel != "" && !model.UrgencyLevels.Contains(resp.UrgencyLevel) {
		return fieldErr("urgency_level", ErrInvalidOption)
	}
	resp.AnnualSpending = sanitize.Text(resp.AnnualSpending, 0)
	if resp.AnnualSpending != "" && !model.AnnualSpending.Contains(resp.AnnualSpending) {
		return fieldErr("annual_spending", ErrInvalidOption)
	}

	// Contact details are optional at this stage but must be well formed
	resp.Name = sanitize.Name(resp.Name, model.MaxNameLength)
	if resp.Email != "" {
		resp.Email = sanitize.Email(resp.Email)
		if !sanitize.ValidEmail(resp.Email) {
			return fieldErr("email", ErrInvalidEmail)
		}
	}
	if resp.Phone != "" {
		resp.Phone = sanitize.Phone(resp.Phone)
		if !sanitize.ValidPhone(resp.Phone) {
			return fieldErr("phone", ErrInvalidPhone)
		}
	}

	resp.ApproximatePainStartDate = sanitize.Text(resp.ApproximatePainStartDate, 10)
	return nil
}

func cleanOptions(field string, values []string, catalog model.Catalog) ([]string, error) {
	values = sanitize.Options(values)
	for _, v := range values {
		if !catalog.Contains(v) {
			return nil, fieldErr(field, ErrInvalidOption)
		}
	}
	return values, nil
}

func cleanName(raw string) (string, error) {
	name := sanitize.Name(raw, 0)
	if name == "" {
		return "", fieldErr("name", ErrNameRequired)
	}
	if utf8.RuneCountInString(name) > model.MaxNameLength {
		return "", fieldErr("name", ErrNameTooLong)
	}
	return name, nil
}

func cleanContact(name, email, phone string) (model.Contact, error) {
	var c model.Contact
	var err error
	if c.Name, err = cleanName(name); err != nil {
		return c, err
	}
	c.Email = sanitize.Email(email)
	if !sanitize.ValidEmail(c.Email) {
		return c, fieldErr("email", ErrInvalidEmail)
	}
	c.Phone = sanitize.Phone(phone)
	if !sanitize.ValidPhone(c.Phone) {
		return c, fieldErr("phone", ErrInvalidPhone)
	}
	return c, nil
}

// mergeContact keeps contact details already stored for a quiz when a
// resubmission omits them
func mergeContact(resp, existing *model.QuizResponse) {
	if resp.Name == "" {
		resp.Name = existing.Name
	}
	if resp.Email == "" {
		resp.Email = existing.Email
	}
	if resp.Phone == "" {
		resp.Phone = existing.Phone
	}
}

// followUpDate returns the date six months after the pain started, or six
// months from now when no usable date was given. Dates in the future are
// rejected and follow-ups already overdue are scheduled for now.
func followUpDate(startDate string, now time.Time) (time.Time, error) {
	fallback := now.AddDate(0, model.FollowUpMonths, 0)
	if startDate == "" {
		return fallback, nil
	}
	for _, layout := range painStartLayouts {
		start, err := time.Parse(layout, startDate)
		if err != nil {
			continue
		}
		if start.After(now) {
			return time.Time{}, ErrInvalidPainStartDate
		}
		followUp := start.AddDate(0, model.FollowUpMonths, 0)
		if followUp.Before(now) {
			return now, nil
		}
		return followUp, nil
	}
	return fallback, nil
}
