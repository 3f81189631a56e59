package model

import "time"

// QualificationStatus describes where a respondent is routed after the quiz
type QualificationStatus string

const (
	StatusQualified                QualificationStatus = "qualified"
	StatusDisqualifiedTooSoon      QualificationStatus = "disqualified_too_soon"
	StatusDisqualifiedNonTreatable QualificationStatus = "disqualified_non_treatable"
	StatusManualReview             QualificationStatus = "manual_review"
)

// Valid reports whether s is a known status
func (s QualificationStatus) Valid() bool {
	switch s {
	case StatusQualified, StatusDisqualifiedTooSoon, StatusDisqualifiedNonTreatable, StatusManualReview:
		return true
	}
	return false
}

// DisqualificationNonTreatableOnly is reported when every selected condition is non-treatable
const DisqualificationNonTreatableOnly = "non_treatable_only"

// Step identifies a page in the quiz funnel
type Step string

const (
	StepDuration                 Step = "duration"
	StepTreatments               Step = "treatments"
	StepPainMedications          Step = "pain_medications"
	StepConditions               Step = "conditions"
	StepEducationPrimaryCell     Step = "education_primary_cell"
	StepEducationAlternative     Step = "education_alternative"
	StepMissing                  Step = "missing"
	StepUrgency                  Step = "urgency"
	StepSpending                 Step = "spending"
	StepQuestions                Step = "questions"
	StepCongratulations          Step = "congratulations"
	StepWelcome                  Step = "welcome"
	StepDisqualifiedTooSoon      Step = "disqualified_too_soon"
	StepDisqualifiedNonTreatable Step = "disqualified_non_treatable"
)

// IsTerminal reports whether the step ends the funnel
func (s Step) IsTerminal() bool {
	switch s {
	case StepWelcome, StepDisqualifiedTooSoon, StepDisqualifiedNonTreatable:
		return true
	}
	return false
}

// QuizResponse is the flat record collected across the quiz steps
type QuizResponse struct {
	QuizID string `json:"quiz_id"`

	// Q1: time duration
	PainDuration string `json:"pain_duration,omitempty"`

	// Q2: treatments
	TreatmentsTried      []string `json:"treatments_tried,omitempty"`
	PainMedicationsTypes []string `json:"pain_medications_types,omitempty"`

	// Q3: conditions
	Conditions     []string `json:"conditions,omitempty"`
	ConditionOther string   `json:"condition_other,omitempty"`

	// Q4: what's missing
	MissingActivities []string `json:"missing_activities,omitempty"`
	MissingOther      string   `json:"missing_other,omitempty"`

	// Q5-Q7
	UrgencyLevel   string `json:"urgency_level,omitempty"`
	AnnualSpending string `json:"annual_spending,omitempty"`
	OpenQuestions  string `json:"open_questions,omitempty"`

	// Contact information
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	// Derived qualification
	QualificationStatus    QualificationStatus `json:"qualification_status,omitempty"`
	TreatableConditions    []string            `json:"treatable_conditions,omitempty"`
	NonTreatableConditions []string            `json:"non_treatable_conditions,omitempty"`
	RequiresManualReview   bool                `json:"requires_manual_review"`
	// ReviewFlaggedAt is set once a manual-review lead leaves contact details
	ReviewFlaggedAt *time.Time `json:"review_flagged_at,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Disqualified follow-up
	ApproximatePainStartDate string `json:"approximate_pain_start_date,omitempty"`
	WantsNotification        *bool  `json:"wants_notification,omitempty"`
}

// ConditionAnalysis is the routing outcome for the conditions step
type ConditionAnalysis struct {
	QualificationStatus              QualificationStatus `json:"qualification_status"`
	TreatableConditions              []string            `json:"treatable_conditions"`
	NonTreatableConditions           []string            `json:"non_treatable_conditions"`
	ShouldShowPrimaryCell            bool                `json:"should_show_primary_cell"`
	ShouldShowAlternativePrimaryCell bool                `json:"should_show_alternative_primary_cell"`
	RequiresManualReview             bool                `json:"requires_manual_review"`
	DisqualificationReason           string              `json:"disqualification_reason,omitempty"`
}

// StepDecision is the result of routing from one step to the next
type StepDecision struct {
	Current  Step                `json:"current"`
	Next     Step                `json:"next"`
	Status   QualificationStatus `json:"qualification_status,omitempty"`
	Analysis *ConditionAnalysis  `json:"analysis,omitempty"`
	Position int                 `json:"position"`
	Total    int                 `json:"total"`
}

// StepsInfo describes the ordered funnel and its option tables
type StepsInfo struct {
	Steps    []Step   `json:"steps"`
	Catalogs Catalogs `json:"catalogs"`
}

// AnalyzeConditionsRequest is the body of the analyze-conditions endpoint
type AnalyzeConditionsRequest struct {
	Conditions     []string `json:"conditions"`
	ConditionOther string   `json:"condition_other,omitempty"`
}

// NextStepRequest asks for the step following Current given the answers so far
type NextStepRequest struct {
	Current  Step         `json:"current"`
	Response QuizResponse `json:"response"`
}

// SubmitQuizResult confirms a stored quiz response
type SubmitQuizResult struct {
	Success             bool                `json:"success"`
	QuizID              string              `json:"quiz_id"`
	QualificationStatus QualificationStatus `json:"qualification_status"`
	Message             string              `json:"message"`
}
