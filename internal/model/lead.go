package model

import "time"

// Free-text limits
const (
	MaxNameLength      = 100
	MaxFreeTextLength  = 2000
	MaxOtherTextLength = 200
	MaxQuizIDLength    = 64
)

// FollowUpMonths is how long after pain onset a too-soon respondent is contacted again
const FollowUpMonths = 6

// Contact is the lead's contact record
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ContactSubmission is posted from the congratulations page
type ContactSubmission struct {
	QuizID        string `json:"quiz_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ConsentToText *bool  `json:"consent_to_text,omitempty"`
}

// Consent returns the SMS consent, defaulting to true when omitted
func (s ContactSubmission) Consent() bool {
	if s.ConsentToText == nil {
		return true
	}
	return *s.ConsentToText
}

// ContactResult confirms a stored contact
type ContactResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to"`
}

// WaitingListRequest is posted by respondents whose pain is too recent
type WaitingListRequest struct {
	QuizID                   string `json:"quiz_id"`
	Name                     string `json:"name"`
	Email                    string `json:"email"`
	Phone                    string `json:"phone"`
	ApproximatePainStartDate string `json:"approximate_pain_start_date,omitempty"`
}

// WaitingListEntry is a stored too-soon lead awaiting follow-up
type WaitingListEntry struct {
	ID                       string     `json:"id"`
	QuizID                   string     `json:"quiz_id"`
	Contact                  Contact    `json:"contact"`
	ApproximatePainStartDate string     `json:"approximate_pain_start_date,omitempty"`
	FollowUpAt               time.Time  `json:"follow_up_at"`
	NotifiedAt               *time.Time `json:"notified_at,omitempty"`
	// Failed deliveries so far; the entry is skipped until NextAttemptAt
	FollowUpAttempts int        `json:"follow_up_attempts,omitempty"`
	NextAttemptAt    *time.Time `json:"next_attempt_at,omitempty"`
	CreatedOn        time.Time  `json:"created_on"`
}

// NotifyMeRequest is posted by respondents with only non-treatable conditions
type NotifyMeRequest struct {
	QuizID                 string   `json:"quiz_id"`
	Name                   string   `json:"name"`
	Email                  string   `json:"email"`
	Phone                  string   `json:"phone"`
	NonTreatableConditions []string `json:"non_treatable_conditions"`
}

// NotifyRequest is a stored notification preference
type NotifyRequest struct {
	ID                     string    `json:"id"`
	QuizID                 string    `json:"quiz_id"`
	Contact                Contact   `json:"contact"`
	NonTreatableConditions []string  `json:"non_treatable_conditions"`
	CreatedOn              time.Time `json:"created_on"`
}

// WelcomeEmailRequest triggers the welcome email placeholder
type WelcomeEmailRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	VideoLink string `json:"video_link"`
}

// WelcomeSMSRequest triggers the welcome SMS placeholder
type WelcomeSMSRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// MessageResult is a generic acknowledgement
type MessageResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Placeholder bool   `json:"placeholder,omitempty"`
}
