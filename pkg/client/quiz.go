package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/primarycell/assessment/internal/model"
)

// TokenResponse is the body of GET /api/csrf-token
type TokenResponse struct {
	Token     string `json:"csrf_token"`
	ExpiresIn int    `json:"expires_in"`
}

// Health calls GET /health
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	if err := c.do(ctx, request{method: http.MethodGet, path: "/health", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchCSRFToken requests a fresh token and caches it for unsafe calls.
// The matching cookie is kept in the client's jar.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	var out TokenResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/csrf-token", out: &out}); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return out.Token, nil
}

// Steps calls GET /api/quiz/steps
func (c *Client) Steps(ctx context.Context) (*model.StepsInfo, error) {
	var out model.StepsInfo
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/quiz/steps", out: &out, envelope: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeConditions calls POST /api/quiz/analyze-conditions
func (c *Client) AnalyzeConditions(ctx context.Context, req model.AnalyzeConditionsRequest) (*model.ConditionAnalysis, error) {
	var out model.ConditionAnalysis
	if err := c.post(ctx, "/api/quiz/analyze-conditions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NextStep calls POST /api/quiz/next-step
func (c *Client) NextStep(ctx context.Context, req model.NextStepRequest) (*model.StepDecision, error) {
	var out model.StepDecision
	if err := c.post(ctx, "/api/quiz/next-step", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitQuiz calls POST /api/quiz/submit-quiz
func (c *Client) SubmitQuiz(ctx context.Context, quiz *model.QuizResponse) (*model.SubmitQuizResult, error) {
	var out model.SubmitQuizResult
	if err := c.post(ctx, "/api/quiz/submit-quiz", quiz, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQuiz calls GET /api/quiz/{quizId}
func (c *Client) GetQuiz(ctx context.Context, quizID string) (*model.QuizResponse, error) {
	var out model.QuizResponse
	path := "/api/quiz/" + url.PathEscape(quizID)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, out: &out, envelope: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitContact calls POST /api/quiz/submit-contact
func (c *Client) SubmitContact(ctx context.Context, sub model.ContactSubmission) (*model.ContactResult, error) {
	var out model.ContactResult
	if err := c.post(ctx, "/api/quiz/submit-contact", sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinWaitingList calls POST /api/quiz/disqualified-waiting-list
func (c *Client) JoinWaitingList(ctx context.Context, req model.WaitingListRequest) (*model.MessageResult, error) {
	var out model.MessageResult
	if err := c.post(ctx, "/api/quiz/disqualified-waiting-list", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NotifyMe calls POST /api/quiz/disqualified-notify-me
func (c *Client) NotifyMe(ctx context.Context, req model.NotifyMeRequest) (*model.MessageResult, error) {
	var out model.MessageResult
	if err := c.post(ctx, "/api/quiz/disqualified-notify-me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body, out: out, envelope: true})
}
