package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/internal/service"
	"github.com/primarycell/assessment/internal/telemetry"
)

// QuizService defines the quiz operations the handler depends on
type QuizService interface {
	AnalyzeConditions(ctx context.Context, req model.AnalyzeConditionsRequest) model.ConditionAnalysis
	NextStep(ctx context.Context, req model.NextStepRequest) (*model.StepDecision, error)
	GetQuiz(ctx context.Context, quizID string) (*model.QuizResponse, error)
	SubmitQuiz(ctx context.Context, resp *model.QuizResponse) (*model.SubmitQuizResult, error)
	SubmitContact(ctx context.Context, sub model.ContactSubmission) (*model.ContactResult, error)
	JoinWaitingList(ctx context.Context, req model.WaitingListRequest) (*model.MessageResult, error)
	NotifyMe(ctx context.Context, req model.NotifyMeRequest) (*model.MessageResult, error)
	SendWelcomeEmail(ctx context.Context, req model.WelcomeEmailRequest) (*model.MessageResult, error)
	SendWelcomeSMS(ctx context.Context, req model.WelcomeSMSRequest) (*model.MessageResult, error)
}

// QuizHandler handles quiz endpoints
type QuizHandler struct {
	quizService QuizService
	metrics     *telemetry.Metrics
	logger      *slog.Logger
}

// NewQuizHandler creates a new quiz handler. metrics may be nil.
func NewQuizHandler(quizService QuizService, metrics *telemetry.Metrics, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{
		quizService: quizService,
		metrics:     metrics,
		logger:      logger,
	}
}

// RegisterRoutes registers the quiz routes on the mux
func (h *QuizHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quiz/steps", h.Steps)
	mux.HandleFunc("POST /api/quiz/next-step", h.NextStep)
	mux.HandleFunc("POST /api/quiz/analyze-conditions", h.AnalyzeConditions)
	mux.HandleFunc("POST /api/quiz/submit-quiz", h.SubmitQuiz)
	mux.HandleFunc("GET /api/quiz/{quizId}", h.GetQuiz)
	mux.HandleFunc("POST /api/quiz/submit-contact", h.SubmitContact)
	mux.HandleFunc("POST /api/quiz/disqualified-waiting-list", h.JoinWaitingList)
	mux.HandleFunc("POST /api/quiz/disqualified-notify-me", h.NotifyMe)
	mux.HandleFunc("POST /api/quiz/send-welcome-email", h.SendWelcomeEmail)
	mux.HandleFunc("POST /api/quiz/send-welcome-sms", h.SendWelcomeSMS)
}

// Steps handles GET /api/quiz/steps - ordered steps and option catalogs
func (h *QuizHandler) Steps(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, model.StepsInfo{
		Steps:    service.Steps(),
		Catalogs: model.GetCatalogs(),
	}, map[string]string{
		"self":      "/api/quiz/steps",
		"next_step": "/api/quiz/next-step",
	})
}

// NextStep handles POST /api/quiz/next-step - routing decision for the current step
func (h *QuizHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	var req model.NextStepRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, decodeProblem(err))
		return
	}

	decision, err := h.quizService.NextStep(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "next step")
		return
	}

	WriteData(w, http.StatusOK, decision, nil)
}

// AnalyzeConditions handles POST /api/quiz/analyze-conditions
func (h *QuizHandler) AnalyzeConditions(w http.ResponseWriter, r *http.Request) {
	var req model.AnalyzeConditionsRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, decodeProblem(err))
		return
	}

	WriteData(w, http.StatusOK, h.quizService.AnalyzeConditions(r.Context(), req), nil)
}

// SubmitQuiz handles POST /api/quiz/submit-quiz - store a completed quiz
func (h *QuizHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var resp model.QuizResponse
	if err := DecodeJSON(w, r, &resp); err != nil {
		WriteError(w, decodeProblem(err))
		return
	}

	result, err := h.quizService.SubmitQuiz(r.Context(), &resp)
	if err != nil {
		h.writeServiceError(w, r, err, "submit quiz")
		return
	}

	h.metrics.QuizSubmitted(string(result.QualificationStatus))
	WriteData(w, http.StatusCreated, result, map[string]string{
		"self":    "/api/quiz/" + result.QuizID,
		"contact": "/api/quiz/submit-contact",
	})
}

// GetQuiz handles GET /api/quiz/{quizId}
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("quizId")

	quiz, err := h.quizService.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.writeServiceError(w, r, err, "get quiz")
		return
	}

	WriteData(w, http.StatusOK, quiz, map[string]string{
		"self": "/api/quiz/" + quiz.QuizID,
	})
}

// SubmitContact handles POST /api/quiz/submit-contact
func (h *QuizHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var sub model.ContactSubmission
	if err := DecodeJSON(w, r, &sub); err != nil {
		WriteError(w, decodeProblem(err))
		return
	}

	result, err := h.quizService.SubmitContact(r.Context(), sub)
	if err != nil {
		h.writeServiceError(w, r, err, "submit contact")
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// JoinWaitingList handles POST /api/quiz/disqualified-waiting-list
func (h *QuizHandler) JoinWaitingList(w http.ResponseWriter, r *http.Request) {
	var req model.WaitingListRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, decodeProblem(err))
		return
	}

	result, err := h.quizService.JoinWaitingList(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "join waiting list")
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// NotifyMe handles POST /api/quiz/disqualified-notify-me
func (h *QuizHandler) NotifyMe(w http.ResponseWriter, r *http.Request) {
	var req model.NotifyMeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, decodeProblem(err))
		return
	}

	result, err := h.quizService.NotifyMe(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "notify me")
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// SendWelcomeEmail handles POST /api/quiz/send-welcome-email
func (h *QuizHandler) SendWelcomeEmail(w http.ResponseWriter, r *http.Request) {
	var req model.WelcomeEmailRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, decodeProblem(err))
		return
	}

	result, err := h.quizService.SendWelcomeEmail(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "send welcome email")
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// SendWelcomeSMS handles POST /api/quiz/send-welcome-sms
func (h *QuizHandler) SendWelcomeSMS(w http.ResponseWriter, r *http.Request) {
	var req model.WelcomeSMSRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, decodeProblem(err))
		return
	}

	result, err := h.quizService.SendWelcomeSMS(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "send welcome sms")
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

func (h *QuizHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	pd := MapServiceErrorWithContext(err, operation)
	if pd.Status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "quiz request failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}
	WriteError(w, pd)
}
