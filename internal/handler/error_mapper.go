package handler

import (
	"errors"

	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Field-tagged input errors become 422 validation problems naming the field.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var inputErr *service.InputError
	if errors.As(err, &inputErr) {
		return model.NewValidationError([]model.FieldError{{Field: inputErr.Field, Message: inputErr.Err.Error()}})
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrQuizNotFound):
		return model.NewNotFoundError("quiz")

	// ===== Routing Errors → 422 =====
	case errors.Is(err, service.ErrStepIncomplete),
		errors.Is(err, service.ErrInvalidOption):
		return model.NewValidationError([]model.FieldError{{Field: "response", Message: err.Error()}})
	case errors.Is(err, service.ErrTerminalStep),
		errors.Is(err, service.ErrUnknownStep):
		return model.NewValidationError([]model.FieldError{{Field: "current", Message: err.Error()}})

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrQuizIDRequired):
		return model.NewValidationError([]model.FieldError{{Field: "quiz_id", Message: err.Error()}})
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrNameTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "name", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidPhone):
		return model.NewValidationError([]model.FieldError{{Field: "phone", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidPainStartDate):
		return model.NewValidationError([]model.FieldError{{Field: "approximate_pain_start_date", Message: err.Error()}})

	// ===== Provider/External Errors → 502 =====
	case errors.Is(err, service.ErrNotifierUnavailable):
		return &model.ProblemDetails{
			Type:   model.ProblemTypeBase + "external-service",
			Title:  "External Service Error",
			Status: 502,
			Detail: err.Error(),
			Code:   model.ErrCodeExternalAPI,
		}

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
