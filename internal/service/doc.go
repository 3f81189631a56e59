// Package service implements the business logic layer for the assessment API.
//
// The service package contains the quiz rule table, page routing, input
// validation, and orchestration of repository and notifier calls. Services
// are the primary abstraction between HTTP handlers and data access.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with dependencies
//   - Methods implement business operations with proper validation
//   - Errors are returned as sentinel errors, wrapped in InputError when a
//     single request field is at fault
//   - Context is passed through for cancellation and request-scoped values
//
// # Rules
//
// AnalyzeConditions and NextStep are pure functions over the option catalogs
// in the model package. QuizService wraps them so handlers only depend on one
// type, and SubmitQuiz reuses AnalyzeConditions so stored qualification
// fields never come from the client.
//
// # Repository Interfaces
//
// LeadRepository is declared here and implemented by the sqlite and
// SurrealDB stores, allowing:
//
//   - Easy mocking for unit tests
//   - Swapping the backing database through configuration
//
// # Example Usage
//
//	svc := NewQuizService(QuizServiceConfig{
//	    Repo:     store,
//	    Notifier: NewLogNotifier(logger),
//	})
//	result, err := svc.SubmitQuiz(ctx, &model.QuizResponse{
//	    PainDuration: model.PainDurationMoreThanSixMonth,
//	    Conditions:   []string{"chronic_back_pain"},
//	})
package service
