// Package client is a Go client for the assessment API.
//
// Every call is retried with exponential backoff (cenkalti/backoff/v5) up to
// Config.MaxAttempts. Transport errors, 408, 429 and 5xx responses are
// retried; a 429 waits for its Retry-After. Other 4xx responses fail at once
// as *APIError carrying the RFC 9457 problem.
//
// POST calls fetch a CSRF token on first use and keep the paired cookie in a
// jar. When the server rejects the token, the client fetches a new one and
// replays the call once. Each logical call sends one Idempotency-Key on all
// of its attempts, so a replayed submit is not stored twice.
//
//	c, err := client.New(client.Config{BaseURL: "http://localhost:8080"})
//	result, err := c.SubmitQuiz(ctx, &model.QuizResponse{QuizID: id})
package client
