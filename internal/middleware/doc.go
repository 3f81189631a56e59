// Package middleware provides HTTP middleware for the assessment API.
//
// The server wraps its mux in this order:
//
//	RequestID → Tracing → Logger → Recovery → Metrics → CORS →
//	RateLimitRoutes → CSRF → Idempotency → Compress
//
// # Rate Limiting
//
// RateLimitRoutes keeps one token bucket per client IP and limiter. Submit
// endpoints share a tighter limiter but each gets its own bucket per client,
// so exhausting submit-quiz leaves submit-contact untouched. Every other path
// shares the general bucket. Responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejections are 429 problems with code 4029.
//
// # CSRF
//
// POST, PUT, PATCH and DELETE requests must carry an X-CSRF-Token header that
// validates and equals the csrf_token cookie. Failures are 403 problems with
// the csrf problem type so clients know to refresh their token.
//
// # Idempotency
//
// A POST with an Idempotency-Key header is processed once per client, path
// and body; repeats receive the stored response with X-Idempotency-Replayed.
// 5xx and 429 responses are not stored, so retries reach the handler.
//
// # Context Values
//
//   - GetRequestID(ctx): unique request identifier
package middleware
