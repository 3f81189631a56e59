// Package handler provides the HTTP handlers for the assessment API.
//
// Each handler struct holds the dependencies for one feature area and
// exposes RegisterRoutes(mux) using Go 1.22 method-and-path patterns.
// NewRouter mounts every handler on a single ServeMux and wraps it in the
// middleware chain:
//
//	RequestID → Tracing → Logger → Recovery → Metrics → CORS →
//	RateLimit → CSRF → Idempotency → Compress
//
// # Response Format
//
// Successful responses use WriteData, which wraps the payload as
// {"data": ..., "_links": {...}}. Errors are RFC 9457 Problem Details
// written by WriteError; service errors are translated by MapServiceError.
//
// Request bodies are decoded with DecodeJSON, which rejects unknown fields
// and bodies over 64 KiB.
package handler
