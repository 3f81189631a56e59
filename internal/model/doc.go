// Package model defines domain entities and data structures for the assessment API.
//
// The model package contains the quiz response record, the static option
// catalogs the branching rules read from, lead capture types, and the RFC 9457
// error types shared by every layer.
//
// # Quiz Record
//
// QuizResponse is a flat record of selections collected page by page:
//
//	type QuizResponse struct {
//	    QuizID       string `json:"quiz_id"`
//	    PainDuration string `json:"pain_duration,omitempty"`
//	    Conditions   []string `json:"conditions,omitempty"`
//	    ...
//	}
//
// Derived fields (QualificationStatus, TreatableConditions,
// NonTreatableConditions, RequiresManualReview) are always recomputed by the
// service layer before a record is stored.
//
// # Catalogs
//
// Each question has a Catalog of options. TreatableConditions and
// NonTreatableConditions are disjoint; routing decisions are made purely by
// membership in these tables.
//
// # Error Types
//
// Problem Details errors are defined in errors.go. CSRF rejections use the
// dedicated ProblemTypeCSRF type and ErrCodeCSRF code so clients can tell
// them apart from other 403 responses.
package model
