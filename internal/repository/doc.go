// Package repository implements lead storage on SurrealDB.
//
// LeadRepository satisfies service.LeadRepository. Quiz responses are keyed
// by their quiz ID, so a resubmission replaces the earlier record in place.
// Waiting-list entries and notify-me requests get generated record IDs.
//
// # Schema
//
// Migrate defines schemaless tables with indexes on the fields the service
// filters by (qualification status, follow-up due date, quiz ID). It is safe
// to run on every start.
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::thing() for record IDs built from the quiz ID
//   - Lookups return (nil, nil) when nothing matches
//
// The SQLite implementation in the sqlite subpackage is the default store;
// both are exercised by the same acceptance tests.
//
// # Example Usage
//
//	repo := repository.NewLeadRepository(db)
//	if err := repo.Migrate(ctx); err != nil {
//	    return err
//	}
//	quiz, err := repo.GetQuiz(ctx, "quiz_abc123")
package repository
