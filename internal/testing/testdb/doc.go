// Package testdb provides isolated lead stores for tests.
//
// # SQLite
//
// New opens a migrated SQLite file under t.TempDir():
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    err := tdb.Store.SaveQuiz(tdb.Ctx(), quiz)
//	}
//
// # SurrealDB
//
// NewSurreal runs against a live server in a unique namespace that is
// removed on cleanup. It skips unless TEST_DB_HOST is set:
//
//	TEST_DB_HOST     - SurrealDB host
//	TEST_DB_PORT     - SurrealDB port (default: 8000)
//	TEST_DB_USER     - SurrealDB username (default: root)
//	TEST_DB_PASSWORD - SurrealDB password (default: root)
package testdb
