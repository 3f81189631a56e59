package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/primarycell/assessment/internal/database"
	"github.com/primarycell/assessment/internal/repository"
	"github.com/primarycell/assessment/internal/repository/sqlite"
	"github.com/primarycell/assessment/internal/service"
)

// TestDB is an isolated lead store for one test
type TestDB struct {
	Store   service.LeadRepository
	Backend string
	t       *testing.T
}

var (
	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64
)

// uniqueNamespace generates a unique SurrealDB namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New opens a migrated SQLite store in the test's temp dir.
// The store is closed when the test ends.
func New(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "leads.db"))
	if err != nil {
		t.Fatalf("testdb: failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return &TestDB{Store: store, Backend: "sqlite", t: t}
}

// NewSurreal connects to the SurrealDB named by TEST_DB_HOST in a fresh
// namespace and applies the lead schema. The test is skipped when
// TEST_DB_HOST is unset.
func NewSurreal(t *testing.T) *TestDB {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("testdb: TEST_DB_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := database.Config{
		Host:      host,
		Port:      envOr("TEST_DB_PORT", "8000"),
		User:      envOr("TEST_DB_USER", "root"),
		Password:  envOr("TEST_DB_PASSWORD", "root"),
		Namespace: uniqueNamespace(),
		Database:  "test",
	}

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	repo := repository.NewLeadRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		t.Fatalf("testdb: migration failed: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", cfg.Namespace), nil) // Ignore errors on cleanup
		_ = db.Close()
	})

	return &TestDB{Store: repo, Backend: "surrealdb", t: t}
}

// Ctx returns a context with a reasonable timeout for test operations.
// The context is cancelled when the test ends.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
