package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB opens a migrated ledger on a named shared in-memory database.
// The name comes from t.Name() so parallel tests never share state; it is
// percent-encoded so it cannot be read as DSN query parameters.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", url.PathEscape(t.Name()), ledgerPragmas)

	db, err := openDual(context.Background(), dsn, ":memory:")
	if err != nil {
		t.Fatalf("open test ledger: %v", err)
	}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
