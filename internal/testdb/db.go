// Package testdb opens migrated databases for tests.
//
// Open returns a private in-memory SQLite database and needs no external
// services. OpenPostgres connects to the database named by
// STUDYBUDDY_TEST_DATABASE_URL (or DATABASE_URL) and skips the test when
// neither is set; pair it with WithTx so each test rolls back its changes.
package testdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// EnvDatabaseURL names the PostgreSQL database used by integration tests.
const EnvDatabaseURL = "STUDYBUDDY_TEST_DATABASE_URL"

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// GetTestDatabaseURL returns the database URL for integration tests.
// It checks STUDYBUDDY_TEST_DATABASE_URL and DATABASE_URL in that order.
func GetTestDatabaseURL() string {
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// ShouldSkipDatabaseTest reports whether no integration database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// Open returns a migrated private in-memory SQLite database that is closed
// when the test ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	return open(t, "sqlite://:memory:")
}

// OpenPostgres returns a migrated connection to the integration database,
// skipping the test when none is configured.
func OpenPostgres(t testing.TB) *sqlx.DB {
	t.Helper()
	if ShouldSkipDatabaseTest() {
		t.Skip(EnvDatabaseURL + " not set - skipping integration test")
	}
	return open(t, GetTestDatabaseURL())
}

func open(t testing.TB, url string) *sqlx.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, url, sqlstore.DefaultPoolConfig())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.MigrateUp, nil), "failed to run migrations")
	return db
}

// WithTx executes fn within a transaction that is always rolled back, so
// tests sharing one database do not see each other's rows.
func WithTx(t *testing.T, db *sqlx.DB, fn func(t *testing.T, tx *sqlx.Tx)) {
	t.Helper()

	tx, err := db.Beginx()
	require.NoError(t, err, "failed to begin transaction")
	defer func() { _ = tx.Rollback() }()

	fn(t, tx)
}
