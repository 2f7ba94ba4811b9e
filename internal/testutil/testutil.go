// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"studiolinks/internal/db"
)

// DatabaseURL returns TEST_DATABASE_URL, skipping the test when it is unset.
func DatabaseURL(t *testing.T) string {
	t.Helper()
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
	return connString
}

// TestDB creates a migrated, empty test database connection. Data is removed
// and the pool closed when the test finishes.
func TestDB(t *testing.T) *db.DB {
	t.Helper()
	connString := DatabaseURL(t)

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)
	t.Cleanup(func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	})

	return database
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	pool.Exec(ctx, "DELETE FROM slug_lookups")
	pool.Exec(ctx, "DELETE FROM links")
}

// CreateTestLink inserts or replaces a link.
func CreateTestLink(t *testing.T, database *db.DB, slug, url string) {
	t.Helper()
	ctx := context.Background()

	_, err := database.Pool.Exec(ctx, `
		INSERT INTO links (slug, url)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET url = EXCLUDED.url
	`, slug, url)
	if err != nil {
		t.Fatalf("failed to create test link: %v", err)
	}
}
