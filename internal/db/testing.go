package db

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
)

// CreateTestPool connects to TEST_POSTGRESQL_URL with migrations from
// TEST_MIGRATIONS_PATH applied. The test is skipped when the database is not
// configured.
func CreateTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	connString := os.Getenv("TEST_POSTGRESQL_URL")
	if connString == "" {
		t.Skip("TEST_POSTGRESQL_URL is not set")
	}
	migrationsPath := os.Getenv("TEST_MIGRATIONS_PATH")
	if migrationsPath == "" {
		t.Skip("TEST_MIGRATIONS_PATH is not set")
	}
	if err := ApplyMigrations(connString, migrationsPath); err != nil {
		t.Fatalf("%v", err)
	}

	pool, err := Connect(context.Background(), connString)
	if err != nil {
		t.Fatalf("could not connect to the database: %v", err)
	}
	return pool
}

func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE reminder")
	if err != nil {
		t.Fatalf("could not truncate DB tables: %v", err)
	}
}
