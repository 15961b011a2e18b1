package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestDB represents a test database connection
type TestDB struct {
	Pool *pgxpool.Pool
}

// NewTestDB connects to the database named by TEST_DATABASE_URL. Tests are
// skipped when the variable is not set so the suite runs without Postgres.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping database test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err, "Failed to connect to test database")

	err = pool.Ping(ctx)
	require.NoError(t, err, "Failed to ping test database")

	return &TestDB{Pool: pool}
}

// Setup creates the photos and comments tables if needed
func (db *TestDB) Setup(t *testing.T) {
	t.Helper()

	err := EnsureSchema(context.Background(), db.Pool)
	require.NoError(t, err, "Failed to ensure schema")
}

// Cleanup removes all test data and resets the id sequences
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		"TRUNCATE comments, photos RESTART IDENTITY CASCADE")
	require.NoError(t, err, "Failed to truncate tables")
}

// Close closes the database connection
func (db *TestDB) Close(t *testing.T) {
	t.Helper()
	db.Pool.Close()
}

// RunTest runs a test against a clean database
func RunTest(t *testing.T, testFunc func(t *testing.T, repo *Repository)) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := NewTestDB(t)
	defer db.Close(t)

	db.Setup(t)
	db.Cleanup(t)

	testFunc(t, NewWithPool(db.Pool))
}
