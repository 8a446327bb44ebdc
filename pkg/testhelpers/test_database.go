// Package testhelpers provides the throwaway Postgres harness the
// integration tests run against: one container per test, migrated to the
// current schema.
package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:17-alpine"
	testDatabase  = "asta_test"
	testUser      = "asta"
	testPassword  = "asta"

	// initdb restarts the server once, so the ready line appears twice
	readyOccurrences = 2
	startupTimeout   = 60 * time.Second
	terminateTimeout = 30 * time.Second
)

// TestDatabase is a disposable Postgres instance with the full migration
// chain applied
type TestDatabase struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// NewTestDatabase starts a Postgres container, waits until it accepts
// connections and applies the goose migrations found at migrationsPath,
// relative to the calling test file
func NewTestDatabase(t *testing.T, migrationsPath string) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(readyOccurrences).
				WithStartupTimeout(startupTimeout)),
		testcontainers.WithLogger(testcontainers.TestLogger(t)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %s", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("read container connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("open pgx pool: %s", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping test database: %s", err)
	}

	applyMigrations(t, connStr, migrationsPath)

	return &TestDatabase{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// applyMigrations runs the goose chain over database/sql; goose cannot
// drive a pgx pool directly
func applyMigrations(t *testing.T, connStr, migrationsPath string) {
	t.Helper()

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		t.Fatalf("open sql connection for goose: %s", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("set goose dialect: %s", err)
	}

	dir, err := filepath.Abs(migrationsPath)
	if err != nil {
		t.Fatalf("resolve migrations dir: %s", err)
	}
	if err := goose.Up(db, dir); err != nil {
		t.Fatalf("apply migrations: %s", err)
	}
}

// Close releases the pool and terminates the container. A termination
// failure is reported but never fails the test.
func (td *TestDatabase) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
	defer cancel()

	td.Pool.Close()
	if err := td.Container.Terminate(ctx); err != nil {
		fmt.Printf("terminate postgres container: %v\n", err)
	}
}
