// Package infra boots a migrated PostgreSQL database for integration tests.
package infra

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"notaryregistry/db"
)

const (
	// EnableEnv must be "1" for integration tests to run.
	EnableEnv = "NOTARY_INTEGRATION"
	// DSNEnv points the harness at an existing database instead of a container.
	DSNEnv = "NOTARY_TEST_PG_DSN"
)

// Harness owns the lifecycle of the Postgres test container and pgx pool.
type Harness struct {
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	dsn       string
}

// Skip skips t unless integration tests are enabled.
func Skip(t testing.TB) {
	t.Helper()
	if os.Getenv(EnableEnv) != "1" {
		t.Skipf("set %s=1 to run integration tests", EnableEnv)
	}
}

// NewHarness starts a Postgres 16 container, or reuses DSNEnv when set, and
// applies the embedded migrations.
func NewHarness(ctx context.Context) (*Harness, error) {
	h := &Harness{dsn: os.Getenv(DSNEnv)}

	if h.dsn == "" {
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("notary"),
			postgres.WithUsername("notary"),
			postgres.WithPassword("notary"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			return nil, fmt.Errorf("start postgres container: %w", err)
		}
		h.container = pgContainer

		h.dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			h.Close(ctx)
			return nil, fmt.Errorf("resolve connection string: %w", err)
		}
	}

	if err := db.Migrate(ctx, h.dsn); err != nil {
		h.Close(ctx)
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(h.dsn)
	if err != nil {
		h.Close(ctx)
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	cfg.MaxConns = 32
	cfg.MaxConnIdleTime = 30 * time.Second

	h.pool, err = pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		h.Close(ctx)
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return h, nil
}

// Start is NewHarness for tests: it skips when integration tests are
// disabled, fails t on error and registers cleanup.
func Start(t testing.TB) *Harness {
	t.Helper()
	Skip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	h, err := NewHarness(ctx)
	if err != nil {
		t.Fatalf("start harness: %v", err)
	}
	t.Cleanup(func() { h.Close(context.Background()) })

	if err := h.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return h
}

// Pool exposes the configured pgx pool.
func (h *Harness) Pool() *pgxpool.Pool {
	return h.pool
}

// DSN returns the connection string of the test database.
func (h *Harness) DSN() string {
	return h.dsn
}

// Close tears down resources.
func (h *Harness) Close(ctx context.Context) {
	if h.pool != nil {
		h.pool.Close()
	}
	if h.container != nil {
		_ = testcontainers.TerminateContainer(h.container, testcontainers.StopContext(ctx))
	}
}

// Reset empties every table and restarts id sequences.
func (h *Harness) Reset(ctx context.Context) error {
	_, err := h.pool.Exec(ctx, `TRUNCATE TABLE activity_log, documents, users RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
