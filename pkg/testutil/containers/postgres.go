//go:build integration

package containers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/lib/pq"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"pigate/internal/platform/config"
	"pigate/internal/platform/postgres"
)

// PostgresContainer is a migrated database for store integration tests.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts postgres and applies every migration.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pigate"),
		tcpostgres.WithUsername("pigate"),
		tcpostgres.WithPassword("pigate"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: dsn, MaxOpenConns: 10, MaxIdleConns: 5})
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := postgres.Migrate(ctx, db, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("failed to migrate postgres: %v", err)
	}
	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// Reset empties every table and rewinds the chain head to genesis.
func (p *PostgresContainer) Reset(ctx context.Context) error {
	for _, table := range []string{"audit_log", "transfers", "system_control"} {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE "+pq.QuoteIdentifier(table)+" RESTART IDENTITY"); err != nil {
			return err
		}
	}
	_, err := p.DB.ExecContext(ctx,
		`UPDATE audit_chain_head SET last_hash = 'sha256:' || repeat('0', 64), updated_at = NOW() WHERE id = 1`)
	return err
}
