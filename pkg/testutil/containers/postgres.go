//go:build integration

// Package containers starts throwaway backing services for integration
// tests. Build-tagged so the default test run stays hermetic.
package containers

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"qms/internal/platform/db"
)

// schema is the subset of the primary schema the integration suites touch.
const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id BIGSERIAL PRIMARY KEY,
	actor_name TEXT NOT NULL,
	actor_role TEXT NOT NULL,
	action TEXT NOT NULL,
	module TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quality_audits (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	area TEXT NOT NULL,
	audit_date DATE NOT NULL,
	created_by BIGINT NOT NULL,
	creator_name TEXT NOT NULL,
	visible BOOLEAN NOT NULL DEFAULT TRUE,
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quality_audit_findings (
	id BIGSERIAL PRIMARY KEY,
	audit_id BIGINT NOT NULL REFERENCES quality_audits (id),
	severity TEXT NOT NULL,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quality_audit_attachments (
	id BIGSERIAL PRIMARY KEY,
	audit_id BIGINT NOT NULL REFERENCES quality_audits (id),
	file_name TEXT NOT NULL,
	rel_path TEXT NOT NULL
);
`

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	DB *sqlx.DB
}

// NewPostgresContainer starts Postgres, applies the schema, and returns a
// connected pool. The container is terminated through t.Cleanup.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("qms_test"),
		tcpostgres.WithUsername("qms"),
		tcpostgres.WithPassword("qms"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pool, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(func() {
		_ = pool.Close()
	})

	if _, err := pool.Exec(schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{DB: pool}
}

// TruncateTables resets the named tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// StaticPools satisfies db.Pools with one pool serving every target, which
// is all the single-database integration suites need.
type StaticPools struct {
	DB *sqlx.DB
}

func (p StaticPools) Get(_ context.Context, _ db.Target) (*sqlx.DB, error) {
	return p.DB, nil
}
