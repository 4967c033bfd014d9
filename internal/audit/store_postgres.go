package audit

import (
	"context"
	"fmt"

	"qms/internal/platform/db"
)

// PostgresStore persists audit entries through the primary pool. Writes are
// plain inserts, never part of the triggering operation's transaction, so a
// failed entry cannot roll back business data.
type PostgresStore struct {
	pools db.Pools
}

func NewPostgresStore(pools db.Pools) *PostgresStore {
	return &PostgresStore{pools: pools}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return fmt.Errorf("acquire primary pool: %w", err)
	}
	_, err = pool.ExecContext(ctx, `
		INSERT INTO audit_log (actor_name, actor_role, action, module, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ActorName, entry.ActorRole, entry.Action, entry.Module, entry.Detail, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Entry, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	entries := []Entry{}
	err = pool.SelectContext(ctx, &entries, `
		SELECT id, actor_name, actor_role, action, module, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
