package actions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"qms/internal/platform/db"
	"qms/pkg/platform/sentinel"
)

type PostgresStore struct {
	pools db.Pools
}

func NewPostgresStore(pools db.Pools) *PostgresStore {
	return &PostgresStore{pools: pools}
}

func (s *PostgresStore) Create(ctx context.Context, a *Action) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO corrective_actions
			(title, description, area, responsible_name, responsible_email,
			 due_date, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err = pool.QueryRowxContext(ctx, q,
		a.Title, a.Description, a.Area, a.ResponsibleName, a.ResponsibleEmail,
		a.DueDate, a.Status, a.CreatedBy, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert corrective action: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Action, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, err
	}
	var out []Action
	const q = `
		SELECT id, title, description, area, responsible_name, responsible_email,
		       due_date, status, created_by, created_at, closed_at
		FROM corrective_actions
		ORDER BY created_at DESC`
	if err := pool.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list corrective actions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Action, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, err
	}
	var a Action
	const q = `
		SELECT id, title, description, area, responsible_name, responsible_email,
		       due_date, status, created_by, created_at, closed_at
		FROM corrective_actions
		WHERE id = $1`
	if err := pool.GetContext(ctx, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find corrective action: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, from, to Status, closedAt *time.Time) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return err
	}
	const q = `
		UPDATE corrective_actions
		SET status = $1, closed_at = $2
		WHERE id = $3 AND status = $4`
	res, err := pool.ExecContext(ctx, q, to, closedAt, id, from)
	if err != nil {
		return fmt.Errorf("update corrective action status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update corrective action status: %w", err)
	}
	if n == 0 {
		// Either the row is gone or another caller changed the status first.
		if _, ferr := s.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) DueWithin(ctx context.Context, now time.Time, window time.Duration) ([]Action, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, err
	}
	var out []Action
	const q = `
		SELECT id, title, description, area, responsible_name, responsible_email,
		       due_date, status, created_by, created_at, closed_at
		FROM corrective_actions
		WHERE status <> $1 AND due_date >= $2 AND due_date <= $3
		ORDER BY due_date ASC`
	if err := pool.SelectContext(ctx, &out, q, StatusClosed, now, now.Add(window)); err != nil {
		return nil, fmt.Errorf("list due corrective actions: %w", err)
	}
	return out, nil
}
