package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"qms/internal/platform/db"
	"qms/pkg/platform/sentinel"
)

// PostgresStore persists accounts through the primary pool. Pure I/O; role
// validation and hashing belong in the service.
type PostgresStore struct {
	pools db.Pools
}

func NewPostgresStore(pools db.Pools) *PostgresStore {
	return &PostgresStore{pools: pools}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return fmt.Errorf("acquire primary pool: %w", err)
	}
	err = pool.QueryRowContext(ctx, `
		INSERT INTO users (name, email, role, active, password_hash, created_at)
		VALUES ($1, $2, $3, TRUE, $4, NOW())
		RETURNING id, created_at
	`, user.Name, user.Email, string(user.Role), user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("create user: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	user.Active = true
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, user *User) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return fmt.Errorf("acquire primary pool: %w", err)
	}
	res, err := pool.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, role = $4 WHERE id = $1
	`, user.ID, user.Name, user.Email, string(user.Role))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("update user: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return rowsAffectedOrNotFound(res, "update user")
}

func (s *PostgresStore) Deactivate(ctx context.Context, id int64) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return fmt.Errorf("acquire primary pool: %w", err)
	}
	res, err := pool.ExecContext(ctx, `UPDATE users SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return rowsAffectedOrNotFound(res, "deactivate user")
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	out := []User{}
	err = pool.SelectContext(ctx, &out, `
		SELECT id, name, email, role, active, password_hash, created_at
		FROM users
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*User, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	var user User
	err = pool.GetContext(ctx, &user, `
		SELECT id, name, email, role, active, password_hash, created_at
		FROM users WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find user %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	var user User
	err = pool.GetContext(ctx, &user, `
		SELECT id, name, email, role, active, password_hash, created_at
		FROM users WHERE lower(email) = lower($1)
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find user by email: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func rowsAffectedOrNotFound(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}
