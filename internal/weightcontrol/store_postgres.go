package weightcontrol

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qms/internal/platform/db"
	"qms/pkg/platform/sentinel"
	txctx "qms/pkg/platform/tx"
)

// PostgresStore persists weight control records on the primary pool. Write
// methods route through a transaction in context when RunInTx opened one.
type PostgresStore struct {
	pools db.Pools
}

func NewPostgresStore(pools db.Pools) *PostgresStore {
	return &PostgresStore{pools: pools}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) (querier, error) {
	if tx, ok := txctx.From(ctx); ok {
		return tx, nil
	}
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	return pool, nil
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return fmt.Errorf("acquire primary pool: %w", err)
	}
	tx, err := pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txctx.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertHeader(ctx context.Context, rec *Record) error {
	q, err := s.querier(ctx)
	if err != nil {
		return err
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO weight_controls
			(product, lot, line, target_grams, lower_grams, upper_grams,
			 seal_top, seal_bottom, seal_left, seal_right, verdict,
			 created_by, creator_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING id, created_at
	`, rec.Product, rec.Lot, rec.Line, rec.TargetGrams, rec.LowerGrams, rec.UpperGrams,
		rec.SealTop, rec.SealBottom, rec.SealLeft, rec.SealRight, rec.Verdict,
		rec.CreatedBy, rec.CreatorName).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert weight control header: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertSample(ctx context.Context, sample *Sample) error {
	q, err := s.querier(ctx)
	if err != nil {
		return err
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO weight_control_samples (record_id, position, grams)
		VALUES ($1, $2, $3)
		RETURNING id
	`, sample.RecordID, sample.Position, sample.Grams).Scan(&sample.ID)
	if err != nil {
		return fmt.Errorf("insert weight sample: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	out := []Record{}
	err = pool.SelectContext(ctx, &out, `
		SELECT id, product, lot, line, target_grams, lower_grams, upper_grams,
		       seal_top, seal_bottom, seal_left, seal_right, verdict,
		       created_by, creator_name, created_at
		FROM weight_controls
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list weight controls: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}

	var detail Detail
	err = pool.GetContext(ctx, &detail.Header, `
		SELECT id, product, lot, line, target_grams, lower_grams, upper_grams,
		       seal_top, seal_bottom, seal_left, seal_right, verdict,
		       created_by, creator_name, created_at
		FROM weight_controls WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("weight control %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get weight control %d: %w", id, err)
	}

	detail.Samples = []Sample{}
	err = pool.SelectContext(ctx, &detail.Samples, `
		SELECT id, record_id, position, grams
		FROM weight_control_samples WHERE record_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get weight control %d samples: %w", id, err)
	}

	return &detail, nil
}
