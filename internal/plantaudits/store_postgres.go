package plantaudits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qms/internal/platform/db"
	"qms/pkg/platform/sentinel"
	txctx "qms/pkg/platform/tx"
)

// PostgresStore persists audits through the primary pool. Write methods
// route through the transaction in context when RunInTx opened one.
type PostgresStore struct {
	pools db.Pools
}

func NewPostgresStore(pools db.Pools) *PostgresStore {
	return &PostgresStore{pools: pools}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
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

// RunInTx opens one transaction on the primary pool, stores it in the
// callback's context, and commits only if fn succeeds.
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

func (s *PostgresStore) InsertHeader(ctx context.Context, a *Audit) error {
	q, err := s.querier(ctx)
	if err != nil {
		return err
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO quality_audits (title, area, audit_date, created_by, creator_name, visible, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`, a.Title, a.Area, a.AuditDate, a.CreatedBy, a.CreatorName, a.Visible, a.Notes).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit header: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertFinding(ctx context.Context, f *Finding) error {
	q, err := s.querier(ctx)
	if err != nil {
		return err
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO quality_audit_findings (audit_id, severity, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`, f.AuditID, f.Severity, f.Description).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("insert audit finding: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertAttachment(ctx context.Context, att *Attachment) error {
	q, err := s.querier(ctx)
	if err != nil {
		return err
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO quality_audit_attachments (audit_id, file_name, rel_path)
		VALUES ($1, $2, $3)
		RETURNING id
	`, att.AuditID, att.FileName, att.RelPath).Scan(&att.ID)
	if err != nil {
		return fmt.Errorf("insert audit attachment: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, onlyVisible bool) ([]Audit, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	out := []Audit{}
	err = pool.SelectContext(ctx, &out, `
		SELECT id, title, area, audit_date, created_by, creator_name, visible, notes, created_at
		FROM quality_audits
		WHERE visible OR NOT $1
		ORDER BY audit_date DESC, id DESC
	`, onlyVisible)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
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
		SELECT id, title, area, audit_date, created_by, creator_name, visible, notes, created_at
		FROM quality_audits WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("audit %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get audit %d: %w", id, err)
	}

	detail.Findings = []Finding{}
	err = pool.SelectContext(ctx, &detail.Findings, `
		SELECT id, audit_id, severity, description
		FROM quality_audit_findings WHERE audit_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get audit %d findings: %w", id, err)
	}

	detail.Attachments = []Attachment{}
	err = pool.SelectContext(ctx, &detail.Attachments, `
		SELECT id, audit_id, file_name, rel_path
		FROM quality_audit_attachments WHERE audit_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get audit %d attachments: %w", id, err)
	}

	return &detail, nil
}
