package recalls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"qms/internal/platform/db"
	"qms/pkg/platform/sentinel"
	txctx "qms/pkg/platform/tx"
)

// PostgresStore persists recalls on the primary pool. Write methods route
// through a transaction in context when RunInTx opened one.
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

func (s *PostgresStore) InsertHeader(ctx context.Context, rec *Recall) error {
	q, err := s.querier(ctx)
	if err != nil {
		return err
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO recalls (product, lot, reason, status, created_by, creator_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, rec.Product, rec.Lot, rec.Reason, rec.Status, rec.CreatedBy, rec.CreatorName).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert recall header: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertShipment(ctx context.Context, sh *Shipment) error {
	q, err := s.querier(ctx)
	if err != nil {
		return err
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO recall_shipments (recall_id, shipment_ref, quantity, recovered)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, sh.RecallID, sh.ShipmentRef, sh.Quantity, sh.Recovered).Scan(&sh.ID)
	if err != nil {
		return fmt.Errorf("insert recall shipment: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertAttachment(ctx context.Context, att *Attachment) error {
	q, err := s.querier(ctx)
	if err != nil {
		return err
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO recall_attachments (recall_id, file_name, rel_path)
		VALUES ($1, $2, $3)
		RETURNING id
	`, att.RecallID, att.FileName, att.RelPath).Scan(&att.ID)
	if err != nil {
		return fmt.Errorf("insert recall attachment: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Recall, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	out := []Recall{}
	err = pool.SelectContext(ctx, &out, `
		SELECT id, product, lot, reason, status, created_by, creator_name, created_at, closed_at
		FROM recalls
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list recalls: %w", err)
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
		SELECT id, product, lot, reason, status, created_by, creator_name, created_at, closed_at
		FROM recalls WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("recall %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get recall %d: %w", id, err)
	}

	detail.Shipments = []Shipment{}
	err = pool.SelectContext(ctx, &detail.Shipments, `
		SELECT id, recall_id, shipment_ref, quantity, recovered
		FROM recall_shipments WHERE recall_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get recall %d shipments: %w", id, err)
	}

	detail.Attachments = []Attachment{}
	err = pool.SelectContext(ctx, &detail.Attachments, `
		SELECT id, recall_id, file_name, rel_path
		FROM recall_attachments WHERE recall_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get recall %d attachments: %w", id, err)
	}

	return &detail, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, from, to Status, closedAt *time.Time) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return fmt.Errorf("acquire primary pool: %w", err)
	}
	res, err := pool.ExecContext(ctx, `
		UPDATE recalls SET status = $1, closed_at = $2
		WHERE id = $3 AND status = $4
	`, to, closedAt, id, from)
	if err != nil {
		return fmt.Errorf("update recall status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recall status: %w", err)
	}
	if n == 0 {
		var exists bool
		if gerr := pool.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM recalls WHERE id = $1)`, id); gerr != nil {
			return fmt.Errorf("update recall status: %w", gerr)
		}
		if !exists {
			return fmt.Errorf("recall %d: %w", id, sentinel.ErrNotFound)
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

// ERPShipmentDirectory looks shipment refs up in the ERP's outbound table.
type ERPShipmentDirectory struct {
	pools db.Pools
}

func NewERPShipmentDirectory(pools db.Pools) *ERPShipmentDirectory {
	return &ERPShipmentDirectory{pools: pools}
}

func (d *ERPShipmentDirectory) FindShipments(ctx context.Context, refs []string) (map[string]ShipmentInfo, error) {
	if len(refs) == 0 {
		return map[string]ShipmentInfo{}, nil
	}
	pool, err := d.pools.Get(ctx, db.TargetERP)
	if err != nil {
		return nil, fmt.Errorf("acquire erp pool: %w", err)
	}

	query, args, err := sqlx.In(`
		SELECT ref, customer, destination
		FROM erp_shipments WHERE ref IN (?)
	`, refs)
	if err != nil {
		return nil, fmt.Errorf("build erp shipment query: %w", err)
	}
	var rows []ShipmentInfo
	if err := pool.SelectContext(ctx, &rows, pool.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("lookup erp shipments: %w", err)
	}

	out := make(map[string]ShipmentInfo, len(rows))
	for _, info := range rows {
		out[info.Ref] = info
	}
	return out, nil
}
