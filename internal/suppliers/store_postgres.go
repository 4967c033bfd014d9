package suppliers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qms/internal/platform/db"
	"qms/pkg/platform/sentinel"
)

// PostgresEvaluationStore writes evaluations to the primary database.
type PostgresEvaluationStore struct {
	pools db.Pools
}

func NewPostgresEvaluationStore(pools db.Pools) *PostgresEvaluationStore {
	return &PostgresEvaluationStore{pools: pools}
}

func (s *PostgresEvaluationStore) Create(ctx context.Context, e *Evaluation) error {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return fmt.Errorf("acquire primary pool: %w", err)
	}
	err = pool.QueryRowxContext(ctx, `
		INSERT INTO supplier_evaluations
			(supplier_code, supplier_name, period, quality_score, delivery_score,
			 service_score, overall_score, comments, created_by, creator_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`, e.SupplierCode, e.SupplierName, e.Period, e.QualityScore, e.DeliveryScore,
		e.ServiceScore, e.OverallScore, e.Comments, e.CreatedBy, e.CreatorName).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert supplier evaluation: %w", err)
	}
	return nil
}

func (s *PostgresEvaluationStore) List(ctx context.Context) ([]Evaluation, error) {
	pool, err := s.pools.Get(ctx, db.TargetPrimary)
	if err != nil {
		return nil, fmt.Errorf("acquire primary pool: %w", err)
	}
	out := []Evaluation{}
	err = pool.SelectContext(ctx, &out, `
		SELECT id, supplier_code, supplier_name, period, quality_score, delivery_score,
		       service_score, overall_score, comments, created_by, creator_name, created_at
		FROM supplier_evaluations
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list supplier evaluations: %w", err)
	}
	return out, nil
}

// ERPMasterStore reads the supplier master through the ERP pool. The ERP
// schema is owned elsewhere; only these two reads are exercised.
type ERPMasterStore struct {
	pools db.Pools
}

func NewERPMasterStore(pools db.Pools) *ERPMasterStore {
	return &ERPMasterStore{pools: pools}
}

func (s *ERPMasterStore) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	pool, err := s.pools.Get(ctx, db.TargetERP)
	if err != nil {
		return nil, fmt.Errorf("acquire erp pool: %w", err)
	}
	out := []Supplier{}
	err = pool.SelectContext(ctx, &out, `
		SELECT code, name, category, active
		FROM erp_suppliers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list erp suppliers: %w", err)
	}
	return out, nil
}

func (s *ERPMasterStore) FindSupplier(ctx context.Context, code string) (*Supplier, error) {
	pool, err := s.pools.Get(ctx, db.TargetERP)
	if err != nil {
		return nil, fmt.Errorf("acquire erp pool: %w", err)
	}
	var sup Supplier
	err = pool.GetContext(ctx, &sup, `
		SELECT code, name, category, active
		FROM erp_suppliers WHERE code = $1
	`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("supplier %s: %w", code, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find erp supplier %s: %w", code, err)
	}
	return &sup, nil
}
