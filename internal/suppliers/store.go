package suppliers

import "context"

// EvaluationStore persists evaluations on the primary pool.
type EvaluationStore interface {
	Create(ctx context.Context, e *Evaluation) error
	List(ctx context.Context) ([]Evaluation, error)
}

// MasterStore reads the supplier master from the ERP pool.
type MasterStore interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	FindSupplier(ctx context.Context, code string) (*Supplier, error)
}
