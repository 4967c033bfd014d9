package plantaudits

import "context"

// Store is the persistence port. RunInTx brackets multi-step writes: the
// callback's context carries the transaction, and every step inside either
// commits as a unit or leaves nothing behind.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	InsertHeader(ctx context.Context, a *Audit) error
	InsertFinding(ctx context.Context, f *Finding) error
	InsertAttachment(ctx context.Context, att *Attachment) error

	List(ctx context.Context, onlyVisible bool) ([]Audit, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
}
