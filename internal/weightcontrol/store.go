package weightcontrol

import "context"

// Store is the persistence port. The header and its samples are written
// inside RunInTx so a half-captured record never surfaces.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	InsertHeader(ctx context.Context, rec *Record) error
	InsertSample(ctx context.Context, s *Sample) error

	List(ctx context.Context) ([]Record, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
}
