package audit

import "context"

// Store is the append-only persistence port for audit entries. Interface-
// driven so the recorder can run against postgres in production and memory
// in tests.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
}
