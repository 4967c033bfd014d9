package users

import "context"

// Store is the persistence port for accounts. Postgres in production, memory
// in tests.
type Store interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
