package users

import (
	"time"

	"qms/internal/identity"
)

// User is an admin-console account. Rows live in the primary store; the
// password hash never crosses the wire.
type User struct {
	ID           int64         `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Email        string        `db:"email" json:"email"`
	Role         identity.Role `db:"role" json:"role"`
	Active       bool          `db:"active" json:"active"`
	PasswordHash string        `db:"password_hash" json:"-"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
}

// Identity returns the canonical principal for this account, used when
// issuing tokens.
func (u User) Identity() identity.Identity {
	return identity.Identity{ID: u.ID, Name: u.Name, Role: u.Role, Email: u.Email}
}

type CreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type UpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
