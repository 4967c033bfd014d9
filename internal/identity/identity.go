// Package identity defines the canonical "who is making this request" shape.
// It is derived once per request from a verified token and attached to the
// request context; no other component reads raw claim fields.
package identity

import (
	"context"
	"fmt"
	"strconv"
)

// Identity is the normalized request principal. Immutable for the request's
// lifetime; never persisted by this layer.
type Identity struct {
	ID    int64
	Name  string
	Role  Role
	Email string
}

type ctxKey struct{}

// ContextKey is exported for tests that need context.WithValue directly.
var ContextKey = ctxKey{}

// FromContext retrieves the authenticated identity.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ContextKey).(Identity)
	return ident, ok
}

// WithIdentity injects an identity into the context. Used by the auth
// middleware and by tests that bypass the HTTP chain.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ContextKey, ident)
}

// Claim aliases accumulated over the life of the original system. Tokens in
// circulation still carry any of these spellings, so normalization tries them
// in order of how recently each was issued.
var (
	idAliases    = []string{"id", "ID_Usuario", "idUsuario"}
	nameAliases  = []string{"name", "nombre", "Nombre"}
	roleAliases  = []string{"role", "rol", "Rol"}
	emailAliases = []string{"email", "correo", "Correo"}
)

// FromClaims builds a canonical Identity from a decoded claim set. This is
// the single decode-and-migrate step: downstream authorization and audit
// logging depend on the canonical shape only.
func FromClaims(claims map[string]any) (Identity, error) {
	id, ok := firstInt(claims, idAliases)
	if !ok {
		return Identity{}, fmt.Errorf("token carries no subject id")
	}

	roleRaw, ok := firstString(claims, roleAliases)
	if !ok {
		return Identity{}, fmt.Errorf("token carries no role")
	}
	role, err := ParseRole(roleRaw)
	if err != nil {
		return Identity{}, err
	}

	name, _ := firstString(claims, nameAliases)
	email, _ := firstString(claims, emailAliases)

	return Identity{ID: id, Name: name, Role: role, Email: email}, nil
}

func firstString(claims map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func firstInt(claims map[string]any, keys []string) (int64, bool) {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case float64:
			// JSON numbers decode as float64.
			return int64(v), true
		case int64:
			return v, true
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
