// Package token issues and verifies the signed bearer credential. Verify is
// the only place raw claims are read; everything downstream sees the
// canonical identity.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"qms/internal/identity"
	domainerrors "qms/pkg/domain-errors"
)

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey string, issuer string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Verified is the result of a successful token check.
type Verified struct {
	Identity  identity.Identity
	JTI       string
	ExpiresAt time.Time
}

// Issue signs a time-boxed claim set for the identity. New tokens always use
// the current field names; Verify still accepts historic ones.
func (s *Service) Issue(ident identity.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    ident.ID,
		"name":  ident.Name,
		"role":  string(ident.Role),
		"email": ident.Email,
		"iss":   s.issuer,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
		"jti":   uuid.NewString(),
	})
	return newToken.SignedString(s.signingKey)
}

// Verify checks signature and expiry, then normalizes the claim set into the
// canonical identity.
func (s *Service) Verify(raw string) (*Verified, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerrors.New(domainerrors.CodeUnauthenticated, "token has expired")
		}
		return nil, domainerrors.New(domainerrors.CodeUnauthenticated, "invalid token")
	}
	if !parsed.Valid {
		return nil, domainerrors.New(domainerrors.CodeUnauthenticated, "invalid token")
	}

	ident, err := identity.FromClaims(claims)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeUnauthenticated, "invalid token claims", err)
	}

	jti, _ := claims["jti"].(string)
	verified := &Verified{Identity: ident, JTI: jti}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		verified.ExpiresAt = exp.Time
	}
	return verified, nil
}
