package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qms/internal/identity"
	domainerrors "qms/pkg/domain-errors"
)

const testKey = "test-signing-key"

func testIdentity() identity.Identity {
	return identity.Identity{
		ID:    42,
		Name:  "Ana Flores",
		Role:  identity.RoleQualityAdmin,
		Email: "ana@planta.example",
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewService(testKey, "qms")

	raw, err := svc.Issue(testIdentity(), time.Hour)
	require.NoError(t, err)

	verified, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, testIdentity(), verified.Identity)
	assert.NotEmpty(t, verified.JTI)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService(testKey, "qms")

	raw, err := svc.Issue(testIdentity(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.CodeUnauthenticated))
	assert.Contains(t, err.Error(), "expired")
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	raw, err := NewService("other-key", "qms").Issue(testIdentity(), time.Hour)
	require.NoError(t, err)

	_, err = NewService(testKey, "qms").Verify(raw)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.CodeUnauthenticated))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewService(testKey, "qms").Verify("not-a-token")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.CodeUnauthenticated))
}

// Tokens minted by the previous system carry Spanish field names; Verify must
// normalize them.
func TestVerifyAcceptsHistoricClaims(t *testing.T) {
	legacy := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"ID_Usuario": 9,
		"Nombre":     "Luis Mora",
		"Rol":        "Admin",
		"correo":     "luis@planta.example",
		"exp":        jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := legacy.SignedString([]byte(testKey))
	require.NoError(t, err)

	verified, err := NewService(testKey, "qms").Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(9), verified.Identity.ID)
	assert.Equal(t, "Luis Mora", verified.Identity.Name)
	assert.Equal(t, identity.RoleSuperAdmin, verified.Identity.Role, "legacy Admin migrates")
	assert.Equal(t, "luis@planta.example", verified.Identity.Email)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  3,
		"rol": "Invitado",
		"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := bad.SignedString([]byte(testKey))
	require.NoError(t, err)

	_, err = NewService(testKey, "qms").Verify(raw)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.CodeUnauthenticated))
}
