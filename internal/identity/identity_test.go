package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	t.Run("current field names", func(t *testing.T) {
		ident, err := FromClaims(map[string]any{
			"id":    float64(7),
			"name":  "Ana Flores",
			"role":  "AdminCalidad",
			"email": "ana@planta.example",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), ident.ID)
		assert.Equal(t, "Ana Flores", ident.Name)
		assert.Equal(t, RoleQualityAdmin, ident.Role)
		assert.Equal(t, "ana@planta.example", ident.Email)
	})

	t.Run("historic field names", func(t *testing.T) {
		ident, err := FromClaims(map[string]any{
			"ID_Usuario": float64(12),
			"Nombre":     "Luis Mora",
			"Rol":        "Supervisor",
			"correo":     "luis@planta.example",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12), ident.ID)
		assert.Equal(t, "Luis Mora", ident.Name)
		assert.Equal(t, RoleSupervisor, ident.Role)
		assert.Equal(t, "luis@planta.example", ident.Email)
	})

	t.Run("id as string", func(t *testing.T) {
		ident, err := FromClaims(map[string]any{"id": "31", "rol": "Operador"})
		require.NoError(t, err)
		assert.Equal(t, int64(31), ident.ID)
	})

	t.Run("legacy Admin maps to SuperAdmin", func(t *testing.T) {
		ident, err := FromClaims(map[string]any{"id": float64(1), "role": "Admin"})
		require.NoError(t, err)
		assert.Equal(t, RoleSuperAdmin, ident.Role)
	})

	t.Run("missing subject id", func(t *testing.T) {
		_, err := FromClaims(map[string]any{"role": "Auditor"})
		require.Error(t, err)
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := FromClaims(map[string]any{"id": float64(3)})
		require.Error(t, err)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := FromClaims(map[string]any{"id": float64(3), "role": "superadmin"})
		require.Error(t, err)
	})
}

func TestRoleAllows(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Allows(CanManageUsers))
	assert.False(t, RoleQualityAdmin.Allows(CanManageUsers))
	assert.True(t, RoleQualityAdmin.Allows(CanManageQuality))
	assert.True(t, RoleAuditor.Allows(CanViewAllForms))
	assert.False(t, RoleOperator.Allows(CanViewAllForms))
	assert.True(t, RoleOperator.Allows(CanSubmitForms))
}

func TestParseRoleCaseSensitive(t *testing.T) {
	_, err := ParseRole("adminCalidad")
	require.Error(t, err)

	role, err := ParseRole("AdminCalidad")
	require.NoError(t, err)
	assert.Equal(t, RoleQualityAdmin, role)
}
