package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"qms/internal/identity"
	"qms/pkg/testutil"
)

func okHandler(reached *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequirePermissionAllowed(t *testing.T) {
	var reached bool
	h := RequirePermission(identity.CanManageQuality, testutil.DiscardLogger())(okHandler(&reached))

	req := testutil.NewRequest(t, http.MethodPost, "/api/audits")
	req = testutil.WithIdentity(req, identity.Identity{ID: 1, Role: identity.RoleQualityAdmin})
	rr := testutil.DoRequest(h, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, reached)
}

func TestRequirePermissionForbidden(t *testing.T) {
	var reached bool
	h := RequirePermission(identity.CanManageUsers, testutil.DiscardLogger())(okHandler(&reached))

	req := testutil.NewRequest(t, http.MethodPost, "/api/users")
	req = testutil.WithIdentity(req, identity.Identity{ID: 2, Role: identity.RoleOperator})
	rr := testutil.DoRequest(h, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, reached, "forbidden request must not reach the controller")
	assert.Contains(t, rr.Body.String(), "Operador", "offending role appears in the detail")
}

// Authorization without authentication is a wiring bug, reported as a 500
// rather than a credential problem.
func TestRequirePermissionMissingIdentity(t *testing.T) {
	var reached bool
	h := RequirePermission(identity.CanManageUsers, testutil.DiscardLogger())(okHandler(&reached))

	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodPost, "/api/users"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, reached)
	assert.Contains(t, rr.Body.String(), "precondition_failed")
}
