package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qms/internal/identity"
	"qms/internal/token"
	"qms/pkg/testutil"
)

const signingKey = "middleware-test-key"

func protectedEcho(t *testing.T, reached *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		ident, ok := identity.FromContext(r.Context())
		require.True(t, ok, "identity must be in context past the gate")
		w.Write([]byte(ident.Name))
	})
}

func TestRequireAuthMissingHeader(t *testing.T) {
	svc := token.NewService(signingKey, "qms")
	var reached bool
	h := RequireAuth(svc, nil, testutil.DiscardLogger())(protectedEcho(t, &reached))

	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/audits"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, reached, "request must not reach the controller")
	assert.Contains(t, rr.Body.String(), "missing bearer token")
}

func TestRequireAuthMalformedToken(t *testing.T) {
	svc := token.NewService(signingKey, "qms")
	var reached bool
	h := RequireAuth(svc, nil, testutil.DiscardLogger())(protectedEcho(t, &reached))

	req := testutil.NewRequest(t, http.MethodGet, "/api/audits")
	req.Header.Set("Authorization", "Bearer garbage")
	rr := testutil.DoRequest(h, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, reached)
	assert.Contains(t, rr.Body.String(), "invalid or expired token")
}

func TestRequireAuthExpiredToken(t *testing.T) {
	svc := token.NewService(signingKey, "qms")
	raw, err := svc.Issue(identity.Identity{ID: 1, Role: identity.RoleOperator}, -time.Minute)
	require.NoError(t, err)

	var reached bool
	h := RequireAuth(svc, nil, testutil.DiscardLogger())(protectedEcho(t, &reached))

	req := testutil.NewRequest(t, http.MethodGet, "/api/audits")
	req.Header.Set("Authorization", "Bearer "+raw)
	rr := testutil.DoRequest(h, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, reached)
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	svc := token.NewService(signingKey, "qms")
	raw, err := svc.Issue(identity.Identity{ID: 5, Name: "Ana Flores", Role: identity.RoleAuditor}, time.Hour)
	require.NoError(t, err)

	var reached bool
	h := RequireAuth(svc, nil, testutil.DiscardLogger())(protectedEcho(t, &reached))

	req := testutil.NewRequest(t, http.MethodGet, "/api/audits")
	req.Header.Set("Authorization", "Bearer "+raw)
	rr := testutil.DoRequest(h, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, reached)
	assert.Equal(t, "Ana Flores", rr.Body.String())
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

func TestRequireAuthRevokedToken(t *testing.T) {
	svc := token.NewService(signingKey, "qms")
	raw, err := svc.Issue(identity.Identity{ID: 5, Role: identity.RoleAuditor}, time.Hour)
	require.NoError(t, err)
	verified, err := svc.Verify(raw)
	require.NoError(t, err)

	var reached bool
	revocations := &fakeRevocations{revoked: map[string]bool{verified.JTI: true}}
	h := RequireAuth(svc, revocations, testutil.DiscardLogger())(protectedEcho(t, &reached))

	req := testutil.NewRequest(t, http.MethodGet, "/api/audits")
	req.Header.Set("Authorization", "Bearer "+raw)
	rr := testutil.DoRequest(h, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, reached)
}

func TestRequireAuthRevocationCheckError(t *testing.T) {
	svc := token.NewService(signingKey, "qms")
	raw, err := svc.Issue(identity.Identity{ID: 5, Role: identity.RoleAuditor}, time.Hour)
	require.NoError(t, err)

	var reached bool
	revocations := &fakeRevocations{err: errors.New("redis down")}
	h := RequireAuth(svc, revocations, testutil.DiscardLogger())(protectedEcho(t, &reached))

	req := testutil.NewRequest(t, http.MethodGet, "/api/audits")
	req.Header.Set("Authorization", "Bearer "+raw)
	rr := testutil.DoRequest(h, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, reached)
}
