package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfWalksTheChain(t *testing.T) {
	inner := New(CodeNotFound, "user not found")
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.True(t, Is(wrapped, CodeNotFound))
	assert.False(t, Is(wrapped, CodeValidation))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeConnection, "database unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithDetailDoesNotMutateOriginal(t *testing.T) {
	base := New(CodeForbidden, "forbidden")
	detailed := base.WithDetail("role Operador lacks manage_users")

	assert.Empty(t, base.Detail)
	assert.Equal(t, "role Operador lacks manage_users", detailed.Detail)
	assert.Equal(t, base.Code, detailed.Code)
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeConnection, http.StatusServiceUnavailable},
		{CodePersistence, http.StatusInternalServerError},
		{CodePrecondition, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, ToHTTPStatus(tc.code))
		})
	}
}
