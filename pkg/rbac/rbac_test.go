package rbac_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plantnet/plantnet/pkg/logger"
	"github.com/plantnet/plantnet/pkg/middleware"
	"github.com/plantnet/plantnet/pkg/rbac"
)

func roles(m map[string]string) rbac.RoleLookupFunc {
	return func(_ context.Context, email string) (string, error) {
		role, ok := m[email]
		if !ok {
			return "", fmt.Errorf("%w: %s", rbac.ErrUnknownUser, email)
		}
		return role, nil
	}
}

func serve(guard func(http.Handler) http.Handler, email string) (int, bool) {
	reached := false
	h := guard(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/all-users/"+email, nil)
	if email != "" {
		req = req.WithContext(middleware.WithEmail(req.Context(), email))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, reached
}

func TestRequireAdminShortCircuits(t *testing.T) {
	lookup := roles(map[string]string{
		"root@example.com":   "admin",
		"seller@example.com": "seller",
	})
	guard := rbac.RequireAdmin(lookup)

	code, reached := serve(guard, "root@example.com")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, reached)

	for _, email := range []string{"seller@example.com", "ghost@example.com"} {
		code, reached = serve(guard, email)
		assert.Equal(t, http.StatusForbidden, code, email)
		assert.False(t, reached, "handler must not run for %s", email)
	}

	code, reached = serve(guard, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached)
}

func TestRequireSellerReadsFreshRole(t *testing.T) {
	store := map[string]string{"c@example.com": "customer"}
	guard := rbac.RequireSeller(roles(store))

	code, _ := serve(guard, "c@example.com")
	assert.Equal(t, http.StatusForbidden, code)

	store["c@example.com"] = "seller"
	code, reached := serve(guard, "c@example.com")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, reached)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return &buf
}

func TestRoleLookupFailureIsLoggedAsError(t *testing.T) {
	logs := captureLogs(t)
	broken := rbac.RoleLookupFunc(func(context.Context, string) (string, error) {
		return "", errors.New("server selection timeout")
	})

	code, reached := serve(rbac.RequireAdmin(broken), "root@example.com")

	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, reached)
	assert.Contains(t, logs.String(), "ERROR")
	assert.Contains(t, logs.String(), "server selection timeout")
}

func TestUnknownUserIsNotLoggedAsError(t *testing.T) {
	logs := captureLogs(t)

	code, reached := serve(rbac.RequireSeller(roles(nil)), "ghost@example.com")

	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, reached)
	assert.NotContains(t, logs.String(), "ERROR")
}
