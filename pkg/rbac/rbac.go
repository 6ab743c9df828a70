// Package rbac gates routes on the caller's stored role.
package rbac

import (
	"context"
	"errors"
	"net/http"

	"github.com/plantnet/plantnet/pkg/logger"
	"github.com/plantnet/plantnet/pkg/middleware"
	"github.com/plantnet/plantnet/pkg/response"
)

// RoleLookup returns the current role of the user with the given email.
// Guards call it on every request, so a role change applies to the
// caller's very next request.
type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (string, error)
}

// ErrUnknownUser is what a RoleLookup wraps when the caller has no stored
// record. The guard answers 403 either way but only logs other failures as
// errors.
var ErrUnknownUser = errors.New("rbac: unknown user")

// RoleLookupFunc adapts a plain function to RoleLookup.
type RoleLookupFunc func(ctx context.Context, email string) (string, error)

func (f RoleLookupFunc) RoleOf(ctx context.Context, email string) (string, error) {
	return f(ctx, email)
}

// HasRole returns middleware that allows access only to callers whose stored
// role is one of roles. It must run after middleware.Authenticate. A denied
// caller gets 403 with message and the chain stops there.
func HasRole(lookup RoleLookup, message string, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := middleware.EmailFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "unauthorized access")
				return
			}

			role, err := lookup.RoleOf(r.Context(), email)
			switch {
			case err == nil:
			case errors.Is(err, ErrUnknownUser):
				logger.WithCtx(r.Context()).Debug("role lookup: unknown user", "email", email)
			default:
				logger.WithCtx(r.Context()).Error("role lookup failed", "email", email, "error", err)
			}
			if err != nil || !allowed[role] {
				response.Forbidden(w, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows only callers whose stored role is admin.
func RequireAdmin(lookup RoleLookup) func(http.Handler) http.Handler {
	return HasRole(lookup, "Forbidden access! Admin only action!!", "admin")
}

// RequireSeller allows only callers whose stored role is seller.
func RequireSeller(lookup RoleLookup) func(http.Handler) http.Handler {
	return HasRole(lookup, "Forbidden access! Seller only action!!", "seller")
}
