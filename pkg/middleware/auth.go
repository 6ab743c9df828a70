package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/plantnet/plantnet/pkg/auth"
	"github.com/plantnet/plantnet/pkg/response"
)

type emailKey struct{}

// TokenVerifier is satisfied by *auth.TokenIssuer.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate reads the session cookie, verifies it and stores the caller's
// email in the request context. Missing, forged or expired credentials get a
// 401 and the chain stops.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				response.Unauthorized(w, "unauthorized access")
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err != nil {
				msg := "unauthorized access"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "session expired"
				}
				response.Unauthorized(w, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithEmail(r.Context(), claims.Email)))
		})
	}
}

// WithEmail stores the authenticated caller's email.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey{}, email)
}

// EmailFromCtx returns the email stored by Authenticate.
func EmailFromCtx(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey{}).(string)
	return email, ok && email != ""
}
