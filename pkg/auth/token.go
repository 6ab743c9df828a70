// Package auth issues and verifies the signed session credential carried in
// the `token` cookie.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie that carries the session credential.
const CookieName = "token"

// DefaultTTL is how long an issued credential stays valid.
const DefaultTTL = 365 * 24 * time.Hour

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the credential payload: the identity the caller presented at
// sign-in plus the registered expiry fields.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is what POST /jwt accepts.
type Identity struct {
	Email string `json:"email" validate:"required,email"`
}

// TokenIssuer signs and verifies HS256 credentials with a single secret.
// There is no revocation list: a credential is valid until it expires.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL reports the lifetime stamped on new credentials.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue signs a credential for id.
func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := t.now()
	claims := Claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify returns the embedded claims, ErrTokenExpired, or ErrTokenInvalid.
func (t *TokenIssuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
