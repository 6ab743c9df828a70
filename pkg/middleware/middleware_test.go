package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet/pkg/auth"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuthenticate(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	tok, err := issuer.Issue(auth.Identity{Email: "fern@example.com"})
	require.NoError(t, err)

	var seen string
	h := Authenticate(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = EmailFromCtx(r.Context())
	}))

	t.Run("missing cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("forged cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok + "x"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fern@example.com", seen)
	})
}

func TestCORSCredentialed(t *testing.T) {
	h := CORS(DefaultCORSOptions("http://localhost:5173"))(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/plants", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/plants", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	counter := NewMemoryCounter(context.Background(), 0)
	h := RateLimit(counter, 2, time.Minute)(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.10:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	counter := NewMemoryCounter(context.Background(), 0)
	h := RateLimit(counter, 2, time.Minute)(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429, 429}, codes)
}

func TestRateLimitHonoursForwardedForBehindProxy(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.0/8", " 192.0.2.1 "})
	require.NoError(t, err)

	counter := NewMemoryCounter(context.Background(), 0)
	h := RateLimit(counter, 1, time.Minute, proxies...)(http.HandlerFunc(okHandler))

	send := func(fwd string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2, 192.0.2.1"))
	// A spoofed leftmost entry does not hide the address the proxy saw.
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1, 198.51.100.1"))
}

func TestResolveClientIP(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	cases := []struct {
		name, remote, fwd, realIP, want string
	}{
		{"untrusted peer", "203.0.113.7:1", "198.51.100.1", "", "203.0.113.7"},
		{"trusted peer", "10.0.0.2:1", "198.51.100.1", "", "198.51.100.1"},
		{"all hops trusted", "10.0.0.2:1", "10.0.0.5, 10.0.0.6", "", "10.0.0.5"},
		{"real ip header", "10.0.0.2:1", "", "198.51.100.9", "198.51.100.9"},
		{"no headers", "10.0.0.2:1", "", "", "10.0.0.2"},
		{"ipv6 peer", "[2001:db8::1]:443", "198.51.100.1", "", "2001:db8::1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.fwd != "" {
				req.Header.Set("X-Forwarded-For", tc.fwd)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			assert.Equal(t, tc.want, resolveClientIP(req, proxies))
		})
	}
}

func TestParseProxiesRejectsGarbage(t *testing.T) {
	_, err := ParseProxies([]string{"10.0.0.0/8", "not-an-ip"})
	assert.Error(t, err)

	p, err := ParseProxies(nil)
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestMemoryCounterWindowResets(t *testing.T) {
	now := time.Now()
	counter := NewMemoryCounter(context.Background(), 0)
	counter.now = func() time.Time { return now }

	n, _ := counter.Incr(context.Background(), "k", time.Second)
	assert.Equal(t, int64(1), n)
	n, _ = counter.Incr(context.Background(), "k", time.Second)
	assert.Equal(t, int64(2), n)

	now = now.Add(2 * time.Second)
	n, _ = counter.Incr(context.Background(), "k", time.Second)
	assert.Equal(t, int64(1), n)
}

type brokenCounter struct{}

func (brokenCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := RateLimit(brokenCounter{}, 1, time.Minute)(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	h := Logger(Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
