// Package middleware provides the HTTP middleware chain: request logging,
// panic recovery, CORS, rate limiting and session authentication.
package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/plantnet/plantnet/pkg/logger"
	"github.com/plantnet/plantnet/pkg/metrics"
	"github.com/plantnet/plantnet/pkg/response"
)

// Counter counts hits for key inside a fixed window. *cache.Store satisfies
// it for limits shared across replicas; MemoryCounter is the single-process
// fallback.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// bucket tracks a fixed-window request count for one client.
type bucket struct {
	count   int64
	resetAt time.Time
}

// MemoryCounter keeps windows in process memory and evicts expired ones
// every sweep interval until ctx is cancelled.
type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemoryCounter(ctx context.Context, sweep time.Duration) *MemoryCounter {
	m := &MemoryCounter{buckets: map[string]*bucket{}, now: time.Now}
	if sweep > 0 {
		go m.sweep(ctx, sweep)
	}
	return m
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(window)}
		m.buckets[key] = b
	}
	b.count++
	return b.count, nil
}

func (m *MemoryCounter) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := m.now()
			m.mu.Lock()
			for key, b := range m.buckets {
				if now.After(b.resetAt) {
					delete(m.buckets, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// RateLimit returns a middleware that limits each client IP to max requests
// per window. When the counter backend fails the request is let through.
// Forwarding headers are only read when the peer is one of proxies.
//
//	middleware.RateLimit(counter, 200, time.Minute, proxies...)
func RateLimit(c Counter, max int, window time.Duration, proxies ...netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + resolveClientIP(r, proxies)
			n, err := c.Incr(r.Context(), key, window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(max))
			if remaining := int64(max) - n; remaining >= 0 {
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			} else {
				w.Header().Set("X-RateLimit-Remaining", "0")
			}

			if n > int64(max) {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				response.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ParseProxies turns TRUSTED_PROXIES entries (addresses or CIDRs) into
// prefixes for RateLimit.
func ParseProxies(entries []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// clientIP is the socket peer. Used where no proxy list is configured.
func clientIP(r *http.Request) string { return resolveClientIP(r, nil) }

// resolveClientIP returns the peer address unless the peer is a trusted
// proxy, in which case X-Forwarded-For is walked right to left and the
// first hop that is not itself trusted wins.
func resolveClientIP(r *http.Request, proxies []netip.Prefix) string {
	peer := remoteHost(r.RemoteAddr)
	if len(proxies) == 0 || !trusted(peer, proxies) {
		return peer
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !trusted(hop, proxies) || i == 0 {
				return hop
			}
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}
	return peer
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func trusted(ip string, proxies []netip.Prefix) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range proxies {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
