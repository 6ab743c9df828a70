// Package kernel assembles the HTTP handler: global middleware first, then
// the route table.
package kernel

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/plantnet/plantnet/app/routes"
	"github.com/plantnet/plantnet/pkg/metrics"
	"github.com/plantnet/plantnet/pkg/middleware"
	"github.com/plantnet/plantnet/pkg/reqid"
	"github.com/plantnet/plantnet/pkg/response"
	"github.com/plantnet/plantnet/pkg/router"
)

// Options tunes the global middleware stack.
type Options struct {
	CORSOrigins []string

	// RateCounter backs the per-client limiter. Nil disables it.
	RateCounter   middleware.Counter
	RatePerMinute int
	// TrustedProxies may set X-Forwarded-For. Empty means the socket
	// peer is always the client.
	TrustedProxies []netip.Prefix
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(deps routes.Deps, opts Options) *HTTPKernel {
	r := router.New()

	// Outermost first: metrics see total latency, the request id exists
	// before anything logs, and Recovery runs inside Logger so a panic is
	// logged as a 500.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(opts.CORSOrigins...)))
	if opts.RateCounter != nil && opts.RatePerMinute > 0 {
		r.Use(middleware.RateLimit(opts.RateCounter, opts.RatePerMinute, time.Minute, opts.TrustedProxies...))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	routes.RegisterAPI(r, deps)
	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the registered routes for `route:list`.
func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }
