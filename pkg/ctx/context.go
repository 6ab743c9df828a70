// Package ctx provides a request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func ShowPlant(c *ctx.Context) {
//	    plant, err := plants.Get(c.Context(), c.Param("id"))
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.JSON(http.StatusOK, plant)
//	}
//
//	router.Get("/plants/{id}", "plants.show", ctx.Wrap(ShowPlant))
package ctx

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/plantnet/plantnet/pkg/bind"
	"github.com/plantnet/plantnet/pkg/logger"
	"github.com/plantnet/plantnet/pkg/response"
	"github.com/plantnet/plantnet/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int // written status code (0 = not written yet)
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter (e.g. "/plants/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// Cookie returns the value of a named cookie.
func (c *Context) Cookie(name string) (string, error) {
	cookie, err := c.R.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// ClientIP returns the real client IP, respecting X-Forwarded-For.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := c.R.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := c.R.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Set stores a value in the per-request key-value store.
func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

// Get retrieves a value from the per-request store.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// GetString returns a string value from the store, or "" if absent/wrong type.
func (c *Context) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// BindJSON decodes the JSON body into dest and runs validation.
// On validation failure it sends a 422 and returns false; on a decode
// error it sends a 400 and returns false.
//
//	var input UpdateStatusInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// FormFile parses a multipart body capped at MAX_BODY_BYTES and returns the
// named file part.
func (c *Context) FormFile(field string) (multipart.File, *multipart.FileHeader, error) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, bind.MaxBodyBytes())
	if err := c.R.ParseMultipartForm(bind.MaxBodyBytes()); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart body: %w", err)
	}
	return c.R.FormFile(field)
}

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// SetCookie writes cookie on the response.
func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.W, cookie)
}

// SessionCookie describes the attributes of the credential cookie. Secure
// deployments send it cross-site (Secure, SameSite=None); everywhere else
// it is same-site only.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (s SessionCookie) cookie(value string, maxAge time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     s.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if s.Secure {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
	}
	if maxAge > 0 {
		ck.MaxAge = int(maxAge.Seconds())
		ck.Expires = time.Now().Add(maxAge)
	} else {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	}
	return ck
}

// SetSession writes the credential cookie with the given lifetime.
func (c *Context) SetSession(s SessionCookie, value string, ttl time.Duration) {
	c.SetCookie(s.cookie(value, ttl))
}

// ClearSession reissues the credential cookie with zero lifetime.
func (c *Context) ClearSession(s SessionCookie) {
	c.SetCookie(s.cookie("", 0))
}

// Status writes just the HTTP status code with an empty body.
func (c *Context) Status(code int) {
	c.status = code
	c.W.WriteHeader(code)
}

// JSON writes v as the response body with the given status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Error sends a JSON error envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// ValidationError sends a 422 Unprocessable Entity with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusUnprocessableEntity
	response.ValidationError(c.W, errs)
}

// Fail writes err through response.Fail and logs anything that surfaced as
// a server error.
func (c *Context) Fail(err error) {
	c.status = response.Fail(c.W, err)
	if c.status >= http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method, "path", c.R.URL.Path, "error", err)
	}
}

// String writes a plain-text response.
func (c *Context) String(code int, format string, args ...any) {
	c.W.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.W.WriteHeader(code)
	c.status = code
	fmt.Fprintf(c.W, format, args...)
}

// WrittenStatus returns the HTTP status code that was written to the response,
// or 0 if no response has been written yet.
func (c *Context) WrittenStatus() int { return c.status }
