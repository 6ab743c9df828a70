// Package logger provides a structured, levelled logger built on log/slog.
//
// Handlers should log through WithCtx so every line carries the request id
// attached by the Logger middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", id)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/plantnet/plantnet/config"
)

var L *slog.Logger

func init() {
	L = slog.New(newHandler(os.Stdout, config.IsProduction()))
	slog.SetDefault(L)
}

func newHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// AttachMongo ships every record to MongoDB in addition to stdout. The
// returned func flushes and disconnects the sink.
func AttachMongo(uri, db string) (func(), error) {
	mh, err := NewMongoHandler(uri, db, "logs")
	if err != nil {
		return func() {}, err
	}
	L = slog.New(NewMultiHandler(L.Handler(), mh))
	slog.SetDefault(L)
	return mh.Close, nil
}

// SetOutput replaces the base logger. Tests use it to capture log lines.
func SetOutput(w io.Writer) {
	L = slog.New(newHandler(w, config.IsProduction()))
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored by InjectLogger, or the
// base logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
