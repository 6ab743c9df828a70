package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))
}

func TestWithCtxReturnsInjected(t *testing.T) {
	var buf bytes.Buffer
	reqLog := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")

	ctx := InjectLogger(context.Background(), reqLog)
	WithCtx(ctx).Info("hello")

	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)

	slog.New(h).With("k", "v").Info("fan")

	assert.Contains(t, a.String(), "k=v")
	assert.Contains(t, b.String(), `"k":"v"`)
}
