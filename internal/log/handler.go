// Package log holds the slog handler that stamps per-request identifiers
// onto every record logged with a request context.
package log

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/taskboard/internal/reqctx"
)

// contextAttrs are read from the record's context, in output order. Empty
// values are skipped.
var contextAttrs = []struct {
	key   string
	value func(context.Context) string
}{
	{"request_id", reqctx.RequestID},
	{"user_id", reqctx.UserID},
}

type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		for _, a := range contextAttrs {
			if v := a.value(ctx); v != "" {
				r.AddAttrs(slog.String(a.key, v))
			}
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.inner.WithAttrs(attrs))
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return NewContextHandler(h.inner.WithGroup(name))
}
