// Package log builds the process logger: a slog handler that scrubs secret
// attributes, optionally writing to a size-rotated file.
package log

import (
	"context"
	"log/slog"
	"strings"
)

// Redacted replaces the value of every sensitive attribute.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"key":             {},
	"unencrypted_key": {},
	"encrypted_key":   {},
	"master_key":      {},
	"secret":          {},
	"password":        {},
	"token":           {},
}

// RedactingHandler wraps another handler and replaces the values of
// attributes whose key names a secret, at any group depth.
type RedactingHandler struct {
	inner slog.Handler
}

// NewRedactingHandler wraps inner.
func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	scrubbed := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		scrubbed.AddAttrs(scrub(attr))
		return true
	})
	return h.inner.Handle(ctx, scrubbed)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		scrubbed[i] = scrub(attr)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(scrubbed)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func scrub(attr slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, Redacted)
	}

	value := attr.Value.Resolve()
	if value.Kind() != slog.KindGroup {
		return slog.Attr{Key: attr.Key, Value: value}
	}

	members := value.Group()
	scrubbed := make([]slog.Attr, len(members))
	for i, member := range members {
		scrubbed[i] = scrub(member)
	}
	return slog.Attr{Key: attr.Key, Value: slog.GroupValue(scrubbed...)}
}
