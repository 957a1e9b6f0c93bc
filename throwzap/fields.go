// Package throwzap renders merged throw-time context as zap fields.
package throwzap

import (
	"context"

	"go.uber.org/zap"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

// Fields returns the merged properties for err as zap fields, sorted by key.
// hub may be nil, in which case throwctx.Default() is used.
func Fields(ctx context.Context, hub *throwctx.Hub, err error) []zap.Field {
	var props throwctx.Properties
	if hub == nil {
		props = throwctx.Enrich(ctx, err)
	} else {
		props = hub.Enrich(ctx, err)
	}
	if len(props) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(props))
	for _, k := range props.Keys() {
		out = append(out, zap.Any(k, props[k]))
	}
	return out
}

// Logger binds a zap.Logger to a hub.
type Logger struct {
	base *zap.Logger
	hub  *throwctx.Hub
}

// New wraps base. A nil base becomes zap.NewNop().
func New(base *zap.Logger, hub *throwctx.Hub) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{base: base, hub: hub}
}

// Error logs err at error level with its merged context.
func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...zap.Field) {
	l.base.Error(msg, l.fields(ctx, err, fields)...)
}

// Warn logs err at warn level with its merged context.
func (l *Logger) Warn(ctx context.Context, msg string, err error, fields ...zap.Field) {
	l.base.Warn(msg, l.fields(ctx, err, fields)...)
}

// fields puts explicit fields last; zap keeps duplicates, and readers take
// the last one, so explicit values win.
func (l *Logger) fields(ctx context.Context, err error, explicit []zap.Field) []zap.Field {
	enriched := Fields(ctx, l.hub, err)
	out := make([]zap.Field, 0, len(enriched)+len(explicit)+1)
	out = append(out, enriched...)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return append(out, explicit...)
}
