// Package throwlogx bridges merged throw-time context into go-zero's logx.
package throwlogx

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

// Fields returns the merged properties for err as logx fields, sorted by key.
// hub may be nil, in which case throwctx.Default() is used.
func Fields(ctx context.Context, hub *throwctx.Hub, err error) []logx.LogField {
	var props throwctx.Properties
	if hub == nil {
		props = throwctx.Enrich(ctx, err)
	} else {
		props = hub.Enrich(ctx, err)
	}
	if len(props) == 0 {
		return nil
	}
	out := make([]logx.LogField, 0, len(props))
	for _, k := range props.Keys() {
		out = append(out, logx.Field(k, props[k]))
	}
	return out
}

// Errorw logs err through logx.WithContext(ctx) with its merged context and
// an "err" field.
func Errorw(ctx context.Context, hub *throwctx.Hub, msg string, err error, fields ...logx.LogField) {
	all := append(Fields(ctx, hub, err), logx.Field("err", err))
	logx.WithContext(ctx).Errorw(msg, append(all, fields...)...)
}

// Infow is Errorw at info level, for handled failures.
func Infow(ctx context.Context, hub *throwctx.Hub, msg string, err error, fields ...logx.LogField) {
	all := append(Fields(ctx, hub, err), logx.Field("err", err))
	logx.WithContext(ctx).Infow(msg, append(all, fields...)...)
}
