// Package throwotel records the active OpenTelemetry span into snapshots, so
// an error logged far from where it was raised still links to the raising
// trace.
//
//	throwctx.EnsureInitialized(throwctx.WithSource(throwotel.SpanSource))
package throwotel

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"
)

// SpanSource is a throwctx.Source that contributes trace_id and span_id of
// the span in ctx. It contributes nothing when ctx has no valid span.
func SpanSource(ctx context.Context) []throwctx.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []throwctx.Field{
		{Key: KeyTraceID, Val: sc.TraceID().String()},
		{Key: KeySpanID, Val: sc.SpanID().String()},
	}
}

var _ throwctx.Source = SpanSource
