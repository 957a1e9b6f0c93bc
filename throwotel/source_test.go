package throwotel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

func spanCtx(t *testing.T) (context.Context, trace.SpanContext) {
	t.Helper()
	tid, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid, TraceFlags: trace.FlagsSampled})
	return trace.ContextWithSpanContext(context.Background(), sc), sc
}

func TestSpanSource_NoSpan(t *testing.T) {
	assert.Nil(t, SpanSource(context.Background()))
}

func TestSpanSource_CapturedAtRaise(t *testing.T) {
	hub := throwctx.NewHub(throwctx.WithSource(SpanSource))
	ctx, sc := spanCtx(t)

	err := hub.New(ctx, "boom")

	// Logged later, outside the span.
	props := hub.Enrich(context.Background(), err)
	assert.Equal(t, sc.TraceID().String(), props[KeyTraceID])
	assert.Equal(t, sc.SpanID().String(), props[KeySpanID])
}

func TestSpanSource_AmbientOverrides(t *testing.T) {
	hub := throwctx.NewHub(throwctx.WithSource(SpanSource))
	ctx, _ := spanCtx(t)
	ctx, scope := throwctx.Push(ctx, KeySpanID, "pinned")
	defer scope.Close()

	err := hub.New(ctx, "boom")
	props := hub.Enrich(context.Background(), err)
	assert.Equal(t, "pinned", props[KeySpanID])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", props[KeyTraceID])
}
