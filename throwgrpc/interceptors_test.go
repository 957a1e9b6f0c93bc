package throwgrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

func jsonLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestUnary_PushesMethodAndRequestID(t *testing.T) {
	hub := throwctx.NewHub()
	icpt := UnaryServerInterceptor(Options{Hub: hub})

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-1"))
	info := &grpc.UnaryServerInfo{FullMethod: "/orders.v1.Orders/Get"}

	var seen throwctx.Properties
	resp, err := icpt(ctx, "in", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = throwctx.CurrentView(ctx)
		return "out", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "out", resp)
	assert.Equal(t, "/orders.v1.Orders/Get", seen[KeyMethod])
	assert.Equal(t, "req-1", seen[KeyRequestID])
}

func TestUnary_GeneratesRequestID(t *testing.T) {
	icpt := UnaryServerInterceptor(Options{Hub: throwctx.NewHub()})
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/M"}

	var id string
	_, _ = icpt(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		id, _ = throwctx.CurrentView(ctx)[KeyRequestID].(string)
		return nil, nil
	})
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "request id %q", id)
}

func TestUnary_FailureLoggedWithRaiseContext(t *testing.T) {
	hub := throwctx.NewHub()
	logger, buf := jsonLogger()
	icpt := UnaryServerInterceptor(Options{Hub: hub, Logger: logger})
	info := &grpc.UnaryServerInfo{FullMethod: "/orders.v1.Orders/Get"}

	want := status.Error(codes.Internal, "db down")
	_, err := icpt(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		ctx, scope := throwctx.Push(ctx, "order_id", 7)
		defer scope.Close()
		return nil, hub.Raise(ctx, want)
	})
	require.Same(t, want, err)
	assert.Equal(t, codes.Internal, status.Code(err))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, float64(7), rec["order_id"])
	assert.Equal(t, "/orders.v1.Orders/Get", rec[KeyMethod])
	assert.Equal(t, "Internal", rec[KeyCode])
}

func TestUnary_FailureRecordHasNoDuplicateKeys(t *testing.T) {
	hub := throwctx.NewHub()
	logger, buf := jsonLogger()
	icpt := UnaryServerInterceptor(Options{Hub: hub, Logger: logger})
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/M"}

	_, _ = icpt(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		ctx, scope := throwctx.Push(ctx, "err", "ambient", KeyCode, "ambient", "order_id", 7)
		defer scope.Close()
		return nil, hub.Raise(ctx, status.Error(codes.Unavailable, "retry"))
	})

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, `"err":`), line)
	assert.Equal(t, 1, strings.Count(line, `"`+KeyCode+`":`), line)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Unavailable", rec[KeyCode])
	assert.Contains(t, rec["err"], "retry")
	assert.Equal(t, float64(7), rec["order_id"])
}

func TestUnary_ClientErrorLoggedAsWarn(t *testing.T) {
	logger, buf := jsonLogger()
	icpt := UnaryServerInterceptor(Options{Hub: throwctx.NewHub(), Logger: logger})
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/M"}

	_, _ = icpt(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func TestStream_HandlerSeesScopedContext(t *testing.T) {
	hub := throwctx.NewHub()
	icpt := StreamServerInterceptor(Options{Hub: hub})
	info := &grpc.StreamServerInfo{FullMethod: "/feed.v1.Feed/Watch"}

	var raised error
	err := icpt(nil, &fakeStream{ctx: context.Background()}, info, func(srv interface{}, ss grpc.ServerStream) error {
		raised = status.Error(codes.Unavailable, "gone")
		return raised
	})
	require.Same(t, raised, err)

	snap, ok := hub.SnapshotOf(err)
	require.True(t, ok)
	assert.Equal(t, "/feed.v1.Feed/Watch", snap.Properties()[KeyMethod])
}
