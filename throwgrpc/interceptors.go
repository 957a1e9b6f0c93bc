// Package throwgrpc provides gRPC server interceptors that open an ambient
// scope per call and log failed calls with their throw-time context.
package throwgrpc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

// Property keys pushed for every call.
const (
	KeyMethod    = "grpc.method"
	KeyRequestID = "request_id"
	KeyCode      = "grpc.code"
)

// keyErr holds the failed call's error in log records. Ambient properties
// under KeyCode or keyErr are dropped from the record in favor of the call's own.
const keyErr = "err"

// RequestIDHeader is the incoming metadata key read for the request id.
const RequestIDHeader = "x-request-id"

// Options configures the interceptors.
type Options struct {
	// Hub captures handler errors. Nil means throwctx.Default().
	Hub *throwctx.Hub
	// Logger receives one record per failed call. Nil disables logging.
	Logger *slog.Logger
}

func (o Options) hub() *throwctx.Hub {
	if o.Hub != nil {
		return o.Hub
	}
	return throwctx.Default()
}

// UnaryServerInterceptor pushes method and request id, raises the handler's
// error and logs it with its merged context.
func UnaryServerInterceptor(opts Options) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx, scope := throwctx.Push(ctx, KeyMethod, info.FullMethod, KeyRequestID, requestID(ctx))
		defer scope.Close()

		resp, err := handler(ctx, req)
		if err != nil {
			err = opts.hub().Raise(ctx, err)
			logFailure(ctx, opts, "gRPC request failed", err)
		}
		return resp, err
	}
}

// StreamServerInterceptor is UnaryServerInterceptor for streams. The handler
// sees the scoped context through ServerStream.Context.
func StreamServerInterceptor(opts Options) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, scope := throwctx.Push(ss.Context(), KeyMethod, info.FullMethod, KeyRequestID, requestID(ss.Context()))
		defer scope.Close()

		err := handler(srv, &scopedStream{ServerStream: ss, ctx: ctx})
		if err != nil {
			err = opts.hub().Raise(ctx, err)
			logFailure(ctx, opts, "gRPC stream failed", err)
		}
		return err
	}
}

type scopedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *scopedStream) Context() context.Context { return s.ctx }

func logFailure(ctx context.Context, opts Options, msg string, err error) {
	if opts.Logger == nil {
		return
	}
	var props throwctx.Properties
	if hub := opts.hub(); hub != nil {
		props = hub.Enrich(ctx, err)
	} else {
		props = throwctx.CurrentView(ctx)
	}
	args := make([]any, 0, 2*len(props)+4)
	for _, k := range props.Keys() {
		if k == KeyCode || k == keyErr {
			continue
		}
		args = append(args, k, props[k])
	}
	args = append(args, KeyCode, status.Code(err).String(), keyErr, err)
	level := slog.LevelError
	if isClientError(status.Code(err)) {
		level = slog.LevelWarn
	}
	opts.Logger.Log(ctx, level, msg, args...)
}

func isClientError(c codes.Code) bool {
	switch c {
	case codes.InvalidArgument, codes.NotFound, codes.AlreadyExists,
		codes.PermissionDenied, codes.Unauthenticated, codes.FailedPrecondition,
		codes.OutOfRange, codes.Canceled:
		return true
	}
	return false
}

// requestID returns the incoming x-request-id, or a fresh uuid.
func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDHeader); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.New().String()
}
