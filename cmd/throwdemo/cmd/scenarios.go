package cmd

import (
	"context"
	"log/slog"
	"sort"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

// scenario raises, propagates and logs one error against hub.
type scenario func(ctx context.Context, hub *throwctx.Hub, log *slog.Logger)

var scenarios = map[string]scenario{
	"outer":    scenarioOuter,
	"override": scenarioOverride,
	"popped":   scenarioPopped,
	"replace":  scenarioReplace,
	"async":    scenarioAsync,
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func raiseWith(ctx context.Context, hub *throwctx.Hub, kv ...any) error {
	ctx, scope := throwctx.Push(ctx, kv...)
	defer scope.Close()
	return hub.New(ctx, "operation failed")
}

// outer: B is pushed around the whole call, A only around the raise.
func scenarioOuter(ctx context.Context, hub *throwctx.Hub, log *slog.Logger) {
	ctx, scope := throwctx.Push(ctx, "B", 2)
	defer scope.Close()

	err := raiseWith(ctx, hub, "A", 1)
	err = hub.Raise(ctx, err)
	log.ErrorContext(ctx, "outer", "err", err)
}

// override: the logging scope sets A again; its value wins.
func scenarioOverride(ctx context.Context, hub *throwctx.Hub, log *slog.Logger) {
	err := raiseWith(ctx, hub, "A", 1)

	ctx, scope := throwctx.Push(ctx, "A", 2)
	defer scope.Close()
	log.ErrorContext(ctx, "override", "err", hub.Raise(ctx, err))
}

// popped: A=2 is pushed and popped around a re-raise; A=1 is logged.
func scenarioPopped(ctx context.Context, hub *throwctx.Hub, log *slog.Logger) {
	err := raiseWith(ctx, hub, "A", 1)
	func() {
		ctx, scope := throwctx.Push(ctx, "A", 2, "B", 2)
		defer scope.Close()
		err = hub.Raise(ctx, err)
	}()
	log.ErrorContext(ctx, "popped", "err", err)
}

// replace: a wrapping error raised in a B scope carries B, not A.
func scenarioReplace(ctx context.Context, hub *throwctx.Hub, log *slog.Logger) {
	orig := raiseWith(ctx, hub, "A", 1)
	var err error
	func() {
		ctx, scope := throwctx.Push(ctx, "B", 2)
		defer scope.Close()
		err = hub.Errorf(ctx, "retry exhausted: %w", orig)
	}()
	log.ErrorContext(ctx, "replace", "err", err)
}

// async: the raise happens on another goroutine with the handed-over ctx.
func scenarioAsync(ctx context.Context, hub *throwctx.Hub, log *slog.Logger) {
	ctx, scope := throwctx.Push(ctx, "job", "reindex")
	defer scope.Close()

	errs := make(chan error, 1)
	go func() {
		errs <- raiseWith(ctx, hub, "shard", 3)
	}()
	err := <-errs
	log.ErrorContext(context.Background(), "async", "err", err)
}
