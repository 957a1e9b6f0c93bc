// doc.go — package documentation for xgx-throwctx
//
// Package throwctx keeps the diagnostic context that was active where an error
// was raised and hands it back when the error is finally logged, even after the
// scopes that pushed that context have unwound. It is an out-of-band side
// channel keyed by error identity: errors are never wrapped, mutated or
// compared differently.
//
// # Pieces
//
//   - Ambient stack: Push adds a frame of key/value fields to a context.Context
//     and returns a Scope; CurrentView merges the open frames, innermost wins.
//     The stack lives in ctx, so it follows the logical flow across goroutines.
//   - Raise: `return throwctx.Raise(ctx, err)` snapshots the current view under
//     err's identity the first time that instance is raised. Later raises of the
//     same instance change nothing.
//   - Store: snapshots are held weakly; an entry disappears some time after its
//     error becomes unreachable. No cleanup call is needed.
//   - Enrich: at log time, the view of the logging ctx wins; the snapshot only
//     fills keys the view lacks.
//
// # Typical flow
//
//	throwctx.EnsureInitialized()
//
//	func load(ctx context.Context, id int) error {
//		ctx, scope := throwctx.Push(ctx, "order_id", id)
//		defer scope.Close()
//		if err := db.Get(ctx, id); err != nil {
//			return throwctx.Raise(ctx, err)
//		}
//		return nil
//	}
//
//	func handle(ctx context.Context) {
//		ctx, scope := throwctx.Push(ctx, "route", "/orders")
//		defer scope.Close()
//		if err := load(ctx, 7); err != nil {
//			logger.ErrorContext(ctx, "load failed", "err", err) // order_id=7 route=/orders
//		}
//	}
//
// The last line assumes the logger's handler is wrapped with throwslog.
//
// # Identity
//
// Only errors whose dynamic type is a pointer have an identity (errors.New,
// fmt.Errorf and most custom error types qualify). Value-typed errors are
// skipped silently, and so are pointers to zero-size types such as
// &ErrTimeout{} with `type ErrTimeout struct{}`: every such pointer shares one
// address, so distinct instances could not be told apart. Give the type a
// field to make it capturable. A shared sentinel such as io.EOF is one instance for the
// whole process, so its first capture sticks: raise a fresh wrapper instead,
// e.g. throwctx.Errorf(ctx, "read header: %w", io.EOF).
//
// # Scopes
//
// Close scopes in LIFO order, usually with defer. Closing out of order returns
// ErrScopeOrder and leaves the frame in place; closing twice returns
// ErrScopeReleased.
//
// # Failure behavior
//
// Capture and merge never panic into the caller and never return errors. In
// the worst case a logged error lacks the extra properties it would otherwise
// carry.
//
// # Adapters
//
// Logging, metrics and transport glue live in sub-packages: throwslog,
// throwzap, throwlogx, throwprom, throwgrpc, throwotel, and config for loading
// options from TOML or YAML.
package throwctx
