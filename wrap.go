// wrap.go — package-level helpers bound to the installed Hub.
//
// Purpose
//   - Give call sites the short form `return throwctx.Raise(ctx, err)`.
//   - Route everything through Default(); before EnsureInitialized these
//     helpers still return the error untouched, they just capture nothing.
//   - Enrich degrades to the plain ambient view when no Hub is installed.
package throwctx

import (
	"context"
	"errors"
	"fmt"
)

// Raise captures ctx's ambient view for err on the installed Hub and returns
// err unchanged.
func Raise(ctx context.Context, err error) error {
	if h := Default(); h != nil && err != nil {
		h.capture(ctx, err, 1)
	}
	return err
}

// New is errors.New followed by Raise.
func New(ctx context.Context, msg string) error {
	err := errors.New(msg)
	if h := Default(); h != nil {
		h.capture(ctx, err, 1)
	}
	return err
}

// Errorf is fmt.Errorf followed by Raise.
func Errorf(ctx context.Context, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if h := Default(); h != nil {
		h.capture(ctx, err, 1)
	}
	return err
}

// Panic raises err and panics with it.
func Panic(ctx context.Context, err error) {
	if h := Default(); h != nil && err != nil {
		h.capture(ctx, err, 1)
	}
	panic(err)
}

// Enrich merges the ambient view of ctx with err's snapshot on the installed
// Hub.
func Enrich(ctx context.Context, err error) Properties {
	if h := Default(); h != nil {
		return h.Enrich(ctx, err)
	}
	return CurrentView(ctx)
}

// Captured reports whether err holds a snapshot on the installed Hub.
func Captured(err error) bool {
	return Default().Captured(err)
}

// SnapshotOf returns err's snapshot on the installed Hub.
func SnapshotOf(err error) (*Snapshot, bool) {
	return Default().SnapshotOf(err)
}
