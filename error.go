// error.go — the only errors this package reports itself.
//
// Capture and merge never fail: they degrade to empty results. The sentinels
// below cover misuse of the scope API, which is a programming error in the
// caller and is reported loudly instead of being absorbed.
package throwctx

import "errors"

var (
	// ErrScopeOrder is returned by Scope.Close when a frame pushed on top of the
	// scope is still open (out-of-order release). The frame is left in place.
	ErrScopeOrder = errors.New("throwctx: scope closed out of order")

	// ErrScopeReleased is returned by Scope.Close on an already closed scope.
	ErrScopeReleased = errors.New("throwctx: scope already closed")
)
