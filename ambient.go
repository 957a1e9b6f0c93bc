// ambient.go — the ambient context stack carried by context.Context.
//
// Model:
//   • Each Push creates an immutable frame linked to the innermost frame already
//     visible through ctx, and returns a derived ctx plus a Scope.
//   • The stack is a value inside ctx, so it travels wherever ctx travels:
//     goroutines, channels, callbacks. No goroutine-local or side-table state.
//   • A view merges visible frames oldest-to-newest; innermost wins on collision.
//
// Release discipline:
//   • Scope.Close releases exactly its own frame. Released frames disappear from
//     every view, including views built from contexts that still reference them.
//   • Scopes must close in LIFO order. Closing a scope while a frame pushed on top
//     of it is still open fails with ErrScopeOrder and leaves the frame in place.
//     Frames pushed from goroutines that inherited the ctx count as nested, so join
//     those goroutines before closing the enclosing scope.
package throwctx

import (
	"context"
	"sync/atomic"
)

// frame is one pushed unit of context. fs is never modified after push.
//
// state packs the released flag (releasedBit) with the number of frames pushed
// directly on top and not yet closed, so Close checks both and releases in a
// single compare-and-swap.
type frame struct {
	parent *frame
	fs     fields
	state  atomic.Int64
}

const releasedBit = 1 << 62

func (f *frame) released() bool { return f.state.Load()&releasedBit != 0 }

type stackKey struct{}

func innermost(ctx context.Context) *frame {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(stackKey{}).(*frame)
	return f
}

// Scope is the handle returned by Push. Close it exactly once, in LIFO order
// relative to other scopes of the same flow; `defer scope.Close()` is the
// usual shape.
type Scope struct {
	f *frame
}

// Close releases the scope's frame.
//
// Errors:
//   • ErrScopeReleased if the scope was already closed.
//   • ErrScopeOrder if a frame pushed on top of this one is still open; the
//     frame stays visible in that case. A push racing Close either lands
//     first and makes Close fail, or lands after the release on a frame that
//     no view shows any more.
//
// Close on a nil Scope is a no-op.
func (s *Scope) Close() error {
	if s == nil || s.f == nil {
		return nil
	}
	for {
		st := s.f.state.Load()
		switch {
		case st&releasedBit != 0:
			return ErrScopeReleased
		case st != 0:
			return ErrScopeOrder
		}
		if s.f.state.CompareAndSwap(0, releasedBit) {
			break
		}
	}
	if p := s.f.parent; p != nil {
		p.state.Add(-1)
	}
	return nil
}

// Push adds a frame built from kv pairs (see Field parsing rules) as the new
// innermost frame and returns the derived context with its Scope.
// A nil ctx is treated as context.Background().
func Push(ctx context.Context, kv ...any) (context.Context, *Scope) {
	return push(ctx, fieldsFromKV(kv...))
}

// PushFields is Push for pre-built fields.
func PushFields(ctx context.Context, fs ...Field) (context.Context, *Scope) {
	if len(fs) == 0 {
		return push(ctx, emptyFields)
	}
	own := make(fields, len(fs))
	copy(own, fs)
	return push(ctx, own)
}

// PushMap is Push for a map; the frame is ordered by key.
func PushMap(ctx context.Context, m map[string]any) (context.Context, *Scope) {
	return push(ctx, fieldsFromMap(m))
}

func push(ctx context.Context, fs fields) (context.Context, *Scope) {
	if ctx == nil {
		ctx = context.Background()
	}
	f := &frame{parent: innermost(ctx), fs: dedupe(fs)}
	if f.parent != nil {
		f.parent.state.Add(1)
	}
	return context.WithValue(ctx, stackKey{}, f), &Scope{f: f}
}

// Fields returns the current view as ordered fields: one entry per key, oldest
// frames first, each key carrying its innermost value. Empty stack → empty
// slice, never an error.
func Fields(ctx context.Context) []Field {
	return []Field(viewFields(ctx))
}

// CurrentView returns the merge of all open frames visible through ctx,
// innermost-wins on key collision. Pure read.
func CurrentView(ctx context.Context) Properties {
	return viewFields(ctx).toProperties()
}

// Depth reports how many open frames are visible through ctx.
func Depth(ctx context.Context) int {
	n := 0
	for f := innermost(ctx); f != nil; f = f.parent {
		if !f.released() {
			n++
		}
	}
	return n
}

func viewFields(ctx context.Context) fields {
	var chain []*frame
	total := 0
	for f := innermost(ctx); f != nil; f = f.parent {
		if f.released() {
			continue
		}
		chain = append(chain, f)
		total += len(f.fs)
	}
	if total == 0 {
		return emptyFields
	}
	all := make(fields, 0, total)
	for i := len(chain) - 1; i >= 0; i-- {
		all = append(all, chain[i].fs...)
	}
	if len(chain) == 1 {
		return all
	}
	return dedupe(all)
}
