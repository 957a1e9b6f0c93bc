// typed_key.go — optional, type-safe keys over the ambient stack.
//
// Overview
//   Key[T] pairs a property name with the Go type stored under it. It is a thin
//   layer over Push/CurrentView and Properties; mixing typed and untyped access
//   to the same name is fine.
//
// Usage
//   var OrderID = throwctx.Key[int64]("order_id")
//
//   ctx, scope := OrderID.Push(ctx, 42)
//   defer scope.Close()
//   id, ok := OrderID.Current(ctx) // 42, true
//
// Caveats
//   • Reads use a type assertion: the stored dynamic type must be exactly T.
package throwctx

import (
	"context"
	"fmt"
)

// TypedKey names a property holding values of type T.
type TypedKey[T any] struct {
	name string
}

// Key constructs a TypedKey[T] for name.
func Key[T any](name string) TypedKey[T] {
	return TypedKey[T]{name: name}
}

// Name returns the property name.
func (k TypedKey[T]) Name() string { return k.name }

// Field builds a Field for use with PushFields or a Source.
func (k TypedKey[T]) Field(v T) Field {
	return Field{Key: k.name, Val: v}
}

// Push pushes a single-field frame {name: v}.
func (k TypedKey[T]) Push(ctx context.Context, v T) (context.Context, *Scope) {
	return PushFields(ctx, k.Field(v))
}

// Get reads the typed value from p. Returns (zero, false) if the key is absent
// or holds a different dynamic type.
func (k TypedKey[T]) Get(p Properties) (T, bool) {
	var zero T
	v, ok := p[k.name]
	if !ok {
		return zero, false
	}
	tv, ok := v.(T)
	if !ok {
		return zero, false
	}
	return tv, true
}

// Current reads the typed value from the ambient view of ctx.
func (k TypedKey[T]) Current(ctx context.Context) (T, bool) {
	var zero T
	for _, f := range viewFields(ctx) {
		if f.Key == k.name {
			tv, ok := f.Val.(T)
			if !ok {
				return zero, false
			}
			return tv, true
		}
	}
	return zero, false
}

// MustGet is Get that panics when the key is missing or mistyped. Meant for
// tests and places where absence is a programming error.
func (k TypedKey[T]) MustGet(p Properties) T {
	var zero T
	v, ok := p[k.name]
	if !ok {
		panic(fmt.Errorf("throwctx.Key[%T](%q): property missing", zero, k.name))
	}
	tv, ok := v.(T)
	if !ok {
		panic(fmt.Errorf("throwctx.Key[%T](%q): wrong dynamic type (%T)", zero, k.name, v))
	}
	return tv
}
