// rethrow_test.go — end-to-end raise / re-raise / log scenarios.
package throwctx

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// raiseWithA raises a fresh error inside a scope holding A=a.
func raiseWithA(ctx context.Context, h *Hub, a int) error {
	ctx, scope := Push(ctx, "A", a)
	defer scope.Close()
	return h.New(ctx, "boom")
}

func TestRethrow_KeepsOriginalAndOuterProperties(t *testing.T) {
	t.Parallel()
	h := NewHub()

	ctx, outer := Push(context.Background(), "B", 2)
	defer outer.Close()

	err := raiseWithA(ctx, h, 1)
	// Propagate the same instance from the outer scope.
	err = h.Raise(ctx, err)

	props := h.Enrich(ctx, err)
	if props["A"] != 1 {
		t.Fatalf("A = %v, want 1 (captured at raise); props=%v", props["A"], props)
	}
	if props["B"] != 2 {
		t.Fatalf("B = %v, want 2 (ambient at log time); props=%v", props["B"], props)
	}
}

func TestRethrow_SameInstanceCapturedOnce(t *testing.T) {
	t.Parallel()
	var outcomes []Outcome
	h := NewHub(WithObserver(func(o Outcome) { outcomes = append(outcomes, o) }))

	err := raiseWithA(context.Background(), h, 1)

	ctx, scope := Push(context.Background(), "A", 2, "C", 3)
	_ = h.Raise(ctx, err)
	_ = h.Raise(ctx, err)
	_ = scope.Close()

	snap, ok := h.SnapshotOf(err)
	if !ok {
		t.Fatalf("expected snapshot")
	}
	p := snap.Properties()
	if len(p) != 1 || p["A"] != 1 {
		t.Fatalf("snapshot = %v, want only A=1 from the original raise", p)
	}
	want := []Outcome{OutcomeCaptured, OutcomeDuplicate, OutcomeDuplicate}
	if fmt.Sprint(outcomes) != fmt.Sprint(want) {
		t.Fatalf("outcomes = %v, want %v", outcomes, want)
	}
}

func TestRethrow_CurrentAmbientWins(t *testing.T) {
	t.Parallel()

	for _, rethrow := range []bool{true, false} {
		t.Run(fmt.Sprintf("rethrow=%v", rethrow), func(t *testing.T) {
			t.Parallel()
			h := NewHub()

			ctx, scope := Push(context.Background(), "A", 2)
			defer scope.Close()

			err := raiseWithA(context.Background(), h, 1)
			if rethrow {
				err = h.Raise(ctx, err)
			}

			if got := h.Enrich(ctx, err)["A"]; got != 2 {
				t.Fatalf("A = %v, want 2 (log-time view wins)", got)
			}
		})
	}
}

func TestRethrow_OriginalValueSurvivesPoppedOverride(t *testing.T) {
	t.Parallel()
	h := NewHub()

	err := raiseWithA(context.Background(), h, 1)
	func() {
		ctx, scope := Push(context.Background(), "A", 2)
		defer scope.Close()
		_ = h.Raise(ctx, err)
	}()

	if got := h.Enrich(context.Background(), err)["A"]; got != 1 {
		t.Fatalf("A = %v, want 1", got)
	}
}

func TestRethrow_NewInstanceDoesNotInherit(t *testing.T) {
	t.Parallel()

	cases := map[string]func(h *Hub, ctx context.Context, orig error) error{
		"errors.New": func(h *Hub, ctx context.Context, _ error) error {
			return h.New(ctx, "replacement")
		},
		"wrapping %w": func(h *Hub, ctx context.Context, orig error) error {
			return h.Errorf(ctx, "replacement: %w", orig)
		},
	}
	for name, raiseNew := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := NewHub()

			orig := raiseWithA(context.Background(), h, 1)
			var err error
			func() {
				ctx, scope := Push(context.Background(), "B", 2)
				defer scope.Close()
				err = raiseNew(h, ctx, orig)
			}()

			props := h.Enrich(context.Background(), err)
			if _, ok := props["A"]; ok {
				t.Fatalf("new instance inherited A: %v", props)
			}
			if props["B"] != 2 {
				t.Fatalf("B = %v, want 2 from the new raise path", props["B"])
			}
		})
	}
}

func TestRethrow_UnwrapOptionReachesCause(t *testing.T) {
	t.Parallel()
	h := NewHub(WithUnwrap(true))

	orig := raiseWithA(context.Background(), h, 1)
	ctx, scope := Push(context.Background(), "A", 9, "B", 2)
	err := h.Errorf(ctx, "outer: %w", orig)
	_ = scope.Close()

	props := h.Enrich(context.Background(), err)
	if props["B"] != 2 {
		t.Fatalf("B = %v, want 2", props["B"])
	}
	// The wrapper's own snapshot outranks its cause.
	if props["A"] != 9 {
		t.Fatalf("A = %v, want 9 from the outer snapshot", props["A"])
	}

	onlyCause := h.Enrich(context.Background(), fmt.Errorf("plain: %w", orig))
	if onlyCause["A"] != 1 {
		t.Fatalf("A via uncaptured wrapper = %v, want 1", onlyCause["A"])
	}
}

func TestRethrow_FillAddsMissingKeysOnly(t *testing.T) {
	t.Parallel()
	var extended int
	h := NewHub(WithRethrowFill(true), WithObserver(func(o Outcome) {
		if o == OutcomeExtended {
			extended++
		}
	}))

	// Raised under A=1, re-raised under B=2 A=2, logged with an empty view.
	err := raiseWithA(context.Background(), h, 1)
	func() {
		ctx, scope := Push(context.Background(), "B", 2, "A", 2)
		defer scope.Close()
		_ = h.Raise(ctx, err)
	}()

	props := h.Enrich(context.Background(), err)
	if props["A"] != 1 || props["B"] != 2 {
		t.Fatalf("props = %v, want A=1 B=2", props)
	}
	if extended != 1 {
		t.Fatalf("extended outcomes = %d, want 1", extended)
	}

	before, _ := h.SnapshotOf(err)
	_ = h.Raise(context.Background(), err)
	after, _ := h.SnapshotOf(err)
	if before != after {
		t.Fatalf("re-raise with nothing new must not replace the snapshot")
	}
	if before.ID() == "" {
		t.Fatalf("expected a snapshot id")
	}
}

func TestRethrow_FillKeepsOriginalKeysUnderMaxFields(t *testing.T) {
	t.Parallel()
	h := NewHub(WithRethrowFill(true), WithMaxFields(3))

	var err error
	func() {
		ctx, scope := Push(context.Background(), "A", 1, "B", 1)
		defer scope.Close()
		err = h.New(ctx, "boom")
	}()
	func() {
		ctx, scope := Push(context.Background(), "C", 2, "D", 2)
		defer scope.Close()
		_ = h.Raise(ctx, err)
	}()

	snap, ok := h.SnapshotOf(err)
	if !ok {
		t.Fatalf("expected snapshot")
	}
	p := snap.Properties()
	if len(p) != 3 || p["A"] != 1 || p["B"] != 1 {
		t.Fatalf("snapshot = %v, want A=1 B=1 plus one filled key", p)
	}
	if p["D"] != 2 {
		t.Fatalf("snapshot = %v, want the innermost new key D", p)
	}

	// A full snapshot takes nothing more.
	func() {
		ctx, scope := Push(context.Background(), "E", 3)
		defer scope.Close()
		_ = h.Raise(ctx, err)
	}()
	after, _ := h.SnapshotOf(err)
	if after != snap {
		t.Fatalf("re-raise into a full snapshot must not replace it")
	}
}

func TestRethrow_EmptyStackCapturesEmptySnapshot(t *testing.T) {
	t.Parallel()
	h := NewHub()

	err := h.New(context.Background(), "bare")
	snap, ok := h.SnapshotOf(err)
	if !ok {
		t.Fatalf("raise with no frames must still capture")
	}
	if snap.Len() != 0 {
		t.Fatalf("snapshot = %v, want empty", snap.Properties())
	}

	ctx, scope := Push(context.Background(), "X", 1)
	defer scope.Close()
	props := h.Enrich(ctx, err)
	if len(props) != 1 || props["X"] != 1 {
		t.Fatalf("props = %v, want the view unchanged", props)
	}
}

func TestRaise_ReturnsSameValue(t *testing.T) {
	t.Parallel()
	h := NewHub()

	base := errors.New("x")
	if got := h.Raise(context.Background(), base); got != base {
		t.Fatalf("Raise must return the same error value")
	}
	if got := h.Raise(context.Background(), nil); got != nil {
		t.Fatalf("Raise(nil) = %v, want nil", got)
	}
	var nilHub *Hub
	if got := nilHub.Raise(context.Background(), base); got != base {
		t.Fatalf("nil Hub must pass errors through")
	}
}

func TestRaise_NilContextIsEmptyView(t *testing.T) {
	t.Parallel()
	h := NewHub()

	//lint:ignore SA1012 nil ctx is part of the contract
	err := h.New(nil, "no ctx") //nolint:staticcheck
	if !h.Captured(err) {
		t.Fatalf("expected capture with nil ctx")
	}
}

func TestPanic_RecoveredValueKeepsSnapshot(t *testing.T) {
	t.Parallel()
	h := NewHub()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		ctx, scope := Push(context.Background(), "step", "parse")
		defer scope.Close()
		h.Panic(ctx, errors.New("bad input"))
	}()

	err, ok := recovered.(error)
	if !ok {
		t.Fatalf("recovered %T, want error", recovered)
	}
	if got := h.Enrich(context.Background(), err)["step"]; got != "parse" {
		t.Fatalf("step = %v, want parse", got)
	}
}
