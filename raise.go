// raise.go — raise-time capture.
//
// Go has no first-chance notification for returned errors, so capture happens
// where an error is raised: `return throwctx.Raise(ctx, err)`. Raise returns err
// untouched (same value, same identity, no wrapping), which keeps errors.Is/As,
// equality and formatting exactly as they were.
//
// Semantics per error identity:
//   - First raise: snapshot = sources, then the ambient view through ctx
//     (ambient wins), plus the raise site when enabled, bounded by WithMaxFields.
//   - Every later raise of the same instance is a no-op (first capture wins), so
//     a propagated error keeps the context of its original raise site. With
//     WithRethrowFill a re-raise may only add keys the snapshot lacks.
//   - A new instance (including one that wraps the original) is captured on its
//     own, from its own raise-time view.
//
// Nothing here panics into the caller: internal failures are recovered,
// reported to the observer as OutcomeFailed and logged at Debug.
package throwctx

import (
	"context"
	"errors"
	"fmt"
)

// Raise captures the ambient view of ctx for err (first raise only) and
// returns err unchanged. Raise(ctx, nil) returns nil.
func (h *Hub) Raise(ctx context.Context, err error) error {
	if h == nil || err == nil {
		return err
	}
	h.capture(ctx, err, 1)
	return err
}

// New creates an error with errors.New and raises it.
func (h *Hub) New(ctx context.Context, msg string) error {
	err := errors.New(msg)
	if h != nil {
		h.capture(ctx, err, 1)
	}
	return err
}

// Errorf creates an error with fmt.Errorf and raises it. Wrapping with %w
// yields a new instance with its own snapshot.
func (h *Hub) Errorf(ctx context.Context, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if h != nil {
		h.capture(ctx, err, 1)
	}
	return err
}

// Panic raises err and then panics with it. Recovering code sees the same
// value, so its snapshot is found at log time.
func (h *Hub) Panic(ctx context.Context, err error) {
	if h != nil && err != nil {
		h.capture(ctx, err, 1)
	}
	panic(err)
}

// capture is the hook body. skip counts frames between the user's raise call
// and capture (1 = the Hub method that called capture).
func (h *Hub) capture(ctx context.Context, err error, skip int) {
	defer func() {
		if r := recover(); r != nil {
			h.observe(OutcomeFailed)
			h.opts.logger.Debug("throwctx: capture abandoned",
				"panic", r, "error_type", fmt.Sprintf("%T", err))
		}
	}()

	id, ptr, ok := identityOf(err)
	if !ok {
		h.observe(OutcomeUnsupported)
		return
	}
	if prev, ok := h.store.get(id, ptr); ok {
		if h.opts.fill && h.extend(ctx, id, ptr, prev) {
			h.observe(OutcomeExtended)
			return
		}
		h.observe(OutcomeDuplicate)
		return
	}

	var site Frame
	if h.opts.siteKey != "" {
		// +1 for capture itself.
		site = callerFrame(skip + 1)
	}
	snap := newSnapshot(h.snapshotFields(ctx, site), site)
	if !h.store.setIfAbsent(id, ptr, snap) {
		// Lost a race against a concurrent raise of the same instance.
		h.observe(OutcomeDuplicate)
		return
	}
	h.observe(OutcomeCaptured)
}

// extend replaces prev with a copy that also carries the view's keys prev
// lacks. Added keys only fill the room left under WithMaxFields; prev's own
// fields are never dropped. It reports false when there was nothing to add or
// another raise replaced prev first.
func (h *Hub) extend(ctx context.Context, id identity, ptr *byte, prev *Snapshot) bool {
	view := h.snapshotFields(ctx, Frame{})
	have := make(map[string]struct{}, len(prev.fs))
	for _, f := range prev.fs {
		have[f.Key] = struct{}{}
	}
	var add fields
	for _, f := range view {
		if _, dup := have[f.Key]; !dup {
			add = append(add, f)
		}
	}
	if h.opts.maxFields > 0 {
		room := h.opts.maxFields - len(prev.fs)
		if room <= 0 {
			return false
		}
		add = bound(add, room)
	}
	if len(add) == 0 {
		return false
	}
	fs := make(fields, 0, len(prev.fs)+len(add))
	fs = append(fs, prev.fs...)
	fs = append(fs, add...)
	next := &Snapshot{id: prev.id, fs: fs, site: prev.site, at: prev.at}
	return h.store.replace(id, ptr, prev, next)
}

// snapshotFields assembles sources, the ambient view and the site, in that
// precedence order (later wins), then bounds the result.
func (h *Hub) snapshotFields(ctx context.Context, site Frame) fields {
	view := viewFields(ctx)
	if len(h.opts.sources) == 0 && h.opts.siteKey == "" {
		return bound(view, h.opts.maxFields)
	}
	all := make(fields, 0, len(view)+2*len(h.opts.sources)+1)
	for _, src := range h.opts.sources {
		all = append(all, h.runSource(ctx, src)...)
	}
	all = append(all, view...)
	if h.opts.siteKey != "" && site.PC != 0 {
		all = append(all, Field{Key: h.opts.siteKey, Val: site.String()})
	}
	return bound(dedupe(all), h.opts.maxFields)
}

func (h *Hub) runSource(ctx context.Context, src Source) (out []Field) {
	defer func() {
		if r := recover(); r != nil {
			h.opts.logger.Debug("throwctx: source panicked", "panic", r)
			out = nil
		}
	}()
	return src(ctx)
}
