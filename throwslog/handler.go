// Package throwslog is slog middleware that attaches captured raise-time
// context to log records.
//
// For every record the handler looks for the first attribute whose value is an
// error, merges the ambient view of the record's context with that error's
// snapshot (throwctx.Hub.Enrich) and appends the keys the record does not
// already carry. Records without an error get the ambient view only.
//
//	logger := slog.New(throwslog.NewHandler(slog.NewJSONHandler(os.Stdout, nil), nil))
//	logger.ErrorContext(ctx, "load failed", "err", err)
package throwslog

import (
	"context"
	"log/slog"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

// Options configures a Handler.
type Options struct {
	// Hub resolves snapshots. Nil means throwctx.Default() at log time.
	Hub *throwctx.Hub

	// ErrorKeys restricts which attribute keys are inspected for an error.
	// Empty means any attribute holding an error value.
	ErrorKeys []string
}

// Handler wraps another slog.Handler.
type Handler struct {
	next      slog.Handler
	hub       *throwctx.Hub
	errorKeys map[string]struct{}
	// keys already attached through WithAttrs; the record must not repeat them.
	preset map[string]struct{}
	// grouped is true once WithGroup was called; preset keys then live in a
	// group and no longer collide with top-level enrichment.
	grouped bool
}

// NewHandler wraps next. opts may be nil.
func NewHandler(next slog.Handler, opts *Options) *Handler {
	h := &Handler{next: next}
	if opts != nil {
		h.hub = opts.Hub
		if len(opts.ErrorKeys) > 0 {
			h.errorKeys = make(map[string]struct{}, len(opts.ErrorKeys))
			for _, k := range opts.ErrorKeys {
				h.errorKeys[k] = struct{}{}
			}
		}
	}
	return h
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	err := h.findError(r)
	var props throwctx.Properties
	if hub := h.resolveHub(); hub != nil {
		props = hub.Enrich(ctx, err)
	} else {
		props = throwctx.CurrentView(ctx)
	}
	if len(props) == 0 {
		return h.next.Handle(ctx, r)
	}

	present := make(map[string]struct{}, r.NumAttrs()+len(h.preset))
	r.Attrs(func(a slog.Attr) bool {
		present[a.Key] = struct{}{}
		return true
	})
	if !h.grouped {
		for k := range h.preset {
			present[k] = struct{}{}
		}
	}

	extra := make([]slog.Attr, 0, len(props))
	for _, k := range props.Keys() {
		if _, ok := present[k]; ok {
			continue
		}
		extra = append(extra, slog.Any(k, props[k]))
	}
	if len(extra) == 0 {
		return h.next.Handle(ctx, r)
	}
	r = r.Clone()
	r.AddAttrs(extra...)
	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	if !h.grouped {
		clone.preset = make(map[string]struct{}, len(h.preset)+len(attrs))
		for k := range h.preset {
			clone.preset[k] = struct{}{}
		}
		for _, a := range attrs {
			clone.preset[a.Key] = struct{}{}
		}
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.next = h.next.WithGroup(name)
	clone.grouped = true
	return &clone
}

func (h *Handler) resolveHub() *throwctx.Hub {
	if h.hub != nil {
		return h.hub
	}
	return throwctx.Default()
}

func (h *Handler) findError(r slog.Record) error {
	var found error
	r.Attrs(func(a slog.Attr) bool {
		if h.errorKeys != nil {
			if _, ok := h.errorKeys[a.Key]; !ok {
				return true
			}
		}
		if e, ok := a.Value.Resolve().Any().(error); ok && e != nil {
			found = e
			return false
		}
		return true
	})
	return found
}
