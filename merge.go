// merge.go — log-time merge of the current view with a captured snapshot.
//
// Precedence (highest first):
//   1. the ambient view at log time,
//   2. the snapshot of err itself,
//   3. with WithUnwrap, snapshots of errors reachable from err, pre-order,
//   4. the error id key (WithErrorIDKey), filled only if still absent.
//
// Lower levels only fill keys the higher levels lack. No snapshot → the view is
// returned unchanged. Merge never fails and never mutates its inputs.
package throwctx

import "context"

// Enrich returns the properties to attach to a log event about err, using the
// ambient view of ctx at the time of logging. err may be nil.
func (h *Hub) Enrich(ctx context.Context, err error) Properties {
	return h.Merge(CurrentView(ctx), err)
}

// Merge combines view with the snapshot(s) held for err. The result is a new
// map; view is not modified.
func (h *Hub) Merge(view Properties, err error) (out Properties) {
	out = make(Properties, len(view))
	for k, v := range view {
		out[k] = v
	}
	if h == nil || err == nil {
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			h.opts.logger.Debug("throwctx: merge abandoned", "panic", r)
		}
	}()

	var first *Snapshot
	fill := func(snap *Snapshot) {
		if first == nil {
			first = snap
		}
		for _, f := range snap.fs {
			if _, taken := out[f.Key]; !taken {
				out[f.Key] = f.Val
			}
		}
	}

	if h.opts.unwrap {
		for _, snap := range h.Snapshots(err) {
			fill(snap)
		}
	} else if snap, ok := h.SnapshotOf(err); ok {
		fill(snap)
	}

	if first != nil && h.opts.errorIDKey != "" {
		if _, taken := out[h.opts.errorIDKey]; !taken {
			out[h.opts.errorIDKey] = first.ID()
		}
	}
	return out
}
