// predicates.go — read-only queries over captured snapshots.
//
// Scope:
//   • Point lookups by identity only; the store is never enumerated.
//   • Chain-aware variants walk Unwrap() error and Unwrap() []error with Walk.
package throwctx

// Snapshots returns the snapshots found along err's unwrap graph in pre-order
// (err itself first). Errors without a snapshot are skipped.
func (h *Hub) Snapshots(err error) []*Snapshot {
	if h == nil || err == nil {
		return nil
	}
	var out []*Snapshot
	Walk(err, func(e error) bool {
		if snap, ok := h.SnapshotOf(e); ok {
			out = append(out, snap)
		}
		return true
	})
	return out
}

// Origin returns the snapshot of the deepest captured error along err's chain,
// i.e. the context of the earliest raise that led to err.
func (h *Hub) Origin(err error) (*Snapshot, bool) {
	snaps := h.Snapshots(err)
	if len(snaps) == 0 {
		return nil, false
	}
	return snaps[len(snaps)-1], true
}

// CapturedAny reports whether any error along err's chain holds a snapshot.
func (h *Hub) CapturedAny(err error) bool {
	found := false
	if h == nil {
		return false
	}
	Walk(err, func(e error) bool {
		found = h.Captured(e)
		return !found
	})
	return found
}
