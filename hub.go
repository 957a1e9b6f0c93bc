// hub.go — the capture service and its process-wide installation.
//
// A Hub owns one identity store and the options that shape capture and merge.
// Most programs install a single hub once at startup with EnsureInitialized and
// use the package-level helpers; tests and embedders can build private hubs
// with NewHub and call the methods directly.
package throwctx

import (
	"sync"
	"sync/atomic"
)

// Hub captures ambient context at raise sites and merges it back at log time.
// All methods are safe for concurrent use.
type Hub struct {
	opts  options
	store *store
}

// NewHub builds an independent Hub.
func NewHub(opts ...Option) *Hub {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	h := &Hub{opts: o, store: newStore()}
	h.store.onEvict = func() { h.observe(OutcomeEvicted) }
	return h
}

var (
	installOnce sync.Once
	installed   atomic.Pointer[Hub]
)

// EnsureInitialized installs the process-wide Hub on first call and returns
// it. Later calls are no-ops that return the same Hub; their options are
// ignored. Safe to call from many goroutines and many init sites.
func EnsureInitialized(opts ...Option) *Hub {
	installOnce.Do(func() {
		installed.Store(NewHub(opts...))
	})
	return installed.Load()
}

// Default returns the installed Hub, or nil before EnsureInitialized.
func Default() *Hub {
	return installed.Load()
}

// Len reports how many error instances currently hold a snapshot.
func (h *Hub) Len() int {
	if h == nil {
		return 0
	}
	return h.store.Len()
}

// SnapshotOf returns the snapshot captured for err's identity, if any.
func (h *Hub) SnapshotOf(err error) (*Snapshot, bool) {
	if h == nil {
		return nil, false
	}
	id, ptr, ok := identityOf(err)
	if !ok {
		return nil, false
	}
	return h.store.get(id, ptr)
}

// Captured reports whether err's identity holds a snapshot.
func (h *Hub) Captured(err error) bool {
	if h == nil {
		return false
	}
	id, ptr, ok := identityOf(err)
	return ok && h.store.contains(id, ptr)
}

func (h *Hub) observe(o Outcome) {
	for _, ob := range h.opts.observers {
		func() {
			defer func() { _ = recover() }()
			ob(o)
		}()
	}
}
