// store.go — identity-keyed, weakly held snapshot store.
//
// Keys:
//   • The identity of an error is the address of its dynamic pointer value,
//     wrapped in a weak.Pointer. Two distinct instances with equal fields are
//     distinct keys; a weak pointer never aliases a later object that happens to
//     reuse a freed address.
//   • Errors whose dynamic type is not a pointer (string-backed, struct values,
//     maps, funcs) have no stable identity and are never stored. Neither do
//     pointers to zero-size types (&struct{}{}): they all alias one address.
//
// Lifetime:
//   • The store holds no strong reference to the error. runtime.AddCleanup
//     evicts the entry some time after the error becomes unreachable, so the live
//     entry count tracks reachable raised errors, not raise volume.
//   • Package-level errors allocated by the linker are never collected and keep
//     their entry for the life of the process.
//
// Concurrency:
//   • storeShards independent RWMutex-guarded maps selected by address.
//     setIfAbsent is an atomic check-and-set per shard (first capture wins);
//     replace is a compare-and-swap used only by rethrow fill.
//   • No enumeration is exposed; Len exists for observability only.
package throwctx

import (
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
	"weak"
)

const storeShards = 64

// identity is the weak, comparable key of an error instance.
type identity = weak.Pointer[byte]

// identityOf returns the weak identity of err and the strong pointer it was
// made from. ok is false when err is nil or has no pointer identity.
func identityOf(err error) (id identity, ptr *byte, ok bool) {
	if err == nil {
		return identity{}, nil, false
	}
	rv := reflect.ValueOf(err)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return identity{}, nil, false
	}
	// Every pointer to a zero-size value shares one runtime address.
	if rv.Type().Elem().Size() == 0 {
		return identity{}, nil, false
	}
	ptr = (*byte)(rv.UnsafePointer())
	return weak.Make(ptr), ptr, true
}

func shardOf(ptr *byte) int {
	// Heap objects are at least 8-byte aligned; drop the low bits before mixing.
	return int((uintptr(unsafe.Pointer(ptr)) >> 4) % storeShards)
}

type storeShard struct {
	mu sync.RWMutex
	m  map[identity]*Snapshot
}

type store struct {
	shards [storeShards]storeShard
	live   atomic.Int64
	// onEvict runs on the runtime cleanup goroutine after an entry is dropped.
	onEvict func()
}

func newStore() *store {
	s := &store{}
	for i := range s.shards {
		s.shards[i].m = make(map[identity]*Snapshot)
	}
	return s
}

// evictArg must not reference the error, or the cleanup would never run.
type evictArg struct {
	s     *store
	id    identity
	shard int
}

func evict(a evictArg) {
	sh := &a.s.shards[a.shard]
	sh.mu.Lock()
	_, ok := sh.m[a.id]
	delete(sh.m, a.id)
	sh.mu.Unlock()
	if !ok {
		return
	}
	a.s.live.Add(-1)
	if a.s.onEvict != nil {
		a.s.onEvict()
	}
}

// setIfAbsent stores snap for the error behind (id, ptr) unless an entry
// already exists. It reports whether snap was stored.
func (s *store) setIfAbsent(id identity, ptr *byte, snap *Snapshot) bool {
	idx := shardOf(ptr)
	sh := &s.shards[idx]
	sh.mu.Lock()
	if _, dup := sh.m[id]; dup {
		sh.mu.Unlock()
		return false
	}
	sh.m[id] = snap
	sh.mu.Unlock()
	s.live.Add(1)
	runtime.AddCleanup(ptr, evict, evictArg{s: s, id: id, shard: idx})
	return true
}

// replace swaps old for next only if old is still the stored snapshot.
func (s *store) replace(id identity, ptr *byte, old, next *Snapshot) bool {
	sh := &s.shards[shardOf(ptr)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if cur, ok := sh.m[id]; !ok || cur != old {
		return false
	}
	sh.m[id] = next
	return true
}

func (s *store) get(id identity, ptr *byte) (*Snapshot, bool) {
	sh := &s.shards[shardOf(ptr)]
	sh.mu.RLock()
	snap, ok := sh.m[id]
	sh.mu.RUnlock()
	return snap, ok
}

func (s *store) contains(id identity, ptr *byte) bool {
	_, ok := s.get(id, ptr)
	return ok
}

// Len returns the number of live entries.
func (s *store) Len() int {
	return int(s.live.Load())
}
