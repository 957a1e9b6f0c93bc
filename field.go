// field.go — key/value fields that make up context frames and snapshots.
//
// Design:
//   • Internal representation: append-only []Field (deterministic order).
//   • Builders are non-mutating: return NEW slices (no aliasing).
//   • Public view for callers: copy-on-read Properties (map[string]any).
//
// Rationale:
//   • Go map iteration order is unspecified; a slice keeps insertion order so
//     snapshots format and bound deterministically.
//   • A frame is parsed once at push time and never touched again, so views and
//     snapshots may share its slice without copying.
package throwctx

import "sort"

// Field is a single contextual key/value pair.
// Keys SHOULD be snake_case or dotted (e.g. "order_id", "grpc.method"); the
// package does not enforce a convention.
type Field struct {
	Key string
	Val any
}

// Properties is the merged, map-shaped view handed to logging pipelines.
// Every Properties value returned by this package is a fresh map the caller
// may mutate freely.
type Properties map[string]any

// Keys returns the property keys in ascending order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fields is the internal immutable representation of a frame or snapshot.
// Treat it as append-only; never modify elements in place once published.
type fields []Field

// emptyFields is a canonical empty field set.
var emptyFields = make(fields, 0)

// fieldsFromKV parses a variadic list of key/value arguments.
//
// Rules:
//   • Pairs are read left-to-right as (key, value).
//   • Keys MUST be strings; a non-string key drops the ENTIRE pair (key and its
//     following value) so later pairs stay aligned.
//   • A trailing key with no value becomes (key, nil).
//   • A Field value in key position is taken as-is (no value consumed).
func fieldsFromKV(kv ...any) fields {
	if len(kv) == 0 {
		return emptyFields
	}
	out := make(fields, 0, len(kv)/2+1)
	for i := 0; i < len(kv); {
		switch k := kv[i].(type) {
		case Field:
			out = append(out, k)
			i++
			continue
		case string:
			var v any
			if i+1 < len(kv) {
				v = kv[i+1]
				i += 2
			} else {
				i++
			}
			out = append(out, Field{Key: k, Val: v})
		default:
			if i+1 < len(kv) {
				i += 2
			} else {
				i++
			}
		}
	}
	if len(out) == 0 {
		return emptyFields
	}
	return out
}

// fieldsFromMap converts a map into fields ordered by key.
func fieldsFromMap(m map[string]any) fields {
	if len(m) == 0 {
		return emptyFields
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(fields, 0, len(keys))
	for _, k := range keys {
		out = append(out, Field{Key: k, Val: m[k]})
	}
	return out
}

// dedupe collapses duplicate keys: the LAST occurrence wins and keeps its own
// position, so an overridden key moves to where its winning value was pushed.
// Input is not modified.
func dedupe(fs fields) fields {
	if len(fs) < 2 {
		return fs
	}
	seen := make(map[string]struct{}, len(fs))
	rev := make(fields, 0, len(fs))
	for i := len(fs) - 1; i >= 0; i-- {
		if _, dup := seen[fs[i].Key]; dup {
			continue
		}
		seen[fs[i].Key] = struct{}{}
		rev = append(rev, fs[i])
	}
	out := make(fields, len(rev))
	for i, f := range rev {
		out[len(rev)-1-i] = f
	}
	return out
}

// bound keeps the newest limit fields (the tail). limit <= 0 means unbounded.
func bound(fs fields, limit int) fields {
	if limit <= 0 || len(fs) <= limit {
		return fs
	}
	keep := make(fields, limit)
	copy(keep, fs[len(fs)-limit:])
	return keep
}

// toProperties creates a NEW map from fields (copy-on-read).
// Later duplicate keys overwrite earlier ones (last-write-wins).
func (fs fields) toProperties() Properties {
	p := make(Properties, len(fs))
	for _, f := range fs {
		p[f.Key] = f.Val
	}
	return p
}
