// walk.go — traversal of error graphs for cause-chain merging.
//
// Design notes (Go ≥1.20):
//   - errors.Join returns an error with Unwrap() []error; errors.Unwrap only calls
//     Unwrap() error, so correct traversal must handle BOTH forms.
//   - Cycles can only close through pointers, so only pointer-typed nodes are
//     tracked in the seen set. Using map[error] as a seen set would panic on
//     dynamic types that are not comparable.
//   - Depth is capped as a guard against runaway graphs.
package throwctx

import "reflect"

type singleUnwrapper interface{ Unwrap() error }
type multiUnwrapper interface{ Unwrap() []error }

const maxWalkDepth = 1 << 12

// markSeen returns false if err is a pointer already visited.
// Non-pointer dynamics are always treated as new.
func markSeen(err error, seen map[uintptr]struct{}) bool {
	rv := reflect.ValueOf(err)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return true
	}
	p := rv.Pointer()
	if _, dup := seen[p]; dup {
		return false
	}
	seen[p] = struct{}{}
	return true
}

// Walk traverses an error graph depth-first and calls visit for each distinct
// node in PRE-ORDER (visit before children, joined branches left to right).
// If visit returns false, traversal stops. It is safe on cycles; nil is a no-op.
func Walk(err error, visit func(error) bool) {
	if err == nil || visit == nil {
		return
	}
	seen := make(map[uintptr]struct{}, 8)
	stack := make([]error, 0, 8)

	stack = append(stack, err)
	_ = markSeen(err, seen)

	for steps := 0; len(stack) > 0 && steps < maxWalkDepth; steps++ {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(cur) {
			return
		}

		switch u := cur.(type) {
		case multiUnwrapper:
			kids := u.Unwrap()
			for i := len(kids) - 1; i >= 0; i-- {
				if c := kids[i]; c != nil && markSeen(c, seen) {
					stack = append(stack, c)
				}
			}
		case singleUnwrapper:
			if c := u.Unwrap(); c != nil && markSeen(c, seen) {
				stack = append(stack, c)
			}
		}
	}
}
