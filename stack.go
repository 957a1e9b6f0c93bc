// stack.go — raise-site capture.
//
// Design goals:
//   - Use runtime.Callers + runtime.CallersFrames so inlined frames resolve to
//     the right function.
//   - Only one frame is needed (where Raise was called), so the PC buffer is tiny
//     and nothing is allocated unless raise-site capture is switched on.
package throwctx

import (
	"fmt"
	"runtime"
)

// Frame is a single call site.
type Frame struct {
	PC       uintptr // program counter of the call return
	File     string  // absolute file path as reported by the runtime
	Line     int
	Function string // fully-qualified function name
}

// String renders "function file:line".
func (f Frame) String() string {
	return fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line)
}

// callerFrame resolves the frame 'skip' levels above its caller.
//
// Skip model: 0 = the function that called callerFrame. runtime.Callers is
// told skip+2 to step over itself and callerFrame.
func callerFrame(skip int) Frame {
	var pc [1]uintptr
	if runtime.Callers(skip+2, pc[:]) == 0 {
		return Frame{}
	}
	fr, _ := runtime.CallersFrames(pc[:]).Next()
	return Frame{
		PC:       fr.PC,
		File:     fr.File,
		Line:     fr.Line,
		Function: fr.Function,
	}
}
