package runtime

import (
	"fmt"
	"strings"
)

// RuntimeError is returned by Context.Run (and every buffer primitive) for
// every runtime error kind: calling a non-function, arithmetic on a
// non-number, integer ops on non-integers, divide/mod by zero, indexing a
// non-container, non-integer array key, reentrant Run, buffer index out of
// range or wrong type, buffer overflow, and executing YIELD. It records the
// call stack active when the error was raised, one FrameInfo per active
// CallInfo.
type RuntimeError struct {
	Message string
	Frames  []FrameInfo
}

// FrameInfo is a snapshot of one CallInfo at the point an error was raised.
type FrameInfo struct {
	FunctionLevel int
	ProgramCounter int
}

func (e *RuntimeError) Error() string {
	if len(e.Frames) == 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Frames {
		fmt.Fprintf(&b, "\n\tat function level %d, pc %d", f.FunctionLevel, f.ProgramCounter)
	}
	return b.String()
}

func runtimeErrorf(frames []FrameInfo, format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Frames: frames}
}
