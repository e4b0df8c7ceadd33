package evaluator

import (
	"errors"
	"fmt"
	"strings"

	"blocks/internal/code"
	"blocks/internal/object"
)

const mainFrame = "<main>"

type stackFrame struct {
	Func  string
	Block code.BlockID
}

func (in *Interpreter) top() *stackFrame {
	return &in.stack[len(in.stack)-1]
}

// at marks ref as the block being evaluated in the current frame and returns
// a func restoring the previous mark.
func (in *Interpreter) at(ref code.BlockID) func() {
	frame := in.top()
	prev := frame.Block
	frame.Block = ref
	depth := len(in.stack)
	return func() {
		if len(in.stack) == depth {
			in.top().Block = prev
		}
	}
}

func (in *Interpreter) enter(label string) error {
	if err := in.depth.Enter(); err != nil {
		return in.errorf(object.LimitExceeded, "%s", err.Error())
	}
	in.stack = append(in.stack, stackFrame{Func: label})
	return nil
}

func (in *Interpreter) leave() {
	in.stack = in.stack[:len(in.stack)-1]
	in.depth.Leave()
}

func (in *Interpreter) errorf(kind object.ErrorKind, format string, args ...any) error {
	e := object.Errorf(kind, format, args...)
	e.Stack = formatStackTrace(e.Error(), in.stack)
	return e
}

// traced attaches the current call stack to errors returned by foreign
// functions.
func (in *Interpreter) traced(err error) error {
	var e *object.Error
	if errors.As(err, &e) && e.Stack == "" {
		e.Stack = formatStackTrace(e.Error(), in.stack)
	}
	return err
}

func formatStackTrace(message string, frames []stackFrame) string {
	var out strings.Builder
	out.WriteString("error: " + message + "\nstack trace:\n")
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		name := f.Func
		if name == "" {
			name = "<anon>"
		}
		block := string(f.Block)
		if block == "" {
			block = "<entry>"
		}
		fmt.Fprintf(&out, "  at %s (block %s)\n", name, block)
	}
	return out.String()
}
