package object

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// MissingEntity: a referenced block, AST, function, class, variable or
	// attribute does not exist.
	MissingEntity ErrorKind = iota + 1
	// TypeMismatch: a value is not of the variant an operation requires.
	TypeMismatch
	// MissingArgument: a required argument of a native function is absent.
	MissingArgument
	// UserUndefinedMethod: method lookup exhausted the superclass chain.
	UserUndefinedMethod
	// Unsupported: the block kind has no evaluation rule.
	Unsupported
	// LimitExceeded: an opt-in recursion or memory limit was hit.
	LimitExceeded
)

var kindNames = map[ErrorKind]string{
	MissingEntity:       "MissingEntity",
	TypeMismatch:        "TypeMismatch",
	MissingArgument:     "MissingArgument",
	UserUndefinedMethod: "UserUndefinedMethod",
	Unsupported:         "Unsupported",
	LimitExceeded:       "LimitExceeded",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func ParseErrorKind(s string) (ErrorKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Error is an evaluation failure. It aborts the whole evaluation unit.
type Error struct {
	Kind    ErrorKind
	Message string
	Stack   string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Is matches any *Error of the same kind, so sentinel values built with
// Errorf(kind, "") work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
