package library

import (
	"io"

	"blocks/internal/code"
	"blocks/internal/runtimeio"
)

const (
	ObjectClass  code.ClassName = "Object"
	BooleanClass code.ClassName = "Boolean"
	StringClass  code.ClassName = "String"
	ArrayClass   code.ClassName = "Array"
	IntegerClass                = "Integer"

	integerValue = "Value"
)

// Host is what the standard library needs from its environment.
type Host struct {
	Out   io.Writer
	Input *runtimeio.LineReader
}

// Standard is the library every interpreter loads: the root Object class,
// the classes backing Boolean, String and Array values, Integer, and the
// Print, Input and Not functions.
func Standard(host Host) Library {
	if host.Out == nil {
		host.Out = io.Discard
	}
	return Library{
		Name: "std",
		Classes: []ClassSpec{
			objectClass(),
			booleanClass(),
			stringClass(),
			arrayClass(),
			integerClass(),
		},
		Functions: map[code.FuncID]*code.Func{
			"Print": code.ForeignFunc(printFunc(host)),
			"Input": code.ForeignFunc(inputFunc(host)),
			"Not":   code.ForeignFunc(notFunc),
		},
	}
}

// ByName resolves the optional libraries a document or manifest can ask for.
// The standard library is not listed: it is always loaded.
func ByName(name string) (Library, bool) {
	switch name {
	case "scene":
		return Scene(), true
	}
	return Library{}, false
}
