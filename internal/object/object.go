package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

type Type string

const (
	BOOLEAN_OBJ      Type = "BOOLEAN"
	STRING_OBJ       Type = "STRING"
	ARRAY_OBJ        Type = "ARRAY"
	INSTANCE_OBJ     Type = "INSTANCE"
	RETURN_VALUE_OBJ Type = "RETURN_VALUE"
	BREAK_OBJ        Type = "BREAK"
)

// Object is anything a block can yield: a runtime value or an interrupt.
// A nil Object means the block produced no value.
type Object interface {
	Type() Type
	Inspect() string
}

// Obj is a runtime value: *Boolean, *String, *Array or *Instance.
type Obj interface {
	Object
	// ClassName is the class used for method dispatch.
	ClassName() string
	obj()
}

// Interrupt is a non-local control signal: *ReturnValue or *Break.
type Interrupt interface {
	Object
	interrupt()
}

// Args are keyword arguments passed to functions and methods.
type Args map[string]Obj

func (a Args) Copy() Args {
	out := make(Args, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (a Args) Names() []string {
	out := make([]string, 0, len(a))
	for k := range a {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Boolean struct{ Value bool }

func (*Boolean) Type() Type        { return BOOLEAN_OBJ }
func (*Boolean) ClassName() string { return "Boolean" }
func (*Boolean) obj()              {}
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type String struct{ Value string }

func (*String) Type() Type        { return STRING_OBJ }
func (*String) ClassName() string { return "String" }
func (*String) obj()              {}
func (s *String) Inspect() string { return strconv.Quote(s.Value) }

type Array struct {
	Elements []Obj
}

func (*Array) Type() Type        { return ARRAY_OBJ }
func (*Array) ClassName() string { return "Array" }
func (*Array) obj()              {}
func (a *Array) Inspect() string {
	var out bytes.Buffer
	inspectInto(&out, a, map[Obj]bool{})
	return out.String()
}

// Instance is a user-class object. Attributes is the only mutable aggregate
// addressed by attribute blocks.
type Instance struct {
	Class      string
	Attributes map[string]Obj
}

func NewInstance(class string) *Instance {
	return &Instance{Class: class, Attributes: map[string]Obj{}}
}

func (*Instance) Type() Type          { return INSTANCE_OBJ }
func (i *Instance) ClassName() string { return i.Class }
func (*Instance) obj()                {}
func (i *Instance) Inspect() string {
	var out bytes.Buffer
	inspectInto(&out, i, map[Obj]bool{})
	return out.String()
}

func inspectInto(out *bytes.Buffer, o Obj, seen map[Obj]bool) {
	switch v := o.(type) {
	case *Array:
		if seen[v] {
			out.WriteString("[...]")
			return
		}
		seen[v] = true
		defer delete(seen, v)
		out.WriteString("[")
		for i, el := range v.Elements {
			if i > 0 {
				out.WriteString(", ")
			}
			inspectInto(out, el, seen)
		}
		out.WriteString("]")
	case *Instance:
		if seen[v] {
			fmt.Fprintf(out, "%s{...}", v.Class)
			return
		}
		seen[v] = true
		defer delete(seen, v)
		out.WriteString(v.Class)
		out.WriteString("{")
		keys := make([]string, 0, len(v.Attributes))
		for k := range v.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(k)
			out.WriteString(": ")
			inspectInto(out, v.Attributes[k], seen)
		}
		out.WriteString("}")
	case nil:
		out.WriteString("<nil>")
	default:
		out.WriteString(v.Inspect())
	}
}

// ReturnValue carries an optional value up to the nearest function boundary.
type ReturnValue struct{ Value Obj }

func (*ReturnValue) Type() Type { return RETURN_VALUE_OBJ }
func (*ReturnValue) interrupt() {}
func (rv *ReturnValue) Inspect() string {
	if rv.Value == nil {
		return "return"
	}
	return "return " + rv.Value.Inspect()
}

type Break struct{}

func (*Break) Type() Type      { return BREAK_OBJ }
func (*Break) Inspect() string { return "break" }
func (*Break) interrupt()      {}
