package code

import "sort"

type Kind string

const (
	KindBoolean   Kind = "boolean"
	KindString    Kind = "string"
	KindArray     Kind = "array"
	KindConstruct Kind = "construct"
	KindSet       Kind = "set"
	KindGet       Kind = "get"
	KindCall      Kind = "call"
	KindMethod    Kind = "method"
	KindReturn    Kind = "return"
	KindIf        Kind = "if"
	KindWhile     Kind = "while"
	KindBreak     Kind = "break"
	KindDefer     Kind = "defer"
)

// Block is one AST node. The set of implementations is closed.
type Block interface {
	Kind() Kind
	clone() Block
}

// Args maps keyword argument names to the blocks producing their values.
type Args map[string]BlockID

// Names returns the argument names in evaluation order.
func (a Args) Names() []string {
	out := make([]string, 0, len(a))
	for name := range a {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (a Args) copy() Args {
	if a == nil {
		return nil
	}
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

type BooleanLiteral struct{ Value bool }

func (*BooleanLiteral) Kind() Kind     { return KindBoolean }
func (b *BooleanLiteral) clone() Block { cp := *b; return &cp }

type StringLiteral struct{ Value string }

func (*StringLiteral) Kind() Kind     { return KindString }
func (s *StringLiteral) clone() Block { cp := *s; return &cp }

type ArrayLiteral struct{ Elements []BlockID }

func (*ArrayLiteral) Kind() Kind { return KindArray }
func (a *ArrayLiteral) clone() Block {
	return &ArrayLiteral{Elements: append([]BlockID(nil), a.Elements...)}
}

type Construct struct {
	Class ClassName
	Args  Args
}

func (*Construct) Kind() Kind { return KindConstruct }
func (c *Construct) clone() Block {
	return &Construct{Class: c.Class, Args: c.Args.copy()}
}

type Set struct {
	Var   VariableRef
	Value BlockID
}

func (*Set) Kind() Kind     { return KindSet }
func (s *Set) clone() Block { return &Set{Var: s.Var.Clone(), Value: s.Value} }

type Get struct{ Var VariableRef }

func (*Get) Kind() Kind     { return KindGet }
func (g *Get) clone() Block { return &Get{Var: g.Var.Clone()} }

type FunctionCall struct {
	Func FuncID
	Args Args
}

func (*FunctionCall) Kind() Kind { return KindCall }
func (f *FunctionCall) clone() Block {
	return &FunctionCall{Func: f.Func, Args: f.Args.copy()}
}

type MethodCall struct {
	Receiver BlockID
	Method   string
	Args     Args
}

func (*MethodCall) Kind() Kind { return KindMethod }
func (m *MethodCall) clone() Block {
	return &MethodCall{Receiver: m.Receiver, Method: m.Method, Args: m.Args.copy()}
}

// Return yields a return interrupt. An empty Value means no value.
type Return struct{ Value BlockID }

func (*Return) Kind() Kind     { return KindReturn }
func (r *Return) clone() Block { cp := *r; return &cp }

type If struct {
	Cond BlockID
	Then AstID
	Else AstID // optional
}

func (*If) Kind() Kind     { return KindIf }
func (i *If) clone() Block { cp := *i; return &cp }

type While struct {
	Cond BlockID
	Body AstID
}

func (*While) Kind() Kind     { return KindWhile }
func (w *While) clone() Block { cp := *w; return &cp }

type Break struct{}

func (*Break) Kind() Kind   { return KindBreak }
func (*Break) clone() Block { return &Break{} }

// Defer is part of the authored vocabulary but has no evaluation rule.
type Defer struct{ Body AstID }

func (*Defer) Kind() Kind     { return KindDefer }
func (d *Defer) clone() Block { cp := *d; return &cp }

// CloneBlock deep-copies a block.
func CloneBlock(b Block) Block {
	if b == nil {
		return nil
	}
	return b.clone()
}

// Children lists the blocks a block refers to directly, in evaluation order.
func Children(b Block) []BlockID {
	switch n := b.(type) {
	case *ArrayLiteral:
		return append([]BlockID(nil), n.Elements...)
	case *Construct:
		return argBlocks(n.Args)
	case *Set:
		return []BlockID{n.Value}
	case *FunctionCall:
		return argBlocks(n.Args)
	case *MethodCall:
		return append([]BlockID{n.Receiver}, argBlocks(n.Args)...)
	case *Return:
		if n.Value != "" {
			return []BlockID{n.Value}
		}
	case *If:
		return []BlockID{n.Cond}
	case *While:
		return []BlockID{n.Cond}
	}
	return nil
}

// NestedAsts lists the ASTs a control-flow block owns.
func NestedAsts(b Block) []AstID {
	switch n := b.(type) {
	case *If:
		if n.Else != "" {
			return []AstID{n.Then, n.Else}
		}
		return []AstID{n.Then}
	case *While:
		return []AstID{n.Body}
	case *Defer:
		return []AstID{n.Body}
	}
	return nil
}

func argBlocks(args Args) []BlockID {
	out := make([]BlockID, 0, len(args))
	for _, name := range args.Names() {
		out = append(out, args[name])
	}
	return out
}
