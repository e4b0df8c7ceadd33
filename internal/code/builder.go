package code

import (
	"fmt"
	"strconv"
)

// Builder assembles a Program with generated IDs. It is used by the built-in
// libraries and by tests; documents are decoded by the module package.
type Builder struct {
	prog   *Program
	prefix string
	blocks int
	asts   int
	funcs  int
}

func NewBuilder(name string) *Builder {
	return &Builder{prog: NewProgram(name)}
}

// NewPrefixedBuilder generates IDs starting with prefix, so the result can be
// merged into other code without collisions.
func NewPrefixedBuilder(name, prefix string) *Builder {
	return &Builder{prog: NewProgram(name), prefix: prefix}
}

func (b *Builder) Program() *Program { return b.prog }

func (b *Builder) add(blk Block) BlockID {
	b.blocks++
	id := BlockID(fmt.Sprintf("%sb%d", b.prefix, b.blocks))
	b.prog.Blocks[id] = blk
	return id
}

func (b *Builder) Bool(v bool) BlockID  { return b.add(&BooleanLiteral{Value: v}) }
func (b *Builder) Str(v string) BlockID { return b.add(&StringLiteral{Value: v}) }

func (b *Builder) Array(elems ...BlockID) BlockID {
	return b.add(&ArrayLiteral{Elements: elems})
}

func (b *Builder) Construct(class ClassName, args Args) BlockID {
	return b.add(&Construct{Class: class, Args: args})
}

// Int constructs a standard library Integer from its decimal text.
func (b *Builder) Int(n int64) BlockID {
	return b.Construct("Integer", Args{"Value": b.Str(strconv.FormatInt(n, 10))})
}

func (b *Builder) Set(ref string, value BlockID) BlockID {
	return b.add(&Set{Var: MustRef(ref), Value: value})
}

func (b *Builder) Get(ref string) BlockID {
	return b.add(&Get{Var: MustRef(ref)})
}

func (b *Builder) Call(fn FuncID, args Args) BlockID {
	return b.add(&FunctionCall{Func: fn, Args: args})
}

func (b *Builder) Method(recv BlockID, name string, args Args) BlockID {
	return b.add(&MethodCall{Receiver: recv, Method: name, Args: args})
}

func (b *Builder) Return(value BlockID) BlockID { return b.add(&Return{Value: value}) }
func (b *Builder) ReturnNothing() BlockID       { return b.add(&Return{}) }
func (b *Builder) Break() BlockID               { return b.add(&Break{}) }
func (b *Builder) Defer(body AstID) BlockID     { return b.add(&Defer{Body: body}) }

func (b *Builder) If(cond BlockID, then, els AstID) BlockID {
	return b.add(&If{Cond: cond, Then: then, Else: els})
}

func (b *Builder) While(cond BlockID, body AstID) BlockID {
	return b.add(&While{Cond: cond, Body: body})
}

// Ast registers a new AST with a generated ID.
func (b *Builder) Ast(blocks ...BlockID) AstID {
	b.asts++
	id := AstID(fmt.Sprintf("%sa%d", b.prefix, b.asts))
	b.prog.Asts[id] = Ast(blocks)
	return id
}

func (b *Builder) Main(blocks ...BlockID) {
	b.prog.Asts[MainAst] = Ast(blocks)
}

// Func registers an AST function under id with a body made of blocks.
func (b *Builder) Func(id FuncID, blocks ...BlockID) FuncID {
	b.prog.Functions[id] = ASTFunc(b.Ast(blocks...))
	return id
}

func (b *Builder) Foreign(id FuncID, fn Foreign) FuncID {
	b.prog.Functions[id] = ForeignFunc(fn)
	return id
}

func (b *Builder) Class(name, super ClassName) *ClassBuilder {
	cls, ok := b.prog.Classes[name]
	if !ok {
		cls = &ClassDef{Name: name, Methods: map[string]FuncID{}}
		b.prog.Classes[name] = cls
	}
	cls.Super = super
	return &ClassBuilder{b: b, cls: cls}
}

type ClassBuilder struct {
	b   *Builder
	cls *ClassDef
}

// Method adds an AST method whose body is blocks.
func (c *ClassBuilder) Method(name string, blocks ...BlockID) *ClassBuilder {
	c.b.funcs++
	id := FuncID(fmt.Sprintf("%s%s.%s#%d", c.b.prefix, c.cls.Name, name, c.b.funcs))
	c.b.Func(id, blocks...)
	c.cls.Methods[name] = id
	return c
}

func (c *ClassBuilder) Foreign(name string, fn Foreign) *ClassBuilder {
	c.b.funcs++
	id := FuncID(fmt.Sprintf("%s%s.%s#%d", c.b.prefix, c.cls.Name, name, c.b.funcs))
	c.b.Foreign(id, fn)
	c.cls.Methods[name] = id
	return c
}
