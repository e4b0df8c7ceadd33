package code

import (
	"sort"

	"blocks/internal/object"
)

type (
	ClassName string
	AstID     string
	FuncID    string
	BlockID   string
)

const (
	MainAst AstID = "Main"

	ConstructorMethod = "Constructor"
	DefaultsMethod    = "Defaults"
	SelfArg           = "Self"
)

// ClassDef is a named class. Super is resolved by name at lookup time and
// may name a class that does not exist.
type ClassDef struct {
	Name    ClassName
	Super   ClassName
	Methods map[string]FuncID
}

type FuncKind int

const (
	FuncAST FuncKind = iota
	FuncForeign
)

func (k FuncKind) String() string {
	if k == FuncForeign {
		return "foreign"
	}
	return "ast"
}

// MethodCaller is the only evaluator capability handed to foreign functions:
// it invokes a method on an object that already exists.
type MethodCaller func(recv object.Obj, method string, args object.Args) (object.Obj, error)

type Foreign func(args object.Args, call MethodCaller) (object.Obj, error)

type Func struct {
	Kind    FuncKind
	Ast     AstID
	Execute Foreign
}

func ASTFunc(ast AstID) *Func {
	return &Func{Kind: FuncAST, Ast: ast}
}

func ForeignFunc(fn Foreign) *Func {
	return &Func{Kind: FuncForeign, Execute: fn}
}

// Ast is an ordered sequence of blocks; the unit of sequential execution and
// of scope.
type Ast []BlockID

type Code struct {
	Classes   map[ClassName]*ClassDef
	Asts      map[AstID]Ast
	Functions map[FuncID]*Func
	Blocks    map[BlockID]Block
}

func NewCode() Code {
	return Code{
		Classes:   map[ClassName]*ClassDef{},
		Asts:      map[AstID]Ast{},
		Functions: map[FuncID]*Func{},
		Blocks:    map[BlockID]Block{},
	}
}

// Program is Code with an entry point: the AST keyed MainAst.
type Program struct {
	Name string
	Code
}

func NewProgram(name string) *Program {
	return &Program{Name: name, Code: NewCode()}
}

func (p *Program) HasMain() bool {
	_, ok := p.Asts[MainAst]
	return ok
}

// Clone deep-copies the program. Foreign callbacks are shared.
func (p *Program) Clone() *Program {
	out := &Program{Name: p.Name, Code: NewCode()}
	for name, cls := range p.Classes {
		methods := make(map[string]FuncID, len(cls.Methods))
		for m, id := range cls.Methods {
			methods[m] = id
		}
		out.Classes[name] = &ClassDef{Name: cls.Name, Super: cls.Super, Methods: methods}
	}
	for id, ast := range p.Asts {
		out.Asts[id] = append(Ast(nil), ast...)
	}
	for id, fn := range p.Functions {
		cp := *fn
		out.Functions[id] = &cp
	}
	for id, b := range p.Blocks {
		out.Blocks[id] = b.clone()
	}
	return out
}

func SortedClassNames(c *Code) []ClassName {
	out := make([]ClassName, 0, len(c.Classes))
	for name := range c.Classes {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func SortedFuncIDs(c *Code) []FuncID {
	out := make([]FuncID, 0, len(c.Functions))
	for id := range c.Functions {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func SortedAstIDs(c *Code) []AstID {
	out := make([]AstID, 0, len(c.Asts))
	for id := range c.Asts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func SortedBlockIDs(c *Code) []BlockID {
	out := make([]BlockID, 0, len(c.Blocks))
	for id := range c.Blocks {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
