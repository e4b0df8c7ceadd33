package library

import (
	"fmt"
	"sort"

	"blocks/internal/code"
)

// ClassSpec is a library class with its methods defined inline.
type ClassSpec struct {
	Name    code.ClassName
	Super   code.ClassName
	Methods map[string]*code.Func
}

// Library bundles built-in classes and functions. Asts and Blocks hold the
// bodies of any AST-backed methods and are merged verbatim.
type Library struct {
	Name      string
	Classes   []ClassSpec
	Functions map[code.FuncID]*code.Func
	Asts      map[code.AstID]code.Ast
	Blocks    map[code.BlockID]code.Block
}

// Load merges libs into c. Standalone functions keep their IDs; every class
// method gets a freshly minted FuncID, so loading twice yields new IDs.
// Nothing is validated: a missing superclass only fails at method lookup.
func Load(c *code.Code, libs ...Library) {
	for _, lib := range libs {
		for id, ast := range lib.Asts {
			c.Asts[id] = append(code.Ast(nil), ast...)
		}
		for id, blk := range lib.Blocks {
			c.Blocks[id] = code.CloneBlock(blk)
		}
		for id, fn := range lib.Functions {
			c.Functions[id] = fn
		}
		for _, cls := range lib.Classes {
			methods := make(map[string]code.FuncID, len(cls.Methods))
			for _, name := range methodNames(cls.Methods) {
				id := mintFuncID(c, lib.Name, cls.Name, name)
				c.Functions[id] = cls.Methods[name]
				methods[name] = id
			}
			c.Classes[cls.Name] = &code.ClassDef{Name: cls.Name, Super: cls.Super, Methods: methods}
		}
	}
}

func mintFuncID(c *code.Code, lib string, class code.ClassName, method string) code.FuncID {
	base := fmt.Sprintf("%s:%s.%s", lib, class, method)
	id := code.FuncID(base)
	for n := 2; ; n++ {
		if _, taken := c.Functions[id]; !taken {
			return id
		}
		id = code.FuncID(fmt.Sprintf("%s#%d", base, n))
	}
}

func methodNames(m map[string]*code.Func) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FromProgram turns a program into a library: its classes become inline
// class specs, other functions stay standalone. Main is not carried over.
func FromProgram(name string, p *code.Program) Library {
	lib := Library{
		Name:      name,
		Functions: map[code.FuncID]*code.Func{},
		Asts:      map[code.AstID]code.Ast{},
		Blocks:    map[code.BlockID]code.Block{},
	}
	methodFuncs := map[code.FuncID]bool{}
	for _, className := range code.SortedClassNames(&p.Code) {
		cls := p.Classes[className]
		spec := ClassSpec{Name: cls.Name, Super: cls.Super, Methods: map[string]*code.Func{}}
		for m, id := range cls.Methods {
			if fn, ok := p.Functions[id]; ok {
				spec.Methods[m] = fn
				methodFuncs[id] = true
			}
		}
		lib.Classes = append(lib.Classes, spec)
	}
	for id, fn := range p.Functions {
		if !methodFuncs[id] {
			lib.Functions[id] = fn
		}
	}
	for id, ast := range p.Asts {
		if id != code.MainAst {
			lib.Asts[id] = ast
		}
	}
	for id, blk := range p.Blocks {
		lib.Blocks[id] = blk
	}
	return lib
}
