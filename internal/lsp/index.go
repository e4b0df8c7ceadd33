package lsp

import (
	"fmt"
	"sort"

	"blocks/internal/code"
	"blocks/internal/module"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

type DocIndex struct {
	Defs    map[module.Entity]protocol.Location
	Symbols []protocol.DocumentSymbol
}

func emptyIndex() *DocIndex {
	return &DocIndex{Defs: map[module.Entity]protocol.Location{}, Symbols: []protocol.DocumentSymbol{}}
}

// BuildIndex records where every class, function, AST and block of doc is
// defined.
func BuildIndex(uri string, doc *module.Document) *DocIndex {
	ix := emptyIndex()
	if doc == nil {
		return ix
	}

	type sym struct {
		pos module.Pos
		ds  protocol.DocumentSymbol
	}
	var syms []sym
	add := func(kind module.EntityKind, id string, sk protocol.SymbolKind, detail string, children []protocol.DocumentSymbol) {
		pos, ok := doc.Pos(kind, id)
		if !ok {
			return
		}
		r := nameRange(pos, id)
		ix.Defs[module.Entity{Kind: kind, ID: id}] = protocol.Location{URI: protocol.DocumentUri(uri), Range: r}
		ds := protocol.DocumentSymbol{
			Name:           id,
			Kind:           sk,
			Range:          r,
			SelectionRange: r,
			Children:       children,
		}
		if detail != "" {
			ds.Detail = &detail
		}
		syms = append(syms, sym{pos: pos, ds: ds})
	}

	p := doc.Program
	for _, name := range code.SortedClassNames(&p.Code) {
		cls := p.Classes[name]
		pos, _ := doc.Pos(module.EntityClass, string(name))
		var methods []protocol.DocumentSymbol
		for _, m := range sortedMethods(cls) {
			detail := string(cls.Methods[m])
			r := nameRange(pos, string(name))
			methods = append(methods, protocol.DocumentSymbol{
				Name: m, Detail: &detail, Kind: protocol.SymbolKindMethod, Range: r, SelectionRange: r,
			})
		}
		detail := ""
		if cls.Super != "" {
			detail = "< " + string(cls.Super)
		}
		add(module.EntityClass, string(name), protocol.SymbolKindClass, detail, methods)
	}
	for _, id := range code.SortedFuncIDs(&p.Code) {
		add(module.EntityFunction, string(id), protocol.SymbolKindFunction, "ast "+string(p.Functions[id].Ast), nil)
	}
	for _, id := range code.SortedAstIDs(&p.Code) {
		add(module.EntityAst, string(id), protocol.SymbolKindArray, fmt.Sprintf("%d blocks", len(p.Asts[id])), nil)
	}
	for _, id := range code.SortedBlockIDs(&p.Code) {
		add(module.EntityBlock, string(id), protocol.SymbolKindObject, code.Describe(p.Blocks[id]), nil)
	}

	sort.SliceStable(syms, func(i, j int) bool {
		if syms[i].pos.Line != syms[j].pos.Line {
			return syms[i].pos.Line < syms[j].pos.Line
		}
		return syms[i].pos.Col < syms[j].pos.Col
	})
	for _, s := range syms {
		ix.Symbols = append(ix.Symbols, s.ds)
	}
	return ix
}

// Lookup finds the definition of id, trying blocks first since they are the
// most common reference.
func (ix *DocIndex) Lookup(id string) (module.Entity, protocol.Location, bool) {
	for _, kind := range []module.EntityKind{module.EntityBlock, module.EntityAst, module.EntityFunction, module.EntityClass} {
		e := module.Entity{Kind: kind, ID: id}
		if loc, ok := ix.Defs[e]; ok {
			return e, loc, true
		}
	}
	return module.Entity{}, protocol.Location{}, false
}

func sortedMethods(cls *code.ClassDef) []string {
	out := make([]string, 0, len(cls.Methods))
	for m := range cls.Methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func nameRange(pos module.Pos, name string) protocol.Range {
	start := lspPosition(pos.Line, pos.Col)
	end := start
	end.Character += uint32(max(1, utf16Len(name)))
	return protocol.Range{Start: start, End: end}
}
