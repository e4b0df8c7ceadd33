package lsp

import (
	"fmt"
	"strings"

	"blocks/internal/code"
	"blocks/internal/module"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func DefinitionAt(a *Analysis, text string, pos protocol.Position) []protocol.Location {
	word, _, ok := WordAt(text, pos)
	if !ok || a == nil {
		return nil
	}
	if _, loc, ok := a.Index.Lookup(word); ok {
		return []protocol.Location{loc}
	}
	return nil
}

func HoverAt(a *Analysis, text string, pos protocol.Position) *protocol.Hover {
	word, r, ok := WordAt(text, pos)
	if !ok || a == nil || a.Doc == nil {
		return nil
	}
	e, _, ok := a.Index.Lookup(word)
	if !ok {
		return nil
	}
	body := describeEntity(a.Doc.Program, e)
	if body == "" {
		return nil
	}
	contents := protocol.MarkupContent{Kind: "markdown", Value: body}
	return &protocol.Hover{Contents: contents, Range: &r}
}

func describeEntity(p *code.Program, e module.Entity) string {
	switch e.Kind {
	case module.EntityBlock:
		blk, ok := p.Blocks[code.BlockID(e.ID)]
		if !ok {
			return ""
		}
		return fmt.Sprintf("**%s** block `%s`\n\n```\n%s\n```", blk.Kind(), e.ID, code.Describe(blk))
	case module.EntityAst:
		ast := p.Asts[code.AstID(e.ID)]
		ids := make([]string, len(ast))
		for i, id := range ast {
			ids[i] = string(id)
		}
		return fmt.Sprintf("**ast** `%s`\n\n%s", e.ID, strings.Join(ids, " → "))
	case module.EntityFunction:
		fn, ok := p.Functions[code.FuncID(e.ID)]
		if !ok {
			return ""
		}
		return fmt.Sprintf("**function** `%s`\n\nbody: `%s`", e.ID, fn.Ast)
	case module.EntityClass:
		cls, ok := p.Classes[code.ClassName(e.ID)]
		if !ok {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "**class** `%s`", e.ID)
		if cls.Super != "" {
			fmt.Fprintf(&b, " extends `%s`", cls.Super)
		}
		for _, m := range sortedMethods(cls) {
			fmt.Fprintf(&b, "\n- %s → `%s`", m, cls.Methods[m])
		}
		return b.String()
	}
	return ""
}

// ReferencesAt finds every occurrence of the entity under pos.
func ReferencesAt(a *Analysis, uri, text string, pos protocol.Position, includeDecl bool) []protocol.Location {
	word, _, ok := WordAt(text, pos)
	if !ok || a == nil {
		return nil
	}
	_, def, defined := a.Index.Lookup(word)
	if !defined {
		return nil
	}
	locs := []protocol.Location{}
	for i, line := range splitLines(text) {
		for _, s := range wordSpans(line) {
			if line[s.start:s.end] != word {
				continue
			}
			r := spanRange(line, i, s)
			if !includeDecl && r.Start == def.Range.Start {
				continue
			}
			locs = append(locs, protocol.Location{URI: protocol.DocumentUri(uri), Range: r})
		}
	}
	return locs
}

// FormatEdits rewrites text in canonical form. Undecodable documents are
// left alone.
func FormatEdits(text string) []protocol.TextEdit {
	doc, err := module.Parse([]byte(text))
	if err != nil {
		return []protocol.TextEdit{}
	}
	out, err := module.Encode(doc)
	if err != nil || string(out) == text {
		return []protocol.TextEdit{}
	}
	return []protocol.TextEdit{{Range: FullDocumentRange(text), NewText: string(out)}}
}
