package module

import (
	"bytes"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"blocks/internal/code"
)

// Encode writes doc in canonical form: sections and keys in a fixed order,
// every block mapping led by its kind. Foreign functions cannot be written
// and are left out.
func Encode(doc *Document) ([]byte, error) {
	p := doc.Program
	root := mapNode()
	if p.Name != "" {
		addPair(root, "name", str(p.Name))
	}
	if len(doc.Libraries) > 0 {
		seq := seqNode()
		for _, lib := range doc.Libraries {
			seq.Content = append(seq.Content, str(lib))
		}
		addPair(root, "libraries", seq)
	}

	if len(p.Classes) > 0 {
		classes := mapNode()
		for _, name := range code.SortedClassNames(&p.Code) {
			cls := p.Classes[name]
			n := mapNode()
			if cls.Super != "" {
				addPair(n, "super", str(string(cls.Super)))
			}
			methods := mapNode()
			for _, m := range sortedKeys(cls.Methods) {
				addPair(methods, m, str(string(cls.Methods[m])))
			}
			addPair(n, "methods", methods)
			addPair(classes, string(name), n)
		}
		addPair(root, "classes", classes)
	}

	funcs := mapNode()
	for _, id := range code.SortedFuncIDs(&p.Code) {
		fn := p.Functions[id]
		if fn.Kind != code.FuncAST {
			continue
		}
		n := mapNode()
		addPair(n, "ast", str(string(fn.Ast)))
		addPair(funcs, string(id), n)
	}
	if len(funcs.Content) > 0 {
		addPair(root, "functions", funcs)
	}

	asts := mapNode()
	for _, id := range code.SortedAstIDs(&p.Code) {
		seq := seqNode()
		seq.Style = yaml.FlowStyle
		for _, b := range p.Asts[id] {
			seq.Content = append(seq.Content, str(string(b)))
		}
		addPair(asts, string(id), seq)
	}
	addPair(root, "asts", asts)

	blocks := mapNode()
	for _, id := range code.SortedBlockIDs(&p.Code) {
		addPair(blocks, string(id), blockNode(p.Blocks[id]))
	}
	addPair(root, "blocks", blocks)

	if doc.Expect != nil {
		var n yaml.Node
		if err := n.Encode(doc.Expect); err != nil {
			return nil, err
		}
		addPair(root, "expect", &n)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockNode(b code.Block) *yaml.Node {
	n := mapNode()
	n.Style = yaml.FlowStyle
	addPair(n, "kind", str(string(b.Kind())))
	switch v := b.(type) {
	case *code.BooleanLiteral:
		addPair(n, "value", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Value)})
	case *code.StringLiteral:
		addPair(n, "value", quoted(v.Value))
	case *code.ArrayLiteral:
		seq := seqNode()
		seq.Style = yaml.FlowStyle
		for _, el := range v.Elements {
			seq.Content = append(seq.Content, str(string(el)))
		}
		addPair(n, "elements", seq)
	case *code.Construct:
		addPair(n, "class", str(string(v.Class)))
		addArgs(n, v.Args)
	case *code.Set:
		addPair(n, "var", str(v.Var.String()))
		addPair(n, "value", str(string(v.Value)))
	case *code.Get:
		addPair(n, "var", str(v.Var.String()))
	case *code.FunctionCall:
		addPair(n, "func", str(string(v.Func)))
		addArgs(n, v.Args)
	case *code.MethodCall:
		addPair(n, "receiver", str(string(v.Receiver)))
		addPair(n, "method", quoted(v.Method))
		addArgs(n, v.Args)
	case *code.Return:
		if v.Value != "" {
			addPair(n, "value", str(string(v.Value)))
		}
	case *code.If:
		addPair(n, "cond", str(string(v.Cond)))
		addPair(n, "then", str(string(v.Then)))
		if v.Else != "" {
			addPair(n, "else", str(string(v.Else)))
		}
	case *code.While:
		addPair(n, "cond", str(string(v.Cond)))
		addPair(n, "body", str(string(v.Body)))
	case *code.Defer:
		addPair(n, "body", str(string(v.Body)))
	}
	return n
}

func addArgs(n *yaml.Node, args code.Args) {
	if len(args) == 0 {
		return
	}
	m := mapNode()
	m.Style = yaml.FlowStyle
	for _, name := range args.Names() {
		addPair(m, name, str(string(args[name])))
	}
	addPair(n, "args", m)
}

func mapNode() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode} }
func seqNode() *yaml.Node { return &yaml.Node{Kind: yaml.SequenceNode} }

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func quoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, str(key), value)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
