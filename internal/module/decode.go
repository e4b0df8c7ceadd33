package module

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"blocks/internal/code"
)

type decoder struct {
	doc *Document
}

// Parse decodes a YAML (or JSON) program document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &DecodeError{Msg: err.Error()}
	}
	if root.Kind == 0 {
		return nil, &DecodeError{Msg: "empty document"}
	}
	top := &root
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	d := &decoder{doc: &Document{
		Program:   code.NewProgram(""),
		Positions: map[Entity]Pos{},
	}}
	if err := d.document(top); err != nil {
		return nil, err
	}
	return d.doc, nil
}

func posOf(n *yaml.Node) Pos {
	return Pos{Line: n.Line, Col: n.Column}
}

func errorAt(n *yaml.Node, format string, args ...any) error {
	return &DecodeError{Pos: posOf(n), Msg: fmt.Sprintf(format, args...)}
}

type pair struct {
	key   string
	keyAt *yaml.Node
	value *yaml.Node
}

func mapping(n *yaml.Node, what string) ([]pair, error) {
	if n.Kind == yaml.AliasNode {
		return mapping(n.Alias, what)
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(n, "%s must be a mapping", what)
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		var key string
		if err := k.Decode(&key); err != nil {
			return nil, errorAt(k, "%s: %v", what, err)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, errorAt(k, "%s must not use empty keys", what)
		}
		out = append(out, pair{key: key, keyAt: k, value: n.Content[i+1]})
	}
	return out, nil
}

func (d *decoder) document(n *yaml.Node) error {
	pairs, err := mapping(n, "document")
	if err != nil {
		return err
	}
	for _, p := range pairs {
		switch p.key {
		case "name":
			if err := p.value.Decode(&d.doc.Program.Name); err != nil {
				return errorAt(p.value, "name: %v", err)
			}
		case "libraries":
			if err := p.value.Decode(&d.doc.Libraries); err != nil {
				return errorAt(p.value, "libraries must be a list of names")
			}
		case "classes":
			err = d.classes(p.value)
		case "functions":
			err = d.functions(p.value)
		case "asts":
			err = d.asts(p.value)
		case "blocks":
			err = d.blocks(p.value)
		case "expect":
			d.doc.Expect = &Expectation{}
			if derr := p.value.Decode(d.doc.Expect); derr != nil {
				err = errorAt(p.value, "expect: %v", derr)
			}
		default:
			err = errorAt(p.keyAt, "unknown field %q", p.key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type rawClass struct {
	Super   string            `yaml:"super"`
	Methods map[string]string `yaml:"methods"`
}

func (d *decoder) classes(n *yaml.Node) error {
	pairs, err := mapping(n, "classes")
	if err != nil {
		return err
	}
	for _, p := range pairs {
		var raw rawClass
		if err := p.value.Decode(&raw); err != nil {
			return errorAt(p.value, "class %q: %v", p.key, err)
		}
		methods := make(map[string]code.FuncID, len(raw.Methods))
		for m, id := range raw.Methods {
			methods[m] = code.FuncID(id)
		}
		name := code.ClassName(p.key)
		d.doc.Program.Classes[name] = &code.ClassDef{Name: name, Super: code.ClassName(raw.Super), Methods: methods}
		d.doc.Positions[Entity{Kind: EntityClass, ID: p.key}] = posOf(p.keyAt)
	}
	return nil
}

func (d *decoder) functions(n *yaml.Node) error {
	pairs, err := mapping(n, "functions")
	if err != nil {
		return err
	}
	for _, p := range pairs {
		var raw struct {
			Ast string `yaml:"ast"`
		}
		if err := p.value.Decode(&raw); err != nil {
			return errorAt(p.value, "function %q: %v", p.key, err)
		}
		if raw.Ast == "" {
			return errorAt(p.value, "function %q: missing ast", p.key)
		}
		d.doc.Program.Functions[code.FuncID(p.key)] = code.ASTFunc(code.AstID(raw.Ast))
		d.doc.Positions[Entity{Kind: EntityFunction, ID: p.key}] = posOf(p.keyAt)
	}
	return nil
}

func (d *decoder) asts(n *yaml.Node) error {
	pairs, err := mapping(n, "asts")
	if err != nil {
		return err
	}
	for _, p := range pairs {
		var ids []string
		if err := p.value.Decode(&ids); err != nil {
			return errorAt(p.value, "ast %q must be a list of block ids", p.key)
		}
		ast := make(code.Ast, 0, len(ids))
		for _, id := range ids {
			ast = append(ast, code.BlockID(id))
		}
		d.doc.Program.Asts[code.AstID(p.key)] = ast
		d.doc.Positions[Entity{Kind: EntityAst, ID: p.key}] = posOf(p.keyAt)
	}
	return nil
}

func (d *decoder) blocks(n *yaml.Node) error {
	pairs, err := mapping(n, "blocks")
	if err != nil {
		return err
	}
	for _, p := range pairs {
		blk, err := decodeBlock(p.value)
		if err != nil {
			return err
		}
		d.doc.Program.Blocks[code.BlockID(p.key)] = blk
		d.doc.Positions[Entity{Kind: EntityBlock, ID: p.key}] = posOf(p.keyAt)
	}
	return nil
}

type blockDecoder func(n *yaml.Node) (code.Block, error)

var blockDecoders map[code.Kind]blockDecoder

func init() {
	blockDecoders = map[code.Kind]blockDecoder{
		code.KindBoolean:   decodeBoolean,
		code.KindString:    decodeString,
		code.KindArray:     decodeArray,
		code.KindConstruct: decodeConstruct,
		code.KindSet:       decodeSet,
		code.KindGet:       decodeGet,
		code.KindCall:      decodeCall,
		code.KindMethod:    decodeMethod,
		code.KindReturn:    decodeReturn,
		code.KindIf:        decodeIf,
		code.KindWhile:     decodeWhile,
		code.KindBreak:     func(*yaml.Node) (code.Block, error) { return &code.Break{}, nil },
		code.KindDefer:     decodeDefer,
	}
}

func decodeBlock(n *yaml.Node) (code.Block, error) {
	var head struct {
		Kind string `yaml:"kind"`
	}
	if err := n.Decode(&head); err != nil {
		return nil, errorAt(n, "block: %v", err)
	}
	if head.Kind == "" {
		return nil, errorAt(n, "block without kind")
	}
	dec, ok := blockDecoders[code.Kind(head.Kind)]
	if !ok {
		return nil, errorAt(n, "unknown block kind %q", head.Kind)
	}
	blk, err := dec(n)
	if err != nil {
		if _, ok := err.(*DecodeError); ok {
			return nil, err
		}
		return nil, errorAt(n, "%s block: %v", head.Kind, err)
	}
	return blk, nil
}

func decodeArgs(raw map[string]string) code.Args {
	if len(raw) == 0 {
		return nil
	}
	args := make(code.Args, len(raw))
	for name, id := range raw {
		args[name] = code.BlockID(id)
	}
	return args
}

func decodeRef(n *yaml.Node, s string) (code.VariableRef, error) {
	ref, err := code.ParseRef(s)
	if err != nil {
		return code.VariableRef{}, errorAt(n, "invalid variable reference %q", s)
	}
	return ref, nil
}

func decodeBoolean(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Value bool `yaml:"value"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return &code.BooleanLiteral{Value: raw.Value}, nil
}

func decodeString(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Value string `yaml:"value"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return &code.StringLiteral{Value: raw.Value}, nil
}

func decodeArray(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Elements []string `yaml:"elements"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	elems := make([]code.BlockID, 0, len(raw.Elements))
	for _, id := range raw.Elements {
		elems = append(elems, code.BlockID(id))
	}
	return &code.ArrayLiteral{Elements: elems}, nil
}

func decodeConstruct(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Class string            `yaml:"class"`
		Args  map[string]string `yaml:"args"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Class == "" {
		return nil, errorAt(n, "construct block without class")
	}
	return &code.Construct{Class: code.ClassName(raw.Class), Args: decodeArgs(raw.Args)}, nil
}

func decodeSet(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Var   string `yaml:"var"`
		Value string `yaml:"value"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	ref, err := decodeRef(n, raw.Var)
	if err != nil {
		return nil, err
	}
	if raw.Value == "" {
		return nil, errorAt(n, "set block without value")
	}
	return &code.Set{Var: ref, Value: code.BlockID(raw.Value)}, nil
}

func decodeGet(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Var string `yaml:"var"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	ref, err := decodeRef(n, raw.Var)
	if err != nil {
		return nil, err
	}
	return &code.Get{Var: ref}, nil
}

func decodeCall(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Func string            `yaml:"func"`
		Args map[string]string `yaml:"args"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Func == "" {
		return nil, errorAt(n, "call block without func")
	}
	return &code.FunctionCall{Func: code.FuncID(raw.Func), Args: decodeArgs(raw.Args)}, nil
}

func decodeMethod(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Receiver string            `yaml:"receiver"`
		Method   string            `yaml:"method"`
		Args     map[string]string `yaml:"args"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Receiver == "" || raw.Method == "" {
		return nil, errorAt(n, "method block needs receiver and method")
	}
	return &code.MethodCall{Receiver: code.BlockID(raw.Receiver), Method: raw.Method, Args: decodeArgs(raw.Args)}, nil
}

func decodeReturn(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Value string `yaml:"value"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return &code.Return{Value: code.BlockID(raw.Value)}, nil
}

func decodeIf(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Cond string `yaml:"cond"`
		Then string `yaml:"then"`
		Else string `yaml:"else"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Cond == "" || raw.Then == "" {
		return nil, errorAt(n, "if block needs cond and then")
	}
	return &code.If{Cond: code.BlockID(raw.Cond), Then: code.AstID(raw.Then), Else: code.AstID(raw.Else)}, nil
}

func decodeWhile(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Cond string `yaml:"cond"`
		Body string `yaml:"body"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Cond == "" || raw.Body == "" {
		return nil, errorAt(n, "while block needs cond and body")
	}
	return &code.While{Cond: code.BlockID(raw.Cond), Body: code.AstID(raw.Body)}, nil
}

func decodeDefer(n *yaml.Node) (code.Block, error) {
	var raw struct {
		Body string `yaml:"body"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return &code.Defer{Body: code.AstID(raw.Body)}, nil
}
