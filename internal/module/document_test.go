package module

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blocks/internal/code"
)

const counterDoc = `name: counter
libraries: [scene]
classes:
  Counter:
    super: Object
    methods:
      Constructor: Counter.init
      Increment: Counter.inc
functions:
  Counter.init: {ast: init}
  Counter.inc: {ast: inc}
asts:
  Main: [m1, m2, m3]
  init: [i1]
  inc: [n1]
blocks:
  m1: {kind: set, var: c, value: m1v}
  m1v: {kind: construct, class: Counter}
  m2: {kind: method, receiver: m2r, method: Increment}
  m2r: {kind: get, var: c}
  m3: {kind: call, func: Print, args: {Value: m3v}}
  m3v: {kind: get, var: c.Count}
  i1: {kind: set, var: Self.Count, value: zero}
  zero: {kind: construct, class: Integer, args: {Value: zeroText}}
  zeroText: {kind: string, value: "0"}
  n1: {kind: set, var: Self.Count, value: sum}
  sum: {kind: method, receiver: cur, method: "+", args: {Other: one}}
  cur: {kind: get, var: Self.Count}
  one: {kind: construct, class: Integer, args: {Value: oneText}}
  oneText: {kind: string, value: "1"}
expect:
  stdout: "1\n"
`

func TestParseDocument(t *testing.T) {
	doc, err := Parse([]byte(counterDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := doc.Program
	if p.Name != "counter" {
		t.Fatalf("expected name counter, got %q", p.Name)
	}
	if !p.HasMain() {
		t.Fatalf("Main not decoded")
	}
	if len(doc.Libraries) != 1 || doc.Libraries[0] != "scene" {
		t.Fatalf("unexpected libraries %v", doc.Libraries)
	}
	cls := p.Classes["Counter"]
	if cls == nil || cls.Super != "Object" || cls.Methods["Increment"] != "Counter.inc" {
		t.Fatalf("unexpected class %+v", cls)
	}
	if fn := p.Functions["Counter.inc"]; fn == nil || fn.Kind != code.FuncAST || fn.Ast != "inc" {
		t.Fatalf("unexpected function %+v", fn)
	}

	set, ok := p.Blocks["i1"].(*code.Set)
	if !ok {
		t.Fatalf("expected *code.Set, got %T", p.Blocks["i1"])
	}
	if set.Var.String() != "Self.Count" || set.Var.Attribute == nil {
		t.Fatalf("expected dotted ref, got %+v", set.Var)
	}
	m, ok := p.Blocks["sum"].(*code.MethodCall)
	if !ok || m.Method != "+" || m.Args["Other"] != "one" {
		t.Fatalf("unexpected method block %+v", p.Blocks["sum"])
	}
	if doc.Expect == nil || doc.Expect.Stdout == nil || *doc.Expect.Stdout != "1\n" {
		t.Fatalf("unexpected expectation %+v", doc.Expect)
	}

	pos, ok := doc.Pos(EntityClass, "Counter")
	if !ok || pos.Line != 4 || pos.Col != 3 {
		t.Fatalf("expected Counter at 4:3, got %+v", pos)
	}
	if _, ok := doc.Pos(EntityBlock, "zeroText"); !ok {
		t.Fatalf("missing block position")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "empty document"},
		{"- a\n- b\n", "document must be a mapping"},
		{"bogus: 1\n", `1:1: unknown field "bogus"`},
		{"blocks:\n  b1: {value: x}\n", "2:7: block without kind"},
		{"blocks:\n  b1: {kind: loop}\n", `unknown block kind "loop"`},
		{"blocks:\n  b1: {kind: get, var: a..b}\n", `invalid variable reference "a..b"`},
		{"blocks:\n  b1: {kind: if, cond: c}\n", "if block needs cond and then"},
		{"functions:\n  f: {}\n", `function "f": missing ast`},
	}
	for i, tt := range tests {
		_, err := Parse([]byte(tt.input))
		if err == nil {
			t.Fatalf("tests[%d] - expected error", i)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("tests[%d] - expected %q in %q", i, tt.want, err.Error())
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(counterDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("re-parse failed: %v\n%s", err, out)
	}
	if code.Dump(&again.Program.Code) != code.Dump(&doc.Program.Code) {
		t.Fatalf("program changed across encode:\n%s", out)
	}
	if again.Expect == nil || again.Expect.Stdout == nil || *again.Expect.Stdout != "1\n" {
		t.Fatalf("expectation lost across encode")
	}
	second, err := Encode(again)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second) != string(out) {
		t.Fatalf("encoding is not stable:\n%s\n---\n%s", out, second)
	}
}

func TestLoadSetsPathAndDefaultName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.yaml")
	src := "asts:\n  Main: [b1]\nblocks:\n  b1: {kind: string, value: hi}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Program.Name != "hello" {
		t.Fatalf("expected name from file, got %q", doc.Program.Name)
	}
	if doc.Path != path {
		t.Fatalf("expected path %q, got %q", path, doc.Path)
	}
}

func TestLoadErrorHasFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("blocks:\n  b1: {kind: nope}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.HasPrefix(err.Error(), path+":2:") {
		t.Fatalf("expected %s:2:... error, got %v", path, err)
	}
}

func TestResolveLibraries(t *testing.T) {
	libs, err := ResolveLibraries([]string{"std", "scene"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(libs) != 1 || libs[0].Name != "scene" {
		t.Fatalf("expected only scene, got %d libraries", len(libs))
	}
	if _, err := ResolveLibraries([]string{"net"}); err == nil {
		t.Fatalf("expected unknown library error")
	}
}
