package library

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"blocks/internal/code"
	"blocks/internal/object"
	"blocks/internal/runtimeio"
)

func noCalls(t *testing.T) code.MethodCaller {
	return func(recv object.Obj, method string, _ object.Args) (object.Obj, error) {
		t.Fatalf("unexpected method call %s on %s", method, recv.Inspect())
		return nil, nil
	}
}

func TestLoadMintsFreshMethodIDs(t *testing.T) {
	c := code.NewCode()
	lib := Standard(Host{})
	Load(&c, lib)

	first := c.Classes[IntegerClass].Methods["+"]
	if first != "std:Integer.+" {
		t.Fatalf("expected std:Integer.+, got %q", first)
	}

	Load(&c, lib)
	second := c.Classes[IntegerClass].Methods["+"]
	if second == first {
		t.Fatalf("expected a fresh ID on second load, got %q again", second)
	}
	if second != "std:Integer.+#2" {
		t.Fatalf("expected std:Integer.+#2, got %q", second)
	}
	if _, ok := c.Functions[first]; !ok {
		t.Fatalf("first load's function %q was dropped", first)
	}
}

func TestLoadKeepsStandaloneFunctionIDs(t *testing.T) {
	c := code.NewCode()
	Load(&c, Standard(Host{}))
	for _, id := range []code.FuncID{"Print", "Input", "Not"} {
		fn, ok := c.Functions[id]
		if !ok {
			t.Fatalf("missing function %q", id)
		}
		if fn.Kind != code.FuncForeign {
			t.Fatalf("%q: expected foreign, got %s", id, fn.Kind)
		}
	}
}

func TestLoadDoesNotValidateSuperclasses(t *testing.T) {
	c := code.NewCode()
	Load(&c, Library{
		Name:    "orphan",
		Classes: []ClassSpec{{Name: "Lost", Super: "Nowhere", Methods: map[string]*code.Func{}}},
	})
	cls, ok := c.Classes["Lost"]
	if !ok {
		t.Fatalf("class Lost not loaded")
	}
	if cls.Super != "Nowhere" {
		t.Fatalf("expected super Nowhere, got %q", cls.Super)
	}
}

func TestFromProgramExcludesMain(t *testing.T) {
	b := code.NewBuilder("lib")
	b.Class("Dog", "Object").Method("Speak", b.Return(b.Str("woof")))
	b.Func("Helper", b.ReturnNothing())
	b.Main(b.Str("unused"))

	lib := FromProgram("pets", b.Program())
	if _, ok := lib.Asts[code.MainAst]; ok {
		t.Fatalf("Main must not be part of a library")
	}
	if _, ok := lib.Functions["Helper"]; !ok {
		t.Fatalf("standalone function Helper missing")
	}
	if len(lib.Functions) != 1 {
		t.Fatalf("expected only Helper as standalone function, got %d", len(lib.Functions))
	}
	if len(lib.Classes) != 1 || lib.Classes[0].Name != "Dog" {
		t.Fatalf("expected class Dog, got %+v", lib.Classes)
	}

	c := code.NewCode()
	Load(&c, lib)
	id := c.Classes["Dog"].Methods["Speak"]
	if id != "pets:Dog.Speak" {
		t.Fatalf("expected pets:Dog.Speak, got %q", id)
	}
	if c.Functions[id].Kind != code.FuncAST {
		t.Fatalf("expected AST method")
	}
	if _, ok := c.Asts[c.Functions[id].Ast]; !ok {
		t.Fatalf("method body AST not merged")
	}
}

func callForeign(t *testing.T, fn *code.Func, args object.Args, call code.MethodCaller) (object.Obj, error) {
	t.Helper()
	if fn.Kind != code.FuncForeign {
		t.Fatalf("expected foreign function")
	}
	return fn.Execute(args, call)
}

func method(spec ClassSpec, name string) *code.Func {
	return spec.Methods[name]
}

func TestIntegerArithmetic(t *testing.T) {
	cls := integerClass()
	tests := []struct {
		op   string
		a, b int64
		want int64
	}{
		{"+", 2, 3, 5},
		{"-", 2, 3, -1},
		{"*", 4, 3, 12},
		{"/", 7, 2, 3},
	}
	for i, tt := range tests {
		got, err := callForeign(t, method(cls, tt.op), object.Args{
			code.SelfArg: NewInteger(tt.a),
			"Other":      NewInteger(tt.b),
		}, noCalls(t))
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		n, err := IntegerValue(got)
		if err != nil {
			t.Fatalf("tests[%d] - %v", i, err)
		}
		if n != tt.want {
			t.Fatalf("tests[%d] - expected %d, got %d", i, tt.want, n)
		}
	}
}

func TestIntegerDivisionByZero(t *testing.T) {
	_, err := callForeign(t, method(integerClass(), "/"), object.Args{
		code.SelfArg: NewInteger(1),
		"Other":      NewInteger(0),
	}, noCalls(t))
	if !object.IsKind(err, object.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestIntegerOverflow(t *testing.T) {
	cls := integerClass()
	tests := []struct {
		op   string
		a, b int64
	}{
		{"+", math.MaxInt64, 1},
		{"+", math.MinInt64, -1},
		{"-", math.MinInt64, 1},
		{"-", math.MaxInt64, -1},
		{"*", math.MaxInt64, 2},
		{"*", math.MinInt64, -1},
		{"*", -1, math.MinInt64},
		{"/", math.MinInt64, -1},
	}
	for i, tt := range tests {
		_, err := callForeign(t, method(cls, tt.op), object.Args{
			code.SelfArg: NewInteger(tt.a),
			"Other":      NewInteger(tt.b),
		}, noCalls(t))
		if !object.IsKind(err, object.TypeMismatch) {
			t.Fatalf("tests[%d] - expected TypeMismatch for %d %s %d, got %v", i, tt.a, tt.op, tt.b, err)
		}
	}

	got, err := callForeign(t, method(cls, "-"), object.Args{
		code.SelfArg: NewInteger(math.MinInt64 + 1),
		"Other":      NewInteger(1),
	}, noCalls(t))
	if err != nil {
		t.Fatalf("unexpected error at the boundary: %v", err)
	}
	if n, _ := IntegerValue(got); n != math.MinInt64 {
		t.Fatalf("expected %d, got %d", int64(math.MinInt64), n)
	}
}

func TestIntegerMissingOther(t *testing.T) {
	_, err := callForeign(t, method(integerClass(), "<"), object.Args{
		code.SelfArg: NewInteger(1),
	}, noCalls(t))
	if !object.IsKind(err, object.MissingArgument) {
		t.Fatalf("expected MissingArgument, got %v", err)
	}
}

func TestIntegerConstructor(t *testing.T) {
	tests := []struct {
		value   object.Obj
		want    int64
		wantErr bool
	}{
		{&object.String{Value: "42"}, 42, false},
		{&object.String{Value: "-7"}, -7, false},
		{NewInteger(9), 9, false},
		{&object.String{Value: "4x"}, 0, true},
		{&object.Boolean{Value: true}, 0, true},
	}
	for i, tt := range tests {
		inst := object.NewInstance(IntegerClass)
		inst.Attributes[integerValue] = &object.String{Value: "0"}
		_, err := integerConstructor(object.Args{code.SelfArg: inst, "Value": tt.value}, noCalls(t))
		if tt.wantErr {
			if !object.IsKind(err, object.TypeMismatch) {
				t.Fatalf("tests[%d] - expected TypeMismatch, got %v", i, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		n, err := IntegerValue(inst)
		if err != nil || n != tt.want {
			t.Fatalf("tests[%d] - expected %d, got %d (%v)", i, tt.want, n, err)
		}
	}
}

func TestPrintUsesToString(t *testing.T) {
	var out bytes.Buffer
	printer := printFunc(Host{Out: &out})
	calls := 0
	caller := func(recv object.Obj, m string, _ object.Args) (object.Obj, error) {
		calls++
		if m != "To String" {
			t.Fatalf("expected To String, got %s", m)
		}
		return &object.String{Value: "<" + recv.ClassName() + ">"}, nil
	}

	if _, err := printer(object.Args{"Value": &object.String{Value: "plain"}}, caller); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := printer(object.Args{"Value": object.NewInstance("Dog")}, caller); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one To String call, got %d", calls)
	}
	if out.String() != "plain\n<Dog>\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestPrintMissingValue(t *testing.T) {
	_, err := printFunc(Host{})(object.Args{}, noCalls(t))
	if !object.IsKind(err, object.MissingArgument) {
		t.Fatalf("expected MissingArgument, got %v", err)
	}
}

func TestInput(t *testing.T) {
	var echo bytes.Buffer
	host := Host{Input: runtimeio.NewLineReader(strings.NewReader("Ada\n"), &echo)}
	got, err := inputFunc(host)(object.Args{"Prompt": &object.String{Value: "name? "}}, noCalls(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := got.(*object.String); !ok || s.Value != "Ada" {
		t.Fatalf("expected \"Ada\", got %v", got)
	}
	if echo.String() != "name? " {
		t.Fatalf("expected prompt echo, got %q", echo.String())
	}

	_, err = inputFunc(host)(object.Args{}, noCalls(t))
	if !object.IsKind(err, object.MissingArgument) {
		t.Fatalf("expected MissingArgument at end of input, got %v", err)
	}
}

func TestArrayGetOutOfRange(t *testing.T) {
	arr := &object.Array{Elements: []object.Obj{&object.String{Value: "a"}}}
	_, err := callForeign(t, method(arrayClass(), "Get"), object.Args{
		code.SelfArg: arr,
		"Index":      NewInteger(3),
	}, noCalls(t))
	if !object.IsKind(err, object.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestArrayAppendReturnsNewArray(t *testing.T) {
	arr := &object.Array{}
	got, err := callForeign(t, method(arrayClass(), "Append"), object.Args{
		code.SelfArg: arr,
		"Value":      &object.Boolean{Value: true},
	}, noCalls(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, ok := got.(*object.Array)
	if !ok || len(out.Elements) != 1 {
		t.Fatalf("expected a one-element array, got %v", got)
	}
	if len(arr.Elements) != 0 {
		t.Fatalf("receiver was mutated: %s", arr.Inspect())
	}
}

func TestSceneShape(t *testing.T) {
	lib := Scene()
	if len(lib.Classes) != 1 || lib.Classes[0].Name != ShapeClass {
		t.Fatalf("expected Shape class, got %+v", lib.Classes)
	}
	for _, m := range []string{code.DefaultsMethod, code.ConstructorMethod, "Area", "To String"} {
		if _, ok := lib.Classes[0].Methods[m]; !ok {
			t.Fatalf("Shape is missing %q", m)
		}
	}

	inst := object.NewInstance(string(ShapeClass))
	inst.Attributes["X"] = NewInteger(0)
	inst.Attributes["Y"] = NewInteger(0)
	inst.Attributes["Width"] = NewInteger(1)
	inst.Attributes["Height"] = NewInteger(1)
	inst.Attributes["Color"] = &object.String{Value: "#ffffff"}
	_, err := shapeConstructor(object.Args{
		code.SelfArg: inst,
		"X":          &object.String{Value: "5"},
		"Width":      NewInteger(30),
		"Color":      &object.String{Value: "#ff0000"},
	}, noCalls(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, err := ShapeGeometry(inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Geometry{X: 5, Y: 0, Width: 30, Height: 1, Color: "#ff0000"}
	if g != want {
		t.Fatalf("expected %+v, got %+v", want, g)
	}
}

func TestSceneShapeRejectsTrailingText(t *testing.T) {
	for i, text := range []string{"12abc", "", " 3", "1.5"} {
		inst := object.NewInstance(string(ShapeClass))
		_, err := shapeConstructor(object.Args{
			code.SelfArg: inst,
			"X":          &object.String{Value: text},
		}, noCalls(t))
		if !object.IsKind(err, object.TypeMismatch) {
			t.Fatalf("tests[%d] - expected TypeMismatch for %q, got %v", i, text, err)
		}
	}
}
