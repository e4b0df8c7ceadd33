package evaluator

import (
	"strings"
	"testing"

	"blocks/internal/code"
	"blocks/internal/object"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *code.Builder)
		want  object.ErrorKind
	}{
		{"unknown class", func(b *code.Builder) {
			b.Main(b.Construct("Ghost", nil))
		}, object.MissingEntity},
		{"unknown function", func(b *code.Builder) {
			b.Main(b.Call("Nope", nil))
		}, object.MissingEntity},
		{"unknown block", func(b *code.Builder) {
			b.Main("dangling")
		}, object.MissingEntity},
		{"unknown variable", func(b *code.Builder) {
			b.Main(b.Get("x"))
		}, object.MissingEntity},
		{"missing attribute", func(b *code.Builder) {
			b.Main(
				b.Set("o", b.Construct("Object", nil)),
				b.Get("o.Missing"),
			)
		}, object.MissingEntity},
		{"attribute of non-instance", func(b *code.Builder) {
			b.Main(
				b.Set("s", b.Str("text")),
				b.Set("s.Length", b.Str("1")),
			)
		}, object.TypeMismatch},
		{"undefined method", func(b *code.Builder) {
			b.Main(b.Method(b.Str("text"), "Shout", nil))
		}, object.UserUndefinedMethod},
		{"missing argument", func(b *code.Builder) {
			b.Main(b.Call("Print", nil))
		}, object.MissingArgument},
		{"no value in value position", func(b *code.Builder) {
			b.Main(b.Set("x", b.Call("Print", code.Args{"Value": b.Str("hi")})))
		}, object.TypeMismatch},
		{"defer", func(b *code.Builder) {
			b.Main(b.Defer(b.Ast()))
		}, object.Unsupported},
		{"missing superclass", func(b *code.Builder) {
			b.Class("Orphan", "Nowhere")
			b.Main(b.Construct("Orphan", nil))
		}, object.MissingEntity},
		{"cyclic superclass", func(b *code.Builder) {
			b.Class("A", "B")
			b.Class("B", "A")
			b.Main(b.Construct("A", nil))
		}, object.TypeMismatch},
	}

	for i, tt := range tests {
		b := code.NewBuilder(tt.name)
		tt.build(b)
		in, _ := newTestInterpreter(t, b)
		_, err := in.Run()
		if err == nil {
			t.Fatalf("tests[%d] (%s) - expected an error", i, tt.name)
		}
		if !object.IsKind(err, tt.want) {
			t.Fatalf("tests[%d] (%s) - expected %s, got %v", i, tt.name, tt.want, err)
		}
	}
}

func TestDanglingSuperclassWithLocalMethods(t *testing.T) {
	b := code.NewBuilder("lost")
	b.Class("Lost", "Nowhere").
		Method(code.ConstructorMethod, b.ReturnNothing()).
		Method("Hi", b.Return(b.Str("hi")))
	b.Main(
		b.Set("x", b.Construct("Lost", nil)),
		b.Call("Print", code.Args{"Value": b.Method(b.Get("x"), "Hi", nil)}),
	)
	in, out := newTestInterpreter(t, b)

	if _, err := in.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "hi\n" {
		t.Fatalf("expected %q, got %q", "hi\n", out.String())
	}

	inst, err := in.ConstructInstance("Lost", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := in.EvalMethod(inst, "Bye", nil); !object.IsKind(err, object.MissingEntity) {
		t.Fatalf("inherited lookup should reach the missing class, got %v", err)
	}
}

func TestMissingMain(t *testing.T) {
	in, _ := newTestInterpreter(t, code.NewBuilder("empty"))
	_, err := in.Run()
	if !object.IsKind(err, object.MissingEntity) {
		t.Fatalf("expected MissingEntity, got %v", err)
	}
}

func TestErrorAbortsRemainingBlocks(t *testing.T) {
	b := code.NewBuilder("abort")
	b.Main(
		b.Call("Print", code.Args{"Value": b.Str("before")}),
		b.Get("missing"),
		b.Call("Print", code.Args{"Value": b.Str("after")}),
	)
	in, out := newTestInterpreter(t, b)

	if _, err := in.Run(); err == nil {
		t.Fatalf("expected an error")
	}
	if out.String() != "before\n" {
		t.Fatalf("expected only the first line, got %q", out.String())
	}
}

func TestErrorHasStackTrace(t *testing.T) {
	b := code.NewBuilder("trace")
	missing := b.Get("missing")
	b.Class("Dog", "Object").Method("Speak", b.Return(missing))
	call := b.Method(b.Construct("Dog", nil), "Speak", nil)
	b.Main(call)
	in, _ := newTestInterpreter(t, b)

	_, err := in.Run()
	e, ok := err.(*object.Error)
	if !ok {
		t.Fatalf("expected *object.Error, got %T (%v)", err, err)
	}
	for _, want := range []string{
		"error: MissingEntity: variable \"missing\" is not defined",
		"at Dog.Speak (block " + string(missing) + ")",
		"at <main> (block " + string(call) + ")",
	} {
		if !strings.Contains(e.Stack, want) {
			t.Fatalf("expected stack to contain %q, got:\n%s", want, e.Stack)
		}
	}
}

func TestForeignErrorGetsStackTrace(t *testing.T) {
	b := code.NewBuilder("trace")
	b.Main(b.Call("Print", nil))
	in, _ := newTestInterpreter(t, b)

	_, err := in.Run()
	e, ok := err.(*object.Error)
	if !ok {
		t.Fatalf("expected *object.Error, got %T (%v)", err, err)
	}
	if !strings.Contains(e.Stack, "at Print (block <entry>)") {
		t.Fatalf("expected Print frame in stack, got:\n%s", e.Stack)
	}
}

func TestForeignFunctionCallsMethod(t *testing.T) {
	b := code.NewBuilder("foreign")
	b.Class("Dog", "Object").Method("Name", b.Return(b.Str("Rex")))
	b.Foreign("Describe", func(args object.Args, call code.MethodCaller) (object.Obj, error) {
		return call(args["Pet"], "Name", nil)
	})
	b.Main(b.Call("Print", code.Args{
		"Value": b.Call("Describe", code.Args{"Pet": b.Construct("Dog", nil)}),
	}))
	in, out := newTestInterpreter(t, b)

	if _, err := in.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "Rex\n" {
		t.Fatalf("expected %q, got %q", "Rex\n", out.String())
	}
}
