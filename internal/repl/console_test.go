package repl

import (
	"bytes"
	"strings"
	"testing"

	"blocks/internal/code"
	"blocks/internal/module"
)

func counterConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	b := code.NewBuilder("counter")
	b.Class("Counter", "Object").
		Method(code.ConstructorMethod, b.Set("Self.Count", b.Int(0))).
		Method("Increment", b.Set("Self.Count", b.Method(b.Get("Self.Count"), "+", code.Args{"Other": b.Int(1)})))
	b.Main(
		b.Set("c", b.Construct("Counter", nil)),
		b.Method(b.Get("c"), "Increment", nil),
	)
	b.Func("Twice", b.Return(b.Str("twice")))
	p := b.Program()
	p.Blocks["peek"] = &code.Get{Var: code.MustRef("c.Count")}

	var out bytes.Buffer
	c, err := NewConsole(&module.Document{Program: p}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c, &out
}

func TestConsoleCommands(t *testing.T) {
	c, out := counterConsole(t)
	tests := []struct {
		line string
		want string
	}{
		{"vars", "(no variables)\n"},
		{"get c", "error: MissingEntity"},
		{"run", ""},
		{"vars", "c = Counter{Count: "},
		{"get c.Count", "Integer{Value: \"1\"}\n"},
		{"run", ""},
		{"eval peek", "Integer{Value: \"1\"}\n"},
		{"call Twice", "\"twice\"\n"},
		{"show peek", "peek: get c.Count\n"},
		{"eval", "usage: eval <id>\n"},
		{"bogus", "unknown command \"bogus\""},
		{"reset", ""},
		{"vars", "(no variables)\n"},
	}
	for i, tt := range tests {
		out.Reset()
		if c.Exec(tt.line) {
			t.Fatalf("tests[%d] - %q should not quit", i, tt.line)
		}
		if tt.want == "" {
			if out.Len() != 0 {
				t.Fatalf("tests[%d] - %q: expected no output, got %q", i, tt.line, out.String())
			}
			continue
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Fatalf("tests[%d] - %q: expected %q in %q", i, tt.line, tt.want, out.String())
		}
	}
}

func TestConsoleQuit(t *testing.T) {
	c, _ := counterConsole(t)
	for i, line := range []string{"quit", "exit", "  quit  "} {
		if !c.Exec(line) {
			t.Fatalf("tests[%d] - %q should quit", i, line)
		}
	}
	if c.Exec("") {
		t.Fatalf("empty line should not quit")
	}
}

func TestComplete(t *testing.T) {
	got := complete("re")
	if len(got) != 2 || got[0] != "reset" || got[1] != "reload" {
		t.Fatalf("unexpected completions %v", got)
	}
}
