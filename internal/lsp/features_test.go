package lsp

import (
	"strings"
	"testing"

	"blocks/internal/diag"
	"blocks/internal/lint"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testURI = "file:///work/hello.yaml"

const helloDoc = `asts:
  Main: [m1, m2]
blocks:
  m1: {kind: set, var: x, value: v1}
  v1: {kind: string, value: hi}
  m2: {kind: call, func: Print, args: {Value: v2}}
  v2: {kind: get, var: x}
  stray: {kind: string, value: unused}
`

func TestAnalyzeLocatesLintDiagnostics(t *testing.T) {
	a := Analyze(testURI, helloDoc)
	if a.Doc == nil {
		t.Fatalf("expected document to decode")
	}
	if len(a.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", a.Diagnostics)
	}
	d := a.Diagnostics[0]
	if d.Code != lint.CodeUnusedBlock || d.Range.Line != 8 || d.Range.Col != 3 || d.Range.Length != 5 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestAnalyzeDecodeError(t *testing.T) {
	a := Analyze(testURI, "blocks:\n  b1: {kind: loop}\n")
	if a.Doc != nil {
		t.Fatalf("expected decode failure")
	}
	if len(a.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", a.Diagnostics)
	}
	d := a.Diagnostics[0]
	if d.Code != CodeDocument || d.Range.Line != 2 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if strings.Contains(d.Message, "<document>") {
		t.Fatalf("message should not carry a file prefix: %q", d.Message)
	}
}

func TestWordAt(t *testing.T) {
	tests := []struct {
		text string
		char uint32
		want string
		ok   bool
	}{
		{"  m1: {kind: set, var: x, value: v1}", 34, "v1", true},
		{"  m1: {kind: set, var: x, value: v1}", 3, "m1", true},
		{"  Counter.inc: {ast: inc}", 5, "Counter.inc", true},
		{"  f: {kind: call, func: std:Integer.+}", 30, "std:Integer.+", true},
		{"  m1: {kind: set}", 0, "", false},
		{"  m1: {kind: set} # v9", 20, "", false},
	}
	for i, tt := range tests {
		got, _, ok := WordAt(tt.text, protocol.Position{Line: 0, Character: tt.char})
		if ok != tt.ok || got != tt.want {
			t.Fatalf("tests[%d] - expected (%q, %v), got (%q, %v)", i, tt.want, tt.ok, got, ok)
		}
	}
}

func TestDefinitionAndHover(t *testing.T) {
	a := Analyze(testURI, helloDoc)

	locs := DefinitionAt(a, helloDoc, protocol.Position{Line: 3, Character: 34})
	if len(locs) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locs))
	}
	if locs[0].Range.Start.Line != 4 || locs[0].Range.Start.Character != 2 {
		t.Fatalf("expected v1 at 4:2, got %+v", locs[0].Range.Start)
	}
	if string(locs[0].URI) != testURI {
		t.Fatalf("unexpected uri %q", locs[0].URI)
	}

	h := HoverAt(a, helloDoc, protocol.Position{Line: 3, Character: 3})
	if h == nil {
		t.Fatalf("expected hover")
	}
	mc, ok := h.Contents.(protocol.MarkupContent)
	if !ok || !strings.Contains(mc.Value, "set x <- v1") {
		t.Fatalf("unexpected hover %+v", h.Contents)
	}

	if h := HoverAt(a, helloDoc, protocol.Position{Line: 3, Character: 8}); h != nil {
		t.Fatalf("expected no hover on a field name")
	}
}

func TestReferences(t *testing.T) {
	a := Analyze(testURI, helloDoc)
	pos := protocol.Position{Line: 4, Character: 2}
	if got := ReferencesAt(a, testURI, helloDoc, pos, true); len(got) != 2 {
		t.Fatalf("expected 2 references, got %d", len(got))
	}
	got := ReferencesAt(a, testURI, helloDoc, pos, false)
	if len(got) != 1 || got[0].Range.Start.Line != 3 {
		t.Fatalf("expected the use on line 3, got %+v", got)
	}
}

func TestDocumentSymbols(t *testing.T) {
	a := Analyze(testURI, helloDoc)
	if len(a.Index.Symbols) != 6 {
		t.Fatalf("expected 6 symbols, got %d", len(a.Index.Symbols))
	}
	first := a.Index.Symbols[0]
	if first.Name != "Main" || first.Kind != protocol.SymbolKindArray {
		t.Fatalf("expected Main first, got %+v", first)
	}
	last := a.Index.Symbols[5]
	if last.Name != "stray" || last.Detail == nil || *last.Detail != `"unused"` {
		t.Fatalf("unexpected last symbol %+v", last)
	}
}

func TestFormatEditsStable(t *testing.T) {
	edits := FormatEdits(helloDoc)
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	if again := FormatEdits(edits[0].NewText); len(again) != 0 {
		t.Fatalf("formatted text should be canonical, got %d edits", len(again))
	}
	if got := FormatEdits("blocks: ["); len(got) != 0 {
		t.Fatalf("expected no edits for broken text")
	}
}

func TestRemoveUnusedBlockAction(t *testing.T) {
	a := Analyze(testURI, helloDoc)
	actions := CodeActions(testURI, helloDoc, ToLspDiagnostics(a.Diagnostics))
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	edits := actions[0].Edit.Changes[protocol.DocumentUri(testURI)]
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	r := edits[0].Range
	if r.Start.Line != 7 || r.End.Line != 8 || r.End.Character != 0 {
		t.Fatalf("unexpected range %+v", r)
	}
}

func TestToLspDiagnostics(t *testing.T) {
	a := Analyze(testURI, helloDoc)
	got := ToLspDiagnostics(append(a.Diagnostics, diag.Diagnostic{
		Code:     "BL0001",
		Message:  "no Main",
		Severity: diag.SeverityWarning,
	}))
	if len(got) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(got))
	}

	unused := got[0]
	want := protocol.Range{
		Start: protocol.Position{Line: 7, Character: 2},
		End:   protocol.Position{Line: 7, Character: 7},
	}
	if unused.Range != want {
		t.Fatalf("expected range %+v, got %+v", want, unused.Range)
	}
	if *unused.Severity != protocol.DiagnosticSeverityInformation || *unused.Source != "blocks" {
		t.Fatalf("unexpected severity or source: %+v", unused)
	}
	if len(unused.Tags) != 1 || unused.Tags[0] != protocol.DiagnosticTagUnnecessary {
		t.Fatalf("unused block should be tagged unnecessary, got %v", unused.Tags)
	}
	if data, ok := unused.Data.(SubjectData); !ok || data.Kind != "block" || data.ID != "stray" {
		t.Fatalf("unexpected data %+v", unused.Data)
	}

	program := got[1]
	if program.Range.Start != (protocol.Position{}) || program.Range.End.Character != 1 {
		t.Fatalf("program diagnostic should mark the first character, got %+v", program.Range)
	}
	if *program.Severity != protocol.DiagnosticSeverityWarning || len(program.Tags) != 0 {
		t.Fatalf("unexpected program diagnostic %+v", program)
	}
}

func TestIsProgramURI(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"file:///a/hello.yaml", true},
		{"file:///a/hello.YML", true},
		{"file:///a/blocks.yaml", false},
		{"file:///a/main.go", false},
	}
	for i, tt := range tests {
		if got := IsProgramURI(tt.uri); got != tt.want {
			t.Fatalf("tests[%d] - expected %v, got %v", i, tt.want, got)
		}
	}
}
