package diag

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{Diagnostic{Code: "BL0001", Message: "no Main", Severity: SeverityError, Range: Range{Line: 1, Col: 1}}, "p.yaml:1:1: error BL0001: no Main"},
		{Diagnostic{Message: "odd", Severity: SeverityWarning, Range: Range{Line: 3, Col: 5}}, "p.yaml:3:5: warning: odd"},
		{Diagnostic{Code: "BL0012", Message: "unused", Severity: SeverityInfo, Range: Range{Line: 2, Col: 3}}, "p.yaml:2:3: info BL0012: unused"},
	}
	for i, tt := range tests {
		if got := tt.d.Format("p.yaml"); got != tt.want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.want, got)
		}
	}
}

func TestLocateAndSort(t *testing.T) {
	diags := []Diagnostic{
		{Code: "B", Subject: Subject{Kind: "block", ID: "late"}},
		{Code: "A", Subject: Subject{}},
		{Code: "C", Subject: Subject{Kind: "block", ID: "early"}},
	}
	loc := func(s Subject) (int, int, bool) {
		switch s.ID {
		case "late":
			return 9, 3, true
		case "early":
			return 4, 3, true
		}
		return 0, 0, false
	}
	Locate(diags, loc)
	Sort(diags)

	want := []struct {
		code      string
		line, col int
		length    int
	}{
		{"A", 1, 1, 1},
		{"C", 4, 3, 5},
		{"B", 9, 3, 4},
	}
	for i, w := range want {
		d := diags[i]
		if d.Code != w.code || d.Range.Line != w.line || d.Range.Col != w.col || d.Range.Length != w.length {
			t.Fatalf("tests[%d] - expected %s at %d:%d len %d, got %+v", i, w.code, w.line, w.col, w.length, d)
		}
	}
	if !HasErrors(diags) {
		t.Fatalf("zero severity is an error")
	}
	if HasErrors([]Diagnostic{{Severity: SeverityInfo}}) {
		t.Fatalf("info diagnostics are not errors")
	}
}
