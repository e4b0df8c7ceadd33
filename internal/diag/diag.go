package diag

import (
	"fmt"
	"sort"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

type Range struct {
	Line   int // 1-based
	Col    int // 1-based
	Length int // best-effort; can be 1 if unknown
}

// Subject is the program entity a diagnostic is about, e.g. {"block", "b7"}.
type Subject struct {
	Kind string
	ID   string
}

func (s Subject) String() string {
	if s.Kind == "" {
		return "program"
	}
	return s.Kind + " " + s.ID
}

type Diagnostic struct {
	Code     string
	Message  string
	Severity Severity
	Subject  Subject
	Range    Range
}

func (d Diagnostic) Format(path string) string {
	if d.Code != "" {
		return fmt.Sprintf("%s:%d:%d: %s %s: %s", path, d.Range.Line, d.Range.Col, d.Severity.String(), d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", path, d.Range.Line, d.Range.Col, d.Severity.String(), d.Message)
}

// Locator maps a subject to its source position.
type Locator func(Subject) (line, col int, ok bool)

// Locate fills in ranges from loc. Unknown subjects point at 1:1.
func Locate(diags []Diagnostic, loc Locator) {
	for i := range diags {
		d := &diags[i]
		line, col, ok := loc(d.Subject)
		if !ok {
			line, col = 1, 1
		}
		length := len(d.Subject.ID)
		if length == 0 {
			length = 1
		}
		d.Range = Range{Line: line, Col: col, Length: length}
	}
}

// Sort orders diagnostics by position, then code.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Range.Line != b.Range.Line {
			return a.Range.Line < b.Range.Line
		}
		if a.Range.Col != b.Range.Col {
			return a.Range.Col < b.Range.Col
		}
		return a.Code < b.Code
	})
}

func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
