package lsp

import (
	"blocks/internal/diag"
	"blocks/internal/lint"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagnosticSource = "blocks"

var lspSeverity = map[diag.Severity]protocol.DiagnosticSeverity{
	diag.SeverityError:   protocol.DiagnosticSeverityError,
	diag.SeverityWarning: protocol.DiagnosticSeverityWarning,
	diag.SeverityInfo:    protocol.DiagnosticSeverityInformation,
}

// lspPosition converts a 1-based document line and column. Anything below
// 1 clamps to the start of the document.
func lspPosition(line, col int) protocol.Position {
	return protocol.Position{Line: uint32(max(line-1, 0)), Character: uint32(max(col-1, 0))}
}

// subjectRange covers the entity id a diagnostic was located at. Program
// level diagnostics have no id and mark a single character.
func subjectRange(d diag.Diagnostic) protocol.Range {
	start := lspPosition(d.Range.Line, d.Range.Col)
	width := utf16Len(d.Subject.ID)
	if width == 0 {
		width = max(d.Range.Length, 1)
	}
	end := protocol.Position{Line: start.Line, Character: start.Character + uint32(width)}
	return protocol.Range{Start: start, End: end}
}

// SubjectData is attached to every published diagnostic so code actions can
// find the entity without re-running lint.
type SubjectData struct {
	Kind string `json:"kind,omitempty"`
	ID   string `json:"id,omitempty"`
}

func ToLspDiagnostics(ds []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(ds))
	source := diagnosticSource
	for _, d := range ds {
		sev, ok := lspSeverity[d.Severity]
		if !ok {
			sev = protocol.DiagnosticSeverityHint
		}
		pd := protocol.Diagnostic{
			Range:    subjectRange(d),
			Severity: &sev,
			Source:   &source,
			Message:  d.Message,
			Data:     SubjectData{Kind: d.Subject.Kind, ID: d.Subject.ID},
		}
		if d.Code != "" {
			pd.Code = &protocol.IntegerOrString{Value: d.Code}
		}
		if d.Code == lint.CodeUnusedBlock {
			pd.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
		}
		out = append(out, pd)
	}
	return out
}
