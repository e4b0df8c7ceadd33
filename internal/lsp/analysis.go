package lsp

import (
	"errors"

	"blocks/internal/diag"
	"blocks/internal/library"
	"blocks/internal/lint"
	"blocks/internal/module"
)

// CodeDocument marks problems that stop a document from decoding at all.
const CodeDocument = "BL0000"

// Analysis is everything the server knows about one open document.
type Analysis struct {
	URI         string
	Doc         *module.Document // nil when decoding failed
	Diagnostics []diag.Diagnostic
	Index       *DocIndex
}

func Analyze(uri, text string) *Analysis {
	a := &Analysis{URI: uri, Index: emptyIndex()}
	doc, err := module.Parse([]byte(text))
	if err != nil {
		a.Diagnostics = []diag.Diagnostic{decodeDiagnostic(err)}
		return a
	}
	a.Doc = doc
	a.Index = BuildIndex(uri, doc)

	var libs []library.Library
	if libs, err = doc.Libs(); err != nil {
		a.Diagnostics = append(a.Diagnostics, diag.Diagnostic{
			Code:     CodeDocument,
			Message:  err.Error(),
			Severity: diag.SeverityError,
			Range:    diag.Range{Line: 1, Col: 1, Length: 1},
		})
		libs = nil
	}
	lints := lint.Run(doc.Program, libs...)
	diag.Locate(lints, Locator(doc))
	a.Diagnostics = append(a.Diagnostics, lints...)
	diag.Sort(a.Diagnostics)
	return a
}

// Locator finds lint subjects in doc.
func Locator(doc *module.Document) diag.Locator {
	return func(s diag.Subject) (int, int, bool) {
		p, ok := doc.Pos(module.EntityKind(s.Kind), s.ID)
		return p.Line, p.Col, ok
	}
}

func decodeDiagnostic(err error) diag.Diagnostic {
	d := diag.Diagnostic{
		Code:     CodeDocument,
		Message:  err.Error(),
		Severity: diag.SeverityError,
		Range:    diag.Range{Line: 1, Col: 1, Length: 1},
	}
	var de *module.DecodeError
	if errors.As(err, &de) {
		d.Message = de.Msg
		if de.Pos.Line > 0 {
			d.Range.Line, d.Range.Col = de.Pos.Line, de.Pos.Col
		}
	}
	return d
}
