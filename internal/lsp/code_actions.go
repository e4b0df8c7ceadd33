package lsp

import (
	"fmt"
	"strings"

	"blocks/internal/lint"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// MakeRemoveLineAction deletes the whole line r starts on. Flow-style block
// definitions fit on one line, so this removes the block.
func MakeRemoveLineAction(uri string, text string, r protocol.Range, title string) (protocol.CodeAction, bool) {
	lines := splitLines(text)
	startLine := int(r.Start.Line)
	if startLine < 0 || startLine >= len(lines) {
		return protocol.CodeAction{}, false
	}
	// a block-style mapping spans several lines; leave it alone
	if !strings.HasSuffix(strings.TrimSpace(lines[startLine]), "}") {
		return protocol.CodeAction{}, false
	}

	endLine := startLine
	endChar := uint32(utf16Len(lines[startLine]))
	if startLine+1 < len(lines) {
		endLine = startLine + 1
		endChar = 0
	}

	edit := protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			protocol.DocumentUri(uri): {
				{
					Range: protocol.Range{
						Start: protocol.Position{Line: uint32(startLine), Character: 0},
						End:   protocol.Position{Line: uint32(endLine), Character: endChar},
					},
					NewText: "",
				},
			},
		},
	}

	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title: title,
		Kind:  &kind,
		Edit:  &edit,
	}, true
}

// CodeActions offers quick fixes for the given diagnostics.
func CodeActions(uri, text string, diags []protocol.Diagnostic) []protocol.CodeAction {
	actions := make([]protocol.CodeAction, 0)
	for _, d := range diags {
		switch diagnosticCode(d) {
		case lint.CodeUnusedBlock:
			if action, ok := MakeRemoveLineAction(uri, text, d.Range, "Remove unused block"); ok {
				actions = append(actions, action)
			}
		}
	}
	return actions
}

func diagnosticCode(d protocol.Diagnostic) string {
	if d.Code == nil {
		return ""
	}
	switch v := d.Code.Value.(type) {
	case string:
		return v
	case protocol.Integer:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}
