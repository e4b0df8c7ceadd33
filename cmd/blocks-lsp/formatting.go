package main

import (
	"blocks/internal/lsp"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	uri := string(params.TextDocument.URI)
	if !lsp.IsProgramURI(uri) {
		return []protocol.TextEdit{}, nil
	}
	text, ok := store.Get(uri)
	if !ok {
		return []protocol.TextEdit{}, nil
	}
	return lsp.FormatEdits(text), nil
}
