package main

import (
	"flag"

	"blocks/internal/lsp"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const (
	lsName  = "blocks-lsp"
	version = "0.1"
)

var (
	store   = lsp.NewStore()
	handler protocol.Handler
	log     = commonlog.GetLogger("blocks.lsp")
)

func main() {
	verbose := flag.Int("v", 1, "log verbosity")
	logFile := flag.String("log", "", "log to file instead of stderr")
	flag.Parse()

	var path *string
	if *logFile != "" {
		path = logFile
	}
	commonlog.Configure(*verbose, path)

	handler = protocol.Handler{
		Initialize:                 initialize,
		Initialized:                initialized,
		Shutdown:                   shutdown,
		TextDocumentDidOpen:        textDocumentDidOpen,
		TextDocumentDidChange:      textDocumentDidChange,
		TextDocumentDidSave:        textDocumentDidSave,
		TextDocumentDidClose:       textDocumentDidClose,
		TextDocumentCodeAction:     textDocumentCodeAction,
		TextDocumentFormatting:     textDocumentFormatting,
		TextDocumentDefinition:     textDocumentDefinition,
		TextDocumentDocumentSymbol: textDocumentDocumentSymbol,
		TextDocumentHover:          textDocumentHover,
		TextDocumentReferences:     textDocumentReferences,
	}

	server := server.NewServer(&handler, lsName, false)
	if err := server.RunStdio(); err != nil {
		log.Errorf("server stopped: %s", err)
	}
}

func initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	full := protocol.TextDocumentSyncKindFull
	caps := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &protocol.True,
			Change:    &full,
			Save:      protocol.SaveOptions{IncludeText: &protocol.False},
		},
		CodeActionProvider: protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
		},
		DocumentFormattingProvider: true,
		DefinitionProvider:         true,
		DocumentSymbolProvider:     true,
		HoverProvider:              true,
		ReferencesProvider:         true,
	}
	log.Infof("initialized %s %s", lsName, version)

	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: ptrString(version),
		},
	}, nil
}

func initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	return update(ctx, uri, params.TextDocument.Text)
}

func textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if len(params.ContentChanges) == 0 {
		return nil
	}

	text, ok := extractFullText(params.ContentChanges[len(params.ContentChanges)-1])
	if !ok {
		return nil
	}
	return update(ctx, uri, text)
}

func textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if text, ok := store.Get(uri); ok {
		return update(ctx, uri, text)
	}
	return nil
}

func textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	store.Delete(uri)
	publish(ctx, uri, []protocol.Diagnostic{})
	return nil
}

func textDocumentCodeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	text, ok := store.Get(uri)
	if !ok {
		return nil, nil
	}
	actions := lsp.CodeActions(uri, text, params.Context.Diagnostics)
	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

func textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	text, ok := store.Get(uri)
	if !ok {
		return nil, nil
	}
	a, _ := store.Analysis(uri)
	if locs := lsp.DefinitionAt(a, text, params.Position); len(locs) > 0 {
		return locs, nil
	}
	return nil, nil
}

func textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	a, ok := store.Analysis(string(params.TextDocument.URI))
	if !ok {
		return []protocol.DocumentSymbol{}, nil
	}
	return a.Index.Symbols, nil
}

func textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := string(params.TextDocument.URI)
	text, ok := store.Get(uri)
	if !ok {
		return nil, nil
	}
	a, _ := store.Analysis(uri)
	return lsp.HoverAt(a, text, params.Position), nil
}

func textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := string(params.TextDocument.URI)
	text, ok := store.Get(uri)
	if !ok {
		return nil, nil
	}
	a, _ := store.Analysis(uri)
	return lsp.ReferencesAt(a, uri, text, params.Position, params.Context.IncludeDeclaration), nil
}

func update(ctx *glsp.Context, uri, text string) error {
	if !lsp.IsProgramURI(uri) {
		publish(ctx, uri, []protocol.Diagnostic{})
		return nil
	}
	a := store.Set(uri, text)
	log.Debugf("analyzed %s: %d diagnostics", uri, len(a.Diagnostics))
	publish(ctx, uri, lsp.ToLspDiagnostics(a.Diagnostics))
	return nil
}

func publish(ctx *glsp.Context, uri string, diags []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: diags,
	})
}

func extractFullText(change any) (string, bool) {
	switch typed := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return typed.Text, true
	case protocol.TextDocumentContentChangeEvent:
		return typed.Text, true
	default:
		return "", false
	}
}

func ptrString(s string) *string { return &s }
