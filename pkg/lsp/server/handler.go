package server

import (
	contextpkg "context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/dispatcher"
	"github.com/cloudposse/specls/pkg/lsp/uri"
	"github.com/cloudposse/specls/pkg/version"
)

// Handler implements the editor protocol methods on top of the dispatcher.
type Handler struct {
	ctx        contextpkg.Context
	dispatcher *dispatcher.Dispatcher
	notifier   *clientNotifier
}

// NewHandler creates a handler. Requests are served in ctx.
func NewHandler(ctx contextpkg.Context, d *dispatcher.Dispatcher, notifier *clientNotifier) *Handler {
	return &Handler{
		ctx:        ctx,
		dispatcher: d,
		notifier:   notifier,
	}
}

// Capabilities returns the capabilities announced on initialize.
func Capabilities() protocol.ServerCapabilities {
	return protocol.ServerCapabilities{
		TextDocumentSync:   protocol.TextDocumentSyncKindFull,
		HoverProvider:      true,
		DefinitionProvider: true,
	}
}

// Initialize handles the initialize request.
func (h *Handler) Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if context.Notify != nil {
		h.notifier.attach(context.Notify)
	}

	root := ""
	switch {
	case params.RootURI != nil && *params.RootURI != "":
		root = *params.RootURI
	case params.RootPath != nil && *params.RootPath != "":
		root = uri.FromPath(*params.RootPath)
	}
	log.Debug("Initializing", "root", root)
	h.dispatcher.Initialize(root)

	return protocol.InitializeResult{
		Capabilities: Capabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &version.Version,
		},
	}, nil
}

// Initialized handles the initialized notification.
func (h *Handler) Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

// Shutdown handles the shutdown request.
func (h *Handler) Shutdown(context *glsp.Context) error {
	h.dispatcher.Shutdown()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

// SetTrace handles the $/setTrace notification.
func (h *Handler) SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen handles the textDocument/didOpen notification.
func (h *Handler) TextDocumentDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	h.dispatcher.Opened(doc.URI, doc.LanguageID, doc.Version, doc.Text)
	return nil
}

// TextDocumentDidChange handles the textDocument/didChange notification. Only full
// document sync is announced, so the last whole-text change wins.
func (h *Handler) TextDocumentDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	text, ok := "", false
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text, ok = c.Text, true
		case protocol.TextDocumentContentChangeEvent:
			log.Debug("Ignoring incremental change", "uri", params.TextDocument.URI)
		}
	}
	if !ok {
		return nil
	}

	h.dispatcher.Changed(params.TextDocument.URI, params.TextDocument.Version, text)
	return nil
}

// TextDocumentDidSave handles the textDocument/didSave notification.
func (h *Handler) TextDocumentDidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	h.dispatcher.Saved(params.TextDocument.URI)
	return nil
}

// TextDocumentDidClose handles the textDocument/didClose notification.
func (h *Handler) TextDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.dispatcher.Closed(params.TextDocument.URI)
	return nil
}

// WorkspaceDidChangeConfiguration handles the workspace/didChangeConfiguration notification.
func (h *Handler) WorkspaceDidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	if err := h.dispatcher.SettingsChanged(params.Settings); err != nil {
		log.Warn("Ignoring client settings", "error", err)
	}
	return nil
}

// WorkspaceDidChangeWatchedFiles handles the workspace/didChangeWatchedFiles notification.
func (h *Handler) WorkspaceDidChangeWatchedFiles(context *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	uris := make([]string, 0, len(params.Changes))
	for _, change := range params.Changes {
		uris = append(uris, change.URI)
	}
	h.dispatcher.FilesChanged(uris)
	return nil
}

// TextDocumentHover handles the textDocument/hover request.
func (h *Handler) TextDocumentHover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	hover, err := h.dispatcher.Hover(h.ctx, params.TextDocument.URI, params.Position)
	if err != nil {
		log.Debug("Hover unavailable", "uri", params.TextDocument.URI, "error", err)
		return nil, nil
	}
	return hover, nil
}

// TextDocumentDefinition handles the textDocument/definition request.
func (h *Handler) TextDocumentDefinition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	locations, err := h.dispatcher.Definition(h.ctx, params.TextDocument.URI, params.Position)
	if err != nil {
		log.Debug("Definition unavailable", "uri", params.TextDocument.URI, "error", err)
		return []protocol.Location{}, nil
	}
	return locations, nil
}
