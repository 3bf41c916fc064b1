package server

import (
	"context"

	"github.com/spf13/afero"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspServer "github.com/tliron/glsp/server"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/config"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/dispatcher"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/schema"
)

// Name identifies the server to clients.
const Name = "specls"

// Server represents the specls language server.
type Server struct {
	server     *glspServer.Server
	handler    *Handler
	dispatcher *dispatcher.Dispatcher
	config     schema.Configuration
	ctx        context.Context
}

// NewServer creates a new language server running engines built by factory over fs.
func NewServer(ctx context.Context, cfg schema.Configuration, factory engine.Factory, fs afero.Fs) (*Server, error) {
	notifier := &clientNotifier{}
	d, err := dispatcher.New(ctx, dispatcher.Options{
		Config:   cfg,
		Factory:  factory,
		Fs:       fs,
		Notifier: notifier,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		dispatcher: d,
		config:     cfg,
		ctx:        ctx,
	}

	// Create handler.
	handler := NewHandler(ctx, d, notifier)
	s.handler = handler

	// Create GLSP server.
	glspHandler := protocol.Handler{
		Initialize:                      handler.Initialize,
		Initialized:                     handler.Initialized,
		Shutdown:                        handler.Shutdown,
		SetTrace:                        handler.SetTrace,
		TextDocumentDidOpen:             handler.TextDocumentDidOpen,
		TextDocumentDidChange:           handler.TextDocumentDidChange,
		TextDocumentDidSave:             handler.TextDocumentDidSave,
		TextDocumentDidClose:            handler.TextDocumentDidClose,
		TextDocumentHover:               handler.TextDocumentHover,
		TextDocumentDefinition:          handler.TextDocumentDefinition,
		WorkspaceDidChangeConfiguration: handler.WorkspaceDidChangeConfiguration,
		WorkspaceDidChangeWatchedFiles:  handler.WorkspaceDidChangeWatchedFiles,
	}

	s.server = glspServer.NewServer(newCustomHandler(ctx, &glspHandler, handler.Requests()), Name, cfg.Server.Trace)

	return s, nil
}

// Run serves the configured transport until it fails or the connection ends.
func (s *Server) Run() error {
	transport := s.config.Server.Transport
	address := s.config.Server.Address
	if address == "" {
		address = config.DefaultAddress
	}

	log.Debug("Starting language server", "transport", transport, "address", address)
	switch transport {
	case "", config.TransportStdio:
		return s.RunStdio()
	case config.TransportTCP:
		return s.RunTCP(address)
	case config.TransportWebSocket:
		return s.RunWebSocket(address)
	default:
		return errUtils.Build(errUtils.ErrUnsupportedTransport).
			WithContext("transport", transport).
			WithHintf("Use one of %s, %s or %s", config.TransportStdio, config.TransportTCP, config.TransportWebSocket).
			Err()
	}
}

// RunStdio runs the LSP server using stdio transport.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

// RunTCP runs the LSP server using TCP transport.
func (s *Server) RunTCP(address string) error {
	return s.server.RunTCP(address)
}

// RunWebSocket runs the LSP server using WebSocket transport.
func (s *Server) RunWebSocket(address string) error {
	return s.server.RunWebSocket(address)
}

// Shutdown cancels every run in flight.
func (s *Server) Shutdown() error {
	s.dispatcher.Shutdown()
	return nil
}

// GetHandler returns the server's handler.
func (s *Server) GetHandler() *Handler {
	return s.handler
}

// Dispatcher returns the event dispatcher of the server.
func (s *Server) Dispatcher() *dispatcher.Dispatcher {
	return s.dispatcher
}
