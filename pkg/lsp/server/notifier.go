package server

import (
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	log "github.com/cloudposse/specls/pkg/logger"
)

// MethodStatus is the notification carrying the server status text.
const MethodStatus = "status"

// clientNotifier sends server initiated notifications over the connection that
// initialized the server. Notifications before initialize are dropped.
type clientNotifier struct {
	mu     sync.RWMutex
	notify glsp.NotifyFunc
}

func (n *clientNotifier) attach(notify glsp.NotifyFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notify = notify
}

func (n *clientNotifier) send(method string, params any) {
	n.mu.RLock()
	notify := n.notify
	n.mu.RUnlock()

	if notify == nil {
		log.Trace("Dropping notification, no client attached", "method", method)
		return
	}
	notify(method, params)
}

func (n *clientNotifier) PublishDiagnostics(uri string, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	n.send(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (n *clientNotifier) LogMessage(kind protocol.MessageType, text string) {
	n.send(protocol.ServerWindowLogMessage, protocol.LogMessageParams{
		Type:    kind,
		Message: text,
	})
}

func (n *clientNotifier) Status(text string) {
	n.send(MethodStatus, text)
}
