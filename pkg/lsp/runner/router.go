package runner

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/engine"
)

// route sends debug, verbose, information and fatal messages to the log channel and
// turns hint, warning and error messages into diagnostics.
func (c *Controller) route(msg engine.Message) {
	switch msg.Channel {
	case engine.ChannelDebug:
		c.cfg.Log.Debug(msg.Text)
	case engine.ChannelVerbose:
		c.cfg.Log.Verbose(msg.Text)
	case engine.ChannelInformation:
		c.cfg.Log.Log(msg.Text)
	case engine.ChannelFatal:
		c.cfg.Log.Error(msg.Text)
	case engine.ChannelHint:
		c.pushDiagnostic(msg, protocol.DiagnosticSeverityHint)
	case engine.ChannelWarning:
		c.pushDiagnostic(msg, protocol.DiagnosticSeverityWarning)
	case engine.ChannelError:
		c.pushDiagnostic(msg, protocol.DiagnosticSeverityError)
	default:
		log.Debug("Dropping message on unknown channel", "channel", msg.Channel, "text", msg.Text)
	}
}

// pushDiagnostic pushes one diagnostic per source range of msg.
func (c *Controller) pushDiagnostic(msg engine.Message, severity protocol.DiagnosticSeverity) {
	text := msg.Text + c.moreInfo(msg)
	source := strings.Join(msg.Key, "/")

	for _, rng := range msg.Ranges {
		if rng.Document == "" {
			continue
		}
		sev := severity
		src := source
		c.cfg.Diagnostics.Collection(rng.Document).Push(protocol.Diagnostic{
			Range: protocol.Range{
				Start: toProtocolPosition(rng.Start),
				End:   toProtocolPosition(rng.End),
			},
			Severity: &sev,
			Source:   &src,
			Message:  text,
		}, true)
	}
}

// moreInfo returns the documentation pointer for a rule key {id, name} of a documented plugin.
func (c *Controller) moreInfo(msg engine.Message) string {
	if c.cfg.RuleDocs == nil || len(msg.Key) < 2 {
		return ""
	}
	url, ok := c.cfg.RuleDocs()[msg.Plugin]
	if !ok || url == "" {
		return ""
	}
	return "\n More info: " + url + "#" + strings.ToLower(msg.Key[1]) + "-" + strings.ToLower(msg.Key[0]) + "\n"
}

// toProtocolPosition converts a 1-based engine line to a 0-based editor line.
func toProtocolPosition(pos engine.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(max(pos.Line-1, 0)),
		Character: protocol.UInteger(max(pos.Column, 0)),
	}
}
