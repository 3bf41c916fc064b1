package dispatcher

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	log "github.com/cloudposse/specls/pkg/logger"
)

// logSink forwards run output to the editor log channel. Debug and verbose text is only
// forwarded when the client asked for it; everything is mirrored to the server log.
type logSink struct {
	d *Dispatcher
}

func (s logSink) Debug(text string) {
	log.Debug(text)
	if s.d.Settings().Debug {
		s.d.logMessage(protocol.MessageTypeLog, text)
	}
}

func (s logSink) Verbose(text string) {
	log.Trace(text)
	if s.d.Settings().Verbose {
		s.d.logMessage(protocol.MessageTypeLog, text)
	}
}

func (s logSink) Log(text string) {
	log.Info(text)
	s.d.logMessage(protocol.MessageTypeInfo, text)
}

func (s logSink) Error(text string) {
	log.Error(text)
	s.d.logMessage(protocol.MessageTypeError, text)
}
