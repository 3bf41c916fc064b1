package logger

import (
	logging "gopkg.in/op/go-logging.v1"
)

// goLoggingBackend adapts go-logging records (used by yq) to the default logger.
// Library chatter is always demoted to trace level.
type goLoggingBackend struct {
	level logging.Level
}

// NewGoLoggingBackend returns a go-logging backend that forwards records at or above level.
func NewGoLoggingBackend(level logging.Level) logging.LeveledBackend {
	return &goLoggingBackend{level: level}
}

// Log implements logging.Backend.
func (b *goLoggingBackend) Log(level logging.Level, _ int, record *logging.Record) error {
	if !b.IsEnabledFor(level, record.Module) {
		return nil
	}
	Trace(record.Message(), "module", record.Module, "level", level.String())
	return nil
}

// GetLevel implements logging.Leveled.
func (b *goLoggingBackend) GetLevel(string) logging.Level {
	return b.level
}

// SetLevel implements logging.Leveled.
func (b *goLoggingBackend) SetLevel(level logging.Level, _ string) {
	b.level = level
}

// IsEnabledFor implements logging.Leveled. Lower go-logging levels are more severe.
func (b *goLoggingBackend) IsEnabledFor(level logging.Level, _ string) bool {
	return level <= b.level
}
