package logger

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	charm "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	errUtils "github.com/cloudposse/specls/errors"
)

// TraceLevel is one step more verbose than debug.
const TraceLevel = charm.DebugLevel - 1

// OffLevel silences every message.
const OffLevel = charm.Level(math.MaxInt32)

type LogLevel string

const (
	LogLevelOff     LogLevel = "Off"
	LogLevelTrace   LogLevel = "Trace"
	LogLevelDebug   LogLevel = "Debug"
	LogLevelInfo    LogLevel = "Info"
	LogLevelWarning LogLevel = "Warning"
	LogLevelError   LogLevel = "Error"
)

// ParseLogLevel converts a configured level name into a LogLevel. Empty means Info.
func ParseLogLevel(logLevel string) (LogLevel, error) {
	if logLevel == "" {
		return LogLevelInfo, nil
	}

	for _, candidate := range []LogLevel{LogLevelOff, LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError} {
		if strings.EqualFold(logLevel, string(candidate)) {
			return candidate, nil
		}
	}

	return LogLevelInfo, errUtils.Build(errUtils.ErrInvalidLogLevel).
		WithHintf("Supported log levels are Trace, Debug, Info, Warning, Error, Off (got %q)", logLevel).
		Err()
}

// CharmLevel maps a LogLevel to the charm logger level.
func (l LogLevel) CharmLevel() charm.Level {
	switch l {
	case LogLevelOff:
		return OffLevel
	case LogLevelTrace:
		return TraceLevel
	case LogLevelDebug:
		return charm.DebugLevel
	case LogLevelWarning:
		return charm.WarnLevel
	case LogLevelError:
		return charm.ErrorLevel
	default:
		return charm.InfoLevel
	}
}

// Logger wraps a charm logger and adds the trace level.
type Logger struct {
	*charm.Logger
}

// NewLogger wraps an existing charm logger.
func NewLogger(l *charm.Logger) *Logger {
	return &Logger{Logger: l}
}

// New creates a new Logger writing to stderr.
func New() *Logger {
	return NewWithOutput(os.Stderr)
}

// NewWithOutput creates a styled Logger writing to w.
func NewWithOutput(w io.Writer) *Logger {
	l := charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: false,
		Level:           charm.InfoLevel,
	})
	l.SetStyles(getLogStyles())
	return NewLogger(l)
}

// Trace logs at trace level.
func (l *Logger) Trace(msg interface{}, keyvals ...interface{}) {
	l.Log(TraceLevel, msg, keyvals...)
}

// Tracef logs a formatted message at trace level.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.Log(TraceLevel, fmt.Sprintf(format, args...))
}

// GetLevelString returns the current level name in lower case.
func (l *Logger) GetLevelString() string {
	switch level := l.GetLevel(); {
	case level == OffLevel:
		return "off"
	case level <= TraceLevel:
		return "trace"
	default:
		return strings.ToLower(level.String())
	}
}

// Configure builds a Logger for the given level and destination file.
// An empty file or /dev/stderr logs to stderr. Stdout is refused because the stdio transport owns it.
// The returned closer must be closed when logging is no longer needed.
func Configure(level string, file string) (*Logger, io.Closer, error) {
	logLevel, err := ParseLogLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	switch file {
	case "", "/dev/stderr":
	case "/dev/stdout":
		return nil, nil, errUtils.Build(errUtils.ErrLoadConfig).
			WithHint("Logging to stdout would corrupt the stdio transport; use a file or /dev/stderr").
			Err()
	default:
		f, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "opening log file %s", file)
		}
		out = f
		closer = f
	}

	l := NewWithOutput(out)
	l.SetLevel(logLevel.CharmLevel())
	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// getLogStyles returns the level label styles.
func getLogStyles() *charm.Styles {
	styles := charm.DefaultStyles()

	styles.Levels[TraceLevel] = lipgloss.NewStyle().
		SetString("TRCE").
		Foreground(lipgloss.Color("8"))
	styles.Levels[charm.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBU").
		Foreground(lipgloss.Color("12"))
	styles.Levels[charm.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("10"))
	styles.Levels[charm.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("11"))
	styles.Levels[charm.ErrorLevel] = lipgloss.NewStyle().
		SetString("EROR").
		Foreground(lipgloss.Color("9"))

	return styles
}
