package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	charm "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	logging "gopkg.in/op/go-logging.v1"

	errUtils "github.com/cloudposse/specls/errors"
)

func TestTraceLevel_RelativeToDebug(t *testing.T) {
	assert.Equal(t, charm.DebugLevel-1, TraceLevel)
	assert.Less(t, int(TraceLevel), int(charm.DebugLevel))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		hasError bool
	}{
		{"", LogLevelInfo, false},
		{"Trace", LogLevelTrace, false},
		{"debug", LogLevelDebug, false},
		{"Info", LogLevelInfo, false},
		{"WARNING", LogLevelWarning, false},
		{"Error", LogLevelError, false},
		{"Off", LogLevelOff, false},
		{"verbose", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.hasError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errUtils.ErrInvalidLogLevel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogger_TraceVisibility(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf)

	l.SetLevel(TraceLevel)
	l.Trace("trace message", "key", "value")
	assert.Contains(t, buf.String(), "trace message")
	assert.Contains(t, buf.String(), "value")

	buf.Reset()
	l.SetLevel(charm.DebugLevel)
	l.Trace("hidden")
	assert.Empty(t, buf.String())
}

func TestLogger_GetLevelString(t *testing.T) {
	l := New()

	l.SetLevel(TraceLevel)
	assert.Equal(t, "trace", l.GetLevelString())

	l.SetLevel(charm.DebugLevel)
	assert.Equal(t, "debug", l.GetLevelString())

	l.SetLevel(OffLevel)
	assert.Equal(t, "off", l.GetLevelString())
}

func TestPackageLevelFunctions(t *testing.T) {
	oldLogger := Default()
	defer SetDefault(oldLogger)

	var buf bytes.Buffer
	testLogger := NewWithOutput(&buf)
	testLogger.SetLevel(TraceLevel)
	SetDefault(testLogger)

	Trace("package level trace")
	Debug("package level debug")
	Warn("package level warn")
	Errorf("formatted %d", 42)

	out := buf.String()
	assert.Contains(t, out, "package level trace")
	assert.Contains(t, out, "package level debug")
	assert.Contains(t, out, "package level warn")
	assert.Contains(t, out, "formatted 42")
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	current := Default()
	SetDefault(nil)
	assert.Same(t, current, Default())
}

func TestConfigure(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "specls.log")

		l, closer, err := Configure("Debug", logFile)
		require.NoError(t, err)
		l.Debug("written to file")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "written to file")
	})

	t.Run("stdout refused", func(t *testing.T) {
		_, _, err := Configure("Info", "/dev/stdout")
		assert.Error(t, err)
	})

	t.Run("bad level", func(t *testing.T) {
		_, _, err := Configure("loud", "")
		assert.Error(t, err)
	})

	t.Run("stderr", func(t *testing.T) {
		l, closer, err := Configure("Warning", "")
		require.NoError(t, err)
		assert.Equal(t, charm.WarnLevel, l.GetLevel())
		assert.NoError(t, closer.Close())
	})
}

func TestGoLoggingBackend(t *testing.T) {
	oldLogger := Default()
	defer SetDefault(oldLogger)

	var buf bytes.Buffer
	testLogger := NewWithOutput(&buf)
	testLogger.SetLevel(TraceLevel)
	SetDefault(testLogger)

	backend := NewGoLoggingBackend(logging.WARNING)
	assert.True(t, backend.IsEnabledFor(logging.ERROR, "yq-lib"))
	assert.False(t, backend.IsEnabledFor(logging.DEBUG, "yq-lib"))

	backend.SetLevel(logging.DEBUG, "")
	assert.Equal(t, logging.DEBUG, backend.GetLevel(""))
}
