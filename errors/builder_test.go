package errors

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestBuild_SentinelIsPreserved(t *testing.T) {
	err := Build(ErrInvalidURI).
		WithHint("Use a file:// URI").
		WithContext("uri", "c:/foo").
		Err()

	assert.True(t, errors.Is(err, ErrInvalidURI))
	assert.Contains(t, errors.GetAllHints(err), "Use a file:// URI")
}

func TestBuild_WithSentinelOnWrappedError(t *testing.T) {
	base := errors.Wrap(errors.New("boom"), "reading config")
	err := Build(base).WithSentinel(ErrLoadConfig).Err()

	assert.True(t, errors.Is(err, ErrLoadConfig))
	assert.Contains(t, err.Error(), "boom")
}

func TestBuild_NilError(t *testing.T) {
	assert.NoError(t, Build(nil).WithHint("ignored").Err())
}

func TestBuild_DocumentContext(t *testing.T) {
	err := Build(ErrInvalidConfiguration).
		WithConfiguration("file:///ws/readme.md").
		WithDocument("file:///ws/pets.yaml").
		Err()

	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Equal(t, "invalid configuration document", err.Error())

	out := Format(err, FormatterConfig{Verbose: true, Color: "never"})
	assert.Contains(t, out, "configuration")
	assert.Contains(t, out, "file:///ws/readme.md")
	assert.Contains(t, out, "file:///ws/pets.yaml")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("x"), want: 1},
		{name: "attached code", err: WithExitCode(errors.New("x"), 3), want: 3},
		{name: "builder code", err: Build(ErrReadFile).WithExitCode(5).Err(), want: 5},
		{name: "load config", err: errors.Mark(errors.New("bad yaml"), ErrLoadConfig), want: ExitCodeUsage},
		{name: "unsupported transport", err: Build(ErrUnsupportedTransport).WithHint("use stdio").Err(), want: ExitCodeUsage},
		{name: "attached code beats usage", err: Build(ErrInvalidLogLevel).WithExitCode(7).Err(), want: 7},
		{name: "wrapped attached code", err: errors.Wrap(WithExitCode(errors.New("x"), 4), "outer"), want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}
