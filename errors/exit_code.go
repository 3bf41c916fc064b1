package errors

import (
	"os"

	"github.com/cockroachdb/errors"
)

// OsExit is a variable for testing, so we can mock os.Exit.
var OsExit = os.Exit

// exitCoder wraps an error and specifies an exit code.
type exitCoder struct {
	cause error
	code  int
}

func (e *exitCoder) Error() string {
	return e.cause.Error()
}

func (e *exitCoder) Cause() error {
	return e.cause
}

func (e *exitCoder) Unwrap() error {
	return e.cause
}

// ExitCode returns the exit code.
func (e *exitCoder) ExitCode() int {
	return e.code
}

// WithExitCode attaches an exit code to an error.
// The exit code can be retrieved later using GetExitCode.
func WithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &exitCoder{
		cause: err,
		code:  code,
	}
}

// Exit codes of the specls binary.
const (
	ExitCodeFailure = 1
	// ExitCodeUsage reports configuration or flag errors.
	ExitCodeUsage = 2
)

// usageErrors are the sentinels that mean the server was started with a bad configuration.
var usageErrors = []error{ErrLoadConfig, ErrInvalidLogLevel, ErrUnsupportedTransport}

// GetExitCode extracts the exit code from an error chain.
// An attached exit code wins; configuration and flag errors map to ExitCodeUsage; anything
// else is ExitCodeFailure. A nil error is 0.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ec *exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	for _, sentinel := range usageErrors {
		if errors.Is(err, sentinel) {
			return ExitCodeUsage
		}
	}

	return ExitCodeFailure
}
