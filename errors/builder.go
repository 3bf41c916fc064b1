package errors

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder enriches a specls error before it leaves a package. Hints reach the user
// twice: in the CLI through Format, and in the editor log channel through
// Format(err, PlainFormatterConfig()). Context pairs stay out of the one-line message and
// only appear in the verbose context table.
type ErrorBuilder struct {
	err       error
	hints     []string
	context   map[string]interface{}
	exitCode  *int
	sentinels []error
}

// Build starts from err, usually one of the sentinels in errors.go. A leaf err is kept as a
// mark so errors.Is(result, ErrX) holds after hints and context are layered on top.
func Build(err error) *ErrorBuilder {
	builder := &ErrorBuilder{err: err}

	if err != nil && errors.UnwrapOnce(err) == nil {
		builder.sentinels = append(builder.sentinels, err)
	}

	return builder
}

// WithHint adds a remedy shown under the message, e.g. "Use stdio, tcp or websocket".
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hints = append(b.hints, hint)
	return b
}

// WithHintf is WithHint with formatting.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.hints = append(b.hints, fmt.Sprintf(format, args...))
	return b
}

// WithExplanation attaches detail that is printed only with the full chain in verbose mode.
func (b *ErrorBuilder) WithExplanation(explanation string) *ErrorBuilder {
	b.err = errors.WithDetail(b.err, explanation)
	return b
}

// WithContext records key=value as a safe detail. Values must not contain spaces; URIs are
// percent-encoded and qualify.
func (b *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	if b.context == nil {
		b.context = make(map[string]interface{})
	}
	b.context[key] = value
	return b
}

// WithConfiguration records the configuration document a failure belongs to.
func (b *ErrorBuilder) WithConfiguration(configURI string) *ErrorBuilder {
	return b.WithContext("configuration", configURI)
}

// WithDocument records the document a failure belongs to.
func (b *ErrorBuilder) WithDocument(docURI string) *ErrorBuilder {
	return b.WithContext("uri", docURI)
}

// WithExitCode overrides the exit code GetExitCode derives for the CLI.
func (b *ErrorBuilder) WithExitCode(code int) *ErrorBuilder {
	b.exitCode = &code
	return b
}

// WithSentinel marks a wrapped error with a sentinel, for errors that did not start as one.
func (b *ErrorBuilder) WithSentinel(sentinel error) *ErrorBuilder {
	b.sentinels = append(b.sentinels, sentinel)
	return b
}

// Err returns the enriched error, or nil when Build was given nil.
func (b *ErrorBuilder) Err() error {
	if b.err == nil {
		return nil
	}

	err := b.err

	for _, hint := range b.hints {
		err = errors.WithHint(err, hint)
	}

	if len(b.context) > 0 {
		var formatParts []string
		var safeValues []interface{}
		for _, key := range slices.Sorted(maps.Keys(b.context)) {
			formatParts = append(formatParts, key+"=%s")
			safeValues = append(safeValues, errors.Safe(b.context[key]))
		}

		err = errors.WithSafeDetails(err, strings.Join(formatParts, " "), safeValues...)
	}

	// Sentinels go on last so they sit at the top of the chain.
	for _, sentinel := range b.sentinels {
		err = errors.Mark(err, sentinel)
	}

	if b.exitCode != nil {
		err = WithExitCode(err, *b.exitCode)
	}

	return err
}
