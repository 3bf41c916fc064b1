package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors. Wrap them with errors.Wrap or mark them with Build(...).WithSentinel.
var (
	ErrInvalidURI           = errors.New("invalid document URI")
	ErrNotFileURI           = errors.New("URI does not use the file scheme")
	ErrReadFile             = errors.New("failed to read file")
	ErrEngineUnavailable    = errors.New("transform engine could not be created")
	ErrInputFiles           = errors.New("failed to enumerate input files")
	ErrInvalidConfiguration = errors.New("invalid configuration document")
	ErrInvalidJSONPath      = errors.New("invalid JSONPath expression")
	ErrInvalidJSONPointer   = errors.New("invalid JSON pointer")
	ErrInvalidSourceMap     = errors.New("invalid source map")
	ErrNoDefinition         = errors.New("no definition artifact available")
	ErrInvalidSettings      = errors.New("invalid client settings")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrUnsupportedTransport = errors.New("unsupported transport")
	ErrLoadConfig           = errors.New("failed to load configuration")
	ErrWatcher              = errors.New("file watcher failure")
	ErrConversion           = errors.New("document conversion failed")
)
