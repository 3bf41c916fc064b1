// Package local is an in-process transform engine. It loads the inputs of a literate
// configuration, merges them into one definition, checks local references and emits the
// merged definition and its source map as artifacts.
package local

import (
	"context"
	"maps"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/lsp/literate"
	"github.com/cloudposse/specls/pkg/lsp/uri"
)

const (
	OptionOutputArtifact = engine.OptionOutputArtifact
	OptionOutputFolder   = engine.OptionOutputFolder
	OptionDebug          = engine.OptionDebug
	OptionVerbose        = engine.OptionVerbose
)

// Plugin is reported on every message emitted by this engine.
const Plugin = "specls-local"

// Engine is the in-process engine.
type Engine struct {
	configURI string
	fs        engine.FileSystem

	mu      sync.Mutex
	options map[string]any
}

var _ engine.Factory = New

// New creates an engine for the configuration at configURI.
func New(configURI string, fs engine.FileSystem) (engine.Engine, error) {
	if configURI == "" {
		return nil, errUtils.Build(errUtils.ErrEngineUnavailable).
			WithExplanation("A configuration URI is required").
			Err()
	}
	if fs == nil {
		return nil, errUtils.Build(errUtils.ErrEngineUnavailable).
			WithExplanation("A file system is required").
			Err()
	}
	return &Engine{configURI: configURI, fs: fs, options: map[string]any{}}, nil
}

// AddConfiguration merges options over the current ones.
func (e *Engine) AddConfiguration(options map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	maps.Copy(e.options, options)
}

// ResetConfiguration drops all options.
func (e *Engine) ResetConfiguration() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.options = map[string]any{}
}

func (e *Engine) snapshot() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()

	return maps.Clone(e.options)
}

// view is the effective configuration: the literate document overlaid by the options.
type view struct {
	options map[string]any
	inputs  []string
}

func (e *Engine) view(ctx context.Context) (view, error) {
	text, err := e.fs.ReadFile(ctx, e.configURI)
	if err != nil {
		return view{}, errUtils.Build(errors.Wrap(err, "reading configuration")).
			WithSentinel(errUtils.ErrInputFiles).
			WithConfiguration(e.configURI).
			Err()
	}

	document := map[string]any{}
	if literate.IsConfigurationDocument(text) {
		if document, err = literate.ParseConfiguration(text); err != nil {
			return view{}, errUtils.Build(err).
				WithSentinel(errUtils.ErrInputFiles).
				WithConfiguration(e.configURI).
				Err()
		}
	}

	options := e.snapshot()
	inputs := append(literate.StringList(document, literate.InputFileKey), literate.StringList(options, literate.InputFileKey)...)

	merged := maps.Clone(document)
	maps.Copy(merged, options)

	resolved := lo.Map(inputs, func(input string, _ int) string {
		return uri.Resolve(e.configURI, input)
	})
	return view{options: merged, inputs: lo.Uniq(resolved)}, nil
}

// InputFiles returns the resolved input files of the configuration.
func (e *Engine) InputFiles(ctx context.Context) ([]string, error) {
	v, err := e.view(ctx)
	if err != nil {
		return nil, err
	}
	return v.inputs, nil
}

// Execute starts a run on its own goroutine.
func (e *Engine) Execute(ctx context.Context, listener engine.Listener) engine.Process {
	runCtx, cancel := context.WithCancel(ctx)
	p := &process{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		defer cancel()

		r := &run{engine: e, listener: listener}
		p.success = r.execute(runCtx)
	}()

	return p
}

type process struct {
	cancel  context.CancelFunc
	done    chan struct{}
	success bool
}

func (p *process) Cancel() {
	p.cancel()
}

func (p *process) Wait() bool {
	<-p.done
	return p.success
}
