// Package runner owns one execution slot per configuration: it serializes and cancels
// engine runs and drains their output into artifacts, diagnostics and the log channel.
package runner

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	errUtils "github.com/cloudposse/specls/errors"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/diagnostics"
	"github.com/cloudposse/specls/pkg/lsp/engine"
)

// State is the lifecycle state of a Controller.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateFinishing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFinishing:
		return "finishing"
	default:
		return "unknown"
	}
}

// LogSink is the human-readable log channel of the editor.
type LogSink interface {
	Debug(text string)
	Verbose(text string)
	Log(text string)
	Error(text string)
}

// Config holds the collaborators shared by every Controller.
type Config struct {
	Factory     engine.Factory
	FileSystem  engine.FileSystem
	Diagnostics *diagnostics.Aggregator
	Status      *Status
	Log         LogSink

	// Defaults are applied after the baseline options.
	Defaults map[string]any
	// Overrides returns the client supplied options, applied last.
	Overrides func() map[string]any
	// RuleDocs returns documentation base URLs keyed by plugin.
	RuleDocs func() map[string]string
}

// Baseline returns the options applied to every run before any other configuration.
// Debug and verbose output is always requested so the log channel can decide what to show.
func Baseline() map[string]any {
	return map[string]any{
		engine.OptionOutputArtifact: []any{engine.ArtifactDefinition, engine.ArtifactDefinitionMap},
		engine.OptionDebug:          true,
		engine.OptionVerbose:        true,
	}
}

// Controller runs the engine for one configuration.
type Controller struct {
	configURI string
	cfg       *Config
	ctx       context.Context

	// requestMu serializes Request.
	requestMu sync.Mutex

	mu        sync.Mutex
	state     State
	files     []string
	artifacts []engine.Artifact
	cancel    func()
	// pending records a Cancel received while Starting.
	pending bool
	done    chan struct{}
}

func newController(ctx context.Context, configURI string, cfg *Config) *Controller {
	done := make(chan struct{})
	close(done)
	return &Controller{
		configURI: configURI,
		cfg:       cfg,
		ctx:       ctx,
		done:      done,
	}
}

// URI returns the configuration the controller runs.
func (c *Controller) URI() string {
	return c.configURI
}

// Request starts a new run. A run in progress is cancelled first and the new run only
// starts once the previous one has completed its cleanup.
func (c *Controller) Request(ctx context.Context) error {
	c.cfg.Status.Begin()

	c.requestMu.Lock()
	defer c.requestMu.Unlock()

	c.Cancel()
	if err := c.Wait(ctx); err != nil {
		c.cfg.Status.End()
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.state = StateStarting
	c.artifacts = nil
	c.pending = false
	c.done = done
	c.mu.Unlock()

	e, err := c.cfg.Factory(c.configURI, c.cfg.FileSystem)
	if err != nil {
		return c.abort(done, errUtils.Build(err).
			WithSentinel(errUtils.ErrEngineUnavailable).
			WithConfiguration(c.configURI).
			Err())
	}

	e.ResetConfiguration()
	e.AddConfiguration(Baseline())
	if len(c.cfg.Defaults) > 0 {
		e.AddConfiguration(maps.Clone(c.cfg.Defaults))
	}
	if c.cfg.Overrides != nil {
		if overrides := c.cfg.Overrides(); len(overrides) > 0 {
			e.AddConfiguration(overrides)
		}
	}

	files, err := e.InputFiles(ctx)
	if err != nil {
		return c.abort(done, errUtils.Build(err).
			WithSentinel(errUtils.ErrInputFiles).
			WithConfiguration(c.configURI).
			Err())
	}

	listener := engine.ListenerFuncs{
		OnArtifact: c.addArtifact,
		OnMessage:  c.route,
	}
	p := e.Execute(c.ctx, listener)

	var once sync.Once
	cancel := func() { once.Do(p.Cancel) }
	c.mu.Lock()
	c.files = files
	c.state = StateRunning
	c.cancel = cancel
	pending := c.pending
	c.mu.Unlock()
	if pending {
		cancel()
	}

	log.Debug("Started run", "configuration", c.configURI, "inputs", len(files))
	go c.finish(p, files, done)
	return nil
}

// finish waits for p, then flushes and clears the diagnostics of every input file before
// the controller returns to idle.
func (c *Controller) finish(p engine.Process, files []string, done chan struct{}) {
	success := p.Wait()

	c.mu.Lock()
	c.state = StateFinishing
	c.mu.Unlock()

	c.cfg.Log.Debug(fmt.Sprintf("Finished run of %s: success=%t", c.configURI, success))
	for _, file := range files {
		collection := c.cfg.Diagnostics.Collection(file)
		collection.Flush()
		collection.Clear(false)
	}
	c.cfg.Status.End()

	c.mu.Lock()
	c.state = StateIdle
	c.cancel = nil
	c.mu.Unlock()
	close(done)
}

func (c *Controller) abort(done chan struct{}, err error) error {
	log.Debug("Run not started", "configuration", c.configURI, "error", err)

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()

	c.cfg.Status.End()
	close(done)
	return err
}

// Cancel signals cancellation to the current run, if any. Repeated calls are no-ops.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	if c.state == StateStarting {
		c.pending = true
	}
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Clear drops the artifacts of the last run.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.artifacts = nil
}

// Wait blocks until the current run, if any, has finished.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for run")
	}
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Files returns the input files of the last run.
func (c *Controller) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.files)
}

// Artifacts returns the artifacts produced so far by the last run.
func (c *Controller) Artifacts() []engine.Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.artifacts)
}

// Artifact returns the first artifact of the given type.
func (c *Controller) Artifact(kind string) (engine.Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range c.artifacts {
		if a.Type == kind {
			return a, true
		}
	}
	return engine.Artifact{}, false
}

func (c *Controller) addArtifact(a engine.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.artifacts = append(c.artifacts, a)
}
