// Package dispatcher routes editor events to configuration resolution and runs, and cursor
// queries to document analysis. It owns the process-scoped state of the server: open
// documents, the override table, diagnostics, the run registry and the client settings.
package dispatcher

import (
	"context"
	"maps"
	"sync"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/spf13/afero"
	protocol "github.com/tliron/glsp/protocol_3_16"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/config"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/diagnostics"
	"github.com/cloudposse/specls/pkg/lsp/document"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/lsp/literate"
	"github.com/cloudposse/specls/pkg/lsp/resolver"
	"github.com/cloudposse/specls/pkg/lsp/runner"
	"github.com/cloudposse/specls/pkg/lsp/uri"
	"github.com/cloudposse/specls/pkg/lsp/vfs"
	"github.com/cloudposse/specls/pkg/schema"
)

// ConfigurationLanguage is the language id given to configuration documents the server
// reads on its own.
const ConfigurationLanguage = "markdown"

// Notifier delivers server initiated messages to the editor.
type Notifier interface {
	PublishDiagnostics(uri string, diagnostics []protocol.Diagnostic)
	LogMessage(kind protocol.MessageType, text string)
	Status(text string)
}

// Options configures a Dispatcher.
type Options struct {
	Config   schema.Configuration
	Factory  engine.Factory
	Fs       afero.Fs
	Notifier Notifier
}

// Dispatcher is the event hub of the server.
type Dispatcher struct {
	ctx      context.Context
	cfg      schema.Configuration
	factory  engine.Factory
	notifier Notifier

	documents   *document.Manager
	storage     *vfs.FileSystem
	resolver    *resolver.Resolver
	diagnostics *diagnostics.Aggregator
	status      *runner.Status
	runs        *runner.Registry

	mu           sync.RWMutex
	settings     schema.Settings
	settingsHash uint64

	pending sync.WaitGroup
}

// New creates a Dispatcher. Runs and dispatched events live until ctx is done.
func New(ctx context.Context, opts Options) (*Dispatcher, error) {
	if opts.Factory == nil {
		return nil, errUtils.Build(errUtils.ErrEngineUnavailable).
			WithExplanation("An engine factory is required to start the dispatcher").
			Err()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	d := &Dispatcher{
		ctx:       ctx,
		cfg:       opts.Config,
		factory:   opts.Factory,
		notifier:  opts.Notifier,
		documents: document.NewManager(),
	}
	d.storage = vfs.New(opts.Fs, d.documents)
	d.resolver = resolver.New(d.storage, d.factory)
	d.diagnostics = diagnostics.NewAggregator(diagnostics.PublisherFunc(d.publishDiagnostics))
	d.status = runner.NewStatus(d.publishStatus)
	d.settingsHash = hashSettings(nil)
	d.runs = runner.NewRegistry(ctx, runner.Config{
		Factory:     d.factory,
		FileSystem:  d.storage,
		Diagnostics: d.diagnostics,
		Status:      d.status,
		Log:         logSink{d: d},
		Defaults:    opts.Config.Engine.Defaults,
		Overrides: func() map[string]any {
			return maps.Clone(d.Settings().Configuration)
		},
		RuleDocs: func() map[string]string {
			return config.MergeRuleDocs(d.cfg.Engine.RuleDocs, d.Settings().RuleDocs)
		},
	})
	return d, nil
}

// Documents returns the open document table.
func (d *Dispatcher) Documents() *document.Manager {
	return d.documents
}

// Storage returns the storage view shared with the engine.
func (d *Dispatcher) Storage() *vfs.FileSystem {
	return d.storage
}

// Status returns the active-run counter.
func (d *Dispatcher) Status() *runner.Status {
	return d.status
}

// Settings returns the current client settings.
func (d *Dispatcher) Settings() schema.Settings {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.settings
}

// Initialize announces start-up and processes a configuration found in the workspace root.
func (d *Dispatcher) Initialize(rootURI string) {
	d.publishStatus(runner.StatusStarting)
	if rootURI == "" {
		return
	}

	d.dispatch("initialize", func(ctx context.Context) error {
		log.Debug("Probing workspace root", "root", rootURI)
		configURI := d.resolver.DetectConfigurationFile(ctx, rootURI, false)
		if configURI == "" {
			return nil
		}
		text := d.storage.ReadFileOrEmpty(ctx, configURI)
		d.storage.Register(configURI, text)
		return d.DocumentChanged(ctx, &document.Document{
			URI:        configURI,
			LanguageID: ConfigurationLanguage,
			Version:    1,
			Text:       text,
		})
	})
}

// Opened tracks a newly opened document and dispatches it.
func (d *Dispatcher) Opened(docURI, languageID string, version int32, text string) {
	doc := d.documents.Open(docURI, languageID, version, text)
	d.dispatchDocument("opened", doc)
}

// Changed replaces the text of a document and dispatches it.
func (d *Dispatcher) Changed(docURI string, version int32, text string) {
	doc := d.documents.Update(docURI, version, text)
	if doc == nil {
		doc = d.documents.Open(docURI, languageFromURI(docURI), version, text)
	}
	d.dispatchDocument("changed", doc)
}

// Saved is a no-op: the change that preceded the save already triggered a run.
func (d *Dispatcher) Saved(docURI string) {
	log.Trace("Document saved", "uri", docURI)
}

// Closed stops tracking a document and withdraws its diagnostics.
func (d *Dispatcher) Closed(docURI string) {
	d.documents.Close(docURI)
	d.diagnostics.Collection(docURI).Clear(true)
}

// FilesChanged handles file-watch notifications. Tracked documents are re-dispatched;
// anything else is read from storage and dispatched as a transient document.
func (d *Dispatcher) FilesChanged(uris []string) {
	for _, changed := range uris {
		if doc, ok := d.documents.Get(changed); ok {
			d.dispatchDocument("file-changed", doc)
			continue
		}
		if !uri.IsFile(changed) {
			continue
		}

		d.dispatch("file-changed", func(ctx context.Context) error {
			return d.DocumentChanged(ctx, &document.Document{
				URI:        changed,
				LanguageID: languageFromURI(changed),
				Version:    1,
				Text:       d.storage.ReadFileOrEmpty(ctx, changed),
			})
		})
	}
}

// SettingsChanged stores the client settings. Payloads without the autorest section are
// ignored. When the engine configuration they carry changed, every open document is
// dispatched again.
func (d *Dispatcher) SettingsChanged(payload any) error {
	settings, ok, err := config.DecodeSettings(payload)
	if err != nil {
		return err
	}
	if !ok {
		log.Trace("Ignoring settings without the autorest section")
		return nil
	}
	hash := hashSettings(settings.Configuration)

	d.mu.Lock()
	changed := hash != d.settingsHash
	d.settings = settings
	d.settingsHash = hash
	d.mu.Unlock()

	if !changed {
		return nil
	}
	log.Debug("Engine configuration changed", "documents", d.documents.Count())
	for _, doc := range d.documents.GetAll() {
		d.dispatchDocument("settings-changed", doc)
	}
	return nil
}

// DocumentChanged routes a document: OpenAPI documents run their configuration,
// configuration documents run themselves, anything else drops its results.
func (d *Dispatcher) DocumentChanged(ctx context.Context, doc *document.Document) error {
	log.Debug("Document changed", "uri", doc.URI, "language", doc.LanguageID)

	switch {
	case literate.IsSpecExtension(doc.LanguageID) && literate.IsSpecDocument(doc.Text):
		return d.runs.Controller(d.resolver.Resolve(ctx, doc.URI)).Request(ctx)
	case literate.IsConfigurationExtension(doc.LanguageID) && literate.IsConfigurationDocument(doc.Text):
		return d.runs.Controller(doc.URI).Request(ctx)
	}

	for _, configURI := range []string{doc.URI, resolver.SyntheticURI(doc.URI)} {
		if c, ok := d.runs.Lookup(configURI); ok {
			c.Cancel()
			c.Clear()
		}
	}
	d.diagnostics.Collection(doc.URI).Clear(true)
	return nil
}

// Wait blocks until every dispatched event has been handled. Runs those events started
// may still be in flight.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Shutdown cancels every run in flight.
func (d *Dispatcher) Shutdown() {
	d.runs.CancelAll()
}

func (d *Dispatcher) dispatchDocument(event string, doc *document.Document) {
	d.dispatch(event, func(ctx context.Context) error {
		return d.DocumentChanged(ctx, doc)
	})
}

// dispatch runs fn on its own goroutine. Errors and panics are logged, never propagated.
func (d *Dispatcher) dispatch(event string, fn func(ctx context.Context) error) {
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered from panic while handling event", "event", event, "panic", r)
			}
		}()

		if err := fn(d.ctx); err != nil {
			log.Debug("Event handling failed", "event", event, "error", err)
		}
	}()
}

func (d *Dispatcher) publishDiagnostics(docURI string, items []protocol.Diagnostic) {
	if d.notifier != nil {
		d.notifier.PublishDiagnostics(docURI, items)
	}
}

func (d *Dispatcher) publishStatus(text string) {
	log.Trace("Status", "status", text)
	if d.notifier != nil {
		d.notifier.Status(text)
	}
}

func (d *Dispatcher) logMessage(kind protocol.MessageType, text string) {
	if d.notifier != nil {
		d.notifier.LogMessage(kind, text)
	}
}

func hashSettings(configuration map[string]any) uint64 {
	hash, err := hashstructure.Hash(configuration, hashstructure.FormatV2, nil)
	if err != nil {
		log.Debug("Unable to hash engine configuration", "error", err)
		return 0
	}
	return hash
}

// languageFromURI derives a language id from the extension of docURI.
func languageFromURI(docURI string) string {
	switch ext := uri.Ext(docURI); ext {
	case ".md":
		return ConfigurationLanguage
	case ".yml":
		return "yaml"
	case "":
		return ""
	default:
		return ext[1:]
	}
}
