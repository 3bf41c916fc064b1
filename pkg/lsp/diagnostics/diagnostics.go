// Package diagnostics keeps the current diagnostic set of every file and publishes complete
// snapshots of it to the editor.
package diagnostics

import (
	"cmp"
	"slices"
	"sync"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/samber/lo"
	protocol "github.com/tliron/glsp/protocol_3_16"

	log "github.com/cloudposse/specls/pkg/logger"
)

// Publisher delivers the full diagnostic set of one file to the editor.
type Publisher interface {
	PublishDiagnostics(uri string, diagnostics []protocol.Diagnostic)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(uri string, diagnostics []protocol.Diagnostic)

func (f PublisherFunc) PublishDiagnostics(uri string, diagnostics []protocol.Diagnostic) {
	f(uri, diagnostics)
}

// Collection is the deduplicated diagnostic set of a single file.
type Collection struct {
	uri       string
	publisher Publisher

	mu    sync.Mutex
	items map[uint64]protocol.Diagnostic
}

// NewCollection creates an empty collection for uri.
func NewCollection(uri string, publisher Publisher) *Collection {
	return &Collection{
		uri:       uri,
		publisher: publisher,
		items:     make(map[uint64]protocol.Diagnostic),
	}
}

// URI returns the file the collection belongs to.
func (c *Collection) URI() string {
	return c.uri
}

// Push adds d unless an identical diagnostic is already present. A new diagnostic is
// published right away when send is true. It reports whether d was new.
func (c *Collection) Push(d protocol.Diagnostic, send bool) bool {
	key, err := hashstructure.Hash(d, hashstructure.FormatV2, nil)
	if err != nil {
		log.Debug("Unable to hash diagnostic", "uri", c.uri, "error", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		return false
	}
	c.items[key] = d
	if send {
		c.publishLocked()
	}
	return true
}

// Flush publishes the current set, replacing whatever the editor shows for the file.
func (c *Collection) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.publishLocked()
}

// Clear empties the set and optionally publishes the now empty set.
func (c *Collection) Clear(send bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	if send {
		c.publishLocked()
	}
}

// Len returns the number of diagnostics in the set.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Snapshot returns the set in document order.
func (c *Collection) Snapshot() []protocol.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// snapshotLocked orders diagnostics by every field that can tell two of them apart, so
// repeated flushes of the same set publish the same sequence.
func (c *Collection) snapshotLocked() []protocol.Diagnostic {
	out := lo.Values(c.items)
	slices.SortFunc(out, func(a, b protocol.Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Range.Start.Line, b.Range.Start.Line),
			cmp.Compare(a.Range.Start.Character, b.Range.Start.Character),
			cmp.Compare(a.Message, b.Message),
			cmp.Compare(a.Range.End.Line, b.Range.End.Line),
			cmp.Compare(a.Range.End.Character, b.Range.End.Character),
			cmp.Compare(lo.FromPtr(a.Severity), lo.FromPtr(b.Severity)),
			cmp.Compare(lo.FromPtr(a.Source), lo.FromPtr(b.Source)),
		)
	})
	if out == nil {
		out = []protocol.Diagnostic{}
	}
	return out
}

// publishLocked runs with c.mu held so snapshots reach the publisher in order.
func (c *Collection) publishLocked() {
	if c.publisher == nil {
		return
	}
	c.publisher.PublishDiagnostics(c.uri, c.snapshotLocked())
}

// Aggregator owns one Collection per file.
type Aggregator struct {
	publisher Publisher

	mu          sync.Mutex
	collections map[string]*Collection
}

// NewAggregator creates an Aggregator publishing through publisher.
func NewAggregator(publisher Publisher) *Aggregator {
	return &Aggregator{
		publisher:   publisher,
		collections: make(map[string]*Collection),
	}
}

// Collection returns the collection for uri, creating it on first use.
func (a *Aggregator) Collection(uri string) *Collection {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.collections[uri]
	if !ok {
		c = NewCollection(uri, a.publisher)
		a.collections[uri] = c
	}
	return c
}

// Lookup returns the collection for uri if one exists.
func (a *Aggregator) Lookup(uri string) (*Collection, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.collections[uri]
	return c, ok
}

// URIs returns every file with a collection.
func (a *Aggregator) URIs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	uris := lo.Keys(a.collections)
	slices.Sort(uris)
	return uris
}
