// Package document tracks the documents open in the editor.
package document

import (
	"slices"
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/cloudposse/specls/pkg/lsp/uri"
)

// Document represents an open text document.
type Document struct {
	URI        protocol.DocumentUri
	LanguageID string
	Version    int32
	Text       string
}

// Manager manages open documents.
type Manager struct {
	mu        sync.RWMutex
	documents map[protocol.DocumentUri]*Document
}

// NewManager creates a new document manager.
func NewManager() *Manager {
	return &Manager{
		documents: make(map[protocol.DocumentUri]*Document),
	}
}

// Open adds a document, replacing any document with the same URI.
func (m *Manager) Open(docURI protocol.DocumentUri, languageID string, version int32, text string) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := &Document{
		URI:        docURI,
		LanguageID: languageID,
		Version:    version,
		Text:       text,
	}
	m.documents[docURI] = doc
	return doc
}

// Update replaces the text of an open document. It returns nil for unknown documents.
func (m *Manager) Update(docURI protocol.DocumentUri, version int32, text string) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.documents[docURI]
	if !ok {
		return nil
	}
	updated := *doc
	updated.Version = version
	updated.Text = text
	m.documents[docURI] = &updated
	return &updated
}

// Set stores doc under docURI.
func (m *Manager) Set(docURI protocol.DocumentUri, doc *Document) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.documents[docURI] = doc
}

// Get returns the document with the given URI. A URI that only matches after
// percent-decoding also counts.
func (m *Manager) Get(docURI protocol.DocumentUri) (*Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if doc, ok := m.documents[docURI]; ok {
		return doc, true
	}
	for k, doc := range m.documents {
		if uri.Equal(k, docURI) {
			return doc, true
		}
	}
	return nil, false
}

// Text returns the text of an open document.
func (m *Manager) Text(docURI string) (string, bool) {
	doc, ok := m.Get(docURI)
	if !ok {
		return "", false
	}
	return doc.Text, true
}

// Close removes a document.
func (m *Manager) Close(docURI protocol.DocumentUri) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.documents, docURI)
}

// GetAll returns all open documents ordered by URI.
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	slices.SortFunc(docs, func(a, b *Document) int { return strings.Compare(a.URI, b.URI) })
	return docs
}

// Count returns the number of open documents.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.documents)
}
