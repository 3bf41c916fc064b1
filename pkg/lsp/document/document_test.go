package document

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	readmeURI = "file:///ws/readme.md"
	petsURI   = "file:///ws/pets.yaml"
	// spaceURI is the form editors send for "/ws/my pets.yaml".
	spaceURI = "file:///ws/my%20pets.yaml"
)

func TestGet_MatchesPercentDecodedURI(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		lookup string
		found  bool
	}{
		{"exact", spaceURI, spaceURI, true},
		{"encoded lookup of decoded key", "file:///ws/my pets.yaml", spaceURI, true},
		{"decoded lookup of encoded key", spaceURI, "file:///ws/my pets.yaml", true},
		{"upper and lower escapes", "file:///ws/a%2Fb.yaml", "file:///ws/a%2fb.yaml", true},
		{"different document", spaceURI, "file:///ws/my%20stores.yaml", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			m.Open(tt.stored, "yaml", 1, "swagger: '2.0'\n")

			doc, ok := m.Get(tt.lookup)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				require.NotNil(t, doc)
				assert.Equal(t, tt.stored, doc.URI)
			}

			text, ok := m.Text(tt.lookup)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, "swagger: '2.0'\n", text)
			} else {
				assert.Empty(t, text)
			}
		})
	}
}

func TestUpdate_CopiesOnWrite(t *testing.T) {
	m := NewManager()
	opened := m.Open(petsURI, "yaml", 1, "swagger: '2.0'\n")

	updated := m.Update(petsURI, 2, "openapi: 3.0.0\n")
	require.NotNil(t, updated)

	// Snapshots taken before the update keep describing the old revision.
	assert.Equal(t, int32(1), opened.Version)
	assert.Equal(t, "swagger: '2.0'\n", opened.Text)

	assert.NotSame(t, opened, updated)
	assert.Equal(t, petsURI, updated.URI)
	assert.Equal(t, "yaml", updated.LanguageID)
	assert.Equal(t, int32(2), updated.Version)
	assert.Equal(t, "openapi: 3.0.0\n", updated.Text)

	current, ok := m.Get(petsURI)
	require.True(t, ok)
	assert.Same(t, updated, current)
}

func TestUpdate_UnknownDocument(t *testing.T) {
	m := NewManager()

	assert.Nil(t, m.Update(petsURI, 2, "swagger: '2.0'\n"))
	assert.Equal(t, 0, m.Count())
}

func TestOpen_ReplacesPreviousRevision(t *testing.T) {
	m := NewManager()
	m.Open(readmeURI, "markdown", 3, "# old\n")
	m.Open(readmeURI, "markdown", 1, "# new\n")

	text, ok := m.Text(readmeURI)
	require.True(t, ok)
	assert.Equal(t, "# new\n", text)
	assert.Equal(t, 1, m.Count())
}

func TestSet_StoresDocumentAsGiven(t *testing.T) {
	m := NewManager()
	doc := &Document{URI: readmeURI, LanguageID: "markdown", Version: 7, Text: "> see https://aka.ms/autorest\n"}

	m.Set(readmeURI, doc)

	got, ok := m.Get(readmeURI)
	require.True(t, ok)
	assert.Same(t, doc, got)

	// Set overwrites without the version bookkeeping of Update.
	m.Set(readmeURI, &Document{URI: readmeURI, Version: 1})
	got, _ = m.Get(readmeURI)
	assert.Equal(t, int32(1), got.Version)
}

func TestGetAll_OrderedByURI(t *testing.T) {
	m := NewManager()
	m.Open(readmeURI, "markdown", 1, "")
	m.Open(petsURI, "yaml", 1, "")
	m.Open("file:///ws/api/stores.json", "json", 1, "")

	var uris []string
	for _, doc := range m.GetAll() {
		uris = append(uris, doc.URI)
	}
	assert.Equal(t, []string{"file:///ws/api/stores.json", petsURI, readmeURI}, uris)

	m.Close(petsURI)
	assert.Len(t, m.GetAll(), 2)
	assert.Empty(t, NewManager().GetAll())
}

func TestClose(t *testing.T) {
	m := NewManager()
	m.Open(petsURI, "yaml", 1, "")

	m.Close("file:///ws/unknown.yaml")
	assert.Equal(t, 1, m.Count())

	m.Close(petsURI)
	_, ok := m.Get(petsURI)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

// Editors send changes for one document in order while other documents are opened and
// closed concurrently; the last update of each document must win.
func TestManager_ConcurrentEditing(t *testing.T) {
	m := NewManager()
	const documents, revisions = 8, 50

	var wg sync.WaitGroup
	for d := range documents {
		docURI := fmt.Sprintf("file:///ws/spec-%d.yaml", d)
		m.Open(docURI, "yaml", 0, "")

		wg.Add(2)
		go func() {
			defer wg.Done()
			for v := 1; v <= revisions; v++ {
				m.Update(docURI, int32(v), fmt.Sprintf("revision: %d\n", v))
			}
		}()
		go func() {
			defer wg.Done()
			for range revisions {
				_ = m.GetAll()
				_, _ = m.Text(docURI)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, documents, m.Count())
	for _, doc := range m.GetAll() {
		assert.Equal(t, int32(revisions), doc.Version, doc.URI)
		assert.Equal(t, fmt.Sprintf("revision: %d\n", revisions), doc.Text, doc.URI)
	}
}
