package diagnostics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type recorder struct {
	mu        sync.Mutex
	published []published
}

type published struct {
	uri         string
	diagnostics []protocol.Diagnostic
}

func (r *recorder) PublishDiagnostics(uri string, diagnostics []protocol.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, published{uri: uri, diagnostics: diagnostics})
}

func (r *recorder) last(t *testing.T) published {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.published)
	return r.published[len(r.published)-1]
}

func diag(message string, line uint32) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := "R0001/UnresolvedReference"
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: 2},
			End:   protocol.Position{Line: line, Character: 8},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

func TestCollection_PushDeduplicates(t *testing.T) {
	rec := &recorder{}
	c := NewCollection("file:///ws/a.yaml", rec)

	assert.True(t, c.Push(diag("broken", 3), true))
	assert.False(t, c.Push(diag("broken", 3), true))

	assert.Equal(t, 1, c.Len())
	assert.Len(t, rec.last(t).diagnostics, 1)
}

func TestCollection_PushKeepsDistinctMessages(t *testing.T) {
	rec := &recorder{}
	c := NewCollection("file:///ws/a.yaml", rec)

	c.Push(diag("broken", 3), false)
	c.Push(diag("broken again", 3), false)
	assert.Empty(t, rec.published, "send=false must not publish")

	c.Flush()
	last := rec.last(t)
	assert.Equal(t, "file:///ws/a.yaml", last.uri)
	require.Len(t, last.diagnostics, 2)
	assert.Equal(t, "broken", last.diagnostics[0].Message)
	assert.Equal(t, "broken again", last.diagnostics[1].Message)
}

func TestCollection_SnapshotIsDocumentOrdered(t *testing.T) {
	c := NewCollection("file:///ws/a.yaml", nil)
	c.Push(diag("late", 9), false)
	c.Push(diag("early", 1), false)

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "early", snap[0].Message)
}

func TestCollection_SnapshotOrdersSamePositionAndMessage(t *testing.T) {
	variant := func(severity protocol.DiagnosticSeverity, source string) protocol.Diagnostic {
		d := diag("Duplicate definition", 4)
		d.Severity = &severity
		d.Source = &source
		return d
	}
	variants := []protocol.Diagnostic{
		variant(protocol.DiagnosticSeverityWarning, "R3001/DuplicateDefinition"),
		variant(protocol.DiagnosticSeverityError, "R3001/DuplicateDefinition"),
		variant(protocol.DiagnosticSeverityError, "R2001/Other"),
	}

	var first []protocol.Diagnostic
	for _, order := range [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}} {
		c := NewCollection("file:///ws/a.yaml", nil)
		for _, i := range order {
			require.True(t, c.Push(variants[i], false))
		}
		snap := c.Snapshot()
		require.Len(t, snap, 3)
		if first == nil {
			first = snap
			continue
		}
		assert.Equal(t, first, snap, "order %v", order)
	}

	assert.Equal(t, protocol.DiagnosticSeverityError, *first[0].Severity)
	assert.Equal(t, "R2001/Other", *first[0].Source)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *first[2].Severity)
}

func TestCollection_FlushThenClear(t *testing.T) {
	rec := &recorder{}
	c := NewCollection("file:///ws/a.yaml", rec)

	c.Push(diag("broken", 3), false)
	c.Flush()
	c.Clear(false)
	assert.Len(t, rec.published, 1)
	assert.Len(t, rec.last(t).diagnostics, 1)

	c.Clear(true)
	last := rec.last(t)
	assert.NotNil(t, last.diagnostics)
	assert.Empty(t, last.diagnostics)
}

func TestAggregator_CollectionIsReused(t *testing.T) {
	a := NewAggregator(&recorder{})

	_, ok := a.Lookup("file:///ws/a.yaml")
	assert.False(t, ok)

	first := a.Collection("file:///ws/a.yaml")
	second := a.Collection("file:///ws/a.yaml")
	assert.Same(t, first, second)

	a.Collection("file:///ws/b.yaml")
	assert.Equal(t, []string{"file:///ws/a.yaml", "file:///ws/b.yaml"}, a.URIs())
}

func TestPublisherFunc(t *testing.T) {
	var got string
	c := NewCollection("file:///ws/a.yaml", PublisherFunc(func(uri string, _ []protocol.Diagnostic) { got = uri }))
	c.Flush()
	assert.Equal(t, "file:///ws/a.yaml", got)
}
