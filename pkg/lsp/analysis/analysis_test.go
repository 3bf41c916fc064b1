package analysis

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/lsp/sourcemap"
)

const (
	docA = "file:///ws/a.yaml"
	docB = "file:///ws/b.yaml"
)

const textA = `swagger: '2.0'
paths:
  /pets:
    get:
      responses:
        '200':
          schema:
            $ref: '#/definitions/Pet'
definitions:
  Pet:
    type: object
x-query: $.definitions.*
`

func definition() map[string]any {
	return map[string]any{
		"swagger": "2.0",
		"paths": map[string]any{
			"/pets": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{
						"200": map[string]any{
							"schema": map[string]any{"$ref": "#/definitions/Pet"},
						},
					},
				},
			},
		},
		"definitions": map[string]any{
			"Pet": map[string]any{"type": "object"},
		},
		"x-query": "$.definitions.*",
	}
}

var petRange = sourcemap.Range{
	Start: sourcemap.Position{Line: 10, Column: 0},
	End:   sourcemap.Position{Line: 10, Column: 20},
}

func TestReferenceAt_FromDocumentText(t *testing.T) {
	sm := sourcemap.New([]sourcemap.Entry{
		{Path: sourcemap.Path{"definitions", "Pet"}, Source: docA, Range: petRange},
	})
	a := New(docA, textA, definition(), sm)

	ref, ok := a.ReferenceAt(protocol.Position{Line: 7, Character: 20})
	require.True(t, ok)
	assert.Equal(t, "$.definitions.Pet", ref)

	locations, err := a.DefinitionLocations(ref)
	require.NoError(t, err)
	require.NotEmpty(t, locations)
	assert.Equal(t, docA, locations[0].Document)
	if diff := cmp.Diff(petRange, locations[0].Range); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[string]any{"type": "object"}, locations[0].Value)
}

func TestReferenceAt_ThroughSourceMap(t *testing.T) {
	textB := "Pet:\n  schema:\n    $ref: 'pets.yaml#/Pet'\n"
	refPath := sourcemap.Path{"paths", "/pets", "get", "responses", "200", "schema", "$ref"}
	sm := sourcemap.New([]sourcemap.Entry{
		{Path: refPath, Source: docB, Range: sourcemap.Range{
			Start: sourcemap.Position{Line: 3, Column: 4},
			End:   sourcemap.Position{Line: 3, Column: 30},
		}},
		{Path: sourcemap.Path{"definitions", "Pet"}, Source: docA, Range: petRange},
	})
	a := New(docB, textB, definition(), sm)

	ref, ok := a.ReferenceAt(protocol.Position{Line: 2, Character: 14})
	require.True(t, ok)
	assert.Equal(t, "$.definitions.Pet", ref)

	locations, err := a.DefinitionLocations(ref)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, docA, locations[0].Document)
	assert.Equal(t, petRange, locations[0].Range)
}

func TestReferenceAt_NotAReference(t *testing.T) {
	a := New(docA, textA, definition(), sourcemap.New(nil))

	_, ok := a.ReferenceAt(protocol.Position{Line: 0, Character: 10})
	assert.False(t, ok)

	_, ok = a.ReferenceAt(protocol.Position{Line: 40, Character: 0})
	assert.False(t, ok)
}

func TestQueryAt(t *testing.T) {
	sm := sourcemap.New([]sourcemap.Entry{
		{Path: sourcemap.Path{"definitions", "Pet"}, Source: docA, Range: petRange},
	})
	a := New(docA, textA, definition(), sm)

	query, ok := a.QueryAt(protocol.Position{Line: 11, Character: 12})
	require.True(t, ok)
	assert.Equal(t, "$.definitions.*", query)

	locations, err := a.DefinitionLocations(query)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, sourcemap.Path{"definitions", "Pet"}, locations[0].Path)

	_, ok = a.QueryAt(protocol.Position{Line: 0, Character: 10})
	assert.False(t, ok)
}

func TestDefinitionLocations_IsRestartable(t *testing.T) {
	sm := sourcemap.New([]sourcemap.Entry{
		{Path: sourcemap.Path{"definitions", "Pet"}, Source: docA, Range: petRange},
		{Path: sourcemap.Path{"swagger"}, Source: docA, Range: sourcemap.Range{
			Start: sourcemap.Position{Line: 1, Column: 0},
			End:   sourcemap.Position{Line: 1, Column: 14},
		}},
	})
	a := New(docA, textA, definition(), sm)

	first, err := a.DefinitionLocations("$..type")
	require.NoError(t, err)
	second, err := a.DefinitionLocations("$..type")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Only mapped matches are returned.
	all, err := a.DefinitionLocations("$.*")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, sourcemap.Path{"swagger"}, all[0].Path)
}

func TestDefinitionLocations_InvalidExpression(t *testing.T) {
	a := New(docA, textA, definition(), sourcemap.New(nil))

	_, err := a.DefinitionLocations("definitions.Pet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUtils.ErrInvalidJSONPath))
}

func TestNew_UnparseableText(t *testing.T) {
	a := New(docA, "key: [unterminated", definition(), sourcemap.New(nil))

	_, ok := a.QueryAt(protocol.Position{Line: 0, Character: 2})
	assert.False(t, ok)
	assert.Equal(t, docA, a.URI())
}

func TestPointerToPath(t *testing.T) {
	def := map[string]any{
		"paths": map[string]any{
			"/pets/{id}": map[string]any{
				"parameters": []any{map[string]any{"name": "id"}},
			},
		},
		"a~b": "tilde",
	}

	tests := []struct {
		pointer string
		want    sourcemap.Path
		wantErr bool
	}{
		{"#", sourcemap.Path{}, false},
		{"#/paths/~1pets~1{id}/parameters/0/name", sourcemap.Path{"paths", "/pets/{id}", "parameters", 0, "name"}, false},
		{"#/paths/~1pets~1%7Bid%7D", sourcemap.Path{"paths", "/pets/{id}"}, false},
		{"#/a~0b", sourcemap.Path{"a~b"}, false},
		{"#/paths/~1pets~1{id}/parameters/7", nil, true},
		{"#definitions", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.pointer, func(t *testing.T) {
			got, err := PointerToPath(def, tt.pointer)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errUtils.ErrInvalidJSONPointer))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
