package local

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/lsp/sourcemap"
	"github.com/cloudposse/specls/pkg/lsp/vfs"
)

const configURI = "file:///ws/readme.md"

const petsYAML = `swagger: '2.0'
info:
  title: Pets
definitions:
  Pet:
    type: object
  Owner:
    properties:
      pet:
        $ref: '#/definitions/Pet'
`

const storesYAML = `definitions:
  Pet:
    type: string
  Store:
    $ref: '#/definitions/Missing'
  Remote:
    $ref: 'https://example.com/common.json#/Error'
`

func newFS(t *testing.T, config string, files map[string]string) *vfs.FileSystem {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/ws/readme.md", []byte(config), 0o644))
	for name, content := range files {
		require.NoError(t, afero.WriteFile(mem, "/ws/"+name, []byte(content), 0o644))
	}
	return vfs.New(mem, nil)
}

func configuration(inputs ...string) string {
	text := "# Pets\n\n> see https://aka.ms/autorest\n\n``` yaml\ninput-file:\n"
	for _, input := range inputs {
		text += "  - " + input + "\n"
	}
	return text + "```\n"
}

type recorder struct {
	artifacts []engine.Artifact
	messages  []engine.Message
}

func (r *recorder) listener() engine.Listener {
	return engine.ListenerFuncs{
		OnArtifact: func(a engine.Artifact) { r.artifacts = append(r.artifacts, a) },
		OnMessage:  func(m engine.Message) { r.messages = append(r.messages, m) },
	}
}

func (r *recorder) artifact(kind string) (engine.Artifact, bool) {
	return lo.Find(r.artifacts, func(a engine.Artifact) bool { return a.Type == kind })
}

func (r *recorder) withKey(id string) []engine.Message {
	return lo.Filter(r.messages, func(m engine.Message, _ int) bool { return len(m.Key) > 0 && m.Key[0] == id })
}

func baseline() map[string]any {
	return map[string]any{
		OptionOutputArtifact: []any{engine.ArtifactDefinition, engine.ArtifactDefinitionMap},
		OptionDebug:          true,
		OptionVerbose:        true,
	}
}

func TestNew_RequiresArguments(t *testing.T) {
	_, err := New("", newFS(t, "", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUtils.ErrEngineUnavailable))

	_, err = New(configURI, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUtils.ErrEngineUnavailable))
}

func TestInputFiles(t *testing.T) {
	fs := newFS(t, configuration("pets.yaml", "./pets.yaml", "specs/stores.yaml"), nil)
	e, err := New(configURI, fs)
	require.NoError(t, err)

	e.AddConfiguration(map[string]any{"input-file": "file:///other/extra.json"})
	inputs, err := e.InputFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"file:///ws/pets.yaml",
		"file:///ws/specs/stores.yaml",
		"file:///other/extra.json",
	}, inputs)

	e.ResetConfiguration()
	inputs, err = e.InputFiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, inputs, 2)
}

func TestInputFiles_MissingConfiguration(t *testing.T) {
	e, err := New("file:///nowhere/readme.md", newFS(t, "", nil))
	require.NoError(t, err)

	_, err = e.InputFiles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUtils.ErrInputFiles))
}

func TestExecute_Success(t *testing.T) {
	fs := newFS(t, configuration("pets.yaml"), map[string]string{"pets.yaml": petsYAML})
	e, err := New(configURI, fs)
	require.NoError(t, err)
	e.AddConfiguration(baseline())

	rec := &recorder{}
	ok := e.Execute(context.Background(), rec.listener()).Wait()
	require.True(t, ok, "messages: %+v", rec.messages)

	def, found := rec.artifact(engine.ArtifactDefinition)
	require.True(t, found)
	assert.Equal(t, "file:///ws/swagger-document.json", def.URI)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(def.Content), &parsed))
	assert.Equal(t, "2.0", parsed["swagger"])

	raw, found := rec.artifact(engine.ArtifactDefinitionMap)
	require.True(t, found)
	sm, err := sourcemap.Parse([]byte(raw.Content))
	require.NoError(t, err)
	entry, found := sm.Original(sourcemap.Path{"definitions", "Pet"})
	require.True(t, found)
	assert.Equal(t, "file:///ws/pets.yaml", entry.Source)
	assert.Equal(t, sourcemap.Range{
		Start: sourcemap.Position{Line: 5, Column: 2},
		End:   sourcemap.Position{Line: 5, Column: 5},
	}, entry.Range)

	channels := lo.Map(rec.messages, func(m engine.Message, _ int) engine.Channel { return m.Channel })
	assert.Contains(t, channels, engine.ChannelDebug)
	assert.Contains(t, channels, engine.ChannelVerbose)
	assert.Equal(t, engine.ChannelInformation, rec.messages[len(rec.messages)-1].Channel)
	assert.Equal(t, Plugin, rec.messages[0].Plugin)
}

func TestExecute_ArtifactsOnlyWhenRequested(t *testing.T) {
	fs := newFS(t, configuration("pets.yaml"), map[string]string{"pets.yaml": petsYAML})
	e, err := New(configURI, fs)
	require.NoError(t, err)

	rec := &recorder{}
	assert.True(t, e.Execute(context.Background(), rec.listener()).Wait())
	assert.Empty(t, rec.artifacts)
	assert.Empty(t, lo.Filter(rec.messages, func(m engine.Message, _ int) bool {
		return m.Channel == engine.ChannelDebug || m.Channel == engine.ChannelVerbose
	}))
}

func TestExecute_MergeAndReferenceDiagnostics(t *testing.T) {
	fs := newFS(t, configuration("pets.yaml", "stores.yaml"), map[string]string{
		"pets.yaml":   petsYAML,
		"stores.yaml": storesYAML,
	})
	e, err := New(configURI, fs)
	require.NoError(t, err)
	e.AddConfiguration(baseline())

	rec := &recorder{}
	assert.False(t, e.Execute(context.Background(), rec.listener()).Wait())

	duplicates := rec.withKey("D5001")
	require.Len(t, duplicates, 1)
	assert.Equal(t, engine.ChannelWarning, duplicates[0].Channel)
	require.Len(t, duplicates[0].Ranges, 1)
	assert.Equal(t, "file:///ws/stores.yaml", duplicates[0].Ranges[0].Document)
	assert.Equal(t, 3, duplicates[0].Ranges[0].Start.Line)

	unresolved := rec.withKey("R0001")
	require.Len(t, unresolved, 1)
	assert.Equal(t, engine.ChannelError, unresolved[0].Channel)
	assert.Equal(t, []string{"R0001", "UnresolvedReference"}, unresolved[0].Key)
	assert.Equal(t, 5, unresolved[0].Ranges[0].Start.Line)

	external := rec.withKey("R0002")
	require.Len(t, external, 1)
	assert.Equal(t, engine.ChannelWarning, external[0].Channel)

	// Artifacts are still produced for a failed run.
	def, found := rec.artifact(engine.ArtifactDefinition)
	require.True(t, found)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(def.Content), &parsed))
	pet := parsed["definitions"].(map[string]any)["Pet"].(map[string]any)
	assert.Equal(t, "object", pet["type"])
}

func TestExecute_CrossFileReferenceIsRewritten(t *testing.T) {
	fs := newFS(t, configuration("pets.yaml", "owners.yaml"), map[string]string{
		"pets.yaml":   petsYAML,
		"owners.yaml": "definitions:\n  Household:\n    $ref: './pets.yaml#/definitions/Owner'\n",
	})
	e, err := New(configURI, fs)
	require.NoError(t, err)
	e.AddConfiguration(baseline())

	rec := &recorder{}
	require.True(t, e.Execute(context.Background(), rec.listener()).Wait(), "messages: %+v", rec.messages)

	def, _ := rec.artifact(engine.ArtifactDefinition)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(def.Content), &parsed))
	household := parsed["definitions"].(map[string]any)["Household"].(map[string]any)
	assert.Equal(t, "#/definitions/Owner", household["$ref"])
}

func TestExecute_InputErrors(t *testing.T) {
	fs := newFS(t, configuration("missing.yaml", "broken.yaml", "list.yaml"), map[string]string{
		"broken.yaml": "a: b\nc: [d\n",
		"list.yaml":   "- one\n- two\n",
	})
	e, err := New(configURI, fs)
	require.NoError(t, err)

	rec := &recorder{}
	assert.False(t, e.Execute(context.Background(), rec.listener()).Wait())

	notFound := rec.withKey("F0001")
	require.Len(t, notFound, 1)
	assert.Equal(t, configURI, notFound[0].Ranges[0].Document)

	syntax := rec.withKey("S0001")
	require.Len(t, syntax, 1)
	assert.Equal(t, "file:///ws/broken.yaml", syntax[0].Ranges[0].Document)

	invalid := rec.withKey("S0002")
	require.Len(t, invalid, 1)
	assert.Equal(t, "file:///ws/list.yaml", invalid[0].Ranges[0].Document)
}

func TestExecute_GeneratedFiles(t *testing.T) {
	fs := newFS(t, configuration("pets.yaml"), map[string]string{"pets.yaml": petsYAML})
	e, err := New(configURI, fs)
	require.NoError(t, err)
	e.AddConfiguration(map[string]any{
		"json": map[string]any{OptionOutputFolder: "/generated"},
		"yaml": map[string]any{},
	})

	rec := &recorder{}
	require.True(t, e.Execute(context.Background(), rec.listener()).Wait())

	require.Len(t, rec.artifacts, 1)
	assert.Equal(t, "file:///generated/openapi.json", rec.artifacts[0].URI)
	assert.Equal(t, TypeSourceFileJSON, rec.artifacts[0].Type)
	assert.Contains(t, rec.artifacts[0].Content, `"swagger": "2.0"`)
}

func TestExecute_Cancelled(t *testing.T) {
	fs := newFS(t, configuration("pets.yaml"), map[string]string{"pets.yaml": petsYAML})
	e, err := New(configURI, fs)
	require.NoError(t, err)
	e.AddConfiguration(baseline())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	p := e.Execute(ctx, rec.listener())
	p.Cancel()
	p.Cancel()
	assert.False(t, p.Wait())
	assert.False(t, p.Wait())
	assert.Empty(t, rec.artifacts)
}
