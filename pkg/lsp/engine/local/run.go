package local

import (
	"context"
	"fmt"
	"path"
	"reflect"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/lsp/analysis"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/lsp/literate"
	"github.com/cloudposse/specls/pkg/lsp/sourcemap"
	"github.com/cloudposse/specls/pkg/lsp/uri"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Rule keys reported by the engine, {id, name}.
var (
	KeyFileNotFound        = []string{"F0001", "FileNotFound"}
	KeySyntaxError         = []string{"S0001", "SyntaxError"}
	KeyInvalidDocument     = []string{"S0002", "InvalidDocument"}
	KeyDuplicateDefinition = []string{"D5001", "DuplicateDefinition"}
	KeyUnresolvedReference = []string{"R0001", "UnresolvedReference"}
	KeyExternalReference   = []string{"R0002", "ExternalReference"}
)

// Generated file types.
const (
	TypeSourceFileJSON = "source-file-json"
	TypeSourceFileYAML = "source-file-yaml"
)

const refKey = "$ref"

// document is one loaded input.
type document struct {
	uri     string
	value   map[string]any
	entries []sourcemap.Entry
	ranges  map[string]sourcemap.Range
}

type run struct {
	engine   *Engine
	listener engine.Listener

	debug   bool
	verbose bool
	failed  bool
}

func (r *run) execute(ctx context.Context) bool {
	v, err := r.engine.view(ctx)
	if err != nil {
		r.emit(engine.Message{Channel: engine.ChannelFatal, Text: errUtils.Format(err, errUtils.PlainFormatterConfig())})
		return false
	}
	r.debug = truthy(v.options[OptionDebug])
	r.verbose = truthy(v.options[OptionVerbose])

	if len(v.inputs) == 0 {
		r.emit(engine.Message{Channel: engine.ChannelWarning, Text: "No input files provided"})
	}

	docs := make([]*document, 0, len(v.inputs))
	for _, input := range v.inputs {
		if ctx.Err() != nil {
			return false
		}
		r.debugf("Loading %s", input)
		if doc := r.load(ctx, input); doc != nil {
			docs = append(docs, doc)
		}
	}

	merged := map[string]any{}
	var entries []sourcemap.Entry
	for _, doc := range docs {
		r.mergeInto(merged, doc.value, sourcemap.Path{}, doc)
		entries = append(entries, doc.entries...)
	}
	sm := sourcemap.New(entries)
	r.verbosef("Merged %d input files into %d mapped paths", len(docs), sm.Len())

	r.checkReferences(merged, sm, v.inputs)
	if ctx.Err() != nil {
		return false
	}

	if err := r.emitArtifacts(v, merged, sm); err != nil {
		r.emit(engine.Message{Channel: engine.ChannelFatal, Text: errUtils.Format(err, errUtils.PlainFormatterConfig())})
		return false
	}

	r.emit(engine.Message{
		Channel: engine.ChannelInformation,
		Text:    fmt.Sprintf("Processed %d input files", len(docs)),
	})
	return !r.failed && ctx.Err() == nil
}

func (r *run) emit(msg engine.Message) {
	if msg.Channel == engine.ChannelError || msg.Channel == engine.ChannelFatal {
		r.failed = true
	}
	msg.Plugin = Plugin
	r.listener.MessageEmitted(msg)
}

func (r *run) debugf(format string, args ...any) {
	if r.debug {
		r.emit(engine.Message{Channel: engine.ChannelDebug, Text: fmt.Sprintf(format, args...)})
	}
}

func (r *run) verbosef(format string, args ...any) {
	if r.verbose {
		r.emit(engine.Message{Channel: engine.ChannelVerbose, Text: fmt.Sprintf(format, args...)})
	}
}

func (r *run) load(ctx context.Context, input string) *document {
	text, err := r.engine.fs.ReadFile(ctx, input)
	if err != nil {
		r.emit(engine.Message{
			Channel: engine.ChannelError,
			Text:    fmt.Sprintf("Unable to read input file %s", input),
			Key:     KeyFileNotFound,
			Ranges:  []engine.SourceRange{lineRange(r.engine.configURI, 1)},
		})
		return nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		r.emit(engine.Message{
			Channel: engine.ChannelError,
			Text:    fmt.Sprintf("Syntax error: %s", err),
			Key:     KeySyntaxError,
			Ranges:  []engine.SourceRange{lineRange(input, syntaxErrorLine(err))},
		})
		return nil
	}

	doc := &document{uri: input, ranges: map[string]sourcemap.Range{}}
	value, _ := doc.decode(&root, sourcemap.Path{}, nil)
	obj, ok := value.(map[string]any)
	if !ok {
		r.emit(engine.Message{
			Channel: engine.ChannelError,
			Text:    fmt.Sprintf("Input file %s is not an object", input),
			Key:     KeyInvalidDocument,
			Ranges:  []engine.SourceRange{lineRange(input, 1)},
		})
		return nil
	}
	doc.value = obj
	return doc
}

// decode converts n into plain values and records a source map entry for every key and item.
// active holds the aliases being expanded, so recursive anchors terminate.
func (d *document) decode(n *yaml.Node, p sourcemap.Path, active []*yaml.Node) (any, bool) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, true
		}
		return d.decode(n.Content[0], p, active)
	case yaml.AliasNode:
		if slices.Contains(active, n) {
			return nil, false
		}
		return d.decode(n.Alias, p, append(active, n))
	case yaml.MappingNode:
		obj := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			child := p.Append(k.Value)
			end := scalarEnd(k)
			if v.Kind == yaml.ScalarNode {
				end = scalarEnd(v)
			}
			d.record(child, start(k), end)
			if value, ok := d.decode(v, child, active); ok {
				obj[k.Value] = value
			}
		}
		return obj, true
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			child := p.Append(len(arr))
			d.record(child, start(item), scalarEnd(item))
			if value, ok := d.decode(item, child, active); ok {
				arr = append(arr, value)
			}
		}
		return arr, true
	default:
		var value any
		if err := n.Decode(&value); err != nil {
			return n.Value, true
		}
		return value, true
	}
}

func (d *document) record(p sourcemap.Path, from, to sourcemap.Position) {
	rng := sourcemap.Range{Start: from, End: to}
	d.entries = append(d.entries, sourcemap.Entry{Path: p, Source: d.uri, Range: rng})
	if _, ok := d.ranges[p.Key()]; !ok {
		d.ranges[p.Key()] = rng
	}
}

func (d *document) rangeOf(p sourcemap.Path) []engine.SourceRange {
	rng, ok := d.ranges[p.Key()]
	if !ok {
		return []engine.SourceRange{lineRange(d.uri, 1)}
	}
	return []engine.SourceRange{toSourceRange(d.uri, rng)}
}

// mergeInto copies src into dst. The first definition of a path wins; a conflicting
// redefinition is reported as a warning against the later file.
func (r *run) mergeInto(dst, src map[string]any, p sourcemap.Path, doc *document) {
	keys := lo.Keys(src)
	slices.Sort(keys)
	for _, k := range keys {
		value := src[k]
		existing, ok := dst[k]
		if !ok {
			dst[k] = value
			continue
		}
		if a, isMap := existing.(map[string]any); isMap {
			if b, isMap := value.(map[string]any); isMap {
				r.mergeInto(a, b, p.Append(k), doc)
				continue
			}
		}
		if !reflect.DeepEqual(existing, value) {
			child := p.Append(k)
			r.emit(engine.Message{
				Channel: engine.ChannelWarning,
				Text:    fmt.Sprintf("Duplicate definition of %s; the first definition is kept", child),
				Key:     KeyDuplicateDefinition,
				Ranges:  doc.rangeOf(child),
			})
		}
	}
}

// checkReferences validates every $ref in the merged definition. References into other
// input files are rewritten to local references.
func (r *run) checkReferences(root map[string]any, sm *sourcemap.Map, inputs []string) {
	var visit func(v any, p sourcemap.Path)
	visit = func(v any, p sourcemap.Path) {
		switch node := v.(type) {
		case map[string]any:
			if pointer, ok := node[refKey].(string); ok {
				node[refKey] = r.checkReference(root, sm, inputs, p.Append(refKey), pointer)
			}
			keys := lo.Keys(node)
			slices.Sort(keys)
			for _, k := range keys {
				if k != refKey {
					visit(node[k], p.Append(k))
				}
			}
		case []any:
			for i, item := range node {
				visit(item, p.Append(i))
			}
		}
	}
	visit(root, sourcemap.Path{})
}

func (r *run) checkReference(root map[string]any, sm *sourcemap.Map, inputs []string, refPath sourcemap.Path, pointer string) string {
	var ranges []engine.SourceRange
	origin := r.engine.configURI
	if entry, ok := sm.Original(refPath); ok {
		origin = entry.Source
		ranges = []engine.SourceRange{toSourceRange(entry.Source, entry.Range)}
	}

	file, fragment, _ := strings.Cut(pointer, "#")
	if file != "" {
		target := uri.Resolve(origin, file)
		if !slices.ContainsFunc(inputs, func(input string) bool { return uri.Equal(input, target) }) {
			r.emit(engine.Message{
				Channel: engine.ChannelWarning,
				Text:    fmt.Sprintf("Reference %s points outside the input files", pointer),
				Key:     KeyExternalReference,
				Ranges:  ranges,
			})
			return pointer
		}
		pointer = "#" + fragment
	}

	if !resolves(root, pointer) {
		r.emit(engine.Message{
			Channel: engine.ChannelError,
			Text:    fmt.Sprintf("Unresolved reference %s", pointer),
			Key:     KeyUnresolvedReference,
			Ranges:  ranges,
		})
	}
	return pointer
}

func resolves(root map[string]any, pointer string) bool {
	p, err := analysis.PointerToPath(root, pointer)
	if err != nil {
		return false
	}
	_, ok := analysis.ValueAt(root, p)
	return ok
}

func (r *run) emitArtifacts(v view, merged map[string]any, sm *sourcemap.Map) error {
	requested := literate.StringList(v.options, OptionOutputArtifact)

	if slices.Contains(requested, engine.ArtifactDefinition) {
		content, err := json.MarshalIndent(merged, "", "  ")
		if err != nil {
			return errUtils.Build(err).WithContext("artifact", engine.ArtifactDefinition).Err()
		}
		r.listener.ArtifactProduced(engine.Artifact{
			URI:     uri.Resolve(r.engine.configURI, engine.ArtifactDefinition),
			Type:    engine.ArtifactDefinition,
			Content: string(content),
		})
	}

	if slices.Contains(requested, engine.ArtifactDefinitionMap) {
		content, err := sm.MarshalJSON()
		if err != nil {
			return errUtils.Build(err).WithContext("artifact", engine.ArtifactDefinitionMap).Err()
		}
		r.listener.ArtifactProduced(engine.Artifact{
			URI:     uri.Resolve(r.engine.configURI, engine.ArtifactDefinitionMap),
			Type:    engine.ArtifactDefinitionMap,
			Content: string(content),
		})
	}

	return r.emitGenerated(v, merged)
}

// emitGenerated writes the definition for every json or yaml target that has an output folder.
func (r *run) emitGenerated(v view, merged map[string]any) error {
	targets := []struct {
		language, file, kind string
		marshal              func(any) ([]byte, error)
	}{
		{"json", "openapi.json", TypeSourceFileJSON, func(x any) ([]byte, error) { return json.MarshalIndent(x, "", "  ") }},
		{"yaml", "openapi.yaml", TypeSourceFileYAML, yaml.Marshal},
	}

	for _, target := range targets {
		settings, ok := v.options[target.language].(map[string]any)
		if !ok {
			continue
		}
		folder, _ := settings[OptionOutputFolder].(string)
		if folder == "" {
			continue
		}
		content, err := target.marshal(merged)
		if err != nil {
			return errUtils.Build(err).WithContext("language", target.language).Err()
		}
		r.listener.ArtifactProduced(engine.Artifact{
			URI:     uri.Resolve(r.engine.configURI, path.Join(folder, target.file)),
			Type:    target.kind,
			Content: string(content),
		})
		r.verbosef("Generated %s for %s", target.file, target.language)
	}
	return nil
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	default:
		return false
	}
}

func start(n *yaml.Node) sourcemap.Position {
	return sourcemap.Position{Line: n.Line, Column: max(n.Column-1, 0)}
}

// scalarEnd returns the end of a scalar token. Other nodes end where they start.
func scalarEnd(n *yaml.Node) sourcemap.Position {
	pos := start(n)
	if n.Kind != yaml.ScalarNode {
		return pos
	}
	width := len([]rune(n.Value))
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		width += 2
	}
	pos.Column += width
	return pos
}

func toSourceRange(doc string, rng sourcemap.Range) engine.SourceRange {
	return engine.SourceRange{
		Document: doc,
		Start:    engine.Position{Line: rng.Start.Line, Column: rng.Start.Column},
		End:      engine.Position{Line: rng.End.Line, Column: rng.End.Column},
	}
}

func lineRange(doc string, line int) engine.SourceRange {
	return engine.SourceRange{
		Document: doc,
		Start:    engine.Position{Line: line},
		End:      engine.Position{Line: line},
	}
}

// syntaxErrorLine extracts the line from a yaml.v3 error ("yaml: line 3: ...").
func syntaxErrorLine(err error) int {
	var line int
	msg := err.Error()
	if idx := strings.Index(msg, "line "); idx >= 0 {
		if _, scanErr := fmt.Sscanf(msg[idx:], "line %d", &line); scanErr == nil && line > 0 {
			return line
		}
	}
	return 1
}
