// Package analysis answers cursor queries over a source document using the produced
// definition and its source map: reference pointers ($ref) and JSONPath queries.
package analysis

import (
	"net/url"
	"strconv"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/specls/errors"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/sourcemap"
)

const refKey = "$ref"

// Location is a node of the produced definition together with the original range it came from.
type Location struct {
	Value    any
	Path     sourcemap.Path
	Document string
	Range    sourcemap.Range
}

// Analysis is an immutable snapshot of one document and the definition it contributed to.
type Analysis struct {
	uri        string
	text       string
	definition any
	sourceMap  *sourcemap.Map
	root       *yaml.Node
}

// New builds an Analysis. Unparseable text disables text-based lookups only.
func New(docURI, text string, definition any, sourceMap *sourcemap.Map) *Analysis {
	a := &Analysis{
		uri:        docURI,
		text:       text,
		definition: definition,
		sourceMap:  sourceMap,
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		log.Debug("Document is not valid YAML or JSON", "uri", docURI, "error", err)
	} else {
		a.root = &root
	}
	return a
}

// URI returns the analysed document.
func (a *Analysis) URI() string {
	return a.uri
}

// ReferenceAt returns the JSONPath of the definition node targeted by the reference
// pointer under pos.
func (a *Analysis) ReferenceAt(pos protocol.Position) (string, bool) {
	if pointer, ok := a.mappedReferenceAt(pos); ok {
		if path, err := PointerToPath(a.definition, pointer); err == nil {
			return path.String(), true
		}
	}

	key, value := a.scalarAt(pos)
	if key == nil || value == nil || key.Value != refKey {
		return "", false
	}
	pointer := value.Value
	if idx := strings.Index(pointer, "#"); idx > 0 {
		// Pointers into other files are only resolvable through the source map.
		return "", false
	}
	path, err := PointerToPath(a.definition, pointer)
	if err != nil {
		log.Trace("Ignoring malformed reference", "uri", a.uri, "pointer", pointer, "error", err)
		return "", false
	}
	return path.String(), true
}

// mappedReferenceAt looks for a produced "$ref" node that originated at pos and returns its value.
func (a *Analysis) mappedReferenceAt(pos protocol.Position) (string, bool) {
	for _, entry := range a.sourceMap.Generated(a.uri, toSourcePosition(pos)) {
		if len(entry.Path) == 0 || entry.Path[len(entry.Path)-1] != refKey {
			continue
		}
		value, found := ValueAt(a.definition, entry.Path)
		if !found {
			continue
		}
		if pointer, ok := value.(string); ok {
			return pointer, true
		}
	}
	return "", false
}

// QueryAt returns the JSONPath expression written at pos, if any.
func (a *Analysis) QueryAt(pos protocol.Position) (string, bool) {
	_, value := a.scalarAt(pos)
	if value == nil || !strings.HasPrefix(value.Value, "$") {
		return "", false
	}
	if _, err := ParseQuery(value.Value); err != nil {
		return "", false
	}
	return value.Value, true
}

// DefinitionLocations evaluates a JSONPath expression against the definition and maps every
// match back to its original document. Matches without source information are skipped.
func (a *Analysis) DefinitionLocations(expr string) ([]Location, error) {
	q, err := ParseQuery(expr)
	if err != nil {
		return nil, err
	}

	var out []Location
	for _, m := range q.Evaluate(a.definition) {
		entry, ok := a.sourceMap.Original(m.Path)
		if !ok {
			continue
		}
		out = append(out, Location{
			Value:    m.Value,
			Path:     m.Path,
			Document: entry.Source,
			Range:    entry.Range,
		})
	}
	return out, nil
}

// scalarAt finds the scalar mapping value under pos and returns it with its key.
func (a *Analysis) scalarAt(pos protocol.Position) (key, value *yaml.Node) {
	if a.root == nil {
		return nil, nil
	}
	line := int(pos.Line) + 1
	column := int(pos.Character) + 1

	var visit func(n *yaml.Node) bool
	visit = func(n *yaml.Node) bool {
		switch n.Kind {
		case yaml.DocumentNode, yaml.SequenceNode:
			for _, c := range n.Content {
				if visit(c) {
					return true
				}
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				k, v := n.Content[i], n.Content[i+1]
				if v.Kind == yaml.ScalarNode && covers(v, line, column) {
					key, value = k, v
					return true
				}
				if covers(k, line, column) {
					key, value = nil, k
					return true
				}
				if visit(v) {
					return true
				}
			}
		case yaml.ScalarNode:
			if covers(n, line, column) {
				value = n
				return true
			}
		}
		return false
	}
	visit(a.root)
	return key, value
}

// covers reports whether the single-line scalar token n spans line:column (both 1-based).
func covers(n *yaml.Node, line, column int) bool {
	if n.Kind != yaml.ScalarNode || n.Line != line {
		return false
	}
	width := len([]rune(n.Value))
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		width += 2
	}
	return column >= n.Column && column <= n.Column+width
}

func toSourcePosition(pos protocol.Position) sourcemap.Position {
	return sourcemap.Position{Line: int(pos.Line) + 1, Column: int(pos.Character)}
}

// PointerToPath converts a local JSON reference ("#/definitions/Pet") into a path within
// definition. Array tokens become indices when the addressed node is an array.
func PointerToPath(definition any, pointer string) (sourcemap.Path, error) {
	fragment := strings.TrimPrefix(pointer, "#")
	if decoded, err := url.PathUnescape(fragment); err == nil {
		fragment = decoded
	}
	if fragment == "" {
		return sourcemap.Path{}, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, errUtils.Build(errUtils.ErrInvalidJSONPointer).WithContext("pointer", pointer).Err()
	}

	tokens := strings.Split(fragment[1:], "/")
	path := make(sourcemap.Path, 0, len(tokens))
	cur := definition
	for _, token := range tokens {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		switch node := cur.(type) {
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, errUtils.Build(errUtils.ErrInvalidJSONPointer).
					WithContext("pointer", pointer).
					WithContext("token", token).
					Err()
			}
			path = append(path, idx)
			cur = node[idx]
		case map[string]any:
			path = append(path, token)
			cur = node[token]
		default:
			path = append(path, token)
			cur = nil
		}
	}
	return path, nil
}
