// Package sourcemap indexes the position metadata of a produced definition: for every path
// into the produced structure it records the original document range the value came from.
package sourcemap

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/lsp/uri"
)

// Version is the serialization format version written by MarshalJSON.
const Version = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Path addresses a node of a produced structure. Elements are string keys or int indices.
type Path []any

// String renders the path as a JSONPath expression.
// Examples:
//
//	Path{"definitions", "Pet"}.String() -> "$.definitions.Pet"
//	Path{"paths", "/pets", "get"}.String() -> "$.paths['/pets'].get"
//	Path{"tags", 0}.String() -> "$.tags[0]"
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, elem := range p {
		switch v := elem.(type) {
		case int:
			sb.WriteString("[" + strconv.Itoa(v) + "]")
		case string:
			if identifier.MatchString(v) {
				sb.WriteString("." + v)
				continue
			}
			sb.WriteString("['" + strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), "'", `\'`) + "']")
		default:
			fmt.Fprintf(&sb, "[%v]", v)
		}
	}
	return sb.String()
}

// Key returns an unambiguous map key for the path.
func (p Path) Key() string {
	parts := make([]string, len(p))
	for i, elem := range p {
		switch v := elem.(type) {
		case int:
			parts[i] = strconv.Itoa(v)
		default:
			parts[i] = strconv.Quote(fmt.Sprint(v))
		}
	}
	return strings.Join(parts, "/")
}

// Append returns a copy of p extended by elems.
func (p Path) Append(elems ...any) Path {
	out := make(Path, 0, len(p)+len(elems))
	out = append(out, p...)
	return append(out, elems...)
}

// Position is a location in an original document. Line is 1-based, Column is 0-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Before reports whether p comes strictly before o.
func (p Position) Before(o Position) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Column < o.Column)
}

// Range is a span in an original document, end inclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether pos lies within r.
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && !r.End.Before(pos)
}

// span returns the line and column extent of r.
func (r Range) span() (lines, columns int) {
	return r.End.Line - r.Start.Line, r.End.Column - r.Start.Column
}

// Entry maps a produced path to its original document range.
type Entry struct {
	Path   Path   `json:"path"`
	Source string `json:"source"`
	Range  Range  `json:"range"`
}

// Map is an immutable source map.
type Map struct {
	entries []Entry
	byPath  map[string]int
}

// New builds a Map. When several entries share a path the first one owns it.
func New(entries []Entry) *Map {
	m := &Map{byPath: make(map[string]int, len(entries))}
	for _, e := range entries {
		key := e.Path.Key()
		if _, taken := m.byPath[key]; taken {
			continue
		}
		m.byPath[key] = len(m.entries)
		m.entries = append(m.entries, Entry{Path: slices.Clone(e.Path), Source: e.Source, Range: e.Range})
	}
	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of all entries in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return slices.Clone(m.entries)
}

// Original returns the entry owning path.
func (m *Map) Original(path Path) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	idx, ok := m.byPath[path.Key()]
	if !ok {
		return Entry{}, false
	}
	return m.entries[idx], true
}

// Generated returns every entry whose original range in source contains pos,
// innermost range first.
func (m *Map) Generated(source string, pos Position) []Entry {
	if m == nil {
		return nil
	}
	var out []Entry
	for _, e := range m.entries {
		if uri.Equal(e.Source, source) && e.Range.Contains(pos) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		al, ac := a.Range.span()
		bl, bc := b.Range.span()
		if al != bl {
			return al - bl
		}
		return ac - bc
	})
	return out
}

type wireMapping struct {
	Path   []any    `json:"path"`
	Source string   `json:"source"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
}

type wireMap struct {
	Version  int           `json:"version"`
	Mappings []wireMapping `json:"mappings"`
}

// MarshalJSON encodes the map in the artifact format read by Parse.
func (m *Map) MarshalJSON() ([]byte, error) {
	w := wireMap{Version: Version, Mappings: make([]wireMapping, 0, m.Len())}
	for _, e := range m.Entries() {
		w.Mappings = append(w.Mappings, wireMapping{
			Path:   []any(e.Path),
			Source: e.Source,
			Start:  e.Range.Start,
			End:    e.Range.End,
		})
	}
	return json.Marshal(w)
}

// Parse decodes a source map artifact.
func Parse(data []byte) (*Map, error) {
	var w wireMap
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errUtils.Build(err).WithSentinel(errUtils.ErrInvalidSourceMap).Err()
	}
	if w.Version != Version {
		return nil, errUtils.Build(errUtils.ErrInvalidSourceMap).
			WithContext("version", w.Version).
			WithHintf("Expected source map version %d", Version).
			Err()
	}

	entries := make([]Entry, 0, len(w.Mappings))
	for i, mapping := range w.Mappings {
		path, err := normalizePath(mapping.Path)
		if err != nil {
			return nil, errUtils.Build(err).
				WithSentinel(errUtils.ErrInvalidSourceMap).
				WithContext("mapping", i).
				Err()
		}
		entries = append(entries, Entry{
			Path:   path,
			Source: mapping.Source,
			Range:  Range{Start: mapping.Start, End: mapping.End},
		})
	}
	return New(entries), nil
}

func normalizePath(raw []any) (Path, error) {
	path := make(Path, len(raw))
	for i, elem := range raw {
		switch v := elem.(type) {
		case string:
			path[i] = v
		case float64:
			if v != float64(int(v)) || v < 0 {
				return nil, errors.Newf("path element %v is not an index", v)
			}
			path[i] = int(v)
		case int:
			path[i] = v
		default:
			return nil, errors.Newf("unsupported path element %T", elem)
		}
	}
	return path, nil
}
