package dispatcher

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/specls/errors"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/analysis"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/lsp/sourcemap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	languageYAML      = "yaml"
	languagePlainText = "plaintext"
)

// Hover renders the definition nodes targeted by the reference under pos, then a summary
// of the nodes matched by the JSONPath query under pos. It returns nil when the document
// has no analysis or nothing is under pos.
func (d *Dispatcher) Hover(ctx context.Context, docURI string, pos protocol.Position) (*protocol.Hover, error) {
	a, err := d.Analysis(ctx, docURI)
	if err != nil || a == nil {
		return nil, err
	}

	var contents []protocol.MarkedStringStruct
	if path, ok := a.ReferenceAt(pos); ok {
		for _, loc := range locations(a, path) {
			out, err := yaml.Marshal(loc.Value)
			if err != nil {
				log.Debug("Unable to render definition", "path", loc.Path.String(), "error", err)
				continue
			}
			contents = append(contents, protocol.MarkedStringStruct{Language: languageYAML, Value: string(out)})
		}
	}
	if query, ok := a.QueryAt(pos); ok {
		matches := locations(a, query)
		paths := lo.Map(matches, func(loc analysis.Location, _ int) string { return loc.Path.String() })
		contents = append(contents, protocol.MarkedStringStruct{
			Language: languagePlainText,
			Value:    fmt.Sprintf("%d matches\n%s", len(matches), strings.Join(paths, "\n")),
		})
	}

	if len(contents) == 0 {
		return nil, nil
	}
	return &protocol.Hover{Contents: contents}, nil
}

// Definition returns the original locations of the reference target under pos followed by
// the locations matched by the JSONPath query under pos.
func (d *Dispatcher) Definition(ctx context.Context, docURI string, pos protocol.Position) ([]protocol.Location, error) {
	result := []protocol.Location{}

	a, err := d.Analysis(ctx, docURI)
	if err != nil || a == nil {
		return result, err
	}

	var found []analysis.Location
	if path, ok := a.ReferenceAt(pos); ok {
		found = append(found, locations(a, path)...)
	}
	if query, ok := a.QueryAt(pos); ok {
		found = append(found, locations(a, query)...)
	}
	for _, loc := range found {
		result = append(result, protocol.Location{URI: loc.Document, Range: toProtocolRange(loc.Range)})
	}
	return result, nil
}

// Analysis builds the analysis of docURI from the last run of its configuration, after
// waiting for a run in flight. It returns nil when no run produced both the definition
// and its source map.
func (d *Dispatcher) Analysis(ctx context.Context, docURI string) (*analysis.Analysis, error) {
	configURI := d.resolver.Resolve(ctx, docURI)
	c, ok := d.runs.Lookup(configURI)
	if !ok {
		return nil, nil
	}
	if err := c.Wait(ctx); err != nil {
		return nil, err
	}

	definitionArtifact, hasDefinition := c.Artifact(engine.ArtifactDefinition)
	mapArtifact, hasMap := c.Artifact(engine.ArtifactDefinitionMap)
	if !hasDefinition || !hasMap {
		log.Debug("No definition available", "uri", docURI, "configuration", configURI)
		return nil, nil
	}

	var definition any
	if err := json.Unmarshal([]byte(definitionArtifact.Content), &definition); err != nil {
		return nil, errUtils.Build(err).
			WithSentinel(errUtils.ErrNoDefinition).
			WithConfiguration(configURI).
			Err()
	}
	sm, err := sourcemap.Parse([]byte(mapArtifact.Content))
	if err != nil {
		return nil, err
	}

	return analysis.New(docURI, d.storage.ReadFileOrEmpty(ctx, docURI), definition, sm), nil
}

func locations(a *analysis.Analysis, expr string) []analysis.Location {
	found, err := a.DefinitionLocations(expr)
	if err != nil {
		log.Debug("Unable to evaluate query", "uri", a.URI(), "query", expr, "error", err)
		return nil
	}
	return found
}

func toProtocolRange(r sourcemap.Range) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(r.Start),
		End:   toProtocolPosition(r.End),
	}
}

func toProtocolPosition(pos sourcemap.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(max(pos.Line-1, 0)),
		Character: protocol.UInteger(max(pos.Column, 0)),
	}
}
