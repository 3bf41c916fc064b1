// Package literate classifies documents (literate markdown configurations, OpenAPI
// definitions) and reads the YAML carried by literate configurations.
package literate

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/specls/errors"
)

// Marker identifies a markdown document as a configuration.
const Marker = "> see https://aka.ms/autorest"

// InputFileKey lists the input files of a configuration.
const InputFileKey = "input-file"

var markerPattern = regexp.MustCompile(`(?m)^>\s*see\s+https://aka\.ms/autorest`)

var (
	configurationExtensions = []string{"markdown", "md", ".md"}
	specExtensions          = []string{"json", "yaml", "yml", ".json", ".yaml", ".yml"}
)

// IsConfigurationExtension reports whether a language id or file extension denotes a
// literate configuration.
func IsConfigurationExtension(languageOrExt string) bool {
	return slices.Contains(configurationExtensions, strings.ToLower(languageOrExt))
}

// IsSpecExtension reports whether a language id or file extension denotes an OpenAPI document.
func IsSpecExtension(languageOrExt string) bool {
	return slices.Contains(specExtensions, strings.ToLower(languageOrExt))
}

// IsConfigurationDocument reports whether content is a literate configuration.
func IsConfigurationDocument(content string) bool {
	return markerPattern.MatchString(content)
}

// IsSpecDocument reports whether content is a Swagger 2.0 or OpenAPI 3.x document.
// Unparseable content is not a spec document.
func IsSpecDocument(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}

	var root map[string]any
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return false
	}

	if v, ok := root["swagger"]; ok {
		return scalarString(v) == "2.0"
	}
	if v, ok := root["openapi"]; ok {
		return strings.HasPrefix(scalarString(v), "3.")
	}
	return false
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		out := strconv.FormatFloat(s, 'f', -1, 64)
		if !strings.Contains(out, ".") {
			out += ".0"
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}

// SyntheticConfiguration returns the text of an in-memory configuration whose only input is documentURI.
func SyntheticConfiguration(documentURI string) string {
	return "#Fake config file \n" + Marker + " \n``` yaml \n" + InputFileKey + ": \n - " + documentURI
}

// ParseConfiguration merges the unguarded YAML code blocks of a literate configuration.
// Maps merge recursively, sequences concatenate and later scalars win.
func ParseConfiguration(content string) (map[string]any, error) {
	source := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	merged := map[string]any{}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !isPlainYAMLBlock(block, source) {
			return ast.WalkSkipChildren, nil
		}

		var sb strings.Builder
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			sb.Write(segment.Value(source))
		}

		var values map[string]any
		if err := yaml.Unmarshal([]byte(sb.String()), &values); err != nil {
			return ast.WalkStop, errors.Wrap(err, "parsing configuration block")
		}
		merged = mergeValues(merged, values)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, errUtils.Build(err).WithSentinel(errUtils.ErrInvalidConfiguration).Err()
	}
	return merged, nil
}

// isPlainYAMLBlock reports whether block is a yaml block without a guard expression.
func isPlainYAMLBlock(block *ast.FencedCodeBlock, source []byte) bool {
	if block.Info == nil {
		return false
	}
	info := strings.Fields(string(block.Info.Segment.Value(source)))
	if len(info) == 0 || !strings.EqualFold(info[0], "yaml") {
		return false
	}
	return len(info) == 1
}

func mergeValues(dst, src map[string]any) map[string]any {
	for k, v := range src {
		existing, ok := dst[k]
		if !ok {
			dst[k] = v
			continue
		}
		switch cur := existing.(type) {
		case map[string]any:
			if next, ok := v.(map[string]any); ok {
				dst[k] = mergeValues(cur, next)
				continue
			}
		case []any:
			if next, ok := v.([]any); ok {
				dst[k] = append(cur, next...)
				continue
			}
			if v != nil {
				dst[k] = append(cur, v)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

// StringList reads a string or list-of-strings option.
func StringList(options map[string]any, key string) []string {
	switch v := options[key].(type) {
	case string:
		return []string{v}
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
