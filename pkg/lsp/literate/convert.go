package literate

import (
	"strings"
	"sync"

	"github.com/mikefarah/yq/v4/pkg/yqlib"
	logging "gopkg.in/op/go-logging.v1"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/specls/errors"
	log "github.com/cloudposse/specls/pkg/logger"
)

var initYq sync.Once

func configureYq() {
	initYq.Do(func() {
		yqlib.InitExpressionParser()
		yqlib.GetLogger().SetBackend(log.NewGoLoggingBackend(logging.DEBUG))
	})
}

// ToJSON converts a literate configuration, a YAML document or a JSON document to indented JSON.
func ToJSON(content string) (string, error) {
	input := content
	if IsConfigurationDocument(content) {
		values, err := ParseConfiguration(content)
		if err != nil {
			return "", err
		}
		out, err := yaml.Marshal(values)
		if err != nil {
			return "", errUtils.Build(err).WithSentinel(errUtils.ErrConversion).Err()
		}
		input = string(out)
	}
	if strings.TrimSpace(input) == "" {
		return "", nil
	}

	configureYq()

	yamlPrefs := yqlib.NewDefaultYamlPreferences()
	jsonPrefs := yqlib.JsonPreferences{Indent: 2, ColorsEnabled: false, UnwrapScalar: false}

	evaluator := yqlib.NewStringEvaluator()
	result, err := evaluator.Evaluate(".", input, yqlib.NewJSONEncoder(jsonPrefs), yqlib.NewYamlDecoder(yamlPrefs))
	if err != nil {
		return "", errUtils.Build(err).
			WithSentinel(errUtils.ErrConversion).
			WithHint("The document must be valid YAML, JSON or a literate configuration").
			Err()
	}

	log.Trace("Converted document to JSON", "bytes", len(result))
	return strings.TrimSpace(result), nil
}
