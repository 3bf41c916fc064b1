package literate

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/specls/errors"
)

const readme = "# Pets\n\n" + Marker + "\n\n" +
	"``` yaml\n" +
	"input-file:\n" +
	"  - pets.yaml\n" +
	"openapi-type: arm\n" +
	"```\n\n" +
	"Some prose.\n\n" +
	"``` yaml $(tag) == 'v2'\n" +
	"input-file: v2/pets.yaml\n" +
	"```\n\n" +
	"``` yaml\n" +
	"input-file:\n" +
	"  - stores.yaml\n" +
	"azure-validator: true\n" +
	"```\n"

func TestExtensions(t *testing.T) {
	assert.True(t, IsConfigurationExtension("markdown"))
	assert.True(t, IsConfigurationExtension(".MD"))
	assert.False(t, IsConfigurationExtension("yaml"))

	assert.True(t, IsSpecExtension("json"))
	assert.True(t, IsSpecExtension(".yml"))
	assert.False(t, IsSpecExtension("markdown"))
}

func TestIsConfigurationDocument(t *testing.T) {
	assert.True(t, IsConfigurationDocument(readme))
	assert.True(t, IsConfigurationDocument(SyntheticConfiguration("file:///ws/a.yaml")))
	assert.False(t, IsConfigurationDocument("# Just notes\n\nsee https://aka.ms/autorest inline"))
}

func TestIsSpecDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"swagger yaml", "swagger: '2.0'\ninfo: {}\n", true},
		{"swagger unquoted", "swagger: 2.0\n", true},
		{"swagger json", `{"swagger": "2.0", "paths": {}}`, true},
		{"openapi 3", "openapi: 3.0.1\n", true},
		{"openapi 2", "openapi: 2.0.0\n", false},
		{"other yaml", "name: pets\n", false},
		{"markdown", readme, false},
		{"empty", "", false},
		{"broken", "swagger: [", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSpecDocument(tt.content))
		})
	}
}

func TestParseConfiguration(t *testing.T) {
	values, err := ParseConfiguration(readme)
	require.NoError(t, err)

	assert.Equal(t, []string{"pets.yaml", "stores.yaml"}, StringList(values, InputFileKey))
	assert.Equal(t, "arm", values["openapi-type"])
	assert.Equal(t, true, values["azure-validator"])
}

func TestParseConfiguration_Synthetic(t *testing.T) {
	values, err := ParseConfiguration(SyntheticConfiguration("file:///ws/a.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"file:///ws/a.yaml"}, StringList(values, InputFileKey))
}

func TestParseConfiguration_InvalidBlock(t *testing.T) {
	_, err := ParseConfiguration(Marker + "\n\n``` yaml\ninput-file: [\n```\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUtils.ErrInvalidConfiguration))
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"a"}, StringList(map[string]any{"k": "a"}, "k"))
	assert.Equal(t, []string{"a", "b"}, StringList(map[string]any{"k": []any{"a", 3, "b", ""}}, "k"))
	assert.Nil(t, StringList(map[string]any{}, "k"))
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON("swagger: '2.0'\ninfo:\n  title: pets\n")
	require.NoError(t, err)
	assert.JSONEq(t, `{"swagger": "2.0", "info": {"title": "pets"}}`, out)

	out, err = ToJSON(SyntheticConfiguration("file:///ws/a.yaml"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"input-file": ["file:///ws/a.yaml"]}`, out)

	out, err = ToJSON("   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}
