package config

import (
	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/schema"
)

// DecodeSettings extracts the SettingsSection object from a workspace/didChangeConfiguration payload.
// ok is false when the payload carries no such section.
func DecodeSettings(payload any) (settings schema.Settings, ok bool, err error) {
	root, isMap := payload.(map[string]any)
	if !isMap {
		return settings, false, nil
	}

	section, found := root[SettingsSection]
	if !found || section == nil {
		return settings, false, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return settings, false, errors.Mark(err, errUtils.ErrInvalidSettings)
	}

	if err := decoder.Decode(section); err != nil {
		return schema.Settings{}, false, errUtils.Build(errors.Wrap(err, "decoding client settings")).
			WithSentinel(errUtils.ErrInvalidSettings).
			Err()
	}

	return settings, true, nil
}

// MergeRuleDocs returns base overlaid with overrides; neither input is modified.
func MergeRuleDocs(base, overrides map[string]string) map[string]string {
	return lo.Assign(base, overrides)
}
