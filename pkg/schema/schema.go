package schema

import "time"

// Configuration is the server configuration loaded from specls.yaml, environment and flags.
type Configuration struct {
	Logs   Logs   `yaml:"logs" json:"logs" mapstructure:"logs"`
	Server Server `yaml:"server" json:"server" mapstructure:"server"`
	Engine Engine `yaml:"engine" json:"engine" mapstructure:"engine"`

	// ConfigFileUsed is the path of the configuration file that was read, if any.
	ConfigFileUsed string `yaml:"-" json:"-" mapstructure:"-"`
}

type Logs struct {
	File  string `yaml:"file" json:"file" mapstructure:"file"`
	Level string `yaml:"level" json:"level" mapstructure:"level"`
}

// Server configures the editor protocol transport.
type Server struct {
	Transport     string        `yaml:"transport" json:"transport" mapstructure:"transport"`
	Address       string        `yaml:"address" json:"address" mapstructure:"address"`
	Watch         bool          `yaml:"watch" json:"watch" mapstructure:"watch"`
	WatchDebounce time.Duration `yaml:"watch_debounce" json:"watch_debounce" mapstructure:"watch_debounce"`
	Trace         bool          `yaml:"trace" json:"trace" mapstructure:"trace"`
}

// Engine holds options applied to every transform run.
type Engine struct {
	// Defaults are merged into every run after the built-in baseline and before client overrides.
	Defaults map[string]any `yaml:"defaults" json:"defaults" mapstructure:"defaults"`
	// RuleDocs maps a plugin name to the base URL of its rule documentation.
	RuleDocs map[string]string `yaml:"rule_docs" json:"rule_docs" mapstructure:"rule_docs"`
}

// Settings is the client payload of workspace/didChangeConfiguration, under the "autorest" section.
type Settings struct {
	Debug         bool              `json:"debug" mapstructure:"debug"`
	Verbose       bool              `json:"verbose" mapstructure:"verbose"`
	Configuration map[string]any    `json:"configuration" mapstructure:"configuration"`
	RuleDocs      map[string]string `json:"ruleDocs" mapstructure:"ruleDocs"`
}
