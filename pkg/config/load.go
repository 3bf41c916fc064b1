package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	errUtils "github.com/cloudposse/specls/errors"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/schema"
)

// LoadConfig loads the server configuration into v and decodes it.
// Sources in increasing precedence: defaults, home dir (~/.specls), current directory,
// the explicit configFile, SPECLS_* environment variables, flags already bound to v.
func LoadConfig(v *viper.Viper, configFile string) (schema.Configuration, error) {
	var cfg schema.Configuration

	v.SetConfigType("yaml")
	v.SetTypeByDefaultValue(true)
	setDefaultConfiguration(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readHomeConfig(v); err != nil {
		return cfg, wrapLoadErr(err)
	}
	if err := readWorkDirConfig(v); err != nil {
		return cfg, wrapLoadErr(err)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.MergeInConfig(); err != nil {
			return cfg, errUtils.Build(wrapLoadErr(err)).
				WithHintf("Check that %s exists and is valid YAML", configFile).
				Err()
		}
	}

	cfg.ConfigFileUsed = v.ConfigFileUsed()
	if cfg.ConfigFileUsed == "" {
		log.Debug("No specls config file found, using defaults", "paths", "home dir, current dir")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, wrapLoadErr(err)
	}

	if cfg.ConfigFileUsed != "" && !filepath.IsAbs(cfg.ConfigFileUsed) {
		if abs, err := filepath.Abs(cfg.ConfigFileUsed); err == nil {
			cfg.ConfigFileUsed = abs
		}
	}

	if cfg.Engine.RuleDocs == nil {
		cfg.Engine.RuleDocs = map[string]string{}
	}
	if _, ok := cfg.Engine.RuleDocs["azure-validator"]; !ok {
		cfg.Engine.RuleDocs["azure-validator"] = ValidatorRulesDocURL
	}

	return cfg, nil
}

// setDefaultConfiguration sets default configuration for the viper instance.
func setDefaultConfiguration(v *viper.Viper) {
	v.SetDefault("logs.file", "/dev/stderr")
	v.SetDefault("logs.level", "Info")
	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("server.watch", false)
	v.SetDefault("server.watch_debounce", DefaultWatchDebounce)
	v.SetDefault("server.trace", false)
}

// readHomeConfig loads config from the user's HOME dir.
func readHomeConfig(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Debug("Home directory not available", "error", err)
		return nil
	}
	return mergeConfig(v, filepath.Join(home, DotCliConfigFileName), CliConfigFileName)
}

// readWorkDirConfig loads config from the current working directory.
func readWorkDirConfig(v *viper.Viper) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := mergeConfig(v, wd, CliConfigFileName); err != nil {
		return err
	}
	return mergeConfig(v, wd, DotCliConfigFileName)
}

// mergeConfig merges <path>/<fileName>.yaml (or .yml) into v; a missing file is not an error.
func mergeConfig(v *viper.Viper, path string, fileName string) error {
	for _, ext := range []string{".yaml", ".yml"} {
		candidate := filepath.Join(path, fileName+ext)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		v.SetConfigFile(candidate)
		if err := v.MergeInConfig(); err != nil {
			return err
		}
		log.Debug("Merged config file", "file", candidate)
		return nil
	}
	return nil
}

func wrapLoadErr(err error) error {
	return errors.Mark(errors.Wrap(err, "loading specls configuration"), errUtils.ErrLoadConfig)
}
