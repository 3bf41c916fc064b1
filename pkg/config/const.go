package config

import "time"

const (
	CliConfigFileName    = "specls"
	DotCliConfigFileName = ".specls"

	// EnvPrefix prefixes environment overrides, e.g. SPECLS_LOGS_LEVEL.
	EnvPrefix = "SPECLS"

	// SettingsSection is the key of the client settings object this server reads.
	SettingsSection = "autorest"

	TransportStdio     = "stdio"
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"

	DefaultAddress       = "127.0.0.1:7998"
	DefaultWatchDebounce = 250 * time.Millisecond

	// ValidatorRulesDocURL documents the rules emitted by the azure-validator plugin.
	ValidatorRulesDocURL = "https://github.com/Azure/azure-rest-api-specs/blob/current/documentation/openapi-authoring-automated-guidelines.md"
)
