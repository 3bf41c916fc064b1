// Package engine defines the boundary between the language server and the document
// transformation engine. The engine is a black box: it is created for a configuration
// document, accepts option overlays, enumerates its input files and executes
// asynchronously, reporting artifacts and messages to a Listener.
package engine

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=$GOFILE -destination=mock_$GOFILE -package=$GOPACKAGE

import (
	"context"
	"strings"
)

// FileSystem is the storage view handed to an engine. Implementations must consult their
// in-memory override table before touching physical storage.
type FileSystem interface {
	// ReadFile returns the text of the document at uri.
	ReadFile(ctx context.Context, uri string) (string, error)
	// EnumerateConfigLikeFiles lists configuration-shaped documents directly inside folderURI.
	EnumerateConfigLikeFiles(ctx context.Context, folderURI string) ([]string, error)
	// IsDirectory reports whether uri names a folder.
	IsDirectory(ctx context.Context, uri string) bool
}

// Factory creates an engine bound to the configuration document configURI.
type Factory func(configURI string, fs FileSystem) (Engine, error)

// Engine is one transform engine instance.
type Engine interface {
	// AddConfiguration merges options; later calls override earlier matching keys.
	AddConfiguration(options map[string]any)
	// ResetConfiguration drops every option applied so far.
	ResetConfiguration()
	// InputFiles returns the resolved input-file URIs of the configuration.
	InputFiles(ctx context.Context) ([]string, error)
	// Execute starts a run. Events are delivered to listener until the returned Process finishes.
	Execute(ctx context.Context, listener Listener) Process
}

// Process is a running execution.
type Process interface {
	// Cancel signals cancellation. Completion is still reported by Wait.
	Cancel()
	// Wait blocks until the run finishes and reports whether it succeeded.
	Wait() bool
}

// Listener receives the event streams of a run.
type Listener interface {
	ArtifactProduced(artifact Artifact)
	MessageEmitted(message Message)
}

// ListenerFuncs adapts a pair of functions to Listener. Nil functions are ignored.
type ListenerFuncs struct {
	OnArtifact func(Artifact)
	OnMessage  func(Message)
}

func (l ListenerFuncs) ArtifactProduced(artifact Artifact) {
	if l.OnArtifact != nil {
		l.OnArtifact(artifact)
	}
}

func (l ListenerFuncs) MessageEmitted(message Message) {
	if l.OnMessage != nil {
		l.OnMessage(message)
	}
}

// Channel classifies an engine message.
type Channel int

const (
	ChannelDebug Channel = iota
	ChannelVerbose
	ChannelInformation
	ChannelHint
	ChannelWarning
	ChannelError
	ChannelFatal
)

var channelNames = [...]string{
	ChannelDebug:       "debug",
	ChannelVerbose:     "verbose",
	ChannelInformation: "information",
	ChannelHint:        "hint",
	ChannelWarning:     "warning",
	ChannelError:       "error",
	ChannelFatal:       "fatal",
}

func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return "unknown"
	}
	return channelNames[c]
}

// MarshalText encodes the channel by name.
func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseChannel maps a channel name back to a Channel.
func ParseChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if strings.EqualFold(n, name) {
			return Channel(i), true
		}
	}
	return ChannelInformation, false
}

// Position is a location in a source document. Line is 1-based, Column is 0-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceRange is a range inside an original document.
type SourceRange struct {
	Document string   `json:"document"`
	Start    Position `json:"start"`
	End      Position `json:"end"`
}

// Message is a message emitted by a run.
type Message struct {
	Channel Channel `json:"channel"`
	Text    string  `json:"text"`
	// Plugin names the engine plugin that produced the message, if any.
	Plugin string `json:"plugin,omitempty"`
	// Key is the rule key, typically {id, name}.
	Key    []string      `json:"key,omitempty"`
	Ranges []SourceRange `json:"ranges,omitempty"`
}

// Artifact is a named output of a run.
type Artifact struct {
	URI     string
	Type    string
	Content string
}

// Option keys understood by every engine.
const (
	OptionOutputArtifact = "output-artifact"
	OptionOutputFolder   = "output-folder"
	OptionDebug          = "debug"
	OptionVerbose        = "verbose"
)

// Well-known artifact types.
const (
	ArtifactDefinition    = "swagger-document.json"
	ArtifactDefinitionMap = "swagger-document.json.map"
)
