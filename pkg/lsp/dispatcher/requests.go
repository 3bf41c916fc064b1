package dispatcher

import (
	"context"
	"sync"

	errUtils "github.com/cloudposse/specls/errors"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/lsp/literate"
	"github.com/cloudposse/specls/pkg/lsp/uri"
)

// GeneratedFolder is the output folder of the target language of a generate request.
const GeneratedFolder = "/generated"

// GenerateParams are the parameters of the generate request.
type GenerateParams struct {
	DocumentURI   string         `json:"documentUri"`
	Language      string         `json:"language"`
	Configuration map[string]any `json:"configuration"`
}

// ContentParams are the parameters of the classification and conversion requests.
type ContentParams struct {
	LanguageID   string `json:"languageId,omitempty"`
	ContentOrURI string `json:"contentOrUri"`
}

// DocumentParams are the parameters of findConfigurationFile.
type DocumentParams struct {
	DocumentURI string `json:"documentUri"`
}

// Generated is the result of a generate request: the generated files keyed by URI and
// every message of the run as indented JSON.
type Generated struct {
	Files    map[string]string `json:"files"`
	Messages []string          `json:"messages"`
}

// Generate runs a fresh engine for the configuration of the document with the target
// language enabled, outside the run registry.
func (d *Dispatcher) Generate(ctx context.Context, params GenerateParams) (Generated, error) {
	result := Generated{Files: map[string]string{}, Messages: []string{}}

	configURI := d.resolver.Resolve(ctx, params.DocumentURI)
	e, err := d.factory(configURI, d.storage)
	if err != nil {
		return result, errUtils.Build(err).
			WithSentinel(errUtils.ErrEngineUnavailable).
			WithConfiguration(configURI).
			Err()
	}
	if params.Language != "" {
		e.AddConfiguration(map[string]any{
			params.Language: map[string]any{engine.OptionOutputFolder: GeneratedFolder},
		})
	}
	if len(params.Configuration) > 0 {
		e.AddConfiguration(params.Configuration)
	}

	var mu sync.Mutex
	p := e.Execute(ctx, engine.ListenerFuncs{
		OnArtifact: func(a engine.Artifact) {
			mu.Lock()
			defer mu.Unlock()
			result.Files[a.URI] = a.Content
		},
		OnMessage: func(m engine.Message) {
			out, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				log.Debug("Unable to encode message", "error", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			result.Messages = append(result.Messages, string(out))
		},
	})
	stop := context.AfterFunc(ctx, p.Cancel)
	defer stop()

	success := p.Wait()
	log.Debug("Generated", "configuration", configURI, "language", params.Language, "success", success, "files", len(result.Files))

	mu.Lock()
	defer mu.Unlock()
	return result, nil
}

// IsOpenAPIDocument reports whether the content, or the document it names, is an OpenAPI document.
func (d *Dispatcher) IsOpenAPIDocument(ctx context.Context, contentOrURI string) bool {
	return literate.IsSpecDocument(d.content(ctx, contentOrURI))
}

// IsConfigurationFile reports whether the content, or the document it names, is a configuration.
func (d *Dispatcher) IsConfigurationFile(ctx context.Context, contentOrURI string) bool {
	return literate.IsConfigurationDocument(d.content(ctx, contentOrURI))
}

// IsSupportedFile reports whether languageID is handled and the content is either kind of document.
func (d *Dispatcher) IsSupportedFile(ctx context.Context, languageID, contentOrURI string) bool {
	if !literate.IsSpecExtension(languageID) && !literate.IsConfigurationExtension(languageID) {
		return false
	}
	content := d.content(ctx, contentOrURI)
	return literate.IsSpecDocument(content) || literate.IsConfigurationDocument(content)
}

// ToJSON converts the content, or the document it names, to JSON.
func (d *Dispatcher) ToJSON(ctx context.Context, contentOrURI string) (string, error) {
	return literate.ToJSON(d.content(ctx, contentOrURI))
}

// FindConfigurationFile returns the nearest configuration of docURI, or "".
func (d *Dispatcher) FindConfigurationFile(ctx context.Context, docURI string) string {
	return d.resolver.DetectConfigurationFile(ctx, docURI, true)
}

// content returns contentOrURI itself, or the text of the document it names. Read failures
// yield empty content.
func (d *Dispatcher) content(ctx context.Context, contentOrURI string) string {
	if uri.IsURI(contentOrURI) {
		return d.storage.ReadFileOrEmpty(ctx, contentOrURI)
	}
	return contentOrURI
}
