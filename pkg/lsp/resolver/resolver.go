// Package resolver maps a changed document to the configuration that governs it.
package resolver

import (
	"context"

	"golang.org/x/sync/singleflight"

	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/lsp/literate"
	"github.com/cloudposse/specls/pkg/lsp/uri"
)

// SyntheticName is the file name of a synthesized configuration, relative to the document URI.
const SyntheticName = "readme.md"

// Storage is the file system view with an in-memory override table.
type Storage interface {
	engine.FileSystem
	Register(uri, text string)
	Lookup(uri string) (string, bool)
}

// Resolver resolves documents to configuration URIs.
type Resolver struct {
	storage Storage
	factory engine.Factory
	group   singleflight.Group
}

// New creates a Resolver checking candidates with engines built by factory.
func New(storage Storage, factory engine.Factory) *Resolver {
	return &Resolver{storage: storage, factory: factory}
}

// Resolve returns the configuration governing docURI. When none is found a synthetic
// configuration with docURI as its only input is registered and returned.
// Concurrent calls for the same document share one resolution.
func (r *Resolver) Resolve(ctx context.Context, docURI string) string {
	v, _, _ := r.group.Do(docURI, func() (any, error) {
		return r.resolve(ctx, docURI), nil
	})
	return v.(string)
}

func (r *Resolver) resolve(ctx context.Context, docURI string) string {
	candidates := r.DetectConfigurationFiles(ctx, docURI, true)
	if len(candidates) == 1 && candidates[0] == docURI {
		return docURI
	}

	for _, candidate := range candidates {
		if r.governs(ctx, candidate, docURI) {
			log.Debug("Resolved configuration", "document", docURI, "configuration", candidate)
			return candidate
		}
	}

	return r.synthesize(docURI)
}

// governs reports whether configURI lists docURI among its inputs. Probing errors count as no.
func (r *Resolver) governs(ctx context.Context, configURI, docURI string) bool {
	e, err := r.factory(configURI, r.storage)
	if err != nil {
		log.Debug("Skipping configuration candidate", "configuration", configURI, "error", err)
		return false
	}
	inputs, err := e.InputFiles(ctx)
	if err != nil {
		log.Debug("Skipping configuration candidate", "configuration", configURI, "error", err)
		return false
	}
	for _, input := range inputs {
		if uri.Equal(input, docURI) {
			return true
		}
	}
	return false
}

// synthesize registers the synthetic configuration of docURI once and returns its URI.
func (r *Resolver) synthesize(docURI string) string {
	configURI := SyntheticURI(docURI)
	if _, ok := r.storage.Lookup(configURI); !ok {
		log.Debug("Synthesizing configuration", "document", docURI, "configuration", configURI)
		r.storage.Register(configURI, literate.SyntheticConfiguration(docURI))
	}
	return configURI
}

// SyntheticURI returns the URI of the synthetic configuration of docURI.
func SyntheticURI(docURI string) string {
	return docURI + "/" + SyntheticName
}

// IsConfiguration reports whether docURI has a configuration extension and content.
func (r *Resolver) IsConfiguration(ctx context.Context, docURI string) bool {
	if !literate.IsConfigurationExtension(uri.Ext(docURI)) {
		return false
	}
	text, err := r.storage.ReadFile(ctx, docURI)
	if err != nil {
		return false
	}
	return literate.IsConfigurationDocument(text)
}

// DetectConfigurationFiles returns the configuration documents reachable from docURI.
// A configuration document yields only itself. Otherwise the folder of docURI (or docURI
// itself when it is a folder) is scanned, then its ancestors, nearest first; walkAll=false
// stops at the first folder holding a configuration.
func (r *Resolver) DetectConfigurationFiles(ctx context.Context, docURI string, walkAll bool) []string {
	if r.IsConfiguration(ctx, docURI) {
		return []string{docURI}
	}

	folder := uri.Parent(docURI)
	if r.storage.IsDirectory(ctx, docURI) {
		folder = uri.Folder(docURI)
	}

	var found []string
	for {
		if ctx.Err() != nil {
			return found
		}
		files, err := r.storage.EnumerateConfigLikeFiles(ctx, folder)
		if err != nil {
			log.Debug("Unable to list folder", "folder", folder, "error", err)
		}
		for _, file := range files {
			if r.IsConfiguration(ctx, file) {
				found = append(found, file)
			}
		}
		if len(found) > 0 && !walkAll {
			return found
		}

		parent := uri.Parent(folder)
		if parent == folder {
			return found
		}
		folder = parent
	}
}

// DetectConfigurationFile returns the nearest configuration for docURI, or "".
// Ancestor folders are only scanned when walkUp is set.
func (r *Resolver) DetectConfigurationFile(ctx context.Context, docURI string, walkUp bool) string {
	if r.IsConfiguration(ctx, docURI) {
		return docURI
	}
	if !walkUp {
		folder := uri.Parent(docURI)
		if r.storage.IsDirectory(ctx, docURI) {
			folder = uri.Folder(docURI)
		}
		files, _ := r.storage.EnumerateConfigLikeFiles(ctx, folder)
		for _, file := range files {
			if r.IsConfiguration(ctx, file) {
				return file
			}
		}
		return ""
	}
	if found := r.DetectConfigurationFiles(ctx, docURI, false); len(found) > 0 {
		return found[0]
	}
	return ""
}
