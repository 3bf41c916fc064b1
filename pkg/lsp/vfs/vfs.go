// Package vfs is the storage view shared by the server and the transform engine: open
// editor documents first, then the in-memory override table, then physical storage.
package vfs

import (
	"context"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	errUtils "github.com/cloudposse/specls/errors"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/engine"
	"github.com/cloudposse/specls/pkg/lsp/literate"
	"github.com/cloudposse/specls/pkg/lsp/uri"
)

// DocumentSource exposes the text of documents currently open in the editor.
type DocumentSource interface {
	Text(uri string) (string, bool)
}

// FileSystem implements engine.FileSystem.
type FileSystem struct {
	fs        afero.Fs
	documents DocumentSource

	mu        sync.RWMutex
	overrides map[string]string
}

var _ engine.FileSystem = (*FileSystem)(nil)

// New creates a FileSystem over fs. documents may be nil.
func New(fs afero.Fs, documents DocumentSource) *FileSystem {
	return &FileSystem{
		fs:        fs,
		documents: documents,
		overrides: make(map[string]string),
	}
}

// Register stores text for uri in the override table, replacing any previous entry.
func (f *FileSystem) Register(docURI, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.overrides[docURI] = text
}

// Lookup returns the override registered for uri, matching exactly or after decoding.
func (f *FileSystem) Lookup(docURI string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if text, ok := f.overrides[docURI]; ok {
		return text, true
	}
	for k, text := range f.overrides {
		if uri.Equal(k, docURI) {
			return text, true
		}
	}
	return "", false
}

// ReadFile returns the text of uri.
func (f *FileSystem) ReadFile(_ context.Context, docURI string) (string, error) {
	if f.documents != nil {
		if text, ok := f.documents.Text(docURI); ok {
			return text, nil
		}
	}
	if text, ok := f.Lookup(docURI); ok {
		return text, nil
	}

	path, err := uri.ToPath(docURI)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return "", errUtils.Build(errors.Wrapf(err, "reading %s", path)).
			WithSentinel(errUtils.ErrReadFile).
			Err()
	}
	return string(data), nil
}

// ReadFileOrEmpty is ReadFile with failures treated as empty content.
func (f *FileSystem) ReadFileOrEmpty(ctx context.Context, docURI string) string {
	text, err := f.ReadFile(ctx, docURI)
	if err != nil {
		log.Debug("Treating unreadable document as empty", "uri", docURI, "error", err)
		return ""
	}
	return text
}

// EnumerateConfigLikeFiles lists the literate configuration files directly inside folderURI.
func (f *FileSystem) EnumerateConfigLikeFiles(ctx context.Context, folderURI string) ([]string, error) {
	if !uri.IsFile(folderURI) || !f.IsDirectory(ctx, folderURI) {
		return nil, nil
	}

	path, err := uri.ToPath(folderURI)
	if err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(f.fs, path)
	if err != nil {
		return nil, errUtils.Build(errors.Wrapf(err, "listing %s", path)).
			WithSentinel(errUtils.ErrReadFile).
			Err()
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !literate.IsConfigurationExtension(filepath.Ext(entry.Name())) {
			continue
		}
		out = append(out, uri.Resolve(uri.Folder(folderURI), entry.Name()))
	}
	slices.Sort(out)
	return out, nil
}

// IsDirectory reports whether uri names an existing folder.
func (f *FileSystem) IsDirectory(_ context.Context, docURI string) bool {
	path, err := uri.ToPath(docURI)
	if err != nil {
		return false
	}
	ok, err := afero.IsDir(f.fs, path)
	return err == nil && ok
}
