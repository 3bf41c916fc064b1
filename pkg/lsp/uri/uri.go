// Package uri converts between document URIs and file system paths and compares URIs
// the way editors send them (percent-encoded or not).
package uri

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	lspuri "go.lsp.dev/uri"

	errUtils "github.com/cloudposse/specls/errors"
)

// IsURI reports whether s looks like an absolute URI rather than inline content.
func IsURI(s string) bool {
	if s == "" || strings.ContainsAny(s, "\n\r") {
		return false
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && len(parsed.Scheme) > 1 && (parsed.Host != "" || strings.HasPrefix(parsed.Opaque, "/") || strings.HasPrefix(parsed.Path, "/"))
}

// IsFile reports whether s is a file:// URI.
func IsFile(s string) bool {
	return strings.HasPrefix(s, lspuri.FileScheme+":")
}

// ToPath converts a file URI into a local path.
func ToPath(docURI string) (string, error) {
	parsed, err := url.ParseRequestURI(docURI)
	if err != nil {
		return "", errUtils.Build(errUtils.ErrInvalidURI).WithDocument(docURI).Err()
	}
	if parsed.Scheme != lspuri.FileScheme {
		return "", errUtils.Build(errUtils.ErrNotFileURI).WithDocument(docURI).Err()
	}
	return lspuri.URI(docURI).Filename(), nil
}

// FromPath converts a local path into a file URI. Relative paths are made absolute.
func FromPath(p string) string {
	return string(lspuri.File(p))
}

// Decode percent-decodes a URI; undecodable input is returned unchanged.
func Decode(uri string) string {
	if decoded, err := url.PathUnescape(uri); err == nil {
		return decoded
	}
	return uri
}

// Equal compares two URIs exactly or after percent-decoding.
func Equal(a, b string) bool {
	return a == b || Decode(a) == Decode(b)
}

// Resolve resolves ref against base. Absolute refs are returned as-is.
func Resolve(base, ref string) string {
	if IsURI(ref) {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(filepath.ToSlash(ref))
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// Parent returns the URI of the folder containing uri, with a trailing slash.
// The root folder is its own parent.
func Parent(uri string) string {
	trimmed := strings.TrimSuffix(uri, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return uri
	}
	parent := trimmed[:idx+1]
	if strings.HasSuffix(parent, "://") {
		return uri
	}
	return parent
}

// Folder returns uri with a trailing slash.
func Folder(uri string) string {
	if strings.HasSuffix(uri, "/") {
		return uri
	}
	return uri + "/"
}

// Ext returns the lower-cased extension of the last path segment, including the dot.
func Ext(uri string) string {
	p := uri
	if parsed, err := url.Parse(uri); err == nil && parsed.Path != "" {
		p = parsed.Path
	}
	return strings.ToLower(path.Ext(p))
}

// Base returns the last path segment of uri.
func Base(uri string) string {
	return path.Base(strings.TrimSuffix(Decode(uri), "/"))
}
