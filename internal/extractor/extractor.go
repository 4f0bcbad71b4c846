// Package extractor turns document files into plain text for chunking.
// An Extractor handles one family of formats; the registry dispatches by
// file extension.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Extractor converts one file format into plain text.
type Extractor interface {
	// Extract reads path and returns its textual content.
	Extract(path string) (string, error)

	// Extensions lists the lowercase file extensions handled, dot included.
	Extensions() []string
}

// Registry dispatches extraction by file extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns a registry with the built-in extractors: plain text
// (.txt, .md) and HTML (.html, .htm).
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(&PlainText{})
	r.Register(&HTML{})
	return r
}

// Register adds an extractor, replacing any previous handler for its
// extensions.
func (r *Registry) Register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[ext] = e
	}
}

// Supported reports whether path has a registered extension.
func (r *Registry) Supported(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract dispatches to the extractor for path's extension.
func (r *Registry) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
	return e.Extract(path)
}

// PlainText passes file content through unchanged. Markdown is treated as
// plain text; its markup survives into the cleaning stage, which strips
// what the chunker cannot use.
type PlainText struct{}

func (*PlainText) Extensions() []string { return []string{".txt", ".md"} }

func (*PlainText) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

// HTML converts markup to markdown text, dropping tags, scripts, and
// styles while keeping the readable content.
type HTML struct{}

func (*HTML) Extensions() []string { return []string{".html", ".htm"} }

func (*HTML) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	markdown, err := htmltomarkdown.ConvertString(string(data))
	if err != nil {
		return "", fmt.Errorf("convert HTML: %w", err)
	}
	return markdown, nil
}
