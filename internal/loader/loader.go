// Package loader extracts plain text from documents for chunking.
// Supported formats: plain text (.txt), Markdown (.md), HTML (.html, .htm).
package loader

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/docchat/internal/domain"
)

// Document is the loaded, format-stripped text of one source.
type Document struct {
	Source string
	Text   string
}

// Loader converts raw document bytes into plain text.
type Loader struct{}

// New creates a loader.
func New() *Loader {
	return &Loader{}
}

// Load extracts text from raw bytes. The format is chosen by the name's
// extension; unknown extensions return ErrUnsupportedFormat.
func (l *Loader) Load(name string, data []byte) (Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".md", ".markdown":
		return l.loadText(name, data)
	case ".html", ".htm":
		return l.loadHTML(name, data)
	default:
		return Document{}, fmt.Errorf("extension %q: %w", ext, domain.ErrUnsupportedFormat)
	}
}

func (l *Loader) loadText(name string, data []byte) (Document, error) {
	if !utf8.Valid(data) {
		return Document{}, fmt.Errorf("document %s is not valid UTF-8", name)
	}
	text := normalize(string(data))
	if text == "" {
		return Document{}, fmt.Errorf("document %s has no text content", name)
	}
	return Document{Source: name, Text: text}, nil
}

// normalize unifies line endings and trims outer whitespace.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
