// Package discover extracts heading events from document files. Each
// supported format has a Source that reads a file and reports its headings
// in document order; building the outline tree from those events is the
// outline package's job.
package discover

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/karlhorky/outliner/internal/frontmatter"
	"github.com/karlhorky/outliner/internal/outline"
)

// Source extracts heading events from one document format.
type Source interface {
	Extract(r io.Reader, filename string) (*Document, error)
}

// Document is the flat record of headings found in one file, in document
// order. Meta is populated for Markdown files with frontmatter; other
// formats leave it zero.
type Document struct {
	Title  string
	Meta   frontmatter.Meta
	Events []outline.HeadingEvent
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".pdf":      true,
}

// ForFile returns the appropriate source for a filename.
func ForFile(filename string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".mdx":
		return &MarkdownSource{}, nil
	case ".html", ".htm":
		return &HTMLSource{}, nil
	case ".docx":
		return &DocxSource{}, nil
	case ".pdf":
		return &PDFSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Normalize shifts all heading levels uniformly so the shallowest
// discovered level becomes top. A document whose headings start at h1 or h3
// then inserts cleanly at the designated top level. Order violations are
// not repaired: a heading shallower than the first one still ends up
// shallower after the shift, and insertion reports it.
func Normalize(events []outline.HeadingEvent, top int) []outline.HeadingEvent {
	if len(events) == 0 {
		return events
	}
	min := events[0].Level
	for _, ev := range events[1:] {
		if ev.Level < min {
			min = ev.Level
		}
	}
	delta := top - min
	if delta == 0 {
		return events
	}
	shifted := make([]outline.HeadingEvent, len(events))
	for i, ev := range events {
		ev.Level += delta
		shifted[i] = ev
	}
	return shifted
}

// FilterMaxLevel drops events deeper than max. A max of zero or less means
// no cap.
func FilterMaxLevel(events []outline.HeadingEvent, max int) []outline.HeadingEvent {
	if max <= 0 {
		return events
	}
	kept := make([]outline.HeadingEvent, 0, len(events))
	for _, ev := range events {
		if ev.Level <= max {
			kept = append(kept, ev)
		}
	}
	return kept
}

// titleFromFilename derives a fallback document title from the file name,
// without its extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
