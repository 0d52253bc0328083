// Package frontmatter splits YAML frontmatter from Markdown documents and
// decodes the fields that drive outline extraction.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Meta holds the frontmatter fields the outliner cares about. Unknown fields
// are ignored.
type Meta struct {
	// Title overrides the document title derived from headings or the
	// filename.
	Title string `yaml:"title"`

	// TOC opts a document out of outline extraction when set to false.
	// A nil pointer means the field was absent and extraction proceeds.
	TOC *bool `yaml:"toc"`

	// TOCMaxLevel caps the deepest heading level included in the outline.
	// Zero means no per-document cap.
	TOCMaxLevel int `yaml:"toc_max_level"`
}

// Enabled reports whether outline extraction is enabled for the document.
func (m Meta) Enabled() bool {
	return m.TOC == nil || *m.TOC
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a frontmatter delimiter, had is false
// and body is the full input. The document's newline style (LF or CRLF) is
// detected so CRLF files split cleanly.
func Split(content []byte) (meta []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	metaStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[metaStart:], closeLine) {
		bodyStart := metaStart + len(closeLine)
		return []byte{}, content[bodyStart:], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[metaStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	metaEnd := metaStart + idx + len(nl)
	bodyStart := metaStart + idx + len(closeSeq)
	return content[metaStart:metaEnd], content[bodyStart:], true, nil
}

// Parse decodes raw YAML frontmatter (without --- delimiters) into Meta.
func Parse(meta []byte) (Meta, error) {
	var m Meta
	if len(meta) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(meta, &m); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// Extract splits a document and decodes its frontmatter in one step,
// returning the parsed metadata and the Markdown body.
func Extract(content []byte) (Meta, []byte, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	if !had {
		return Meta{}, body, nil
	}
	m, err := Parse(raw)
	if err != nil {
		return Meta{}, nil, err
	}
	return m, body, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
