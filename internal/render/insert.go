package render

import (
	"bytes"
	"errors"
	"strings"
)

var (
	tocStart = []byte("<!-- toc -->")
	tocStop  = []byte("<!-- tocstop -->")

	// ErrNoMarkers indicates the document has no `<!-- toc -->` marker and
	// is not TOC-managed.
	ErrNoMarkers = errors.New("no toc marker found")

	// ErrUnclosedMarker indicates a `<!-- toc -->` marker without a
	// matching `<!-- tocstop -->`.
	ErrUnclosedMarker = errors.New("toc marker without tocstop")
)

// InsertTOC splices a rendered Markdown TOC between the toc markers of a
// document. It returns the updated document and whether anything changed;
// when the content between markers is already current the source comes back
// unmodified with changed=false.
func InsertTOC(source []byte, toc string) ([]byte, bool, error) {
	start := bytes.Index(source, tocStart)
	if start < 0 {
		return nil, false, ErrNoMarkers
	}
	innerStart := start + len(tocStart)

	rel := bytes.Index(source[innerStart:], tocStop)
	if rel < 0 {
		return nil, false, ErrUnclosedMarker
	}
	innerEnd := innerStart + rel

	replacement := []byte("\n\n" + strings.TrimSpace(toc) + "\n\n")
	if bytes.Equal(source[innerStart:innerEnd], replacement) {
		return source, false, nil
	}

	out := make([]byte, 0, len(source)-(innerEnd-innerStart)+len(replacement))
	out = append(out, source[:innerStart]...)
	out = append(out, replacement...)
	out = append(out, source[innerEnd:]...)
	return out, true, nil
}
