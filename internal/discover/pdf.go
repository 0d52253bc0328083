package discover

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/karlhorky/outliner/internal/outline"
)

// PDFSource reads the embedded bookmark outline of a PDF. Bookmark depth
// maps to heading levels starting at 1. A PDF without bookmarks yields zero
// events, not an error.
type PDFSource struct{}

func (s *PDFSource) Extract(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "outliner-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	events, title, err := readBookmarks(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf outline: %w", err)
	}

	d := &Document{Events: events}
	if title != "" {
		d.Title = title
	} else {
		d.Title = titleFromFilename(filename)
	}
	return d, nil
}

// readBookmarks walks the bookmark tree. The pdf library panics on
// malformed files, so failures are recovered into an error.
func readBookmarks(path string) (events []outline.HeadingEvent, title string, err error) {
	defer func() {
		if r := recover(); r != nil {
			events, title = nil, ""
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())

	slugger := NewSlugger()
	var walk func(items []pdflib.Outline, depth int)
	walk = func(items []pdflib.Outline, depth int) {
		for _, item := range items {
			heading := strings.TrimSpace(item.Title)
			events = append(events, outline.HeadingEvent{
				Level: depth,
				ID:    slugger.Slug(heading),
				Title: heading,
			})
			walk(item.Child, depth+1)
		}
	}

	root := reader.Outline()
	walk(root.Child, 1)
	return events, title, nil
}
