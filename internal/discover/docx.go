package discover

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/karlhorky/outliner/internal/outline"
)

// DocxSource handles .docx files. Word documents carry no anchor ids, so
// every heading id is derived from its text.
type DocxSource struct{}

func (s *DocxSource) Extract(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "outliner-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	d := &Document{}
	slugger := NewSlugger()
	styleTitle := ""
	firstH1 := ""

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		text := paragraphText(para)
		if text == "" {
			continue
		}

		if isTitleStyle(para) && styleTitle == "" {
			styleTitle = text
			continue
		}

		level := docxHeadingLevel(para)
		if level == 0 {
			continue
		}
		if level == 1 && firstH1 == "" {
			firstH1 = text
		}
		d.Events = append(d.Events, outline.HeadingEvent{
			Level: level,
			ID:    slugger.Slug(text),
			Title: text,
		})
	}

	switch {
	case styleTitle != "":
		d.Title = styleTitle
	case firstH1 != "":
		d.Title = firstH1
	default:
		d.Title = titleFromFilename(filename)
	}

	return d, nil
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func isTitleStyle(para *docx.Paragraph) bool {
	return strings.EqualFold(paragraphStyle(para), "Title")
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style := paragraphStyle(para)
	switch {
	case strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1"):
		return 1
	case strings.EqualFold(style, "Heading2") || strings.EqualFold(style, "heading 2"):
		return 2
	case strings.EqualFold(style, "Heading3") || strings.EqualFold(style, "heading 3"):
		return 3
	case strings.EqualFold(style, "Heading4") || strings.EqualFold(style, "heading 4"):
		return 4
	case strings.EqualFold(style, "Heading5") || strings.EqualFold(style, "heading 5"):
		return 5
	case strings.EqualFold(style, "Heading6") || strings.EqualFold(style, "heading 6"):
		return 6
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
