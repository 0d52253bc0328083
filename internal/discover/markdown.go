package discover

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/karlhorky/outliner/internal/frontmatter"
	"github.com/karlhorky/outliner/internal/outline"
)

// MarkdownSource handles Markdown files using goldmark. MDX files are parsed
// the same way; ATX headings survive the JSX interleaving.
type MarkdownSource struct{}

func (s *MarkdownSource) Extract(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	meta, body, err := frontmatter.Extract(src)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}

	// WithAttribute enables explicit `{#id}` blocks on headings.
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAttribute()))
	doc := md.Parser().Parse(text.NewReader(body))

	d := &Document{Meta: meta}
	slugger := NewSlugger()
	firstH1 := ""

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		title := headingText(heading, body)
		id := headingID(heading)
		if id == "" {
			id = slugger.Slug(title)
		} else {
			slugger.Claim(id)
		}

		if heading.Level == 1 && firstH1 == "" {
			firstH1 = title
		}

		d.Events = append(d.Events, outline.HeadingEvent{
			Level: heading.Level,
			ID:    id,
			Title: title,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}

	switch {
	case meta.Title != "":
		d.Title = meta.Title
	case firstH1 != "":
		d.Title = firstH1
	default:
		d.Title = titleFromFilename(filename)
	}

	return d, nil
}

// headingID returns the heading's explicit id attribute, if any.
func headingID(heading *ast.Heading) string {
	v, ok := heading.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}

// headingText collects the plain text of a heading's inline children.
func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		} else {
			buf.WriteString(headingText(c, src))
		}
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}
