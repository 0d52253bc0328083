package discover

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/karlhorky/outliner/internal/outline"
)

// HTMLSource handles HTML files.
type HTMLSource struct{}

func (s *HTMLSource) Extract(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &Document{}
	slugger := NewSlugger()
	firstH1 := ""

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Skip non-content elements.
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			}

			if level := headingLevel(n.Data); level > 0 {
				title := textContent(n)
				id := nodeID(n)
				if id == "" {
					id = slugger.Slug(title)
				} else {
					slugger.Claim(id)
				}
				if level == 1 && firstH1 == "" {
					firstH1 = title
				}
				d.Events = append(d.Events, outline.HeadingEvent{
					Level: level,
					ID:    id,
					Title: title,
				})
				return // Text already extracted; don't recurse into the heading.
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	switch title := findTitle(doc); {
	case title != "":
		d.Title = title
	case firstH1 != "":
		d.Title = firstH1
	default:
		d.Title = titleFromFilename(filename)
	}

	return d, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func nodeID(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "id" {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
