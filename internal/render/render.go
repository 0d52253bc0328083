// Package render projects outline trees into HTML and Markdown. Renderers
// are pure; nothing here mutates the tree.
package render

import (
	"html"
	"strings"

	"github.com/karlhorky/outliner/internal/outline"
)

// HTML renders the outline as a <nav> wrapping nested ordered lists. Leaf
// entries carry no child <ol>. Titles and ids are escaped.
func HTML(nodes []*outline.Node) string {
	var b strings.Builder
	b.WriteString("<nav class=\"toc\">\n")
	if len(nodes) > 0 {
		writeHTMLList(&b, nodes, 1)
	}
	b.WriteString("</nav>\n")
	return b.String()
}

func writeHTMLList(b *strings.Builder, nodes []*outline.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString("<ol>\n")
	for _, n := range nodes {
		b.WriteString(indent)
		b.WriteString("  <li><a href=\"#")
		b.WriteString(html.EscapeString(n.ID))
		b.WriteString("\">")
		b.WriteString(html.EscapeString(n.Title))
		b.WriteString("</a>")
		if len(n.Children) > 0 {
			b.WriteString("\n")
			writeHTMLList(b, n.Children, depth+2)
			b.WriteString(indent)
			b.WriteString("  ")
		}
		b.WriteString("</li>\n")
	}
	b.WriteString(indent)
	b.WriteString("</ol>\n")
}

// Markdown renders the outline as a nested `- [Title](#id)` list with
// two-space indentation per depth.
func Markdown(nodes []*outline.Node) string {
	var b strings.Builder
	writeMarkdownList(&b, nodes, 0)
	return b.String()
}

func writeMarkdownList(b *strings.Builder, nodes []*outline.Node, depth int) {
	for _, n := range nodes {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- [")
		b.WriteString(n.Title)
		b.WriteString("](#")
		b.WriteString(n.ID)
		b.WriteString(")\n")
		writeMarkdownList(b, n.Children, depth+1)
	}
}
