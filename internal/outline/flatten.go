package outline

// Entry is one heading in a depth-first flattening of an outline, with the
// heading hierarchy that leads to it.
type Entry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Level      int      `json:"level"`
	Breadcrumb []string `json:"breadcrumb,omitempty"` // e.g. ["Usage", "Configuration", "Flags"]
}

// Flatten walks an outline depth-first and returns one entry per heading.
// An entry's breadcrumb is the title path from its top-level ancestor down
// to the heading itself.
func Flatten(nodes []*Node) []Entry {
	var entries []Entry
	var walk func(n *Node, breadcrumb []string)
	walk = func(n *Node, breadcrumb []string) {
		var bc []string
		bc = append(bc, breadcrumb...)
		bc = append(bc, n.Title)

		entries = append(entries, Entry{
			ID:         n.ID,
			Title:      n.Title,
			Level:      n.Level,
			Breadcrumb: copyBreadcrumb(bc),
		})

		for _, child := range n.Children {
			walk(child, bc)
		}
	}
	for _, n := range nodes {
		walk(n, nil)
	}
	return entries
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
