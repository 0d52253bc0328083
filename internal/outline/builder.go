package outline

import "strings"

// Builder accumulates heading events into an outline tree. It is created
// empty for one extraction pass and discarded afterwards.
//
// The builder takes no locks and assumes externally serialized calls.
type Builder struct {
	cfg   Config
	roots []*Node
	seen  map[string]bool
}

// NewBuilder creates an empty builder. Zero config fields fall back to
// the defaults.
func NewBuilder(cfg Config) *Builder {
	if cfg.TopLevel <= 0 {
		cfg.TopLevel = 2
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyNearestAncestor
	}
	return &Builder{
		cfg:  cfg,
		seen: make(map[string]bool),
	}
}

// Insert adds one heading event to the outline.
//
// An event without an id fails with MissingIDError. The first event must be
// at the configured top level or Insert fails with InvalidFirstHeadingError.
// Re-inserting an id already present is a no-op. Otherwise the heading is
// attached according to the builder's policy, preserving document order.
func (b *Builder) Insert(ev HeadingEvent) error {
	if strings.TrimSpace(ev.ID) == "" {
		return &MissingIDError{Level: ev.Level, Title: ev.Title}
	}
	if b.seen[ev.ID] {
		return nil
	}
	if len(b.roots) == 0 && ev.Level != b.cfg.TopLevel {
		return &InvalidFirstHeadingError{Level: ev.Level, Top: b.cfg.TopLevel}
	}

	node := &Node{ID: ev.ID, Title: ev.Title, Level: ev.Level}
	if err := b.attach(node); err != nil {
		return err
	}
	b.seen[ev.ID] = true
	return nil
}

func (b *Builder) attach(node *Node) error {
	if node.Level == b.cfg.TopLevel {
		b.roots = append(b.roots, node)
		return nil
	}
	switch b.cfg.Policy {
	case PolicyStrictParent:
		return b.attachStrict(node)
	default:
		b.attachNearest(node)
		return nil
	}
}

// attachNearest descends the last-child chain of the most recent top-level
// entry until it finds the deepest node shallower than the new heading, and
// appends there. Headings shallower than the top level start a new
// top-level entry, keeping their original level.
func (b *Builder) attachNearest(node *Node) {
	if node.Level < b.cfg.TopLevel {
		b.roots = append(b.roots, node)
		return
	}
	cur := b.roots[len(b.roots)-1]
	for len(cur.Children) > 0 {
		last := cur.Children[len(cur.Children)-1]
		if last.Level >= node.Level {
			break
		}
		cur = last
	}
	cur.Children = append(cur.Children, node)
}

// attachStrict requires a parent at exactly node.Level-1 on the last-child
// chain. Strict trees never contain level gaps, so the chain levels are
// consecutive from the top level down.
func (b *Builder) attachStrict(node *Node) error {
	if node.Level < b.cfg.TopLevel {
		return &MissingParentError{ID: node.ID, Level: node.Level, Top: b.cfg.TopLevel}
	}
	cur := b.roots[len(b.roots)-1]
	for cur.Level < node.Level-1 {
		if len(cur.Children) == 0 {
			return &MissingParentError{ID: node.ID, Level: node.Level, Top: b.cfg.TopLevel}
		}
		cur = cur.Children[len(cur.Children)-1]
	}
	cur.Children = append(cur.Children, node)
	return nil
}

// Outline returns a snapshot of the current tree. The copy shares no nodes
// with the builder, so callers cannot alias its internal state.
func (b *Builder) Outline() []*Node {
	return cloneNodes(b.roots)
}

// Len returns the number of distinct headings inserted so far.
func (b *Builder) Len() int {
	return len(b.seen)
}

// Seen reports whether an id is already present in the outline.
func (b *Builder) Seen(id string) bool {
	return b.seen[id]
}

func cloneNodes(nodes []*Node) []*Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = &Node{
			ID:       n.ID,
			Title:    n.Title,
			Level:    n.Level,
			Children: cloneNodes(n.Children),
		}
	}
	return out
}
