package outline

// HeadingEvent is one heading discovered during a document pass,
// in document order.
type HeadingEvent struct {
	Level int    // Nesting level, 1..6.
	ID    string // Unique anchor id, required.
	Title string // Extracted heading text.
}

// Node is one heading and its nested sub-headings.
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Level    int     `json:"level"`
	Children []*Node `json:"children,omitempty"`
}

// Policy selects how a heading is attached when its level is more than
// one step below its nearest ancestor.
type Policy string

const (
	// PolicyNearestAncestor attaches a heading under the deepest ancestor
	// with a strictly smaller level, even when the level gap exceeds one.
	// Headings at or above the top level start a new top-level entry.
	PolicyNearestAncestor Policy = "nearest"

	// PolicyStrictParent requires the parent to sit at exactly level-1;
	// a heading whose implied parent was never inserted is an error.
	PolicyStrictParent Policy = "strict"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyNearestAncestor || p == PolicyStrictParent
}

// Config controls outline construction.
type Config struct {
	TopLevel int    // Level recognized as a root entry (default 2).
	Policy   Policy // Attachment policy for skipped levels (default nearest).
}

// DefaultConfig returns the defaults: top level 2, nearest-ancestor policy.
func DefaultConfig() Config {
	return Config{
		TopLevel: 2,
		Policy:   PolicyNearestAncestor,
	}
}
