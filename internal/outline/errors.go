package outline

import "fmt"

// MissingIDError reports a heading event without a usable identifier.
type MissingIDError struct {
	Level int
	Title string
}

func (e *MissingIDError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("heading %q (level %d): id is required", e.Title, e.Level)
	}
	return fmt.Sprintf("heading at level %d: id is required", e.Level)
}

// InvalidFirstHeadingError reports a document whose first heading is not
// at the designated top level.
type InvalidFirstHeadingError struct {
	Level int // Level of the offending heading.
	Top   int // Designated top level.
}

func (e *InvalidFirstHeadingError) Error() string {
	return fmt.Sprintf("first heading is at level %d, expected level %d", e.Level, e.Top)
}

// MissingParentError reports a heading whose implied parent was never
// inserted. Only the strict-parent policy produces it; the nearest-ancestor
// policy attaches such headings to the closest shallower ancestor instead.
type MissingParentError struct {
	ID    string
	Level int
	Top   int
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("heading %q (level %d): no parent heading at level %d", e.ID, e.Level, e.Level-1)
}
