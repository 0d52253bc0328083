package discover

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// Slugify converts a heading title to a URL/anchor-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.Trim(s[:50], "-")
	}
	return s
}

// Slugger derives unique ids for headings without explicit ones. Repeated
// titles get -2, -3, ... suffixes so every id within a document is distinct.
type Slugger struct {
	used map[string]int
}

func NewSlugger() *Slugger {
	return &Slugger{used: make(map[string]int)}
}

// Slug returns a unique id for the given heading title.
func (s *Slugger) Slug(title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "section"
	}
	n := s.used[slug]
	s.used[slug] = n + 1
	if n == 0 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n+1)
}

// Claim records an explicit id so later derived slugs do not collide with it.
func (s *Slugger) Claim(id string) {
	s.used[id]++
}
