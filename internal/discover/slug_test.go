package discover

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces  everywhere  ", "spaces-everywhere"},
		{"Already-slugged", "already-slugged"},
		{"Symbols & stuff!", "symbols-stuff"},
		{"MiXeD CaSe", "mixed-case"},
		{"--edges--", "edges"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSlugify_Truncates(t *testing.T) {
	long := "this is a very long heading title that keeps going and going past the limit"
	got := Slugify(long)
	if len(got) > 50 {
		t.Errorf("expected slug capped at 50 chars, got %d: %q", len(got), got)
	}
	if got[len(got)-1] == '-' {
		t.Errorf("expected no trailing dash after truncation, got %q", got)
	}
}

func TestSlugger_Dedupe(t *testing.T) {
	s := NewSlugger()
	if got := s.Slug("Setup"); got != "setup" {
		t.Errorf("expected setup, got %q", got)
	}
	if got := s.Slug("Setup"); got != "setup-2" {
		t.Errorf("expected setup-2, got %q", got)
	}
	if got := s.Slug("Setup"); got != "setup-3" {
		t.Errorf("expected setup-3, got %q", got)
	}
}

func TestSlugger_ClaimedIDs(t *testing.T) {
	s := NewSlugger()
	s.Claim("install")
	if got := s.Slug("Install"); got != "install-2" {
		t.Errorf("expected derived slug to step around the claimed id, got %q", got)
	}
}

func TestSlugger_EmptyTitle(t *testing.T) {
	s := NewSlugger()
	if got := s.Slug("!!!"); got != "section" {
		t.Errorf("expected fallback section, got %q", got)
	}
	if got := s.Slug("???"); got != "section-2" {
		t.Errorf("expected fallback section-2, got %q", got)
	}
}
