package discover

import (
	"strings"
	"testing"
)

func TestMarkdownSource_Headings(t *testing.T) {
	input := `# Guide

Intro text.

## Install

### From Source

Some build steps.

## Usage
`
	s := &MarkdownSource{}
	doc, err := s.Extract(strings.NewReader(input), "guide.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Guide" {
		t.Errorf("expected title from first h1, got %q", doc.Title)
	}
	if len(doc.Events) != 4 {
		t.Fatalf("expected 4 heading events, got %d", len(doc.Events))
	}

	wantLevels := []int{1, 2, 3, 2}
	wantIDs := []string{"guide", "install", "from-source", "usage"}
	for i, ev := range doc.Events {
		if ev.Level != wantLevels[i] {
			t.Errorf("event %d: expected level %d, got %d", i, wantLevels[i], ev.Level)
		}
		if ev.ID != wantIDs[i] {
			t.Errorf("event %d: expected id %q, got %q", i, wantIDs[i], ev.ID)
		}
	}
}

func TestMarkdownSource_ExplicitID(t *testing.T) {
	input := "## Install {#setup}\n\n## Other\n"
	s := &MarkdownSource{}
	doc, err := s.Extract(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(doc.Events))
	}
	if doc.Events[0].ID != "setup" {
		t.Errorf("expected explicit id %q, got %q", "setup", doc.Events[0].ID)
	}
	if doc.Events[0].Title != "Install" {
		t.Errorf("expected title without the attribute block, got %q", doc.Events[0].Title)
	}
}

func TestMarkdownSource_DuplicateTitles(t *testing.T) {
	input := "## Setup\n\n## Setup\n\n## Setup\n"
	s := &MarkdownSource{}
	doc, err := s.Extract(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []string{"setup", "setup-2", "setup-3"}
	for i, want := range wantIDs {
		if doc.Events[i].ID != want {
			t.Errorf("event %d: expected id %q, got %q", i, want, doc.Events[i].ID)
		}
	}
}

func TestMarkdownSource_InlineFormatting(t *testing.T) {
	input := "## Using `go build` with *flags*\n"
	s := &MarkdownSource{}
	doc, err := s.Extract(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Events[0].Title != "Using go build with flags" {
		t.Errorf("expected plain text title, got %q", doc.Events[0].Title)
	}
}

func TestMarkdownSource_Frontmatter(t *testing.T) {
	input := `---
title: The Real Title
toc: false
toc_max_level: 3
---
# Ignored For Title

## Section
`
	s := &MarkdownSource{}
	doc, err := s.Extract(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "The Real Title" {
		t.Errorf("expected frontmatter title, got %q", doc.Title)
	}
	if doc.Meta.Enabled() {
		t.Error("expected toc: false to disable extraction")
	}
	if doc.Meta.TOCMaxLevel != 3 {
		t.Errorf("expected toc_max_level 3, got %d", doc.Meta.TOCMaxLevel)
	}
	// Headings are still reported; honoring the opt-out is the caller's call.
	if len(doc.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(doc.Events))
	}
}

func TestMarkdownSource_TitleFallback(t *testing.T) {
	input := "## No H1 Here\n"
	s := &MarkdownSource{}
	doc, err := s.Extract(strings.NewReader(input), "notes/weekly-sync.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "weekly-sync" {
		t.Errorf("expected filename stem title, got %q", doc.Title)
	}
}

func TestMarkdownSource_NoHeadings(t *testing.T) {
	s := &MarkdownSource{}
	doc, err := s.Extract(strings.NewReader("Just a paragraph.\n"), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Events) != 0 {
		t.Errorf("expected no events, got %d", len(doc.Events))
	}
}
