package outline

import (
	"reflect"
	"testing"
)

func TestFlatten(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	insertAll(t, b, []HeadingEvent{
		{Level: 2, ID: "intro", Title: "Introduction"},
		{Level: 3, ID: "setup", Title: "Setup"},
		{Level: 4, ID: "deps", Title: "Dependencies"},
		{Level: 2, ID: "usage", Title: "Usage"},
	})

	entries := Flatten(b.Outline())
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	wantIDs := []string{"intro", "setup", "deps", "usage"}
	for i, want := range wantIDs {
		if entries[i].ID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, entries[i].ID)
		}
	}

	wantCrumb := []string{"Introduction", "Setup", "Dependencies"}
	if !reflect.DeepEqual(entries[2].Breadcrumb, wantCrumb) {
		t.Errorf("expected breadcrumb %v, got %v", wantCrumb, entries[2].Breadcrumb)
	}
	if !reflect.DeepEqual(entries[3].Breadcrumb, []string{"Usage"}) {
		t.Errorf("expected breadcrumb [Usage], got %v", entries[3].Breadcrumb)
	}
}

func TestFlatten_Empty(t *testing.T) {
	if entries := Flatten(nil); len(entries) != 0 {
		t.Errorf("expected no entries for empty outline, got %d", len(entries))
	}
}

func TestFlatten_BreadcrumbsIndependent(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	insertAll(t, b, []HeadingEvent{
		{Level: 2, ID: "a", Title: "A"},
		{Level: 3, ID: "b", Title: "B"},
		{Level: 3, ID: "c", Title: "C"},
	})

	entries := Flatten(b.Outline())
	entries[1].Breadcrumb[0] = "mutated"
	if entries[2].Breadcrumb[0] != "A" {
		t.Errorf("expected breadcrumbs not to share backing arrays, got %v", entries[2].Breadcrumb)
	}
}
