package navigator

import (
	"sync"
	"testing"
	"time"

	"github.com/dshills/marknav/internal/outline"
)

func testHeadings() []outline.Heading {
	return []outline.Heading{
		{ID: "heading-0", Text: "Introduction", Level: 1, From: 0, To: 14, Anchor: "introduction"},
		{ID: "heading-20", Text: "Getting Started", Level: 2, From: 20, To: 37, Anchor: "getting-started"},
		{ID: "heading-50", Text: "Advanced Usage", Level: 2, From: 50, To: 66, Anchor: "advanced-usage"},
		{ID: "heading-80", Text: "FAQ", Level: 1, From: 80, To: 85, Anchor: "faq"},
	}
}

type previewRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *previewRecorder) record(h outline.Heading) {
	r.mu.Lock()
	r.ids = append(r.ids, h.ID)
	r.mu.Unlock()
}

func (r *previewRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

func TestSetHeadingsSelectsFirst(t *testing.T) {
	s := New(Options{})
	s.SetHeadings(testHeadings(), "")

	if got := s.SelectedID(); got != "heading-0" {
		t.Errorf("expected heading-0 selected, got %q", got)
	}
	if got := len(s.Filtered()); got != 4 {
		t.Errorf("expected 4 filtered headings, got %d", got)
	}
}

func TestSetHeadingsPreservesSelection(t *testing.T) {
	s := New(Options{})
	s.SetHeadings(testHeadings(), "")
	s.MoveSelection(2)

	if got := s.SelectedID(); got != "heading-50" {
		t.Fatalf("expected heading-50 selected, got %q", got)
	}

	// Re-extracting an unmodified document keeps the same selection when no
	// explicit id is supplied.
	s.SetHeadings(testHeadings(), "")
	if got := s.SelectedID(); got != "heading-50" {
		t.Errorf("expected selection preserved as heading-50, got %q", got)
	}
}

func TestSetHeadingsFallsBackToFirst(t *testing.T) {
	s := New(Options{})
	s.SetHeadings(testHeadings(), "")
	s.MoveSelection(3)

	// Replace with a set that no longer contains the selected id.
	s.SetHeadings(testHeadings()[:2], "")
	if got := s.SelectedID(); got != "heading-0" {
		t.Errorf("expected fallback to first item, got %q", got)
	}
}

func TestSetHeadingsExplicitSelection(t *testing.T) {
	s := New(Options{})
	s.SetHeadings(testHeadings(), "heading-80")

	if got := s.SelectedID(); got != "heading-80" {
		t.Errorf("expected heading-80 selected, got %q", got)
	}
}

func TestMoveSelectionWraps(t *testing.T) {
	s := New(Options{})
	s.SetHeadings(testHeadings(), "")

	// Forward past the end wraps to index 0.
	s.MoveSelection(3)
	if got := s.SelectedID(); got != "heading-80" {
		t.Fatalf("expected heading-80, got %q", got)
	}
	s.MoveSelection(1)
	if got := s.SelectedID(); got != "heading-0" {
		t.Errorf("expected wrap to heading-0, got %q", got)
	}

	// Backward from index 0 wraps to the last item.
	s.MoveSelection(-1)
	if got := s.SelectedID(); got != "heading-80" {
		t.Errorf("expected wrap to heading-80, got %q", got)
	}
}

func TestMoveSelectionEmptyList(t *testing.T) {
	s := New(Options{})

	// Must not panic and must leave the selection absent.
	s.MoveSelection(1)
	s.MoveSelection(-5)
	if got := s.SelectedID(); got != "" {
		t.Errorf("expected no selection on empty list, got %q", got)
	}
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	s := New(Options{FilterDelay: 5 * time.Millisecond})
	s.SetHeadings(testHeadings(), "")

	s.SetFilterText("USAGE")
	time.Sleep(30 * time.Millisecond)

	filtered := s.Filtered()
	if len(filtered) != 1 {
		t.Fatalf("expected 1 filtered heading, got %d", len(filtered))
	}
	if filtered[0].ID != "heading-50" {
		t.Errorf("expected heading-50, got %q", filtered[0].ID)
	}
	// Selection snapped onto the only remaining member.
	if got := s.SelectedID(); got != "heading-50" {
		t.Errorf("expected heading-50 selected, got %q", got)
	}
}

func TestFilterMatchesTextNotAnchor(t *testing.T) {
	s := New(Options{FilterDelay: 5 * time.Millisecond})
	s.SetHeadings(testHeadings(), "")

	// "getting-started" is the anchor; the text has a space instead.
	s.SetFilterText("getting-")
	time.Sleep(30 * time.Millisecond)

	if got := len(s.Filtered()); got != 0 {
		t.Errorf("expected anchor text not to match, got %d results", got)
	}
	if got := s.SelectedID(); got != "" {
		t.Errorf("expected no selection on empty filtered list, got %q", got)
	}
}

func TestFilterDebounceCoalesces(t *testing.T) {
	var changes int
	var mu sync.Mutex

	s := New(Options{
		FilterDelay: 20 * time.Millisecond,
		Callbacks: Callbacks{
			OnChange: func() {
				mu.Lock()
				changes++
				mu.Unlock()
			},
		},
	})
	s.SetHeadings(testHeadings(), "")

	mu.Lock()
	changes = 0
	mu.Unlock()

	// Rapid keystrokes inside the debounce window.
	s.SetFilterText("i")
	s.SetFilterText("in")
	s.SetFilterText("int")
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	got := changes
	mu.Unlock()
	if got != 1 {
		t.Errorf("expected one coalesced filter apply, got %d", got)
	}

	filtered := s.Filtered()
	if len(filtered) != 1 || filtered[0].ID != "heading-0" {
		t.Errorf("expected only Introduction to match %q", "int")
	}
}

func TestPreviewDedupAndCoalescing(t *testing.T) {
	rec := &previewRecorder{}
	s := New(Options{
		PreviewDelay: 10 * time.Millisecond,
		Callbacks:    Callbacks{OnPreview: rec.record},
	})

	s.SetHeadings(testHeadings(), "")
	time.Sleep(40 * time.Millisecond)

	// Rapid navigation: only the settled selection is previewed.
	s.MoveSelection(1)
	s.MoveSelection(1)
	s.MoveSelection(1)
	time.Sleep(40 * time.Millisecond)

	got := rec.recorded()
	want := []string{"heading-0", "heading-80"}
	if len(got) != len(want) {
		t.Fatalf("expected previews %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("preview %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	// Re-selecting the already-previewed heading emits nothing.
	s.SelectID("heading-80")
	time.Sleep(40 * time.Millisecond)
	if got := rec.recorded(); len(got) != len(want) {
		t.Errorf("expected no duplicate preview, got %v", got)
	}
}

func TestConfirm(t *testing.T) {
	var selected []string
	s := New(Options{
		Callbacks: Callbacks{
			OnSelect: func(h outline.Heading) { selected = append(selected, h.ID) },
		},
	})

	// No selection: no-op.
	s.Confirm()
	if len(selected) != 0 {
		t.Fatalf("expected no select events, got %v", selected)
	}

	s.SetHeadings(testHeadings(), "")
	s.MoveSelection(1)
	s.Confirm()

	if len(selected) != 1 || selected[0] != "heading-20" {
		t.Errorf("expected select event for heading-20, got %v", selected)
	}
}
