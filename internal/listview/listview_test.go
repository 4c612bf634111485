package listview

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/marknav/internal/navigator"
	"github.com/dshills/marknav/internal/outline"
)

func sampleHeadings() []outline.Heading {
	return []outline.Heading{
		{ID: "heading-0", Text: "Alpha", Level: 1, Anchor: "alpha"},
		{ID: "heading-10", Text: "Beta", Level: 2, Anchor: "beta"},
		{ID: "heading-20", Text: "Gamma", Level: 2, Anchor: "gamma"},
	}
}

func TestReconcileCreatesNodes(t *testing.T) {
	l := NewList()
	l.Reconcile(sampleHeadings(), "heading-10")

	nodes := l.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	if !nodes[1].Selected {
		t.Error("expected heading-10 node selected")
	}
	if nodes[0].Selected || nodes[2].Selected {
		t.Error("expected only one selected node")
	}

	stats := l.LastStats()
	if stats.Created != 3 || stats.Reused != 0 || stats.Removed != 0 {
		t.Errorf("expected 3 created, got %+v", stats)
	}
}

func TestReconcileReusesNodesByID(t *testing.T) {
	l := NewList()
	l.Reconcile(sampleHeadings(), "heading-0")

	before := l.Nodes()

	// Same ids, new selection: every node must be reused.
	l.Reconcile(sampleHeadings(), "heading-20")
	after := l.Nodes()

	for i := range before {
		if before[i] != after[i] {
			t.Errorf("node %d: expected pointer reuse for unchanged id", i)
		}
	}
	stats := l.LastStats()
	if stats.Reused != 3 || stats.Created != 0 || stats.Removed != 0 {
		t.Errorf("expected 3 reused, got %+v", stats)
	}
}

func TestReconcileRemovesAndCreates(t *testing.T) {
	l := NewList()
	l.Reconcile(sampleHeadings(), "")

	next := []outline.Heading{
		{ID: "heading-10", Text: "Beta", Level: 2, Anchor: "beta"},
		{ID: "heading-99", Text: "Delta", Level: 1, Anchor: "delta"},
	}
	l.Reconcile(next, "")

	stats := l.LastStats()
	if stats.Reused != 1 {
		t.Errorf("expected 1 reused, got %+v", stats)
	}
	if stats.Created != 1 {
		t.Errorf("expected 1 created, got %+v", stats)
	}
	if stats.Removed != 2 {
		t.Errorf("expected 2 removed, got %+v", stats)
	}
}

func TestReconcileReorders(t *testing.T) {
	l := NewList()
	l.Reconcile(sampleHeadings(), "")

	reversed := sampleHeadings()
	reversed[0], reversed[2] = reversed[2], reversed[0]
	l.Reconcile(reversed, "")

	stats := l.LastStats()
	if !stats.Reordered {
		t.Error("expected reorder to be detected")
	}
	nodes := l.Nodes()
	if nodes[0].Key != "heading-20" {
		t.Errorf("expected heading-20 first after reorder, got %q", nodes[0].Key)
	}
}

func TestGestureKeyTranslation(t *testing.T) {
	nav := navigator.New(navigator.Options{})
	nav.SetHeadings(sampleHeadings(), "")

	l := NewList()
	g := NewGestures(nav, l, nil)

	if !g.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)) {
		t.Fatal("expected Down to be consumed")
	}
	if got := nav.SelectedID(); got != "heading-10" {
		t.Errorf("expected heading-10 after Down, got %q", got)
	}

	g.HandleKey(tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone))
	if got := nav.SelectedID(); got != "heading-0" {
		t.Errorf("expected heading-0 after Shift-Tab, got %q", got)
	}

	// Wrap backward from the first item.
	g.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if got := nav.SelectedID(); got != "heading-20" {
		t.Errorf("expected wrap to heading-20, got %q", got)
	}

	g.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModNone))
	if got := nav.FilterText(); got != "b" {
		t.Errorf("expected filter text %q, got %q", "b", got)
	}
	g.HandleKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	if got := nav.FilterText(); got != "" {
		t.Errorf("expected empty filter text, got %q", got)
	}

	if g.HandleKey(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone)) {
		t.Error("expected F5 not to be consumed")
	}
}

func TestGestureConfirmAndCopy(t *testing.T) {
	var selected, copied []string

	nav := navigator.New(navigator.Options{
		Callbacks: navigator.Callbacks{
			OnSelect: func(h outline.Heading) { selected = append(selected, h.ID) },
		},
	})
	nav.SetHeadings(sampleHeadings(), "")

	l := NewList()
	l.Reconcile(nav.Filtered(), nav.SelectedID())
	g := NewGestures(nav, l, func(h outline.Heading) { copied = append(copied, h.Anchor) })

	g.Click(2)
	if len(selected) != 1 || selected[0] != "heading-20" {
		t.Errorf("expected click to confirm heading-20, got %v", selected)
	}

	g.CopyLink(1)
	if len(copied) != 1 || copied[0] != "beta" {
		t.Errorf("expected copy for beta, got %v", copied)
	}

	// Out-of-range gestures are ignored.
	g.Click(99)
	g.CopyLink(-1)
	if len(selected) != 1 || len(copied) != 1 {
		t.Errorf("expected out-of-range gestures ignored, got %v / %v", selected, copied)
	}
}
