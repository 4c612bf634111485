// Package listview projects the navigator's filtered heading list onto a
// keyed view tree and translates user gestures back into navigator
// operations. It carries no business logic of its own.
package listview

import (
	"sync"

	"github.com/dshills/marknav/internal/outline"
)

// Node is one item in the rendered view tree. Nodes are keyed by heading id
// and reused across reconciliations so a keystroke or document edit does not
// rebuild the whole list.
type Node struct {
	Key      string
	Text     string
	Level    int
	Anchor   string
	Selected bool

	// Heading is the backing heading for gesture callbacks.
	Heading outline.Heading
}

// ReconcileStats counts what the last reconciliation did, broken down by the
// update policy's four operations.
type ReconcileStats struct {
	Created   int
	Reused    int
	Removed   int
	Reordered bool
}

// List is the view-tree projection of the filtered heading list.
type List struct {
	mu    sync.Mutex
	nodes []*Node
	byKey map[string]*Node
	stats ReconcileStats
}

// NewList creates an empty list projection.
func NewList() *List {
	return &List{byKey: make(map[string]*Node)}
}

// Reconcile updates the view tree to match the filtered headings: existing
// nodes are reused for unchanged ids, nodes are created for new ids, nodes
// whose ids disappeared are removed, and the node order follows the input
// order.
func (l *List) Reconcile(filtered []outline.Heading, selectedID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var stats ReconcileStats
	next := make([]*Node, 0, len(filtered))
	nextByKey := make(map[string]*Node, len(filtered))

	for i, h := range filtered {
		node, ok := l.byKey[h.ID]
		if ok {
			stats.Reused++
			if i >= len(l.nodes) || l.nodes[i] != node {
				stats.Reordered = true
			}
		} else {
			stats.Created++
			node = &Node{Key: h.ID}
		}
		node.Text = h.Text
		node.Level = h.Level
		node.Anchor = h.Anchor
		node.Selected = h.ID == selectedID
		node.Heading = h
		next = append(next, node)
		nextByKey[h.ID] = node
	}

	stats.Removed = len(l.nodes) - stats.Reused
	l.nodes = next
	l.byKey = nextByKey
	l.stats = stats
}

// Nodes returns the current view tree in render order.
func (l *List) Nodes() []*Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Node, len(l.nodes))
	copy(out, l.nodes)
	return out
}

// Len returns the number of rendered items.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.nodes)
}

// NodeAt returns the node at the given list position, if any.
func (l *List) NodeAt(i int) (*Node, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.nodes) {
		return nil, false
	}
	return l.nodes[i], true
}

// LastStats returns the operation counts of the most recent reconciliation.
func (l *List) LastStats() ReconcileStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
