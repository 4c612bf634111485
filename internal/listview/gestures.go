package listview

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/marknav/internal/navigator"
	"github.com/dshills/marknav/internal/outline"
)

// Gestures translates keyboard and pointer input into navigator operations
// and the copy-link callback. Translation only; all decisions live in the
// navigator.
type Gestures struct {
	nav        *navigator.State
	list       *List
	onCopyLink func(outline.Heading)
}

// NewGestures wires gesture translation for a list. onCopyLink may be nil.
func NewGestures(nav *navigator.State, list *List, onCopyLink func(outline.Heading)) *Gestures {
	return &Gestures{nav: nav, list: list, onCopyLink: onCopyLink}
}

// HandleKey maps a key event onto a navigator operation. Returns false for
// keys the panel does not consume.
func (g *Gestures) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		g.nav.MoveSelection(-1)
	case tcell.KeyDown:
		g.nav.MoveSelection(1)
	case tcell.KeyTab:
		// Tab navigation wraps exactly like the arrow keys.
		g.nav.MoveSelection(1)
	case tcell.KeyBacktab:
		g.nav.MoveSelection(-1)
	case tcell.KeyEnter:
		g.nav.Confirm()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		text := []rune(g.nav.FilterText())
		if len(text) > 0 {
			g.nav.SetFilterText(string(text[:len(text)-1]))
		}
	case tcell.KeyRune:
		g.nav.SetFilterText(g.nav.FilterText() + string(ev.Rune()))
	default:
		return false
	}
	return true
}

// Click selects and confirms the item at the given list position.
func (g *Gestures) Click(row int) {
	node, ok := g.list.NodeAt(row)
	if !ok {
		return
	}
	g.nav.SelectID(node.Key)
	g.nav.Confirm()
}

// Hover moves the selection (and thereby the debounced preview) to the item
// at the given list position.
func (g *Gestures) Hover(row int) {
	node, ok := g.list.NodeAt(row)
	if !ok {
		return
	}
	g.nav.SelectID(node.Key)
}

// CopyLink requests a heading link copy for the item at the given position.
func (g *Gestures) CopyLink(row int) {
	node, ok := g.list.NodeAt(row)
	if !ok || g.onCopyLink == nil {
		return
	}
	g.onCopyLink(node.Heading)
}
