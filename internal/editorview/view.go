// Package editorview defines the editor-view adapter consumed by the outline
// panel and the scroll-convergence controller, and provides a concrete text
// view with pixel-based vertical geometry.
package editorview

// Range is a half-open [From, To) byte range within the document buffer.
type Range struct {
	From int
	To   int
}

// Align controls where ScrollIntoView places the target range.
type Align string

const (
	// AlignStart pins the target near the top of the viewport.
	AlignStart Align = "start"
	// AlignCenter centers the target vertically.
	AlignCenter Align = "center"
	// AlignNearest scrolls the minimum distance needed for visibility.
	AlignNearest Align = "nearest"
)

// Geometry is a measured vertical placement, in document-space pixels.
type Geometry struct {
	// ViewportTop is the y position of the viewport's top edge.
	ViewportTop float64
	// BlockTop is the y position of the measured block's top edge.
	BlockTop float64
}

// OffsetFromViewportTop is the block's distance below the viewport top edge.
// Negative values mean the block has overshot past the top.
func (g Geometry) OffsetFromViewportTop() float64 {
	return g.BlockTop - g.ViewportTop
}

// View is the adapter surface the navigation core needs from an editor view.
// Implementations wrap whatever actually renders the document.
type View interface {
	// ID returns a stable identity for this view, used to key in-flight
	// scroll-verification sessions.
	ID() string

	// DocumentText returns the current document buffer.
	DocumentText() []byte

	// Selection returns the live selection range.
	Selection() Range

	// SetSelection moves the selection.
	SetSelection(r Range)

	// ScrollIntoView asks the view to bring the range into view. The view
	// may decline when it believes the range is already visible.
	ScrollIntoView(r Range, align Align)

	// Measure computes the vertical geometry of the range. Returns false
	// when geometry cannot be computed yet (layout not ready).
	Measure(r Range) (Geometry, bool)

	// SetScrollTop forces the scroll offset directly, bypassing any
	// already-visible heuristic in ScrollIntoView.
	SetScrollTop(y float64)

	// ScheduleMeasurement runs read then write as a two-phase batch so
	// measurements are not interleaved with mutations (layout thrash).
	ScheduleMeasurement(read func(), write func())

	// Focus returns input focus to the editor.
	Focus()
}
