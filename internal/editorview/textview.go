package editorview

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/marknav/internal/outline"
)

// TextView is an in-process View over a text buffer with per-line pixel
// heights. Line heights can change after a scroll command returns (deferred
// layout of images and similar), which is exactly the situation the
// scroll-convergence controller exists to correct.
type TextView struct {
	mu          sync.Mutex
	id          string
	text        []byte
	index       *outline.LineIndex
	sel         Range
	scrollTop   float64
	height      float64
	lineHeight  float64
	lineHeights []float64 // overrides lineHeight per line when set
	laidOut     bool
	focused     bool
}

// TextViewConfig configures a TextView.
type TextViewConfig struct {
	// Height is the viewport height in pixels.
	Height float64
	// LineHeight is the default height of one line in pixels.
	LineHeight float64
}

// NewTextView creates a text view with an empty document.
func NewTextView(cfg TextViewConfig) *TextView {
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = 20
	}
	v := &TextView{
		id:         uuid.NewString(),
		height:     cfg.Height,
		lineHeight: cfg.LineHeight,
		laidOut:    true,
	}
	v.setTextLocked(nil)
	return v
}

// ID implements View.
func (v *TextView) ID() string { return v.id }

// SetText replaces the document buffer. Layout is recomputed with default
// line heights; SetLineHeights can adjust it afterwards.
func (v *TextView) SetText(text []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setTextLocked(text)
}

func (v *TextView) setTextLocked(text []byte) {
	v.text = text
	v.index = outline.NewLineIndex(text)
	v.lineHeights = nil
	v.laidOut = true
}

// DocumentText implements View.
func (v *TextView) DocumentText() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text
}

// Selection implements View.
func (v *TextView) Selection() Range {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel
}

// SetSelection implements View.
func (v *TextView) SetSelection(r Range) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel = r
}

// SetLineHeights overrides per-line pixel heights, simulating or reflecting
// a layout pass. Lines beyond the slice fall back to the default height.
func (v *TextView) SetLineHeights(heights []float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lineHeights = heights
	v.laidOut = true
}

// SetHeight resizes the viewport.
func (v *TextView) SetHeight(h float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if h > 0 {
		v.height = h
	}
}

// SetLaidOut marks whether geometry is currently measurable.
func (v *TextView) SetLaidOut(ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.laidOut = ok
}

// ScrollTop returns the current scroll offset.
func (v *TextView) ScrollTop() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollTop
}

// SetScrollTop implements View.
func (v *TextView) SetScrollTop(y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if y < 0 {
		y = 0
	}
	v.scrollTop = y
}

// ScrollIntoView implements View. Like a real editor widget, it declines to
// scroll when it believes the range is already inside the viewport.
func (v *TextView) ScrollIntoView(r Range, align Align) {
	v.mu.Lock()
	defer v.mu.Unlock()

	top := v.lineTopLocked(v.index.LineAt(r.From))
	if top >= v.scrollTop && top < v.scrollTop+v.height {
		return
	}

	switch align {
	case AlignCenter:
		v.scrollTop = top - v.height/2
	default:
		v.scrollTop = top
	}
	if v.scrollTop < 0 {
		v.scrollTop = 0
	}
}

// Measure implements View.
func (v *TextView) Measure(r Range) (Geometry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.laidOut {
		return Geometry{}, false
	}
	return Geometry{
		ViewportTop: v.scrollTop,
		BlockTop:    v.lineTopLocked(v.index.LineAt(r.From)),
	}, true
}

// ScheduleMeasurement implements View. All work runs on one logical thread,
// so the two phases execute back to back; the split still guarantees that
// reads complete before any mutation in the same batch.
func (v *TextView) ScheduleMeasurement(read func(), write func()) {
	if read != nil {
		read()
	}
	if write != nil {
		write()
	}
}

// Focus implements View.
func (v *TextView) Focus() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focused = true
}

// Focused reports whether the view holds input focus.
func (v *TextView) Focused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.focused
}

// lineTopLocked returns the y position of the given line's top edge.
func (v *TextView) lineTopLocked(line int) float64 {
	var y float64
	for i := 0; i < line; i++ {
		if i < len(v.lineHeights) {
			y += v.lineHeights[i]
		} else {
			y += v.lineHeight
		}
	}
	return y
}
