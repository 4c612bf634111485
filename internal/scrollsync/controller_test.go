package scrollsync

import (
	"sync"
	"testing"
	"time"

	"github.com/dshills/marknav/internal/editorview"
)

// measureResult scripts one Measure outcome for the fake view.
type measureResult struct {
	ok     bool
	offset float64 // block top relative to viewport top
}

// fakeView is a scriptable editorview.View that records the commands the
// controller issues.
type fakeView struct {
	mu  sync.Mutex
	id  string
	sel editorview.Range

	script []measureResult // consumed per Measure call; last entry repeats

	measures      int
	scrollCalls   int
	scrollTopSets []float64
	focusCalls    int
}

func newFakeView(id string, script ...measureResult) *fakeView {
	return &fakeView{id: id, script: script}
}

func (v *fakeView) ID() string                 { return v.id }
func (v *fakeView) DocumentText() []byte       { return nil }
func (v *fakeView) Focus()                     { v.mu.Lock(); v.focusCalls++; v.mu.Unlock() }
func (v *fakeView) SetSelection(r editorview.Range) {
	v.mu.Lock()
	v.sel = r
	v.mu.Unlock()
}

func (v *fakeView) Selection() editorview.Range {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel
}

func (v *fakeView) ScrollIntoView(r editorview.Range, align editorview.Align) {
	v.mu.Lock()
	v.scrollCalls++
	v.mu.Unlock()
}

func (v *fakeView) SetScrollTop(y float64) {
	v.mu.Lock()
	v.scrollTopSets = append(v.scrollTopSets, y)
	v.mu.Unlock()
}

func (v *fakeView) Measure(r editorview.Range) (editorview.Geometry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.measures++
	idx := v.measures - 1
	if idx >= len(v.script) {
		idx = len(v.script) - 1
	}
	if idx < 0 {
		return editorview.Geometry{}, false
	}
	res := v.script[idx]
	if !res.ok {
		return editorview.Geometry{}, false
	}
	return editorview.Geometry{ViewportTop: 100, BlockTop: 100 + res.offset}, true
}

func (v *fakeView) ScheduleMeasurement(read, write func()) {
	if read != nil {
		read()
	}
	if write != nil {
		write()
	}
}

func (v *fakeView) counts() (measures, scrolls, tops, focus int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.measures, v.scrollCalls, len(v.scrollTopSets), v.focusCalls
}

func testTuning() Tuning {
	return Tuning{
		MaxAttempts:    2,
		FirstDelay:     5 * time.Millisecond,
		RetryDelay:     5 * time.Millisecond,
		BelowTolerance: 12,
		AboveTolerance: 1.5,
	}
}

func settle() { time.Sleep(60 * time.Millisecond) }

func TestCorrectionBeyondBelowTolerance(t *testing.T) {
	view := newFakeView("v1", measureResult{ok: true, offset: 20})
	view.SetSelection(editorview.Range{From: 42, To: 50})

	c := NewController(testTuning(), nil)
	c.Verify(view, editorview.Range{From: 42, To: 50}, false)
	settle()

	measures, scrolls, tops, _ := view.counts()
	if tops == 0 {
		t.Error("expected a forced scroll-top correction for offset 20")
	}
	if scrolls == 0 {
		t.Error("expected the logical scroll command to be reissued")
	}
	if measures != 2 {
		t.Errorf("expected 2 measurement attempts, got %d", measures)
	}
	if c.ActiveSessions() != 0 {
		t.Errorf("expected session removed, got %d active", c.ActiveSessions())
	}
}

func TestNoCorrectionWithinTolerance(t *testing.T) {
	view := newFakeView("v1", measureResult{ok: true, offset: 8})
	view.SetSelection(editorview.Range{From: 42, To: 50})

	c := NewController(testTuning(), nil)
	c.Verify(view, editorview.Range{From: 42, To: 50}, false)
	settle()

	measures, scrolls, tops, _ := view.counts()
	if tops != 0 {
		t.Errorf("expected no correction for offset 8, got %d", tops)
	}
	if scrolls != 0 {
		t.Errorf("expected no scroll commands, got %d", scrolls)
	}
	// A converged first attempt still gets one confirmation attempt.
	if measures != 2 {
		t.Errorf("expected 2 measurement attempts, got %d", measures)
	}
}

func TestOvershootUsesStricterTolerance(t *testing.T) {
	// 8px below the top is fine, but 8px above it is an overshoot well past
	// the 1.5px ceiling.
	view := newFakeView("v1", measureResult{ok: true, offset: -8})
	view.SetSelection(editorview.Range{From: 42, To: 50})

	c := NewController(testTuning(), nil)
	c.Verify(view, editorview.Range{From: 42, To: 50}, false)
	settle()

	_, _, tops, _ := view.counts()
	if tops == 0 {
		t.Error("expected a correction for 8px overshoot")
	}
}

func TestStaleSelectionAbortsSilently(t *testing.T) {
	view := newFakeView("v1", measureResult{ok: true, offset: 500})
	view.SetSelection(editorview.Range{From: 42, To: 50})

	c := NewController(testTuning(), nil)
	c.Verify(view, editorview.Range{From: 42, To: 50}, false)

	// User moves on before the first attempt fires.
	view.SetSelection(editorview.Range{From: 900, To: 900})
	settle()

	measures, scrolls, tops, _ := view.counts()
	if measures != 0 {
		t.Errorf("expected no measurements after stale selection, got %d", measures)
	}
	if scrolls != 0 || tops != 0 {
		t.Errorf("expected no commands after stale selection, got %d/%d", scrolls, tops)
	}
	if c.ActiveSessions() != 0 {
		t.Errorf("expected session removed, got %d active", c.ActiveSessions())
	}
}

func TestUnmeasurableRetriesThenGivesUp(t *testing.T) {
	view := newFakeView("v1", measureResult{ok: false})
	view.SetSelection(editorview.Range{From: 42, To: 50})

	c := NewController(testTuning(), nil)
	c.Verify(view, editorview.Range{From: 42, To: 50}, false)
	settle()

	measures, scrolls, _, _ := view.counts()
	if measures != 2 {
		t.Errorf("expected 2 attempts before giving up, got %d", measures)
	}
	// Each unmeasurable attempt reissues the scroll defensively.
	if scrolls != 2 {
		t.Errorf("expected 2 defensive scrolls, got %d", scrolls)
	}
	if c.ActiveSessions() != 0 {
		t.Errorf("expected session removed after give-up, got %d active", c.ActiveSessions())
	}
}

func TestUnmeasurableThenConverges(t *testing.T) {
	view := newFakeView("v1",
		measureResult{ok: false},
		measureResult{ok: true, offset: 3},
	)
	view.SetSelection(editorview.Range{From: 42, To: 50})

	c := NewController(testTuning(), nil)
	c.Verify(view, editorview.Range{From: 42, To: 50}, false)
	settle()

	measures, _, tops, _ := view.counts()
	if measures != 2 {
		t.Errorf("expected 2 attempts, got %d", measures)
	}
	if tops != 0 {
		t.Errorf("expected no correction once converged, got %d", tops)
	}
}

func TestNewVerifyCancelsPredecessor(t *testing.T) {
	view := newFakeView("v1", measureResult{ok: true, offset: 0})
	view.SetSelection(editorview.Range{From: 42, To: 50})

	tuning := testTuning()
	tuning.FirstDelay = 30 * time.Millisecond

	c := NewController(tuning, nil)
	c.Verify(view, editorview.Range{From: 10, To: 20}, false)
	c.Verify(view, editorview.Range{From: 42, To: 50}, false)

	if c.ActiveSessions() != 1 {
		t.Fatalf("expected exactly 1 session per view, got %d", c.ActiveSessions())
	}

	time.Sleep(120 * time.Millisecond)

	// The first session (stale target 10) never ran: had it fired it would
	// have aborted on the stale check without measuring, but its timer was
	// canceled outright, so all measurements belong to the second session.
	measures, _, _, _ := view.counts()
	if measures != 2 {
		t.Errorf("expected 2 measurements from the live session, got %d", measures)
	}
}

func TestCancelView(t *testing.T) {
	view := newFakeView("v1", measureResult{ok: true, offset: 500})
	view.SetSelection(editorview.Range{From: 42, To: 50})

	c := NewController(testTuning(), nil)
	c.Verify(view, editorview.Range{From: 42, To: 50}, false)
	c.CancelView(view.ID())
	settle()

	measures, _, tops, _ := view.counts()
	if measures != 0 || tops != 0 {
		t.Errorf("expected no activity after cancel, got %d measures, %d corrections", measures, tops)
	}
	if c.ActiveSessions() != 0 {
		t.Errorf("expected no sessions, got %d", c.ActiveSessions())
	}
}

func TestRestoreFocusOnCorrection(t *testing.T) {
	view := newFakeView("v1", measureResult{ok: true, offset: 40})
	view.SetSelection(editorview.Range{From: 42, To: 50})

	c := NewController(testTuning(), nil)
	c.Verify(view, editorview.Range{From: 42, To: 50}, true)
	settle()

	_, _, _, focus := view.counts()
	if focus == 0 {
		t.Error("expected focus restoration on confirmed jump correction")
	}
}
