// Package navigator owns the live heading list behind the outline panel:
// free-text filtering, selection, cyclic keyboard navigation, and debounced
// preview notifications.
package navigator

import (
	"strings"
	"sync"
	"time"

	"github.com/dshills/marknav/internal/outline"
	"github.com/dshills/marknav/internal/timing"
)

// Default debounce intervals. Filtering is debounced at the UI boundary so
// the substring match and re-render do not run on every keystroke; previews
// are coalesced so rapid navigation emits only for the settled selection.
const (
	DefaultFilterDelay  = 150 * time.Millisecond
	DefaultPreviewDelay = 30 * time.Millisecond
)

// Callbacks are invoked by the state machine. All of them are optional and
// are called without internal locks held.
type Callbacks struct {
	// OnSelect fires when the user confirms the current selection.
	OnSelect func(outline.Heading)

	// OnPreview fires, debounced, when the selection settles on a new
	// heading. The same heading is never previewed twice in a row.
	OnPreview func(outline.Heading)

	// OnChange fires whenever the filtered list or selection changes and the
	// view should re-render.
	OnChange func()
}

// Options configures a State.
type Options struct {
	FilterDelay  time.Duration
	PreviewDelay time.Duration
	Callbacks    Callbacks
}

// State is the navigator state machine. One instance exists per open panel;
// it holds no ownership over the document buffer itself.
type State struct {
	mu              sync.Mutex
	headings        []outline.Heading
	filterText      string
	filtered        []outline.Heading
	selectedID      string
	lastPreviewedID string

	callbacks Callbacks

	filterDebounce  *timing.Debouncer
	previewDebounce *timing.Debouncer
}

// New creates a navigator state machine.
func New(opts Options) *State {
	if opts.FilterDelay <= 0 {
		opts.FilterDelay = DefaultFilterDelay
	}
	if opts.PreviewDelay <= 0 {
		opts.PreviewDelay = DefaultPreviewDelay
	}

	s := &State{callbacks: opts.Callbacks}
	s.filterDebounce = timing.NewDebouncer(opts.FilterDelay, s.applyFilter)
	s.previewDebounce = timing.NewDebouncer(opts.PreviewDelay, s.emitPreview)
	return s
}

// SetHeadings replaces the working heading sequence, typically after a
// document change re-extraction.
//
// selectedID may be empty, in which case the previous selection is preserved
// if it still exists in the recomputed filtered list; otherwise the first
// filtered item is selected, or none when the list is empty.
func (s *State) SetHeadings(headings []outline.Heading, selectedID string) {
	s.mu.Lock()
	s.headings = headings
	if selectedID != "" {
		s.selectedID = selectedID
	}
	s.recomputeLocked()
	s.schedulePreviewLocked()
	s.mu.Unlock()

	s.notify()
}

// SetFilterText updates the raw filter text. The filter application itself
// is debounced; the match always runs against the text current at fire time.
func (s *State) SetFilterText(text string) {
	s.mu.Lock()
	s.filterText = text
	s.mu.Unlock()

	s.filterDebounce.Call()
}

// applyFilter is the debounced continuation of SetFilterText.
func (s *State) applyFilter() {
	s.mu.Lock()
	s.recomputeLocked()
	s.schedulePreviewLocked()
	s.mu.Unlock()

	s.notify()
}

// MoveSelection moves the selection by delta positions within the filtered
// list, wrapping at both ends. On an empty list it is a no-op that leaves
// the selection absent.
func (s *State) MoveSelection(delta int) {
	s.mu.Lock()
	n := len(s.filtered)
	if n == 0 {
		s.selectedID = ""
		s.mu.Unlock()
		return
	}

	idx := s.indexOfLocked(s.selectedID)
	if idx < 0 {
		idx = 0
	}
	idx = ((idx+delta)%n + n) % n
	s.selectedID = s.filtered[idx].ID
	s.schedulePreviewLocked()
	s.mu.Unlock()

	s.notify()
}

// SelectID makes the heading with the given id the current selection if it
// is present in the filtered list. Used for pointer hover/click.
func (s *State) SelectID(id string) {
	s.mu.Lock()
	if s.indexOfLocked(id) < 0 {
		s.mu.Unlock()
		return
	}
	s.selectedID = id
	s.schedulePreviewLocked()
	s.mu.Unlock()

	s.notify()
}

// Confirm emits a select event for the currently selected heading, or does
// nothing when no heading is selected.
func (s *State) Confirm() {
	s.mu.Lock()
	idx := s.indexOfLocked(s.selectedID)
	var h outline.Heading
	if idx >= 0 {
		h = s.filtered[idx]
	}
	cb := s.callbacks.OnSelect
	s.mu.Unlock()

	if idx >= 0 && cb != nil {
		cb(h)
	}
}

// Close cancels pending debounced work. Called when the panel closes.
func (s *State) Close() {
	s.filterDebounce.Cancel()
	s.previewDebounce.Cancel()
}

// Filtered returns a copy of the current filtered heading list.
func (s *State) Filtered() []outline.Heading {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]outline.Heading, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// SelectedID returns the id of the active heading, or "" when none.
func (s *State) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// Selected returns the active heading, if any.
func (s *State) Selected() (outline.Heading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(s.selectedID)
	if idx < 0 {
		return outline.Heading{}, false
	}
	return s.filtered[idx], true
}

// FilterText returns the raw filter text.
func (s *State) FilterText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterText
}

// recomputeLocked rebuilds the filtered list from headings and filterText
// and re-establishes the selection invariant: the selection references a
// member of the filtered list, or is absent when the list is empty.
func (s *State) recomputeLocked() {
	query := strings.ToLower(s.filterText)
	s.filtered = s.filtered[:0]
	for _, h := range s.headings {
		if query == "" || strings.Contains(strings.ToLower(h.Text), query) {
			s.filtered = append(s.filtered, h)
		}
	}

	if len(s.filtered) == 0 {
		s.selectedID = ""
		return
	}
	if s.indexOfLocked(s.selectedID) < 0 {
		s.selectedID = s.filtered[0].ID
	}
}

// indexOfLocked returns the position of id within filtered, or -1.
func (s *State) indexOfLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, h := range s.filtered {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// schedulePreviewLocked schedules a debounced preview when the selection
// points at a heading that has not been previewed yet.
func (s *State) schedulePreviewLocked() {
	if s.selectedID != "" && s.selectedID != s.lastPreviewedID {
		s.previewDebounce.Call()
	}
}

// emitPreview is the debounced continuation of selection changes. It reads
// the state current at fire time; a selection that moved on or disappeared
// since scheduling is simply not previewed.
func (s *State) emitPreview() {
	s.mu.Lock()
	idx := s.indexOfLocked(s.selectedID)
	if idx < 0 || s.selectedID == s.lastPreviewedID {
		s.mu.Unlock()
		return
	}
	h := s.filtered[idx]
	s.lastPreviewedID = s.selectedID
	cb := s.callbacks.OnPreview
	s.mu.Unlock()

	if cb != nil {
		cb(h)
	}
}

// notify fires the OnChange callback outside the lock.
func (s *State) notify() {
	if s.callbacks.OnChange != nil {
		s.callbacks.OnChange()
	}
}
