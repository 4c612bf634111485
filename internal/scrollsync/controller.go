// Package scrollsync makes heading jumps visually reliable under
// asynchronous layout. After a jump, the viewport may drift when deferred
// content (images and similar) finishes laying out; the controller re-checks
// the heading's position after tuned delays and issues corrective scroll
// commands until the heading is pinned near the viewport top or the attempt
// budget runs out.
package scrollsync

import (
	"sync"

	"github.com/dshills/marknav/internal/editorview"
	"github.com/dshills/marknav/internal/logging"
	"github.com/dshills/marknav/internal/timing"
)

// session is one in-flight verification, keyed by view identity. At most one
// session exists per view; starting a new one cancels its predecessor.
type session struct {
	view         editorview.View
	target       editorview.Range
	restoreFocus bool
	attempt      int
	timer        timing.Timer
}

// Controller runs the scroll-convergence protocol. It owns an explicit
// session table with explicit insertion and cancellation; nothing about
// session lifetime is left to garbage collection.
type Controller struct {
	mu       sync.Mutex
	tuning   Tuning
	log      *logging.Logger
	sessions map[string]*session
}

// NewController creates a controller. A nil logger disables logging.
func NewController(tuning Tuning, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Null
	}
	return &Controller{
		tuning:   tuning.sanitize(),
		log:      log.WithComponent("scrollsync"),
		sessions: make(map[string]*session),
	}
}

// Verify starts a verification session for the target range on the given
// view, canceling any in-flight session for that view first. The caller has
// already issued the initial selection and scroll commands; Verify checks
// the result after a tuned delay and corrects it as needed.
//
// restoreFocus additionally returns input focus to the editor whenever a
// correction is applied (used for confirmed jumps, not previews).
func (c *Controller) Verify(view editorview.View, target editorview.Range, restoreFocus bool) {
	s := &session{
		view:         view,
		target:       target,
		restoreFocus: restoreFocus,
	}

	c.mu.Lock()
	if prev, ok := c.sessions[view.ID()]; ok {
		prev.timer.Cancel()
	}
	c.sessions[view.ID()] = s
	c.mu.Unlock()

	s.timer.Schedule(c.tuning.FirstDelay, func() { c.attempt(s) })
}

// CancelView cancels any in-flight session for the given view. Invoked on
// panel close and before starting unrelated navigation.
func (c *Controller) CancelView(viewID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[viewID]; ok {
		s.timer.Cancel()
		delete(c.sessions, viewID)
	}
}

// CancelAll cancels every in-flight session.
func (c *Controller) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, s := range c.sessions {
		s.timer.Cancel()
		delete(c.sessions, id)
	}
}

// ActiveSessions returns the number of in-flight sessions.
func (c *Controller) ActiveSessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// current reports whether s is still the live session for its view.
func (c *Controller) current(s *session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[s.view.ID()] == s
}

// finish removes s from the session table if it is still live.
func (c *Controller) finish(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[s.view.ID()] == s {
		delete(c.sessions, s.view.ID())
	}
}

// attempt runs one verification attempt: a geometry read followed, when
// needed, by a corrective write, batched through the view's two-phase
// measurement scheduler.
func (c *Controller) attempt(s *session) {
	if !c.current(s) {
		return
	}

	var (
		stale    bool
		measured bool
		geo      editorview.Geometry
	)

	s.view.ScheduleMeasurement(
		func() {
			// Stale-selection check happens at the suspension boundary: the
			// user may have moved on while the attempt was scheduled.
			sel := s.view.Selection()
			if sel.From != s.target.From {
				stale = true
				return
			}
			geo, measured = s.view.Measure(s.target)
		},
		func() {
			if stale {
				// User moved on; abort silently with no further attempts.
				c.finish(s)
				return
			}
			if !c.current(s) {
				return
			}
			if !measured {
				c.retryUnmeasurable(s)
				return
			}
			c.converge(s, geo)
		},
	)
}

// retryUnmeasurable handles the layout-not-ready outcome: re-issue the
// scroll defensively and try again, unless the budget is spent.
func (c *Controller) retryUnmeasurable(s *session) {
	s.view.ScrollIntoView(s.target, editorview.AlignStart)

	s.attempt++
	if s.attempt >= c.tuning.MaxAttempts {
		c.log.Warn("gave up verifying scroll position after %d attempts (geometry unavailable)", s.attempt)
		c.finish(s)
		return
	}
	s.timer.Schedule(c.tuning.RetryDelay, func() { c.attempt(s) })
}

// converge checks the measured offset against the asymmetric pin tolerance
// and corrects the viewport when the heading sits too low or has overshot
// past the top.
func (c *Controller) converge(s *session, geo editorview.Geometry) {
	offset := geo.OffsetFromViewportTop()
	needsCorrection := offset > c.tuning.BelowTolerance || offset < -c.tuning.AboveTolerance

	if needsCorrection {
		// Force the offset directly: ScrollIntoView alone may decline
		// because it considers the range already visible.
		s.view.SetScrollTop(geo.BlockTop)
		s.view.ScrollIntoView(s.target, editorview.AlignStart)
		if s.restoreFocus {
			s.view.Focus()
		}
		c.log.Debug("corrected scroll offset by %.1fpx (attempt %d)", offset, s.attempt)
	}

	s.attempt++
	if s.attempt >= c.tuning.MaxAttempts {
		c.finish(s)
		return
	}
	// Even a converged measurement gets one confirmation attempt while
	// budget remains: layout can still shift after this point.
	s.timer.Schedule(c.tuning.RetryDelay, func() { c.attempt(s) })
}
