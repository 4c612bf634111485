// Package panel wires the outline panel together: document changes flow
// through the heading extractor into the navigator, navigator events flow
// into the list projection and the scroll-convergence controller, and
// copy-link gestures flow out to the privileged host over the message
// boundary.
package panel

import (
	"encoding/json"

	"github.com/dshills/marknav/internal/config"
	"github.com/dshills/marknav/internal/editorview"
	"github.com/dshills/marknav/internal/host"
	"github.com/dshills/marknav/internal/listview"
	"github.com/dshills/marknav/internal/logging"
	"github.com/dshills/marknav/internal/navigator"
	"github.com/dshills/marknav/internal/outline"
	"github.com/dshills/marknav/internal/scrollsync"
)

// Options configures a panel.
type Options struct {
	Config config.Config

	// View is the editor view this panel navigates.
	View editorview.View

	// NoteID identifies the open document to the host for link copying.
	NoteID string

	// SendToHost posts a raw message to the privileged host. May be nil
	// when link copying is unavailable.
	SendToHost func([]byte)

	// Logger is the parent logger. Nil disables logging.
	Logger *logging.Logger
}

// Panel is one open outline panel over one editor view.
type Panel struct {
	cfg  config.Config
	view editorview.View
	log  *logging.Logger

	extractor *outline.Extractor
	nav       *navigator.State
	list      *listview.List
	gestures  *listview.Gestures
	scroll    *scrollsync.Controller

	noteID     string
	sendToHost func([]byte)
}

// New creates a panel and performs the initial extraction of the view's
// document.
func New(opts Options) *Panel {
	log := opts.Logger
	if log == nil {
		log = logging.Null
	}

	cfg := opts.Config
	cfg.Normalize()

	p := &Panel{
		cfg:        cfg,
		view:       opts.View,
		log:        log.WithComponent("panel"),
		extractor:  outline.NewExtractor(log),
		list:       listview.NewList(),
		noteID:     opts.NoteID,
		sendToHost: opts.SendToHost,
	}

	p.scroll = scrollsync.NewController(scrollsync.Tuning{
		MaxAttempts:    cfg.Scroll.MaxAttempts,
		FirstDelay:     cfg.Scroll.FirstDelay(),
		RetryDelay:     cfg.Scroll.RetryDelay(),
		BelowTolerance: cfg.Scroll.BelowTolerancePx,
		AboveTolerance: cfg.Scroll.AboveTolerancePx,
	}, log)

	p.nav = navigator.New(navigator.Options{
		FilterDelay:  cfg.Navigator.FilterDelay(),
		PreviewDelay: cfg.Navigator.PreviewDelay(),
		Callbacks: navigator.Callbacks{
			OnSelect:  func(h outline.Heading) { p.jump(h, true) },
			OnPreview: func(h outline.Heading) { p.jump(h, false) },
			OnChange:  p.reconcile,
		},
	})

	p.gestures = listview.NewGestures(p.nav, p.list, p.copyLink)

	p.Refresh()
	return p
}

// Refresh re-extracts the outline from the view's current document. The
// previous selection survives when its heading id still exists.
func (p *Panel) Refresh() {
	headings := p.extractor.Extract(p.view.DocumentText())
	p.nav.SetHeadings(headings, "")
}

// SetDocument is Refresh for callers that push content instead of having
// the view pull it (e.g. the file watcher).
func (p *Panel) SetDocument(text []byte) {
	headings := p.extractor.Extract(text)
	p.nav.SetHeadings(headings, "")
}

// Navigator exposes the panel's state machine.
func (p *Panel) Navigator() *navigator.State { return p.nav }

// List exposes the view-tree projection for rendering.
func (p *Panel) List() *listview.List { return p.list }

// Gestures exposes the input translation layer.
func (p *Panel) Gestures() *listview.Gestures { return p.gestures }

// Dimensions returns the configured panel width and the height ceiling for
// the given viewport height, both already clamped.
func (p *Panel) Dimensions(viewportHeight float64) (widthPx int, maxHeightPx float64) {
	return p.cfg.Panel.WidthPx, viewportHeight * p.cfg.Panel.MaxHeightFraction
}

// Close tears the panel down: pending debounced work and any in-flight
// scroll verification are explicitly canceled.
func (p *Panel) Close() {
	p.nav.Close()
	p.scroll.CancelView(p.view.ID())
}

// jump moves the editor to a heading and starts convergence verification.
// Confirmed jumps restore editor focus; previews do not steal it.
func (p *Panel) jump(h outline.Heading, restoreFocus bool) {
	target := editorview.Range{From: h.From, To: h.To}
	p.view.SetSelection(target)
	p.view.ScrollIntoView(target, editorview.AlignStart)
	if restoreFocus {
		p.view.Focus()
	}
	p.scroll.Verify(p.view, target, restoreFocus)
}

// reconcile projects the navigator state onto the view tree.
func (p *Panel) reconcile() {
	p.list.Reconcile(p.nav.Filtered(), p.nav.SelectedID())
}

// copyLink posts a copy-heading-link request to the host. Marshaling a
// request cannot realistically fail; a missing transport simply drops it.
func (p *Panel) copyLink(h outline.Heading) {
	if p.sendToHost == nil {
		return
	}
	msg, err := json.Marshal(host.CopyHeadingLinkRequest{
		Type:          host.MessageCopyHeadingLink,
		NoteID:        p.noteID,
		HeadingText:   h.Text,
		HeadingAnchor: h.Anchor,
	})
	if err != nil {
		p.log.Error("marshal copy request: %v", err)
		return
	}
	p.sendToHost(msg)
}
