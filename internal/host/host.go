// Package host implements the privileged-host side of the outline panel:
// resolving note ids to titles, formatting heading links, and writing them
// to the system clipboard. It sits behind a small message boundary; the
// navigation core never calls it directly.
package host

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/marknav/internal/logging"
)

// MessageCopyHeadingLink is the request type for copying a heading link.
const MessageCopyHeadingLink = "copyHeadingLink"

// CopyHeadingLinkRequest asks the host to place a formatted heading link on
// the clipboard.
type CopyHeadingLinkRequest struct {
	Type          string `json:"type"`
	NoteID        string `json:"noteId"`
	HeadingText   string `json:"headingText"`
	HeadingAnchor string `json:"headingAnchor"`
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	Write(text string) error
}

// NoteResolver resolves note ids to titles.
type NoteResolver interface {
	NoteTitle(id string) (string, bool)
}

// NoteRegistry is an in-memory NoteResolver with uuid-keyed notes.
type NoteRegistry struct {
	mu     sync.RWMutex
	titles map[string]string
}

// NewNoteRegistry creates an empty registry.
func NewNoteRegistry() *NoteRegistry {
	return &NoteRegistry{titles: make(map[string]string)}
}

// Register stores a note title and returns its generated id.
func (r *NoteRegistry) Register(title string) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.titles[id] = title
	r.mu.Unlock()
	return id
}

// Put stores a note title under an explicit id.
func (r *NoteRegistry) Put(id, title string) {
	r.mu.Lock()
	r.titles[id] = title
	r.mu.Unlock()
}

// NoteTitle implements NoteResolver.
func (r *NoteRegistry) NoteTitle(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	title, ok := r.titles[id]
	return title, ok
}

// Service handles host requests. Failures are logged and dropped; nothing
// propagates back to the panel.
type Service struct {
	notes NoteResolver
	clip  Clipboard
	log   *logging.Logger
}

// NewService creates a host service. A nil logger disables logging.
func NewService(notes NoteResolver, clip Clipboard, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Null
	}
	return &Service{notes: notes, clip: clip, log: log.WithComponent("host")}
}

// Dispatch routes a raw message to its handler. Unknown or malformed
// messages are logged and dropped.
func (s *Service) Dispatch(raw []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		s.log.Warn("malformed host message: %v", err)
		return
	}

	switch head.Type {
	case MessageCopyHeadingLink:
		var req CopyHeadingLinkRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			s.log.Warn("malformed %s request: %v", MessageCopyHeadingLink, err)
			return
		}
		s.CopyHeadingLink(req)
	default:
		s.log.Warn("unknown host message type %q", head.Type)
	}
}

// CopyHeadingLink resolves the note, formats the link, and writes it to the
// clipboard. An unresolvable note is logged and silently dropped: no link is
// copied and no error surfaces to the user.
func (s *Service) CopyHeadingLink(req CopyHeadingLinkRequest) {
	title, ok := s.notes.NoteTitle(req.NoteID)
	if !ok {
		s.log.Warn("cannot copy heading link: unknown note %q", req.NoteID)
		return
	}

	link := FormatHeadingLink(req.HeadingText, title, req.NoteID, req.HeadingAnchor)
	if err := s.clip.Write(link); err != nil {
		s.log.Warn("clipboard write failed: %v", err)
	}
}

// FormatHeadingLink builds a markdown link of the form
// "[heading @ title](:/noteId#anchor)" with link-breaking characters
// escaped in the label.
func FormatHeadingLink(headingText, noteTitle, noteID, anchor string) string {
	return fmt.Sprintf("[%s @ %s](:/%s#%s)",
		escapeLinkLabel(headingText), escapeLinkLabel(noteTitle), noteID, anchor)
}

// escapeLinkLabel backslash-escapes backslashes and square brackets so the
// label cannot terminate the link construct early.
func escapeLinkLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
