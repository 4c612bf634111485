// Package outline extracts a structured heading outline from raw markdown
// text. It produces an ordered sequence of uniquely-identified,
// uniquely-anchored headings suitable for navigation panels.
package outline

import "fmt"

// Heading is a single entry in an extracted document outline.
//
// A Heading is a value produced fresh on every extraction pass. Its ID is
// stable for a given document snapshot but not across edits that shift
// offsets.
type Heading struct {
	// ID uniquely identifies the heading within one extraction. It is a
	// deterministic function of the heading's start offset.
	ID string

	// Text is the normalized human-readable label with all inline markdown
	// formatting removed.
	Text string

	// Level is the heading depth, 1-6.
	Level int

	// From and To delimit the heading construct in the source buffer as a
	// half-open byte range. To > From always holds.
	From int
	To   int

	// Line is the zero-based line number of From.
	Line int

	// Anchor is a URL-safe slug, unique among all headings produced in the
	// same extraction pass.
	Anchor string
}

// HeadingID returns the deterministic id for a heading starting at the given
// offset.
func HeadingID(from int) string {
	return fmt.Sprintf("heading-%d", from)
}
