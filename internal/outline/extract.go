package outline

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gtext "github.com/yuin/goldmark/text"

	"github.com/dshills/marknav/internal/logging"
)

// Extractor parses markdown buffers into heading outlines using the goldmark
// AST. One Extractor may be reused across documents; each Extract call is an
// independent pass.
type Extractor struct {
	md  goldmark.Markdown
	log *logging.Logger
}

// NewExtractor creates an extractor. A nil logger disables logging.
func NewExtractor(log *logging.Logger) *Extractor {
	if log == nil {
		log = logging.Null
	}
	return &Extractor{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
		log: log.WithComponent("outline"),
	}
}

// Extract parses source and returns the document's headings in ascending
// order of From. It never returns an error: any internal parser failure is
// logged and yields an empty outline.
func (e *Extractor) Extract(source []byte) (headings []Heading) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("markdown parse failed: %v", r)
			headings = nil
		}
	}()

	if len(source) == 0 {
		return nil
	}

	idx := NewLineIndex(source)
	doc := e.md.Parser().Parse(gtext.NewReader(source))
	counters := make(map[string]int)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if item, ok := e.heading(h, source, idx, counters); ok {
			headings = append(headings, item)
		}
		// Inline children were consumed by the text walk.
		return ast.WalkSkipChildren, nil
	})

	return headings
}

// heading converts one AST heading node into a Heading. Returns false for
// headings that normalize to empty text; those are not part of the outline.
func (e *Extractor) heading(h *ast.Heading, source []byte, idx *LineIndex, counters map[string]int) (Heading, bool) {
	lines := h.Lines()
	if lines.Len() == 0 {
		return Heading{}, false
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)

	startLine := idx.LineAt(first.Start)
	from := idx.LineStart(startLine)

	var to int
	if isATX(source, from) {
		to = idx.LineEnd(startLine)
	} else {
		// Setext: the underline sits on the line after the last text line.
		to = idx.LineEnd(idx.LineAt(last.Start) + 1)
	}
	if to <= from {
		return Heading{}, false
	}

	label := headingText(h, source)
	if label == "" {
		return Heading{}, false
	}

	id := HeadingID(from)
	return Heading{
		ID:     id,
		Text:   label,
		Level:  h.Level,
		From:   from,
		To:     to,
		Line:   startLine,
		Anchor: AllocateSlug(label, id, counters),
	}, true
}

// isATX reports whether the heading construct starting at from uses ATX
// markers. Setext headings start with their text line instead.
func isATX(source []byte, from int) bool {
	// ATX markers may be indented by up to three spaces.
	for i := from; i < len(source) && i-from < 4; i++ {
		switch source[i] {
		case ' ', '\t':
			continue
		case '#':
			return true
		default:
			return false
		}
	}
	return false
}

// headingText extracts the normalized inline text of a heading: formatting
// markers removed, link/image targets dropped, code span content kept
// verbatim, raw markup discarded, escapes resolved, whitespace collapsed.
//
// goldmark's ast.Walk is iterative over the node's child list, so deeply
// nested inline markup cannot exhaust the call stack.
func headingText(n ast.Node, source []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.WriteString(resolveEscapes(string(v.Segment.Value(source))))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(source))
		case *ast.CodeSpan:
			// Code span content is kept verbatim: no escape resolution.
			for c := v.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					b.Write(t.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			// Embedded markup tags are dropped entirely.
			return ast.WalkSkipChildren, nil
		}
		// Emphasis, links and images carry their visible text in child Text
		// nodes; walking into them keeps content and sheds markers.
		return ast.WalkContinue, nil
	})

	return collapseWhitespace(b.String())
}

const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// resolveEscapes replaces backslash escapes of markdown punctuation with the
// literal character. Backslashes before anything else are kept as-is.
func resolveEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(markdownPunct, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// collapseWhitespace reduces whitespace runs to single spaces and trims the
// result.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
