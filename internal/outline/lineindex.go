package outline

import "sort"

// LineIndex maps byte offsets to zero-based line numbers. It is built once
// per extraction pass in O(n) and queried in O(log n).
type LineIndex struct {
	source []byte
	starts []int
}

// NewLineIndex builds an index over the given source buffer.
func NewLineIndex(source []byte) *LineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{source: source, starts: starts}
}

// LineAt returns the zero-based line number containing the given offset.
// Offsets past the end of the buffer report the last line.
func (x *LineIndex) LineAt(offset int) int {
	if offset < 0 {
		return 0
	}
	// First start greater than offset; the line is the one before it.
	i := sort.Search(len(x.starts), func(i int) bool {
		return x.starts[i] > offset
	})
	return i - 1
}

// LineStart returns the byte offset of the first character of the line.
func (x *LineIndex) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(x.starts) {
		return len(x.source)
	}
	return x.starts[line]
}

// LineEnd returns the offset just past the last content character of the
// line, excluding the line terminator.
func (x *LineIndex) LineEnd(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(x.starts)-1 {
		return len(x.source)
	}
	end := x.starts[line+1] - 1 // drop '\n'
	if end > x.starts[line] && x.source[end-1] == '\r' {
		end--
	}
	return end
}

// LineCount returns the number of lines in the indexed buffer.
func (x *LineIndex) LineCount() int {
	return len(x.starts)
}
