package parser

import "sort"

// Span is a half-open byte range [Start, End) into the source text.
// Spans carry no line/column information so that the incremental
// coordinator can shift positions with a single integer add; use a
// LineIndex to recover line/column for display.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// LineIndex maps byte offsets to 1-based line/column pairs.
type LineIndex struct {
	// starts[i] is the byte offset of the first character of line i+1.
	starts []int
}

func NewLineIndex(text []byte) *LineIndex {
	starts := []int{0}
	for i, b := range text {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Locate returns the 1-based line and column for a byte offset.
// Columns count bytes, matching the convention of the span model.
func (ix *LineIndex) Locate(offset int) (line, column int) {
	i := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - ix.starts[i] + 1
}
