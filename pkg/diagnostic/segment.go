package diagnostic

import (
	"sort"
)

const (
	// DefaultSegmentSize is the target segment length in characters.
	// Bounding segment size keeps total matching cost near-linear in log
	// size even for regular expressions with quadratic worst cases.
	DefaultSegmentSize = 10000

	// DefaultSegmentOverlap is how many characters of the previous segment
	// tail are prepended to the next segment, so errors spanning adjacent
	// lines are never lost on a segment boundary.
	DefaultSegmentOverlap = 500
)

// Segment is a contiguous slice of the original log plus enough position
// bookkeeping to translate in-segment match offsets back to absolute log
// coordinates.
type Segment struct {
	// Text is the segment content, always whole lines.
	Text string
	// Offset is the absolute character offset of Text[0] in the log.
	Offset int
	// Line is the 1-based line number of the segment's first line.
	Line int
}

// SplitLog splits a log into ordered, overlap-padded segments. Boundaries
// always fall on line starts, never mid-line, so multi-line matchers keep
// their semantics. A log no longer than size yields exactly one segment
// covering the whole log. Matches found inside an overlap region appear in
// two segments at the same absolute offset; the engine deduplicates them.
func SplitLog(text string, size, overlap int) []Segment {
	if size <= 0 {
		size = DefaultSegmentSize
	}

	if overlap < 0 {
		overlap = DefaultSegmentOverlap
	}

	if overlap >= size {
		overlap = size / 2
	}

	if len(text) <= size {
		return []Segment{{Text: text, Offset: 0, Line: 1}}
	}

	// Absolute offsets of every line start.
	lineStarts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			lineStarts = append(lineStarts, i+1)
		}
	}

	segments := make([]Segment, 0, len(text)/size+1)
	startIdx := 0

	for {
		begin := lineStarts[startIdx]

		// End at the first line start at or past the size target, so the
		// segment covers whole lines. A single line longer than the target
		// is kept intact.
		endIdx := sort.SearchInts(lineStarts, begin+size)
		if endIdx >= len(lineStarts) {
			segments = append(segments, Segment{
				Text:   text[begin:],
				Offset: begin,
				Line:   startIdx + 1,
			})

			return segments
		}

		end := lineStarts[endIdx]
		segments = append(segments, Segment{
			Text:   text[begin:end],
			Offset: begin,
			Line:   startIdx + 1,
		})

		// The next segment begins at the last line start within the
		// overlap window before this segment's end, and always advances
		// past the current begin.
		nextIdx := sort.SearchInts(lineStarts, end-overlap+1) - 1
		if nextIdx <= startIdx {
			nextIdx = startIdx + 1
		}

		startIdx = nextIdx
	}
}
