// Package linkify finds clock-format substrings in rendered chat text and
// tags each one as an interactive unit carrying its second offset. The
// split is a pure function over text; the markdown extension in this
// package turns tagged segments into clickable HTML spans.
package linkify

import (
	"regexp"

	"github.com/tubelens/tubelens/internal/timestamp"
)

// Segment is one run of text. Interactive segments are clock-format
// matches and carry the equivalent second offset; the rest is passthrough.
type Segment struct {
	Text        string
	Seconds     int
	Interactive bool
}

var clockRe = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?`)

// Split scans text for clock-format substrings and returns the text as an
// ordered segment sequence with matches tagged interactive. Surrounding
// text is preserved byte for byte. A scan that stops advancing aborts the
// remainder of the text instead of looping.
func Split(text string) []Segment {
	var segs []Segment
	last := 0
	for pos := 0; pos < len(text); {
		loc := clockRe.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end <= start {
			break
		}

		if start > last {
			segs = append(segs, Segment{Text: text[last:start]})
		}
		match := text[start:end]
		segs = append(segs, Segment{
			Text:        match,
			Seconds:     timestamp.ParseClock(match),
			Interactive: true,
		})
		last = end
		pos = end
	}

	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}
