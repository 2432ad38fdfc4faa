// Package timestamp converts between clock-format strings ("2:34",
// "1:23:45") and second counts, and parses timestamp lines out of raw
// model output. Model text is untrusted, so parsing is lenient: anything
// unparsable degrades to "N/A"/0 instead of failing.
package timestamp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parsed is one structured timestamp extracted from model output.
type Parsed struct {
	Time        string `json:"time"`
	Description string `json:"description"`
	Seconds     int    `json:"seconds"`
}

var (
	clockRe      = regexp.MustCompile(`(\d+):(\d+)(?::(\d+))?`)
	lineClockRe  = regexp.MustCompile(`(\d{1,2}:\d{2}(?::\d{2})?)`)
	linePrefixRe = regexp.MustCompile(`\d+:\d+(?::\d+)?\s*-\s*`)
	lineFilterRe = regexp.MustCompile(`\d+:\d+(?::\d+)?\s*-`)
)

// ParseClock converts the first clock-format substring of s to seconds.
// Two groups are minutes:seconds, three are hours:minutes:seconds.
// No match returns 0.
func ParseClock(s string) int {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	if m[3] == "" {
		return a*60 + b
	}
	c, _ := strconv.Atoi(m[3])
	return a*3600 + b*60 + c
}

// ParseLine extracts the timestamp and description from one model output
// line such as "2:34 - Introduction". Lines with multiple clock-looking
// substrings only honor the first.
func ParseLine(line string) Parsed {
	timeStr := ""
	if m := lineClockRe.FindStringSubmatch(line); m != nil {
		timeStr = m[1]
	}

	// Strip only the first "<clock> - " prefix occurrence.
	desc := line
	if loc := linePrefixRe.FindStringIndex(line); loc != nil {
		desc = line[:loc[0]] + line[loc[1]:]
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		desc = strings.TrimSpace(line)
	}

	p := Parsed{Time: timeStr, Description: desc}
	if timeStr == "" {
		p.Time = "N/A"
		return p
	}
	p.Seconds = ParseClock(timeStr)
	return p
}

// ExtractLines splits raw model text on newlines and parses every line
// shaped like "<clock> - ...". Order is preserved; no deduplication.
func ExtractLines(text string) []Parsed {
	var out []Parsed
	for _, line := range strings.Split(text, "\n") {
		if !lineFilterRe.MatchString(line) {
			continue
		}
		out = append(out, ParseLine(line))
	}
	return out
}

// FormatSeconds renders a second count back to clock format. Hour-less
// values never get a leading zero hour.
func FormatSeconds(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
