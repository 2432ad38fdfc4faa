// Package sanitize repairs malformed emphasis markup in model-generated
// prose before it is rendered as markdown. This is a best-effort cosmetic
// pass, not a markdown parser: it never fails and running it twice gives
// the same result as running it once.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	emptyBoldRe     = regexp.MustCompile(`\*\*\s*\*\*`)
	clockBoldRe     = regexp.MustCompile(`(\d{1,2}:\d{2}(?::\d{2})?)\*\*`)
	numberBoldRe    = regexp.MustCompile(`(\d+)\*\*`)
	punctBoldRe     = regexp.MustCompile(`\*\*([:.,;!?])`)
	manyStarsRe     = regexp.MustCompile(`\*{3,}`)
	bareBulletRe    = regexp.MustCompile(`(?m)^\*\s*$`)
	manyNewlinesRe  = regexp.MustCompile(`\n{3,}`)
)

// Clean applies the repair pipeline in a fixed order. Later rules assume
// the earlier ones already ran.
func Clean(text string) string {
	// Collapse empty bold pairs like "** **".
	text = emptyBoldRe.ReplaceAllString(text, "")

	// Strip trailing markers glued to timestamps ("0:00**") and bare
	// numbers ("100**").
	text = clockBoldRe.ReplaceAllString(text, "$1")
	text = numberBoldRe.ReplaceAllString(text, "$1")

	// Strip markers immediately before punctuation ("point**:").
	text = punctBoldRe.ReplaceAllString(text, "$1")

	// Strip isolated "**" at line boundaries.
	text = stripLineBoundaryBold(text)

	// Normalize runs of 3+ asterisks down to a plain bold marker.
	text = manyStarsRe.ReplaceAllString(text, "**")

	// Drop bullet lines with no content.
	text = bareBulletRe.ReplaceAllString(text, "")

	// Collapse excess blank lines.
	text = manyNewlinesRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// stripLineBoundaryBold removes a leading or trailing "**" from a line,
// but only when the line carries no matching marker elsewhere. Balanced
// bold spans are left alone so already-clean text passes through.
func stripLineBoundaryBold(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if rest, ok := strings.CutPrefix(line, "**"); ok && !strings.Contains(rest, "**") {
			line = rest
		}
		if rest, ok := strings.CutSuffix(line, "**"); ok && !strings.Contains(rest, "**") {
			line = rest
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
