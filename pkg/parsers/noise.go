package parsers

import (
	"regexp"
	"strings"
)

// The patterns are a best-effort normalizer, not a LaTeX parser: nested or
// unbalanced brackets are not handled.
var (
	inlineMathRe = regexp.MustCompile(`(?s)\\\(.*?\\\)`)
	blockMathRe  = regexp.MustCompile(`(?s)\\\[.*?\\\]`)
	boxedRe      = regexp.MustCompile(`(?s)\\boxed\{.*?\}`)
	strayCharsRe = regexp.MustCompile(`[\n*:\\]`)
)

// StripNoise removes math notation and stray punctuation so that a language
// identifier only sees prose. Order matters: delimited math goes first, then
// boxed answers, then the remaining newlines, colons, asterisks and backslashes.
func StripNoise(text string) string {
	text = inlineMathRe.ReplaceAllString(text, "")
	text = blockMathRe.ReplaceAllString(text, "")
	text = boxedRe.ReplaceAllString(text, "")
	text = strayCharsRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
