package mathverify

import (
	"regexp"
	"sort"
	"strings"
)

// maxPhraseLength bounds how much of an "answer is ..." phrase is taken as a candidate
const maxPhraseLength = 64

var (
	answerPhraseRe = regexp.MustCompile(`(?i)(?:final answer|answer)\s*(?:is|:|=)\s*([^\n]+)`)
	dollarMathRe   = regexp.MustCompile(`\$\$?([^$]+?)\$\$?`)
	parenMathRe    = regexp.MustCompile(`(?s)\\\((.+?)\\\)`)
	bracketMathRe  = regexp.MustCompile(`(?s)\\\[(.+?)\\\]`)
	numberRe       = regexp.MustCompile(`-?\d+(?:,\d{3})*(?:\.\d+)?(?:/\d+)?`)
)

var boxedCommands = []string{"\\boxed{", "\\fbox{"}

// ExtractBoxedAnswers returns the contents of every \boxed{...} (or \fbox{...})
// with balanced braces, in order of appearance. Unterminated boxes are skipped.
func ExtractBoxedAnswers(text string) []string {
	type found struct {
		pos     int
		content string
	}
	var all []found

	for _, cmd := range boxedCommands {
		offset := 0
		for {
			start := strings.Index(text[offset:], cmd)
			if start == -1 {
				break
			}
			start += offset

			// Find matching brace
			contentStart := start + len(cmd)
			count := 1
			i := contentStart
			for i < len(text) && count > 0 {
				if text[i] == '{' {
					count++
				} else if text[i] == '}' {
					count--
				}
				i++
			}

			if count == 0 {
				all = append(all, found{pos: start, content: text[contentStart : i-1]})
				offset = i
			} else {
				offset = contentStart
			}
		}
	}

	// restore document order across both commands
	sort.SliceStable(all, func(i, j int) bool { return all[i].pos < all[j].pos })

	answers := make([]string, len(all))
	for i, f := range all {
		answers[i] = f.content
	}
	return answers
}

// ExtractBoxedAnswer returns the content of the last \boxed{...}, or text
// unchanged when there is none.
func ExtractBoxedAnswer(text string) string {
	boxed := ExtractBoxedAnswers(text)
	if len(boxed) == 0 {
		return text
	}
	return boxed[len(boxed)-1]
}

// extractCandidate picks the most specific answer expression in text.
// Priority: last boxed answer, then an "answer is" phrase, then the last
// delimited LaTeX expression, then the last number.
func extractCandidate(text string) (string, bool) {
	if boxed := ExtractBoxedAnswers(text); len(boxed) > 0 {
		return boxed[len(boxed)-1], true
	}

	if matches := answerPhraseRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		phrase := strings.TrimSpace(matches[len(matches)-1][1])
		phrase = strings.TrimRight(phrase, ".。 ")
		if latex, ok := lastLatex(phrase); ok {
			return latex, true
		}
		if phrase != "" && len(phrase) <= maxPhraseLength {
			return phrase, true
		}
	}

	if latex, ok := lastLatex(text); ok {
		return latex, true
	}

	if nums := numberRe.FindAllString(text, -1); len(nums) > 0 {
		return nums[len(nums)-1], true
	}

	return "", false
}

// lastLatex returns the delimited math expression that starts last in text
func lastLatex(text string) (string, bool) {
	best := -1
	content := ""
	for _, re := range []*regexp.Regexp{dollarMathRe, parenMathRe, bracketMathRe} {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if loc[0] > best {
				best = loc[0]
				content = text[loc[2]:loc[3]]
			}
		}
	}

	content = strings.TrimSpace(content)
	return content, best >= 0 && content != ""
}
