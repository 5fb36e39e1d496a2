package mathverify

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	textCmdRe     = regexp.MustCompile(`\\(?:text|textbf|mathrm|mathbf|mbox|operatorname)\{([^{}]*)\}`)
	fracRe        = regexp.MustCompile(`\\frac\{([^{}]*)\}\{([^{}]*)\}`)
	fracShortRe   = regexp.MustCompile(`\\frac(\d)(\d)`)
	nthRootRe     = regexp.MustCompile(`\\sqrt\[([^\[\]]*)\]\{([^{}]*)\}`)
	sqrtRe        = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	sqrtShortRe   = regexp.MustCompile(`\\sqrt(\d+)`)
	commandRe     = regexp.MustCompile(`\\([a-zA-Z]+)`)
	thousandsRe   = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	trailingUnit  = regexp.MustCompile(`^(-?[\d.]+(?:/\d+)?)\s+[a-zA-Z]+(?:\s+[a-zA-Z]+)*$`)
	simpleLHSRe   = regexp.MustCompile(`^\s*[a-zA-Z][a-zA-Z0-9_]*\s*$`)
	implicitMulRe = regexp.MustCompile(`(\d|\))([a-zA-Z(])`)
)

var latexReplacer = strings.NewReplacer(
	`\left`, "",
	`\right`, "",
	`\!`, "",
	`\,`, "",
	`\;`, "",
	`\:`, "",
	`\ `, "",
	`~`, "",
	`^{\circ}`, "",
	`^\circ`, "",
	`\circ`, "",
	`°`, "",
	`\%`, "",
	`%`, "",
	`\$`, "",
	`$`, "",
	`\dfrac`, `\frac`,
	`\tfrac`, `\frac`,
	`\cdot`, "*",
	`\times`, "*",
	`\div`, "/",
	`\pi`, "pi",
	`π`, "pi",
	`−`, "-",
)

// Normalize rewrites a LaTeX-ish answer into an expression the evaluator
// understands. It is a heuristic: anything it cannot rewrite is left in place
// and later compared as text.
func Normalize(answer string) string {
	s := strings.TrimSpace(answer)
	s = stripDelimiters(s)
	s = textCmdRe.ReplaceAllString(s, "$1")
	s = latexReplacer.Replace(s)
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".")

	if m := trailingUnit.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	// innermost constructs first so nesting resolves outwards
	for {
		next := fracRe.ReplaceAllString(s, "(($1)/($2))")
		next = fracShortRe.ReplaceAllString(next, "(($1)/($2))")
		next = nthRootRe.ReplaceAllString(next, "root(($2),($1))")
		next = sqrtRe.ReplaceAllString(next, "sqrt($1)")
		next = sqrtShortRe.ReplaceAllString(next, "sqrt($1)")
		if next == s {
			break
		}
		s = next
	}

	s = rhsOfEquation(s)
	s = commandRe.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("{", "(", "}", ")", "^", "**").Replace(s)
	s = strings.Join(strings.Fields(s), "")

	if thousandsRe.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}

	if _, err := strconv.ParseFloat(s, 64); err != nil {
		s = implicitMulRe.ReplaceAllString(s, "$1*$2")
	}

	return s
}

func stripDelimiters(s string) string {
	pairs := [][2]string{{"$$", "$$"}, {"$", "$"}, {`\(`, `\)`}, {`\[`, `\]`}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			return strings.TrimSpace(s[len(p[0]) : len(s)-len(p[1])])
		}
	}
	return s
}

// rhsOfEquation reduces "x = 4" to "4". Anything else is returned unchanged.
func rhsOfEquation(s string) string {
	if strings.Count(s, "=") != 1 || strings.ContainsAny(s, "<>!") {
		return s
	}
	parts := strings.SplitN(s, "=", 2)
	if !simpleLHSRe.MatchString(parts[0]) {
		return s
	}
	return strings.TrimSpace(parts[1])
}

// splitTopLevel splits a tuple-like expression on commas that are not nested
// inside brackets. A single outer pair of brackets is removed first.
func splitTopLevel(s string) []string {
	if len(s) >= 2 {
		open, close := s[0], s[len(s)-1]
		if (open == '(' && close == ')') || (open == '[' && close == ']') {
			if inner := s[1 : len(s)-1]; balanced(inner) && strings.Contains(inner, ",") {
				s = inner
			}
		}
	}

	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

func balanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
