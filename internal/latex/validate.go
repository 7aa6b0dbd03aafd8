package latex

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	beginRe = regexp.MustCompile(`\\begin\{(\w+)\}`)
	endRe   = regexp.MustCompile(`\\end\{(\w+)\}`)
)

// Validate performs structural validation of LaTeX code: balanced braces,
// balanced brackets, matching \begin/\end counts, and every opened
// environment name appearing in some \end. Checks short-circuit on the
// first failure.
//
// Environment balance compares global counts per name, not nesting order:
// \begin{a}\begin{b}\end{a}\end{b} passes. Callers rely on this leniency.
func Validate(latexCode string) (bool, string) {
	if strings.Count(latexCode, "{") != strings.Count(latexCode, "}") {
		return false, "Unbalanced braces: {} count mismatch"
	}

	if strings.Count(latexCode, "[") != strings.Count(latexCode, "]") {
		return false, "Unbalanced brackets: [] count mismatch"
	}

	begins := environmentNames(beginRe, latexCode)
	ends := environmentNames(endRe, latexCode)

	if len(begins) != len(ends) {
		return false, `Unbalanced environments: \begin{} and \end{} count mismatch`
	}

	closed := make(map[string]struct{}, len(ends))
	for _, env := range ends {
		closed[env] = struct{}{}
	}
	for _, env := range begins {
		if _, ok := closed[env]; !ok {
			return false, fmt.Sprintf("Environment '%s' opened but not closed", env)
		}
	}

	return true, ""
}

func environmentNames(re *regexp.Regexp, code string) []string {
	matches := re.FindAllStringSubmatch(code, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}
