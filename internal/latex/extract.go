package latex

import "strings"

// Lines matching any of these before the first LaTeX-looking line are
// explanatory prose from the model and get dropped.
var skipPhrases = []string{
	"here is", "here's", "the latex", "this is",
	"i've converted", "converted to", "latex code:",
	"explanation:", "note:",
}

// ExtractCode isolates LaTeX from a raw model response.
//
// Markdown code fences are stripped first, then lines are scanned top to
// bottom: everything before the first line starting with '\' or '$' is
// discarded, everything at or after it is kept verbatim. If no LaTeX-looking
// content is found at all, the trimmed input is returned as-is.
func ExtractCode(text string) string {
	text = strings.ReplaceAll(text, "```latex\n", "")
	text = strings.ReplaceAll(text, "```tex\n", "")
	text = strings.ReplaceAll(text, "```\n", "")
	text = strings.ReplaceAll(text, "```", "")

	lines := strings.Split(text, "\n")
	var latexLines []string
	started := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		if !started && matchesSkipPhrase(lower) {
			continue
		}

		if strings.HasPrefix(trimmed, `\`) || strings.HasPrefix(trimmed, "$") {
			started = true
		}

		if started {
			latexLines = append(latexLines, line)
		}
	}

	result := strings.TrimSpace(strings.Join(latexLines, "\n"))
	if result == "" {
		return strings.TrimSpace(text)
	}
	return result
}

func matchesSkipPhrase(lowerLine string) bool {
	for _, phrase := range skipPhrases {
		if strings.Contains(lowerLine, phrase) {
			return true
		}
	}
	return false
}
