package latex

import "strings"

// ContentType is the kind of scientific content a piece of LaTeX represents.
type ContentType string

const (
	Equation ContentType = "equation"
	Table    ContentType = "table"
	Diagram  ContentType = "diagram"
	Document ContentType = "document"
	Unknown  ContentType = "unknown"
)

// ParseContentType maps a user-supplied selector to a ContentType.
// Returns false for anything outside the known set.
func ParseContentType(s string) (ContentType, bool) {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case Equation:
		return Equation, true
	case Table:
		return Table, true
	case Diagram:
		return Diagram, true
	case Document:
		return Document, true
	case Unknown:
		return Unknown, true
	default:
		return Unknown, false
	}
}

// DetectContentType guesses the content type from LaTeX markers.
// Precedence is document > table > diagram > equation; the first class
// whose marker appears wins, so a titled document containing a table
// still classifies as a document.
func DetectContentType(latexCode string) ContentType {
	lower := strings.ToLower(latexCode)

	if strings.Contains(lower, `\documentclass`) || strings.Contains(lower, `\maketitle`) {
		return Document
	}

	if strings.Contains(lower, `\begin{table`) || strings.Contains(lower, `\begin{tabular`) {
		return Table
	}

	for _, marker := range []string{`\begin{tikz`, `\begin{figure`, `\includegraphics`} {
		if strings.Contains(lower, marker) {
			return Diagram
		}
	}

	for _, marker := range []string{
		`\begin{equation`, `\begin{align`, `\[`, `$`,
		`\frac`, `\int`, `\sum`, `\alpha`,
	} {
		if strings.Contains(lower, marker) {
			return Equation
		}
	}

	return Unknown
}
