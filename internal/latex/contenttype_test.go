package latex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		code string
		want ContentType
	}{
		{"documentclass", `\documentclass{article}`, Document},
		{"maketitle", `\maketitle`, Document},
		{"table env", `\begin{table}[h]`, Table},
		{"tabular env", `\begin{tabular}{cc}`, Table},
		{"tikz", `\begin{tikzpicture}`, Diagram},
		{"figure", `\begin{figure}`, Diagram},
		{"includegraphics", `\includegraphics{plot.png}`, Diagram},
		{"equation env", `\begin{equation}E=mc^2\end{equation}`, Equation},
		{"inline math", `$x^2$`, Equation},
		{"frac", `\frac{a}{b}`, Equation},
		{"plain text", "nothing latex about this", Unknown},
		{"empty", "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.code))
		})
	}
}

func TestDetectContentTypePrecedence(t *testing.T) {
	// A document carrying a table is a document, never a table.
	code := `\documentclass{article}
\begin{document}
\begin{tabular}{cc} a & b \\ \end{tabular}
\end{document}`
	assert.Equal(t, Document, DetectContentType(code))

	// A table containing math stays a table.
	assert.Equal(t, Table, DetectContentType(`\begin{tabular}{c} $x^2$ \\ \end{tabular}`))

	// A figure containing math stays a diagram.
	assert.Equal(t, Diagram, DetectContentType(`\begin{figure} $x$ \end{figure}`))
}

func TestParseContentType(t *testing.T) {
	ct, ok := ParseContentType("Equation")
	assert.True(t, ok)
	assert.Equal(t, Equation, ct)

	ct, ok = ParseContentType(" table ")
	assert.True(t, ok)
	assert.Equal(t, Table, ct)

	_, ok = ParseContentType("auto")
	assert.False(t, ok)

	_, ok = ParseContentType("bogus")
	assert.False(t, ok)
}
