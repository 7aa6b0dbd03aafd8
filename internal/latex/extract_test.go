package latex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced latex block",
			in:   "```latex\n\\frac{a}{b}\n```",
			want: `\frac{a}{b}`,
		},
		{
			name: "fenced tex block",
			in:   "```tex\nE = mc^2\n$x$\n```",
			want: "$x$",
		},
		{
			name: "explanatory prose before code",
			in:   "Here is the LaTeX code:\n\\frac{a}{b}",
			want: `\frac{a}{b}`,
		},
		{
			name: "non-matching prose before trigger is dropped too",
			in:   "Some commentary about the image.\n\\alpha + \\beta",
			want: `\alpha + \beta`,
		},
		{
			name: "lines after trigger kept verbatim",
			in:   "Note: converted below\n\\begin{align}\nplain text line\n\\end{align}",
			want: "\\begin{align}\nplain text line\n\\end{align}",
		},
		{
			name: "dollar trigger",
			in:   "This is the result\n$x^2$",
			want: "$x^2$",
		},
		{
			name: "no latex markers returns trimmed input",
			in:   "  just words, nothing else  ",
			want: "just words, nothing else",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCode(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "```")
		})
	}
}
