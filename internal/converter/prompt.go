package converter

import "github.com/joseph-ayodele/image-to-tex/internal/latex"

// Type-specific instruction prompts. The general prompt is used when the
// caller does not declare a content type.
var prompts = map[latex.ContentType]string{
	latex.Equation: `Analyze this image and convert any mathematical equations or formulas to LaTeX code.

Instructions:
- Extract all visible equations and mathematical notation
- Use proper LaTeX math syntax (e.g., \frac, \int, \sum, etc.)
- For multiple equations, use appropriate environments (align, gather, etc.)
- Include any subscripts, superscripts, and special symbols
- Return ONLY the LaTeX code, no explanations

If the image contains multiple equations, separate them appropriately.`,

	latex.Table: `Analyze this image and convert any tables to LaTeX code.

Instructions:
- Extract the table structure with all rows and columns
- Use the tabular environment
- Use \hline for horizontal lines and & for column separators
- Preserve alignment (l, c, r) based on the table layout
- Include any headers or special formatting
- Return ONLY the LaTeX code, no explanations

If the table has headers, make them bold using \textbf{}.`,

	latex.Diagram: `Analyze this image and describe how to recreate this diagram in LaTeX.

Instructions:
- If it's a simple geometric diagram, provide TikZ code
- If it's a complex image, provide a figure environment with description
- Include any labels, annotations, or text visible in the diagram
- Return ONLY the LaTeX code, no explanations

Prefer TikZ for simple diagrams (shapes, arrows, nodes). For complex diagrams, provide a figure environment with a detailed caption.`,

	latex.Document: `Analyze this image and convert the entire document content to LaTeX.

Instructions:
- Extract all text, maintaining structure (sections, paragraphs, etc.)
- Convert any equations to LaTeX math mode
- Convert any tables to LaTeX tables
- Identify document structure (title, sections, subsections)
- Return ONLY the LaTeX code, no explanations

Maintain the original document hierarchy and formatting as closely as possible.`,
}

const generalPrompt = `Analyze this image containing scientific or mathematical content and convert it to LaTeX code.

Instructions:
- Identify the type of content (equation, table, diagram, or text)
- Convert the content to proper LaTeX syntax
- Use appropriate LaTeX environments and commands
- Be precise with mathematical notation, table structure, or text formatting
- Return ONLY the LaTeX code without any explanations or markdown formatting

Provide clean, compilable LaTeX code.`

func promptFor(ct latex.ContentType) string {
	if p, ok := prompts[ct]; ok && ct != latex.Unknown {
		return p
	}
	return generalPrompt
}
