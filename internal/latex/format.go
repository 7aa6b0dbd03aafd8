package latex

import (
	"fmt"
	"strings"
)

// DocumentPackages is the fixed package preamble for generated documents.
var DocumentPackages = []string{
	`\usepackage{amsmath}`,
	`\usepackage{amssymb}`,
	`\usepackage{amsfonts}`,
	`\usepackage{graphicx}`,
	`\usepackage{booktabs}`,
	`\usepackage{tikz}`,
}

// WrapEquation wraps math code in the appropriate environment. Pre-existing
// \[ \], $$ and $ delimiters are stripped first. Inline mode wraps in single
// dollars; display mode picks align when the body carries line continuations
// or align markers, equation otherwise.
func WrapEquation(latexCode string, inline bool) string {
	latexCode = strings.TrimSpace(latexCode)
	for _, delim := range []string{`\[`, `\]`, "$$", "$"} {
		latexCode = strings.ReplaceAll(latexCode, delim, "")
	}
	latexCode = strings.TrimSpace(latexCode)

	if inline {
		return "$" + latexCode + "$"
	}

	if strings.Contains(latexCode, `\\`) || strings.Contains(strings.ToLower(latexCode), "align") {
		if !strings.HasPrefix(latexCode, `\begin{align`) {
			return "\\begin{align}\n" + latexCode + "\n\\end{align}"
		}
		return latexCode
	}

	if !strings.HasPrefix(latexCode, `\begin{equation`) {
		return "\\begin{equation}\n" + latexCode + "\n\\end{equation}"
	}
	return latexCode
}

// WrapTable wraps table code in a table environment with \centering and an
// optional caption. Code already starting with \begin{table is returned
// unchanged; code that is not a tabular block gets a default single
// centered-column tabular wrapper.
func WrapTable(latexCode string, caption string) string {
	latexCode = strings.TrimSpace(latexCode)

	if strings.HasPrefix(latexCode, `\begin{table`) {
		return latexCode
	}

	var b strings.Builder
	b.WriteString("\\begin{table}[htbp]\n\\centering\n")

	if caption != "" {
		fmt.Fprintf(&b, "\\caption{%s}\n", caption)
	}

	if !strings.HasPrefix(latexCode, `\begin{tabular`) {
		b.WriteString("\\begin{tabular}{c}\n")
		b.WriteString(latexCode + "\n")
		b.WriteString("\\end{tabular}\n")
	} else {
		b.WriteString(latexCode + "\n")
	}

	b.WriteString("\\end{table}")
	return b.String()
}

// CreateFullDocument assembles a complete LaTeX document around content.
// Author is only emitted when a title is present.
func CreateFullDocument(content, title, author, documentClass string) string {
	if documentClass == "" {
		documentClass = "article"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\\documentclass{%s}\n\n", documentClass)

	for _, pkg := range DocumentPackages {
		b.WriteString(pkg + "\n")
	}

	b.WriteString("\n\\begin{document}\n\n")

	if title != "" {
		fmt.Fprintf(&b, "\\title{%s}\n", title)
		if author != "" {
			fmt.Fprintf(&b, "\\author{%s}\n", author)
		}
		b.WriteString("\\maketitle\n\n")
	}

	b.WriteString(content + "\n\n")
	b.WriteString("\\end{document}\n")

	return b.String()
}
