package exam2pdf

import (
	"strings"
	"unicode"
)

// Raw-TeX markers that signal a blockquote already carries a citation footer.
const (
	flushrightMarker       = `\begin{flushright}`
	attributionMacroMarker = `\QuoteAttribution`
)

// duplicateCheckWindow bounds the tail scan when checking a blockquote block
// for an existing citation. The snippet is always appended at the very end of
// a block, so scanning the last few lines is enough; a snippet buried under
// more than this many quoted lines would be injected again (a known
// limitation, exercised in tests).
const duplicateCheckWindow = 10

// InjectBlockquoteAttribution appends a raw-TeX citation footer to every
// blockquote block in text that does not already contain one. A line belongs
// to a blockquote when its content begins with ">" after leading whitespace.
// Non-quote lines pass through unchanged, and a block never receives more
// than one footer, so running the injection twice equals running it once.
func InjectBlockquoteAttribution(text, attribution string) string {
	lines, trailingNewline := splitLines(text)
	out := make([]string, 0, len(lines))

	i := 0
	for i < len(lines) {
		if !isQuoteLine(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}

		start := i
		for i < len(lines) && isQuoteLine(lines[i]) {
			i++
		}
		block := lines[start:i]

		out = append(out, block...)
		if !hasAttribution(block, attribution) {
			out = append(out, attributionSnippet(attribution)...)
		}
	}

	return joinLines(out, trailingNewline)
}

// isQuoteLine reports whether the line's content starts with ">" once
// leading whitespace is stripped.
func isQuoteLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), ">")
}

// hasAttribution checks the tail of a blockquote block for signs of an
// existing citation: the flushright environment, the \QuoteAttribution
// macro, the attribution text itself, or the default attribution.
func hasAttribution(block []string, attribution string) bool {
	tail := block
	if len(tail) > duplicateCheckWindow {
		tail = tail[len(tail)-duplicateCheckWindow:]
	}
	joined := strings.Join(tail, "\n")

	if strings.Contains(joined, flushrightMarker) || strings.Contains(joined, attributionMacroMarker) {
		return true
	}
	for _, marker := range []string{attribution, DefaultAttribution} {
		if marker != "" && strings.Contains(joined, marker) {
			return true
		}
	}
	return false
}

// attributionSnippet builds the five quoted lines appended to a blockquote:
// a blank quote line, vertical spacing, the flushright open, the citation
// itself, and the flushright close. Each line keeps the ">" prefix so the
// snippet stays inside the blockquote.
func attributionSnippet(attribution string) []string {
	return []string{
		">",
		`> \par\vspace{0.8\baselineskip}`,
		`> \begin{flushright}\footnotesize`,
		"> --- " + attribution,
		`> \end{flushright}`,
	}
}
