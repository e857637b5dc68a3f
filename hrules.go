package exam2pdf

import "strings"

// NormalizeHorizontalRules rewrites dash-only horizontal rules in the
// document body to "***". Pandoc's markdown+yaml_metadata_block reader can
// mistake a bare "---" line mid-document for the start of a metadata block;
// "***" is unambiguously a rule. A leading front-matter block, when present,
// is copied through byte-identical, delimiter lines included.
func NormalizeHorizontalRules(text string) string {
	lines, trailingNewline := splitLines(text)

	body := lines[findFrontMatterEnd(lines):]
	for i, line := range body {
		stripped := strings.TrimSpace(line)
		if len(stripped) >= 3 && strings.Trim(stripped, "-") == "" {
			body[i] = leadingWhitespace(line) + "***"
		}
	}

	return joinLines(lines, trailingNewline)
}

// findFrontMatterEnd returns the number of leading lines occupied by a YAML
// front-matter block, including both delimiter lines, or 0 when there is
// none. Front matter exists only when line 0 is exactly "---" (after
// trimming) and a later line is exactly "---" or "...".
func findFrontMatterEnd(lines []string) int {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		switch strings.TrimSpace(lines[i]) {
		case "---", "...":
			return i + 1
		}
	}
	return 0
}
