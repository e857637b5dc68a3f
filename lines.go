package exam2pdf

import (
	"strings"
	"unicode"
)

// splitLines splits text into lines without terminators, remembering whether
// the input ended with a newline so joinLines can reproduce it. An input of
// "a\nb\n" yields ["a", "b"], not a trailing empty line.
func splitLines(text string) (lines []string, trailingNewline bool) {
	trailingNewline = strings.HasSuffix(text, "\n")
	if trailingNewline {
		text = strings.TrimSuffix(text, "\n")
	}
	return strings.Split(text, "\n"), trailingNewline
}

// joinLines reassembles lines, restoring the input's trailing-newline
// convention.
func joinLines(lines []string, trailingNewline bool) string {
	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}
	return out
}

// leadingWhitespace returns the run of whitespace at the start of line.
// Unicode-aware: ideographic space (U+3000) indentation counts too, matching
// the TrimSpace-based classification done by callers.
func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}
