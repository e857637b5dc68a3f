package exam2pdf

import (
	"regexp"
	"strings"
)

// symbolReplacements rewrites checkbox/radio glyphs that lualatex renders as
// missing-glyph boxes into ASCII bracket notation. An ordered slice, not a
// map: the substitutions must run before the supplementary-plane removal so
// that table entries above the BMP (the radio button) are rewritten rather
// than deleted.
var symbolReplacements = []struct {
	from, to string
}{
	{"☐", "[ ]"}, // U+2610 ballot box
	{"☑", "[x]"}, // U+2611 ballot box with check
	{"🔘", "(●)"}, // U+1F518 radio button
	{"⚪", "( )"}, // U+26AA medium white circle
	{"⬜", "[ ]"}, // U+2B1C white large square
}

// supplementaryPlane matches every code point above the Basic Multilingual
// Plane. Mostly emoji and rare CJK extension characters, none of which the
// downstream LaTeX fonts can render.
var supplementaryPlane = regexp.MustCompile(`[\x{10000}-\x{10FFFF}]`)

// SanitizeSymbols applies the glyph replacement table, then removes every
// supplementary-plane code point. BMP characters outside the table pass
// through unchanged.
func SanitizeSymbols(text string) string {
	for _, rep := range symbolReplacements {
		text = strings.ReplaceAll(text, rep.from, rep.to)
	}
	return supplementaryPlane.ReplaceAllString(text, "")
}
