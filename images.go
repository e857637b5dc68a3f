package exam2pdf

import (
	"strings"
	"unicode"
)

// Placeholders used in removal log entries when a component is empty.
const (
	noAltPlaceholder         = "(no alt)"
	emptyTargetPlaceholder   = "(empty)"
	implicitLabelPlaceholder = "(implicit)"
)

// StripImages removes inline (![alt](target)) and reference-style
// (![alt][label]) Markdown images from text and returns the cleaned text
// together with a removal log in document order. Log entries read
// "markdown:<alt> -> <target>" for inline images and
// "markdown_ref:<alt>[<label>]" for reference images.
//
// Nothing outside a complete image construct is touched: an unclosed bracket
// or paren leaves the candidate text verbatim, and an escaped "\!" never
// starts a match. The function is pure and idempotent.
func StripImages(text string) (string, []string) {
	runes := []rune(text)
	n := len(runes)

	var b strings.Builder
	b.Grow(len(text))
	var removals []string

	escaped := false
	i := 0
	for i < n {
		r := runes[i]
		if r == '!' && !escaped && i+1 < n && runes[i+1] == '[' {
			if next, entry, ok := scanImage(runes, i); ok {
				removals = append(removals, entry)
				i = next
				continue
			}
		}
		b.WriteRune(r)
		escaped = r == '\\' && !escaped
		i++
	}

	return b.String(), removals
}

// scanImage attempts to match a complete image construct whose "!" sits at
// start. On success it returns the index just past the construct and the
// removal log entry. A failed match returns ok=false and the caller emits the
// "!" as ordinary text.
func scanImage(runes []rune, start int) (next int, entry string, ok bool) {
	n := len(runes)

	altClose, found := findClosingDelimiter(runes, start+1, '[', ']')
	if !found {
		return 0, "", false
	}
	alt := strings.TrimSpace(string(runes[start+2 : altClose]))
	if alt == "" {
		alt = noAltPlaceholder
	}

	j := altClose + 1
	for j < n && unicode.IsSpace(runes[j]) {
		j++
	}
	if j >= n {
		return 0, "", false
	}

	switch runes[j] {
	case '(':
		targetClose, found := findClosingDelimiter(runes, j, '(', ')')
		if !found {
			return 0, "", false
		}
		target := strings.TrimSpace(string(runes[j+1 : targetClose]))
		if target == "" {
			target = emptyTargetPlaceholder
		}
		return targetClose + 1, "markdown:" + alt + " -> " + target, true
	case '[':
		labelClose, found := findClosingDelimiter(runes, j, '[', ']')
		if !found {
			return 0, "", false
		}
		label := strings.TrimSpace(string(runes[j+1 : labelClose]))
		if label == "" {
			label = implicitLabelPlaceholder
		}
		return labelClose + 1, "markdown_ref:" + alt + "[" + label + "]", true
	}

	return 0, "", false
}
