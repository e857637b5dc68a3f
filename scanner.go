package exam2pdf

// findClosingDelimiter scans runes for the delimiter closing the opener at
// start, honoring nesting and backslash escapes. The rune at start must be
// the open delimiter; its contents begin at start+1. A backslash escapes the
// following rune (it is never counted as a delimiter), so the scan advances
// past both. A lone backslash at the end of text is skipped safely.
//
// Returns (index, true) for the matching close delimiter, or (0, false) when
// the text ends before the nesting depth returns to zero. Callers treat "not
// found" as "leave the candidate alone", never as an error.
func findClosingDelimiter(text []rune, start int, open, close rune) (int, bool) {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++ // skip the escaped rune
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
