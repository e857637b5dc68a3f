package exam2pdf

import "strings"

// explanationSuffix marks output files as answer explanations.
const explanationSuffix = "_解答解説"

// NormalizeStem appends the answer-explanation suffix to an output file stem
// unless the stem already mentions it, avoiding doubled suffixes when a
// generated file is converted again.
func NormalizeStem(stem string) string {
	if strings.Contains(stem, explanationSuffix) {
		return stem
	}
	return stem + explanationSuffix
}
