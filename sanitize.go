package exam2pdf

import "strings"

// Disclaimer is the banner prepended to every converted document. It warns
// that model-generated readings of figures can differ from the actual
// findings and must be re-checked against primary sources before clinical,
// educational, or official use.
const Disclaimer = "※画像の読解については、モデルの特性上、実際の所見と異なる解釈や不正確な説明が出力されるリスクがございます。" +
	"臨床判断・教育評価・公式文書等への転用に際しては、必ず原資料および一次情報を再確認し、専門家のレビューを経た上で慎重にご利用ください。"

// Sanitize runs the full attribution and cleanup pipeline over raw Markdown
// and returns the text ready for pandoc, plus the image removal log.
//
// Stage order is load-bearing:
//
//  1. Blockquote attribution runs first, before image stripping can disturb
//     the quote blocks it scans.
//  2. Horizontal-rule normalization runs after injection; injected snippets
//     carry no bare "---" but user content might.
//  3. The disclaimer banner is prepended only when its exact text is absent.
//  4. Image stripping removes what the renderer cannot embed.
//  5. Symbol sanitization runs last so no earlier stage can reintroduce a
//     glyph it would have removed.
//
// Every stage is a pure function; the input text is never modified in place.
// An empty attribution falls back to DefaultAttribution.
func Sanitize(text, attribution string) (string, []string) {
	if attribution == "" {
		attribution = DefaultAttribution
	}

	text = InjectBlockquoteAttribution(text, attribution)
	text = NormalizeHorizontalRules(text)
	text = prependDisclaimer(text)
	cleaned, removals := StripImages(text)
	return SanitizeSymbols(cleaned), removals
}

// prependDisclaimer puts the disclaimer banner, bolded, before everything
// else, unless the exact disclaimer text already appears somewhere in the
// document.
func prependDisclaimer(text string) string {
	if strings.Contains(text, Disclaimer) {
		return text
	}
	return "**" + Disclaimer + "**\n\n" + text
}
