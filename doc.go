// Package exam2pdf turns LLM-generated exam answer explanations written in
// Markdown into PDF/DOCX deliverables via pandoc (lualatex), cleaning the
// Markdown first so the LaTeX toolchain does not choke on it.
//
// # Sanitization Pipeline
//
// The heart of the package is a pure text-transformation pipeline applied to
// every document before conversion:
//
//  1. Append a citation footer to each blockquote block (quoted exam text
//     requires attribution)
//  2. Rewrite bare "---" horizontal rules to "***" so pandoc's YAML metadata
//     detection cannot misfire mid-document
//  3. Prepend the fixed disclaimer banner about model-generated image readings
//  4. Strip Markdown image constructs, keeping a removal log
//  5. Replace checkbox/radio glyphs with ASCII and drop supplementary-plane
//     code points that break lualatex
//
// Each stage is a pure function over strings; Sanitize composes them in this
// fixed order:
//
//	cleaned, removed := exam2pdf.Sanitize(markdown, attr.String())
//
// # Conversion
//
// Service wraps the pipeline together with the document backends:
//
//	svc := exam2pdf.New()
//	defer svc.Close()
//
//	res, err := svc.Convert(ctx, exam2pdf.Input{
//	    Markdown:    markdown,
//	    Attribution: attr.String(),
//	    Formats:     []string{exam2pdf.FormatPDF, exam2pdf.FormatDOCX},
//	})
//
// PDF output uses pandoc with the lualatex engine and the embedded Japanese
// document preamble. DOCX output is produced from the image-stripped source
// without attribution injection, matching what reviewers edit by hand. An
// alternative headless-Chrome engine (WithPDFEngine(EngineChrome)) renders
// the goldmark HTML preview instead, for hosts without a LaTeX toolchain.
//
// # Generation Jobs
//
// Runner drives the full exam-to-deliverables job: it calls a
// MarkdownGenerator (Gemini-backed by default) with the exam PDF, converts
// the returned Markdown, tracks progress in a status file, and zips the
// outputs. See Runner and NewGeminiGenerator.
package exam2pdf
