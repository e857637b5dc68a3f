package exam2pdf

import (
	"context"
	"fmt"
	"time"
)

// markdownSanitizer abstracts the attribution pipeline so tests can observe
// or replace it.
type markdownSanitizer interface {
	Sanitize(text, attribution string) (string, []string)
}

// attributionPipeline is the production sanitizer: the package-level Sanitize
// composition.
type attributionPipeline struct{}

func (attributionPipeline) Sanitize(text, attribution string) (string, []string) {
	return Sanitize(text, attribution)
}

// Compile-time interface implementation checks.
var (
	_ markdownSanitizer = attributionPipeline{}
	_ documentConverter = (*pandocConverter)(nil)
	_ htmlConverter     = (*goldmarkConverter)(nil)
)

// Service orchestrates the sanitize-and-convert pipeline.
type Service struct {
	cfg           serviceConfig
	sanitizer     markdownSanitizer
	htmlConverter htmlConverter
	pandoc        documentConverter
	chrome        htmlPDFConverter
}

// New creates a Service with default configuration: pandoc/lualatex PDF
// engine and a five-minute timeout. Use options to customize behavior.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:           serviceConfig{timeout: defaultTimeout, engine: EnginePandoc},
		sanitizer:     attributionPipeline{},
		htmlConverter: newGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.pandoc == nil {
		s.pandoc = newPandocConverter(nil)
	}
	// The Chrome engine is created lazily even when selected; the browser
	// itself only launches on first render.
	if s.chrome == nil && s.cfg.engine == EngineChrome {
		s.chrome = newChromeConverter(s.cfg.timeout)
	}

	return s
}

// Convert sanitizes the input Markdown and produces the requested
// deliverables. The sanitized Markdown and removal log are always returned;
// PDF, DOCX, and HTML are produced per Input.Formats (default: PDF only).
// The context bounds the whole conversion in addition to the configured
// timeout.
func (s *Service) Convert(ctx context.Context, input Input) (*Result, error) {
	if input.Markdown == "" {
		return nil, ErrEmptyMarkdown
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []string{FormatPDF}
	}
	for _, f := range formats {
		switch f {
		case FormatPDF, FormatDOCX, FormatHTML, FormatMarkdown:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()

	sanitized, removals := s.sanitizer.Sanitize(input.Markdown, input.Attribution)
	res := &Result{
		Markdown: sanitized,
		Removals: removals,
	}

	for _, f := range formats {
		var err error
		switch f {
		case FormatPDF:
			res.PDF, err = s.convertPDF(ctx, sanitized)
		case FormatDOCX:
			// DOCX gets the image-stripped source without attribution
			// injection: reviewers edit the Word file by hand and the raw-TeX
			// snippets would surface as literal text there.
			stripped, docxRemovals := StripImages(input.Markdown)
			res.Removals = mergeRemovals(res.Removals, docxRemovals)
			res.DOCX, err = s.pandoc.ToDOCX(ctx, stripped)
		case FormatHTML:
			res.HTML, err = s.htmlConverter.ToHTML(ctx, sanitized)
		case FormatMarkdown:
			// Already in res.Markdown.
		}
		if err != nil {
			return nil, fmt.Errorf("converting to %s: %w", f, err)
		}
	}

	return res, nil
}

// mergeRemovals appends entries from extra that dst does not already carry.
// The sanitize pass and the DOCX strip see the same images, so in practice
// this only catches divergence between the two passes.
func mergeRemovals(dst, extra []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, r := range dst {
		seen[r] = true
	}
	for _, r := range extra {
		if !seen[r] {
			dst = append(dst, r)
			seen[r] = true
		}
	}
	return dst
}

// convertPDF renders sanitized Markdown with the configured engine.
func (s *Service) convertPDF(ctx context.Context, sanitized string) ([]byte, error) {
	switch s.cfg.engine {
	case EnginePandoc:
		return s.pandoc.ToPDF(ctx, sanitized)
	case EngineChrome:
		htmlContent, err := s.htmlConverter.ToHTML(ctx, sanitized)
		if err != nil {
			return nil, err
		}
		return s.chrome.ToPDF(ctx, htmlContent)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, s.cfg.engine)
	}
}

// Close releases resources held by the Chrome engine, if any.
func (s *Service) Close() error {
	if s.chrome != nil {
		return s.chrome.Close()
	}
	return nil
}

// Timeout reports the configured per-conversion timeout.
func (s *Service) Timeout() time.Duration {
	return s.cfg.timeout
}
