package exam2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown     = errors.New("markdown content cannot be empty")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrUnknownEngine     = errors.New("unknown pdf engine")

	// Pandoc conversion errors.
	ErrPandocNotFound = errors.New("pandoc executable not found")
	ErrPandocFailed   = errors.New("pandoc conversion failed")

	// HTML preview and Chrome engine errors.
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Generator errors.
	ErrAPIKeyMissing = errors.New("gemini api key is required")
	ErrEmptyResponse = errors.New("model returned no text")

	// Job runner errors.
	ErrUnsupportedInput = errors.New("unsupported input file type")
)
