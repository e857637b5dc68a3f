package exam2pdf

import "time"

// Output format identifiers for Input.Formats.
const (
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
	FormatHTML     = "html"
	FormatMarkdown = "md"
)

// PDF engine identifiers for WithPDFEngine.
const (
	EnginePandoc = "pandoc"
	EngineChrome = "chrome"
)

// Input contains one conversion request.
type Input struct {
	Markdown    string   // Markdown content (required)
	Attribution string   // pre-resolved citation line ("" = DefaultAttribution)
	Formats     []string // requested outputs (empty = pdf)
}

// Result holds conversion outputs. Markdown and Removals are always set;
// the remaining fields are populated per requested format.
type Result struct {
	Markdown string   // sanitized Markdown fed to the PDF backend
	Removals []string // image removal log from sanitization
	PDF      []byte
	DOCX     []byte
	HTML     string
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
	engine  string
}

// defaultTimeout bounds a single conversion. Lualatex runs on long Japanese
// documents are slow, so the default is generous.
const defaultTimeout = 5 * time.Minute

// WithTimeout sets the per-conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("exam2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithPDFEngine selects the PDF backend: EnginePandoc (default, lualatex) or
// EngineChrome (headless Chrome over the HTML preview).
func WithPDFEngine(engine string) Option {
	return func(s *Service) {
		s.cfg.engine = engine
	}
}

// WithCommandRunner injects the runner used for pandoc subprocesses.
// Primarily for tests and for pinning the pandoc temp directory.
func WithCommandRunner(r CommandRunner) Option {
	return func(s *Service) {
		s.pandoc = newPandocConverter(r)
	}
}
