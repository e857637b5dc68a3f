package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared by every invocation.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// attributionFlags holds the citation fields. A combined --attribution string
// wins over the individual fields.
type attributionFlags struct {
	combined   string
	university string
	year       string
	subject    string
	author     string
}

// convertFlags holds all CLI flags.
type convertFlags struct {
	common      commonFlags
	output      string
	engine      string
	workers     int
	formats     []string
	attribution attributionFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show sanitization details")
}

// addAttributionFlags adds citation flags to a FlagSet.
func addAttributionFlags(fs *flag.FlagSet, f *attributionFlags) {
	fs.StringVar(&f.combined, "attribution", "", "full citation line (overrides field flags)")
	fs.StringVar(&f.university, "university", "", "university name for citations")
	fs.StringVar(&f.year, "year", "", "exam year for citations")
	fs.StringVar(&f.subject, "subject", "", "exam subject for citations")
	fs.StringVar(&f.author, "author", "", "explanation author for citations")
}

// parseFlags parses CLI flags and returns positional args.
func parseFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("exam2pdf", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output root directory")
	fs.StringVar(&f.engine, "engine", "", "PDF engine: pandoc, chrome")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = config or 1)")
	fs.StringSliceVar(&f.formats, "formats", nil, "output formats: pdf,docx,html,md")

	addCommonFlags(fs, &f.common)
	addAttributionFlags(fs, &f.attribution)

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// printUsage writes usage help to w.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: exam2pdf [flags] <input.md | directory>

Sanitizes exam answer explanations written in Markdown and converts them
to PDF and DOCX. Citation metadata is resolved from flags, EXAM2PDF_*
environment variables, or <stem>_metadata.yaml sidecar files.

Flags:
  -o, --output DIR       output root (default: derived from input location)
  -c, --config FILE      config file path
      --engine NAME      PDF engine: pandoc (default), chrome
  -w, --workers N        parallel workers
      --formats LIST     comma-separated: pdf,docx,html,md (default pdf,docx)
      --attribution S    full citation line
      --university S     citation university
      --year S           citation year
      --subject S        citation subject
      --author S         citation author
  -q, --quiet            only show errors
  -v, --verbose          show sanitization details
`)
}
