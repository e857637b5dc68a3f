package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	exam2pdf "github.com/exam-tools/go-exam2pdf"
	"github.com/exam-tools/go-exam2pdf/internal/config"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrConversionFailed = errors.New("one or more conversions failed")
)

var defaultFormats = []string{exam2pdf.FormatPDF, exam2pdf.FormatDOCX}

// batchParams holds the per-run settings shared by all workers.
type batchParams struct {
	outRoot     string
	formats     []string
	attribution string // from flags or config file, "" when unset
	envAttr     string // EXAM2PDF_ATTRIBUTION, "" when unset
	verbose     bool
}

// conversionResult holds the outcome of a single conversion.
type conversionResult struct {
	inputPath string
	outputs   []string
	source    exam2pdf.AttributionSource
	missing   []string
	removals  []string
	err       error
	duration  time.Duration
}

// run drives a full CLI invocation: parse flags, resolve configuration,
// discover inputs, convert them through a service pool, and report.
func run(args []string, stdout, stderr io.Writer) error {
	flags, rest, err := parseFlags(args)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(rest) != 1 {
		printUsage(stderr)
		return ErrNoInput
	}

	env, err := loadEnvSpec()
	if err != nil {
		return err
	}

	var cfg config.Config
	if flags.common.config != "" {
		cfg, err = config.Load(flags.common.config)
		if err != nil {
			return err
		}
	}
	applyEnv(env, &cfg)

	files, outRoot, err := discoverInputs(rest[0], firstNonEmpty(flags.output, cfg.Output.DefaultDir))
	if err != nil {
		return err
	}

	engine := firstNonEmpty(flags.engine, cfg.Engine, exam2pdf.EnginePandoc)
	workers := flags.workers
	if workers == 0 {
		workers = cfg.Workers
	}
	if workers < 1 {
		workers = 1
	}
	formats := flags.formats
	if len(formats) == 0 {
		formats = defaultFormats
	}

	tmpDir := cfg.Pandoc.TmpDir
	if tmpDir == "" {
		tmpDir = filepath.Join(outRoot, ".pandoc-tmp")
	}

	pool := exam2pdf.NewServicePool(workers,
		exam2pdf.WithPDFEngine(engine),
		exam2pdf.WithCommandRunner(&exam2pdf.ExecRunner{TmpDir: tmpDir}),
	)
	defer func() { _ = pool.Close() }()

	params := &batchParams{
		outRoot:     outRoot,
		formats:     formats,
		attribution: resolveFlagAttribution(flags.attribution, cfg.Attribution),
		envAttr:     env.Attribution,
		verbose:     flags.common.verbose,
	}

	results := convertBatch(context.Background(), pool, files, params)
	if failed := printResults(results, flags.common.quiet, flags.common.verbose, stdout, stderr); failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrConversionFailed, failed, len(results))
	}
	return nil
}

// resolveFlagAttribution builds the explicit citation line. The combined
// flag wins; otherwise field flags, then config file fields; "" when none
// are set so sidecar metadata can take over.
func resolveFlagAttribution(f attributionFlags, cfgAttr config.AttributionConfig) string {
	if f.combined != "" {
		return f.combined
	}
	if f.university != "" || f.year != "" || f.subject != "" || f.author != "" {
		return exam2pdf.Attribution{
			University: f.university,
			Year:       f.year,
			Subject:    f.subject,
			Author:     f.author,
		}.String()
	}
	if cfgAttr.University != "" || cfgAttr.Year != "" || cfgAttr.Subject != "" || cfgAttr.Author != "" {
		return exam2pdf.Attribution{
			University: cfgAttr.University,
			Year:       cfgAttr.Year,
			Subject:    cfgAttr.Subject,
			Author:     cfgAttr.Author,
		}.String()
	}
	return ""
}

// convertBatch processes files concurrently using the service pool.
func convertBatch(ctx context.Context, pool *exam2pdf.ServicePool, files []fileToConvert, params *batchParams) []conversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]conversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			svc := pool.Acquire()
			defer pool.Release(svc)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = conversionResult{inputPath: files[idx].inputPath, err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, svc, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile sanitizes and converts a single Markdown file, writing one
// output per requested format under <outRoot>/<format>/.
func convertFile(ctx context.Context, svc *exam2pdf.Service, f fileToConvert, params *batchParams) conversionResult {
	start := time.Now()
	result := conversionResult{inputPath: f.inputPath}

	content, err := os.ReadFile(f.inputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.duration = time.Since(start)
		return result
	}

	attribution, source, missing, err := exam2pdf.ResolveAttribution(params.attribution, params.envAttr, f.inputPath)
	if err != nil {
		result.err = err
		result.duration = time.Since(start)
		return result
	}
	result.source = source
	result.missing = missing

	conv, err := svc.Convert(ctx, exam2pdf.Input{
		Markdown:    string(content),
		Attribution: attribution,
		Formats:     params.formats,
	})
	if err != nil {
		result.err = err
		result.duration = time.Since(start)
		return result
	}
	result.removals = conv.Removals

	stem := exam2pdf.NormalizeStem(f.stem)
	for _, format := range params.formats {
		path, err := writeOutput(params.outRoot, format, stem, conv)
		if err != nil {
			result.err = err
			break
		}
		result.outputs = append(result.outputs, path)
	}

	result.duration = time.Since(start)
	return result
}

// writeOutput writes one format's output file and returns its path.
func writeOutput(outRoot, format, stem string, conv *exam2pdf.Result) (string, error) {
	var data []byte
	switch format {
	case exam2pdf.FormatPDF:
		data = conv.PDF
	case exam2pdf.FormatDOCX:
		data = conv.DOCX
	case exam2pdf.FormatHTML:
		data = []byte(conv.HTML)
	case exam2pdf.FormatMarkdown:
		data = []byte(conv.Markdown)
	}

	dir := filepath.Join(outRoot, format)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, stem+"."+format)
	// #nosec G306 -- outputs are meant to be readable
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// printResults reports per-file outcomes and returns the failure count.
func printResults(results []conversionResult, quiet, verbose bool, stdout, stderr io.Writer) int {
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(stderr, "FAILED %s: %v\n", r.inputPath, r.err)
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(stdout, "%s (%v, attribution from %s)\n", r.inputPath, r.duration.Round(time.Millisecond), r.source)
			for _, key := range r.missing {
				fmt.Fprintf(stdout, "  missing metadata key: %s\n", key)
			}
			for _, entry := range r.removals {
				fmt.Fprintf(stdout, "  removed image: %s\n", entry)
			}
			for _, out := range r.outputs {
				fmt.Fprintf(stdout, "  -> %s\n", out)
			}
		} else {
			for _, out := range r.outputs {
				fmt.Fprintf(stdout, "Created %s\n", out)
			}
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
