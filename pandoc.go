package exam2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/exam-tools/go-exam2pdf/internal/assets"
)

// Pandoc input formats. The PDF reader keeps the GFM-equivalent extensions
// while allowing raw_tex, which the attribution snippets require. The DOCX
// reader disables yaml_metadata_block and raw_html so stray "---" lines and
// embedded HTML pass through as text instead of derailing the conversion.
const (
	pdfInputFormat = "markdown" +
		"+hard_line_breaks" +
		"+yaml_metadata_block" +
		"+gfm_auto_identifiers" +
		"+pipe_tables" +
		"+table_captions" +
		"+strikeout" +
		"+task_lists" +
		"+definition_lists" +
		"+fenced_code_blocks" +
		"+auto_identifiers" +
		"+footnotes" +
		"+raw_tex"
	docxInputFormat = "gfm-yaml_metadata_block-raw_html"
)

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. When TmpDir is set it is
// created on demand and exported as TMPDIR/TMP/TEMP to the child process;
// pandoc fails on hosts where the global temp directory is not writable.
type ExecRunner struct {
	TmpDir string
}

// Run executes the command and captures both output streams.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	if r.TmpDir != "" {
		if err := os.MkdirAll(r.TmpDir, 0o750); err != nil {
			return "", "", fmt.Errorf("creating pandoc temp dir: %w", err)
		}
		cmd.Env = append(os.Environ(),
			"TMPDIR="+r.TmpDir,
			"TMP="+r.TmpDir,
			"TEMP="+r.TmpDir,
		)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// documentConverter abstracts Markdown to PDF/DOCX conversion.
type documentConverter interface {
	ToPDF(ctx context.Context, markdown string) ([]byte, error)
	ToDOCX(ctx context.Context, markdown string) ([]byte, error)
}

// pandocConverter converts Markdown by invoking the pandoc CLI.
type pandocConverter struct {
	runner CommandRunner
}

// newPandocConverter creates a pandocConverter; a nil runner gets a real
// ExecRunner.
func newPandocConverter(runner CommandRunner) *pandocConverter {
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &pandocConverter{runner: runner}
}

// ToPDF converts Markdown to PDF via pandoc with the lualatex engine and the
// embedded Japanese document preamble.
func (c *pandocConverter) ToPDF(ctx context.Context, markdown string) ([]byte, error) {
	if markdown == "" {
		return nil, ErrEmptyMarkdown
	}

	workDir, err := os.MkdirTemp("", "exam2pdf-pandoc-*")
	if err != nil {
		return nil, fmt.Errorf("creating pandoc work dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	mdPath := filepath.Join(workDir, "input.md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0o600); err != nil {
		return nil, fmt.Errorf("writing pandoc input: %w", err)
	}

	headerPath, err := assets.WriteHeader(workDir)
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(workDir, "output.pdf")
	args := []string{
		mdPath,
		"-f", pdfInputFormat,
		"-o", outPath,
		"--pdf-engine=lualatex",
		"-V", "documentclass=ltjsarticle",
		"--include-in-header", headerPath,
	}
	if err := c.run(ctx, args); err != nil {
		return nil, err
	}

	pdf, err := os.ReadFile(outPath) // #nosec G304 -- path is inside our temp dir
	if err != nil {
		return nil, fmt.Errorf("%w: reading output: %v", ErrPandocFailed, err)
	}
	return pdf, nil
}

// ToDOCX converts Markdown to a Word document via pandoc.
func (c *pandocConverter) ToDOCX(ctx context.Context, markdown string) ([]byte, error) {
	if markdown == "" {
		return nil, ErrEmptyMarkdown
	}

	workDir, err := os.MkdirTemp("", "exam2pdf-pandoc-*")
	if err != nil {
		return nil, fmt.Errorf("creating pandoc work dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	mdPath := filepath.Join(workDir, "input.md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0o600); err != nil {
		return nil, fmt.Errorf("writing pandoc input: %w", err)
	}

	outPath := filepath.Join(workDir, "output.docx")
	args := []string{
		mdPath,
		"-f", docxInputFormat,
		"-o", outPath,
	}
	if err := c.run(ctx, args); err != nil {
		return nil, err
	}

	docx, err := os.ReadFile(outPath) // #nosec G304 -- path is inside our temp dir
	if err != nil {
		return nil, fmt.Errorf("%w: reading output: %v", ErrPandocFailed, err)
	}
	return docx, nil
}

// run invokes pandoc and maps failures to sentinel errors, keeping stderr in
// the message since that is where lualatex reports what went wrong.
func (c *pandocConverter) run(ctx context.Context, args []string) error {
	_, stderr, err := c.runner.Run(ctx, "pandoc", args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: install pandoc first", ErrPandocNotFound)
		}
		if msg := strings.TrimSpace(stderr); msg != "" {
			return fmt.Errorf("%w: %s: %v", ErrPandocFailed, msg, err)
		}
		return fmt.Errorf("%w: %v", ErrPandocFailed, err)
	}
	return nil
}
