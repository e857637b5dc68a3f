package exam2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/exam-tools/go-exam2pdf/internal/jobfs"
)

// inputMIMETypes maps accepted exam input extensions to the media type sent
// to the generator. Scanned exams arrive as images; Gemini reads those
// directly, so no PDF pre-conversion step is needed.
var inputMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tiff": "image/tiff",
}

// Job describes one end-to-end generation request: an exam document in, a
// zip of deliverables out.
type Job struct {
	ID          string // empty = a new UUID is assigned
	InputPath   string // exam document path: .pdf, .png, .jpg, .jpeg, or .tiff
	ExamName    string // explanation title; falls back to the input file name
	Attribution Attribution
	Formats     []string // deliverables; empty = pdf and docx
}

// Runner executes jobs: generate Markdown from the exam, convert it, track
// status in the job store, and package the outputs.
type Runner struct {
	store     *jobfs.Store
	generator MarkdownGenerator
	service   *Service
	logger    *zap.Logger
}

// NewRunner creates a Runner. A nil logger is replaced with a no-op one.
func NewRunner(store *jobfs.Store, generator MarkdownGenerator, service *Service, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		store:     store,
		generator: generator,
		service:   service,
		logger:    logger,
	}
}

// Run executes a job and returns the path of the output zip. Status
// transitions (generating_md, converting, done, error) are written to the
// job's status file as work proceeds; a failure at any step records the
// error status before returning. The input file is never modified.
func (r *Runner) Run(ctx context.Context, job Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	log := r.logger.With(zap.String("job_id", job.ID))

	zipPath, err := r.run(ctx, job, log)
	if err != nil {
		if statusErr := r.store.WriteStatus(job.ID, jobfs.StatusError, err.Error()); statusErr != nil {
			log.Error("writing error status failed", zap.Error(statusErr))
		}
		return "", err
	}
	return zipPath, nil
}

func (r *Runner) run(ctx context.Context, job Job, log *zap.Logger) (string, error) {
	mimeType, ok := inputMIMETypes[strings.ToLower(filepath.Ext(job.InputPath))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedInput, filepath.Ext(job.InputPath))
	}

	examData, err := os.ReadFile(job.InputPath) // #nosec G304 -- caller-provided job input
	if err != nil {
		return "", fmt.Errorf("reading exam input: %w", err)
	}

	outputDir, err := r.store.OutputDir(job.ID)
	if err != nil {
		return "", err
	}

	if err := r.store.WriteStatus(job.ID, jobfs.StatusGeneratingMD, ""); err != nil {
		return "", err
	}
	log.Info("generating markdown", zap.String("input", job.InputPath))

	markdown, err := r.generator.Generate(ctx, GenerateRequest{
		ExamData: examData,
		MIMEType: mimeType,
		ExamName: job.ExamName,
		FileName: filepath.Base(job.InputPath),
	})
	if err != nil {
		return "", fmt.Errorf("generating markdown: %w", err)
	}

	stem := NormalizeStem(outputStem(job))
	mdPath := filepath.Join(outputDir, "markdown", stem+".md")
	if err := writeOutput(mdPath, []byte(markdown)); err != nil {
		return "", err
	}

	if err := r.store.WriteStatus(job.ID, jobfs.StatusConverting, ""); err != nil {
		return "", err
	}

	formats := job.Formats
	if len(formats) == 0 {
		formats = []string{FormatPDF, FormatDOCX}
	}
	res, err := r.service.Convert(ctx, Input{
		Markdown:    markdown,
		Attribution: job.Attribution.String(),
		Formats:     formats,
	})
	if err != nil {
		return "", err
	}
	if len(res.Removals) > 0 {
		log.Info("removed embedded images", zap.Int("count", len(res.Removals)))
	}

	outputs := []string{mdPath}
	if res.PDF != nil {
		pdfPath := filepath.Join(outputDir, "pdf", stem+".pdf")
		if err := writeOutput(pdfPath, res.PDF); err != nil {
			return "", err
		}
		outputs = append(outputs, pdfPath)
	}
	if res.DOCX != nil {
		docxPath := filepath.Join(outputDir, "docx", stem+".docx")
		if err := writeOutput(docxPath, res.DOCX); err != nil {
			return "", err
		}
		outputs = append(outputs, docxPath)
	}
	if res.HTML != "" {
		htmlPath := filepath.Join(outputDir, "html", stem+".html")
		if err := writeOutput(htmlPath, []byte(res.HTML)); err != nil {
			return "", err
		}
		outputs = append(outputs, htmlPath)
	}

	if err := r.store.WriteStatus(job.ID, jobfs.StatusDone, ""); err != nil {
		return "", err
	}

	zipPath, err := r.store.CreateZip(job.ID, outputs)
	if err != nil {
		return "", err
	}
	log.Info("job finished", zap.String("zip", zipPath))
	return zipPath, nil
}

// outputStem derives the output file stem from the exam name, falling back
// to the input file name, with path separators made safe.
func outputStem(job Job) string {
	stem := strings.TrimSpace(job.ExamName)
	if stem == "" {
		base := filepath.Base(job.InputPath)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	stem = strings.ReplaceAll(stem, "/", "_")
	return strings.ReplaceAll(stem, "\\", "_")
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
