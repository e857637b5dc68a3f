package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	exam2pdf "github.com/exam-tools/go-exam2pdf"
	"github.com/exam-tools/go-exam2pdf/internal/config"
)

func TestResolveFlagAttribution(t *testing.T) {
	t.Parallel()

	cfgAttr := config.AttributionConfig{University: "設定大学", Year: "2020", Subject: "化学", Author: "設定者"}

	tests := []struct {
		name     string
		flags    attributionFlags
		cfg      config.AttributionConfig
		expected string
	}{
		{
			name:     "combined flag wins",
			flags:    attributionFlags{combined: "そのまま使う", university: "無視される"},
			cfg:      cfgAttr,
			expected: "そのまま使う",
		},
		{
			name:     "field flags beat config",
			flags:    attributionFlags{university: "東京医科大学", year: "2023"},
			cfg:      cfgAttr,
			expected: "東京医科大学 2023 不明 不明",
		},
		{
			name:     "config file fields used",
			cfg:      cfgAttr,
			expected: "設定大学 2020 化学 設定者",
		},
		{
			name:     "nothing set yields empty for sidecar resolution",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveFlagAttribution(tt.flags, tt.cfg); got != tt.expected {
				t.Errorf("resolveFlagAttribution() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Engine: "pandoc", Workers: 1}
	applyEnv(&envSpec{Engine: "chrome", OutputDir: "/env/out", Workers: 4}, &cfg)

	if cfg.Engine != "chrome" {
		t.Errorf("Engine = %q, env should beat config file", cfg.Engine)
	}
	if cfg.Output.DefaultDir != "/env/out" {
		t.Errorf("Output.DefaultDir = %q", cfg.Output.DefaultDir)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Workers)
	}

	unchanged := config.Config{Engine: "pandoc", Workers: 2}
	applyEnv(&envSpec{}, &unchanged)
	if unchanged.Engine != "pandoc" || unchanged.Workers != 2 {
		t.Errorf("empty env modified config: %+v", unchanged)
	}
}

func TestLoadEnvSpec(t *testing.T) {
	t.Setenv("EXAM2PDF_ATTRIBUTION", "環境 2021 英語 監修者")
	t.Setenv("EXAM2PDF_ENGINE", "chrome")
	t.Setenv("EXAM2PDF_OUTPUT_DIR", "/env/out")
	t.Setenv("EXAM2PDF_WORKERS", "2")

	env, err := loadEnvSpec()
	if err != nil {
		t.Fatalf("loadEnvSpec() error = %v", err)
	}
	if env.Attribution != "環境 2021 英語 監修者" {
		t.Errorf("Attribution = %q", env.Attribution)
	}
	if env.Engine != "chrome" {
		t.Errorf("Engine = %q", env.Engine)
	}
	if env.OutputDir != "/env/out" {
		t.Errorf("OutputDir = %q", env.OutputDir)
	}
	if env.Workers != 2 {
		t.Errorf("Workers = %d", env.Workers)
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	outRoot := t.TempDir()
	conv := &exam2pdf.Result{
		Markdown: "sanitized",
		PDF:      []byte("pdf"),
		DOCX:     []byte("docx"),
		HTML:     "<html/>",
	}

	for _, format := range []string{"pdf", "docx", "html", "md"} {
		path, err := writeOutput(outRoot, format, "exam_解答解説", conv)
		if err != nil {
			t.Fatalf("writeOutput(%s) error = %v", format, err)
		}
		want := filepath.Join(outRoot, format, "exam_解答解説."+format)
		if path != want {
			t.Errorf("path = %q, want %q", path, want)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("output not written: %v", err)
		}
	}
}

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []conversionResult{
		{
			inputPath: "/in/a.md",
			outputs:   []string{"/out/pdf/a_解答解説.pdf"},
			source:    exam2pdf.SourceMetadata,
			duration:  120 * time.Millisecond,
		},
		{
			inputPath: "/in/b.md",
			err:       errors.New("boom"),
		},
	}

	var stdout, stderr bytes.Buffer
	failed := printResults(results, false, false, &stdout, &stderr)

	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if !strings.Contains(stdout.String(), "Created /out/pdf/a_解答解説.pdf") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "1 succeeded, 1 failed") {
		t.Errorf("summary missing: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "FAILED /in/b.md: boom") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestPrintResults_VerboseShowsRemovals(t *testing.T) {
	t.Parallel()

	results := []conversionResult{{
		inputPath: "/in/a.md",
		outputs:   []string{"/out/pdf/a.pdf"},
		source:    exam2pdf.SourceFallback,
		missing:   []string{"大学名"},
		removals:  []string{"markdown:図1 -> fig.png"},
	}}

	var stdout, stderr bytes.Buffer
	printResults(results, false, true, &stdout, &stderr)

	out := stdout.String()
	for _, want := range []string{"attribution from fallback", "missing metadata key: 大学名", "removed image: markdown:図1 -> fig.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output missing %q: %q", want, out)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty() = %q, want b", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}
