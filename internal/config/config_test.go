package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exam2pdf.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `output:
  default_dir: /data/out
attribution:
  大学名: 東京医科大学
  年度: "2023"
  試験科目: 生理学
  作成者: 山田
pandoc:
  tmp_dir: /data/tmp
engine: chrome
workers: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.DefaultDir != "/data/out" {
		t.Errorf("Output.DefaultDir = %q", cfg.Output.DefaultDir)
	}
	if cfg.Attribution.University != "東京医科大学" || cfg.Attribution.Year != "2023" {
		t.Errorf("Attribution = %+v", cfg.Attribution)
	}
	if cfg.Pandoc.TmpDir != "/data/tmp" {
		t.Errorf("Pandoc.TmpDir = %q", cfg.Pandoc.TmpDir)
	}
	if cfg.Engine != "chrome" {
		t.Errorf("Engine = %q", cfg.Engine)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
}

func TestLoad_PartialFileLeavesZeroes(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "engine: pandoc\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 0 || cfg.Output.DefaultDir != "" {
		t.Errorf("unset fields not zero: %+v", cfg)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeConfig(t, "engin: pandoc\n")); err == nil {
		t.Error("Load() accepted a misspelled key")
	}
}

func TestLoad_NotFound(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load() error = %v, want ErrConfigNotFound", err)
	}
}
