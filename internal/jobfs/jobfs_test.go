package jobfs

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_StatusRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	if err := store.WriteStatus("job-1", StatusGeneratingMD, ""); err != nil {
		t.Fatalf("WriteStatus() error = %v", err)
	}
	if err := store.WriteStatus("job-1", StatusDone, ""); err != nil {
		t.Fatalf("WriteStatus() error = %v", err)
	}

	record, err := store.ReadStatus("job-1")
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if record.JobID != "job-1" {
		t.Errorf("JobID = %q", record.JobID)
	}
	if record.Status != StatusDone {
		t.Errorf("Status = %q, want %q", record.Status, StatusDone)
	}
	if record.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestStore_ErrorStatusKeepsMessage(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	if err := store.WriteStatus("job-1", StatusError, "generation failed"); err != nil {
		t.Fatalf("WriteStatus() error = %v", err)
	}

	record, err := store.ReadStatus("job-1")
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if record.Message != "generation failed" {
		t.Errorf("Message = %q", record.Message)
	}
}

func TestStore_ReadStatusMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	if _, err := store.ReadStatus("nope"); !errors.Is(err, ErrStatusNotFound) {
		t.Errorf("ReadStatus() error = %v, want ErrStatusNotFound", err)
	}
}

func TestStore_Dirs(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := NewStore(base)

	in, err := store.InputDir("job-1")
	if err != nil {
		t.Fatalf("InputDir() error = %v", err)
	}
	out, err := store.OutputDir("job-1")
	if err != nil {
		t.Fatalf("OutputDir() error = %v", err)
	}

	for _, dir := range []string{in, out} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
	if in == out {
		t.Error("input and output dirs collide")
	}
}

func TestStore_CreateZip(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := NewStore(base)

	var files []string
	for _, name := range []string{"a.md", "b.pdf"} {
		path := filepath.Join(base, name)
		if err := os.WriteFile(path, []byte("content of "+name), 0o600); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}

	zipPath, err := store.CreateZip("job-1", files)
	if err != nil {
		t.Fatalf("CreateZip() error = %v", err)
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("opening zip: %v", err)
	}
	defer func() { _ = reader.Close() }()

	names := map[string]bool{}
	for _, f := range reader.File {
		names[f.Name] = true
	}
	if !names["a.md"] || !names["b.pdf"] {
		t.Errorf("zip entries = %v, want base names only", names)
	}

	found, err := store.FindZip("job-1")
	if err != nil {
		t.Fatalf("FindZip() error = %v", err)
	}
	if found != zipPath {
		t.Errorf("FindZip() = %q, want %q", found, zipPath)
	}
}

func TestStore_CreateZipMissingFile(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	if _, err := store.CreateZip("job-1", []string{"/no/such/file"}); err == nil {
		t.Error("CreateZip() with missing file succeeded")
	}
	if _, err := store.FindZip("job-1"); !errors.Is(err, ErrZipNotFound) {
		t.Errorf("FindZip() error = %v, want ErrZipNotFound", err)
	}
}
