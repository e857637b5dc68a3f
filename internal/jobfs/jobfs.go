// Package jobfs manages the on-disk layout of explanation jobs: one directory
// per job holding its uploaded input, its generated outputs, a status.json
// progress record, and a final zip archive of the deliverables.
package jobfs

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Status is a job's lifecycle phase as recorded in status.json.
type Status string

// Job lifecycle phases, in order. A job ends in either StatusDone or
// StatusError.
const (
	StatusPending      Status = "pending"
	StatusGeneratingMD Status = "generating_md"
	StatusConverting   Status = "converting"
	StatusDone         Status = "done"
	StatusError        Status = "error"
)

// Sentinel errors for job storage operations.
var (
	ErrStatusNotFound = errors.New("status record not found")
	ErrZipNotFound    = errors.New("zip archive not found")
)

const (
	statusFile = "status.json"
	inputDir   = "input"
	outputDir  = "output"
	dirPerm    = 0o750
	filePerm   = 0o600
)

// StatusRecord is the JSON document written to status.json.
type StatusRecord struct {
	JobID     string    `json:"job_id"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store lays out job directories under a base path:
//
//	<base>/<jobID>/input/
//	<base>/<jobID>/output/
//	<base>/<jobID>/status.json
//	<base>/<jobID>/<jobID>.zip
type Store struct {
	base string
	now  func() time.Time
}

// NewStore returns a Store rooted at base. The directory is created on first
// use, not here.
func NewStore(base string) *Store {
	return &Store{base: base, now: time.Now}
}

func (s *Store) jobDir(jobID string) string {
	return filepath.Join(s.base, jobID)
}

// InputDir returns the job's input directory, creating it if needed.
func (s *Store) InputDir(jobID string) (string, error) {
	dir := filepath.Join(s.jobDir(jobID), inputDir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("creating input dir: %w", err)
	}
	return dir, nil
}

// OutputDir returns the job's output directory, creating it if needed.
func (s *Store) OutputDir(jobID string) (string, error) {
	dir := filepath.Join(s.jobDir(jobID), outputDir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	return dir, nil
}

// WriteStatus records the job's current phase. The record is written whole
// each time so readers never see a partial update within one JSON document.
func (s *Store) WriteStatus(jobID string, st Status, message string) error {
	if err := os.MkdirAll(s.jobDir(jobID), dirPerm); err != nil {
		return fmt.Errorf("creating job dir: %w", err)
	}
	record := StatusRecord{
		JobID:     jobID,
		Status:    st,
		Message:   message,
		UpdatedAt: s.now().UTC(),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	path := filepath.Join(s.jobDir(jobID), statusFile)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing status: %w", err)
	}
	return nil
}

// ReadStatus returns the job's last recorded status.
func (s *Store) ReadStatus(jobID string) (*StatusRecord, error) {
	path := filepath.Join(s.jobDir(jobID), statusFile)
	data, err := os.ReadFile(path) // #nosec G304 -- path built from store base
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: job %s", ErrStatusNotFound, jobID)
		}
		return nil, fmt.Errorf("reading status: %w", err)
	}
	var record StatusRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}
	return &record, nil
}

// CreateZip packages the given files into <jobID>.zip inside the job
// directory and returns the archive path. Entries are stored under their base
// names only.
func (s *Store) CreateZip(jobID string, files []string) (string, error) {
	zipPath := filepath.Join(s.jobDir(jobID), jobID+".zip")
	out, err := os.OpenFile(zipPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("creating zip: %w", err)
	}

	w := zip.NewWriter(out)
	for _, file := range files {
		if err := addZipEntry(w, file); err != nil {
			_ = w.Close()
			_ = out.Close()
			_ = os.Remove(zipPath)
			return "", err
		}
	}

	if err := w.Close(); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("finalizing zip: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing zip: %w", err)
	}
	return zipPath, nil
}

func addZipEntry(w *zip.Writer, file string) error {
	src, err := os.Open(file) // #nosec G304 -- files produced by the job itself
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}
	defer func() { _ = src.Close() }()

	entry, err := w.Create(filepath.Base(file))
	if err != nil {
		return fmt.Errorf("adding zip entry %s: %w", filepath.Base(file), err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("writing zip entry %s: %w", filepath.Base(file), err)
	}
	return nil
}

// FindZip returns the job's archive path, or ErrZipNotFound when the job has
// not completed packaging.
func (s *Store) FindZip(jobID string) (string, error) {
	path := filepath.Join(s.jobDir(jobID), jobID+".zip")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: job %s", ErrZipNotFound, jobID)
		}
		return "", fmt.Errorf("checking zip: %w", err)
	}
	return path, nil
}
