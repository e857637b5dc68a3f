// Package metadata locates and parses the sidecar YAML files that describe an
// exam: which university set it, for which year and subject, and who wrote the
// explanation. The sidecar for foo.md is named foo_metadata.yaml and may live
// next to the Markdown file, in any ancestor directory, or inside a
// metadata-yaml/ subdirectory of those.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exam-tools/go-exam2pdf/internal/fileutil"
	"github.com/exam-tools/go-exam2pdf/internal/yamlutil"
)

// SidecarSuffix is appended to the Markdown stem to form the sidecar name.
const SidecarSuffix = "_metadata.yaml"

// metadataDir is a conventional subdirectory holding sidecars when the
// Markdown tree is kept clean of them.
const metadataDir = "metadata-yaml"

// Sidecar holds the exam description fields. Keys are the Japanese names used
// in the YAML files themselves.
type Sidecar struct {
	University string `yaml:"大学名"`
	Year       string `yaml:"年度"`
	Subject    string `yaml:"試験科目"`
	Author     string `yaml:"作成者"`
}

// Keys returns the sidecar YAML keys in file order.
func Keys() []string {
	return []string{"大学名", "年度", "試験科目", "作成者"}
}

// MissingKeys names the fields that are empty or whitespace-only.
func (s *Sidecar) MissingKeys() []string {
	var missing []string
	for i, v := range []string{s.University, s.Year, s.Subject, s.Author} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, Keys()[i])
		}
	}
	return missing
}

// Find returns the path of the sidecar for mdPath, or "" when none exists.
// Each directory from the Markdown file's own up to the filesystem root is
// checked twice: for the sidecar directly, then under metadata-yaml/.
func Find(mdPath string) string {
	stem := strings.TrimSuffix(filepath.Base(mdPath), filepath.Ext(mdPath))
	name := stem + SidecarSuffix

	dir := filepath.Dir(mdPath)
	for {
		direct := filepath.Join(dir, name)
		if fileutil.FileExists(direct) {
			return direct
		}
		nested := filepath.Join(dir, metadataDir, name)
		if fileutil.FileExists(nested) {
			return nested
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// DefaultDir returns the conventional directory for a newly generated
// sidecar: metadata-yaml/ under the grandparent of the source file, which a
// later Find from anywhere in that tree will reach.
func DefaultDir(srcPath string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(srcPath)), metadataDir)
}

// Save writes a sidecar to path, creating parent directories as needed.
func Save(path string, s *Sidecar) error {
	data, err := yamlutil.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding sidecar: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating sidecar dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing sidecar: %w", err)
	}
	return nil
}

// Load reads and parses a sidecar file. Unknown keys are tolerated so that
// sidecars may carry extra bookkeeping fields.
func Load(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path discovered by Find
	if err != nil {
		return nil, fmt.Errorf("reading sidecar: %w", err)
	}
	var s Sidecar
	if err := yamlutil.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing sidecar: %w", err)
	}
	return &s, nil
}
