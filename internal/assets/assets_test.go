package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHeaderTeX(t *testing.T) {
	t.Parallel()

	content := string(HeaderTeX())
	if !strings.Contains(content, `\QuoteAttribution`) {
		t.Error("preamble missing the QuoteAttribution macro")
	}
	if !strings.Contains(content, "flushright") {
		t.Error("preamble missing the flushright citation layout")
	}
}

func TestWriteHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := WriteHeader(dir)
	if err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if path != filepath.Join(dir, "header.tex") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- test-owned temp file
	if err != nil {
		t.Fatalf("reading header: %v", err)
	}
	if string(data) != string(HeaderTeX()) {
		t.Error("written header differs from embedded content")
	}
}
