// Package assets embeds the LaTeX fragments passed to pandoc.
package assets

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// headerTex is the preamble included in every pandoc PDF run. It styles
// blockquotes with a background and defines the \QuoteAttribution macro the
// attribution pipeline recognizes.
//
//go:embed header.tex
var headerTex []byte

// HeaderTeX returns the embedded LaTeX preamble.
func HeaderTeX() []byte {
	return headerTex
}

// WriteHeader writes the preamble into dir and returns its path, for use
// with pandoc's --include-in-header flag.
func WriteHeader(dir string) (string, error) {
	path := filepath.Join(dir, "header.tex")
	if err := os.WriteFile(path, headerTex, 0o600); err != nil {
		return "", fmt.Errorf("writing pandoc header: %w", err)
	}
	return path, nil
}
