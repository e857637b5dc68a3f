package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for input discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrInvalidExtension   = errors.New("file must have .md, .markdown or .mdown extension")
	ErrNoMarkdownFiles    = errors.New("no markdown files found")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// fileToConvert is a single Markdown source to process.
type fileToConvert struct {
	inputPath string
	stem      string
}

func isMarkdownExt(ext string) bool {
	switch ext {
	case ".md", ".markdown", ".mdown":
		return true
	}
	return false
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// discoverInputs resolves the input argument to a file list and the output
// root. A single file converts into its directory's parent, a directory of
// Markdown files into the directory's own parent, so that pdf/ and docx/
// output directories end up siblings of the sources. An explicit outputDir
// overrides the derived root.
func discoverInputs(inputPath, outputDir string) ([]fileToConvert, string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading input: %w", err)
	}

	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolving input path: %w", err)
	}

	if !info.IsDir() {
		if !isMarkdownExt(filepath.Ext(abs)) {
			return nil, "", fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(abs))
		}
		root := outputDir
		if root == "" {
			root = filepath.Dir(filepath.Dir(abs))
		}
		return []fileToConvert{{inputPath: abs, stem: stemOf(abs)}}, root, nil
	}

	var files []fileToConvert
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isMarkdownExt(filepath.Ext(path)) {
			return nil
		}
		files = append(files, fileToConvert{inputPath: path, stem: stemOf(path)})
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("%w in %s", ErrNoMarkdownFiles, inputPath)
	}

	root := outputDir
	if root == "" {
		root = filepath.Dir(abs)
	}
	return files, root, nil
}

// validateWorkers checks that the worker count is within sane bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means config or 1)", ErrInvalidWorkerCount, n)
	}
	return nil
}
