// Package config loads the optional CLI configuration file. Everything in it
// can also be set by flags or environment variables; the file only provides
// defaults for values a user sets once and forgets.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/exam-tools/go-exam2pdf/internal/yamlutil"
)

// ErrConfigNotFound reports a config path that does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Config is the YAML configuration file schema.
type Config struct {
	Output      OutputConfig      `yaml:"output"`
	Attribution AttributionConfig `yaml:"attribution"`
	Pandoc      PandocConfig      `yaml:"pandoc"`
	Engine      string            `yaml:"engine"`
	Workers     int               `yaml:"workers"`
}

// OutputConfig controls where converted documents are written.
type OutputConfig struct {
	DefaultDir string `yaml:"default_dir"`
}

// AttributionConfig provides citation fields applied to every input that has
// no sidecar metadata of its own.
type AttributionConfig struct {
	University string `yaml:"大学名"`
	Year       string `yaml:"年度"`
	Subject    string `yaml:"試験科目"`
	Author     string `yaml:"作成者"`
}

// PandocConfig controls how the pandoc subprocess is invoked.
type PandocConfig struct {
	TmpDir string `yaml:"tmp_dir"`
}

// Load reads and parses a configuration file. Unknown keys are rejected so
// typos surface immediately instead of silently doing nothing. Fields the
// file omits stay zero; the CLI resolves final values against flags and
// environment variables.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
