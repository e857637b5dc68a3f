package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/exam-tools/go-exam2pdf/internal/config"
)

// envSpec holds EXAM2PDF_* environment overrides. These sit between CLI
// flags and the config file: flags > env > config file > defaults.
type envSpec struct {
	Attribution string `envconfig:"ATTRIBUTION"`
	Engine      string `envconfig:"ENGINE"`
	OutputDir   string `split_words:"true"`
	Workers     int    `envconfig:"WORKERS"`
}

// loadEnvSpec reads EXAM2PDF_* environment variables.
func loadEnvSpec() (*envSpec, error) {
	var spec envSpec
	if err := envconfig.Process("exam2pdf", &spec); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &spec, nil
}

// applyEnv overlays environment values onto cfg. Environment variables beat
// the config file; CLI flags are merged later and beat both.
func applyEnv(env *envSpec, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Engine != "" {
		cfg.Engine = env.Engine
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
