package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/capbench/bench"
	"github.com/inference-sim/capbench/bench/host"
)

// RunConfig represents the full run configuration file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type RunConfig struct {
	Seed int64 `yaml:"seed" env:"CAPBENCH_SEED"`
	// History is the SQLite database finished runs are appended to. Empty
	// disables history.
	History string `yaml:"history" env:"CAPBENCH_HISTORY"`
	// Chart is the HTML file the observation charts are written to. Empty
	// disables the chart.
	Chart     string       `yaml:"chart" env:"CAPBENCH_CHART"`
	Benchmark bench.Config `yaml:"benchmark"`
	Host      host.Config  `yaml:"host"`
}

func defaultRunConfig() RunConfig {
	return RunConfig{
		Seed:      42,
		Benchmark: bench.DefaultConfig(),
		Host:      host.DefaultConfig(),
	}
}

// loadRunConfig layers the defaults, the YAML file at path (when non-empty)
// and CAPBENCH_* environment variables, in that order.
func loadRunConfig(path string) (RunConfig, error) {
	cfg := defaultRunConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := decodeRunConfig(bytes.NewReader(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := parseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decodeRunConfig overlays YAML from r onto cfg. Unknown keys are errors so
// typos cannot silently fall back to defaults.
func decodeRunConfig(r io.Reader, cfg *RunConfig) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseEnv overlays environment variables onto target.
func parseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *RunConfig) Validate() error {
	if err := c.Benchmark.Validate(); err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	if err := c.Host.Validate(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	return nil
}
