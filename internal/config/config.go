// Package config holds the harness's compiled-in constants and an
// optional YAML/environment override layer, loaded once into a single
// structured Config value at startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default tunable values, overridable via Load.
const (
	DefaultQuantumMS       = 10
	DefaultSecondsPerTest  = 1
	DefaultBasePrio        = 10
	DefaultMinPrio         = 7
	DefaultEDFPeriodQuanta = 1
	DefaultSCTPeriodQuanta = 1
)

// DefaultEDFJitter and DefaultSCTJitter are both 2ms.
const (
	DefaultEDFJitter = 2 * time.Millisecond
	DefaultSCTJitter = 2 * time.Millisecond
)

// ConfigEnvVar is the optional override path; the driver still runs with
// built-in defaults when it is unset.
const ConfigEnvVar = "HARNESS_CONFIG"

// Config is the full set of tunables the harness needs. YAML tags allow an
// operator-supplied override file; every field defaults to the
// recommended value above.
type Config struct {
	QuantumMS       int           `yaml:"quantum_ms"`
	SecondsPerTest  int           `yaml:"seconds_per_test"`
	BasePrio        int           `yaml:"base_prio"`
	MinPrio         int           `yaml:"min_prio"`
	EDFPeriodQuanta int           `yaml:"edf_period_quanta"`
	SCTPeriodQuanta int           `yaml:"sct_period_quanta"`
	EDFJitter       time.Duration `yaml:"edf_jitter"`
	SCTJitter       time.Duration `yaml:"sct_jitter"`
}

// Default returns the recommended configuration.
func Default() *Config {
	return &Config{
		QuantumMS:       DefaultQuantumMS,
		SecondsPerTest:  DefaultSecondsPerTest,
		BasePrio:        DefaultBasePrio,
		MinPrio:         DefaultMinPrio,
		EDFPeriodQuanta: DefaultEDFPeriodQuanta,
		SCTPeriodQuanta: DefaultSCTPeriodQuanta,
		EDFJitter:       DefaultEDFJitter,
		SCTJitter:       DefaultSCTJitter,
	}
}

// Quantum returns the calibration target as a time.Duration.
func (c *Config) Quantum() time.Duration {
	return time.Duration(c.QuantumMS) * time.Millisecond
}

// Budget returns the per-(policy,set) wall-clock run budget.
func (c *Config) Budget() time.Duration {
	return time.Duration(c.SecondsPerTest) * time.Second
}

// Load returns Default() overridden by path's YAML contents, if path is
// non-empty, followed by the HARNESS_CONFIG environment variable when path
// is empty — an explicit path argument always wins over the env var.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
