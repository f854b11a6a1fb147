package physics

import (
	"fmt"
	"os"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

// Config tunes the simulation and selects the backend.
type Config struct {
	Backend       string    `yaml:"backend"`
	Gravity       cp.Vector `yaml:"gravity"`
	FixedTimeStep float64   `yaml:"fixed_time_step"`
	MaxSubSteps   int       `yaml:"max_sub_steps"`
	Iterations    uint      `yaml:"iterations"`
}

// DefaultConfig returns the tuning used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Backend:       ChipmunkBackend,
		Gravity:       cp.Vector{X: 0, Y: -9.8},
		FixedTimeStep: 1.0 / 60.0,
		MaxSubSteps:   10,
		Iterations:    10,
	}
}

// LoadConfig reads a YAML config file, filling omitted fields with
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("physics: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("physics: parse config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.FixedTimeStep <= 0 {
		c.FixedTimeStep = d.FixedTimeStep
	}
	if c.MaxSubSteps <= 0 {
		c.MaxSubSteps = d.MaxSubSteps
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	return c
}
