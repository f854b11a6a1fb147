package physics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "physics.yaml", `
backend: chipmunk
gravity:
  x: 0
  y: -25
fixed_time_step: 0.008
max_sub_steps: 4
iterations: 30
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ChipmunkBackend, cfg.Backend)
	assert.Equal(t, cp.Vector{Y: -25}, cfg.Gravity)
	assert.Equal(t, 0.008, cfg.FixedTimeStep)
	assert.Equal(t, 4, cfg.MaxSubSteps)
	assert.Equal(t, uint(30), cfg.Iterations)
}

func TestLoadConfigFillsDefaults(t *testing.T) {
	path := writeFile(t, "sparse.yaml", `
gravity:
  y: -5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	d := DefaultConfig()
	assert.Equal(t, d.Backend, cfg.Backend)
	assert.Equal(t, cp.Vector{Y: -5}, cfg.Gravity)
	assert.Equal(t, d.FixedTimeStep, cfg.FixedTimeStep)
	assert.Equal(t, d.MaxSubSteps, cfg.MaxSubSteps)
	assert.Equal(t, d.Iterations, cfg.Iterations)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, "broken.yaml", "backend: [not: valid")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
