package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "codetrekking", cfg.Database.Name)
	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, 30*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 3, cfg.Planner.FanoutConcurrency)
	assert.Equal(t, 7, cfg.Planner.MaxBatch)
	assert.Equal(t, 3, cfg.Planner.RetryAttempts)
	assert.Equal(t, time.Second, cfg.Planner.BackoffBase)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	doc := `
server:
  address: ":9090"
generation:
  base_url: "http://llm.internal:8000"
  model: "llama-3.3-70b"
  timeout: "90s"
planner:
  fanout_concurrency: 5
  methodology: "80/20 polarized training"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(doc), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "http://llm.internal:8000", cfg.Generation.BaseURL)
	assert.Equal(t, "llama-3.3-70b", cfg.Generation.Model)
	assert.Equal(t, 90*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 5, cfg.Planner.FanoutConcurrency)
	assert.Equal(t, "80/20 polarized training", cfg.Planner.Methodology)
	// Untouched keys keep their defaults.
	assert.Equal(t, 7, cfg.Planner.MaxBatch)
}
