package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  base_url: https://api.openai.com/v1
  api_key: sk-test
  model: gpt-4o-mini
  timeout: 90s
pipeline:
  trust_threshold: 44
  default_brand: xaura
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "90s", cfg.LLM.Timeout)
	assert.Equal(t, 44, cfg.Pipeline.TrustThreshold)
	assert.Equal(t, DefaultChildAgeLimit, cfg.Pipeline.ChildAgeLimit)
	assert.Equal(t, "xaura", cfg.Pipeline.DefaultBrand)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1, cfg.Concurrency.QPS)
}

func TestApplyDefaults_APIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, DefaultTrustThreshold, cfg.Pipeline.TrustThreshold)
	assert.Equal(t, "output", cfg.Output.Dir)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
