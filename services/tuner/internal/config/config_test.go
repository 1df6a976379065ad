package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("WORKSPACE_PASSWORD", "secret")
	t.Setenv("GITHUB_ACCESS_TOKEN", "gh-token")

	cfg, err := LoadConfig(writeConfig(t, "source:\n  repository: https://example.com/repo.git\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/repo.git", cfg.Source.Repository)
	assert.Equal(t, []string{"go", "python"}, cfg.Source.Languages)
	assert.Equal(t, 128, cfg.Dataset.BlockSize)
	assert.Equal(t, 0.1, cfg.Dataset.TestSize)
	assert.Equal(t, int64(42), cfg.Dataset.Seed)
	assert.Equal(t, "./workspace/checkpoints", cfg.Training.OutputDir)
	assert.Equal(t, DefaultTemplate, cfg.Extractor.Template)
	assert.Equal(t, "0.0.0.0:8888", cfg.Server.Address)
	assert.Equal(t, "secret", cfg.Server.Password)
	assert.Equal(t, "gh-token", cfg.Github.AccessToken)
}

func TestLoadConfig_FileOverridesEnv(t *testing.T) {
	t.Setenv("GITHUB_ACCESS_TOKEN", "from-env")

	cfg, err := LoadConfig(writeConfig(t, `
github:
  access_token: from-file
dataset:
  block_size: 32
  mask_padding: true
training:
  epochs: 1
  output_dir: /tmp/out
`))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Github.AccessToken)
	assert.Equal(t, 32, cfg.Dataset.BlockSize)
	assert.True(t, cfg.Dataset.MaskPadding)
	assert.Equal(t, 1, cfg.Training.Epochs)
	assert.Equal(t, "/tmp/out", cfg.Training.OutputDir)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
