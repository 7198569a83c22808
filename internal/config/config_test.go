package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, DefaultMaxSequenceLength, cfg.MaxSequence)
	assert.Equal(t, DefaultClusterEpsilon, cfg.ClusterEpsilon)
	assert.Equal(t, DefaultClusterMinPoints, cfg.ClusterMinPoints)
	assert.NotEmpty(t, cfg.ModelDir)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, Default().EmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, Default().ClusterEpsilon, cfg.ClusterEpsilon)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeTempConfig(t, "analyzer.json", `{
  "embedding_model": "codebert-base",
  "model_dir": "/opt/models",
  "cluster_epsilon": 0.5,
  "cluster_min_points": 4
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "codebert-base", cfg.EmbeddingModel)
	assert.Equal(t, "/opt/models", cfg.ModelDir)
	assert.Equal(t, 0.5, cfg.ClusterEpsilon)
	assert.Equal(t, 4, cfg.ClusterMinPoints)
	// Unset fields fall back to defaults.
	assert.Equal(t, DefaultMaxSequenceLength, cfg.MaxSequence)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeTempConfig(t, "analyzer.yaml", `
embedding_model: codebert-base
model_dir: /srv/models
max_sequence_length: 256
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/models", cfg.ModelDir)
	assert.Equal(t, 256, cfg.MaxSequence)
	assert.Equal(t, DefaultClusterEpsilon, cfg.ClusterEpsilon)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeTempConfig(t, "analyzer.json", `{not json`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REVIEW_AGENT_MODEL_DIR", "/env/models")
	t.Setenv("REVIEW_AGENT_CLUSTER_EPSILON", "0.7")
	t.Setenv("REVIEW_AGENT_CLUSTER_MIN_POINTS", "5")

	path := writeTempConfig(t, "analyzer.json", `{"model_dir": "/file/models"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment wins over the file.
	assert.Equal(t, "/env/models", cfg.ModelDir)
	assert.Equal(t, 0.7, cfg.ClusterEpsilon)
	assert.Equal(t, 5, cfg.ClusterMinPoints)
}

func TestLoad_EnvOverrideIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("REVIEW_AGENT_CLUSTER_MIN_POINTS", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultClusterMinPoints, cfg.ClusterMinPoints)
}
