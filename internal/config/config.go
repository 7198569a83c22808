// Package config provides configuration management for the pattern analyzer.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultEmbeddingModel is the embedding model used when none is configured.
	DefaultEmbeddingModel = "codebert-base"

	// DefaultMaxSequenceLength bounds tokenized fragments before embedding.
	DefaultMaxSequenceLength = 512

	// DefaultClusterEpsilon is the DBSCAN distance threshold.
	DefaultClusterEpsilon = 0.3

	// DefaultClusterMinPoints is the DBSCAN minimum group size.
	DefaultClusterMinPoints = 2
)

// Config holds the pattern analyzer configuration.
type Config struct {
	// Embedding settings
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"` // e.g., "codebert-base"
	ModelDir       string `json:"model_dir" yaml:"model_dir"`             // directory holding model.onnx and tokenizer.json per model
	ONNXRuntimeLib string `json:"onnx_runtime_lib" yaml:"onnx_runtime_lib"`
	MaxSequence    int    `json:"max_sequence_length" yaml:"max_sequence_length"`

	// Clustering settings
	ClusterEpsilon   float64 `json:"cluster_epsilon" yaml:"cluster_epsilon"`
	ClusterMinPoints int     `json:"cluster_min_points" yaml:"cluster_min_points"`
}

// DataDir returns the data directory path (~/.github-review-agent).
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".github-review-agent")
}

// SettingsPath returns the default settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "analyzer.json")
}

// ModelsDir returns the default directory for embedding model artifacts.
func ModelsDir() string {
	return filepath.Join(DataDir(), "models")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		EmbeddingModel:   DefaultEmbeddingModel,
		ModelDir:         ModelsDir(),
		MaxSequence:      DefaultMaxSequenceLength,
		ClusterEpsilon:   DefaultClusterEpsilon,
		ClusterMinPoints: DefaultClusterMinPoints,
	}
}

// Load loads configuration from path, merging with defaults and applying
// environment overrides. A missing file yields the defaults. JSON and YAML
// files are supported, chosen by extension. An empty path uses SettingsPath.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = SettingsPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	normalize(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// normalize backfills zero values with defaults after a partial file load.
func normalize(cfg *Config) {
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = ModelsDir()
	}
	if cfg.MaxSequence <= 0 {
		cfg.MaxSequence = DefaultMaxSequenceLength
	}
	if cfg.ClusterEpsilon <= 0 {
		cfg.ClusterEpsilon = DefaultClusterEpsilon
	}
	if cfg.ClusterMinPoints <= 0 {
		cfg.ClusterMinPoints = DefaultClusterMinPoints
	}
}

// applyEnvOverrides applies REVIEW_AGENT_* environment variables on top of cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REVIEW_AGENT_EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("REVIEW_AGENT_MODEL_DIR"); v != "" {
		cfg.ModelDir = v
	}
	if v := os.Getenv("REVIEW_AGENT_ONNX_RUNTIME_LIB"); v != "" {
		cfg.ONNXRuntimeLib = v
	}
	if v := os.Getenv("REVIEW_AGENT_MAX_SEQUENCE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSequence = n
		}
	}
	if v := os.Getenv("REVIEW_AGENT_CLUSTER_EPSILON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.ClusterEpsilon = f
		}
	}
	if v := os.Getenv("REVIEW_AGENT_CLUSTER_MIN_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ClusterMinPoints = n
		}
	}
}
