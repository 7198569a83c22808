// Package embedding provides code fragment embedding with swappable
// pretrained models.
package embedding

import (
	"fmt"
	"sync"
)

// PoolingStrategy defines how token embeddings collapse into one vector per
// fragment.
type PoolingStrategy string

const (
	// PoolingMean averages all token embeddings, weighted by attention mask.
	PoolingMean PoolingStrategy = "mean"
	// PoolingCLS uses only the leading [CLS] token embedding.
	PoolingCLS PoolingStrategy = "cls"
)

// ONNXConfig describes ONNX-specific model configuration so different models
// can declare their tensor names and pooling needs.
type ONNXConfig struct {
	// InputNames are the ONNX input tensor names in order.
	InputNames []string
	// OutputNames are the ONNX output tensor names.
	OutputNames []string
	// Pooling specifies how token embeddings become fragment embeddings.
	Pooling PoolingStrategy
	// HiddenSize is the embedding dimension.
	HiddenSize int
}

// Options configures how model artifacts are located and loaded.
type Options struct {
	// ModelDir is the directory holding one subdirectory per model name,
	// each with model.onnx and tokenizer.json.
	ModelDir string
	// RuntimeLib optionally points at the ONNX runtime shared library.
	RuntimeLib string
	// MaxSequence bounds tokenized fragments; longer inputs are truncated.
	MaxSequence int
}

// EmbeddingModel represents a pretrained code embedding model with its
// matching tokenizer.
type EmbeddingModel interface {
	// Name returns the model name (e.g., "codebert-base").
	Name() string

	// Version returns the model artifact version.
	Version() string

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// Embed generates an embedding for a single fragment.
	Embed(text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple fragments, one vector per
	// fragment in input order.
	EmbedBatch(texts []string) ([][]float32, error)

	// Close releases model resources.
	Close() error
}

// ModelFactory creates a new instance of an embedding model.
type ModelFactory func(opts Options) (EmbeddingModel, error)

// ModelRegistry provides model lookup by name, so models are loaded by name
// the way the wider agent configures them.
type ModelRegistry struct {
	mu           sync.RWMutex
	models       map[string]ModelFactory
	defaultModel string
}

// NewModelRegistry creates a new model registry.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{models: make(map[string]ModelFactory)}
}

// Register adds a model factory to the registry. The first registered model
// becomes the default.
func (r *ModelRegistry) Register(name string, factory ModelFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[name] = factory
	if r.defaultModel == "" {
		r.defaultModel = name
	}
}

// Get creates a new instance of the named model.
func (r *ModelRegistry) Get(name string, opts Options) (EmbeddingModel, error) {
	r.mu.RLock()
	factory, ok := r.models[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}

	return factory(opts)
}

// Default returns the default model name.
func (r *ModelRegistry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultModel
}

// DefaultRegistry is the global model registry with all available models.
var DefaultRegistry = NewModelRegistry()

// RegisterModel adds a model to the default registry.
func RegisterModel(name string, factory ModelFactory) {
	DefaultRegistry.Register(name, factory)
}

// GetModel creates a model instance from the default registry.
func GetModel(name string, opts Options) (EmbeddingModel, error) {
	return DefaultRegistry.Get(name, opts)
}
