package embedding

import "fmt"

// Service provides code fragment embedding with the model held for the
// lifetime of the service. Construct once, call many.
type Service struct {
	model EmbeddingModel
}

// NewService creates an embedding service for the named model. An empty name
// selects the registry default.
func NewService(name string, opts Options) (*Service, error) {
	if name == "" {
		name = DefaultRegistry.Default()
	}

	model, err := GetModel(name, opts)
	if err != nil {
		return nil, fmt.Errorf("get model %s: %w", name, err)
	}

	return &Service{model: model}, nil
}

// NewServiceWithModel wraps an already-loaded model.
func NewServiceWithModel(model EmbeddingModel) *Service {
	return &Service{model: model}
}

// Name returns the underlying model name.
func (s *Service) Name() string {
	return s.model.Name()
}

// Version returns the underlying model artifact version.
func (s *Service) Version() string {
	return s.model.Version()
}

// Dimensions returns the embedding vector size.
func (s *Service) Dimensions() int {
	return s.model.Dimensions()
}

// Embed generates an embedding for a single fragment.
func (s *Service) Embed(text string) ([]float32, error) {
	return s.model.Embed(text)
}

// EmbedBatch generates embeddings for multiple fragments in input order.
func (s *Service) EmbedBatch(texts []string) ([][]float32, error) {
	return s.model.EmbedBatch(texts)
}

// Close releases model resources.
func (s *Service) Close() error {
	return s.model.Close()
}
