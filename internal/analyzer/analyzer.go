// Package analyzer ties structural extraction, embedding generation, and
// density-based clustering into the code pattern analysis pipeline.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tiktoken "github.com/tiktoken-go/tokenizer"

	"github.com/saksham-jain177/github-review-agent/internal/config"
	"github.com/saksham-jain177/github-review-agent/internal/embedding"
	"github.com/saksham-jain177/github-review-agent/internal/extraction"
	"github.com/saksham-jain177/github-review-agent/pkg/models"
	"github.com/saksham-jain177/github-review-agent/pkg/similarity"
)

// Analyzer surfaces recurring structural patterns and semantically similar
// code fragments. The embedding model is acquired once at construction and
// held for the analyzer's lifetime.
type Analyzer struct {
	cfg       *config.Config
	log       zerolog.Logger
	model     embedding.EmbeddingModel
	extractor *extraction.Extractor
	counter   tiktoken.Codec
	ownsModel bool
}

// New creates an analyzer, loading the configured embedding model. Model
// initialization failures are reported as pattern analysis failures with the
// original cause preserved.
func New(cfg *config.Config, logger zerolog.Logger) (*Analyzer, error) {
	svc, err := embedding.NewService(cfg.EmbeddingModel, embedding.Options{
		ModelDir:    cfg.ModelDir,
		RuntimeLib:  cfg.ONNXRuntimeLib,
		MaxSequence: cfg.MaxSequence,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: model initialization: %w", ErrPatternAnalysis, err)
	}

	a := NewWithModel(cfg, logger, svc)
	a.ownsModel = true
	return a, nil
}

// NewWithModel creates an analyzer around an already-loaded embedding model.
// The caller keeps ownership of the model; Close will not release it.
func NewWithModel(cfg *config.Config, logger zerolog.Logger, model embedding.EmbeddingModel) *Analyzer {
	a := &Analyzer{
		cfg:       cfg,
		log:       logger,
		model:     model,
		extractor: extraction.NewExtractor(),
	}

	// Token counting is advisory only; the analyzer works without it.
	if codec, err := tiktoken.Get(tiktoken.Cl100kBase); err == nil {
		a.counter = codec
	} else {
		logger.Warn().Err(err).Msg("Token counter unavailable, skipping fragment size checks")
	}

	return a
}

// ExtractPatterns walks the parsed source files in order and returns one
// record per class, method, module-level function, and decorated function.
func (a *Analyzer) ExtractPatterns(files []extraction.SourceFile) []models.PatternRecord {
	records := a.extractor.Extract(files)

	a.log.Debug().
		Int("files", len(files)).
		Int("patterns", len(records)).
		Msg("Structural pattern extraction completed")

	return records
}

// AnalyzeFragments embeds the code fragments, clusters the vectors, and
// returns one summary per non-noise cluster, ordered by cluster id. Any
// embedding or clustering failure aborts the whole call.
func (a *Analyzer) AnalyzeFragments(fragments []string) ([]models.ClusterSummary, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	logger := a.log.With().Str("run_id", uuid.NewString()).Logger()

	a.warnOversized(logger, fragments)

	vectors, err := a.model.EmbedBatch(fragments)
	if err != nil {
		return nil, fmt.Errorf("%w: generate embeddings: %w", ErrPatternAnalysis, err)
	}

	if err := checkDimensions(vectors, a.model.Dimensions()); err != nil {
		return nil, fmt.Errorf("%w: cluster patterns: %w", ErrPatternAnalysis, err)
	}

	labels := similarity.DBSCAN(vectors, a.cfg.ClusterEpsilon, a.cfg.ClusterMinPoints, nil)
	summaries := summarizeClusters(labels, fragments)

	logger.Info().
		Int("fragments", len(fragments)).
		Int("clusters", len(summaries)).
		Msg("Identified pattern clusters")

	return summaries, nil
}

// Close releases the embedding model when the analyzer owns it.
func (a *Analyzer) Close() error {
	if !a.ownsModel {
		return nil
	}
	return a.model.Close()
}

// warnOversized logs fragments whose token count exceeds the model window.
// Such fragments are truncated during tokenization, not rejected.
func (a *Analyzer) warnOversized(logger zerolog.Logger, fragments []string) {
	if a.counter == nil {
		return
	}

	oversized := 0
	for _, frag := range fragments {
		ids, _, err := a.counter.Encode(frag)
		if err == nil && len(ids) > a.cfg.MaxSequence {
			oversized++
		}
	}

	if oversized > 0 {
		logger.Warn().
			Int("oversized", oversized).
			Int("max_sequence_length", a.cfg.MaxSequence).
			Msg("Fragments exceed the model window and will be truncated")
	}
}

// checkDimensions verifies positional alignment between fragments and their
// embedding vectors before clustering.
func checkDimensions(vectors [][]float32, expected int) error {
	for i, v := range vectors {
		if len(v) != expected {
			return fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), expected)
		}
	}
	return nil
}

// summarizeClusters groups fragments by cluster id, dropping noise points,
// and derives one summary per cluster: its size, up to three representative
// fragments in original order, and a heuristic keyword label.
func summarizeClusters(labels []int, fragments []string) []models.ClusterSummary {
	groups := make(map[int][]string)
	for i, id := range labels {
		if id == similarity.Noise {
			continue
		}
		groups[id] = append(groups[id], fragments[i])
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	summaries := make([]models.ClusterSummary, 0, len(ids))
	for _, id := range ids {
		group := groups[id]

		examples := group
		if len(examples) > models.MaxClusterExamples {
			examples = examples[:models.MaxClusterExamples]
		}

		summaries = append(summaries, models.ClusterSummary{
			ClusterID:   id,
			Frequency:   len(group),
			Examples:    examples,
			PatternType: models.ClassifyFragments(group),
		})
	}

	return summaries
}
