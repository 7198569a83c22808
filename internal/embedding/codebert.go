package embedding

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// CodeBERTModelName is the default pretrained code embedding model.
	CodeBERTModelName = "codebert-base"

	// CodeBERTVersion identifies the exported model artifact generation.
	CodeBERTVersion = "1.0"

	// CodeBERTDim is the embedding dimension produced by codebert-base.
	CodeBERTDim = 768

	// DefaultMaxSequenceLength is the token window used when Options does
	// not specify one.
	DefaultMaxSequenceLength = 512

	modelFileName     = "model.onnx"
	tokenizerFileName = "tokenizer.json"
)

// codebertONNXConfig defines the ONNX configuration for codebert-base.
// CodeBERT is RoBERTa-based: two inputs, token-level output, CLS pooling.
var codebertONNXConfig = ONNXConfig{
	InputNames:  []string{"input_ids", "attention_mask"},
	OutputNames: []string{"last_hidden_state"},
	Pooling:     PoolingCLS,
	HiddenSize:  CodeBERTDim,
}

// codebertModel is the ONNX-based code embedding model implementation.
type codebertModel struct {
	tk      *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	maxSeq  int
	config  ONNXConfig
}

// Compile-time check that codebertModel implements EmbeddingModel
var _ EmbeddingModel = (*codebertModel)(nil)

// newCodeBERTModel loads codebert-base and its tokenizer from the configured
// model directory. Loading is expensive and happens exactly once per model
// instance; callers hold the instance for their whole lifetime.
func newCodeBERTModel(opts Options) (EmbeddingModel, error) {
	if opts.RuntimeLib != "" {
		ort.SetSharedLibraryPath(opts.RuntimeLib)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize ONNX runtime: %w", err)
		}
	}

	dir := filepath.Join(opts.ModelDir, CodeBERTModelName)

	tk, err := pretrained.FromFile(filepath.Join(dir, tokenizerFileName))
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	modelData, err := os.ReadFile(filepath.Join(dir, modelFileName))
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	config := codebertONNXConfig
	session, err := ort.NewDynamicAdvancedSessionWithONNXData(modelData, config.InputNames, config.OutputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("create ONNX session: %w", err)
	}

	maxSeq := opts.MaxSequence
	if maxSeq <= 0 {
		maxSeq = DefaultMaxSequenceLength
	}

	return &codebertModel{
		tk:      tk,
		session: session,
		maxSeq:  maxSeq,
		config:  config,
	}, nil
}

// Name returns the model name.
func (m *codebertModel) Name() string {
	return CodeBERTModelName
}

// Version returns the model artifact version.
func (m *codebertModel) Version() string {
	return CodeBERTVersion
}

// Dimensions returns the embedding vector size.
func (m *codebertModel) Dimensions() int {
	return m.config.HiddenSize
}

// Embed generates an embedding for a single code fragment.
func (m *codebertModel) Embed(text string) ([]float32, error) {
	results, err := m.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return make([]float32, m.config.HiddenSize), nil
	}
	return results[0], nil
}

// EmbedBatch generates embeddings for multiple fragments, one vector per
// fragment in input order. Empty fragments yield zero vectors.
func (m *codebertModel) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Filter out empty texts and track their original positions.
	nonEmpty := make([]string, 0, len(texts))
	indices := make([]int, 0, len(texts))
	for i, t := range texts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
			indices = append(indices, i)
		}
	}

	results := make([][]float32, len(texts))
	for i := range results {
		results[i] = make([]float32, m.config.HiddenSize)
	}
	if len(nonEmpty) == 0 {
		return results, nil
	}

	embeddings, err := m.computeBatch(nonEmpty)
	if err != nil {
		return nil, fmt.Errorf("compute batch embeddings: %w", err)
	}

	for i, idx := range indices {
		results[idx] = embeddings[i]
	}

	return results, nil
}

// computeBatch runs tokenization and inference. Must be called with lock held.
func (m *codebertModel) computeBatch(fragments []string) ([][]float32, error) {
	inputBatch := make([]tokenizer.EncodeInput, len(fragments))
	for i, frag := range fragments {
		inputBatch[i] = tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(frag))
	}

	encodings, err := m.tk.EncodeBatch(inputBatch, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	batchSize := len(encodings)
	hiddenSize := m.config.HiddenSize

	// The tokenizer may not pad uniformly; size the tensors to the longest
	// encoding, truncated to the model window.
	seqLength := 0
	for _, enc := range encodings {
		if len(enc.Ids) > seqLength {
			seqLength = len(enc.Ids)
		}
	}
	if seqLength > m.maxSeq {
		seqLength = m.maxSeq
	}

	inputShape := ort.NewShape(int64(batchSize), int64(seqLength))

	// Zero-filled tensors double as padding.
	inputIdsData := make([]int64, batchSize*seqLength)
	attentionMaskData := make([]int64, batchSize*seqLength)

	for b := 0; b < batchSize; b++ {
		copyLen := len(encodings[b].Ids)
		if copyLen > seqLength {
			copyLen = seqLength
		}
		for i := 0; i < copyLen; i++ {
			inputIdsData[b*seqLength+i] = int64(encodings[b].Ids[i])
		}

		copyLen = len(encodings[b].AttentionMask)
		if copyLen > seqLength {
			copyLen = seqLength
		}
		for i := 0; i < copyLen; i++ {
			attentionMaskData[b*seqLength+i] = int64(encodings[b].AttentionMask[i])
		}
	}

	inputIdsTensor, err := ort.NewTensor(inputShape, inputIdsData)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer inputIdsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(inputShape, attentionMaskData)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	// Token-level output: [batch, seq_len, hidden]
	outputShape := ort.NewShape(int64(batchSize), int64(seqLength), int64(hiddenSize))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	inputTensors := []ort.Value{inputIdsTensor, attentionMaskTensor}
	outputTensors := []ort.Value{outputTensor}

	if err := m.session.Run(inputTensors, outputTensors); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}

	flatOutput := outputTensor.GetData()

	switch m.config.Pooling {
	case PoolingCLS:
		return clsPooling(flatOutput, batchSize, seqLength, hiddenSize), nil
	case PoolingMean:
		return meanPooling(flatOutput, attentionMaskData, batchSize, seqLength, hiddenSize), nil
	default:
		return nil, fmt.Errorf("unknown pooling strategy: %s", m.config.Pooling)
	}
}

// clsPooling extracts the [CLS] token embedding (first token of each
// sequence), the original model's fragment representation.
// Input shape: [batch, seq_len, hidden]; output shape: [batch, hidden].
func clsPooling(embeddings []float32, batchSize, seqLen, hiddenSize int) [][]float32 {
	results := make([][]float32, batchSize)

	for b := 0; b < batchSize; b++ {
		result := make([]float32, hiddenSize)
		embOffset := b * seqLen * hiddenSize
		copy(result, embeddings[embOffset:embOffset+hiddenSize])
		results[b] = result
	}

	return results
}

// meanPooling applies mean pooling over token embeddings, weighted by
// attention mask. Kept for models whose exported graph lacks a pooler.
// Input shape: [batch, seq_len, hidden]; output shape: [batch, hidden].
func meanPooling(embeddings []float32, attentionMask []int64, batchSize, seqLen, hiddenSize int) [][]float32 {
	results := make([][]float32, batchSize)

	for b := 0; b < batchSize; b++ {
		result := make([]float32, hiddenSize)
		var maskSum float32

		for s := 0; s < seqLen; s++ {
			maskVal := float32(attentionMask[b*seqLen+s])
			maskSum += maskVal

			if maskVal > 0 {
				embOffset := (b*seqLen + s) * hiddenSize
				for h := 0; h < hiddenSize; h++ {
					result[h] += embeddings[embOffset+h] * maskVal
				}
			}
		}

		if maskSum > 0 {
			for h := 0; h < hiddenSize; h++ {
				result[h] /= maskSum
			}
		}

		results[b] = result
	}

	return results
}

// Close releases model resources.
func (m *codebertModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error

	if m.session != nil {
		if err := m.session.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("destroy session: %w", err))
		}
		m.session = nil
	}

	if err := ort.DestroyEnvironment(); err != nil {
		errs = append(errs, fmt.Errorf("destroy environment: %w", err))
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Register codebert-base with the default registry at init time.
func init() {
	RegisterModel(CodeBERTModelName, newCodeBERTModel)
}
