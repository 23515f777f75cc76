// Package embedding provides query encoders: an HTTP client for an external
// CLIP service, a deterministic mock, an optional local ONNX text model, and
// an LRU cache shared by all of them.
package embedding

import (
	"context"
	"errors"
	"math"
)

// ErrUnavailable indicates the encoder backend cannot be reached or does not
// support the requested modality.
var ErrUnavailable = errors.New("embedding service unavailable")

// Embedder produces vector embeddings for text and images.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTextBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)
	Dimensions() int
	Close() error
}

// NormalizeL2Slice normalizes the slice in place to unit L2 norm.
func NormalizeL2Slice(x []float32) {
	var sum float32
	for _, v := range x {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range x {
		x[i] *= norm
	}
}
