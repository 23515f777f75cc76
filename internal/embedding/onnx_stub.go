//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for the real
// implementation). The methods exist so both builds satisfy Embedder, but the
// constructor always fails.
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

func (e *ONNXEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("ONNX embedder not available in this build")
}

func (e *ONNXEmbedder) EmbedTextBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("ONNX embedder not available in this build")
}

func (e *ONNXEmbedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	return nil, errors.New("ONNX embedder not available in this build")
}

func (e *ONNXEmbedder) Dimensions() int {
	return 0
}

func (e *ONNXEmbedder) Close() error {
	return nil
}
