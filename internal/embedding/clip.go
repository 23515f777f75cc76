package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ClipEmbedder calls an external CLIP encoder service over HTTP.
// The service exposes POST {base}/embed/text accepting {"text": "..."} and
// POST {base}/embed/image accepting {"image": "<base64>"}, both returning
// {"embedding": [...]}. Embeddings leave this package unit length.
type ClipEmbedder struct {
	baseURL    string
	dimensions int
	client     *http.Client
	cache      *EmbeddingCache
}

// NewClipEmbedder creates a client for the encoder service at baseURL.
func NewClipEmbedder(baseURL string, dimensions, cacheSize int, timeout time.Duration) *ClipEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:8090"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClipEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
		cache:      NewEmbeddingCache(cacheSize),
	}
}

type embedTextRequest struct {
	Text string `json:"text"`
}

type embedImageRequest struct {
	Image string `json:"image"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedText returns the embedding for text, using the cache when available.
func (e *ClipEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := "t:" + text
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}
	emb, err := e.post(ctx, "/embed/text", embedTextRequest{Text: text})
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, emb)
	return emb, nil
}

// EmbedTextBatch calls EmbedText for each text.
func (e *ClipEmbedder) EmbedTextBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// EmbedImage returns the embedding for raw image bytes, cached by content hash.
func (e *ClipEmbedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}
	sum := sha256.Sum256(image)
	key := "i:" + hex.EncodeToString(sum[:])
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}
	payload := embedImageRequest{Image: base64.StdEncoding.EncodeToString(image)}
	emb, err := e.post(ctx, "/embed/image", payload)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, emb)
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *ClipEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for ClipEmbedder.
func (e *ClipEmbedder) Close() error {
	return nil
}

func (e *ClipEmbedder) post(ctx context.Context, path string, payload interface{}) ([]float32, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, unavailable("call encoder", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("call encoder", fmt.Errorf("status %d", resp.StatusCode))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, unavailable("decode encoder response", err)
	}
	if len(out.Embedding) == 0 {
		return nil, unavailable("decode encoder response", errors.New("empty embedding"))
	}
	if e.dimensions > 0 && len(out.Embedding) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(out.Embedding), e.dimensions)
	}
	NormalizeL2Slice(out.Embedding)
	return out.Embedding, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
