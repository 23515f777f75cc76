// Package vector provides an in-memory retrieval backend for tests and small catalogs.
package vector

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// MemoryGateway is an in-memory retrieval backend using brute-force cosine
// search. Results are fully ordered: descending similarity, ties broken by
// ascending doc id.
type MemoryGateway struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	metas      []models.Metadata
	pos        map[string]int
	mu         sync.RWMutex
}

// NewMemoryGateway creates an in-memory gateway with the given dimension.
func NewMemoryGateway(dimensions int) (*MemoryGateway, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryGateway{
		dimensions: dimensions,
		ids:        make([]string, 0),
		vectors:    make([][]float32, 0),
		metas:      make([]models.Metadata, 0),
		pos:        make(map[string]int),
	}, nil
}

// Add upserts vectors with the given ids. An existing id has its vector and
// metadata replaced in place.
func (g *MemoryGateway) Add(ctx context.Context, ids []string, vectors [][]float32, metas []models.Metadata) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	if metas != nil && len(metas) != len(ids) {
		return fmt.Errorf("ids and metas length mismatch")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != g.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), g.dimensions)
		}
		vec := make([]float32, g.dimensions)
		copy(vec, vectors[i])
		var meta models.Metadata
		if metas != nil {
			meta = metas[i]
		}
		if at, ok := g.pos[id]; ok {
			g.vectors[at] = vec
			g.metas[at] = meta
			continue
		}
		g.pos[id] = len(g.ids)
		g.ids = append(g.ids, id)
		g.vectors = append(g.vectors, vec)
		g.metas = append(g.metas, meta)
	}
	return nil
}

// Replace swaps the entire gateway contents.
func (g *MemoryGateway) Replace(ctx context.Context, ids []string, vectors [][]float32, metas []models.Metadata) error {
	fresh, err := NewMemoryGateway(g.dimensions)
	if err != nil {
		return err
	}
	if err := fresh.Add(ctx, ids, vectors, metas); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = fresh.ids
	g.vectors = fresh.vectors
	g.metas = fresh.metas
	g.pos = fresh.pos
	return nil
}

// Query returns the top-k hits by cosine similarity. An empty corpus yields an
// empty result set, not an error.
func (g *MemoryGateway) Query(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != g.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), g.dimensions)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if k <= 0 || len(g.ids) == 0 {
		return []*Result{}, nil
	}
	type scored struct {
		at    int
		score float64
	}
	scores := make([]scored, len(g.ids))
	for i, vec := range g.vectors {
		scores[i] = scored{at: i, score: CosineSimilarity(query, vec)}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return g.ids[scores[i].at] < g.ids[scores[j].at]
	})
	if k > len(scores) {
		k = len(scores)
	}
	results := make([]*Result, k)
	for i := 0; i < k; i++ {
		at := scores[i].at
		vec := make([]float32, g.dimensions)
		copy(vec, g.vectors[at])
		results[i] = &Result{
			DocID:      g.ids[at],
			Similarity: scores[i].score,
			Vector:     vec,
			Metadata:   g.metas[at],
		}
	}
	return results, nil
}

// Sample returns up to n stored vectors in ascending doc id order, so the
// sample is reproducible for a given corpus state.
func (g *MemoryGateway) Sample(ctx context.Context, n int) ([][]float32, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n <= 0 || len(g.ids) == 0 {
		return nil, nil
	}
	ordered := make([]string, len(g.ids))
	copy(ordered, g.ids)
	sort.Strings(ordered)
	if n > len(ordered) {
		n = len(ordered)
	}
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		at := g.pos[ordered[i]]
		vec := make([]float32, g.dimensions)
		copy(vec, g.vectors[at])
		out[i] = vec
	}
	return out, nil
}

// Count returns the number of stored vectors.
func (g *MemoryGateway) Count(ctx context.Context) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.ids), nil
}

// Save persists the gateway to path. Directory is created if needed.
// Format: dimension (4), n (4), then per entry: idLen (4), id bytes,
// metaLen (4), metadata JSON, vector (dimension*4 bytes).
func (g *MemoryGateway) Save(path string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(g.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(g.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range g.ids {
		metaJSON, err := json.Marshal(g.metas[i])
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		idBytes := []byte(id)
		if err := binary.Write(f, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := f.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(len(metaJSON))); err != nil {
			return fmt.Errorf("write metadata len: %w", err)
		}
		if _, err := f.Write(metaJSON); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
		if _, err := f.Write(Float32sToBytes(g.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads a snapshot from path and replaces the in-memory contents.
// Dimensions must match. A missing file is not an error; the gateway is
// unchanged.
func (g *MemoryGateway) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != g.dimensions {
		return fmt.Errorf("dimension mismatch: snapshot has %d, gateway expects %d", dim, g.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	ids := make([]string, 0, n)
	vectors := make([][]float32, 0, n)
	metas := make([]models.Metadata, 0, n)
	vecBuf := make([]byte, g.dimensions*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("read id len: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(f, idBytes); err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		var metaLen uint32
		if err := binary.Read(f, binary.LittleEndian, &metaLen); err != nil {
			return fmt.Errorf("read metadata len: %w", err)
		}
		metaBytes := make([]byte, metaLen)
		if _, err := io.ReadFull(f, metaBytes); err != nil {
			return fmt.Errorf("read metadata: %w", err)
		}
		var meta models.Metadata
		if metaLen > 0 {
			if err := json.Unmarshal(metaBytes, &meta); err != nil {
				return fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		ids = append(ids, string(idBytes))
		vectors = append(vectors, BytesToFloat32s(vecBuf))
		metas = append(metas, meta)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = ids
	g.vectors = vectors
	g.metas = metas
	g.pos = make(map[string]int, len(ids))
	for i, id := range ids {
		g.pos[id] = i
	}
	return nil
}

// Close is a no-op for MemoryGateway.
func (g *MemoryGateway) Close() error {
	return nil
}

// Float32sToBytes encodes a float32 slice as little-endian bytes. Also used by
// the catalog store for embedding columns.
func Float32sToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

// BytesToFloat32s decodes little-endian bytes into a float32 slice.
func BytesToFloat32s(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
