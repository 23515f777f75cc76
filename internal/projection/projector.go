package projection

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/LeDaiKing/Wear-Search/internal/vector"
)

// Projector hands out projection bases and caches the projected corpus
// background. One global basis is fitted lazily from a gateway sample and
// shared by every session created while the corpus is non-empty; sessions
// born on an empty corpus anchor a private basis on their first query vector.
type Projector struct {
	gateway    vector.Gateway
	sampleSize int
	logger     *zap.Logger

	mu     sync.Mutex
	global *Basis
	corpus map[int][]Point
}

// NewProjector creates a projector over the given gateway. sampleSize bounds
// the corpus sample used for basis fitting.
func NewProjector(gateway vector.Gateway, sampleSize int, logger *zap.Logger) *Projector {
	if sampleSize <= 0 {
		sampleSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		gateway:    gateway,
		sampleSize: sampleSize,
		logger:     logger,
		corpus:     make(map[int][]Point),
	}
}

// SessionBasis returns the basis a new session should adopt: the shared
// corpus-fitted basis when the corpus has vectors, otherwise a basis anchored
// on the session's first query vector. A sampling failure also falls back to
// the query anchor so session creation never fails on a display concern.
func (p *Projector) SessionBasis(ctx context.Context, first []float32) (*Basis, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.global != nil {
		return p.global, nil
	}
	sample, err := p.gateway.Sample(ctx, p.sampleSize)
	if err != nil {
		p.logger.Warn("corpus sample failed, anchoring basis on query", zap.Error(err))
		return BasisFromVector(first)
	}
	if len(sample) == 0 {
		return BasisFromVector(first)
	}
	basis, err := FitBasis(sample)
	if err != nil {
		p.logger.Warn("basis fit failed, anchoring on query", zap.Error(err))
		return BasisFromVector(first)
	}
	p.global = basis
	p.logger.Info("projection basis fitted",
		zap.Int("sample_size", len(sample)),
		zap.Int("dimensions", basis.Dimensions()))
	return basis, nil
}

// CorpusSample projects a deterministic corpus sample through the shared
// basis as display background. The projection is computed once per sample
// size and cached, so repeated reads are bit-identical. An empty corpus
// yields no background and no error.
func (p *Projector) CorpusSample(ctx context.Context, size int) ([]Point, error) {
	if size <= 0 {
		size = p.sampleSize
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if pts, ok := p.corpus[size]; ok {
		return pts, nil
	}
	sample, err := p.gateway.Sample(ctx, size)
	if err != nil {
		return nil, err
	}
	if len(sample) == 0 {
		return nil, nil
	}
	basis := p.global
	if basis == nil {
		basis, err = FitBasis(sample)
		if err != nil {
			return nil, err
		}
		p.global = basis
	}
	pts := make([]Point, len(sample))
	for i, v := range sample {
		pts[i] = basis.Project(v)
	}
	p.corpus[size] = pts
	return pts, nil
}

// InvalidateCorpus drops the cached background projections, for use after the
// catalog is re-ingested. The fitted basis is kept: live sessions must keep
// projecting through the axes they started with.
func (p *Projector) InvalidateCorpus() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.corpus = make(map[int][]Point)
}
