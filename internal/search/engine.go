package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LeDaiKing/Wear-Search/internal/catalog"
	"github.com/LeDaiKing/Wear-Search/internal/config"
	"github.com/LeDaiKing/Wear-Search/internal/embedding"
	"github.com/LeDaiKing/Wear-Search/internal/keyword"
	"github.com/LeDaiKing/Wear-Search/internal/models"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
)

// Engine runs hybrid (keyword + semantic) catalog search. It is sessionless:
// one-shot lookups that never touch the feedback loop.
type Engine struct {
	embedder     embedding.Embedder
	gateway      vector.Gateway
	keywordIndex keyword.KeywordIndex
	catalog      catalog.Store
	cfg          *config.SearchConfig
	logger       *zap.Logger
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(
	embedder embedding.Embedder,
	gateway vector.Gateway,
	keywordIndex keyword.KeywordIndex,
	store catalog.Store,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		embedder:     embedder,
		gateway:      gateway,
		keywordIndex: keywordIndex,
		catalog:      store,
		cfg:          cfg,
		logger:       logger,
	}
}

// Search runs the keyword and semantic branches in parallel and fuses the
// scores. A branch whose configured weight is zero is skipped entirely.
func (e *Engine) Search(ctx context.Context, query string, limit int) (*models.CatalogSearchResponse, error) {
	startTime := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit <= 0 {
		limit = e.cfg.DefaultTopK
	}
	if limit > e.cfg.MaxTopK {
		limit = e.cfg.MaxTopK
	}
	// Fetch more candidates than requested so fusion has overlap to rank.
	candidates := limit * 2
	if candidates < 50 {
		candidates = 50
	}

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []*vector.Result
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	if e.cfg.KeywordWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := e.keywordIndex.Search(ctx, query, candidates)
			if err != nil {
				errChan <- fmt.Errorf("keyword search failed: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	if e.cfg.SemanticWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queryEmbedding, err := e.embedder.EmbedText(ctx, query)
			if err != nil {
				errChan <- fmt.Errorf("embedding failed: %w", err)
				return
			}
			results, err := e.gateway.Query(ctx, queryEmbedding, candidates)
			if err != nil {
				errChan <- fmt.Errorf("vector search failed: %w", err)
				return
			}
			semanticResults = results
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	fused := Fuse(
		NormalizeKeywordScores(keywordResults),
		SemanticScores(semanticResults),
		e.cfg.KeywordWeight, e.cfg.SemanticWeight,
	)
	total := len(fused)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	// Semantic hits already carry metadata; keyword-only hits need a catalog
	// lookup.
	metaByID := make(map[string]models.Metadata, len(semanticResults))
	for _, r := range semanticResults {
		metaByID[r.DocID] = r.Metadata
	}

	response := &models.CatalogSearchResponse{
		Query:   query,
		Results: make([]models.CatalogResult, 0, len(fused)),
		Total:   total,
	}
	for _, f := range fused {
		meta, ok := metaByID[f.DocID]
		if !ok {
			item, err := e.catalog.Get(ctx, f.DocID)
			if err != nil {
				e.logger.Warn("catalog item missing for keyword hit", zap.String("doc_id", f.DocID))
				continue
			}
			meta = item.Metadata
		}
		response.Results = append(response.Results, models.CatalogResult{
			DocID:         f.DocID,
			Score:         f.Score,
			KeywordScore:  f.KeywordScore,
			SemanticScore: f.SemanticScore,
			Metadata:      meta,
		})
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}
