// Package search provides the sessionless hybrid catalog search: keyword and
// semantic branches fused into one ranked list.
package search

import (
	"sort"

	"github.com/LeDaiKing/Wear-Search/internal/keyword"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
)

// FusedResult holds an item id and fused keyword/semantic scores.
type FusedResult struct {
	DocID         string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// NormalizeKeywordScores normalizes keyword scores to [0,1] by max.
func NormalizeKeywordScores(results []*keyword.KeywordResult) map[string]float64 {
	if len(results) == 0 {
		return make(map[string]float64)
	}
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	normalized := make(map[string]float64)
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ID] = r.Score / maxScore
		} else {
			normalized[r.ID] = 0
		}
	}
	return normalized
}

// SemanticScores maps retrieval hits to their cosine similarity, which is
// already in [0,1] for unit-norm embeddings.
func SemanticScores(results []*vector.Result) map[string]float64 {
	scores := make(map[string]float64, len(results))
	for _, r := range results {
		scores[r.DocID] = r.Similarity
	}
	return scores
}

// Fuse merges keyword and semantic score maps with weights and returns
// results sorted by fused score descending, ties broken by ascending item id
// so the ordering is deterministic.
func Fuse(keywordScores, semanticScores map[string]float64, keywordWeight, semanticWeight float64) []*FusedResult {
	scoreMap := make(map[string]*FusedResult)
	for id, score := range keywordScores {
		scoreMap[id] = &FusedResult{
			DocID:        id,
			KeywordScore: score,
		}
	}
	for id, score := range semanticScores {
		if result, exists := scoreMap[id]; exists {
			result.SemanticScore = score
		} else {
			scoreMap[id] = &FusedResult{
				DocID:         id,
				SemanticScore: score,
			}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, result := range scoreMap {
		result.Score = (keywordWeight * result.KeywordScore) + (semanticWeight * result.SemanticScore)
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results
}
