// Package keyword provides the Bleve implementation of KeywordIndex.
package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// defaultFuzziness is the Levenshtein edit distance used when an exact match
// finds nothing.
const defaultFuzziness = 2

// itemDoc is the flat shape handed to Bleve; field names match the mapping.
type itemDoc struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused so re-seeding is incremental. If the mapping changes in
// code, remove the index directory to force a rebuild.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match
	// the exact word; near-misses like "dress" vs "dresses" are handled by
	// the fuzzy fallback instead of a stemmer.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("display_name", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	im.AddDocumentMapping("item", docMapping)
	im.DefaultType = "item"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes one item's metadata by id.
func (b *BleveIndex) Index(ctx context.Context, id string, meta models.Metadata) error {
	return b.index.Index(id, toDoc(meta))
}

// IndexBatch indexes many items in a single Bleve batch.
func (b *BleveIndex) IndexBatch(ctx context.Context, ids []string, metas []models.Metadata) error {
	if len(ids) != len(metas) {
		return fmt.Errorf("ids and metadata length mismatch: %d vs %d", len(ids), len(metas))
	}
	batch := b.index.NewBatch()
	for i, id := range ids {
		if err := batch.Index(id, toDoc(metas[i])); err != nil {
			return fmt.Errorf("failed to batch item %s: %w", id, err)
		}
	}
	return b.index.Batch(batch)
}

func toDoc(meta models.Metadata) itemDoc {
	return itemDoc{
		DisplayName: meta.DisplayName,
		Description: meta.Description,
		Category:    meta.Category,
	}
}

// Search runs a match query over display name, description, and category.
// When the exact match returns nothing, the query is retried with per-term
// fuzzy matching so small typos still find items.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	if limit <= 0 {
		limit = 10
	}
	hits, err := b.run(bleve.NewMatchQuery(query), limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return b.run(fuzzyQuery(query, defaultFuzziness), limit)
	}
	return hits, nil
}

func (b *BleveIndex) run(q blevequery.Query, limit int) ([]*KeywordResult, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// fuzzyQuery builds a disjunction of per-term FuzzyQueries so any term may
// match within the edit distance.
func fuzzyQuery(query string, fuzziness int) blevequery.Query {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return bleve.NewMatchQuery(query)
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes an item from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the total number of indexed items.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
