// Package keyword provides keyword search over catalog item metadata.
package keyword

import (
	"context"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// KeywordIndex defines keyword search operations over item metadata.
type KeywordIndex interface {
	Index(ctx context.Context, id string, meta models.Metadata) error
	IndexBatch(ctx context.Context, ids []string, metas []models.Metadata) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	// DocCount returns the total number of indexed items.
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
