// Package catalog persists the item corpus: ids, source filenames, metadata,
// and embeddings. Ingestion reads CSV or XLSX catalog files and encodes item
// descriptions.
package catalog

import (
	"context"
	"time"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// Item is one catalog entry. Embedding is the encoded item description.
type Item struct {
	ID        string
	Filename  string
	Metadata  models.Metadata
	Embedding []float32
	CreatedAt time.Time
}

// Store defines catalog persistence operations.
type Store interface {
	Upsert(ctx context.Context, items []*Item) error
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, offset, limit int) ([]*Item, error)
	All(ctx context.Context) ([]*Item, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	Close() error
}
