package vector

import (
	"context"
	"fmt"
)

// IndexType selects the retrieval backend.
type IndexType string

const (
	// IndexTypeMemory uses in-memory brute-force search. Good for small catalogs (<10k items).
	IndexTypeMemory IndexType = "memory"
	// IndexTypePgVector uses PostgreSQL with the pgvector extension.
	IndexTypePgVector IndexType = "pgvector"
)

// NewGateway creates a retrieval gateway of the specified type.
// Supported types: "memory" (default), "pgvector".
func NewGateway(ctx context.Context, indexType, dsn, table string, dimensions int) (Gateway, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		return NewMemoryGateway(dimensions)
	case IndexTypePgVector:
		return NewPgVectorGateway(ctx, dsn, table, dimensions)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, pgvector)", indexType)
	}
}
