// Package vector provides the retrieval gateway contract and its adapters.
package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// ErrUpstreamUnavailable marks retrieval backend failures (connection loss,
// timeouts, backend errors). Callers may retry; the engine itself never does.
var ErrUpstreamUnavailable = errors.New("retrieval backend unavailable")

// Result is a single retrieval hit. The stored vector is carried along so
// later feedback rounds can use it without another backend fetch.
type Result struct {
	DocID      string
	Similarity float64
	Vector     []float32
	Metadata   models.Metadata
}

// Gateway is the narrow retrieval contract the session engine depends on.
// Query returns results ordered by descending similarity with ties broken by
// ascending doc id, so the full ordering is deterministic. Sample returns a
// deterministic corpus sample (ascending doc id) for projection fitting.
type Gateway interface {
	Query(ctx context.Context, query []float32, k int) ([]*Result, error)
	Sample(ctx context.Context, n int) ([][]float32, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Writer is the ingestion side of a backend, used by seeding and catalog
// reload. Add upserts by id; Replace swaps the entire contents.
type Writer interface {
	Add(ctx context.Context, ids []string, vectors [][]float32, metas []models.Metadata) error
	Replace(ctx context.Context, ids []string, vectors [][]float32, metas []models.Metadata) error
}

func upstreamErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUpstreamUnavailable, err)
}
