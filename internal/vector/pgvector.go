package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PgVectorGateway is a PostgreSQL retrieval backend using the pgvector
// extension. Queries run as exact scans ordered by cosine distance then id,
// so the same corpus and query always produce the same ordering. No ANN index
// is created; approximate indexes would break that.
type PgVectorGateway struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int
}

// NewPgVectorGateway connects to PostgreSQL and ensures the vector extension
// and the backing table exist.
func NewPgVectorGateway(ctx context.Context, dsn, table string, dimensions int) (*PgVectorGateway, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	g := &PgVectorGateway{
		pool:       pool,
		table:      table,
		dimensions: dimensions,
	}
	if err := g.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return g, nil
}

func (g *PgVectorGateway) ensureSchema(ctx context.Context) error {
	if _, err := g.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		embedding vector(%d) NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb
	)`, g.table, g.dimensions)
	if _, err := g.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", g.table, err)
	}
	return nil
}

// Query returns the top-k rows by cosine similarity. Cosine distance in
// pgvector is 1 - cosine_similarity, so similarity is recovered as
// 1 - (embedding <=> query).
func (g *PgVectorGateway) Query(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != g.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), g.dimensions)
	}
	if k <= 0 {
		return []*Result{}, nil
	}
	sql := fmt.Sprintf(`SELECT id, 1 - (embedding <=> $1) AS similarity, embedding, metadata
		FROM %s
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $2`, g.table)
	rows, err := g.pool.Query(ctx, sql, pgvector.NewVector(query), k)
	if err != nil {
		return nil, upstreamErr("query", err)
	}
	defer rows.Close()
	results := make([]*Result, 0, k)
	for rows.Next() {
		var (
			id        string
			sim       float64
			vec       pgvector.Vector
			metaBytes []byte
		)
		if err := rows.Scan(&id, &sim, &vec, &metaBytes); err != nil {
			return nil, upstreamErr("scan row", err)
		}
		var meta models.Metadata
		if len(metaBytes) > 0 {
			if err := json.Unmarshal(metaBytes, &meta); err != nil {
				return nil, upstreamErr("decode metadata", err)
			}
		}
		results = append(results, &Result{
			DocID:      id,
			Similarity: sim,
			Vector:     vec.Slice(),
			Metadata:   meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, upstreamErr("iterate rows", err)
	}
	return results, nil
}

// Sample returns up to n stored vectors in ascending id order.
func (g *PgVectorGateway) Sample(ctx context.Context, n int) ([][]float32, error) {
	if n <= 0 {
		return nil, nil
	}
	sql := fmt.Sprintf("SELECT embedding FROM %s ORDER BY id ASC LIMIT $1", g.table)
	rows, err := g.pool.Query(ctx, sql, n)
	if err != nil {
		return nil, upstreamErr("sample", err)
	}
	defer rows.Close()
	var out [][]float32
	for rows.Next() {
		var vec pgvector.Vector
		if err := rows.Scan(&vec); err != nil {
			return nil, upstreamErr("scan sample row", err)
		}
		out = append(out, vec.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, upstreamErr("iterate sample rows", err)
	}
	return out, nil
}

// Count returns the number of stored rows.
func (g *PgVectorGateway) Count(ctx context.Context) (int, error) {
	var count int
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", g.table)
	if err := g.pool.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, upstreamErr("count", err)
	}
	return count, nil
}

// Add upserts rows in a single batch.
func (g *PgVectorGateway) Add(ctx context.Context, ids []string, vectors [][]float32, metas []models.Metadata) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	if metas != nil && len(metas) != len(ids) {
		return fmt.Errorf("ids and metas length mismatch")
	}
	batch, err := g.upsertBatch(ids, vectors, metas)
	if err != nil {
		return err
	}
	if err := g.pool.SendBatch(ctx, batch).Close(); err != nil {
		return upstreamErr("add", err)
	}
	return nil
}

// Replace swaps the entire table contents in one transaction.
func (g *PgVectorGateway) Replace(ctx context.Context, ids []string, vectors [][]float32, metas []models.Metadata) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	if metas != nil && len(metas) != len(ids) {
		return fmt.Errorf("ids and metas length mismatch")
	}
	batch, err := g.upsertBatch(ids, vectors, metas)
	if err != nil {
		return err
	}
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return upstreamErr("begin replace", err)
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE %s", g.table)); err != nil {
		return upstreamErr("truncate", err)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return upstreamErr("replace", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return upstreamErr("commit replace", err)
	}
	return nil
}

func (g *PgVectorGateway) upsertBatch(ids []string, vectors [][]float32, metas []models.Metadata) (*pgx.Batch, error) {
	sql := fmt.Sprintf(`INSERT INTO %s (id, embedding, metadata) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`, g.table)
	batch := &pgx.Batch{}
	for i, id := range ids {
		if len(vectors[i]) != g.dimensions {
			return nil, fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), g.dimensions)
		}
		var meta models.Metadata
		if metas != nil {
			meta = metas[i]
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		batch.Queue(sql, id, pgvector.NewVector(vectors[i]), string(metaJSON))
	}
	return batch, nil
}

// Close releases the connection pool.
func (g *PgVectorGateway) Close() error {
	g.pool.Close()
	return nil
}
