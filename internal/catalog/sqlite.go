package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/LeDaiKing/Wear-Search/internal/models"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		metadata TEXT,
		embedding BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Upsert inserts or replaces items in a single transaction.
func (s *SQLiteStore) Upsert(ctx context.Context, items []*Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO items (id, filename, metadata, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			metadata = excluded.metadata,
			embedding = excluded.embedding`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		metadataJSON, err := json.Marshal(item.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", item.ID, err)
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.Filename, string(metadataJSON),
			vector.Float32sToBytes(item.Embedding), item.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get returns an item by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, metadata, embedding, created_at
		 FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item not found: %s", id)
	}
	return item, err
}

// List returns items ordered by id with offset and limit.
func (s *SQLiteStore) List(ctx context.Context, offset, limit int) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, metadata, embedding, created_at
		 FROM items ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// All returns every item ordered by id, for filling the retrieval gateway at
// startup.
func (s *SQLiteStore) All(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, metadata, embedding, created_at
		 FROM items ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// Delete removes an item by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	return err
}

// Count returns the number of items.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var metadataJSON string
	var embedding []byte
	if err := row.Scan(&item.ID, &item.Filename, &metadataJSON, &embedding, &item.CreatedAt); err != nil {
		return nil, err
	}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &item.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	item.Embedding = vector.BytesToFloat32s(embedding)
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Vectors unpacks items into the parallel slices the retrieval gateway loads.
func Vectors(items []*Item) (ids []string, vecs [][]float32, metas []models.Metadata) {
	ids = make([]string, len(items))
	vecs = make([][]float32, len(items))
	metas = make([]models.Metadata, len(items))
	for i, item := range items {
		ids[i] = item.ID
		vecs[i] = item.Embedding
		metas[i] = item.Metadata
	}
	return ids, vecs, metas
}
