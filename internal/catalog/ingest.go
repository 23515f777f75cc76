package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/LeDaiKing/Wear-Search/internal/embedding"
	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// encodeBatchSize bounds how many descriptions go to the encoder at once.
const encodeBatchSize = 50

// Ingestor reads catalog files, encodes item descriptions, and fills the
// store.
type Ingestor struct {
	store    Store
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewIngestor creates an ingestor writing to store and encoding through
// embedder.
func NewIngestor(store Store, embedder embedding.Embedder, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{store: store, embedder: embedder, logger: logger}
}

// Ingest reads the catalog file at path (.csv or .xlsx), encodes each item's
// description, and upserts the items into the store. The ingested items are
// returned so callers can fill the retrieval gateway and keyword index from
// the same pass.
func (in *Ingestor) Ingest(ctx context.Context, path string) ([]*Item, error) {
	var records []record
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s (supported: .csv, .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog file %s has no item rows", filepath.Base(path))
	}

	items := make([]*Item, 0, len(records))
	for start := 0; start < len(records); start += encodeBatchSize {
		end := start + encodeBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.embedText()
		}
		vecs, err := in.embedder.EmbedTextBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to encode batch starting at row %d: %w", start+1, err)
		}
		for i, rec := range batch {
			items = append(items, &Item{
				ID:        rec.id(),
				Filename:  rec.filename,
				Metadata:  rec.metadata(),
				Embedding: vecs[i],
			})
		}
		in.logger.Info("catalog batch encoded",
			zap.Int("done", len(items)),
			zap.Int("total", len(records)))
	}

	if err := in.store.Upsert(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to store catalog items: %w", err)
	}
	in.logger.Info("catalog ingested",
		zap.String("source", filepath.Base(path)),
		zap.Int("items", len(items)))
	return items, nil
}

// record is one parsed catalog row before encoding.
type record struct {
	filename    string
	displayName string
	description string
	category    string
	extra       map[string]string
}

// id derives the item id from the filename stem.
func (r record) id() string {
	base := filepath.Base(r.filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return "img_" + stem
}

// metadata applies the catalog fallbacks: display name defaults to the
// filename, category to "Unknown".
func (r record) metadata() models.Metadata {
	m := models.Metadata{
		DisplayName: r.displayName,
		Description: r.description,
		Category:    r.category,
		Extra:       r.extra,
	}
	if m.DisplayName == "" {
		m.DisplayName = r.filename
	}
	if m.Category == "" {
		m.Category = "Unknown"
	}
	return m
}

// embedText is the text the encoder sees for this item.
func (r record) embedText() string {
	if r.description != "" {
		return r.description
	}
	if r.displayName != "" {
		return r.displayName
	}
	return r.filename
}

func readCSV(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return parseRows(rows, filepath.Base(path))
}

func readXLSX(path string) ([]record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows, filepath.Base(path))
}

// normalizeHeader folds header spellings so "Display Name", "display name"
// and "display_name" select the same column.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func parseRows(rows [][]string, source string) ([]record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header row", source)
	}
	headers := make([]string, len(rows[0]))
	fileCol := -1
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
		switch headers[i] {
		case "image", "filename", "file":
			fileCol = i
		}
	}
	if fileCol < 0 {
		return nil, fmt.Errorf("%s: no image/filename column in header %v", source, rows[0])
	}

	var records []record
	for _, row := range rows[1:] {
		var rec record
		for i, cell := range row {
			if i >= len(headers) {
				break
			}
			val := strings.TrimSpace(cell)
			if val == "" {
				continue
			}
			switch headers[i] {
			case "image", "filename", "file":
				rec.filename = val
			case "description", "desc":
				rec.description = val
			case "display_name", "name", "title":
				rec.displayName = val
			case "category":
				rec.category = val
			default:
				if rec.extra == nil {
					rec.extra = make(map[string]string)
				}
				rec.extra[headers[i]] = val
			}
		}
		// Rows without a filename cannot be addressed and are skipped.
		if rec.filename == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
