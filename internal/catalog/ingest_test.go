package catalog

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/LeDaiKing/Wear-Search/internal/embedding"
)

func newTestIngestor(t *testing.T) (*Ingestor, *SQLiteStore) {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return NewIngestor(store, embedding.NewMockEmbedder(8), nil), store
}

func TestIngest_CSV(t *testing.T) {
	in, store := newTestIngestor(t)

	csv := strings.Join([]string{
		"image,description,Display Name,category,color",
		"coat_001.jpg,A long wool coat,Wool Coat,Outerwear,navy",
		"dress_002.jpg,,Summer Dress,,",
		",stray row without filename,,,",
		"shoes_003.jpg,Leather ankle boots,,Footwear,brown",
	}, "\n")
	path := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(path, []byte(csv), 0600); err != nil {
		t.Fatal(err)
	}

	items, err := in.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items (blank filename skipped), got %d", len(items))
	}

	if items[0].ID != "img_coat_001" || items[0].Filename != "coat_001.jpg" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Metadata.Extra["color"] != "navy" {
		t.Errorf("unknown column should land in Extra, got %+v", items[0].Metadata.Extra)
	}

	// Missing category falls back to Unknown, missing display name to the
	// filename.
	if items[1].Metadata.Category != "Unknown" {
		t.Errorf("expected category Unknown, got %s", items[1].Metadata.Category)
	}
	if items[2].Metadata.DisplayName != "shoes_003.jpg" {
		t.Errorf("expected filename as display name, got %s", items[2].Metadata.DisplayName)
	}

	for _, item := range items {
		var sum float64
		for _, v := range item.Embedding {
			sum += float64(v) * float64(v)
		}
		if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
			t.Errorf("%s: embedding not unit norm", item.ID)
		}
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 stored items, got %d", n)
	}
}

func TestIngest_XLSX(t *testing.T) {
	in, _ := newTestIngestor(t)

	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "image")
	f.SetCellValue("Sheet1", "B1", "description")
	f.SetCellValue("Sheet1", "C1", "display name")
	f.SetCellValue("Sheet1", "D1", "category")
	f.SetCellValue("Sheet1", "A2", "skirt_100.jpg")
	f.SetCellValue("Sheet1", "B2", "Pleated midi skirt")
	f.SetCellValue("Sheet1", "C2", "Midi Skirt")
	f.SetCellValue("Sheet1", "D2", "Skirts")
	path := filepath.Join(t.TempDir(), "items.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	items, err := in.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ID != "img_skirt_100" || items[0].Metadata.DisplayName != "Midi Skirt" {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestIngest_Errors(t *testing.T) {
	in, _ := newTestIngestor(t)
	ctx := context.Background()

	if _, err := in.Ingest(ctx, "/nonexistent/items.csv"); err == nil {
		t.Error("expected error for missing file")
	}

	badExt := filepath.Join(t.TempDir(), "items.txt")
	if err := os.WriteFile(badExt, []byte("image\na.jpg"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := in.Ingest(ctx, badExt); err == nil {
		t.Error("expected error for unsupported format")
	}

	headerOnly := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(headerOnly, []byte("image,description\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := in.Ingest(ctx, headerOnly); err == nil {
		t.Error("expected error for catalog with no rows")
	}

	noFileCol := filepath.Join(t.TempDir(), "nofile.csv")
	if err := os.WriteFile(noFileCol, []byte("description,category\nplain,Tops\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := in.Ingest(ctx, noFileCol); err == nil {
		t.Error("expected error when no filename column exists")
	}
}
