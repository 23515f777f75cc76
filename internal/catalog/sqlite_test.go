package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

func TestSQLiteStore_CRUD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	items := []*Item{
		{
			ID:       "img_coat_001",
			Filename: "coat_001.jpg",
			Metadata: models.Metadata{
				DisplayName: "Wool Coat",
				Description: "A long wool coat",
				Category:    "Outerwear",
				Extra:       map[string]string{"color": "navy"},
			},
			Embedding: []float32{0.1, 0.2, 0.3, 0.4},
		},
		{
			ID:        "img_dress_002",
			Filename:  "dress_002.jpg",
			Metadata:  models.Metadata{DisplayName: "Summer Dress", Category: "Dresses"},
			Embedding: []float32{0.5, 0.6, 0.7, 0.8},
		},
	}
	if err := store.Upsert(ctx, items); err != nil {
		t.Fatal(err)
	}
	if items[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.Get(ctx, "img_coat_001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "coat_001.jpg" || got.Metadata.DisplayName != "Wool Coat" {
		t.Errorf("got %+v", got)
	}
	if got.Metadata.Extra["color"] != "navy" {
		t.Errorf("extra metadata lost: %+v", got.Metadata.Extra)
	}
	if len(got.Embedding) != 4 || got.Embedding[2] != 0.3 {
		t.Errorf("embedding round-trip failed: %v", got.Embedding)
	}

	// Upserting the same id replaces, not duplicates.
	items[0].Metadata.Category = "Coats"
	if err := store.Upsert(ctx, items[:1]); err != nil {
		t.Fatal(err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 items after upsert, got %d", n)
	}
	got, _ = store.Get(ctx, "img_coat_001")
	if got.Metadata.Category != "Coats" {
		t.Errorf("expected updated category, got %s", got.Metadata.Category)
	}

	list, err := store.List(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "img_coat_001" || list[1].ID != "img_dress_002" {
		t.Errorf("expected id-ordered list, got %d items", len(list))
	}

	if err := store.Delete(ctx, "img_coat_001"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "img_coat_001"); err == nil {
		t.Error("expected error after delete")
	}
}

func TestSQLiteStore_AllAndVectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	seed := []*Item{
		{ID: "img_b", Filename: "b.jpg", Embedding: []float32{0, 1}},
		{ID: "img_a", Filename: "a.jpg", Embedding: []float32{1, 0}, Metadata: models.Metadata{Category: "Tops"}},
	}
	if err := store.Upsert(ctx, seed); err != nil {
		t.Fatal(err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "img_a" || all[1].ID != "img_b" {
		t.Fatalf("expected id-ordered items, got %+v", all)
	}

	ids, vecs, metas := Vectors(all)
	if ids[0] != "img_a" || vecs[0][0] != 1 || metas[0].Category != "Tops" {
		t.Errorf("Vectors unpacked wrong: %v %v %+v", ids, vecs, metas)
	}
}
