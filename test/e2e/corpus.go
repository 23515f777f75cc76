// Package e2e exercises the full HTTP API over a seeded clothing catalog.
package e2e

import (
	"fmt"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// CatalogEntry is one item in the e2e catalog (id, filename, metadata).
type CatalogEntry struct {
	ID       string
	Filename string
	Metadata models.Metadata
}

// QueryTestCase defines a query and the item id(s) that must appear in the
// results. At least one of ExpectedDocIDs must be present in the returned page.
type QueryTestCase struct {
	Query          string
	ExpectedDocIDs []string
	Description    string
}

// Corpus holds catalog entries and query test cases for the e2e tests.
// TestCases drive the session search endpoint; KeywordCases drive the
// sessionless catalog search, where partial phrases match through the
// keyword index.
type Corpus struct {
	Entries      []CatalogEntry
	TestCases    []QueryTestCase
	KeywordCases []QueryTestCase
	TotalItems   int
	TotalQueries int
}

// BuildCorpus returns a catalog of 60 items with distinctive descriptions and
// query test cases. The deterministic embedder maps identical text to
// identical vectors, so a query equal to an item's description must rank that
// item first.
func BuildCorpus() *Corpus {
	entries := buildEntries(60)
	cases := buildQueryTestCases(entries)
	keywordCases := buildKeywordTestCases()
	return &Corpus{
		Entries:      entries,
		TestCases:    cases,
		KeywordCases: keywordCases,
		TotalItems:   len(entries),
		TotalQueries: len(cases) + len(keywordCases),
	}
}

type garment struct {
	slug        string
	name        string
	category    string
	description string
}

var garments = []garment{
	{"wool_coat", "Wool Overcoat", "Outerwear", "heavy wool winter overcoat with double breasted front"},
	{"down_jacket", "Down Puffer", "Outerwear", "quilted down puffer jacket with detachable hood"},
	{"denim_jacket", "Denim Jacket", "Outerwear", "faded blue denim trucker jacket with brass buttons"},
	{"trench", "Trench Coat", "Outerwear", "classic beige cotton trench coat with storm flap"},
	{"summer_dress", "Summer Dress", "Dresses", "light red floral summer dress with short sleeves"},
	{"evening_gown", "Evening Gown", "Dresses", "long black satin evening gown with open back"},
	{"wrap_dress", "Wrap Dress", "Dresses", "emerald green jersey wrap dress with tie waist"},
	{"shirt_dress", "Shirt Dress", "Dresses", "striped cotton shirt dress with button placket"},
	{"oxford_shirt", "Oxford Shirt", "Tops", "white oxford button down shirt with chest pocket"},
	{"linen_blouse", "Linen Blouse", "Tops", "airy ivory linen blouse with ruffled collar"},
	{"graphic_tee", "Graphic Tee", "Tops", "black graphic tee with vintage band print"},
	{"turtleneck", "Turtleneck", "Tops", "ribbed merino turtleneck sweater in charcoal"},
	{"slim_jeans", "Slim Jeans", "Bottoms", "dark indigo slim fit jeans with stretch denim"},
	{"chinos", "Chinos", "Bottoms", "khaki cotton chinos with tapered leg"},
	{"pleated_skirt", "Pleated Skirt", "Bottoms", "navy pleated midi skirt with elastic waistband"},
	{"cargo_pants", "Cargo Pants", "Bottoms", "olive cargo pants with side utility pockets"},
	{"ankle_boots", "Ankle Boots", "Footwear", "brown leather ankle boots with block heel"},
	{"running_shoes", "Running Shoes", "Footwear", "lightweight mesh running shoes with foam sole"},
	{"loafers", "Loafers", "Footwear", "polished leather penny loafers in oxblood"},
	{"sandals", "Sandals", "Footwear", "strappy tan leather sandals with ankle buckle"},
}

// buildEntries cycles the garment table, appending a colorway suffix to
// replica descriptions so every item keeps a unique signature text.
func buildEntries(n int) []CatalogEntry {
	entries := make([]CatalogEntry, 0, n)
	for i := 0; i < n; i++ {
		g := garments[i%len(garments)]
		replica := i / len(garments)
		desc := g.description
		if replica > 0 {
			desc = fmt.Sprintf("%s, colorway %d", g.description, replica)
		}
		filename := fmt.Sprintf("%s_%03d.jpg", g.slug, i+1)
		entries = append(entries, CatalogEntry{
			ID:       fmt.Sprintf("img_%s_%03d", g.slug, i+1),
			Filename: filename,
			Metadata: models.Metadata{
				DisplayName: g.name,
				Description: desc,
				Category:    g.category,
			},
		})
	}
	return entries
}

// buildQueryTestCases queries a sample of entries by their exact description;
// each must surface its own item.
func buildQueryTestCases(entries []CatalogEntry) []QueryTestCase {
	sample := []int{0, 4, 11, 16, 19}
	if len(entries) > len(garments) {
		// One replica case, to cover the colorway suffix.
		sample = append(sample, len(garments))
	}
	cases := make([]QueryTestCase, 0, len(sample))
	for _, i := range sample {
		if i >= len(entries) {
			continue
		}
		e := entries[i]
		cases = append(cases, QueryTestCase{
			Query:          e.Metadata.Description,
			ExpectedDocIDs: []string{e.ID},
			Description:    fmt.Sprintf("exact description finds %s", e.ID),
		})
	}
	return cases
}

// buildKeywordTestCases covers the hybrid catalog search with partial
// phrases that only the keyword branch can match.
func buildKeywordTestCases() []QueryTestCase {
	return []QueryTestCase{
		{
			Query:          "wool overcoat",
			ExpectedDocIDs: []string{"img_wool_coat_001", "img_wool_coat_021", "img_wool_coat_041"},
			Description:    "partial phrase finds the wool overcoat",
		},
		{
			Query:          "floral summer dress",
			ExpectedDocIDs: []string{"img_summer_dress_005", "img_summer_dress_025", "img_summer_dress_045"},
			Description:    "partial phrase finds the summer dress",
		},
		{
			Query:          "leather boots",
			ExpectedDocIDs: []string{"img_ankle_boots_017", "img_ankle_boots_037", "img_ankle_boots_057"},
			Description:    "material and type find the ankle boots",
		},
		{
			Query:          "turtleneck sweater",
			ExpectedDocIDs: []string{"img_turtleneck_012", "img_turtleneck_032", "img_turtleneck_052"},
			Description:    "garment type finds the turtleneck",
		},
	}
}
