package models

import (
	"encoding/json"
	"testing"
)

func TestMetadataRoundTripKeepsExtraKeys(t *testing.T) {
	in := []byte(`{"display_name":"Blue Denim Jacket","description":"classic fit","category":"jackets","brand":"acme","season":"fall"}`)
	var m Metadata
	if err := json.Unmarshal(in, &m); err != nil {
		t.Fatal(err)
	}
	if m.DisplayName != "Blue Denim Jacket" || m.Category != "jackets" {
		t.Errorf("typed fields not extracted: %+v", m)
	}
	if m.Extra["brand"] != "acme" || m.Extra["season"] != "fall" {
		t.Errorf("extra keys lost: %v", m.Extra)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]string
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"display_name", "description", "category", "brand", "season"} {
		if back[key] == "" {
			t.Errorf("key %q missing after round trip", key)
		}
	}
}

func TestMetadataUnmarshalNonStringValue(t *testing.T) {
	var m Metadata
	if err := json.Unmarshal([]byte(`{"description":"tee","price":19.5}`), &m); err != nil {
		t.Fatal(err)
	}
	if m.Description != "tee" {
		t.Errorf("description: got %q", m.Description)
	}
	if m.Extra["price"] != "19.5" {
		t.Errorf("non-string extra should keep raw text, got %q", m.Extra["price"])
	}
}

func TestMetadataIsZero(t *testing.T) {
	if !(Metadata{}).IsZero() {
		t.Error("empty metadata should be zero")
	}
	if (Metadata{Category: "shoes"}).IsZero() {
		t.Error("metadata with category should not be zero")
	}
}
