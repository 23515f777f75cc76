package models

import (
	"strings"
	"testing"
)

func TestTextSearchRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     TextSearchRequest
		wantErr bool
	}{
		{"valid", TextSearchRequest{Query: "red dress", TopK: 20}, false},
		{"empty query", TextSearchRequest{Query: ""}, true},
		{"query too long", TextSearchRequest{Query: strings.Repeat("x", 501)}, true},
		{"top_k zero uses default", TextSearchRequest{Query: "q"}, false},
		{"top_k over max", TextSearchRequest{Query: "q", TopK: 501}, true},
		{"top_k at max", TextSearchRequest{Query: "q", TopK: 500}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequest: err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestPseudoFeedbackRequestValidation(t *testing.T) {
	if err := ValidateRequest(PseudoFeedbackRequest{SessionID: "s", TopM: 5}); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	if err := ValidateRequest(PseudoFeedbackRequest{SessionID: "s", TopM: 21}); err == nil {
		t.Error("top_m above 20 should be rejected")
	}
	if err := ValidateRequest(PseudoFeedbackRequest{TopM: 5}); err == nil {
		t.Error("missing session_id should be rejected")
	}
}

func TestRelevanceFeedbackRequestItemsOrder(t *testing.T) {
	req := RelevanceFeedbackRequest{
		SessionID:   "s",
		PositiveIDs: []string{"a", "b"},
		NegativeIDs: []string{"b", "c"},
	}
	items := req.Items()
	if len(items) != 4 {
		t.Fatalf("items: got %d, want 4", len(items))
	}
	if items[0].Polarity != PolarityRelevant || items[3].Polarity != PolarityIrrelevant {
		t.Errorf("items not ordered positives-first: %+v", items)
	}
	// "b" appears twice; the negative judgment comes later in the list.
	last := items[len(items)-2]
	if last.DocID != "b" || last.Polarity != PolarityIrrelevant {
		t.Errorf("duplicate id should surface negative last: %+v", last)
	}
}
