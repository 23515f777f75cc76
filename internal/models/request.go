package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateRequest checks the validation tags on a request struct and returns
// the first violation, if any.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

// TextSearchRequest starts a session from a text query.
type TextSearchRequest struct {
	Query string `json:"query" validate:"required,min=1,max=500"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=500"`
}

// RelevanceFeedbackRequest applies structured and/or text feedback to a session.
// A document listed in both PositiveIDs and NegativeIDs counts as negative
// (the later judgment wins).
type RelevanceFeedbackRequest struct {
	SessionID    string   `json:"session_id" validate:"required"`
	PositiveIDs  []string `json:"positive_ids" validate:"omitempty,dive,required"`
	NegativeIDs  []string `json:"negative_ids" validate:"omitempty,dive,required"`
	TextFeedback []string `json:"text_feedback" validate:"omitempty,dive,max=500"`
	TopK         int      `json:"top_k" validate:"omitempty,min=1,max=500"`
}

// PseudoFeedbackRequest applies blind relevance feedback: the top TopM results
// of the current iteration are treated as relevant.
type PseudoFeedbackRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TopM      int    `json:"top_m" validate:"omitempty,min=1,max=20"`
	TopK      int    `json:"top_k" validate:"omitempty,min=1,max=500"`
}

// ClearFeedbackRequest rewinds a session to its first iteration.
type ClearFeedbackRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Items converts the positive/negative id lists into ordered feedback items,
// positives first so that a duplicated id resolves to its negative judgment.
func (r *RelevanceFeedbackRequest) Items() []FeedbackItem {
	items := make([]FeedbackItem, 0, len(r.PositiveIDs)+len(r.NegativeIDs))
	for _, id := range r.PositiveIDs {
		items = append(items, FeedbackItem{DocID: id, Polarity: PolarityRelevant})
	}
	for _, id := range r.NegativeIDs {
		items = append(items, FeedbackItem{DocID: id, Polarity: PolarityIrrelevant})
	}
	return items
}
