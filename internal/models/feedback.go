package models

// Polarity marks a judged document as relevant or irrelevant.
type Polarity string

const (
	PolarityRelevant   Polarity = "relevant"
	PolarityIrrelevant Polarity = "irrelevant"
)

// FeedbackItem is a single document judgment inside a feedback submission.
// DocID must refer to a document from the session's most recent result set.
type FeedbackItem struct {
	DocID    string   `json:"doc_id"`
	Polarity Polarity `json:"polarity"`
}
