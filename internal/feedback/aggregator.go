// Package feedback validates and partitions one feedback submission into the
// inputs of a refinement round. Aggregation is pure: all validation happens
// here, before any vector math or retrieval runs.
package feedback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// ErrEmptyFeedback is returned when a submission carries no document
// judgments and no usable text.
var ErrEmptyFeedback = errors.New("feedback must contain at least one document or text entry")

// UnknownDocumentError reports a feedback doc id that is not part of the
// session's most recent result set.
type UnknownDocumentError struct {
	DocID string
}

func (e *UnknownDocumentError) Error() string {
	return fmt.Sprintf("unknown document in feedback: %s", e.DocID)
}

// Submission is one validated feedback batch, partitioned and ready for the
// refinement engine. Vectors alias the lookup they were resolved from.
type Submission struct {
	Relevant    [][]float32
	Irrelevant  [][]float32
	PositiveIDs []string
	NegativeIDs []string
	Text        string
}

// HasDocuments reports whether any document judgments survived aggregation.
func (s Submission) HasDocuments() bool {
	return len(s.PositiveIDs) > 0 || len(s.NegativeIDs) > 0
}

// HasText reports whether a non-blank refinement text survived aggregation.
func (s Submission) HasText() bool {
	return s.Text != ""
}

// Aggregate resolves, deduplicates and partitions one feedback batch.
//
// Every doc id must be present in lookup, the session's most recent result
// set. A doc id listed more than once keeps only its last occurrence, so a
// document marked both relevant and irrelevant in one batch resolves to
// whichever judgment came last. Output ids keep first-seen order. Text
// entries are trimmed, blanks dropped, and the rest joined with ", " into a
// single refinement string.
func Aggregate(items []models.FeedbackItem, texts []string, lookup map[string][]float32) (Submission, error) {
	polarity := make(map[string]models.Polarity, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := lookup[item.DocID]; !ok {
			return Submission{}, &UnknownDocumentError{DocID: item.DocID}
		}
		switch item.Polarity {
		case models.PolarityRelevant, models.PolarityIrrelevant:
		default:
			return Submission{}, fmt.Errorf("unknown polarity %q for document %s", item.Polarity, item.DocID)
		}
		if _, seen := polarity[item.DocID]; !seen {
			order = append(order, item.DocID)
		}
		polarity[item.DocID] = item.Polarity
	}

	var sub Submission
	for _, id := range order {
		if polarity[id] == models.PolarityRelevant {
			sub.PositiveIDs = append(sub.PositiveIDs, id)
			sub.Relevant = append(sub.Relevant, lookup[id])
		} else {
			sub.NegativeIDs = append(sub.NegativeIDs, id)
			sub.Irrelevant = append(sub.Irrelevant, lookup[id])
		}
	}

	entries := make([]string, 0, len(texts))
	for _, txt := range texts {
		txt = strings.TrimSpace(txt)
		if txt == "" {
			continue
		}
		entries = append(entries, txt)
	}
	sub.Text = strings.Join(entries, ", ")

	if !sub.HasDocuments() && !sub.HasText() {
		return Submission{}, ErrEmptyFeedback
	}
	return sub, nil
}
