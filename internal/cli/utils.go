// Package cli provides CLI utilities for WearSearch.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LeDaiKing/Wear-Search/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact is one result per line, for piping into other tools.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes a session search response to w in the given
// format. Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeSearchResultsCompact(w, response)
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nSession %s | iteration %d (%s)\n", response.SessionID, response.Iteration, response.Kind)
	fmt.Fprintf(w, "Found %d results (catalog: %d items)\n\n", len(response.Results), response.TotalItems)
	for i, result := range response.Results {
		writeOneResult(w, i+1, &result)
	}
	if len(response.Trajectory) > 1 {
		fmt.Fprint(w, "Query trajectory:")
		for _, p := range response.Trajectory {
			fmt.Fprintf(w, " (%.3f, %.3f)", p.X, p.Y)
		}
		fmt.Fprintln(w)
	}
}

func writeOneResult(w io.Writer, rank int, result *models.ItemResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Similarity: %.4f\n", rank, result.Similarity)
	fmt.Fprintf(w, "ID: %s\n", result.DocID)
	if result.Metadata.DisplayName != "" {
		fmt.Fprintf(w, "Name: %s\n", result.Metadata.DisplayName)
	}
	if result.Metadata.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", result.Metadata.Category)
	}
	if result.Metadata.Description != "" {
		fmt.Fprintf(w, "\n%s\n", Truncate(result.Metadata.Description, 200))
	}
	fmt.Fprintln(w)
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) {
	for i, result := range response.Results {
		name := result.Metadata.DisplayName
		if name == "" {
			name = result.Metadata.Category
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%s\n", i+1, result.DocID, result.Similarity, name)
	}
}

// PrintSearchResults prints search results to stdout in text format (backward compatible).
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
