package models

import "time"

// ItemResult is one ranked catalog item returned to clients. Result vectors
// stay inside the engine and are never serialized.
type ItemResult struct {
	DocID      string   `json:"doc_id"`
	Similarity float64  `json:"similarity"`
	Metadata   Metadata `json:"metadata"`
}

// TrajectoryPoint is the 2D projection of one committed query vector.
type TrajectoryPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Iteration int     `json:"iteration"`
}

// Point2D is a bare projected coordinate, used for the corpus background.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SearchResponse is returned by session creation and every feedback operation.
// Iteration lets clients discard stale responses: a response whose iteration is
// lower than one already rendered is out of date.
type SearchResponse struct {
	SessionID  string            `json:"session_id"`
	Iteration  int               `json:"iteration"`
	Kind       string            `json:"kind"`
	Results    []ItemResult      `json:"results"`
	TotalItems int               `json:"total_items"`
	Trajectory []TrajectoryPoint `json:"trajectory,omitempty"`
}

// FeedbackCounts sums judgments accumulated over a session's lifetime.
type FeedbackCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Text     int `json:"text"`
}

// SessionInfo summarizes a live session.
type SessionInfo struct {
	SessionID      string         `json:"session_id"`
	CreatedAt      time.Time      `json:"created_at"`
	Origin         string         `json:"origin"`
	Iterations     int            `json:"iterations"`
	CurrentKind    string         `json:"current_kind"`
	FeedbackCounts FeedbackCounts `json:"feedback_counts"`
}

// VisualizationResponse carries a session's query drift and, optionally, a
// projected corpus sample as background context.
type VisualizationResponse struct {
	SessionID  string            `json:"session_id"`
	Iteration  int               `json:"iteration"`
	Trajectory []TrajectoryPoint `json:"trajectory"`
	Corpus     []Point2D         `json:"corpus,omitempty"`
}

// CatalogResult is one hit from the sessionless hybrid catalog search.
type CatalogResult struct {
	DocID         string   `json:"doc_id"`
	Score         float64  `json:"score"`
	KeywordScore  float64  `json:"keyword_score"`
	SemanticScore float64  `json:"semantic_score"`
	Metadata      Metadata `json:"metadata"`
}

// CatalogSearchResponse is the response for catalog search.
type CatalogSearchResponse struct {
	Query     string          `json:"query"`
	Results   []CatalogResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
