package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LeDaiKing/Wear-Search/internal/embedding"
	"github.com/LeDaiKing/Wear-Search/internal/feedback"
	"github.com/LeDaiKing/Wear-Search/internal/models"
	"github.com/LeDaiKing/Wear-Search/internal/projection"
	"github.com/LeDaiKing/Wear-Search/internal/refine"
	"github.com/LeDaiKing/Wear-Search/internal/session"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
)

const maxUploadBytes = 10 << 20

func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	var req models.TextSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidateRequest(&req); err != nil {
		s.respondInvalid(w, err)
		return
	}
	s.logger.Debug("text search request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))
	vec, err := s.embedder.EmbedText(r.Context(), req.Query)
	if err != nil {
		s.failOp(w, "text search failed", err)
		return
	}
	out, err := s.sessions.Create(r.Context(), vec, "text", req.TopK)
	if err != nil {
		s.failOp(w, "text search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.searchResponse(r.Context(), out))
}

func (s *Server) handleImageSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		s.respondError(w, http.StatusBadRequest, "file must be an image")
		return
	}
	topK := 0
	if v := r.FormValue("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "top_k must be a positive integer")
			return
		}
		topK = n
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "could not read image file")
		return
	}
	s.logger.Debug("image search request", zap.String("filename", header.Filename), zap.Int("bytes", len(data)))
	vec, err := s.embedder.EmbedImage(r.Context(), data)
	if err != nil {
		s.failOp(w, "image search failed", err)
		return
	}
	out, err := s.sessions.Create(r.Context(), vec, "image", topK)
	if err != nil {
		s.failOp(w, "image search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.searchResponse(r.Context(), out))
}

func (s *Server) handleRelevanceFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.RelevanceFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidateRequest(&req); err != nil {
		s.respondInvalid(w, err)
		return
	}
	s.logger.Debug("relevance feedback request",
		zap.String("session_id", req.SessionID),
		zap.Int("positive", len(req.PositiveIDs)),
		zap.Int("negative", len(req.NegativeIDs)),
		zap.Int("text", len(req.TextFeedback)))
	out, err := s.sessions.ApplyFeedback(r.Context(), req.SessionID, req.Items(), req.TextFeedback, req.TopK)
	if err != nil {
		s.failOp(w, "relevance feedback failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.searchResponse(r.Context(), out))
}

func (s *Server) handlePseudoFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.PseudoFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidateRequest(&req); err != nil {
		s.respondInvalid(w, err)
		return
	}
	s.logger.Debug("pseudo feedback request", zap.String("session_id", req.SessionID), zap.Int("top_m", req.TopM))
	out, err := s.sessions.ApplyPseudo(r.Context(), req.SessionID, req.TopM, req.TopK)
	if err != nil {
		s.failOp(w, "pseudo feedback failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.searchResponse(r.Context(), out))
}

func (s *Server) handleClearFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.ClearFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidateRequest(&req); err != nil {
		s.respondInvalid(w, err)
		return
	}
	s.logger.Debug("clear feedback request", zap.String("session_id", req.SessionID))
	out, err := s.sessions.ClearFeedback(r.Context(), req.SessionID)
	if err != nil {
		s.failOp(w, "clear feedback failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.searchResponse(r.Context(), out))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, err := s.sessions.Get(id)
	if err != nil {
		s.failOp(w, "session lookup failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, sessionInfoResponse(info))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete session request", zap.String("session_id", id))
	if err := s.sessions.Delete(id); err != nil {
		s.failOp(w, "session delete failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	includeCorpus := r.URL.Query().Get("include_corpus") == "true"
	sampleSize := s.config.Session.CorpusSampleSize
	if v := r.URL.Query().Get("sample_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "sample_size must be a positive integer")
			return
		}
		sampleSize = n
	}
	viz, err := s.sessions.Visualize(r.Context(), id, includeCorpus, sampleSize)
	if err != nil {
		s.failOp(w, "visualization failed", err)
		return
	}
	resp := &models.VisualizationResponse{
		SessionID:  viz.SessionID,
		Iteration:  viz.Iteration,
		Trajectory: trajectoryPoints(viz.Trajectory),
	}
	if viz.Corpus != nil {
		resp.Corpus = make([]models.Point2D, len(viz.Corpus))
		for i, p := range viz.Corpus {
			resp.Corpus[i] = models.Point2D{X: p.X, Y: p.Y}
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	s.logger.Debug("catalog search request", zap.String("query", query), zap.Int("limit", limit))
	resp, err := s.engine.Search(r.Context(), query, limit)
	if err != nil {
		s.failOp(w, "catalog search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	items, err := s.gateway.Count(r.Context())
	if err != nil {
		s.logger.Error("status: corpus count failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"items":    items,
		"sessions": s.sessions.Count(),
	}
	resp["config"] = map[string]interface{}{
		"embedding_provider":   s.config.Embedding.Provider,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"index_type":           s.config.Index.Type,
		"text_method":          s.config.Composition.TextMethod,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// searchResponse maps an engine outcome onto the wire shape. TotalItems is
// the corpus size at response time, not the page length.
func (s *Server) searchResponse(ctx context.Context, out *session.Outcome) *models.SearchResponse {
	total, err := s.gateway.Count(ctx)
	if err != nil {
		s.logger.Warn("corpus count failed", zap.Error(err))
		total = len(out.Results)
	}
	resp := &models.SearchResponse{
		SessionID:  out.SessionID,
		Iteration:  out.Iteration,
		Kind:       string(out.Kind),
		Results:    make([]models.ItemResult, len(out.Results)),
		TotalItems: total,
		Trajectory: trajectoryPoints(out.Trajectory),
	}
	for i, res := range out.Results {
		resp.Results[i] = models.ItemResult{
			DocID:      res.DocID,
			Similarity: res.Similarity,
			Metadata:   res.Metadata,
		}
	}
	return resp
}

func sessionInfoResponse(info *session.Info) *models.SessionInfo {
	return &models.SessionInfo{
		SessionID:   info.SessionID,
		CreatedAt:   info.CreatedAt,
		Origin:      info.Origin,
		Iterations:  info.Iterations,
		CurrentKind: string(info.CurrentKind),
		FeedbackCounts: models.FeedbackCounts{
			Positive: info.Positive,
			Negative: info.Negative,
			Text:     info.Text,
		},
	}
}

func trajectoryPoints(points []projection.Point) []models.TrajectoryPoint {
	out := make([]models.TrajectoryPoint, len(points))
	for i, p := range points {
		out[i] = models.TrajectoryPoint{X: p.X, Y: p.Y, Iteration: i + 1}
	}
	return out
}

// statusFor maps engine errors onto HTTP status codes: caller faults are 400,
// unknown sessions 404, encoder or retrieval backend failures 502.
func statusFor(err error) int {
	var (
		dimErr     *refine.DimensionError
		unknownDoc *feedback.UnknownDocumentError
		shortErr   *session.InsufficientResultsError
	)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, embedding.ErrUnavailable), errors.Is(err, vector.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, feedback.ErrEmptyFeedback), errors.Is(err, refine.ErrEmptyUpdate),
		errors.As(err, &dimErr), errors.As(err, &unknownDoc), errors.As(err, &shortErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) failOp(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondInvalid(w http.ResponseWriter, err error) {
	s.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Detail: err.Error()})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message})
}
