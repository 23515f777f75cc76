// Package server provides the HTTP API for WearSearch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/LeDaiKing/Wear-Search/internal/config"
	"github.com/LeDaiKing/Wear-Search/internal/embedding"
	"github.com/LeDaiKing/Wear-Search/internal/search"
	"github.com/LeDaiKing/Wear-Search/internal/session"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
)

// Server is the HTTP server for the WearSearch API.
type Server struct {
	sessions *session.Store
	engine   *search.Engine
	embedder embedding.Embedder
	gateway  vector.Gateway
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	sessions *session.Store,
	engine *search.Engine,
	embedder embedding.Embedder,
	gateway vector.Gateway,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		sessions: sessions,
		engine:   engine,
		embedder: embedder,
		gateway:  gateway,
		config:   cfg,
		logger:   logger,
	}
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search/text", s.handleTextSearch)
	r.Post("/api/v1/search/image", s.handleImageSearch)
	r.Post("/api/v1/feedback/relevance", s.handleRelevanceFeedback)
	r.Post("/api/v1/feedback/pseudo", s.handlePseudoFeedback)
	r.Post("/api/v1/feedback/clear", s.handleClearFeedback)
	r.Get("/api/v1/sessions/{id}", s.handleGetSession)
	r.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)
	r.Get("/api/v1/visualization/{id}", s.handleVisualization)
	r.Get("/api/v1/catalog/search", s.handleCatalogSearch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Handler returns the configured route tree, for serving the API from tests
// or embedding it in a larger mux.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
