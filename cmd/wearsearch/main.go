// Package main is the WearSearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/LeDaiKing/Wear-Search/internal/catalog"
	"github.com/LeDaiKing/Wear-Search/internal/cli"
	"github.com/LeDaiKing/Wear-Search/internal/config"
	"github.com/LeDaiKing/Wear-Search/internal/embedding"
	"github.com/LeDaiKing/Wear-Search/internal/keyword"
	"github.com/LeDaiKing/Wear-Search/internal/models"
	"github.com/LeDaiKing/Wear-Search/internal/projection"
	"github.com/LeDaiKing/Wear-Search/internal/refine"
	"github.com/LeDaiKing/Wear-Search/internal/search"
	"github.com/LeDaiKing/Wear-Search/internal/server"
	"github.com/LeDaiKing/Wear-Search/internal/session"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
	"github.com/LeDaiKing/Wear-Search/internal/watcher"
	"github.com/LeDaiKing/Wear-Search/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/wearsearch/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "wearsearch server" from the project dir uses the project's config
// (including debug). Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "seed":
		runSeed()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("wearsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (feedback rounds, catalog reloads, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Catalog.Watch && cfg.Catalog.SourcePath != "" {
		ingestor := catalog.NewIngestor(components.Catalog, components.Embedder, logger)
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc, err := watcher.NewWatcher(cfg.Catalog.SourcePath, func(path string) {
			if err := reseedFromSource(context.Background(), components, ingestor, path); err != nil {
				logger.Warn("catalog reload failed", zap.String("path", path), zap.Error(err))
				return
			}
			components.Projector.InvalidateCorpus()
			logger.Info("catalog reloaded", zap.String("path", path))
		}, watchOpts...)
		if err != nil {
			logger.Fatal("Failed to create catalog watcher", zap.Error(err))
		}
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start catalog watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Sessions,
		components.Engine,
		components.Embedder,
		components.Gateway,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Index.SnapshotPath != "" {
		if mem, ok := components.Gateway.(*vector.MemoryGateway); ok {
			if err := mem.Save(cfg.Index.SnapshotPath); err != nil {
				logger.Warn("gateway snapshot save failed", zap.String("path", cfg.Index.SnapshotPath), zap.Error(err))
			}
		}
	}
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	sourcePath := cfg.Catalog.SourcePath
	if fs.NArg() > 0 {
		sourcePath = fs.Arg(0)
	}
	if sourcePath == "" {
		fmt.Println("Usage: wearsearch seed [flags] <catalog.csv|catalog.xlsx>")
		fmt.Println("A catalog file argument or catalog.source_path in the config is required.")
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ingestor := catalog.NewIngestor(components.Catalog, components.Embedder, logger)
	if err := reseedFromSource(ctx, components, ingestor, sourcePath); err != nil {
		fmt.Printf("Seeding failed: %v\n", err)
		os.Exit(1)
	}
	if cfg.Index.SnapshotPath != "" {
		if mem, ok := components.Gateway.(*vector.MemoryGateway); ok {
			if err := mem.Save(cfg.Index.SnapshotPath); err != nil {
				logger.Warn("gateway snapshot save failed", zap.String("path", cfg.Index.SnapshotPath), zap.Error(err))
			}
		}
	}
	count, err := components.Catalog.Count(ctx)
	if err != nil {
		count = 0
	}
	fmt.Printf("Seeded catalog from %s (%d item(s) stored)\n", sourcePath, count)
}

// reseedFromSource re-ingests the catalog file at path and swaps the
// retrieval gateway and keyword index contents in one pass.
func reseedFromSource(ctx context.Context, c *Components, ingestor *catalog.Ingestor, path string) error {
	writer, ok := c.Gateway.(vector.Writer)
	if !ok {
		return fmt.Errorf("retrieval backend %T does not support ingestion", c.Gateway)
	}
	items, err := ingestor.Ingest(ctx, path)
	if err != nil {
		return err
	}
	ids, vecs, metas := catalog.Vectors(items)
	if err := writer.Replace(ctx, ids, vecs, metas); err != nil {
		return err
	}
	if err := c.Keywords.IndexBatch(ctx, ids, metas); err != nil {
		return err
	}
	return nil
}

// printSearchUsage prints search subcommand usage and session workflow hints.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: wearsearch search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Each search opens a feedback session on the server; the printed session id can
be used to refine results over HTTP (POST /api/v1/feedback/relevance).
  • Use --top-k to control how many items are returned.
  • Use --output json for parseable output (includes the session id).
  • Use --server "" to search against local storage when no server is running.

Examples:
  wearsearch search red summer dress
  wearsearch search "red summer dress"         # same as above
  wearsearch search --top-k 5 wool coat
  wearsearch search --output json denim jacket
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting (e.g. "wool coat" vs wool coat).
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func searchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "wearsearch search \"query\" -top-k 5"
// would otherwise leave -top-k unparsed (default used).
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", searchConfigPathFromArgs(searchArgs, defaultConfigPath), "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use local storage when server is not running)")
	topK := fs.Int("top-k", 0, "number of results (default from config)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	case "compact":
		format = cli.OutputCompact
	default:
		fmt.Printf("Unknown output format %q; use text, compact, or json\n", *outputFormat)
		os.Exit(1)
	}

	if *serverURL != "" {
		// Use the HTTP API when a server is running, so the session stays
		// alive for follow-up feedback rounds.
		response, err := searchViaHTTP(*serverURL, queryStr, *topK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Local storage access (when server is not running). The session lives
	// only for this invocation.
	cfg, _, err := loadConfig(*configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	queryVec, err := components.Embedder.EmbedText(ctx, queryStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode query: %v\n", err)
		os.Exit(1)
	}
	outcome, err := components.Sessions.Create(ctx, queryVec, "text", *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, responseFromOutcome(ctx, components, outcome), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query string, topK int) (*models.SearchResponse, error) {
	payload := map[string]interface{}{"query": query}
	if topK > 0 {
		payload["top_k"] = topK
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search/text", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// responseFromOutcome maps a session outcome onto the wire shape, matching
// what the HTTP API returns.
func responseFromOutcome(ctx context.Context, c *Components, out *session.Outcome) *models.SearchResponse {
	total, err := c.Gateway.Count(ctx)
	if err != nil {
		total = len(out.Results)
	}
	resp := &models.SearchResponse{
		SessionID:  out.SessionID,
		Iteration:  out.Iteration,
		Kind:       string(out.Kind),
		Results:    make([]models.ItemResult, len(out.Results)),
		TotalItems: total,
	}
	for i, res := range out.Results {
		resp.Results[i] = models.ItemResult{
			DocID:      res.DocID,
			Similarity: res.Similarity,
			Metadata:   res.Metadata,
		}
	}
	for i, p := range out.Trajectory {
		resp.Trajectory = append(resp.Trajectory, models.TrajectoryPoint{X: p.X, Y: p.Y, Iteration: i + 1})
	}
	return resp
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	EmbeddingProvider   string `json:"embedding_provider,omitempty"`
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
	IndexType           string `json:"index_type,omitempty"`
	TextMethod          string `json:"text_method,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Items    int                   `json:"items"`
	Sessions int                   `json:"sessions"`
	Config   *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use local storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		ctx := context.Background()
		components, err := initializeComponents(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		items, err := components.Gateway.Count(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count items failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Items:    items,
			Sessions: components.Sessions.Count(),
			Config: &statusConfigResponse{
				EmbeddingProvider:   cfg.Embedding.Provider,
				EmbeddingDimensions: cfg.Embedding.Dimensions,
				IndexType:           cfg.Index.Type,
				TextMethod:          cfg.Composition.TextMethod,
			},
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("items:     %d   # catalog items in the retrieval index\n", status.Items)
		fmt.Printf("sessions:  %d   # live feedback sessions\n", status.Sessions)
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			if status.Config.EmbeddingProvider != "" {
				fmt.Printf("embedding_provider:  %s\n", status.Config.EmbeddingProvider)
			}
			if status.Config.EmbeddingDimensions > 0 {
				fmt.Printf("embedding_dims:      %d\n", status.Config.EmbeddingDimensions)
			}
			if status.Config.IndexType != "" {
				fmt.Printf("index_type:          %s\n", status.Config.IndexType)
			}
			if status.Config.TextMethod != "" {
				fmt.Printf("text_method:         %s\n", status.Config.TextMethod)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Catalog   catalog.Store
	Embedder  embedding.Embedder
	Gateway   vector.Gateway
	Keywords  keyword.KeywordIndex
	Engine    *search.Engine
	Projector *projection.Projector
	Sessions  *session.Store
}

func (c *Components) Close() {
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Gateway != nil {
		_ = c.Gateway.Close()
	}
	if c.Keywords != nil {
		_ = c.Keywords.Close()
	}
}

// refineOptionsFromConfig maps the config weights onto engine options.
// Defaults are already applied by config loading.
func refineOptionsFromConfig(cfg *config.Config) refine.Options {
	return refine.Options{
		Weights: refine.Weights{
			Alpha: cfg.Rocchio.Alpha,
			Beta:  cfg.Rocchio.Beta,
			Gamma: cfg.Rocchio.Gamma,
		},
		ResidualStrength:     cfg.Composition.ResidualStrength,
		AdditiveLambda:       cfg.Composition.AdditiveLambda,
		InterpolationAlpha:   cfg.Composition.InterpolationAlpha,
		AttentionTemperature: cfg.Composition.AttentionTemperature,
		TextMethod:           refine.TextMethod(cfg.Composition.TextMethod),
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := catalog.NewSQLiteStore(cfg.Catalog.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	var embedder embedding.Embedder
	switch cfg.Embedding.Provider {
	case "mock":
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	case "onnx":
		onnxEmbedder, onnxErr := embedding.NewONNXEmbedder(
			cfg.Embedding.ModelPath,
			cfg.Embedding.Dimensions,
			cfg.Embedding.MaxTokens,
			cfg.Embedding.CacheSize,
		)
		if onnxErr != nil {
			if logger != nil {
				logger.Warn("onnx embedder unavailable, falling back to mock", zap.Error(onnxErr))
			}
			embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		} else {
			embedder = onnxEmbedder
		}
	default:
		embedder = embedding.NewClipEmbedder(
			cfg.Embedding.BaseURL,
			cfg.Embedding.Dimensions,
			cfg.Embedding.CacheSize,
			cfg.Embedding.Timeout(),
		)
	}

	gateway, err := vector.NewGateway(ctx, cfg.Index.Type, cfg.Index.PostgresDSN, cfg.Index.Table, cfg.Embedding.Dimensions)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize retrieval gateway: %w", err)
	}
	if mem, ok := gateway.(*vector.MemoryGateway); ok {
		if cfg.Index.SnapshotPath != "" {
			if loadErr := mem.Load(cfg.Index.SnapshotPath); loadErr != nil && logger != nil {
				logger.Warn("gateway snapshot load skipped", zap.String("path", cfg.Index.SnapshotPath), zap.Error(loadErr))
			}
		}
		// Fill from the catalog when starting cold.
		if n, countErr := mem.Count(ctx); countErr == nil && n == 0 {
			items, allErr := store.All(ctx)
			if allErr == nil && len(items) > 0 {
				ids, vecs, metas := catalog.Vectors(items)
				if fillErr := mem.Replace(ctx, ids, vecs, metas); fillErr != nil {
					_ = store.Close()
					_ = gateway.Close()
					return nil, fmt.Errorf("failed to fill retrieval gateway from catalog: %w", fillErr)
				}
				if logger != nil {
					logger.Info("retrieval gateway filled from catalog", zap.Int("items", len(items)))
				}
			}
		}
	}
	if logger != nil {
		logger.Info("retrieval gateway initialized", zap.String("type", cfg.Index.Type))
	}

	keywords, err := keyword.NewBleveIndex(cfg.Catalog.BlevePath)
	if err != nil {
		_ = store.Close()
		_ = gateway.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	engine := search.NewEngine(embedder, gateway, keywords, store, &cfg.Search, logger)
	projector := projection.NewProjector(gateway, cfg.Session.BasisSampleSize, logger)
	sessions := session.NewStore(gateway, embedder, projector, session.Options{
		Dimensions:  cfg.Embedding.Dimensions,
		TTL:         cfg.Session.TTL(),
		Cleanup:     cfg.Session.CleanupInterval(),
		DefaultTopK: cfg.Search.DefaultTopK,
		MaxTopK:     cfg.Search.MaxTopK,
		PseudoTopM:  cfg.Search.PRFTopM,
		Refine:      refineOptionsFromConfig(cfg),
	}, logger)

	return &Components{
		Catalog:   store,
		Embedder:  embedder,
		Gateway:   gateway,
		Keywords:  keywords,
		Engine:    engine,
		Projector: projector,
		Sessions:  sessions,
	}, nil
}

func printUsage() {
	fmt.Println(`wearsearch - Interactive relevance feedback search for clothing catalogs

Usage:
  wearsearch server [flags]            Start the HTTP server
  wearsearch seed [flags] [catalog]    Ingest a catalog file (CSV or XLSX)
  wearsearch search [flags] <query>    Open a search session
  wearsearch status [flags]            Show catalog/index/session status
  wearsearch version                   Show version
  wearsearch help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/wearsearch/config.yaml)
  --debug            Enable debug logging (feedback rounds, catalog reloads, etc.)

Seed Flags:
  --config string    Config file path
  The catalog argument falls back to catalog.source_path from the config.

Search Flags:
  --config string    Config file path (for local storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to use local storage when server is not running.
  --top-k int        Number of results (default from config)
  --output string    Output format: text, compact, or json (default: text)

Status Flags:
  --config string    Config file path (for local storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for local storage.
  --output string    Output format: text or json (default: text)

Examples:
  wearsearch server
  wearsearch seed catalog.xlsx
  wearsearch search "red summer dress"
  wearsearch search --top-k 5 wool coat
  wearsearch search --output json denim jacket   # structured JSON for other apps
  wearsearch status
  wearsearch status --output json`)
}
