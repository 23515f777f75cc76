// Package config provides configuration loading and structs for the WearSearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Index       IndexConfig       `yaml:"index"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Rocchio     RocchioConfig     `yaml:"rocchio"`
	Composition CompositionConfig `yaml:"composition"`
	Search      SearchConfig      `yaml:"search"`
	Session     SessionConfig     `yaml:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddingConfig holds encoder settings. Provider selects the adapter:
// "clip" (remote HTTP encoder service), "mock" (deterministic, for tests and
// development), or "onnx" (local text tower, requires a cgo build).
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	ModelPath      string `yaml:"model_path"`
	Dimensions     int    `yaml:"dimensions"`
	MaxTokens      int    `yaml:"max_tokens"`
	CacheSize      int    `yaml:"cache_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-request encoder timeout.
func (e *EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// IndexConfig selects and configures the retrieval backend:
// "memory" (in-process exact search) or "pgvector" (Postgres with pgvector).
type IndexConfig struct {
	Type         string `yaml:"type"`
	SnapshotPath string `yaml:"snapshot_path"`
	PostgresDSN  string `yaml:"postgres_dsn"`
	Table        string `yaml:"table"`
}

// CatalogConfig holds the item catalog paths. SourcePath is the CSV/XLSX file
// the catalog was seeded from; when Watch is true the server re-ingests it on
// change.
type CatalogConfig struct {
	DatabasePath string `yaml:"database_path"`
	BlevePath    string `yaml:"bleve_path"`
	SourcePath   string `yaml:"source_path"`
	Watch        bool   `yaml:"watch"`
}

// RocchioConfig holds the relevance feedback weights. Zero values mean
// defaults (alpha 1.0, beta 0.75, gamma 0.15).
type RocchioConfig struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
}

// CompositionConfig holds text feedback composition settings. TextMethod picks
// the strategy for text-only feedback: "residual", "interpolate", or
// "attention".
type CompositionConfig struct {
	ResidualStrength     float64 `yaml:"residual_strength"`
	AdditiveLambda       float64 `yaml:"additive_lambda"`
	InterpolationAlpha   float64 `yaml:"interpolation_alpha"`
	AttentionTemperature float64 `yaml:"attention_temperature"`
	TextMethod           string  `yaml:"text_method"`
}

// SearchConfig holds result sizing and hybrid catalog search weights.
type SearchConfig struct {
	DefaultTopK    int     `yaml:"default_top_k"`
	MaxTopK        int     `yaml:"max_top_k"`
	PRFTopM        int     `yaml:"prf_top_m"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
}

// SessionConfig holds session arena and projection settings.
type SessionConfig struct {
	TTLHours         int `yaml:"ttl_hours"`
	CleanupMinutes   int `yaml:"cleanup_minutes"`
	BasisSampleSize  int `yaml:"basis_sample_size"`
	CorpusSampleSize int `yaml:"corpus_sample_size"`
}

// TTL returns the session time-to-live.
func (s *SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// CleanupInterval returns the arena sweep interval.
func (s *SessionConfig) CleanupInterval() time.Duration {
	return time.Duration(s.CleanupMinutes) * time.Minute
}

// Load reads and parses the config file at path, applies defaults, expands
// paths, and applies environment overrides. Returns an error if the file
// cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	configDir := filepath.Dir(path)
	cfg.Catalog.DatabasePath = expandPath(cfg.Catalog.DatabasePath, configDir)
	cfg.Catalog.BlevePath = expandPath(cfg.Catalog.BlevePath, configDir)
	if cfg.Catalog.SourcePath != "" {
		cfg.Catalog.SourcePath = expandPath(cfg.Catalog.SourcePath, configDir)
	}
	if cfg.Index.SnapshotPath != "" {
		cfg.Index.SnapshotPath = expandPath(cfg.Index.SnapshotPath, configDir)
	}
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	return &cfg, nil
}

// Default returns a config with defaults and environment overrides applied,
// for running without a config file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

// Validate checks cross-field constraints that defaults cannot fix.
func (c *Config) Validate() error {
	switch c.Index.Type {
	case "memory":
	case "pgvector":
		if c.Index.PostgresDSN == "" {
			return fmt.Errorf("index type pgvector requires index.postgres_dsn")
		}
	default:
		return fmt.Errorf("unknown index type: %s (supported: memory, pgvector)", c.Index.Type)
	}
	switch c.Embedding.Provider {
	case "clip":
		if c.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding provider clip requires embedding.base_url")
		}
	case "mock":
	case "onnx":
		if c.Embedding.ModelPath == "" {
			return fmt.Errorf("embedding provider onnx requires embedding.model_path")
		}
	default:
		return fmt.Errorf("unknown embedding provider: %s (supported: clip, mock, onnx)", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}
	switch c.Composition.TextMethod {
	case "residual", "interpolate", "attention":
	default:
		return fmt.Errorf("unknown composition text_method: %s (supported: residual, interpolate, attention)", c.Composition.TextMethod)
	}
	if c.Search.DefaultTopK > c.Search.MaxTopK {
		return fmt.Errorf("search.default_top_k (%d) exceeds search.max_top_k (%d)", c.Search.DefaultTopK, c.Search.MaxTopK)
	}
	if c.Search.PRFTopM < 1 || c.Search.PRFTopM > 20 {
		return fmt.Errorf("search.prf_top_m must be in [1,20], got %d", c.Search.PRFTopM)
	}
	return nil
}

// applyEnvOverrides lets deployment environments override file values without
// editing the config. A .env file in the working directory is honored.
func applyEnvOverrides(cfg *Config) {
	_ = godotenv.Load()
	cfg.Server.Host = getEnv("WEARSEARCH_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("WEARSEARCH_PORT", cfg.Server.Port)
	cfg.Embedding.BaseURL = getEnv("WEARSEARCH_EMBEDDING_URL", cfg.Embedding.BaseURL)
	cfg.Embedding.Provider = getEnv("WEARSEARCH_EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Index.PostgresDSN = getEnv("WEARSEARCH_POSTGRES_DSN", cfg.Index.PostgresDSN)
	cfg.Index.Type = getEnv("WEARSEARCH_INDEX_TYPE", cfg.Index.Type)
	if v, ok := os.LookupEnv("WEARSEARCH_DEBUG"); ok {
		cfg.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
