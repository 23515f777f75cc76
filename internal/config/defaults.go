package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "clip"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:8090"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 512
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 77
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Index.Table == "" {
		cfg.Index.Table = "wear_items"
	}
	if cfg.Catalog.DatabasePath == "" {
		cfg.Catalog.DatabasePath = "/usr/local/var/wearsearch/data/catalog.db"
	}
	if cfg.Catalog.BlevePath == "" {
		cfg.Catalog.BlevePath = "/usr/local/var/wearsearch/data/indices/catalog.bleve"
	}
	if cfg.Rocchio.Alpha == 0 {
		cfg.Rocchio.Alpha = 1.0
	}
	if cfg.Rocchio.Beta == 0 {
		cfg.Rocchio.Beta = 0.75
	}
	if cfg.Rocchio.Gamma == 0 {
		cfg.Rocchio.Gamma = 0.15
	}
	if cfg.Composition.ResidualStrength == 0 {
		cfg.Composition.ResidualStrength = 0.8
	}
	if cfg.Composition.AdditiveLambda == 0 {
		cfg.Composition.AdditiveLambda = 0.5
	}
	if cfg.Composition.InterpolationAlpha == 0 {
		cfg.Composition.InterpolationAlpha = 0.6
	}
	if cfg.Composition.AttentionTemperature == 0 {
		cfg.Composition.AttentionTemperature = 1.0
	}
	if cfg.Composition.TextMethod == "" {
		cfg.Composition.TextMethod = "residual"
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = 20
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = 500
	}
	if cfg.Search.PRFTopM == 0 {
		cfg.Search.PRFTopM = 5
	}
	if cfg.Search.KeywordWeight == 0 && cfg.Search.SemanticWeight == 0 {
		cfg.Search.KeywordWeight = 0.4
		cfg.Search.SemanticWeight = 0.6
	}
	if cfg.Session.TTLHours == 0 {
		cfg.Session.TTLHours = 24
	}
	if cfg.Session.CleanupMinutes == 0 {
		cfg.Session.CleanupMinutes = 60
	}
	if cfg.Session.BasisSampleSize == 0 {
		cfg.Session.BasisSampleSize = 256
	}
	if cfg.Session.CorpusSampleSize == 0 {
		cfg.Session.CorpusSampleSize = 100
	}
}
