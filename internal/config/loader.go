package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader resolves a Config from defaults, a config file, and the
// environment. Grounded on the teacher's internal/config/loader.go.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader returns a Loader that looks for .semindex/config.yml under
// rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load resolves configuration with precedence defaults < config file <
// environment variables (SEMINDEX_ prefix, "_" replacing ".").
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.rootDir + "/.semindex")
	v.AddConfigPath(".semindex")

	v.SetEnvPrefix("SEMINDEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := Default()
	setDefaults(v, defaults)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Codebase.Path == "" {
		cfg.Codebase.Path = l.rootDir
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.chunk_size", d.Embedding.ChunkSize)
	v.SetDefault("embedding.chunk_overlap", d.Embedding.ChunkOverlap)

	v.SetDefault("qdrant.collection_name", d.VectorStore.CollectionName)
	v.SetDefault("qdrant.distance_metric", d.VectorStore.DistanceMetric)

	v.SetDefault("indexing.batch_size", d.Indexing.BatchSize)
	v.SetDefault("indexing.concurrency", d.Indexing.Concurrency)
	v.SetDefault("indexing.max_file_size", d.Indexing.MaxFileSize)
	v.SetDefault("indexing.respect_gitignore", d.Indexing.RespectGitignore)
	v.SetDefault("indexing.use_mcpignore", d.Indexing.UseMCPIgnore)
	v.SetDefault("indexing.auto_index", d.Indexing.AutoIndex)
	v.SetDefault("indexing.watch_files", d.Indexing.WatchFiles)
	v.SetDefault("indexing.watch_branches", d.Indexing.WatchBranches)
	v.SetDefault("indexing.fallback_chunking", d.Indexing.FallbackChunking)
	v.SetDefault("indexing.markdown_header_parsing", d.Indexing.MarkdownHeaderParsing)
	v.SetDefault("indexing.exclude_binaries", d.Indexing.ExcludeBinaries)
	v.SetDefault("indexing.exclude_images", d.Indexing.ExcludeImages)
	v.SetDefault("indexing.watch_debounce", d.Indexing.WatchDebounceMS)

	v.SetDefault("search.default_limit", d.Search.DefaultLimit)
	v.SetDefault("search.min_score", d.Search.MinScore)
	v.SetDefault("search.include_context", d.Search.IncludeContext)
	v.SetDefault("search.context_lines", d.Search.ContextLines)
	v.SetDefault("search.search_mode", d.Search.SearchMode)
	v.SetDefault("search.per_folder_collections", d.Search.PerFolderCollections)
	v.SetDefault("search.enable_cache", d.Search.EnableCache)
	v.SetDefault("search.cache_size", d.Search.CacheSize)
	v.SetDefault("search.cache_ttl", d.Search.CacheTTLMS)

	v.SetDefault("git.watch_branches", d.Git.WatchBranches)
	v.SetDefault("git.auto_detect_changes", d.Git.AutoDetectChanges)

	v.SetDefault("logging.level", d.Logging.Level)
}

// bindEnv makes every recognized key overridable via SEMINDEX_* even
// when it is absent from both defaults and the config file, matching
// the teacher's explicit per-key BindEnv calls.
func bindEnv(v *viper.Viper) {
	keys := []string{
		"codebase.path",
		"embedding.provider", "embedding.api_key", "embedding.base_url", "embedding.model",
		"embedding.dimensions", "embedding.chunk_size", "embedding.chunk_overlap",
		"qdrant.url", "qdrant.api_key", "qdrant.collection_name", "qdrant.distance_metric",
		"indexing.batch_size", "indexing.concurrency", "indexing.max_file_size",
		"indexing.respect_gitignore", "indexing.use_mcpignore", "indexing.auto_index",
		"indexing.watch_files", "indexing.watch_branches", "indexing.fallback_chunking",
		"indexing.markdown_header_parsing", "indexing.exclude_binaries", "indexing.exclude_images",
		"indexing.watch_debounce",
		"search.default_limit", "search.min_score", "search.include_context", "search.context_lines",
		"search.search_mode", "search.per_folder_collections", "search.enable_cache",
		"search.cache_size", "search.cache_ttl",
		"multi_workspace.enabled", "multi_workspace.independent_indexing", "multi_workspace.aggregate_status",
		"git.watch_branches", "git.auto_detect_changes",
		"logging.level",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// LoadConfig loads configuration rooted at the current directory.
func LoadConfig() (*Config, error) {
	return NewLoader(".").Load()
}

// LoadConfigFromDir loads configuration rooted at rootDir.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
