// Package config defines the resolved configuration surface spec.md
// §6.2 recognizes, its defaults, a viper-based Loader, and validation.
// Grounded on the teacher's internal/config/config.go.
package config

// Config is the complete semindex configuration, loadable from
// .semindex/config.yml with environment-variable overrides.
type Config struct {
	Codebase       CodebaseConfig       `yaml:"codebase" mapstructure:"codebase"`
	Embedding      EmbeddingConfig      `yaml:"embedding" mapstructure:"embedding"`
	VectorStore    VectorStoreConfig    `yaml:"qdrant" mapstructure:"qdrant"`
	Indexing       IndexingConfig       `yaml:"indexing" mapstructure:"indexing"`
	Search         SearchConfig         `yaml:"search" mapstructure:"search"`
	MultiWorkspace MultiWorkspaceConfig `yaml:"multi_workspace" mapstructure:"multi_workspace"`
	Git            GitConfig            `yaml:"git" mapstructure:"git"`
	Logging        LoggingConfig        `yaml:"logging" mapstructure:"logging"`
}

// CodebaseConfig names the tree to index.
type CodebaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// EmbeddingConfig configures the embedding provider (spec.md §6.2).
type EmbeddingConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"`
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	Model        string `yaml:"model" mapstructure:"model"`
	Dimensions   int    `yaml:"dimensions" mapstructure:"dimensions"`
	ChunkSize    int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
}

// VectorStoreConfig configures the vector store collection (spec.md's
// "qdrant" section; named generically here since this implementation's
// store is an in-process chromem-go collection, not a qdrant server).
type VectorStoreConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	CollectionName string `yaml:"collection_name" mapstructure:"collection_name"`
	DistanceMetric string `yaml:"distance_metric" mapstructure:"distance_metric"`
}

// IndexingConfig configures discovery, filtering, and watch behavior.
type IndexingConfig struct {
	Languages             []string `yaml:"languages" mapstructure:"languages"`
	Exclude               []string `yaml:"exclude" mapstructure:"exclude"`
	Include               []string `yaml:"include" mapstructure:"include"`
	BatchSize             int      `yaml:"batch_size" mapstructure:"batch_size"`
	Concurrency           int      `yaml:"concurrency" mapstructure:"concurrency"`
	MaxFileSize           int64    `yaml:"max_file_size" mapstructure:"max_file_size"`
	RespectGitignore      bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`
	UseMCPIgnore          bool     `yaml:"use_mcpignore" mapstructure:"use_mcpignore"`
	AutoIndex             bool     `yaml:"auto_index" mapstructure:"auto_index"`
	WatchFiles            bool     `yaml:"watch_files" mapstructure:"watch_files"`
	WatchBranches         bool     `yaml:"watch_branches" mapstructure:"watch_branches"`
	FallbackChunking      bool     `yaml:"fallback_chunking" mapstructure:"fallback_chunking"`
	MarkdownHeaderParsing bool     `yaml:"markdown_header_parsing" mapstructure:"markdown_header_parsing"`
	ExcludeBinaries       bool     `yaml:"exclude_binaries" mapstructure:"exclude_binaries"`
	ExcludeImages         bool     `yaml:"exclude_images" mapstructure:"exclude_images"`
	WatchDebounceMS       int      `yaml:"watch_debounce" mapstructure:"watch_debounce"`
}

// SearchConfig configures query-time defaults and the result cache.
type SearchConfig struct {
	DefaultLimit         int     `yaml:"default_limit" mapstructure:"default_limit"`
	MinScore             float64 `yaml:"min_score" mapstructure:"min_score"`
	IncludeContext       bool    `yaml:"include_context" mapstructure:"include_context"`
	ContextLines         int     `yaml:"context_lines" mapstructure:"context_lines"`
	SearchMode           string  `yaml:"search_mode" mapstructure:"search_mode"`
	PerFolderCollections bool    `yaml:"per_folder_collections" mapstructure:"per_folder_collections"`
	EnableCache          bool    `yaml:"enable_cache" mapstructure:"enable_cache"`
	CacheSize            int     `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLMS           int     `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// MultiWorkspaceConfig toggles independent per-branch indexing.
type MultiWorkspaceConfig struct {
	Enabled             bool `yaml:"enabled" mapstructure:"enabled"`
	IndependentIndexing bool `yaml:"independent_indexing" mapstructure:"independent_indexing"`
	AggregateStatus     bool `yaml:"aggregate_status" mapstructure:"aggregate_status"`
}

// GitConfig toggles branch-awareness.
type GitConfig struct {
	WatchBranches     bool `yaml:"watch_branches" mapstructure:"watch_branches"`
	AutoDetectChanges bool `yaml:"auto_detect_changes" mapstructure:"auto_detect_changes"`
}

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Default returns a configuration with spec.md §6.2's defaults.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:     "ollama",
			BaseURL:      "http://localhost:11434",
			Dimensions:   768,
			ChunkSize:    512,
			ChunkOverlap: 50,
		},
		VectorStore: VectorStoreConfig{
			CollectionName: "codebase-index",
			DistanceMetric: "Cosine",
		},
		Indexing: IndexingConfig{
			BatchSize:             50,
			Concurrency:           5,
			MaxFileSize:           1048576,
			RespectGitignore:      true,
			UseMCPIgnore:          true,
			AutoIndex:             true,
			WatchFiles:            true,
			WatchBranches:         true,
			FallbackChunking:      true,
			MarkdownHeaderParsing: true,
			ExcludeBinaries:       true,
			ExcludeImages:         true,
			WatchDebounceMS:       200,
		},
		Search: SearchConfig{
			DefaultLimit:         10,
			MinScore:             0.7,
			IncludeContext:       true,
			ContextLines:         5,
			SearchMode:           "all-folders",
			PerFolderCollections: true,
			EnableCache:          true,
			CacheSize:            100,
			CacheTTLMS:           300000,
		},
		Git: GitConfig{
			WatchBranches:     true,
			AutoDetectChanges: true,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
