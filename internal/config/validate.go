package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel validation errors, generalized from the teacher's
// internal/config/validate.go to this project's field set.
var (
	ErrEmptyCodebasePath    = errors.New("config: codebase.path must not be empty")
	ErrInvalidProvider      = errors.New("config: embedding.provider must be one of gemini, openai, ollama, openai-compatible")
	ErrInvalidDimensions    = errors.New("config: embedding.dimensions must be positive")
	ErrInvalidChunkSize     = errors.New("config: embedding.chunk_size must be positive")
	ErrInvalidOverlap       = errors.New("config: embedding.chunk_overlap must be non-negative and less than chunk_size")
	ErrEmptyBaseURL         = errors.New("config: embedding.base_url must not be empty for openai-compatible and ollama providers")
	ErrInvalidDistance      = errors.New("config: qdrant.distance_metric must be one of Cosine, Euclidean, Dot")
	ErrEmptyCollectionName  = errors.New("config: qdrant.collection_name must not be empty")
	ErrInvalidBatchSize     = errors.New("config: indexing.batch_size must be positive")
	ErrInvalidConcurrency   = errors.New("config: indexing.concurrency must be positive")
	ErrInvalidMaxFileSize   = errors.New("config: indexing.max_file_size must be positive")
	ErrInvalidDebounce      = errors.New("config: indexing.watch_debounce must be non-negative")
	ErrInvalidDefaultLimit  = errors.New("config: search.default_limit must be positive")
	ErrInvalidMinScore      = errors.New("config: search.min_score must be between 0 and 1")
	ErrInvalidSearchMode    = errors.New("config: search.search_mode must be one of all-folders, per-folder")
	ErrInvalidCacheSettings = errors.New("config: search.cache_size and cache_ttl must be non-negative when enable_cache is true")
	ErrInvalidLogLevel      = errors.New("config: logging.level must be one of debug, info, warn, error")
)

// Validate checks cfg against spec.md §6.2's recognized value ranges,
// aggregating every violation rather than stopping at the first.
func Validate(cfg *Config) error {
	var errs []error
	errs = append(errs, validateCodebase(cfg)...)
	errs = append(errs, validateEmbedding(cfg)...)
	errs = append(errs, validateVectorStore(cfg)...)
	errs = append(errs, validateIndexing(cfg)...)
	errs = append(errs, validateSearch(cfg)...)
	errs = append(errs, validateLogging(cfg)...)
	return joinErrors(errs)
}

func validateCodebase(cfg *Config) []error {
	if strings.TrimSpace(cfg.Codebase.Path) == "" {
		return []error{ErrEmptyCodebasePath}
	}
	return nil
}

func validateEmbedding(cfg *Config) []error {
	var errs []error
	e := cfg.Embedding
	switch e.Provider {
	case "gemini", "openai", "ollama", "openai-compatible":
	default:
		errs = append(errs, ErrInvalidProvider)
	}
	if e.Dimensions <= 0 {
		errs = append(errs, ErrInvalidDimensions)
	}
	if e.ChunkSize <= 0 {
		errs = append(errs, ErrInvalidChunkSize)
	}
	if e.ChunkOverlap < 0 || (e.ChunkSize > 0 && e.ChunkOverlap >= e.ChunkSize) {
		errs = append(errs, ErrInvalidOverlap)
	}
	if (e.Provider == "openai-compatible" || e.Provider == "ollama") && strings.TrimSpace(e.BaseURL) == "" {
		errs = append(errs, ErrEmptyBaseURL)
	}
	return errs
}

func validateVectorStore(cfg *Config) []error {
	var errs []error
	s := cfg.VectorStore
	if strings.TrimSpace(s.CollectionName) == "" {
		errs = append(errs, ErrEmptyCollectionName)
	}
	switch s.DistanceMetric {
	case "Cosine", "Euclidean", "Dot":
	default:
		errs = append(errs, ErrInvalidDistance)
	}
	return errs
}

func validateIndexing(cfg *Config) []error {
	var errs []error
	i := cfg.Indexing
	if i.BatchSize <= 0 {
		errs = append(errs, ErrInvalidBatchSize)
	}
	if i.Concurrency <= 0 {
		errs = append(errs, ErrInvalidConcurrency)
	}
	if i.MaxFileSize <= 0 {
		errs = append(errs, ErrInvalidMaxFileSize)
	}
	if i.WatchDebounceMS < 0 {
		errs = append(errs, ErrInvalidDebounce)
	}
	return errs
}

func validateSearch(cfg *Config) []error {
	var errs []error
	s := cfg.Search
	if s.DefaultLimit <= 0 {
		errs = append(errs, ErrInvalidDefaultLimit)
	}
	if s.MinScore < 0 || s.MinScore > 1 {
		errs = append(errs, ErrInvalidMinScore)
	}
	switch s.SearchMode {
	case "all-folders", "per-folder":
	default:
		errs = append(errs, ErrInvalidSearchMode)
	}
	if s.EnableCache && (s.CacheSize < 0 || s.CacheTTLMS < 0) {
		errs = append(errs, ErrInvalidCacheSettings)
	}
	return errs
}

func validateLogging(cfg *Config) []error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return []error{ErrInvalidLogLevel}
	}
}

// joinErrors collapses a slice of validation errors into a single
// error: the lone error itself when there is exactly one, or a
// multi-line "validation failed" summary otherwise.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		var b strings.Builder
		b.WriteString("config: validation failed:\n")
		for _, e := range errs {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
		return errors.New(strings.TrimRight(b.String(), "\n"))
	}
}
