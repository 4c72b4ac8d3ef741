// Package orchestrator owns the lifecycle of every core collaborator —
// the embedder, vector store, parser, indexer, and search engine
// (spec.md §3 Ownership) — behind a single Initialize/Reconfigure/
// Stop surface. Grounded on the teacher's internal/mcp/server.go
// composition root: one constructor wires every collaborator and
// registers failure-cleanup as it goes, Serve starts background work
// and blocks for shutdown, Close tears everything down in reverse
// order.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourcelens/semindex/internal/block"
	"github.com/sourcelens/semindex/internal/config"
	"github.com/sourcelens/semindex/internal/discovery"
	"github.com/sourcelens/semindex/internal/embedder"
	"github.com/sourcelens/semindex/internal/errs"
	"github.com/sourcelens/semindex/internal/graph"
	"github.com/sourcelens/semindex/internal/ignore"
	"github.com/sourcelens/semindex/internal/indexer"
	"github.com/sourcelens/semindex/internal/parser"
	"github.com/sourcelens/semindex/internal/resultcache"
	"github.com/sourcelens/semindex/internal/search"
	"github.com/sourcelens/semindex/internal/status"
	"github.com/sourcelens/semindex/internal/vectorstore"
	"github.com/sourcelens/semindex/internal/vectorstore/chromem"
)

// Component names accepted by ValidateComponent (spec.md §6.1
// validate_config).
const (
	ComponentVectorStore = "qdrant"
	ComponentEmbedder    = "embedder"
	ComponentAll         = "all"
)

// Orchestrator composes the full ingestion and query pipeline from a
// Config and exposes the index/search/reconfigure surface the tool
// dispatcher (internal/mcp) drives.
type Orchestrator struct {
	logger *log.Logger

	mu          sync.RWMutex
	cfg         *config.Config
	embedder    embedder.Provider
	store       *chromem.Store
	parserInst  *parser.Parser
	filter      *ignore.Filter
	discoverer  *discovery.Discoverer
	idx         *indexer.Indexer
	searcher    *search.Searcher
	graph       *graph.Graph
	cache       *resultcache.Cache
}

// New builds every collaborator from cfg and wires them together. It
// performs no network calls; call Initialize to validate collaborators
// and bring the indexer up.
func New(cfg *config.Config, logger *log.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[orchestrator] ", log.LstdFlags)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, errs.Wrap(errs.Configuration, "orchestrator: invalid config", err)
	}

	o := &Orchestrator{logger: logger, cfg: cfg}
	if err := o.build(cfg); err != nil {
		return nil, err
	}
	return o, nil
}

// build constructs every collaborator for cfg and assigns them onto o.
// Called both from New and from Reconfigure, which replaces the whole
// set atomically on success.
func (o *Orchestrator) build(cfg *config.Config) error {
	emb, err := embedder.NewHTTPProvider(embedder.Config{
		Provider:   embedder.Kind(cfg.Embedding.Provider),
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return errs.Wrap(errs.Configuration, "orchestrator: build embedder", err)
	}

	store := chromem.New()

	filter := ignore.New()
	if cfg.Indexing.RespectGitignore {
		if err := filter.LoadPatterns(filepath.Join(cfg.Codebase.Path, ".gitignore")); err != nil {
			o.logger.Printf("warning: load .gitignore: %v", err)
		}
	}
	if cfg.Indexing.UseMCPIgnore {
		if err := filter.LoadPatterns(filepath.Join(cfg.Codebase.Path, ".mcpignore")); err != nil {
			o.logger.Printf("warning: load .mcpignore: %v", err)
		}
	}
	for _, pattern := range cfg.Indexing.Exclude {
		filter.AddPattern(pattern)
	}

	p := parser.New(parser.Options{
		Languages:             cfg.Indexing.Languages,
		FallbackChunking:      cfg.Indexing.FallbackChunking,
		MarkdownHeaderParsing: cfg.Indexing.MarkdownHeaderParsing,
		ChunkSize:             cfg.Embedding.ChunkSize,
		ChunkOverlap:          cfg.Embedding.ChunkOverlap,
	})

	disc := discovery.New(filter)
	if len(cfg.Indexing.Languages) > 0 {
		langs := make(discovery.LanguageMap, len(disc.Languages))
		for ext, lang := range disc.Languages {
			for _, allowed := range cfg.Indexing.Languages {
				if lang == allowed {
					langs[ext] = lang
				}
			}
		}
		disc.Languages = langs
	}

	distance := vectorstore.Distance(cfg.VectorStore.DistanceMetric)
	if distance == "" {
		distance = vectorstore.DistanceCosine
	}

	idxCfg := indexer.Config{
		RootDir:             cfg.Codebase.Path,
		Collection:          cfg.VectorStore.CollectionName,
		Distance:            distance,
		EnableFileWatch:     cfg.Indexing.WatchFiles,
		EnableBranchWatch:   cfg.Indexing.WatchBranches && cfg.Git.WatchBranches,
		FileWatchDebounce:   time.Duration(cfg.Indexing.WatchDebounceMS) * time.Millisecond,
		AutoIndex:           cfg.Indexing.AutoIndex,
		IndependentIndexing: cfg.MultiWorkspace.IndependentIndexing,
		Concurrency:         cfg.Indexing.Concurrency,
	}
	idx, err := indexer.New(idxCfg, p, emb, store, store, filter)
	if err != nil {
		return errs.Wrap(errs.Indexing, "orchestrator: build indexer", err)
	}

	g := graph.New()
	searcher := search.New(emb, store, cfg.VectorStore.CollectionName, cfg.Codebase.Path, g)

	var cache *resultcache.Cache
	if cfg.Search.EnableCache {
		cache, err = resultcache.New()
		if err != nil {
			return errs.Wrap(errs.Storage, "orchestrator: build result cache", err)
		}
		cache.MaxSize = cfg.Search.CacheSize
		cache.TTL = time.Duration(cfg.Search.CacheTTLMS) * time.Millisecond
	}

	o.cfg = cfg
	o.embedder = emb
	o.store = store
	o.parserInst = p
	o.filter = filter
	o.discoverer = disc
	o.idx = idx
	o.searcher = searcher
	o.graph = g
	o.cache = cache
	return nil
}

// Initialize validates every collaborator (embedder health, vector
// store reachability) then brings the indexer up, matching the
// contract's "validates collaborators on init".
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.RLock()
	idx, emb, store := o.idx, o.embedder, o.store
	o.mu.RUnlock()

	if err := emb.HealthCheck(ctx); err != nil {
		return errs.Wrap(errs.Embedding, "orchestrator: embedder health check failed", err)
	}
	if _, err := store.List(ctx); err != nil {
		return errs.Wrap(errs.Storage, "orchestrator: vector store unreachable", err)
	}
	if err := idx.Initialize(ctx); err != nil {
		return errs.Wrap(errs.Indexing, "orchestrator: initialize indexer", err)
	}
	return nil
}

// IndexAll delegates to the indexer, then best-effort rebuilds the call
// graph used for find_similar's related-symbols enrichment (§12.1,
// §12.3). Graph rebuild failures are logged, never surfaced — the
// graph is optional by contract.
func (o *Orchestrator) IndexAll(ctx context.Context, opts indexer.IndexAllOptions) error {
	o.mu.RLock()
	idx := o.idx
	o.mu.RUnlock()

	if err := idx.IndexAll(ctx, opts); err != nil {
		return err
	}
	o.rebuildGraph(ctx)
	return nil
}

// HandleChange delegates to the indexer.
func (o *Orchestrator) HandleChange(ev indexer.ChangeEvent) {
	o.mu.RLock()
	idx := o.idx
	o.mu.RUnlock()
	idx.HandleChange(ev)
}

// Stop tears down the indexer.
func (o *Orchestrator) Stop() error {
	o.mu.RLock()
	idx := o.idx
	o.mu.RUnlock()
	return idx.Stop()
}

// GetState reports the indexer's current state.
func (o *Orchestrator) GetState() indexer.State {
	o.mu.RLock()
	idx := o.idx
	o.mu.RUnlock()
	return idx.GetState()
}

// Config returns a copy of the live configuration, for callers (the
// tool dispatcher's configure_indexer) that need to mutate a section
// and feed the result back through Reconfigure.
func (o *Orchestrator) Config() config.Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return *o.cfg
}

// StatusManager exposes the indexer's status Manager so callers (the
// CLI's progress reporter) can subscribe to state transitions without
// the orchestrator giving up exclusive ownership of the indexer
// itself.
func (o *Orchestrator) StatusManager() *status.Manager {
	o.mu.RLock()
	idx := o.idx
	o.mu.RUnlock()
	return idx.Status()
}

// Search runs a cache-checked semantic search, ranking matches before
// returning them (spec.md §4.11, §4.12; §4.14's cache sits in front).
func (o *Orchestrator) Search(ctx context.Context, q search.Query) ([]search.Ranked, error) {
	o.mu.RLock()
	searcher, cache := o.searcher, o.cache
	o.mu.RUnlock()

	var key string
	if cache != nil {
		key = resultcache.Key(q.Text, q.Limit, q.ScoreThreshold, q.FileTypes, q.Paths, q.Languages, q.IncludeContext)
		if cached, ok := cache.Get(key); ok {
			if ranked, ok := cached.([]search.Ranked); ok {
				return ranked, nil
			}
		}
	}

	results, err := searcher.Search(ctx, q)
	if err != nil {
		return nil, errs.Wrap(errs.Search, "orchestrator: search", err)
	}
	ranked := search.Rank(results, search.RankOptions{Query: q.Text})

	if cache != nil {
		cache.Set(key, ranked)
	}
	return ranked, nil
}

// FindSimilar delegates to the searcher and ranks the results.
func (o *Orchestrator) FindSimilar(ctx context.Context, file string, line, limit int) ([]search.Ranked, error) {
	o.mu.RLock()
	searcher := o.searcher
	o.mu.RUnlock()

	results, err := searcher.FindSimilar(ctx, file, line, limit)
	if err != nil {
		return nil, errs.Wrap(errs.Search, "orchestrator: find_similar", err)
	}
	return search.Rank(results, search.RankOptions{}), nil
}

// ClearIndex deletes and recreates the collection, preserving vector
// size, and resets the indexer's status (spec.md §6.1 clear_index).
func (o *Orchestrator) ClearIndex(ctx context.Context) error {
	o.mu.RLock()
	store, collection := o.store, o.cfg.VectorStore.CollectionName
	cache, idx := o.cache, o.idx
	o.mu.RUnlock()

	if err := store.Clear(ctx, collection); err != nil {
		return errs.Wrap(errs.Storage, "orchestrator: clear_index", err)
	}
	if cache != nil {
		cache.Clear()
	}
	if idx != nil {
		mgr := idx.Status()
		mgr.Transition(status.StateStandby)
		mgr.SetProgress(status.Progress{})
		mgr.SetStats(status.Stats{Languages: map[string]int{}, FileTypes: map[string]int{}})
	}
	return nil
}

// ValidateComponent runs health probes for component (spec.md §6.1
// validate_config): "qdrant" probes the vector store, "embedder" runs
// a one-shot embed("test query") timing, "all" runs both.
func (o *Orchestrator) ValidateComponent(ctx context.Context, component string) error {
	o.mu.RLock()
	emb, store := o.embedder, o.store
	o.mu.RUnlock()

	switch component {
	case ComponentVectorStore:
		_, err := store.List(ctx)
		return err
	case ComponentEmbedder:
		start := time.Now()
		_, err := emb.Embed(ctx, "test query")
		o.logger.Printf("embedder probe took %s", time.Since(start))
		return err
	case ComponentAll, "":
		if err := o.ValidateComponent(ctx, ComponentVectorStore); err != nil {
			return err
		}
		return o.ValidateComponent(ctx, ComponentEmbedder)
	default:
		return errs.New(errs.Validation, fmt.Sprintf("orchestrator: unknown component %q", component))
	}
}

// Reconfigure is the single path for applying a new configuration
// (spec.md §6.1 configure_indexer): it validates newCfg, builds every
// collaborator from it as a candidate, health-checks the candidate's
// embedder and vector store, swaps the candidate in under the write
// lock, then stops the previous indexer and initializes the new one.
// A validation, build or health-check failure leaves the previous
// configuration untouched.
func (o *Orchestrator) Reconfigure(ctx context.Context, newCfg *config.Config) error {
	if err := config.Validate(newCfg); err != nil {
		return errs.Wrap(errs.Configuration, "orchestrator: reconfigure: invalid config", err)
	}

	candidate := &Orchestrator{logger: o.logger}
	if err := candidate.build(newCfg); err != nil {
		return err
	}
	if err := candidate.embedder.HealthCheck(ctx); err != nil {
		return errs.Wrap(errs.Embedding, "orchestrator: reconfigure: embedder health check failed", err)
	}
	if _, err := candidate.store.List(ctx); err != nil {
		return errs.Wrap(errs.Storage, "orchestrator: reconfigure: vector store unreachable", err)
	}

	o.mu.Lock()
	old := o.idx
	o.cfg = candidate.cfg
	o.embedder = candidate.embedder
	o.store = candidate.store
	o.parserInst = candidate.parserInst
	o.filter = candidate.filter
	o.discoverer = candidate.discoverer
	o.idx = candidate.idx
	o.searcher = candidate.searcher
	o.graph = candidate.graph
	o.cache = candidate.cache
	o.mu.Unlock()

	if old != nil {
		if err := old.Stop(); err != nil {
			o.logger.Printf("warning: stop previous indexer during reconfigure: %v", err)
		}
	}
	return o.Initialize(ctx)
}

// rebuildGraph walks the codebase, parses every discovered file, and
// reloads the call graph (§12.1, §12.3). Best-effort: any failure is
// logged and the graph is simply left at its previous state, since the
// search path treats a stale or empty graph as valid.
func (o *Orchestrator) rebuildGraph(ctx context.Context) {
	o.mu.RLock()
	disc, p, g, root := o.discoverer, o.parserInst, o.graph, o.cfg.Codebase.Path
	o.mu.RUnlock()

	result, err := disc.Discover(ctx, root)
	if err != nil {
		o.logger.Printf("warning: rebuild graph: discover: %v", err)
		return
	}

	var all []block.CodeBlock
	for _, f := range result.Files {
		blocks, err := p.ParseFile(ctx, filepath.Join(root, f))
		if err != nil {
			continue
		}
		// The parser writes the path it was given verbatim into each
		// block's File; rewrite it back to the repo-relative form so
		// graph node keys line up with the repo-relative r.File that
		// search results (and Graph.Related's lookups) use.
		for i := range blocks {
			blocks[i].File = f
		}
		all = append(all, blocks...)
	}
	if err := g.Reload(all); err != nil {
		o.logger.Printf("warning: rebuild graph: reload: %v", err)
	}
}
