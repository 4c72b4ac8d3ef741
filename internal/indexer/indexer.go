// Package indexer implements the Indexer Orchestrator (spec.md §4.10):
// it composes discovery, the file filter, the hash cache, the queue, the
// batch processor, and the file/branch watchers into index_all,
// handle_change, and handle_branch_change. Grounded on the teacher's
// internal/indexer/indexer.go composition root, which wires the same
// collaborators (discoverer, processor, watcher, change detector)
// behind a single Start/Stop/IndexAll surface.
package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sourcelens/semindex/internal/batch"
	"github.com/sourcelens/semindex/internal/block"
	"github.com/sourcelens/semindex/internal/discovery"
	"github.com/sourcelens/semindex/internal/embedder"
	"github.com/sourcelens/semindex/internal/enrich"
	"github.com/sourcelens/semindex/internal/errs"
	"github.com/sourcelens/semindex/internal/hashcache"
	"github.com/sourcelens/semindex/internal/ignore"
	"github.com/sourcelens/semindex/internal/parser"
	"github.com/sourcelens/semindex/internal/quality"
	"github.com/sourcelens/semindex/internal/queue"
	"github.com/sourcelens/semindex/internal/status"
	"github.com/sourcelens/semindex/internal/vectorstore"
	"github.com/sourcelens/semindex/internal/watcher"
)

// drainBatchSize is next_batch's n (spec.md §4.10 step 5).
const drainBatchSize = 20

// betweenBatchesPause is the pause between drained batches (spec.md
// §4.10 step 5).
const betweenBatchesPause = 50 * time.Millisecond

// Config is the Indexer's construction-time configuration, normally
// populated from internal/config.Config.
type Config struct {
	RootDir    string
	Collection string
	Distance   vectorstore.Distance

	EnableFileWatch    bool
	EnableBranchWatch  bool
	FileWatchDebounce  time.Duration
	BranchPollInterval time.Duration

	// Concurrency bounds the batch processor's file worker pool (spec.md
	// §6.2 indexing.concurrency). Zero uses batch.DefaultConcurrency.
	Concurrency int

	// AutoIndex gates the collection auto-repair reindex on a dimension
	// mismatch (SPEC_FULL.md §12.2).
	AutoIndex bool
	// IndependentIndexing enables the branch-keyed hash-cache
	// persistence layered on top of the in-memory cache (SPEC_FULL.md
	// §12.4).
	IndependentIndexing bool
	BranchCacheDBPath   string
}

// ChangeEvent is a single watcher-observed change, passed to
// HandleChange.
type ChangeEvent struct {
	File string
	Op   watcher.Op
}

// IndexAllOptions parametrizes IndexAll.
type IndexAllOptions struct {
	Force bool
}

// State is a point-in-time snapshot returned by GetState (spec.md §3
// IndexerState).
type State struct {
	IsRunning     bool
	IsWatching    bool
	CurrentBranch string
	QueueSize     int
	Progress      status.Progress
	Stats         status.Stats
	Errors        []status.ErrorEntry
}

// Indexer composes the Indexing Queue, the Batch Processor, the File
// Hash Cache, and the watchers into the index_all / handle_change /
// handle_branch_change contract. It exclusively owns the queue,
// processor, and batcher (spec.md §3 Ownership).
type Indexer struct {
	cfg Config

	discoverer  *discovery.Discoverer
	hashes      *hashcache.Cache
	branchStore *hashcache.BranchStore
	queue       *queue.Queue
	processor   *batch.Processor
	collections vectorstore.CollectionManager
	embedder    embedder.Provider

	fileWatcher   *watcher.FileWatcher
	branchWatcher *watcher.BranchWatcher
	status        *status.Manager

	mu            sync.Mutex
	currentBranch string
}

// New constructs an Indexer. filter may be nil to disable ignore-pattern
// filtering.
func New(cfg Config, p *parser.Parser, emb embedder.Provider, store vectorstore.VectorStore, collections vectorstore.CollectionManager, filter *ignore.Filter) (*Indexer, error) {
	if cfg.Collection == "" {
		cfg.Collection = "code"
	}
	if cfg.Distance == "" {
		cfg.Distance = vectorstore.DistanceCosine
	}

	upserter := storeAdapter{store: store, collection: cfg.Collection}
	deleter := deleterAdapter{store: store, collection: cfg.Collection}
	enricher := func(b *block.CodeBlock) string { return enrich.Enrich(b, enrich.FormatStructured, enrich.Facets{}) }
	batcher := batch.NewBatcher(emb, upserter, quality.IsHighQuality, enricher)
	processor := batch.NewProcessor(rootedParser{root: cfg.RootDir, inner: p}, batcher, deleter, nil)
	if cfg.Concurrency > 0 {
		processor.Concurrency = cfg.Concurrency
	}

	ix := &Indexer{
		cfg:           cfg,
		discoverer:    discovery.New(filter),
		hashes:        hashcache.New(),
		queue:         queue.New(),
		processor:     processor,
		collections:   collections,
		embedder:      emb,
		status:        status.New(),
		currentBranch: hashcache.CurrentBranch(cfg.RootDir),
	}

	if cfg.EnableFileWatch {
		fw := watcher.New(cfg.RootDir, filter)
		if cfg.FileWatchDebounce > 0 {
			fw.Debounce = cfg.FileWatchDebounce
		}
		fw.OnChange = func(changes []watcher.Change) {
			for _, c := range changes {
				ix.HandleChange(ChangeEvent{File: c.Path, Op: c.Op})
			}
		}
		fw.OnError = func(err error) { ix.status.RecordError("", err) }
		ix.fileWatcher = fw
	}

	if cfg.EnableBranchWatch {
		bw := watcher.NewBranchWatcher(cfg.RootDir)
		if cfg.BranchPollInterval > 0 {
			bw.Interval = cfg.BranchPollInterval
		}
		bw.OnBranchChange = ix.HandleBranchChange
		ix.branchWatcher = bw
	}

	if cfg.IndependentIndexing {
		path := cfg.BranchCacheDBPath
		if path == "" {
			path = filepath.Join(cfg.RootDir, ".semindex", "branches.db")
		}
		bs, err := hashcache.OpenBranchStore(path)
		if err != nil {
			return nil, fmt.Errorf("indexer: open branch store: %w", err)
		}
		ix.branchStore = bs
	}

	return ix, nil
}

// Status exposes the underlying status Manager so callers (the
// orchestrator, the MCP tool dispatcher) can add listeners or read
// snapshots directly.
func (ix *Indexer) Status() *status.Manager { return ix.status }

// Initialize ensures the collection exists with the embedder's
// dimensions, auto-repairing a dimension mismatch (SPEC_FULL.md §12.2),
// loads the branch-keyed hash cache if enabled, and starts the
// watchers (spec.md §4.10).
func (ix *Indexer) Initialize(ctx context.Context) error {
	dim := ix.embedder.Config().Dimensions

	exists, err := ix.collections.Exists(ctx, ix.cfg.Collection)
	if err != nil {
		return errs.Wrap(errs.Storage, "indexer: check collection existence", err)
	}

	if !exists {
		if err := ix.collections.Create(ctx, ix.cfg.Collection, dim, ix.cfg.Distance); err != nil {
			return errs.Wrap(errs.Storage, "indexer: create collection", err)
		}
	} else {
		info, err := ix.collections.Info(ctx, ix.cfg.Collection)
		if err != nil {
			return errs.Wrap(errs.Storage, "indexer: inspect collection", err)
		}
		if info.VectorSize != dim {
			log.Printf("indexer: collection %q vector size %d does not match embedder dimensions %d", ix.cfg.Collection, info.VectorSize, dim)
			if ix.cfg.AutoIndex {
				if err := ix.collections.Recreate(ctx, ix.cfg.Collection, dim, ix.cfg.Distance); err != nil {
					return errs.Wrap(errs.Storage, "indexer: recreate collection", err)
				}
				go func() {
					if err := ix.IndexAll(context.Background(), IndexAllOptions{Force: true}); err != nil {
						log.Printf("indexer: auto-repair reindex failed: %v", err)
					}
				}()
			}
		}
	}

	if ix.cfg.IndependentIndexing && ix.branchStore != nil {
		branch := hashcache.CurrentBranch(ix.cfg.RootDir)
		if err := ix.branchStore.LoadInto(branch, ix.hashes); err != nil {
			log.Printf("indexer: load branch hash cache for %q: %v", branch, err)
		}
		ix.setCurrentBranch(branch)
	}

	if ix.fileWatcher != nil {
		if err := ix.fileWatcher.Start(ctx); err != nil {
			return errs.Wrap(errs.FileSystem, "indexer: start file watcher", err)
		}
	}
	if ix.branchWatcher != nil {
		ix.branchWatcher.Start(ctx)
	}
	return nil
}

// IndexAll runs a full (or incremental, if !Force) indexing pass
// (spec.md §4.10 index_all).
func (ix *Indexer) IndexAll(ctx context.Context, opts IndexAllOptions) error {
	if !ix.status.Transition(status.StateIndexing) {
		return errs.New(errs.Indexing, "index_all: already running")
	}
	runID := uuid.New().String()
	start := time.Now()
	ix.status.SetProgress(status.Progress{StartTime: start})
	log.Printf("indexer: index_all run=%s started root=%s force=%t", runID, ix.cfg.RootDir, opts.Force)

	disc, err := ix.discoverer.Discover(ctx, ix.cfg.RootDir)
	if err != nil {
		ix.status.RecordError("", err)
		ix.status.Transition(status.StateError)
		return errs.Wrap(errs.Indexing, "index_all: discover", err)
	}

	files := disc.Files
	if !opts.Force {
		files = ix.filterUnchanged(files)
	}
	ix.queue.AddBatch(files, 1, queue.ReasonInitial)

	languages, fileTypes := ix.classify(disc.Files)

	ix.runDrainLoop(ctx, start)

	if err := ix.refreshStats(ctx, start, languages, fileTypes); err != nil {
		ix.status.RecordError("", err)
		ix.status.Transition(status.StateError)
		log.Printf("indexer: index_all run=%s failed: %v", runID, err)
		return errs.Wrap(errs.Indexing, "index_all: refresh stats", err)
	}
	ix.status.Transition(status.StateIndexed)
	log.Printf("indexer: index_all run=%s completed in %s", runID, time.Since(start))
	return nil
}

// HandleChange enqueues or removes a single watcher-observed change
// (spec.md §4.10 handle_change).
func (ix *Indexer) HandleChange(ev ChangeEvent) {
	switch ev.Op {
	case watcher.OpRemove:
		if err := ix.processor.DeleteFile(context.Background(), ev.File); err != nil {
			ix.status.RecordError(ev.File, err)
		}
		ix.hashes.Forget(ev.File)
	case watcher.OpAdd:
		ix.queue.Add(ev.File, 2, queue.ReasonCreated)
		ix.maybeDrain()
	case watcher.OpChange:
		ix.queue.Add(ev.File, 2, queue.ReasonModified)
		ix.maybeDrain()
	}
}

// HandleBranchChange persists/reloads the branch-keyed hash cache (if
// enabled) and triggers a non-forced reindex (spec.md §4.10
// handle_branch_change).
func (ix *Indexer) HandleBranchChange(old, new string) {
	log.Printf("indexer: branch changed %s -> %s", old, new)
	ix.setCurrentBranch(new)

	if ix.cfg.IndependentIndexing && ix.branchStore != nil {
		if err := ix.branchStore.Persist(old, ix.hashes); err != nil {
			log.Printf("indexer: persist hash cache for branch %q: %v", old, err)
		}
		ix.hashes = hashcache.New()
		if err := ix.branchStore.LoadInto(new, ix.hashes); err != nil {
			log.Printf("indexer: load hash cache for branch %q: %v", new, err)
		}
	}

	go func() {
		if err := ix.IndexAll(context.Background(), IndexAllOptions{}); err != nil {
			log.Printf("indexer: branch-switch reindex: %v", err)
		}
	}()
}

// Stop stops the watchers and, if branch-keyed persistence is enabled,
// flushes the hash cache before closing the store.
func (ix *Indexer) Stop() error {
	if ix.fileWatcher != nil {
		if err := ix.fileWatcher.Stop(); err != nil {
			return errs.Wrap(errs.FileSystem, "indexer: stop file watcher", err)
		}
	}
	if ix.branchWatcher != nil {
		ix.branchWatcher.Stop()
	}
	if ix.branchStore != nil {
		if err := ix.branchStore.Persist(ix.CurrentBranch(), ix.hashes); err != nil {
			log.Printf("indexer: persist hash cache on stop: %v", err)
		}
		return ix.branchStore.Close()
	}
	return nil
}

// GetState returns a point-in-time snapshot (spec.md §4.10 get_state,
// §3 IndexerState).
func (ix *Indexer) GetState() State {
	return State{
		IsRunning:     ix.status.State() == status.StateIndexing,
		IsWatching:    ix.fileWatcher != nil && ix.fileWatcher.IsActive(),
		CurrentBranch: ix.CurrentBranch(),
		QueueSize:     ix.queue.Size(),
		Progress:      ix.status.Progress(),
		Stats:         ix.status.Stats(),
		Errors:        ix.status.Errors(),
	}
}

// CurrentBranch returns the last-observed branch name.
func (ix *Indexer) CurrentBranch() string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.currentBranch
}

func (ix *Indexer) setCurrentBranch(branch string) {
	ix.mu.Lock()
	ix.currentBranch = branch
	ix.mu.Unlock()
}

// maybeDrain starts a background drain if the indexer is currently
// idle; if one is already running, the newly queued task will be picked
// up by it (spec.md §4.10: "trigger a drain if idle").
func (ix *Indexer) maybeDrain() {
	if !ix.status.Transition(status.StateIndexing) {
		return
	}
	go func() {
		start := time.Now()
		ix.status.SetProgress(status.Progress{StartTime: start})
		ix.runDrainLoop(context.Background(), start)
		if err := ix.refreshStats(context.Background(), start, nil, nil); err != nil {
			ix.status.RecordError("", err)
			ix.status.Transition(status.StateError)
			return
		}
		ix.status.Transition(status.StateIndexed)
	}()
}

// runDrainLoop repeatedly pulls next_batch-sized batches until the
// queue is empty, pausing betweenBatchesPause between batches (spec.md
// §4.10 index_all step 5).
func (ix *Indexer) runDrainLoop(ctx context.Context, start time.Time) int {
	processed := 0
	for {
		n := ix.drainOnce(ctx, drainBatchSize, &processed, start)
		if n == 0 {
			return processed
		}
		select {
		case <-ctx.Done():
			return processed
		case <-time.After(betweenBatchesPause):
		}
	}
}

// drainOnce pulls at most n tasks from the queue and processes them
// concurrently, bounded by the processor's configured concurrency,
// recording completion/failure and updating progress per task.
func (ix *Indexer) drainOnce(ctx context.Context, n int, processed *int, start time.Time) int {
	tasks := ix.queue.NextBatch(n)
	if len(tasks) == 0 {
		return 0
	}

	concurrency := ix.processor.Concurrency
	if concurrency <= 0 {
		concurrency = batch.DefaultConcurrency
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, task := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(t queue.Task) {
			defer wg.Done()
			defer func() { <-sem }()

			res := ix.processor.ProcessFile(ctx, t.File)
			if res.Success {
				if mtimeMs, size, serr := statFingerprint(ix.cfg.RootDir, t.File); serr == nil {
					ix.hashes.Record(t.File, mtimeMs, size)
				}
				ix.queue.Complete(t.File)
			} else {
				ix.status.RecordError(t.File, res.Error)
				ix.queue.Fail(t.File, res.Error)
			}

			mu.Lock()
			*processed++
			p := *processed
			mu.Unlock()

			qs := ix.queue.Stats()
			ix.status.SetProgress(status.Progress{
				FilesProcessed: p,
				FilesTotal:     p + qs.Waiting + qs.InFlight,
				CurrentFile:    t.File,
				StartTime:      start,
			})
		}(task)
	}
	wg.Wait()
	return len(tasks)
}

// filterUnchanged drops files whose (mtime, size) fingerprint matches
// the hash cache's last-seen record (spec.md §4.10 index_all step 3).
// A file that cannot be stat'd is dropped rather than indexed, since it
// most likely vanished between discovery and this check.
func (ix *Indexer) filterUnchanged(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		mtimeMs, size, err := statFingerprint(ix.cfg.RootDir, f)
		if err != nil {
			continue
		}
		if ix.hashes.Changed(f, mtimeMs, size) {
			out = append(out, f)
		}
	}
	return out
}

// classify tallies language and file-extension counts over files, for
// the Stats snapshot (spec.md §3 Stats).
func (ix *Indexer) classify(files []string) (languages, fileTypes map[string]int) {
	languages = make(map[string]int)
	fileTypes = make(map[string]int)
	for _, f := range files {
		ext := filepath.Ext(f)
		fileTypes[ext]++
		if lang, ok := ix.discoverer.Languages[ext]; ok {
			languages[lang]++
		}
	}
	return languages, fileTypes
}

// refreshStats pulls the collection's current point count and combines
// it with queue/hash-cache bookkeeping into a Stats snapshot (spec.md
// §4.10 index_all step 6). A nil languages/fileTypes reuses the
// previously recorded maps, for incremental drains that did not
// re-classify the whole tree.
func (ix *Indexer) refreshStats(ctx context.Context, start time.Time, languages, fileTypes map[string]int) error {
	info, err := ix.collections.Info(ctx, ix.cfg.Collection)
	if err != nil {
		return err
	}

	prev := ix.status.Stats()
	if languages == nil {
		languages = prev.Languages
	}
	if fileTypes == nil {
		fileTypes = prev.FileTypes
	}

	totalFiles := ix.hashes.Len()
	avgBlocks := 0.0
	if totalFiles > 0 {
		avgBlocks = float64(info.PointsCount) / float64(totalFiles)
	}

	qs := ix.queue.Stats()
	failureRate := 0.0
	if attempted := qs.Completed + qs.Failed; attempted > 0 {
		failureRate = float64(qs.Failed) / float64(attempted) * 100
	}

	now := time.Now()
	ix.status.SetStats(status.Stats{
		TotalBlocks:        info.PointsCount,
		TotalVectors:       info.PointsCount,
		TotalFiles:         totalFiles,
		Languages:          languages,
		FileTypes:          fileTypes,
		LastIndexed:        &now,
		IndexingTimeMS:     time.Since(start).Milliseconds(),
		AvgBlocksPerFile:   avgBlocks,
		FailureRatePercent: failureRate,
	})
	return nil
}

func statFingerprint(root, file string) (mtimeMs, size int64, err error) {
	info, err := os.Stat(filepath.Join(root, file))
	if err != nil {
		return 0, 0, err
	}
	return info.ModTime().UnixMilli(), info.Size(), nil
}
