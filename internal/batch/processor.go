package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcelens/semindex/internal/block"
)

// DefaultConcurrency is the default worker-pool size for process_batch.
const DefaultConcurrency = 3

// DefaultChunkSize is the default fixed chunk size for process_chunked.
const DefaultChunkSize = 20

// QuiescencePause is the pause between chunks in process_chunked
// (spec.md §4.7).
const QuiescencePause = 100 * time.Millisecond

// Parser is the capability the processor needs from internal/parser: it
// turns a file's source into blocks.
type Parser interface {
	ParseFile(ctx context.Context, file string) ([]block.CodeBlock, error)
}

// Deleter is the capability the processor needs from internal/vectorstore
// to support delete_file.
type Deleter interface {
	DeleteByFile(ctx context.Context, canonicalFile string) error
}

// FileResult is the outcome of process_file for one file.
type FileResult struct {
	Success       bool
	BlocksIndexed int
	DurationMS    int64
	Error         error
}

// BatchResult aggregates process_batch / process_chunked outcomes.
type BatchResult struct {
	Total       int
	Successful  int
	Failed      int
	TotalBlocks int
	DurationMS  int64
	Errors      []error
}

// Processor drives files through parse -> batch -> flush.
type Processor struct {
	Concurrency int
	ChunkSize   int

	parser  Parser
	batcher *Batcher
	deleter Deleter

	canonicalFile func(file string) string
}

// NewProcessor constructs a Processor with spec.md §4.7 defaults.
// canonicalFile resolves a relative path to the form stored in
// payload.file; if nil, the identity function is used.
func NewProcessor(parser Parser, batcher *Batcher, deleter Deleter, canonicalFile func(string) string) *Processor {
	if canonicalFile == nil {
		canonicalFile = func(f string) string { return f }
	}
	return &Processor{
		Concurrency:   DefaultConcurrency,
		ChunkSize:     DefaultChunkSize,
		parser:        parser,
		batcher:       batcher,
		deleter:       deleter,
		canonicalFile: canonicalFile,
	}
}

// ProcessFile parses file, adds its blocks to the batcher, and flushes
// if the watermark is reached.
func (p *Processor) ProcessFile(ctx context.Context, file string) FileResult {
	start := time.Now()

	blocks, err := p.parser.ParseFile(ctx, file)
	if err != nil {
		return FileResult{Error: fmt.Errorf("process_file %s: parse: %w", file, err), DurationMS: time.Since(start).Milliseconds()}
	}

	p.batcher.AddBlocks(file, blocks)

	if p.batcher.ShouldFlush() {
		if err := p.batcher.Flush(ctx); err != nil {
			return FileResult{Error: fmt.Errorf("process_file %s: flush: %w", file, err), DurationMS: time.Since(start).Milliseconds()}
		}
	}

	return FileResult{
		Success:       true,
		BlocksIndexed: len(blocks),
		DurationMS:    time.Since(start).Milliseconds(),
	}
}

// ProcessBatch runs a worker pool of size Concurrency over files, each
// worker pulling from a shared cursor, and flushes any remainder once
// every file has been attempted.
func (p *Processor) ProcessBatch(ctx context.Context, files []string) BatchResult {
	start := time.Now()
	result := BatchResult{Total: len(files)}
	if len(files) == 0 {
		return result
	}

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var cursor int64 = -1
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := atomic.AddInt64(&cursor, 1)
				if int(idx) >= len(files) {
					return
				}
				fr := p.ProcessFile(ctx, files[idx])

				mu.Lock()
				if fr.Success {
					result.Successful++
					result.TotalBlocks += fr.BlocksIndexed
				} else {
					result.Failed++
					result.Errors = append(result.Errors, fr.Error)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := p.batcher.Flush(ctx); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("process_batch: final flush: %w", err))
	}

	result.DurationMS = time.Since(start).Milliseconds()
	return result
}

// ProcessChunked splits files into fixed-size chunks and processes them
// sequentially via ProcessBatch, pausing QuiescencePause between chunks.
func (p *Processor) ProcessChunked(ctx context.Context, files []string) BatchResult {
	start := time.Now()
	chunkSize := p.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var agg BatchResult
	for i := 0; i < len(files); i += chunkSize {
		end := i + chunkSize
		if end > len(files) {
			end = len(files)
		}
		chunk := files[i:end]

		r := p.ProcessBatch(ctx, chunk)
		agg.Total += r.Total
		agg.Successful += r.Successful
		agg.Failed += r.Failed
		agg.TotalBlocks += r.TotalBlocks
		agg.Errors = append(agg.Errors, r.Errors...)

		if end < len(files) {
			select {
			case <-ctx.Done():
				agg.DurationMS = time.Since(start).Milliseconds()
				return agg
			case <-time.After(QuiescencePause):
			}
		}
	}

	agg.DurationMS = time.Since(start).Milliseconds()
	return agg
}

// DeleteFile removes every vector-store point whose payload.file matches
// file's canonical form.
func (p *Processor) DeleteFile(ctx context.Context, file string) error {
	return p.deleter.DeleteByFile(ctx, p.canonicalFile(file))
}
