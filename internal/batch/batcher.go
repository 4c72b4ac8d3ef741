// Package batch implements the Cross-File Batcher and Batch Processor
// (spec.md §4.6, §4.7): it accumulates blocks across file boundaries to
// amortize embedding-provider latency, then partitions the resulting
// points into bounded upsert chunks. Grounded on the teacher's
// internal/indexer/processor.go (worker pool with a shared cursor,
// chunked processing with a quiescence pause) and
// internal/mcp/chunk_manager.go (batched load/update idiom).
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcelens/semindex/internal/block"
	"github.com/sourcelens/semindex/internal/pathseg"
)

// MaxBlocksPerBatch is the default should_flush watermark (spec.md §4.6).
const MaxBlocksPerBatch = 200

// MaxPointsPerUpsert is the default upsert chunk size (spec.md §4.6).
const MaxPointsPerUpsert = 100

// Embedder is the capability the batcher needs from internal/embedder.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Upserter is the capability the batcher needs from internal/vectorstore.
type Upserter interface {
	UpsertBatch(ctx context.Context, points []block.Point) error
}

// QualityGate decides whether a block is worth indexing.
type QualityGate func(code string, t block.Type, name string) bool

// TextEnricher produces the embeddable text for a block.
type TextEnricher func(b *block.CodeBlock) string

// pending pairs a block with the file it came from, preserving insertion
// order (spec.md §4.6).
type pending struct {
	file  string
	block block.CodeBlock
}

// Batcher accumulates blocks across files and flushes them through the
// embedder into the vector store once a watermark is reached.
type Batcher struct {
	MaxBlocksPerBatch  int
	MaxPointsPerUpsert int

	embedder Embedder
	store    Upserter
	quality  QualityGate
	enrich   TextEnricher

	items []pending
}

// NewBatcher constructs a Batcher with spec.md §4.6 defaults. quality and
// enrich may be nil to disable filtering/enrichment respectively.
func NewBatcher(embedder Embedder, store Upserter, quality QualityGate, enrich TextEnricher) *Batcher {
	return &Batcher{
		MaxBlocksPerBatch:  MaxBlocksPerBatch,
		MaxPointsPerUpsert: MaxPointsPerUpsert,
		embedder:           embedder,
		store:              store,
		quality:            quality,
		enrich:             enrich,
	}
}

// AddBlocks appends blocks for file to the pending set, applying the
// quality gate at add-time when configured.
func (b *Batcher) AddBlocks(file string, blocks []block.CodeBlock) {
	for _, blk := range blocks {
		if b.quality != nil && !b.quality(blk.Code, blk.Type, blk.Name) {
			continue
		}
		b.items = append(b.items, pending{file: file, block: blk})
	}
}

// ShouldFlush reports whether the pending count has reached the
// watermark.
func (b *Batcher) ShouldFlush() bool {
	return len(b.items) >= b.MaxBlocksPerBatch
}

// PendingCount returns the number of blocks accumulated since the last
// flush or clear.
func (b *Batcher) PendingCount() int {
	return len(b.items)
}

// Clear discards all pending blocks without writing them anywhere.
func (b *Batcher) Clear() {
	b.items = nil
}

// Flush enriches and embeds every pending block, builds one Point per
// block, and upserts them in MaxPointsPerUpsert-sized chunks. On any
// error the pending set is cleared and the error returned; the caller
// decides whether to re-enqueue the affected files (spec.md §4.6).
func (b *Batcher) Flush(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			b.items = nil
		}
	}()

	if len(b.items) == 0 {
		return nil
	}

	items := b.items
	b.items = nil

	texts := make([]string, len(items))
	for i, it := range items {
		if b.enrich != nil {
			texts[i] = b.enrich(&it.block)
		} else {
			texts[i] = it.block.Code
		}
	}

	vectors, embedErr := b.embedder.EmbedBatch(ctx, texts)
	if embedErr != nil {
		return fmt.Errorf("batch: embed_batch failed: %w", embedErr)
	}
	if len(vectors) != len(items) {
		return fmt.Errorf("batch: embedder returned %d vectors for %d texts", len(vectors), len(items))
	}

	now := time.Now()
	points := make([]block.Point, len(items))
	for i, it := range items {
		segments := pathseg.Decompose(it.file)
		points[i] = block.NewPoint(&it.block, vectors[i], segments, now)
	}

	for start := 0; start < len(points); start += b.MaxPointsPerUpsert {
		end := start + b.MaxPointsPerUpsert
		if end > len(points) {
			end = len(points)
		}
		if upsertErr := b.store.UpsertBatch(ctx, points[start:end]); upsertErr != nil {
			return fmt.Errorf("batch: upsert_batch failed: %w", upsertErr)
		}
	}

	return nil
}
