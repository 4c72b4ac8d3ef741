package indexer

import (
	"context"
	"path/filepath"

	"github.com/sourcelens/semindex/internal/block"
	"github.com/sourcelens/semindex/internal/parser"
	"github.com/sourcelens/semindex/internal/vectorstore"
)

// rootedParser resolves the repo-relative paths the queue carries
// against the indexed tree's root before handing them to the real
// parser, which reads from the filesystem using whatever path it is
// given. The parser writes that rooted path into each block's File, so
// ParseFile rewrites it back; every other use of a task's file
// (payload.file, hash-cache keys, canonicalFile) keeps the original
// repo-relative form.
type rootedParser struct {
	root  string
	inner *parser.Parser
}

func (r rootedParser) ParseFile(ctx context.Context, file string) ([]block.CodeBlock, error) {
	blocks, err := r.inner.ParseFile(ctx, filepath.Join(r.root, file))
	if err != nil {
		return nil, err
	}
	// Every extractor writes the path it was given verbatim into
	// CodeBlock.File, so undo the rooting here to keep payload.file
	// (and everything decomposed from it downstream: path_segments,
	// delete-by-file filters, search context lookups) repo-relative.
	for i := range blocks {
		blocks[i].File = file
	}
	return blocks, nil
}

// storeAdapter binds a vectorstore.VectorStore to one collection so it
// satisfies batch.Upserter.
type storeAdapter struct {
	store      vectorstore.VectorStore
	collection string
}

func (a storeAdapter) UpsertBatch(ctx context.Context, points []block.Point) error {
	return a.store.UpsertBatch(ctx, a.collection, points)
}

// deleterAdapter binds a vectorstore.VectorStore to one collection so it
// satisfies batch.Deleter, translating delete_file into a must-filter
// delete on payload.file.
type deleterAdapter struct {
	store      vectorstore.VectorStore
	collection string
}

func (a deleterAdapter) DeleteByFile(ctx context.Context, canonicalFile string) error {
	return a.store.DeleteByFilter(ctx, a.collection, vectorstore.Filter{
		Must: []vectorstore.Condition{{Field: "file", Value: canonicalFile}},
	})
}
