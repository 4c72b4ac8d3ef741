package indexer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/embedder"
	"github.com/sourcelens/semindex/internal/ignore"
	"github.com/sourcelens/semindex/internal/parser"
	"github.com/sourcelens/semindex/internal/status"
	"github.com/sourcelens/semindex/internal/vectorstore/chromem"
	"github.com/sourcelens/semindex/internal/watcher"
)

func newTestIndexer(t *testing.T, root string) *Indexer {
	t.Helper()
	p := parser.New(parser.Options{})
	emb := embedder.NewMockProvider(8)
	store := chromem.New()

	cfg := Config{RootDir: root, Collection: "code"}
	ix, err := New(cfg, p, emb, store, store, ignore.New())
	require.NoError(t, err)
	return ix
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestInitializeCreatesCollection(t *testing.T) {
	root := t.TempDir()
	ix := newTestIndexer(t, root)

	require.NoError(t, ix.Initialize(t.Context()))

	info, err := ix.collections.Info(t.Context(), "code")
	require.NoError(t, err)
	assert.Equal(t, 8, info.VectorSize)
}

func TestIndexAllIndexesDiscoveredFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc Hello() string {\n\treturn \"hi\"\n}\n")
	ix := newTestIndexer(t, root)
	require.NoError(t, ix.Initialize(t.Context()))

	require.NoError(t, ix.IndexAll(t.Context(), IndexAllOptions{}))

	assert.Equal(t, status.StateIndexed, ix.status.State())
	assert.Greater(t, ix.GetState().Stats.TotalVectors, 0)
}

func TestIndexAllRejectsConcurrentRun(t *testing.T) {
	root := t.TempDir()
	ix := newTestIndexer(t, root)
	require.NoError(t, ix.Initialize(t.Context()))

	require.True(t, ix.status.Transition(status.StateIndexing))
	err := ix.IndexAll(t.Context(), IndexAllOptions{})
	require.Error(t, err)
}

func TestIndexAllSkipsUnchangedFilesWithoutForce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc Hello() string { return \"hi\" }\n")
	ix := newTestIndexer(t, root)
	require.NoError(t, ix.Initialize(t.Context()))
	require.NoError(t, ix.IndexAll(t.Context(), IndexAllOptions{}))

	firstCount := ix.GetState().Stats.TotalVectors

	require.NoError(t, ix.IndexAll(t.Context(), IndexAllOptions{}))
	assert.Equal(t, firstCount, ix.GetState().Stats.TotalVectors)
}

func TestHandleChangeRemoveDeletesPointsAndForgetsHash(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc Hello() string { return \"hi\" }\n")
	ix := newTestIndexer(t, root)
	require.NoError(t, ix.Initialize(t.Context()))
	require.NoError(t, ix.IndexAll(t.Context(), IndexAllOptions{}))

	infoBefore, err := ix.collections.Info(t.Context(), "code")
	require.NoError(t, err)
	require.Greater(t, infoBefore.PointsCount, 0)

	ix.HandleChange(ChangeEvent{File: "main.go", Op: watcher.OpRemove})

	assert.True(t, ix.hashes.Changed("main.go", 1, 1))

	infoAfter, err := ix.collections.Info(t.Context(), "code")
	require.NoError(t, err)
	assert.Equal(t, 0, infoAfter.PointsCount, "removing a file must delete its points from the vector store")
}

func TestGetStateReportsQueueSize(t *testing.T) {
	root := t.TempDir()
	ix := newTestIndexer(t, root)
	ix.queue.Add("a.go", 1, "initial")
	ix.queue.Add("b.go", 1, "initial")

	state := ix.GetState()
	assert.Equal(t, 2, state.QueueSize)
}

func TestIndexAllTracksElapsedTime(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc Hello() string { return \"hi\" }\n")
	ix := newTestIndexer(t, root)
	require.NoError(t, ix.Initialize(t.Context()))
	require.NoError(t, ix.IndexAll(t.Context(), IndexAllOptions{}))

	assert.GreaterOrEqual(t, ix.GetState().Stats.IndexingTimeMS, int64(0))
	assert.WithinDuration(t, time.Now(), *ix.GetState().Stats.LastIndexed, time.Minute)
}
