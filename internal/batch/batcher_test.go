package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/block"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail {
		return nil, errors.New("embedding provider unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

type fakeStore struct {
	mu     sync.Mutex
	points []block.Point
}

func (f *fakeStore) UpsertBatch(_ context.Context, points []block.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, points...)
	return nil
}

func sampleBlocks(n int) []block.CodeBlock {
	blocks := make([]block.CodeBlock, n)
	for i := range blocks {
		blocks[i] = block.CodeBlock{
			File:    "a.go",
			Line:    i + 1,
			EndLine: i + 2,
			Code:    "func f() {}",
			Type:    block.TypeFunction,
			Name:    "f",
		}
	}
	return blocks
}

func TestShouldFlushAtWatermark(t *testing.T) {
	b := NewBatcher(&fakeEmbedder{}, &fakeStore{}, nil, nil)
	b.MaxBlocksPerBatch = 3
	b.AddBlocks("a.go", sampleBlocks(2))
	assert.False(t, b.ShouldFlush())
	b.AddBlocks("a.go", sampleBlocks(1))
	assert.True(t, b.ShouldFlush())
}

func TestFlushProducesOnePointPerBlockAndChunksUpserts(t *testing.T) {
	store := &fakeStore{}
	b := NewBatcher(&fakeEmbedder{}, store, nil, nil)
	b.MaxPointsPerUpsert = 2
	b.AddBlocks("a.go", sampleBlocks(5))

	require.NoError(t, b.Flush(context.Background()))
	assert.Len(t, store.points, 5)
	assert.Equal(t, 0, b.PendingCount())
}

func TestFlushIsIdempotentByPointID(t *testing.T) {
	store := &fakeStore{}
	b := NewBatcher(&fakeEmbedder{}, store, nil, nil)
	b.AddBlocks("a.go", sampleBlocks(1))
	require.NoError(t, b.Flush(context.Background()))

	b.AddBlocks("a.go", sampleBlocks(1))
	require.NoError(t, b.Flush(context.Background()))

	require.Len(t, store.points, 2)
	assert.Equal(t, store.points[0].ID, store.points[1].ID)
}

func TestFlushClearsPendingOnEmbedError(t *testing.T) {
	b := NewBatcher(&fakeEmbedder{fail: true}, &fakeStore{}, nil, nil)
	b.AddBlocks("a.go", sampleBlocks(2))

	err := b.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, b.PendingCount())
}

func TestAddBlocksAppliesQualityGate(t *testing.T) {
	b := NewBatcher(&fakeEmbedder{}, &fakeStore{}, func(code string, _ block.Type, _ string) bool {
		return code != "func f() {}"
	}, nil)
	b.AddBlocks("a.go", sampleBlocks(2))
	assert.Equal(t, 0, b.PendingCount())
}
