package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/block"
	"github.com/sourcelens/semindex/internal/vectorstore"
)

func samplePoint(id, file string, vec []float32) block.Point {
	return block.Point{
		ID:     id,
		Vector: vec,
		Payload: block.Payload{
			File: file,
			Type: "function",
			Name: "f",
			Code: "func f() {}",
			PathSegments: map[string]string{"0": "src", "1": "a.go"},
		},
	}
}

func TestCreateEnsureRejectsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, "code", 3, vectorstore.DistanceCosine))

	err := s.Ensure(ctx, "code", 4, vectorstore.DistanceCosine)
	assert.Error(t, err)
}

func TestUpsertBatchThenSearch(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, "code", 3, vectorstore.DistanceCosine))

	points := []block.Point{
		samplePoint("id-1", "a.go", []float32{1, 0, 0}),
		samplePoint("id-2", "b.go", []float32{0, 1, 0}),
	}
	require.NoError(t, s.UpsertBatch(ctx, "code", points))

	results, err := s.Search(ctx, "code", []float32{1, 0, 0}, vectorstore.SearchOptions{Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "id-1", results[0].ID)
}

func TestUpsertIsIdempotentOverwrite(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, "code", 3, vectorstore.DistanceCosine))

	p := samplePoint("id-1", "a.go", []float32{1, 0, 0})
	require.NoError(t, s.UpsertBatch(ctx, "code", []block.Point{p}))
	p.Payload.Name = "renamed"
	require.NoError(t, s.UpsertBatch(ctx, "code", []block.Point{p}))

	info, err := s.Info(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, 1, info.PointsCount)

	got, ok, err := s.Get(ctx, "code", "id-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Payload.Name)
}

func TestDeleteByFileRemovesMatchingPoints(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, "code", 3, vectorstore.DistanceCosine))
	require.NoError(t, s.UpsertBatch(ctx, "code", []block.Point{
		samplePoint("id-1", "a.go", []float32{1, 0, 0}),
		samplePoint("id-2", "b.go", []float32{0, 1, 0}),
	}))

	require.NoError(t, s.DeleteByFile(ctx, "code", "a.go"))

	count, err := s.Count(ctx, "code", vectorstore.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSearchExcludesMetadataType(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, "code", 3, vectorstore.DistanceCosine))

	meta := samplePoint("id-meta", "a.go", []float32{1, 0, 0})
	meta.Payload.Type = "metadata"
	require.NoError(t, s.UpsertBatch(ctx, "code", []block.Point{meta}))

	results, err := s.Search(ctx, "code", []float32{1, 0, 0}, vectorstore.SearchOptions{
		Limit: 5,
		Filter: vectorstore.Filter{
			MustNot: []vectorstore.Condition{{Field: "type", Value: "metadata"}},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClearPreservesVectorSize(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, "code", 3, vectorstore.DistanceCosine))
	require.NoError(t, s.UpsertBatch(ctx, "code", []block.Point{samplePoint("id-1", "a.go", []float32{1, 0, 0})}))

	require.NoError(t, s.Clear(ctx, "code"))

	info, err := s.Info(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, 0, info.PointsCount)
	assert.Equal(t, 3, info.VectorSize)
}
