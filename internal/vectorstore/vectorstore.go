// Package vectorstore defines the Collection Manager and Vector Store
// interfaces the core consumes (spec.md §4.15) and a chromem-go-backed
// in-process implementation (internal/vectorstore/chromem). Grounded on
// the teacher's internal/mcp/chromem_searcher.go.
package vectorstore

import (
	"context"

	"github.com/sourcelens/semindex/internal/block"
)

// Distance is a supported similarity metric.
type Distance string

const (
	DistanceCosine    Distance = "Cosine"
	DistanceEuclidean Distance = "Euclidean"
	DistanceDot       Distance = "Dot"
)

// CollectionStatus mirrors the vector store's reported collection health.
type CollectionStatus string

const (
	StatusGreen  CollectionStatus = "green"
	StatusYellow CollectionStatus = "yellow"
	StatusRed    CollectionStatus = "red"
)

// CollectionInfo describes a collection (spec.md §4.15 info()).
type CollectionInfo struct {
	Name                string
	VectorSize          int
	PointsCount         int
	IndexedVectorsCount int
	Status              CollectionStatus
}

// CollectionManager creates, inspects, and tears down collections.
type CollectionManager interface {
	Create(ctx context.Context, name string, vectorSize int, distance Distance) error
	DeleteCollection(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	Info(ctx context.Context, name string) (CollectionInfo, error)
	List(ctx context.Context) ([]string, error)
	// Clear deletes and recreates the collection, preserving vector size.
	Clear(ctx context.Context, name string) error
	// Ensure creates the collection if missing; fails if an existing
	// collection's vector size differs from vectorSize.
	Ensure(ctx context.Context, name string, vectorSize int, distance Distance) error
	Recreate(ctx context.Context, name string, vectorSize int, distance Distance) error
}

// Condition is a single equality/membership test against a payload
// field, used to build must/must_not filters (spec.md §4.11, §6.3).
type Condition struct {
	Field string
	// Exactly one of Value or AnyOf is set: equality vs. disjunction.
	Value string
	AnyOf []string
}

// Filter is a conjunction of must conditions and a conjunction of
// must_not conditions (spec.md §4.11's structured filter).
type Filter struct {
	Must    []Condition
	MustNot []Condition
}

// SearchOptions parametrizes VectorStore.Search.
type SearchOptions struct {
	Limit          int
	ScoreThreshold float64
	Filter         Filter
	WithPayload    bool
	WithVector     bool
}

// SearchResult pairs a Point's id/payload/vector with its similarity
// score.
type SearchResult struct {
	ID      string
	Score   float64
	Payload block.Payload
	Vector  []float32
}

// ScrollOptions parametrizes VectorStore.Scroll.
type ScrollOptions struct {
	Limit       int
	Offset      string
	Filter      Filter
	WithPayload bool
	WithVector  bool
}

// ScrollResult is one page of a scroll operation.
type ScrollResult struct {
	Points     []SearchResult
	NextOffset string
}

// VectorStore is the point-level read/write surface (spec.md §4.15).
type VectorStore interface {
	UpsertBatch(ctx context.Context, collection string, points []block.Point) error
	UpsertBatchChunked(ctx context.Context, collection string, points []block.Point, chunkSize int) error
	DeletePoints(ctx context.Context, collection string, ids []string) error
	DeleteByFilter(ctx context.Context, collection string, filter Filter) error
	Search(ctx context.Context, collection string, vector []float32, opts SearchOptions) ([]SearchResult, error)
	Get(ctx context.Context, collection string, id string) (SearchResult, bool, error)
	Scroll(ctx context.Context, collection string, opts ScrollOptions) (ScrollResult, error)
	Count(ctx context.Context, collection string, filter Filter) (int, error)
}
