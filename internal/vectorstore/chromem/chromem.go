// Package chromem adapts github.com/philippgille/chromem-go to the
// vectorstore.CollectionManager and vectorstore.VectorStore interfaces
// (spec.md §4.15). Grounded on the teacher's
// internal/mcp/chromem_searcher.go: one in-process chromem.DB, a
// RWMutex-guarded collection reference swapped atomically on
// create/recreate, and a WHERE-clause-plus-post-filter search idiom.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/sourcelens/semindex/internal/block"
	"github.com/sourcelens/semindex/internal/vectorstore"
)

const payloadKey = "_payload"

// Store implements vectorstore.CollectionManager and
// vectorstore.VectorStore over an in-process chromem-go database.
type Store struct {
	mu          sync.RWMutex
	db          *chromem.DB
	collections map[string]*chromem.Collection
	vectorSizes map[string]int
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
		vectorSizes: make(map[string]int),
	}
}

// passthroughEmbed tells chromem-go never to compute its own embeddings;
// every document is added with a precomputed vector from the core's own
// embedder.
func passthroughEmbed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("chromem: passthrough collections do not embed text directly")
}

func (s *Store) Create(_ context.Context, name string, vectorSize int, _ vectorstore.Distance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("chromem: collection %q already exists", name)
	}
	col, err := s.db.CreateCollection(name, nil, passthroughEmbed)
	if err != nil {
		return fmt.Errorf("chromem: create collection %q: %w", name, err)
	}
	s.collections[name] = col
	s.vectorSizes[name] = vectorSize
	return nil
}

func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return nil
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("chromem: delete collection %q: %w", name, err)
	}
	delete(s.collections, name)
	delete(s.vectorSizes, name)
	return nil
}

func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

func (s *Store) Info(_ context.Context, name string) (vectorstore.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return vectorstore.CollectionInfo{}, fmt.Errorf("chromem: collection %q does not exist", name)
	}
	count := col.Count()
	return vectorstore.CollectionInfo{
		Name:                name,
		VectorSize:          s.vectorSizes[name],
		PointsCount:         count,
		IndexedVectorsCount: count,
		Status:              vectorstore.StatusGreen,
	}, nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Clear(ctx context.Context, name string) error {
	s.mu.RLock()
	size, ok := s.vectorSizes[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("chromem: collection %q does not exist", name)
	}
	if err := s.DeleteCollection(ctx, name); err != nil {
		return err
	}
	return s.Create(ctx, name, size, vectorstore.DistanceCosine)
}

func (s *Store) Ensure(ctx context.Context, name string, vectorSize int, distance vectorstore.Distance) error {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return s.Create(ctx, name, vectorSize, distance)
	}
	s.mu.RLock()
	existingSize := s.vectorSizes[name]
	s.mu.RUnlock()
	if existingSize != vectorSize {
		return fmt.Errorf("chromem: collection %q exists with vector_size %d, requested %d", name, existingSize, vectorSize)
	}
	return nil
}

func (s *Store) Recreate(ctx context.Context, name string, vectorSize int, distance vectorstore.Distance) error {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		if err := s.DeleteCollection(ctx, name); err != nil {
			return err
		}
	}
	return s.Create(ctx, name, vectorSize, distance)
}

func (s *Store) collection(name string) (*chromem.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("chromem: collection %q does not exist", name)
	}
	return col, nil
}

func (s *Store) UpsertBatch(ctx context.Context, collection string, points []block.Point) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	for _, p := range points {
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("chromem: marshal payload for %s: %w", p.ID, err)
		}
		doc := chromem.Document{
			ID:        p.ID,
			Content:   p.Payload.Code,
			Embedding: p.Vector,
			Metadata: map[string]string{
				payloadKey: string(payload),
				"file":     p.Payload.File,
				"type":     p.Payload.Type,
			},
		}
		// AddDocument rejects a document whose id already exists; an
		// upsert must replace it, so drop any stale copy first.
		_ = col.Delete(ctx, nil, nil, p.ID)
		if err := col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("chromem: upsert %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *Store) UpsertBatchChunked(ctx context.Context, collection string, points []block.Point, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = 100
	}
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}
		if err := s.UpsertBatch(ctx, collection, points[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeletePoints(ctx context.Context, collection string, ids []string) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := col.Delete(ctx, nil, nil, id); err != nil {
			return fmt.Errorf("chromem: delete %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) DeleteByFilter(ctx context.Context, collection string, filter vectorstore.Filter) error {
	matches, err := s.scrollAll(ctx, collection, filter)
	if err != nil {
		return err
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return s.DeletePoints(ctx, collection, ids)
}

// DeleteByFile is the convenience entry point internal/batch's
// Processor.DeleteFile uses (spec.md §4.7 delete_file).
func (s *Store) DeleteByFile(ctx context.Context, collection, file string) error {
	return s.DeleteByFilter(ctx, collection, vectorstore.Filter{
		Must: []vectorstore.Condition{{Field: "file", Value: file}},
	})
}

func toResult(doc chromem.Result) (vectorstore.SearchResult, error) {
	var payload block.Payload
	raw, ok := doc.Metadata[payloadKey]
	if ok {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return vectorstore.SearchResult{}, fmt.Errorf("chromem: unmarshal payload for %s: %w", doc.ID, err)
		}
	}
	return vectorstore.SearchResult{
		ID:      doc.ID,
		Score:   float64(doc.Similarity),
		Payload: payload,
		Vector:  doc.Embedding,
	}, nil
}

func matches(payload block.Payload, filter vectorstore.Filter) bool {
	get := func(field string) string {
		switch field {
		case "file":
			return payload.File
		case "type":
			return payload.Type
		case "language":
			return payload.Language
		case "name":
			return payload.Name
		default:
			if strings.HasPrefix(field, "pathSegments.") {
				idx := strings.TrimPrefix(field, "pathSegments.")
				return payload.PathSegments[idx]
			}
			return ""
		}
	}

	for _, c := range filter.Must {
		v := get(c.Field)
		if c.AnyOf != nil {
			found := false
			for _, want := range c.AnyOf {
				if v == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if v != c.Value {
			return false
		}
	}
	for _, c := range filter.MustNot {
		v := get(c.Field)
		if c.AnyOf != nil {
			for _, want := range c.AnyOf {
				if v == want {
					return false
				}
			}
			continue
		}
		if v == c.Value {
			return false
		}
	}
	return true
}

// scrollAll enumerates every document in collection by querying with a
// zero vector and a result count equal to the full collection size; the
// resulting similarity scores are meaningless and never read by
// scroll/get/delete_by_filter/count, which only need the full payload
// set, not a ranking.
func (s *Store) scrollAll(ctx context.Context, collection string, filter vectorstore.Filter) ([]vectorstore.SearchResult, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	docs, err := col.QueryEmbedding(ctx, make([]float32, vectorSizeOrDefault(s, collection)), col.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: scroll %q: %w", collection, err)
	}
	var out []vectorstore.SearchResult
	for _, d := range docs {
		r, err := toResult(d)
		if err != nil {
			return nil, err
		}
		if matches(r.Payload, filter) {
			out = append(out, r)
		}
	}
	return out, nil
}

func vectorSizeOrDefault(s *Store, collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if size, ok := s.vectorSizes[collection]; ok && size > 0 {
		return size
	}
	return 1
}

func (s *Store) Search(ctx context.Context, collection string, vector []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	nResults := limit * 4
	if count := col.Count(); nResults > count {
		nResults = count
	}
	if nResults == 0 {
		return nil, nil
	}

	docs, err := col.QueryEmbedding(ctx, vector, nResults, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: search %q: %w", collection, err)
	}

	results := make([]vectorstore.SearchResult, 0, limit)
	for _, d := range docs {
		r, err := toResult(d)
		if err != nil {
			return nil, err
		}
		if !matches(r.Payload, opts.Filter) {
			continue
		}
		if opts.ScoreThreshold > 0 && r.Score < opts.ScoreThreshold {
			continue
		}
		if !opts.WithVector {
			r.Vector = nil
		}
		results = append(results, r)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (vectorstore.SearchResult, bool, error) {
	matches, err := s.scrollAll(ctx, collection, vectorstore.Filter{})
	if err != nil {
		return vectorstore.SearchResult{}, false, err
	}
	for _, m := range matches {
		if m.ID == id {
			return m, true, nil
		}
	}
	return vectorstore.SearchResult{}, false, nil
}

func (s *Store) Scroll(ctx context.Context, collection string, opts vectorstore.ScrollOptions) (vectorstore.ScrollResult, error) {
	all, err := s.scrollAll(ctx, collection, opts.Filter)
	if err != nil {
		return vectorstore.ScrollResult{}, err
	}

	start := 0
	if opts.Offset != "" {
		if parsed, err := strconv.Atoi(opts.Offset); err == nil {
			start = parsed
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	if start > len(all) {
		start = len(all)
	}

	page := all[start:end]
	result := vectorstore.ScrollResult{Points: page}
	if end < len(all) {
		result.NextOffset = strconv.Itoa(end)
	}
	return result, nil
}

func (s *Store) Count(ctx context.Context, collection string, filter vectorstore.Filter) (int, error) {
	if len(filter.Must) == 0 && len(filter.MustNot) == 0 {
		col, err := s.collection(collection)
		if err != nil {
			return 0, err
		}
		return col.Count(), nil
	}
	matches, err := s.scrollAll(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}
