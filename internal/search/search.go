// Package search is the query-time core: Semantic Search (spec.md
// §4.11), the Ranker (§4.12), and the Context Extractor (§4.13).
// Grounded on the teacher's internal/mcp/chromem_searcher.go for the
// embed-then-filter-then-search shape of Query; the ranking-factor
// formula and context-gutter rendering have no teacher equivalent and
// are authored directly from spec.md's fully specified arithmetic.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sourcelens/semindex/internal/block"
	"github.com/sourcelens/semindex/internal/embedder"
	"github.com/sourcelens/semindex/internal/graph"
	"github.com/sourcelens/semindex/internal/pathseg"
	"github.com/sourcelens/semindex/internal/vectorstore"
)

// Query is the structured request search(query) consumes (spec.md
// §4.11, §6.1's codebase_search arguments).
type Query struct {
	Text            string
	Limit           int
	ScoreThreshold  float64
	FileTypes       []string
	Paths           []string
	DirectoryPrefix string
	Languages       []string
	BlockTypes      []string
	IncludeContext  bool
	ContextLines    int
}

// Result is one ranked hit, mapped from a vector-store point.
type Result struct {
	File           string
	Line           int
	EndLine        int
	Code           string
	Type           string
	Name           string
	Score          float64
	Language       string
	Metadata       block.Metadata
	IndexedAt      time.Time
	Context        string
	RelatedSymbols []string
}

// Searcher embeds queries, invokes the vector store, and maps results.
// Graph is optional: a nil Graph simply never populates RelatedSymbols,
// matching §12.1's "absence never fails the search" contract.
type Searcher struct {
	Embedder   embedder.Provider
	Store      vectorstore.VectorStore
	Collection string
	Graph      *graph.Graph
	RootDir    string
}

// New constructs a Searcher. graph may be nil.
func New(emb embedder.Provider, store vectorstore.VectorStore, collection, rootDir string, g *graph.Graph) *Searcher {
	return &Searcher{Embedder: emb, Store: store, Collection: collection, Graph: g, RootDir: rootDir}
}

const defaultLimit = 10

// Search embeds q.Text, builds a structured filter, and invokes the
// vector store, mapping matches to Results (spec.md §4.11's
// search path; ranking itself is Rank, called separately so the caller
// can merge with cached results first).
func (s *Searcher) Search(ctx context.Context, q Query) ([]Result, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	vector, err := s.Embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}

	matches, err := s.Store.Search(ctx, s.Collection, vector, vectorstore.SearchOptions{
		Limit:          limit,
		ScoreThreshold: q.ScoreThreshold,
		Filter:         buildFilter(q),
		WithPayload:    true,
		WithVector:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("search: vector search: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		if !matchesFileTypes(m.Payload.File, q.FileTypes) {
			continue
		}
		r := s.toResult(m)
		if q.IncludeContext {
			r.Context = ExtractContext(s.RootDir, r, ContextOptions{LinesBefore: q.ContextLines, LinesAfter: q.ContextLines})
		}
		results = append(results, r)
	}
	return results, nil
}

// FindSimilar retrieves the point at (file, line) — by scanning the
// file's points for a matching line, since callers address points by
// location rather than by storage id — re-searches using its vector,
// drops the origin point from the results, and takes limit (spec.md
// §4.11's find_similar path).
func (s *Searcher) FindSimilar(ctx context.Context, file string, line, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	origin, found, err := s.findOrigin(ctx, file, line)
	if err != nil {
		return nil, fmt.Errorf("find_similar: locate origin: %w", err)
	}
	if !found {
		return nil, nil
	}

	matches, err := s.Store.Search(ctx, s.Collection, origin.Vector, vectorstore.SearchOptions{
		Limit:       limit + 1,
		Filter:      vectorstore.Filter{MustNot: []vectorstore.Condition{{Field: "type", Value: "metadata"}}},
		WithPayload: true,
		WithVector:  false,
	})
	if err != nil {
		return nil, fmt.Errorf("find_similar: vector search: %w", err)
	}

	results := make([]Result, 0, limit)
	for _, m := range matches {
		if m.ID == origin.ID {
			continue
		}
		if len(results) >= limit {
			break
		}
		results = append(results, s.toResult(m))
	}
	return results, nil
}

func (s *Searcher) findOrigin(ctx context.Context, file string, line int) (vectorstore.SearchResult, bool, error) {
	page, err := s.Store.Scroll(ctx, s.Collection, vectorstore.ScrollOptions{
		Filter:      vectorstore.Filter{Must: []vectorstore.Condition{{Field: "file", Value: file}}},
		Limit:       1000,
		WithPayload: true,
		WithVector:  true,
	})
	if err != nil {
		return vectorstore.SearchResult{}, false, err
	}
	for _, p := range page.Points {
		if p.Payload.Line == line {
			return p, true, nil
		}
	}
	return vectorstore.SearchResult{}, false, nil
}

func (s *Searcher) toResult(m vectorstore.SearchResult) Result {
	r := Result{
		File:     m.Payload.File,
		Line:     m.Payload.Line,
		EndLine:  m.Payload.EndLine,
		Code:     m.Payload.Code,
		Type:     m.Payload.Type,
		Name:     m.Payload.Name,
		Score:    m.Score,
		Language: m.Payload.Language,
		Metadata: m.Payload.Metadata,
	}
	if t, err := time.Parse(time.RFC3339, m.Payload.IndexedAt); err == nil {
		r.IndexedAt = t
	}
	if s.Graph != nil {
		r.RelatedSymbols = s.Graph.Related(r.File, r.Name, 5)
	}
	return r
}

// buildFilter translates a Query's location/type constraints into a
// vectorstore.Filter (spec.md §4.11 step 2). file_types is applied as a
// post-filter by matchesFileTypes since extension matching has no
// single payload field to key on.
func buildFilter(q Query) vectorstore.Filter {
	f := vectorstore.Filter{
		MustNot: []vectorstore.Condition{{Field: "type", Value: "metadata"}},
	}

	if q.DirectoryPrefix != "" {
		segments := pathseg.DirectoryPrefixSegments(q.DirectoryPrefix)
		for i := 0; i < len(segments); i++ {
			idx := strconv.Itoa(i)
			f.Must = append(f.Must, vectorstore.Condition{
				Field: "pathSegments." + idx,
				Value: segments[idx],
			})
		}
	}
	if len(q.Paths) > 0 {
		f.Must = append(f.Must, vectorstore.Condition{Field: "file", AnyOf: q.Paths})
	}
	if len(q.Languages) > 0 {
		f.Must = append(f.Must, vectorstore.Condition{Field: "language", AnyOf: q.Languages})
	}
	if len(q.BlockTypes) > 0 {
		f.Must = append(f.Must, vectorstore.Condition{Field: "type", AnyOf: q.BlockTypes})
	}
	return f
}

func matchesFileTypes(file string, fileTypes []string) bool {
	if len(fileTypes) == 0 {
		return true
	}
	for _, ext := range fileTypes {
		if strings.HasSuffix(file, normalizeExt(ext)) {
			return true
		}
	}
	return false
}

func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
