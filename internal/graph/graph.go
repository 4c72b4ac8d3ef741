package graph

import (
	"sync"

	dgraph "github.com/dominikbraun/graph"

	"github.com/sourcelens/semindex/internal/block"
)

// Graph is a reloadable, queryable call graph. It is safe for
// concurrent use.
type Graph struct {
	mu sync.RWMutex

	g       dgraph.Graph[string, Node]
	callers map[string][]string
	callees map[string][]string
	built   bool
}

// New returns an empty, unbuilt Graph. Related returns no results until
// Reload has been called at least once.
func New() *Graph {
	return &Graph{}
}

// Reload rebuilds the graph from a fresh set of parsed blocks, replacing
// whatever was previously loaded. It never returns an error for blocks
// that produce no call edges — an empty graph is a valid, inert state.
func (gr *Graph) Reload(blocks []block.CodeBlock) error {
	data := Extract(blocks)

	g := dgraph.New(func(n Node) string { return n.ID }, dgraph.Directed())
	for _, n := range data.Nodes {
		// A duplicate ID (two blocks of the same name in one file) is
		// harmless here — the reverse-index maps below are what Related
		// actually queries, so we simply keep the first vertex seen.
		_ = g.AddVertex(n)
	}

	callers := make(map[string][]string)
	callees := make(map[string][]string)
	for _, e := range data.Edges {
		_ = g.AddEdge(e.From, e.To)
		callees[e.From] = append(callees[e.From], e.To)
		callers[e.To] = append(callers[e.To], e.From)
	}

	gr.mu.Lock()
	defer gr.mu.Unlock()
	gr.g = g
	gr.callers = callers
	gr.callees = callees
	gr.built = true
	return nil
}

// Related returns up to limit identifiers, drawn from a block's own
// file, that call or are called by the block at (file, name). Callees
// are listed before callers; within each group, order matches build
// order. It returns an empty slice — never an error — when the graph
// hasn't been built, the node is unknown, or it has no edges, matching
// §12.1's "absence never fails the search" contract.
func (gr *Graph) Related(file, name string, limit int) []string {
	gr.mu.RLock()
	defer gr.mu.RUnlock()

	if !gr.built || limit <= 0 {
		return nil
	}

	id := file + "::" + name
	var related []string
	seen := map[string]bool{id: true}

	appendNew := func(ids []string) {
		for _, rid := range ids {
			if len(related) >= limit || seen[rid] {
				continue
			}
			seen[rid] = true
			related = append(related, symbolName(rid))
		}
	}

	appendNew(gr.callees[id])
	appendNew(gr.callers[id])
	return related
}

// symbolName recovers the block name half of a "file::name" node ID.
func symbolName(id string) string {
	for i := len(id) - 1; i >= 1; i-- {
		if id[i] == ':' && id[i-1] == ':' {
			return id[i+1:]
		}
	}
	return id
}
