// Package graph is a lightweight in-memory call graph that feeds
// find_similar's related_symbols enrichment (SPEC_FULL.md §12.1/§12.3).
// Grounded on the teacher's internal/graph package, trimmed to the
// subset this supplemented feature needs: no interface-implementation
// inference, no impact analysis, no shortest-path queries, and no
// weight-bounded file-context cache — those all serve the teacher's
// own cortex_graph tool, which is outside this spec's tool surface.
package graph

// NodeKind identifies what a Node represents.
type NodeKind string

const (
	NodeFunction NodeKind = "function"
	NodeMethod   NodeKind = "method"
)

// Node is one code block the graph knows about, keyed by ID.
type Node struct {
	ID        string
	Kind      NodeKind
	File      string
	StartLine int
	EndLine   int
}

// EdgeType identifies the relationship an Edge represents.
type EdgeType string

const (
	// EdgeCalls connects a block to another block in the same file whose
	// name it references in its body.
	EdgeCalls EdgeType = "calls"
)

// Edge is a directed relationship between two Node IDs.
type Edge struct {
	From string
	To   string
	Type EdgeType
}

// Data is the flat node/edge set a Graph is built from, as Extract
// derives it from parsed code blocks.
type Data struct {
	Nodes []Node
	Edges []Edge
}
