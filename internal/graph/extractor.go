package graph

import (
	"regexp"
	"strings"

	"github.com/sourcelens/semindex/internal/block"
)

// identifierPattern matches a bare word-boundary identifier, used to
// detect whether one block's code references another block's name.
var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Extract builds a call-edge Data set from parsed blocks. Edges are
// scoped to blocks from the same file: for every pair (a, b) in a file,
// an EdgeCalls edge a->b is added when b's name appears as a whole
// identifier in a's code. This is deliberately approximate — a textual
// proxy for a real call graph, sized to the lightweight related_symbols
// enrichment it feeds rather than a precise reference resolver.
func Extract(blocks []block.CodeBlock) Data {
	var data Data

	byFile := make(map[string][]block.CodeBlock)
	for _, b := range blocks {
		if !callable(b.Type) {
			continue
		}
		byFile[b.File] = append(byFile[b.File], b)
		data.Nodes = append(data.Nodes, Node{
			ID:        nodeID(b),
			Kind:      nodeKind(b.Type),
			File:      b.File,
			StartLine: b.Line,
			EndLine:   b.EndLine,
		})
	}

	for _, fileBlocks := range byFile {
		names := make(map[string]string, len(fileBlocks)) // bare name -> node ID
		for _, b := range fileBlocks {
			names[bareName(b.Name)] = nodeID(b)
		}

		for _, caller := range fileBlocks {
			callerID := nodeID(caller)
			seen := map[string]bool{callerID: true}
			for _, word := range identifierPattern.FindAllString(caller.Code, -1) {
				calleeID, ok := names[word]
				if !ok || seen[calleeID] {
					continue
				}
				seen[calleeID] = true
				data.Edges = append(data.Edges, Edge{From: callerID, To: calleeID, Type: EdgeCalls})
			}
		}
	}

	return data
}

func callable(t block.Type) bool {
	return t == block.TypeFunction || t == block.TypeMethod
}

func nodeKind(t block.Type) NodeKind {
	if t == block.TypeMethod {
		return NodeMethod
	}
	return NodeFunction
}

// nodeID keys a node by file+name, since CodeBlock names are only
// unique within a file (methods are qualified as "Type.Method" but two
// files can both define a "Handler.Serve").
func nodeID(b block.CodeBlock) string {
	return b.File + "::" + b.Name
}

// bareName strips a "Container." qualifier so a call site referencing
// just the method name (common when called from within its own
// container) still matches.
func bareName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
