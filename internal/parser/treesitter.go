package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sourcelens/semindex/internal/block"
)

// rule maps one tree-sitter node kind to the block type it produces.
// isContainer marks a node whose name (read from nameField, e.g. a Rust
// impl_item's "type" field) qualifies the methods found inside it as
// "Container.method".
type rule struct {
	blockType   block.Type
	nameField   string
	isContainer bool
}

// sitterLanguage is the shared driver behind every tree-sitter-backed
// extractor: walk the tree once, dispatch on node kind via a per-language
// rule table, and qualify methods discovered inside container nodes
// (class/impl/struct bodies) with their container's name.
type sitterLanguage struct {
	language *sitter.Language
	tag      string
	rules    map[string]rule
	// testBlockRecognizer, when set, is tried against every
	// "call_expression" node (describe/it/test-style calls) that the
	// rule table itself has no entry for, since their name lives in a
	// string argument rather than a named field.
	testBlockRecognizer func(n *sitter.Node, source []byte) (name string, ok bool)
}

func (l *sitterLanguage) parse(source []byte) (*sitter.Tree, *sitter.Node, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(l.language)

	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, nil, errUnparseable
	}
	return tree, tree.RootNode(), nil
}

// ParseFile parses source and extracts this language's blocks.
func (l *sitterLanguage) ParseFile(file string, source []byte) ([]block.CodeBlock, error) {
	tree, root, err := l.parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")
	return l.extract(root, source, lines, file), nil
}

var errUnparseable = &unparseableError{}

type unparseableError struct{}

func (*unparseableError) Error() string { return "parser: tree-sitter returned no tree" }

// extract walks the tree and emits one block per matched rule, qualifying
// methods nested in a container with the container's name.
func (l *sitterLanguage) extract(root *sitter.Node, source []byte, lines []string, file string) []block.CodeBlock {
	var blocks []block.CodeBlock

	var walk func(n *sitter.Node, containerName string)
	walk = func(n *sitter.Node, containerName string) {
		if n == nil {
			return
		}

		kind := n.Kind()
		nextContainer := containerName
		if r, ok := l.rules[kind]; ok {
			name := fieldText(n, r.nameField, source)
			qualified := name
			if containerName != "" && !r.isContainer {
				qualified = containerName + "." + name
			}
			blocks = append(blocks, buildBlock(n, source, lines, file, l.tag, resolveType(r, containerName), qualified))

			if r.isContainer {
				nextContainer = name
			}
		} else if kind == "call_expression" && l.testBlockRecognizer != nil {
			if name, ok := l.testBlockRecognizer(n, source); ok {
				qualified := name
				if containerName != "" {
					qualified = containerName + "." + name
				}
				blocks = append(blocks, buildBlock(n, source, lines, file, l.tag, block.TypeFunction, qualified))
				nextContainer = qualified
			}
		}

		for i := range int(n.ChildCount()) {
			walk(n.Child(uint(i)), nextContainer)
		}
	}

	walk(root, "")
	return blocks
}

func resolveType(r rule, containerName string) block.Type {
	if r.blockType == block.TypeFunction && containerName != "" {
		return block.TypeMethod
	}
	return r.blockType
}

func fieldText(n *sitter.Node, field string, source []byte) string {
	if field == "" {
		return ""
	}
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return nodeText(child, source)
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func buildBlock(n *sitter.Node, source []byte, lines []string, file, language string, typ block.Type, name string) block.CodeBlock {
	start := int(n.StartPosition().Row) + 1
	end := int(n.EndPosition().Row) + 1
	return block.CodeBlock{
		File:     file,
		Line:     start,
		EndLine:  end,
		Code:     joinLines(lines, start, end),
		Type:     typ,
		Name:     name,
		Language: language,
		Metadata: buildMetadata(n, source),
	}
}

func joinLines(lines []string, start, end int) string {
	if start < 1 || start > len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}

// buildMetadata derives the optional facets spec.md §3 allows from a
// node's parameters/return_type fields, its modifier keywords, and any
// immediately preceding comment or decorator siblings.
func buildMetadata(n *sitter.Node, source []byte) block.Metadata {
	m := block.Metadata{}

	if params := n.ChildByFieldName("parameters"); params != nil {
		m.Parameters = splitParameters(nodeText(params, source))
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		m.ReturnType = nodeText(ret, source)
	} else if typ := n.ChildByFieldName("type"); typ != nil && n.ChildByFieldName("name") != nil {
		m.ReturnType = nodeText(typ, source)
	}

	modifiers := collectModifierWords(n, source)
	m.IsAsync = modifiers["async"]
	m.IsStatic = modifiers["static"]
	m.IsAbstract = modifiers["abstract"]
	switch {
	case modifiers["private"]:
		m.Visibility = "private"
	case modifiers["protected"]:
		m.Visibility = "protected"
	case modifiers["public"]:
		m.Visibility = "public"
	}

	m.Comments = leadingComment(n, source)
	m.Decorators = leadingDecorators(n, source)
	m.Complexity = estimateComplexity(nodeText(n, source))
	return m
}

func splitParameters(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	depth := 0
	var parts []string
	last := 0
	for i, r := range raw {
		switch r {
		case '(', '<', '[', '{':
			depth++
		case ')', '>', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(raw[last:i]))
				last = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(raw[last:]))
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// collectModifierWords scans a node's own leading tokens (and, for
// methods, a preceding "modifiers"-kind sibling) for recognized keywords.
func collectModifierWords(n *sitter.Node, source []byte) map[string]bool {
	words := map[string]bool{}
	scan := func(text string) {
		for _, w := range strings.Fields(text) {
			words[strings.ToLower(strings.Trim(w, "()[]{}:"))] = true
		}
	}

	if mods := n.ChildByFieldName("modifiers"); mods != nil {
		scan(nodeText(mods, source))
	}
	prev := n.PrevSibling()
	if prev != nil && strings.Contains(prev.Kind(), "modifier") {
		scan(nodeText(prev, source))
	}
	for i := range int(n.ChildCount()) {
		child := n.Child(uint(i))
		if child == nil {
			break
		}
		if child.Kind() == "name" || child.Kind() == "identifier" {
			break
		}
		scan(nodeText(child, source))
	}
	return words
}

func leadingComment(n *sitter.Node, source []byte) string {
	prev := n.PrevSibling()
	var lines []string
	for prev != nil && strings.Contains(strings.ToLower(prev.Kind()), "comment") {
		lines = append([]string{strings.TrimSpace(nodeText(prev, source))}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}

func leadingDecorators(n *sitter.Node, source []byte) []string {
	prev := n.PrevSibling()
	var decorators []string
	for prev != nil {
		kind := prev.Kind()
		if kind == "decorator" || kind == "annotation" {
			decorators = append([]string{strings.TrimSpace(nodeText(prev, source))}, decorators...)
			prev = prev.PrevSibling()
			continue
		}
		break
	}
	return decorators
}

// estimateComplexity is a rough cyclomatic-style count: one plus the
// number of branching keywords found in the block's text.
func estimateComplexity(text string) int {
	keywords := []string{"if ", "if(", "for ", "for(", "while ", "while(", "case ", "catch ", "catch(", "&&", "||", "elsif ", "elif "}
	count := 1
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		count += strings.Count(lower, kw)
	}
	return count
}
