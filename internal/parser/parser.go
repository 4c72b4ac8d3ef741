// Package parser is the default Tree-sitter-like syntactic parser the
// core consumes (spec.md §1 names this collaborator as out of scope,
// leaving only its output contract specified; this package is the
// concrete instance the rest of the system exercises against).
// Grounded on the teacher's internal/indexer/parsers/* (tree-sitter
// languages) and internal/indexer/parser.go (Go via go/ast, extension
// dispatch) and internal/indexer/chunker.go (fallback chunking).
package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcelens/semindex/internal/block"
)

// Options mirrors the indexing.* and embedding.chunk_* configuration
// keys this package's behavior depends on (spec.md §6.2).
type Options struct {
	// Languages is an allow-list of normalized language tags; empty
	// means every supported language is enabled.
	Languages []string
	// FallbackChunking enables chunkFallback for files with no matching
	// syntactic parser.
	FallbackChunking bool
	// MarkdownHeaderParsing enables parseMarkdown for .md/.markdown files.
	MarkdownHeaderParsing bool
	ChunkSize             int
	ChunkOverlap          int
}

// Parser dispatches ParseFile to the extractor matching a file's
// extension, falling back to markdown section splitting or generic
// line chunking per Options.
type Parser struct {
	opts    Options
	enabled map[string]bool
}

// New constructs a Parser. A zero Options enables every language,
// leaves fallback chunking and markdown header parsing off, and uses
// spec.md's default chunk_size/chunk_overlap (512/50).
func New(opts Options) *Parser {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 512
	}
	if opts.ChunkOverlap == 0 {
		opts.ChunkOverlap = 50
	}

	var enabled map[string]bool
	if len(opts.Languages) > 0 {
		enabled = make(map[string]bool, len(opts.Languages))
		for _, l := range opts.Languages {
			enabled[strings.ToLower(l)] = true
		}
	}

	return &Parser{opts: opts, enabled: enabled}
}

func (p *Parser) languageAllowed(lang string) bool {
	if p.enabled == nil {
		return true
	}
	return p.enabled[lang]
}

// ParseFile reads file and extracts its code blocks. It never returns
// an error for an unrecognized language or disabled fallback path —
// an empty slice means "nothing to index here", not a failure.
func (p *Parser) ParseFile(ctx context.Context, file string) ([]block.CodeBlock, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	lang := detectLanguage(file)
	if lang != "" && !p.languageAllowed(lang) {
		return nil, nil
	}

	switch lang {
	case "go":
		return parseGo(file, source)
	case "typescript":
		if strings.HasSuffix(strings.ToLower(file), ".tsx") {
			return tsxLanguage.ParseFile(file, source)
		}
		return typescriptLanguage.ParseFile(file, source)
	case "javascript":
		return javascriptLanguage.ParseFile(file, source)
	case "python":
		return pythonLanguage.ParseFile(file, source)
	case "java":
		return javaLanguage.ParseFile(file, source)
	case "c":
		return cLanguage.ParseFile(file, source)
	case "cpp":
		return cppLanguage.ParseFile(file, source)
	case "php":
		return phpLanguage.ParseFile(file, source)
	case "ruby":
		return rubyLanguage.ParseFile(file, source)
	case "rust":
		return rustLanguage.ParseFile(file, source)
	case "markdown":
		if !p.opts.MarkdownHeaderParsing {
			break
		}
		return parseMarkdown(file, source, p.opts.ChunkSize, p.opts.ChunkOverlap)
	}

	if !p.opts.FallbackChunking {
		return nil, nil
	}
	return chunkFallback(file, source, p.opts.ChunkSize, p.opts.ChunkOverlap), nil
}

// detectLanguage maps a file extension to a normalized language tag,
// matching the teacher's extension table plus markdown.
func detectLanguage(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".go":
		return "go"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".py":
		return "python"
	case ".rs":
		return "rust"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp", ".hh":
		return "cpp"
	case ".java":
		return "java"
	case ".php":
		return "php"
	case ".rb":
		return "ruby"
	case ".md", ".markdown":
		return "markdown"
	default:
		return ""
	}
}
