// Package block defines the core data model: CodeBlock, the unit of
// indexing, and Point, the unit of storage, per spec.md §3.
package block

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type enumerates the semantic kinds a CodeBlock can carry.
type Type string

const (
	TypeFunction        Type = "function"
	TypeMethod          Type = "method"
	TypeClass           Type = "class"
	TypeInterface       Type = "interface"
	TypeTypeAlias       Type = "type"
	TypeConstant        Type = "constant"
	TypeVariable        Type = "variable"
	TypeModule          Type = "module"
	TypeNamespace       Type = "namespace"
	TypeStruct          Type = "struct"
	TypeEnum            Type = "enum"
	TypeTrait           Type = "trait"
	TypeImpl            Type = "impl"
	TypeMarkdownSection Type = "markdown_section"
	TypeChunk           Type = "chunk"
	// TypeMetadata is reserved: points of this type are always excluded
	// from search (spec.md §6.3).
	TypeMetadata Type = "metadata"
)

// Metadata holds the optional structured facets attached to a CodeBlock.
type Metadata struct {
	Parameters []string
	ReturnType string
	Visibility string
	IsAsync    bool
	IsStatic   bool
	IsAbstract bool
	Decorators []string
	Comments   string
	Complexity int
	Level      int
}

// CodeBlock is the unit of indexing extracted from a source file.
type CodeBlock struct {
	ID       string
	File     string
	Line     int
	EndLine  int
	Code     string
	Type     Type
	Name     string
	Language string
	Metadata Metadata
	Hash     string
}

// Digest returns the SHA-256 digest of s as a lowercase hex string.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Normalize fills derived fields (Hash, a synthesized Name when empty) and
// validates the invariants spec.md §3 requires for CodeBlock. It mutates
// and returns b for convenience.
func Normalize(b *CodeBlock, anonymousIndex int) (*CodeBlock, error) {
	trimmed := strings.TrimSpace(b.Code)
	if trimmed == "" {
		return nil, fmt.Errorf("block: code is empty after trim (file=%s line=%d)", b.File, b.Line)
	}
	if b.Line > b.EndLine {
		return nil, fmt.Errorf("block: line %d > end_line %d (file=%s)", b.Line, b.EndLine, b.File)
	}
	if strings.TrimSpace(b.Name) == "" {
		if b.Type == TypeChunk {
			b.Name = fmt.Sprintf("Chunk %d", anonymousIndex)
		} else {
			b.Name = "anonymous"
		}
	}
	b.Hash = Digest(b.Code)
	return b, nil
}

// PointID derives the stable, idempotent UUID-shaped point id for a block
// location: the first 128 bits of SHA256("{file}:{line}:{end_line}"),
// formatted via uuid.UUID's canonical String() rather than a random
// uuid.New() (spec.md §3 Point, §4.6, S2 requires idempotent,
// content-derived ids).
func PointID(file string, line, endLine int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", file, line, endLine)))
	var id uuid.UUID
	copy(id[:], sum[:16])
	return id.String()
}

// Payload is the flat vector-store payload shape for a Point (spec.md
// §6.3).
type Payload struct {
	File         string            `json:"file"`
	Line         int               `json:"line"`
	EndLine      int               `json:"end_line"`
	Code         string            `json:"code"`
	Type         string            `json:"type"`
	Name         string            `json:"name"`
	Language     string            `json:"language"`
	PathSegments map[string]string `json:"pathSegments"`
	Metadata     Metadata          `json:"metadata"`
	Hash         string            `json:"hash"`
	IndexedAt    string            `json:"indexed_at"`
}

// Point is the unit of storage: id + vector + payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// NewPoint materializes a Point from a CodeBlock and its embedding
// vector. pathSegments is the numbered decomposition of Payload.File
// (pathseg.Decompose). indexedAt is formatted as ISO-8601 UTC.
func NewPoint(b *CodeBlock, vector []float32, pathSegments map[string]string, indexedAt time.Time) Point {
	return Point{
		ID:     PointID(b.File, b.Line, b.EndLine),
		Vector: vector,
		Payload: Payload{
			File:         b.File,
			Line:         b.Line,
			EndLine:      b.EndLine,
			Code:         b.Code,
			Type:         string(b.Type),
			Name:         b.Name,
			Language:     b.Language,
			PathSegments: pathSegments,
			Metadata:     b.Metadata,
			Hash:         b.Hash,
			IndexedAt:    indexedAt.UTC().Format(time.RFC3339),
		},
	}
}
