// Package enrich implements the Enricher (spec.md §4.5): it prepends
// structural metadata to a block's source text before embedding.
// Grounded on the teacher's internal/indexer/formatter.go.
package enrich

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sourcelens/semindex/internal/block"
)

// Format selects the enrichment header style.
type Format string

const (
	FormatStructured  Format = "structured"
	FormatDescriptive Format = "descriptive"
	FormatCompact     Format = "compact"
)

// MaxOutputLength is the truncation cap spec.md §4.5 specifies.
const MaxOutputLength = 8000

const truncationMarker = "\n// ... (truncated)"

// Facets toggles which metadata facets are included in the header.
// Zero value enables every facet (the common case).
type Facets struct {
	DisableFile     bool
	DisableType     bool
	DisableName     bool
	DisableParams   bool
	DisableReturn   bool
	DisableAsyncVis bool
	DisableComment  bool
	DisableLanguage bool
}

var commentMarkerRe = regexp.MustCompile(`^[\s/*#-]+|[*/]+\s*$`)
var tagSigilRe = regexp.MustCompile(`@\w+`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// Enrich produces the text to embed for b, using format and facets.
func Enrich(b *block.CodeBlock, format Format, facets Facets) string {
	if format == "" {
		format = FormatStructured
	}

	header := buildHeader(b, format, facets)
	body := b.Code

	out := header + body
	if len(out) > MaxOutputLength {
		cut := MaxOutputLength - len(truncationMarker)
		if cut < 0 {
			cut = 0
		}
		out = out[:cut] + truncationMarker
	}
	return out
}

func buildHeader(b *block.CodeBlock, format Format, facets Facets) string {
	fileCtx := fileContext(b.File)

	var parts []string
	addPart := func(label, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", label, value))
		}
	}

	switch format {
	case FormatCompact:
		seg := fileCtx
		return fmt.Sprintf("%s|%s:%s|", seg, b.Type, b.Name)

	case FormatDescriptive:
		var sb strings.Builder
		sb.WriteString("This is ")
		if !facets.DisableType {
			sb.WriteString(fmt.Sprintf("a %s ", b.Type))
		}
		if !facets.DisableName {
			sb.WriteString(fmt.Sprintf("named %s ", b.Name))
		}
		if !facets.DisableFile {
			sb.WriteString(fmt.Sprintf("in %s ", fileCtx))
		}
		if !facets.DisableParams && len(b.Metadata.Parameters) > 0 {
			sb.WriteString(fmt.Sprintf("taking parameters %s ", strings.Join(b.Metadata.Parameters, ", ")))
		}
		if !facets.DisableReturn && b.Metadata.ReturnType != "" {
			sb.WriteString(fmt.Sprintf("returning %s ", b.Metadata.ReturnType))
		}
		if !facets.DisableAsyncVis {
			if b.Metadata.IsAsync {
				sb.WriteString("(async) ")
			}
			if b.Metadata.Visibility != "" {
				sb.WriteString(fmt.Sprintf("(%s) ", b.Metadata.Visibility))
			}
		}
		if !facets.DisableComment && b.Metadata.Comments != "" {
			sb.WriteString(fmt.Sprintf("documented as: %s ", cleanComment(b.Metadata.Comments)))
		}
		if !facets.DisableLanguage && b.Language != "" {
			sb.WriteString(fmt.Sprintf("written in %s", b.Language))
		}
		sb.WriteString(":\n")
		return sb.String()

	default: // structured
		if !facets.DisableFile {
			addPart("file", fileCtx)
		}
		if !facets.DisableType {
			addPart("type", string(b.Type))
		}
		if !facets.DisableName {
			addPart("name", b.Name)
		}
		if !facets.DisableParams && len(b.Metadata.Parameters) > 0 {
			addPart("parameters", strings.Join(b.Metadata.Parameters, ", "))
		}
		if !facets.DisableReturn {
			addPart("return", b.Metadata.ReturnType)
		}
		if !facets.DisableComment {
			addPart("comments", cleanComment(b.Metadata.Comments))
		}
		if !facets.DisableLanguage {
			addPart("language", b.Language)
		}
		if len(parts) == 0 {
			return ""
		}
		return strings.Join(parts, "\n") + "\n---\n"
	}
}

// fileContext returns the last two directory segments plus the filename,
// per spec.md §4.5.
func fileContext(file string) string {
	clean := filepath.ToSlash(file)
	parts := strings.Split(clean, "/")
	if len(parts) <= 3 {
		return clean
	}
	return strings.Join(parts[len(parts)-3:], "/")
}

// cleanComment strips comment markers and tag sigils, collapses
// whitespace, and caps the result at 200 characters.
func cleanComment(comment string) string {
	if comment == "" {
		return ""
	}
	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		lines[i] = commentMarkerRe.ReplaceAllString(line, "")
	}
	cleaned := strings.Join(lines, " ")
	cleaned = tagSigilRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) > 200 {
		cleaned = cleaned[:200]
	}
	return cleaned
}
