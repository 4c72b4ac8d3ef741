package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/block"
)

func sampleBlock() *block.CodeBlock {
	return &block.CodeBlock{
		File:     "src/auth/login.go",
		Line:     10,
		EndLine:  20,
		Code:     "func Login(user string) error {\n\treturn nil\n}",
		Type:     block.TypeFunction,
		Name:     "Login",
		Language: "go",
		Metadata: block.Metadata{
			Parameters: []string{"user string"},
			ReturnType: "error",
			Comments:   "  // Login authenticates @user against the directory.  ",
		},
	}
}

func TestEnrichStructuredIncludesHeaderAndBody(t *testing.T) {
	out := Enrich(sampleBlock(), FormatStructured, Facets{})
	assert.Contains(t, out, "name: Login")
	assert.Contains(t, out, "type: function")
	assert.Contains(t, out, "file: src/auth/login.go")
	assert.Contains(t, out, "func Login(user string) error {")
}

func TestEnrichCompactIsTerse(t *testing.T) {
	out := Enrich(sampleBlock(), FormatCompact, Facets{})
	require.True(t, strings.HasPrefix(out, "src/auth/login.go|function:Login|"))
}

func TestEnrichDescriptiveReadsAsSentence(t *testing.T) {
	out := Enrich(sampleBlock(), FormatDescriptive, Facets{})
	assert.Contains(t, out, "This is a function named Login")
	assert.Contains(t, out, "written in go")
}

func TestEnrichFacetsDisableSuppressesField(t *testing.T) {
	out := Enrich(sampleBlock(), FormatStructured, Facets{DisableName: true})
	assert.NotContains(t, out, "name: Login")
	assert.Contains(t, out, "type: function")
}

func TestEnrichTruncatesLongOutput(t *testing.T) {
	b := sampleBlock()
	b.Code = strings.Repeat("x", MaxOutputLength*2)
	out := Enrich(b, FormatStructured, Facets{})
	assert.LessOrEqual(t, len(out), MaxOutputLength)
	assert.True(t, strings.HasSuffix(out, truncationMarker))
}

func TestCleanCommentStripsMarkersAndTags(t *testing.T) {
	cleaned := cleanComment("  // Login authenticates @user against the directory.  ")
	assert.NotContains(t, cleaned, "//")
	assert.NotContains(t, cleaned, "@user")
	assert.Contains(t, cleaned, "Login authenticates")
}

func TestCleanCommentCapsAt200Chars(t *testing.T) {
	long := strings.Repeat("word ", 100)
	cleaned := cleanComment(long)
	assert.LessOrEqual(t, len(cleaned), 200)
}
