package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/block"
)

func sampleBlocks() []block.CodeBlock {
	return []block.CodeBlock{
		{
			File: "svc.go", Line: 1, EndLine: 3, Type: block.TypeFunction, Name: "Handle",
			Code: "func Handle() {\n\treturn Validate()\n}",
		},
		{
			File: "svc.go", Line: 5, EndLine: 7, Type: block.TypeFunction, Name: "Validate",
			Code: "func Validate() bool {\n\treturn true\n}",
		},
		{
			File: "svc.go", Line: 9, EndLine: 11, Type: block.TypeFunction, Name: "Unrelated",
			Code: "func Unrelated() {\n\tfmt.Println(\"noop\")\n}",
		},
		{
			File: "other.go", Line: 1, EndLine: 3, Type: block.TypeFunction, Name: "Handle",
			Code: "func Handle() {\n\treturn Validate()\n}",
		},
	}
}

func TestRelatedFindsCalleeAndCaller(t *testing.T) {
	g := New()
	require.NoError(t, g.Reload(sampleBlocks()))

	assert.Contains(t, g.Related("svc.go", "Handle", 5), "Validate")
	assert.Contains(t, g.Related("svc.go", "Validate", 5), "Handle")
}

func TestRelatedIsScopedToSameFile(t *testing.T) {
	g := New()
	require.NoError(t, g.Reload(sampleBlocks()))

	related := g.Related("other.go", "Handle", 5)
	assert.NotContains(t, related, "Validate")
	for _, r := range related {
		assert.NotEqual(t, "Unrelated", r)
	}
}

func TestRelatedReturnsNilForUnknownNode(t *testing.T) {
	g := New()
	require.NoError(t, g.Reload(sampleBlocks()))
	assert.Empty(t, g.Related("svc.go", "DoesNotExist", 5))
}

func TestRelatedBeforeReloadIsEmpty(t *testing.T) {
	g := New()
	assert.Empty(t, g.Related("svc.go", "Handle", 5))
}

func TestRelatedRespectsLimit(t *testing.T) {
	g := New()
	blocks := []block.CodeBlock{
		{File: "f.go", Line: 1, EndLine: 1, Type: block.TypeFunction, Name: "A", Code: "func A() { B(); C(); D() }"},
		{File: "f.go", Line: 2, EndLine: 2, Type: block.TypeFunction, Name: "B", Code: "func B() {}"},
		{File: "f.go", Line: 3, EndLine: 3, Type: block.TypeFunction, Name: "C", Code: "func C() {}"},
		{File: "f.go", Line: 4, EndLine: 4, Type: block.TypeFunction, Name: "D", Code: "func D() {}"},
	}
	require.NoError(t, g.Reload(blocks))
	assert.Len(t, g.Related("f.go", "A", 2), 2)
}

func TestExtractSkipsNonCallableBlockTypes(t *testing.T) {
	blocks := []block.CodeBlock{
		{File: "f.go", Line: 1, EndLine: 1, Type: block.TypeConstant, Name: "MaxRetries", Code: "const MaxRetries = 3"},
		{File: "f.go", Line: 2, EndLine: 2, Type: block.TypeFunction, Name: "Retry", Code: "func Retry() { _ = MaxRetries }"},
	}
	data := Extract(blocks)
	require.Len(t, data.Nodes, 1)
	assert.Equal(t, "f.go::Retry", data.Nodes[0].ID)
	assert.Empty(t, data.Edges)
}

func TestBareNameStripsContainerQualifier(t *testing.T) {
	assert.Equal(t, "Greet", bareName("Greeter.Greet"))
	assert.Equal(t, "Add", bareName("Add"))
}
