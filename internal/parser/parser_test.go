package parser

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/block"
)

func TestParseFileGoExtractsFunctionsTypesAndMethods(t *testing.T) {
	p := New(Options{})
	dir := t.TempDir()
	file := writeTemp(t, dir, "sample.go", `package sample

// Greeter says hello.
type Greeter struct {
	Name string
}

// Greet returns a greeting.
func (g *Greeter) Greet() string {
	return "hello " + g.Name
}

func Add(a, b int) int {
	return a + b
}

const MaxRetries = 3
`)

	blocks, err := p.ParseFile(t.Context(), file)
	require.NoError(t, err)

	var names []string
	for _, b := range blocks {
		names = append(names, b.Name)
	}
	assert.Contains(t, names, "Greeter")
	assert.Contains(t, names, "Greeter.Greet")
	assert.Contains(t, names, "Add")
	assert.Contains(t, names, "MaxRetries")

	for _, b := range blocks {
		if b.Name == "Greeter.Greet" {
			assert.Equal(t, block.TypeMethod, b.Type)
		}
		if b.Name == "Add" {
			assert.Equal(t, block.TypeFunction, b.Type)
			assert.Equal(t, "public", b.Metadata.Visibility)
		}
	}
}

func TestParseFilePythonExtractsClassAndMethods(t *testing.T) {
	p := New(Options{})
	dir := t.TempDir()
	file := writeTemp(t, dir, "sample.py", `class Greeter:
    def greet(self):
        return "hi"


def add(a, b):
    return a + b
`)

	blocks, err := p.ParseFile(t.Context(), file)
	require.NoError(t, err)
	require.NotEmpty(t, blocks)

	var sawMethod, sawFunc, sawClass bool
	for _, b := range blocks {
		switch {
		case b.Name == "Greeter.greet":
			sawMethod = true
			assert.Equal(t, block.TypeMethod, b.Type)
		case b.Name == "add":
			sawFunc = true
		case b.Name == "Greeter":
			sawClass = true
		}
	}
	assert.True(t, sawMethod)
	assert.True(t, sawFunc)
	assert.True(t, sawClass)
}

func TestParseFileTypeScriptExtractsInterfaceAndClass(t *testing.T) {
	p := New(Options{})
	dir := t.TempDir()
	file := writeTemp(t, dir, "sample.ts", `interface Shape {
  area(): number;
}

class Circle implements Shape {
  radius: number;
  area(): number {
    return 3.14 * this.radius * this.radius;
  }
}
`)

	blocks, err := p.ParseFile(t.Context(), file)
	require.NoError(t, err)

	var names []block.Type
	for _, b := range blocks {
		names = append(names, b.Type)
	}
	assert.Contains(t, names, block.TypeInterface)
	assert.Contains(t, names, block.TypeClass)
}

func TestParseFileTypeScriptRecognizesTestBlocks(t *testing.T) {
	p := New(Options{})
	dir := t.TempDir()
	file := writeTemp(t, dir, "sample.test.ts", `describe("widget", () => {
  it("renders", () => {
    expect(1).toBe(1);
  });
});
`)

	blocks, err := p.ParseFile(t.Context(), file)
	require.NoError(t, err)

	var names []string
	for _, b := range blocks {
		names = append(names, b.Name)
	}
	assert.Contains(t, names, "describe: widget")
	assert.Contains(t, names, "describe: widget.it: renders")
}

func TestParseFileMarkdownSplitsByHeader(t *testing.T) {
	p := New(Options{MarkdownHeaderParsing: true})
	dir := t.TempDir()
	file := writeTemp(t, dir, "doc.md", `# Title

intro text

## Section One

content one

## Section Two

content two
`)

	blocks, err := p.ParseFile(t.Context(), file)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	for _, b := range blocks {
		assert.Equal(t, block.TypeMarkdownSection, b.Type)
	}
}

func TestParseFileFallsBackToChunkerForUnknownLanguage(t *testing.T) {
	p := New(Options{FallbackChunking: true, ChunkSize: 8, ChunkOverlap: 2})
	dir := t.TempDir()
	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, "this is a plain text line that takes up some space")
	}
	file := writeTemp(t, dir, "notes.txt", joinNewlines(lines))

	blocks, err := p.ParseFile(t.Context(), file)
	require.NoError(t, err)
	require.NotEmpty(t, blocks)
	for _, b := range blocks {
		assert.Equal(t, block.TypeChunk, b.Type)
	}
}

func TestParseFileFallbackDisabledReturnsEmpty(t *testing.T) {
	p := New(Options{FallbackChunking: false})
	dir := t.TempDir()
	file := writeTemp(t, dir, "notes.txt", "just some unrecognized text content")

	blocks, err := p.ParseFile(t.Context(), file)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestParseFileLanguageAllowListExcludesDisabled(t *testing.T) {
	p := New(Options{Languages: []string{"python"}})
	dir := t.TempDir()
	file := writeTemp(t, dir, "sample.go", "package sample\nfunc F() {}\n")

	blocks, err := p.ParseFile(t.Context(), file)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := dir + "/" + name
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func joinNewlines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
