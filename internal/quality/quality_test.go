package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sourcelens/semindex/internal/block"
)

func TestClosingBraceRejected(t *testing.T) {
	assert.False(t, IsHighQuality("}", block.TypeChunk, "Chunk 1"))
}

func TestTrivialClosingSyntaxRejected(t *testing.T) {
	code := "  }\n  }\n  );\n"
	assert.Less(t, Score(code, block.TypeChunk, "Chunk 2"), 0.3)
	assert.False(t, IsHighQuality(code, block.TypeChunk, "Chunk 2"))
}

func TestRealFunctionAccepted(t *testing.T) {
	code := `func ComputeChecksum(data []byte, seed uint64) uint64 {
	hash := seed
	for _, b := range data {
		hash = hash*31 + uint64(b)
	}
	return hash
}`
	assert.True(t, IsHighQuality(code, block.TypeFunction, "ComputeChecksum"))
}
