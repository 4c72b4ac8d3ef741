package parser

import (
	"fmt"
	"strings"

	"github.com/sourcelens/semindex/internal/block"
)

// chunkFallback splits source into fixed-size, overlapping text windows
// when no syntactic parser claims the file (spec.md §3's "generic text
// chunks as fallback"; indexing.fallback_chunking, §6.2 chunk_size/
// chunk_overlap), adapted from the teacher's token-budget chunking.
func chunkFallback(file string, source []byte, targetSize, overlap int) []block.CodeBlock {
	content := string(source)
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if targetSize <= 0 {
		targetSize = 512
	}
	if overlap < 0 || overlap >= targetSize {
		overlap = 0
	}

	lines := strings.Split(content, "\n")
	linesPerChunk := tokensToLines(targetSize, lines)
	overlapLines := tokensToLines(overlap, lines)
	if linesPerChunk < 1 {
		linesPerChunk = 1
	}

	var blocks []block.CodeBlock
	start := 0
	index := 1
	for start < len(lines) {
		end := start + linesPerChunk
		if end > len(lines) {
			end = len(lines)
		}
		text := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if text != "" {
			blocks = append(blocks, block.CodeBlock{
				File:     file,
				Line:     start + 1,
				EndLine:  end,
				Code:     text,
				Type:     block.TypeChunk,
				Name:     fmt.Sprintf("Chunk %d", index),
				Language: "text",
			})
			index++
		}
		if end == len(lines) {
			break
		}
		start = end - overlapLines
		if start < 0 {
			start = end
		}
	}
	return blocks
}

// tokensToLines converts a token budget into an approximate line count
// using the same ~4-chars-per-token estimate as estimateTokens.
func tokensToLines(tokens int, lines []string) int {
	if tokens <= 0 || len(lines) == 0 {
		return 0
	}
	avgLineLen := 0
	for _, l := range lines {
		avgLineLen += len(l)
	}
	avgLineLen /= len(lines)
	if avgLineLen == 0 {
		avgLineLen = 40
	}
	charBudget := tokens * 4
	n := charBudget / (avgLineLen + 1)
	if n < 1 {
		n = 1
	}
	return n
}
