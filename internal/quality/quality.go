// Package quality implements the pre-embedding quality gate (spec.md
// §4.4): a [0,1] score and a threshold decision rejecting low-information
// blocks before they reach the enricher/embedder.
package quality

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sourcelens/semindex/internal/block"
)

// Threshold is the minimum score to be considered high quality.
const Threshold = 0.3

var noiseTokens = map[string]bool{
	"div": true, "span": true, "var": true, "let": true,
	"const": true, "if": true, "else": true, "return": true,
}

var closingOnlyRe = regexp.MustCompile(`^[\s)\]};,]+$`)

var tokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|"[^"]*"|'[^']*'`)

var typeBonus = map[block.Type]float64{
	block.TypeClass:           0.25,
	block.TypeFunction:        0.2,
	block.TypeMethod:          0.2,
	block.TypeTrait:           0.2,
	block.TypeImpl:            0.2,
	block.TypeStruct:          0.2,
	block.TypeInterface:       0.15,
	block.TypeEnum:            0.15,
	block.TypeModule:          0.15,
	block.TypeNamespace:       0.15,
	block.TypeMarkdownSection: 0.15,
	block.TypeVariable:        0.05,
	block.TypeChunk:           0,
}

// Score computes the [0,1] quality score for code, per spec.md §4.4's
// weighted factors.
func Score(code string, t block.Type, name string) float64 {
	score := meaningfulContentRatio(code)*0.3 +
		characterDiversity(code)*0.2 +
		meaningfulTokenScore(code)*0.2

	if isClosingOnly(code) {
		score *= 0.1
	}

	score += typeBonus[t]

	if !strings.Contains(name, "Chunk") && !strings.Contains(name, "Section") {
		score += 0.15
	}

	score += lengthBonus(len(code)) * 0.1

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// IsHighQuality reports whether Score(code, t, name) meets Threshold.
func IsHighQuality(code string, t block.Type, name string) bool {
	return Score(code, t, name) >= Threshold
}

func meaningfulContentRatio(code string) float64 {
	if len(code) == 0 {
		return 0
	}
	noise := 0
	for _, r := range code {
		switch {
		case unicode.IsSpace(r):
			noise++
		case strings.ContainsRune("{}[]()", r):
			noise++
		case r == ',' || r == ';':
			noise++
		}
	}
	return 1 - float64(noise)/float64(len([]rune(code)))
}

func characterDiversity(code string) float64 {
	stripped := strings.Join(strings.Fields(code), "")
	if len(stripped) == 0 {
		return 0
	}
	seen := make(map[rune]bool)
	for _, r := range stripped {
		seen[r] = true
	}
	denom := len(stripped)
	if denom > 50 {
		denom = 50
	}
	return float64(len(seen)) / float64(denom)
}

func meaningfulTokenScore(code string) float64 {
	matches := tokenRe.FindAllString(code, -1)
	count := 0
	for _, m := range matches {
		lower := strings.ToLower(m)
		if noiseTokens[lower] {
			continue
		}
		count++
	}
	if count > 20 {
		count = 20
	}
	return float64(count) / 20
}

func isClosingOnly(code string) bool {
	lines := strings.Split(code, "\n")
	nonEmpty := 0
	closing := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if closingOnlyRe.MatchString(line) {
			closing++
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(closing)/float64(nonEmpty) > 0.7
}

func lengthBonus(n int) float64 {
	switch {
	case n < 20:
		return 0
	case n < 100:
		return 0.3
	case n < 2000:
		return 1.0
	case n < 5000:
		return 0.8
	default:
		return 0.6
	}
}
