package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRankExactMatchOutranksHigherVectorScore is spec.md's worked
// ranking example: R1 has a higher raw vector score, but R2's
// exact_match boost must still place it first.
func TestRankExactMatchOutranksHigherVectorScore(t *testing.T) {
	now := time.Now()
	// R1's name exactly matches the query (name_match boost only); R2's
	// code contains the query verbatim (exact_match boost only) and its
	// name shares no characters with the query, so name_match is exactly
	// zero and the two boosts don't compound.
	r1 := Result{File: "a.go", Line: 1, Name: "flubber", Code: "func noop() { return 1 }", Score: 0.80, IndexedAt: now}
	r2 := Result{File: "b.go", Line: 1, Name: "gadzooks", Code: "call flubber() here", Score: 0.70, IndexedAt: now}

	ranked := Rank([]Result{r1, r2}, RankOptions{Query: "flubber", Now: now})

	require := assert.New(t)
	require.Len(ranked, 2)
	require.Equal("b.go", ranked[0].File, "exact match must outrank a higher raw vector score")
	require.Equal(1, ranked[0].Rank)
	require.Equal("a.go", ranked[1].File)
	require.Equal(2, ranked[1].Rank)
	require.InDelta(1.05, ranked[0].FinalScore, 1e-9)
	require.InDelta(0.96, ranked[1].FinalScore, 1e-9)
}

func TestRankIsStableOnTies(t *testing.T) {
	now := time.Now()
	results := []Result{
		{File: "a.go", Line: 1, Name: "x", Code: "x", Score: 0.5, IndexedAt: now},
		{File: "b.go", Line: 1, Name: "y", Code: "y", Score: 0.5, IndexedAt: now},
		{File: "c.go", Line: 1, Name: "z", Code: "z", Score: 0.5, IndexedAt: now},
	}

	ranked := Rank(results, RankOptions{Now: now})

	require := assert.New(t)
	require.Equal("a.go", ranked[0].File)
	require.Equal("b.go", ranked[1].File)
	require.Equal("c.go", ranked[2].File)
}

func TestRankDeduplicatesByFileAndLine(t *testing.T) {
	now := time.Now()
	results := []Result{
		{File: "a.go", Line: 10, Name: "dup", Code: "dup", Score: 0.4, IndexedAt: now},
		{File: "a.go", Line: 10, Name: "dup", Code: "dup", Score: 0.9, IndexedAt: now},
		{File: "a.go", Line: 11, Name: "other", Code: "other", Score: 0.3, IndexedAt: now},
	}

	ranked := Rank(results, RankOptions{Now: now})

	require := assert.New(t)
	require.Len(ranked, 2, "ranker output must contain no duplicate (file, line) pairs")
	require.Equal("a.go", ranked[0].File)
	require.Equal(10, ranked[0].Line)
	require.InDelta(0.9, ranked[0].FinalScore, 1e-9, "the higher-scored duplicate must be the one kept")
	require.Equal(1, ranked[0].Rank)
	require.Equal(2, ranked[1].Rank)
}

func TestRankOutputIsSortedDescendingByFinalScore(t *testing.T) {
	now := time.Now()
	results := []Result{
		{File: "a.go", Line: 1, Name: "a", Code: "a", Score: 0.1, IndexedAt: now},
		{File: "b.go", Line: 1, Name: "b", Code: "b", Score: 0.9, IndexedAt: now},
		{File: "c.go", Line: 1, Name: "c", Code: "c", Score: 0.5, IndexedAt: now},
	}

	ranked := Rank(results, RankOptions{Now: now})

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].FinalScore, ranked[i].FinalScore)
		assert.Equal(t, i, ranked[i-1].Rank)
	}
}

func TestNameMatchGradations(t *testing.T) {
	assert.Equal(t, 1.0, nameMatch("Handle", "Handle"))
	assert.Equal(t, 0.9, nameMatch("HandleRequest", "Handle"))
	assert.Equal(t, 0.7, nameMatch("DoHandleThing", "Handle"))
	assert.Equal(t, 0.0, nameMatch("Handle", ""))
	assert.Equal(t, 0.0, nameMatch("", "Handle"))
}

func TestRecencyFactorBuckets(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 1.0, RecencyFactor(now.Add(-2*24*time.Hour), now))
	assert.Equal(t, 0.9, RecencyFactor(now.Add(-10*24*time.Hour), now))
	assert.Equal(t, 0.8, RecencyFactor(now.Add(-20*24*time.Hour), now))
	assert.Equal(t, 0.7, RecencyFactor(now.Add(-40*24*time.Hour), now))
}
