package search

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Boost defaults (spec.md §4.12).
const (
	DefaultBoostExact    = 1.5
	DefaultBoostName     = 1.2
	DefaultBoostRecency  = 1.1
	complexityDivisor    = 50.0
	complexityPenaltyMin = 0.5
)

// RankOptions parametrizes Rank; a zero value uses spec.md's defaults
// with the complexity penalty disabled.
type RankOptions struct {
	Query              string
	BoostExact         float64
	BoostName          float64
	BoostRecency       float64
	PenalizeComplexity bool
	Now                time.Time
}

// Ranked is a Result annotated with its final score and 1-based rank.
type Ranked struct {
	Result
	FinalScore float64
	Rank       int
}

// Rank scores, sorts, assigns ranks to, and deduplicates results
// (spec.md §4.12): final score combines vector_score with exact-match,
// name-match, recency, and (optionally) complexity factors; ties break
// by the original slice order (sort.SliceStable); duplicates by
// (file, line) are collapsed, keeping the highest-ranked entry.
func Rank(results []Result, opts RankOptions) []Ranked {
	opts = withDefaults(opts)

	ranked := make([]Ranked, len(results))
	for i, r := range results {
		ranked[i] = Ranked{Result: r, FinalScore: finalScore(r, opts)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	deduped := deduplicate(ranked)
	for i := range deduped {
		deduped[i].Rank = i + 1
	}
	return deduped
}

func withDefaults(opts RankOptions) RankOptions {
	if opts.BoostExact == 0 {
		opts.BoostExact = DefaultBoostExact
	}
	if opts.BoostName == 0 {
		opts.BoostName = DefaultBoostName
	}
	if opts.BoostRecency == 0 {
		opts.BoostRecency = DefaultBoostRecency
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	return opts
}

func finalScore(r Result, opts RankOptions) float64 {
	score := r.Score

	if exactMatch(r.Code, opts.Query) {
		score *= opts.BoostExact
	}

	nm := nameMatch(r.Name, opts.Query)
	score *= 1 + nm*(opts.BoostName-1)

	rec := RecencyFactor(r.IndexedAt, opts.Now)
	score *= 1 + (rec-1)*opts.BoostRecency

	if opts.PenalizeComplexity {
		penalty := math.Max(complexityPenaltyMin, 1-float64(r.Metadata.Complexity)/complexityDivisor)
		score *= penalty
	}

	return score
}

func exactMatch(code, query string) bool {
	if query == "" {
		return false
	}
	return strings.Contains(strings.ToLower(code), strings.ToLower(query))
}

// nameMatch scores a block's name against the query: exact (1.0),
// prefix (0.9), substring (0.7), else half the character-set overlap
// ratio between query and name (spec.md §4.12).
func nameMatch(name, query string) float64 {
	if query == "" || name == "" {
		return 0
	}
	lowerName, lowerQuery := strings.ToLower(name), strings.ToLower(query)

	switch {
	case lowerName == lowerQuery:
		return 1.0
	case strings.HasPrefix(lowerName, lowerQuery):
		return 0.9
	case strings.Contains(lowerName, lowerQuery):
		return 0.7
	default:
		return 0.5 * charSetOverlap(lowerName, lowerQuery)
	}
}

func charSetOverlap(a, b string) float64 {
	setA, setB := charSet(a), charSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for c := range setA {
		if setB[c] {
			shared++
		}
	}
	union := len(setA)
	for c := range setB {
		if !setA[c] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func charSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}

// RecencyFactor derives the recency factor (spec.md §4.12) from a
// point's indexed_at timestamp: within 7 days scores 1.0, 14 days 0.9,
// 30 days 0.8, otherwise 0.7. A zero-valued indexedAt (not recorded)
// falls through to 0.7.
func RecencyFactor(indexedAt time.Time, now time.Time) float64 {
	age := now.Sub(indexedAt)
	switch {
	case age <= 7*24*time.Hour:
		return 1.0
	case age <= 14*24*time.Hour:
		return 0.9
	case age <= 30*24*time.Hour:
		return 0.8
	default:
		return 0.7
	}
}

func deduplicate(ranked []Ranked) []Ranked {
	seen := make(map[string]bool, len(ranked))
	out := make([]Ranked, 0, len(ranked))
	for _, r := range ranked {
		key := r.File + ":" + strconv.Itoa(r.Line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
