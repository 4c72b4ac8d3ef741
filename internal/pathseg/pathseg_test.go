package pathseg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeJoinRoundTrip(t *testing.T) {
	cases := []string{
		"src/components/Button.tsx",
		"a.ts",
		"dir/sub/file.go",
	}
	for _, p := range cases {
		segs := Decompose(p)
		require.Equal(t, p, Join(segs))
	}
}

func TestMatchesPrefix(t *testing.T) {
	assert.True(t, MatchesPrefix("src/components/Button.tsx", "src/components"))
	assert.False(t, MatchesPrefix("src/lib/Button.tsx", "src/components"))
}

func TestDecomposeEmpty(t *testing.T) {
	assert.Empty(t, Decompose(""))
	assert.Empty(t, Decompose("."))
}
