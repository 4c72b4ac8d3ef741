// Package pathseg decomposes repository-relative file paths into ordered
// numbered segments, used as secondary keys for directory-prefix
// filtering in the vector store payload (spec.md §4.1, §6.3).
package pathseg

import (
	"path"
	"strconv"
	"strings"
)

// MaxDepth bounds the number of segments retained, per spec.md §8's
// round-trip law ("up to max_depth segments").
const MaxDepth = 32

// Decompose splits p into an ordered map of numeric-string index ->
// segment, after normalizing separators to "/" and stripping any leading
// "/". Segments beyond MaxDepth are dropped.
func Decompose(p string) map[string]string {
	clean := strings.TrimPrefix(path.Clean(filepathToSlash(p)), "/")
	if clean == "." || clean == "" {
		return map[string]string{}
	}
	parts := strings.Split(clean, "/")
	if len(parts) > MaxDepth {
		parts = parts[:MaxDepth]
	}
	out := make(map[string]string, len(parts))
	for i, part := range parts {
		out[strconv.Itoa(i)] = part
	}
	return out
}

// Join reconstructs a path from a segment map in index order, inverse of
// Decompose up to MaxDepth segments.
func Join(segments map[string]string) string {
	n := len(segments)
	parts := make([]string, n)
	for k, v := range segments {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= n {
			continue
		}
		parts[i] = v
	}
	return strings.Join(parts, "/")
}

// DirectoryPrefixSegments decomposes a directory-prefix string (e.g.
// "src/components") the same way Decompose does, for use building a
// prefix filter.
func DirectoryPrefixSegments(prefix string) map[string]string {
	return Decompose(prefix)
}

// MatchesPrefix reports whether the segments of p begin with the
// segments of prefix, in order.
func MatchesPrefix(p, prefix string) bool {
	pSegs := Decompose(p)
	prefixSegs := DirectoryPrefixSegments(prefix)
	for k, v := range prefixSegs {
		if pSegs[k] != v {
			return false
		}
	}
	return true
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
