// Package ignore implements the gitignore-style pattern matcher used to
// filter discovered files (spec.md §4.2, §6.4).
package ignore

import (
	"bufio"
	"os"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// rule is one compiled ignore/negation pattern.
type rule struct {
	pattern  string // original pattern text, anchoring/trailing-slash stripped
	negate   bool
	dirOnly  bool
	anchored bool
	segments []string    // pattern split on "/"
	segGlobs []glob.Glob // compiled per-segment matcher; nil entry for "**"
}

// literalGlob matches only its own exact text, used when a segment
// isn't valid glob syntax and gitignore's fallback is to treat it
// literally.
type literalGlob string

func (l literalGlob) Match(s string) bool { return string(l) == s }

// compileSegment compiles a single gitignore path segment ("*" matches
// any run of non-"/" characters, "?" matches exactly one, "[...]"
// character classes) into a gobwas/glob matcher, replacing a hand-rolled
// recursive matcher.
func compileSegment(seg string) glob.Glob {
	if seg == "**" {
		return nil
	}
	g, err := glob.Compile(seg, '/')
	if err != nil {
		return literalGlob(seg)
	}
	return g
}

// Filter holds the compiled rule set loaded from one or more ignore
// files plus programmatically added patterns. Rules are evaluated in
// file order; the gitignore dialect's "last match wins" semantics are
// honored by iterating rules in order and remembering the last verdict.
type Filter struct {
	rules []rule
}

// New returns an empty Filter. The `.git` directory is unconditionally
// ignored regardless of loaded patterns (spec.md §4.2).
func New() *Filter {
	return &Filter{}
}

// LoadPatterns reads an ignore file at path and adds its patterns. A
// missing file is not an error — it is simply a no-op (ignore files are
// optional).
func (f *Filter) LoadPatterns(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		f.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern compiles and appends a single pattern line. Empty lines and
// comment lines (leading "#") are ignored.
func (f *Filter) AddPattern(line string) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}

	r := rule{}
	pat := line
	if strings.HasPrefix(pat, "!") {
		r.negate = true
		pat = pat[1:]
	}
	if strings.HasSuffix(pat, "/") {
		r.dirOnly = true
		pat = strings.TrimSuffix(pat, "/")
	}
	if strings.HasPrefix(pat, "/") {
		r.anchored = true
		pat = strings.TrimPrefix(pat, "/")
	}
	if strings.Contains(pat, "/") {
		// A pattern containing a slash (other than a trailing one) is
		// always anchored to the directory holding the ignore file, per
		// the gitignore dialect.
		r.anchored = true
	}
	r.pattern = pat
	r.segments = strings.Split(pat, "/")
	r.segGlobs = make([]glob.Glob, len(r.segments))
	for i, seg := range r.segments {
		r.segGlobs[i] = compileSegment(seg)
	}
	f.rules = append(f.rules, r)
}

// ShouldIgnore reports whether repoRelativePath should be excluded.
// isDir tells a dirOnly pattern (a trailing "/" in the source line,
// e.g. "dist/") apart from a same-named file: such a pattern only ever
// matches a directory, matching git's own gitignore dialect — a plain
// file named exactly "dist" is not ignored by "dist/". A match against
// some ancestor directory of repoRelativePath (e.g. "dist/" matching
// "dist/x/y.js") is unaffected by isDir, since the ancestor is known to
// be a directory regardless of what repoRelativePath itself is. Negated
// patterns evaluated after a matching ignore pattern re-include the
// path; patterns are evaluated in declaration order and the last
// matching rule (ignore or negate) determines the outcome.
func (f *Filter) ShouldIgnore(repoRelativePath string, isDir bool) bool {
	clean := path.Clean(strings.ReplaceAll(repoRelativePath, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")

	for _, seg := range strings.Split(clean, "/") {
		if seg == ".git" {
			return true
		}
	}

	ignored := false
	for _, r := range f.rules {
		if matchRule(r, clean, isDir) {
			ignored = !r.negate
		}
	}
	return ignored
}

// matchRule reports whether rule r matches p (a cleaned, "/"-separated,
// repo-relative path, no leading slash). isDir applies r.dirOnly only
// when r matches p's full, final segment; a match that stops at some
// ancestor directory of p always counts.
func matchRule(r rule, p string, isDir bool) bool {
	segs := strings.Split(p, "/")

	if r.anchored {
		return matchSegments(r.segGlobs, segs, r.dirOnly, isDir)
	}

	// Unanchored: the pattern may match starting at any directory depth.
	for start := 0; start <= len(segs); start++ {
		if matchSegments(r.segGlobs, segs[start:], r.dirOnly, isDir) {
			return true
		}
	}
	// Also allow a bare basename pattern (no "/" in it) to match any
	// ancestor directory name, so "node_modules" ignores
	// "node_modules/x/y.js" without requiring a "**" suffix.
	if len(r.segGlobs) == 1 && r.segGlobs[0] != nil {
		for i, seg := range segs {
			if !r.segGlobs[0].Match(seg) {
				continue
			}
			exact := i == len(segs)-1
			if exact && r.dirOnly && !isDir {
				continue
			}
			return true
		}
	}
	return false
}

// matchSegments matches a pattern's compiled segment matchers (which may
// include a nil entry for "**") against candidate path segments,
// anchored at the start of both, applying the dirOnly/isDir rule to an
// exact (full-candidate-consuming) match only.
func matchSegments(pattern []glob.Glob, candidate []string, dirOnly, isDir bool) bool {
	matched, exact := matchSegmentsAt(pattern, candidate, 0, 0)
	if !matched {
		return false
	}
	if exact && dirOnly && !isDir {
		return false
	}
	return true
}

func matchSegmentsAt(pattern []glob.Glob, candidate []string, pi, ci int) (matched, exact bool) {
	for pi < len(pattern) {
		seg := pattern[pi]
		if seg == nil {
			// "**" matches any number of segments including zero.
			if pi == len(pattern)-1 {
				return true, true
			}
			for skip := 0; ci+skip <= len(candidate); skip++ {
				if m, e := matchSegmentsAt(pattern, candidate, pi+1, ci+skip); m {
					return true, e
				}
			}
			return false, false
		}
		if ci >= len(candidate) {
			return false, false
		}
		if !seg.Match(candidate[ci]) {
			return false, false
		}
		pi++
		ci++
	}
	// Pattern exhausted before the candidate: treat this as a directory
	// match, so "dist" (or "dist/") also ignores everything below it,
	// e.g. "dist/x/y.js" — git itself never descends into an ignored
	// directory, which has the same effect. Not an exact match: the
	// matched prefix is necessarily a directory, so dirOnly is satisfied
	// regardless of what the full candidate turns out to be.
	return true, ci == len(candidate)
}

