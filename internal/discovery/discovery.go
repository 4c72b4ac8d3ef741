// Package discovery implements the parallel directory walk (spec.md
// §4.3): bounded-concurrency traversal, a static exclude set, and
// extension-based language filtering. Grounded on the teacher's
// internal/indexer/discovery.go glob-filtering idiom, generalized to a
// bounded worker pool.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/sourcelens/semindex/internal/ignore"
)

// DefaultExcludeDirs are directory names skipped verbatim during
// traversal, per spec.md §4.3.
var DefaultExcludeDirs = []string{
	"node_modules", ".git", "dist", "build", ".next", "vendor", "__pycache__",
}

// DefaultMaxConcurrentDirs is the default directory-read concurrency cap.
const DefaultMaxConcurrentDirs = 10

// LanguageMap maps a file extension (including the leading dot) to its
// normalized language tag. Only files whose extension appears here are
// discovered.
type LanguageMap map[string]string

// DefaultLanguageMap covers the languages the bundled parser (§internal/
// parser) understands plus Markdown.
func DefaultLanguageMap() LanguageMap {
	return LanguageMap{
		".go":    "go",
		".py":    "python",
		".ts":    "typescript",
		".tsx":   "typescript",
		".js":    "javascript",
		".jsx":   "javascript",
		".java":  "java",
		".c":     "c",
		".h":     "c",
		".cpp":   "cpp",
		".hpp":   "cpp",
		".cc":    "cpp",
		".php":   "php",
		".rb":    "ruby",
		".rs":    "rust",
		".md":    "markdown",
		".mdx":   "markdown",
	}
}

// Discoverer walks a base directory with bounded concurrency.
type Discoverer struct {
	MaxConcurrentDirs int
	ExcludeDirs       map[string]bool
	Languages         LanguageMap
	Filter            *ignore.Filter // optional; nil disables ignore filtering
}

// New creates a Discoverer with spec.md §4.3 defaults.
func New(filter *ignore.Filter) *Discoverer {
	excl := make(map[string]bool, len(DefaultExcludeDirs))
	for _, d := range DefaultExcludeDirs {
		excl[d] = true
	}
	return &Discoverer{
		MaxConcurrentDirs: DefaultMaxConcurrentDirs,
		ExcludeDirs:       excl,
		Languages:         DefaultLanguageMap(),
		Filter:            filter,
	}
}

// dirError records a non-fatal directory read failure.
type dirError struct {
	Dir string
	Err error
}

// Result is the outcome of a Discover call.
type Result struct {
	Files  []string // repo-relative paths, sorted
	Errors []dirError
}

// Discover walks base, returning repo-relative paths of files whose
// extension is in d.Languages, skipping directories in d.ExcludeDirs and
// any path the ignore filter rejects. Directory read errors are recorded
// in Result.Errors and do not abort the traversal (spec.md §4.3).
func (d *Discoverer) Discover(ctx context.Context, base string) (Result, error) {
	cap64 := int64(d.MaxConcurrentDirs)
	if cap64 <= 0 {
		cap64 = DefaultMaxConcurrentDirs
	}
	sem := semaphore.NewWeighted(cap64)

	var (
		mu     sync.Mutex
		files  []string
		errs   []dirError
		wg     sync.WaitGroup
	)

	var walk func(dir string)
	walk = func(dir string) {
		defer wg.Done()

		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}
		entries, err := os.ReadDir(dir)
		sem.Release(1)
		if err != nil {
			mu.Lock()
			errs = append(errs, dirError{Dir: dir, Err: err})
			mu.Unlock()
			return
		}

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if d.ExcludeDirs[entry.Name()] {
					continue
				}
				rel, _ := filepath.Rel(base, full)
				if d.Filter != nil && d.Filter.ShouldIgnore(filepath.ToSlash(rel), true) {
					continue
				}
				wg.Add(1)
				go walk(full)
				continue
			}

			ext := filepath.Ext(entry.Name())
			if _, ok := d.Languages[ext]; !ok {
				continue
			}

			rel, err := filepath.Rel(base, full)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if d.Filter != nil && d.Filter.ShouldIgnore(rel, false) {
				continue
			}

			mu.Lock()
			files = append(files, rel)
			mu.Unlock()
		}
	}

	wg.Add(1)
	go walk(base)
	wg.Wait()

	sort.Strings(files)
	return Result{Files: files, Errors: errs}, nil
}
