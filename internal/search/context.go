package search

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLinesBefore and DefaultLinesAfter are the Context Extractor's
// surrounding-window defaults (spec.md §4.13).
const (
	DefaultLinesBefore = 3
	DefaultLinesAfter  = 3
)

// ContextOptions parametrizes ExtractContext.
type ContextOptions struct {
	LinesBefore int
	LinesAfter  int
	// Gutter renders each line as "{marker} {lineno:>4} | {line}" when
	// true, with marker ">" on the hit line and " " elsewhere.
	Gutter bool
}

func withContextDefaults(opts ContextOptions) ContextOptions {
	if opts.LinesBefore <= 0 {
		opts.LinesBefore = DefaultLinesBefore
	}
	if opts.LinesAfter <= 0 {
		opts.LinesAfter = DefaultLinesAfter
	}
	return opts
}

// ExtractContext reads root/r.File and slices
// [r.Line-linesBefore, r.Line+linesAfter), bounded by file length,
// returning the extracted text. A read error is logged and r.Code is
// returned unchanged (spec.md §4.13: "Read errors are logged and yield
// the original hit unchanged").
func ExtractContext(root string, r Result, opts ContextOptions) string {
	opts = withContextDefaults(opts)

	lines, err := readLines(filepath.Join(root, r.File))
	if err != nil {
		log.Printf("search: context extraction failed for %s: %v", r.File, err)
		return r.Code
	}

	start := r.Line - opts.LinesBefore
	if start < 1 {
		start = 1
	}
	end := r.Line + opts.LinesAfter - 1
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return r.Code
	}

	window := lines[start-1 : end]
	if !opts.Gutter {
		return strings.Join(window, "\n")
	}

	rendered := make([]string, len(window))
	for i, line := range window {
		lineno := start + i
		marker := " "
		if lineno == r.Line {
			marker = ">"
		}
		rendered[i] = fmt.Sprintf("%s %4d | %s", marker, lineno, line)
	}
	return strings.Join(rendered, "\n")
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
