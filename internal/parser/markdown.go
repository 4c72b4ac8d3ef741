package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sourcelens/semindex/internal/block"
)

var markdownHeaderPattern = regexp.MustCompile(`^#{1,6}\s+`)

// parseMarkdown splits a markdown file into semantic sections by its
// headers (spec.md §3 markdown_section block type), adapted from the
// teacher's header-then-paragraph documentation chunker: a section
// small enough to fit targetSize tokens becomes one block; an oversized
// section is split further by paragraph, respecting fenced code blocks.
func parseMarkdown(file string, source []byte, targetSize, overlap int) ([]block.CodeBlock, error) {
	content := string(source)
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	lines := strings.Split(content, "\n")
	sections := splitMarkdownSections(lines)

	var blocks []block.CodeBlock
	for i, sec := range sections {
		blocks = append(blocks, markdownSectionBlocks(file, i, sec, targetSize, overlap)...)
	}
	return blocks, nil
}

type markdownSection struct {
	startLine int
	header    string
	lines     []string
}

func splitMarkdownSections(lines []string) []markdownSection {
	var sections []markdownSection
	current := markdownSection{startLine: 1}

	for i, line := range lines {
		if markdownHeaderPattern.MatchString(line) && i > 0 {
			if len(current.lines) > 0 {
				sections = append(sections, current)
			}
			current = markdownSection{startLine: i + 1, header: strings.TrimSpace(line), lines: []string{line}}
			continue
		}
		if current.header == "" && i == 0 && markdownHeaderPattern.MatchString(line) {
			current.header = strings.TrimSpace(line)
		}
		current.lines = append(current.lines, line)
	}
	if len(current.lines) > 0 {
		sections = append(sections, current)
	}
	return sections
}

func markdownSectionBlocks(file string, index int, sec markdownSection, targetSize, overlap int) []block.CodeBlock {
	text := strings.TrimSpace(strings.Join(sec.lines, "\n"))
	if text == "" {
		return nil
	}
	name := sec.header
	if name == "" {
		name = fmt.Sprintf("Section %d", index+1)
	}

	if estimateTokens(text) <= targetSize {
		return []block.CodeBlock{{
			File:     file,
			Line:     sec.startLine,
			EndLine:  sec.startLine + len(sec.lines) - 1,
			Code:     text,
			Type:     block.TypeMarkdownSection,
			Name:     name,
			Language: "markdown",
		}}
	}

	return splitMarkdownParagraphs(file, name, sec, targetSize, overlap)
}

type markdownParagraph struct {
	text      string
	startLine int
	endLine   int
}

func splitMarkdownParagraphs(file, name string, sec markdownSection, targetSize, overlap int) []block.CodeBlock {
	paragraphs := extractMarkdownParagraphs(sec.lines, sec.startLine)

	var blocks []block.CodeBlock
	var current []markdownParagraph
	size := 0
	part := 1

	flush := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, len(current))
		for i, p := range current {
			texts[i] = p.text
		}
		blocks = append(blocks, block.CodeBlock{
			File:     file,
			Line:     current[0].startLine,
			EndLine:  current[len(current)-1].endLine,
			Code:     strings.Join(texts, "\n\n"),
			Type:     block.TypeMarkdownSection,
			Name:     fmt.Sprintf("%s (part %d)", name, part),
			Language: "markdown",
		})
		part++
	}

	for _, para := range paragraphs {
		paraSize := estimateTokens(para.text)
		if size > 0 && size+paraSize > targetSize {
			flush()
			current = overlapTail(current, overlap)
			size = 0
			for _, p := range current {
				size += estimateTokens(p.text)
			}
		}
		current = append(current, para)
		size += paraSize
	}
	flush()
	return blocks
}

// overlapTail keeps the trailing paragraphs of the just-flushed chunk,
// up to overlap tokens, to seed the next chunk (spec.md §6.2 chunk_overlap).
func overlapTail(paragraphs []markdownParagraph, overlap int) []markdownParagraph {
	if overlap <= 0 || len(paragraphs) == 0 {
		return nil
	}
	var kept []markdownParagraph
	size := 0
	for i := len(paragraphs) - 1; i >= 0; i-- {
		t := estimateTokens(paragraphs[i].text)
		if size+t > overlap && len(kept) > 0 {
			break
		}
		kept = append([]markdownParagraph{paragraphs[i]}, kept...)
		size += t
	}
	return kept
}

func extractMarkdownParagraphs(lines []string, startLine int) []markdownParagraph {
	var paragraphs []markdownParagraph
	var current []string
	currentStart := startLine
	inCode := false
	fence := regexp.MustCompile("^```")

	flush := func(endLine int) {
		text := strings.TrimSpace(strings.Join(current, "\n"))
		if text != "" {
			paragraphs = append(paragraphs, markdownParagraph{text: text, startLine: currentStart, endLine: endLine})
		}
		current = nil
	}

	for i, line := range lines {
		lineNum := startLine + i
		if fence.MatchString(line) {
			if !inCode {
				flush(lineNum - 1)
				inCode = true
				currentStart = lineNum
				current = append(current, line)
			} else {
				current = append(current, line)
				flush(lineNum)
				inCode = false
				currentStart = lineNum + 1
			}
			continue
		}
		if inCode {
			current = append(current, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush(lineNum - 1)
			currentStart = lineNum + 1
			continue
		}
		current = append(current, line)
	}
	flush(startLine + len(lines) - 1)
	return paragraphs
}

func estimateTokens(text string) int {
	return len(text) / 4
}
