package diagram

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// ContextLength is the maximum number of bytes of preceding text captured
// with each block.
const ContextLength = 200

var (
	// reMermaidFence matches fences labelled ```mermaid or ```mmd.
	reMermaidFence = regexp.MustCompile("(?i)```[ \\t]*(?:mermaid|mmd)[ \\t]*\\r?\\n([\\s\\S]*?)```")
	// reAnyFence matches any fenced block regardless of its language hint.
	reAnyFence = regexp.MustCompile("```[^\\n`]*\\r?\\n([\\s\\S]*?)```")
)

// ExtractBlocks scans text for fenced mermaid blocks. When no labelled
// block exists it falls back to any fenced block whose content looks like
// diagram source, since AI output labels fences inconsistently.
func ExtractBlocks(text string) []model.DiagramBlock {
	if text == "" {
		return nil
	}

	blocks := collect(text, reMermaidFence, nil)
	if len(blocks) > 0 {
		return blocks
	}
	return collect(text, reAnyFence, IsValidCode)
}

func collect(text string, re *regexp.Regexp, keep func(string) bool) []model.DiagramBlock {
	var blocks []model.DiagramBlock
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		code := strings.TrimSpace(text[loc[2]:loc[3]])
		if code == "" {
			continue
		}
		if keep != nil && !keep(code) {
			continue
		}
		blocks = append(blocks, model.DiagramBlock{
			Code:    code,
			Context: precedingContext(text, loc[0]),
		})
	}
	return blocks
}

// precedingContext returns up to ContextLength bytes before pos, starting
// on a rune boundary.
func precedingContext(text string, pos int) string {
	start := pos - ContextLength
	if start < 0 {
		start = 0
	}
	for start < pos && !utf8.RuneStart(text[start]) {
		start++
	}
	return text[start:pos]
}
