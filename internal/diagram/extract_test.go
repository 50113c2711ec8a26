package diagram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractBlocks_Labelled(t *testing.T) {
	text := "## Overview\nHere is the flow:\n```mermaid\nflowchart TD\n  A-->B\n```\nand the data:\n```mmd\nerDiagram\n  A ||--o{ B : has\n```\n"
	blocks := ExtractBlocks(text)
	if len(blocks) != 2 {
		t.Fatalf("ExtractBlocks() returned %d blocks, want 2", len(blocks))
	}
	if blocks[0].Code != "flowchart TD\n  A-->B" {
		t.Errorf("blocks[0].Code = %q", blocks[0].Code)
	}
	if blocks[0].Context != "## Overview\nHere is the flow:\n" {
		t.Errorf("blocks[0].Context = %q", blocks[0].Context)
	}
	if !strings.HasPrefix(blocks[1].Code, "erDiagram") {
		t.Errorf("blocks[1].Code = %q, want erDiagram block", blocks[1].Code)
	}
	if !strings.HasSuffix(blocks[1].Context, "and the data:\n") {
		t.Errorf("blocks[1].Context = %q", blocks[1].Context)
	}
}

func TestExtractBlocks_LabelCaseInsensitive(t *testing.T) {
	blocks := ExtractBlocks("```Mermaid\ngraph TD\n A-->B\n```")
	if len(blocks) != 1 {
		t.Fatalf("ExtractBlocks() returned %d blocks, want 1", len(blocks))
	}
}

func TestExtractBlocks_LabelledBlocksAreNotPrevalidated(t *testing.T) {
	blocks := ExtractBlocks("```mermaid\nnot a diagram\n```")
	if len(blocks) != 1 {
		t.Fatalf("ExtractBlocks() returned %d blocks, want 1", len(blocks))
	}
}

func TestExtractBlocks_SkipsEmpty(t *testing.T) {
	blocks := ExtractBlocks("```mermaid\n   \n```\n```mermaid\ngraph TD\n A-->B\n```")
	if len(blocks) != 1 {
		t.Fatalf("ExtractBlocks() returned %d blocks, want 1", len(blocks))
	}
	if !strings.HasPrefix(blocks[0].Code, "graph TD") {
		t.Errorf("Code = %q", blocks[0].Code)
	}
}

func TestExtractBlocks_FallbackUnlabelled(t *testing.T) {
	text := "Some code:\n```python\nprint('hi')\n```\nThe architecture:\n```\ngraph LR\n  api --> db\n```\n"
	blocks := ExtractBlocks(text)
	if len(blocks) != 1 {
		t.Fatalf("ExtractBlocks() returned %d blocks, want 1", len(blocks))
	}
	if blocks[0].Code != "graph LR\n  api --> db" {
		t.Errorf("Code = %q", blocks[0].Code)
	}
	if !strings.HasSuffix(blocks[0].Context, "The architecture:\n") {
		t.Errorf("Context = %q", blocks[0].Context)
	}
}

func TestExtractBlocks_FallbackOnlyWhenNoLabelledBlock(t *testing.T) {
	text := "```\ngraph LR\n  a --> b\n```\n```mermaid\nsequenceDiagram\n  A->>B: hi\n```"
	blocks := ExtractBlocks(text)
	if len(blocks) != 1 {
		t.Fatalf("ExtractBlocks() returned %d blocks, want 1", len(blocks))
	}
	if !strings.HasPrefix(blocks[0].Code, "sequenceDiagram") {
		t.Errorf("Code = %q, want the labelled block", blocks[0].Code)
	}
}

func TestExtractBlocks_ContextClamped(t *testing.T) {
	prefix := strings.Repeat("x", 500)
	blocks := ExtractBlocks(prefix + "```mermaid\ngraph TD\n A-->B\n```")
	if len(blocks) != 1 {
		t.Fatalf("ExtractBlocks() returned %d blocks, want 1", len(blocks))
	}
	if len(blocks[0].Context) != ContextLength {
		t.Errorf("len(Context) = %d, want %d", len(blocks[0].Context), ContextLength)
	}
}

func TestExtractBlocks_ContextRuneBoundary(t *testing.T) {
	prefix := strings.Repeat("é", 150) // 300 bytes
	blocks := ExtractBlocks(prefix + "```mermaid\ngraph TD\n A-->B\n```")
	if len(blocks) != 1 {
		t.Fatalf("ExtractBlocks() returned %d blocks, want 1", len(blocks))
	}
	if !utf8.ValidString(blocks[0].Context) {
		t.Errorf("Context is not valid UTF-8: %q", blocks[0].Context)
	}
	if len(blocks[0].Context) > ContextLength {
		t.Errorf("len(Context) = %d, want <= %d", len(blocks[0].Context), ContextLength)
	}
}

func TestExtractBlocks_NoBlocks(t *testing.T) {
	for _, text := range []string{"", "plain prose", "```go\nfunc main() {}\n```"} {
		if blocks := ExtractBlocks(text); len(blocks) != 0 {
			t.Errorf("ExtractBlocks(%q) = %v, want none", text, blocks)
		}
	}
}
