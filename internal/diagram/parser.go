package diagram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// EmptyInputMessage is the single parse error reported for empty input.
const EmptyInputMessage = "Input text is empty or invalid"

// ErrInvalidDiagram is returned by ParseOne when code fails the validity check.
var ErrInvalidDiagram = errors.New("invalid mermaid diagram structure")

// Parse extracts every diagram from AI output. It never fails: blocks that
// cannot be used are reported in ParseErrors by their 1-based position
// among all candidate blocks, and parsing continues with the next block.
func Parse(text string) model.ParseResult {
	if text == "" {
		return model.ParseResult{
			Diagrams:    []model.ParsedDiagram{},
			RawText:     text,
			ParseErrors: []string{EmptyInputMessage},
		}
	}

	result := model.ParseResult{
		Diagrams: []model.ParsedDiagram{},
		RawText:  text,
	}
	for i, block := range ExtractBlocks(text) {
		d, err := parseBlock(block)
		if errors.Is(err, ErrInvalidDiagram) {
			result.ParseErrors = append(result.ParseErrors, fmt.Sprintf("Block %d: Invalid mermaid diagram structure", i+1))
			continue
		}
		if err != nil {
			result.ParseErrors = append(result.ParseErrors, fmt.Sprintf("Block %d: %v", i+1, err))
			continue
		}
		result.Diagrams = append(result.Diagrams, d)
	}
	return result
}

// ParseOne builds a diagram record from a single piece of mermaid source,
// such as a diagram the user edited by hand.
func ParseOne(code string) (model.ParsedDiagram, error) {
	return parseBlock(model.DiagramBlock{Code: strings.TrimSpace(code)})
}

// parseBlock turns one block into a diagram. A panic in any extraction step
// is converted to an error so one bad block cannot abort the whole parse.
func parseBlock(block model.DiagramBlock) (d model.ParsedDiagram, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	if !IsValidCode(block.Code) {
		return model.ParsedDiagram{}, ErrInvalidDiagram
	}
	return model.ParsedDiagram{
		Type:        Classify(block.Code),
		Title:       ExtractTitle(block.Code, block.Context),
		MermaidCode: block.Code,
		Description: ExtractDescription(block.Code, block.Context),
	}, nil
}
