// Package diagram extracts mermaid diagrams from free-form AI output.
//
// Extraction is pattern-based. Every stage prefers a tolerant guess over
// rejecting input.
package diagram

import (
	"regexp"
	"strings"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// minCodeLength is the shortest input IsValidCode accepts.
const minCodeLength = 5

// prefixRule maps a leading mermaid keyword to a diagram type.
type prefixRule struct {
	keyword string
	typ     model.DiagramType
}

// prefixRules is evaluated top to bottom; the first match wins. Keywords
// are lowercase.
var prefixRules = []prefixRule{
	{"flowchart", model.DiagramFlow},
	{"graph", model.DiagramFlow},
	{"erdiagram", model.DiagramEntity},
	{"er", model.DiagramEntity},
	{"classdiagram", model.DiagramEntity},
	{"class", model.DiagramEntity},
	{"sequencediagram", model.DiagramSequence},
	{"participant", model.DiagramSequence},
	{"c4context", model.DiagramSystem},
	{"c4container", model.DiagramComponent},
	{"c4component", model.DiagramComponent},
	{"c4deployment", model.DiagramComponent},
	{"c4dynamic", model.DiagramFlow},
	{"statediagram-v2", model.DiagramFlow},
	{"statediagram", model.DiagramFlow},
	{"mindmap", model.DiagramSystem},
	{"pie", model.DiagramSystem},
	{"quadrantchart", model.DiagramSystem},
	{"journey", model.DiagramFlow},
	{"block-beta", model.DiagramComponent},
	{"architecture-beta", model.DiagramComponent},
}

var (
	reBareER      = regexp.MustCompile(`^er\b`)
	reParticipant = regexp.MustCompile(`participant\s+\w+`)
	reClassDecl   = regexp.MustCompile(`class\s+\w+\s*[{\[]`)
	reArrow       = regexp.MustCompile(`-{2,3}>`)
	reERMarker    = regexp.MustCompile(`[|}][|o](?:--|\.\.)[|o][|{]|\|[^|\n]+\|`)
	reFrontmatter = regexp.MustCompile(`^---[ \t]*\r?\n([\s\S]*?)\r?\n---[ \t]*(?:\r?\n|$)`)
)

// heuristicRule is a structural fallback applied to normalized code.
type heuristicRule struct {
	match func(code string) bool
	typ   model.DiagramType
}

var heuristicRules = []heuristicRule{
	{func(c string) bool { return strings.Contains(c, "erdiagram") || reBareER.MatchString(c) }, model.DiagramEntity},
	{func(c string) bool { return strings.Contains(c, "sequencediagram") || reParticipant.MatchString(c) }, model.DiagramSequence},
	{func(c string) bool { return strings.Contains(c, "classdiagram") || reClassDecl.MatchString(c) }, model.DiagramEntity},
}

// startKeywords are the diagram declarations IsValidCode accepts at the
// start of a block. Lowercase.
var startKeywords = []string{
	"graph",
	"flowchart",
	"sequencediagram",
	"classdiagram",
	"statediagram",
	"erdiagram",
	"journey",
	"gantt",
	"pie",
	"quadrantchart",
	"requirementdiagram",
	"gitgraph",
	"mindmap",
	"timeline",
	"c4context",
	"c4container",
	"c4component",
	"c4dynamic",
	"c4deployment",
	"sankey-beta",
	"xychart-beta",
	"block-beta",
	"architecture-beta",
}

// Classify infers the semantic category of diagram source. It never fails;
// unrecognized syntax is treated as a system overview.
func Classify(code string) model.DiagramType {
	normalized := normalize(code)

	for _, r := range prefixRules {
		if hasKeywordPrefix(normalized, r.keyword) {
			return r.typ
		}
	}
	for _, r := range heuristicRules {
		if r.match(normalized) {
			return r.typ
		}
	}
	return model.DiagramSystem
}

// IsValidCode reports whether code plausibly holds mermaid source. The
// check is permissive: a false positive only means raw source is shown.
func IsValidCode(code string) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) < minCodeLength {
		return false
	}
	if strings.HasPrefix(trimmed, "---") {
		return true
	}

	lower := strings.ToLower(stripPreamble(trimmed))
	for _, kw := range startKeywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}

	return reArrow.MatchString(trimmed) ||
		reParticipant.MatchString(lower) ||
		reERMarker.MatchString(trimmed)
}

// normalize lowercases and trims code after dropping any frontmatter and
// leading %% comment or directive lines.
func normalize(code string) string {
	return strings.ToLower(stripPreamble(strings.TrimSpace(code)))
}

// stripPreamble removes a leading frontmatter block and leading %% lines so
// the diagram declaration comes first.
func stripPreamble(code string) string {
	code = reFrontmatter.ReplaceAllString(code, "")
	for {
		code = strings.TrimLeft(code, " \t\r\n")
		if !strings.HasPrefix(code, "%%") {
			return code
		}
		nl := strings.IndexByte(code, '\n')
		if nl < 0 {
			return ""
		}
		code = code[nl+1:]
	}
}

// hasKeywordPrefix reports whether s starts with kw as a whole word.
func hasKeywordPrefix(s, kw string) bool {
	if !strings.HasPrefix(s, kw) {
		return false
	}
	if len(s) == len(kw) {
		return true
	}
	return !isWordByte(s[len(kw)])
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
