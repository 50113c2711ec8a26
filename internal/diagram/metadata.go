package diagram

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	reTitleDirective = regexp.MustCompile(`(?m)^[ \t]*title[ \t]+(.+?)[ \t]*$`)
	reHeading        = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+(.+?)[ \t#]*$`)
	reDescComment    = regexp.MustCompile(`(?mi)^[ \t]*%%[ \t]*(?:description|desc)[ \t]*:[ \t]*(.+?)[ \t]*$`)
	reFrontmatterKey = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z_]+)[ \t]*:[ \t]*(.*?)[ \t]*$`)
)

// noTitleStatement lists declarations whose bodies have no title
// statement. A line starting with "title" there names an entity or class.
var noTitleStatement = []string{"erdiagram", "classdiagram"}

// frontmatter is the subset of mermaid frontmatter we read.
type frontmatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// metaRule is one step of a first-match-wins metadata lookup.
type metaRule func(code, context string) (string, bool)

var titleRules = []metaRule{
	func(code, _ string) (string, bool) { return nonEmpty(parseFrontmatter(code).Title) },
	titleFromDirective,
	func(_, context string) (string, bool) { return lastHeading(context) },
}

var descriptionRules = []metaRule{
	func(code, _ string) (string, bool) {
		if m := reDescComment.FindStringSubmatch(code); m != nil {
			return nonEmpty(m[1])
		}
		return "", false
	},
	func(code, _ string) (string, bool) { return nonEmpty(parseFrontmatter(code).Description) },
	func(_, context string) (string, bool) { return lastProseLine(context) },
}

// ExtractTitle returns a human-readable title for a diagram. Explicit
// author intent (frontmatter, a title directive) wins over a heading in the
// surrounding prose, which wins over a label derived from the diagram type.
func ExtractTitle(code, context string) string {
	for _, rule := range titleRules {
		if title, ok := rule(code, context); ok {
			return title
		}
	}
	return Classify(code).DefaultTitle()
}

// ExtractDescription returns a description for a diagram, or "" when none
// can be found.
func ExtractDescription(code, context string) string {
	for _, rule := range descriptionRules {
		if desc, ok := rule(code, context); ok {
			return desc
		}
	}
	return ""
}

// parseFrontmatter decodes a leading --- block. Malformed YAML falls back
// to a line-by-line key scan so a stray colon does not lose the title.
func parseFrontmatter(code string) frontmatter {
	m := reFrontmatter.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return frontmatter{}
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err == nil {
		return fm
	}

	fm = frontmatter{}
	for _, kv := range reFrontmatterKey.FindAllStringSubmatch(m[1], -1) {
		switch strings.ToLower(kv[1]) {
		case "title":
			fm.Title = unquote(kv[2])
		case "description":
			fm.Description = unquote(kv[2])
		}
	}
	return fm
}

func titleFromDirective(code, _ string) (string, bool) {
	normalized := normalize(code)
	for _, kw := range noTitleStatement {
		if hasKeywordPrefix(normalized, kw) {
			return "", false
		}
	}
	body := reFrontmatter.ReplaceAllString(strings.TrimSpace(code), "")
	if m := reTitleDirective.FindStringSubmatch(body); m != nil {
		return nonEmpty(unquote(m[1]))
	}
	return "", false
}

// lastHeading returns the last markdown heading in context.
func lastHeading(context string) (string, bool) {
	matches := reHeading.FindAllStringSubmatch(context, -1)
	if len(matches) == 0 {
		return "", false
	}
	return nonEmpty(matches[len(matches)-1][1])
}

// lastProseLine returns the last non-empty line of context that is neither
// a heading nor a code fence.
func lastProseLine(context string) (string, bool) {
	lines := strings.Split(context, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") {
			continue
		}
		return line, true
	}
	return "", false
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
