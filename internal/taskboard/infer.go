// Package taskboard converts interview tasks into board tasks.
package taskboard

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// reEffort matches "<n> hour(s)/day(s)" or "<a>-<b> hour(s)/day(s)".
// Fractional parts are accepted but only the integer part is compared.
var reEffort = regexp.MustCompile(`(?i)(\d+)(?:\.\d+)?(?:\s*-\s*(\d+)(?:\.\d+)?)?\s*(hour|day)`)

// threshold maps an upper bound (inclusive) to a complexity.
type threshold struct {
	max int
	c   model.Complexity
}

var hourThresholds = []threshold{
	{2, model.ComplexityTrivial},
	{4, model.ComplexitySmall},
	{8, model.ComplexityMedium},
}

// Day thresholds are pinned for compatibility with existing boards.
var dayThresholds = []threshold{
	{1, model.ComplexityMedium},
	{3, model.ComplexityLarge},
}

type keywordRule struct {
	words []string
	c     model.Complexity
}

var effortKeywords = []keywordRule{
	{[]string{"trivial", "quick"}, model.ComplexityTrivial},
	{[]string{"small", "simple"}, model.ComplexitySmall},
	{[]string{"large", "significant"}, model.ComplexityLarge},
	{[]string{"complex", "extensive"}, model.ComplexityComplex},
}

// InferComplexity maps a free-text effort estimate to a complexity. It is
// total: anything unrecognized is medium.
func InferComplexity(effort string) model.Complexity {
	if m := reEffort.FindStringSubmatch(effort); m != nil {
		n := effortValue(m[1], m[2])
		if strings.EqualFold(m[3], "hour") {
			return classify(n, hourThresholds, model.ComplexityLarge)
		}
		return classify(n, dayThresholds, model.ComplexityComplex)
	}

	lower := strings.ToLower(effort)
	for _, rule := range effortKeywords {
		for _, w := range rule.words {
			if strings.Contains(lower, w) {
				return rule.c
			}
		}
	}
	return model.ComplexityMedium
}

// effortValue returns the single value, or the integer mean of a range.
func effortValue(low, high string) int {
	a := atoi(low)
	if high == "" {
		return a
	}
	return (a + atoi(high)) / 2
}

// maxEffort caps parsed numbers; anything this big is already the top bucket.
const maxEffort = 1 << 20

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n > maxEffort {
		return maxEffort
	}
	return n
}

func classify(n int, table []threshold, fallback model.Complexity) model.Complexity {
	for _, t := range table {
		if n <= t.max {
			return t.c
		}
	}
	return fallback
}

// InferPriority maps an implementation phase to a board priority:
// phase 1 is urgent, 2 high, 3-4 medium and 5 onward low.
func InferPriority(phase int) model.Priority {
	switch {
	case phase <= 1:
		return model.PriorityUrgent
	case phase == 2:
		return model.PriorityHigh
	case phase <= 4:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
