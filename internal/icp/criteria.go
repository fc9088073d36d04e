// Package icp scores companies and leads against the ideal customer profile,
// either from a business-maintained rubric or a built-in heuristic.
package icp

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Rule is one scoring line of a criterion: award Points when the observed
// value matches Condition.
type Rule struct {
	Condition string
	Points    int
	Label     string
}

// Criterion is one parsed scoring dimension of the rubric.
type Criterion struct {
	Name      string
	MaxPoints int
	Rules     []Rule
}

// RawCriterion is one unparsed rubric entry as maintained in the criteria
// table: a field name plus its free-text body.
type RawCriterion struct {
	Field string
	Text  string
}

var (
	criterionHeaderRe = regexp.MustCompile(`(?m)^\s*Criterion:\s*(.+?)\s*$`)
	maxPointsRe       = regexp.MustCompile(`Max\s+(\d+)`)
	rulePointsRe      = regexp.MustCompile(`(\d+)\s*points?`)
	ruleLabelRe       = regexp.MustCompile(`\((.*?)\)`)
)

// ParseCriterion extracts one Criterion from free text. The grammar has three
// line types: a "Criterion: <name>" header, a "Max <N>" points declaration,
// and "- <condition>: <N> points (<label>)" rule bullets with an optional
// parenthesized label. Missing header falls back to fieldName; missing Max
// defaults to 0. ok is false when no rule line parses; such entries must be
// dropped, not scored as empty.
func ParseCriterion(fieldName, text string) (c Criterion, ok bool) {
	c.Name = fieldName
	if m := criterionHeaderRe.FindStringSubmatch(text); m != nil {
		c.Name = m[1]
	}
	if m := maxPointsRe.FindStringSubmatch(text); m != nil {
		c.MaxPoints = atoi(m[1])
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(line, "-"))
		colon := strings.Index(body, ":")
		if colon < 0 {
			continue
		}
		condition := strings.TrimSpace(body[:colon])
		rest := body[colon+1:]

		pm := rulePointsRe.FindStringSubmatch(rest)
		if condition == "" || pm == nil {
			continue
		}
		rule := Rule{Condition: condition, Points: atoi(pm[1])}
		if lm := ruleLabelRe.FindStringSubmatch(rest); lm != nil {
			rule.Label = lm[1]
		}
		c.Rules = append(c.Rules, rule)
	}

	return c, len(c.Rules) > 0
}

// SplitRubric cuts one rubric document into per-criterion entries at the
// "Criterion:" headers. Text before the first header is ignored, so a rubric
// file can open with a free-form preamble.
func SplitRubric(text string) []RawCriterion {
	headers := criterionHeaderRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]RawCriterion, 0, len(headers))
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		out = append(out, RawCriterion{
			Field: strings.TrimSpace(text[h[2]:h[3]]),
			Text:  text[h[0]:end],
		})
	}
	return out
}

// ParseCriteria parses a rubric, silently dropping entries with no parseable
// rules. Malformed rubric text must never break scoring.
func ParseCriteria(raw []RawCriterion) []Criterion {
	out := make([]Criterion, 0, len(raw))
	for _, r := range raw {
		c, ok := ParseCriterion(r.Field, r.Text)
		if !ok {
			zap.L().Warn("icp: dropping criterion with no parseable rules",
				zap.String("field", r.Field))
			continue
		}
		out = append(out, c)
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
