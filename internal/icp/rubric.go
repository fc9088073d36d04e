package icp

import (
	"strings"

	"github.com/rezon-bio/leadintel/internal/match"
)

// CategoryScore is one criterion's contribution to a rubric score.
type CategoryScore struct {
	Criterion string
	Value     string
	Points    int
	Label     string
}

// Scorer is the shared scoring interface: facts in, bounded total plus a
// per-category breakdown out.
type Scorer interface {
	Score(facts map[string]string) (int, []CategoryScore)
	Ceiling() int
}

// RubricScorer scores facts against parsed rubric criteria. For each
// criterion it awards the points of the best-matching rule condition; the
// total is capped at the rubric's declared ceiling regardless of what the
// individual rules add up to.
type RubricScorer struct {
	Criteria []Criterion
}

// NewRubricScorer wraps parsed criteria. Returns nil when the rubric is
// empty so callers can fall back to the heuristic.
func NewRubricScorer(criteria []Criterion) *RubricScorer {
	if len(criteria) == 0 {
		return nil
	}
	return &RubricScorer{Criteria: criteria}
}

// Ceiling is the total MaxPoints declared across all criteria.
func (s *RubricScorer) Ceiling() int {
	total := 0
	for _, c := range s.Criteria {
		total += c.MaxPoints
	}
	return total
}

// Score matches each criterion's fact value against the criterion's rule
// conditions and sums the winning points. Facts are keyed by criterion name;
// a criterion with no fact contributes nothing.
func (s *RubricScorer) Score(facts map[string]string) (int, []CategoryScore) {
	total := 0
	breakdown := make([]CategoryScore, 0, len(s.Criteria))

	for _, c := range s.Criteria {
		value, ok := lookupFact(facts, c.Name)
		if !ok || value == "" {
			continue
		}
		rule, matched := bestRule(c.Rules, value)
		if !matched {
			continue
		}
		points := rule.Points
		if c.MaxPoints > 0 && points > c.MaxPoints {
			points = c.MaxPoints
		}
		total += points
		breakdown = append(breakdown, CategoryScore{
			Criterion: c.Name,
			Value:     value,
			Points:    points,
			Label:     rule.Label,
		})
	}

	if ceiling := s.Ceiling(); total > ceiling {
		total = ceiling
	}
	return total, breakdown
}

func lookupFact(facts map[string]string, name string) (string, bool) {
	if v, ok := facts[name]; ok {
		return v, true
	}
	for k, v := range facts {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// bestRule picks the rule whose condition most resembles the observed value:
// exact or substring containment wins outright, otherwise the highest fuzzy
// similarity above a floor.
func bestRule(rules []Rule, value string) (Rule, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))

	for _, r := range rules {
		cond := strings.ToLower(strings.TrimSpace(r.Condition))
		if cond == lower || strings.Contains(lower, cond) || strings.Contains(cond, lower) {
			return r, true
		}
	}

	best := Rule{}
	bestScore := 0.0
	for _, r := range rules {
		sc := match.Score(value, r.Condition, strings.ToLower)
		if sc > bestScore {
			bestScore = sc
			best = r
		}
	}
	if bestScore >= 0.5 {
		return best, true
	}
	return Rule{}, false
}
