package icp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRubric() *RubricScorer {
	return NewRubricScorer([]Criterion{
		{
			Name:      "Company Size",
			MaxPoints: 15,
			Rules: []Rule{
				{Condition: "<50", Points: 3, Label: "startup"},
				{Condition: "50-300", Points: 15, Label: "PERFECT FIT"},
			},
		},
		{
			Name:      "Pipeline Stage",
			MaxPoints: 20,
			Rules: []Rule{
				{Condition: "Preclinical", Points: 5},
				{Condition: "Phase 2", Points: 20},
			},
		},
	})
}

func TestRubricScorer_Ceiling(t *testing.T) {
	assert.Equal(t, 35, testRubric().Ceiling())
}

func TestRubricScorer_MatchesConditions(t *testing.T) {
	total, breakdown := testRubric().Score(map[string]string{
		"Company Size":   "50-300",
		"Pipeline Stage": "Phase 2",
	})
	assert.Equal(t, 35, total)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "PERFECT FIT", breakdown[0].Label)
}

func TestRubricScorer_MissingFactContributesNothing(t *testing.T) {
	total, breakdown := testRubric().Score(map[string]string{"Company Size": "50-300"})
	assert.Equal(t, 15, total)
	assert.Len(t, breakdown, 1)
}

func TestRubricScorer_NeverExceedsCeiling(t *testing.T) {
	s := NewRubricScorer([]Criterion{
		{
			Name:      "Size",
			MaxPoints: 10,
			// Mis-parsed rule awarding more than the criterion max.
			Rules: []Rule{{Condition: "big", Points: 500}},
		},
	})
	total, _ := s.Score(map[string]string{"Size": "big"})
	assert.Equal(t, 10, total)
	assert.LessOrEqual(t, total, s.Ceiling())
}

func TestRubricScorer_CaseInsensitiveFactKeys(t *testing.T) {
	total, _ := testRubric().Score(map[string]string{"company size": "50-300"})
	assert.Equal(t, 15, total)
}

func TestRubricScorer_NoMatchBelowFloor(t *testing.T) {
	total, breakdown := testRubric().Score(map[string]string{
		"Pipeline Stage": "zzzzqqqq",
	})
	assert.Equal(t, 0, total)
	assert.Empty(t, breakdown)
}

func TestNewRubricScorer_EmptyIsNil(t *testing.T) {
	assert.Nil(t, NewRubricScorer(nil))
}
