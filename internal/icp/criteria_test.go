package icp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriterion_FullBlock(t *testing.T) {
	text := "Criterion: Company Size (Employees)\n" +
		"Points (Max 15):\n" +
		"- <50: 3 points (startup)\n" +
		"- 50-300: 15 points (PERFECT FIT)"

	c, ok := ParseCriterion("Company Size", text)
	require.True(t, ok)
	assert.Equal(t, "Company Size (Employees)", c.Name)
	assert.Equal(t, 15, c.MaxPoints)
	require.Len(t, c.Rules, 2)
	assert.Equal(t, Rule{Condition: "<50", Points: 3, Label: "startup"}, c.Rules[0])
	assert.Equal(t, Rule{Condition: "50-300", Points: 15, Label: "PERFECT FIT"}, c.Rules[1])
}

func TestParseCriterion_NameFallsBackToField(t *testing.T) {
	c, ok := ParseCriterion("Funding Stage", "Max 10\n- Series B: 7 points")
	require.True(t, ok)
	assert.Equal(t, "Funding Stage", c.Name)
	assert.Equal(t, 10, c.MaxPoints)
}

func TestParseCriterion_MissingMaxDefaultsZero(t *testing.T) {
	c, ok := ParseCriterion("x", "Criterion: X\n- a: 5 points")
	require.True(t, ok)
	assert.Equal(t, 0, c.MaxPoints)
}

func TestParseCriterion_LabelOptional(t *testing.T) {
	c, ok := ParseCriterion("x", "Max 20\n- Phase 2: 20 points")
	require.True(t, ok)
	assert.Equal(t, "", c.Rules[0].Label)
}

func TestParseCriterion_SingularPoint(t *testing.T) {
	c, ok := ParseCriterion("x", "Max 5\n- tiny: 1 point")
	require.True(t, ok)
	assert.Equal(t, 1, c.Rules[0].Points)
}

func TestParseCriterion_NoRulesNotOK(t *testing.T) {
	_, ok := ParseCriterion("x", "Criterion: Broken\nMax 15\nno bullets here")
	assert.False(t, ok)
}

func TestParseCriteria_DropsRulelessEntries(t *testing.T) {
	out := ParseCriteria([]RawCriterion{
		{Field: "good", Text: "Max 10\n- a: 10 points"},
		{Field: "bad", Text: "free text with no rules"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "good", out[0].Name)
}

func TestSplitRubric_CutsAtHeaders(t *testing.T) {
	raw := SplitRubric(`Scoring rubric for company fit.

Criterion: company_size
Max 40
- 51-200: 40 points (sweet spot)
- 1-50: 25 points

Criterion: funding_stage
Max 30
- Series B: 30 points
`)
	require.Len(t, raw, 2)
	assert.Equal(t, "company_size", raw[0].Field)
	assert.Equal(t, "funding_stage", raw[1].Field)

	criteria := ParseCriteria(raw)
	require.Len(t, criteria, 2)
	assert.Equal(t, 40, criteria[0].MaxPoints)
	require.Len(t, criteria[0].Rules, 2)
	assert.Equal(t, 30, criteria[1].MaxPoints)
}

func TestSplitRubric_NoHeadersEmpty(t *testing.T) {
	assert.Empty(t, SplitRubric("just some prose with no headers"))
	assert.Empty(t, SplitRubric(""))
}

func TestParseCriteria_MalformedBulletsSkipped(t *testing.T) {
	c, ok := ParseCriterion("x", "Max 10\n- no colon here\n- good: 4 points\n- missing points: yes")
	require.True(t, ok)
	require.Len(t, c.Rules, 1)
	assert.Equal(t, "good", c.Rules[0].Condition)
}
