package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_Fenced(t *testing.T) {
	text := "Here is what I found:\n```json\n{\"title\": \"VP Manufacturing\"}\n```\nLet me know if you need more."
	got, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"title": "VP Manufacturing"}`, got)
}

func TestExtractJSON_BareFence(t *testing.T) {
	text := "```\n{\"a\": 1}\n```"
	got, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": 1}`, got)
}

func TestExtractJSON_RawBraces(t *testing.T) {
	text := `The company profile follows. {"name": "Acme", "nested": {"size": "51-200"}} That is all.`
	got, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"name": "Acme", "nested": {"size": "51-200"}}`, got)
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	text := `{"notes": "uses {curly} syntax", "score": 5}`
	got, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"notes": "uses {curly} syntax", "score": 5}`, got)
}

func TestExtractJSON_Unbalanced(t *testing.T) {
	_, ok := ExtractJSON(`{"truncated": "reply`)
	assert.False(t, ok)
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, ok := ExtractJSON("I could not find any information about this company.")
	assert.False(t, ok)
}

func TestParseCompanyEnrichment(t *testing.T) {
	text := "```json\n" + `{
		"company_size": "51-200",
		"focus_areas": ["ADCs", "mAbs"],
		"funding_stage": "Series B",
		"is_cdmo_competitor": false,
		"confidence": {"funding": "high", "pipeline": "low"}
	}` + "\n```"

	got, err := ParseCompanyEnrichment(text)
	require.NoError(t, err)
	assert.Equal(t, "51-200", got.CompanySize)
	assert.Equal(t, []string{"ADCs", "mAbs"}, got.FocusAreas)
	assert.Equal(t, "low", got.Confidence["pipeline"])
	assert.False(t, got.IsCDMOCompetitor)
}

func TestParseLeadEnrichment_MalformedIsSentinel(t *testing.T) {
	_, err := ParseLeadEnrichment("no json here at all")
	assert.ErrorIs(t, err, ErrMalformedReply)

	// Extractable but not the expected shape.
	_, err = ParseLeadEnrichment(`{"title": ["not", "a", "string"]}`)
	assert.ErrorIs(t, err, ErrMalformedReply)
}

func TestParseScreen(t *testing.T) {
	got, err := ParseScreen(`{"fit_score": 72, "is_cdmo_competitor": false, "rationale": "clinical-stage ADC developer"}`)
	require.NoError(t, err)
	assert.Equal(t, 72, got.FitScore)
}
