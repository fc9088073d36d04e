package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, 0, Aggregate(nil))
	assert.Equal(t, 0, Aggregate(map[string]string{}))
}

func TestAggregate_SingleHigh(t *testing.T) {
	assert.Equal(t, 100, Aggregate(map[string]string{"x": "high"}))
}

func TestAggregate_WeakestLink(t *testing.T) {
	assert.Equal(t, 40, Aggregate(map[string]string{"x": "high", "y": "low"}))
	assert.Equal(t, 10, Aggregate(map[string]string{"a": "medium", "b": "unverified", "c": "high"}))
	assert.Equal(t, 0, Aggregate(map[string]string{"a": "high", "b": "failed"}))
}

func TestAggregate_UnrecognizedLabelScoresZero(t *testing.T) {
	assert.Equal(t, 0, Aggregate(map[string]string{"x": "high", "y": "probably"}))
}

func TestAggregate_LabelCaseInsensitive(t *testing.T) {
	assert.Equal(t, 70, Aggregate(map[string]string{"x": " Medium "}))
}

func TestAggregateJSON(t *testing.T) {
	assert.Equal(t, 70, AggregateJSON(`{"funding": "high", "pipeline": "medium"}`))
	assert.Equal(t, 0, AggregateJSON(""))
	assert.Equal(t, 0, AggregateJSON("not json"))
	assert.Equal(t, 0, AggregateJSON(`{"funding": 3}`))
}

func TestNeedsRework(t *testing.T) {
	assert.True(t, NeedsRework(map[string]string{"x": "medium"}, DefaultReworkThreshold))
	assert.False(t, NeedsRework(map[string]string{"x": "high"}, DefaultReworkThreshold))
	assert.True(t, NeedsRework(nil, DefaultReworkThreshold))
}

func TestSuppressedFields_KeepsMediumByDefault(t *testing.T) {
	fields, keys := SuppressedFields(map[string]string{
		"funding":  "medium",
		"pipeline": "low",
	}, LabelMedium)
	assert.Equal(t, []string{"pipeline"}, keys)
	assert.ElementsMatch(t, []string{"PipelineStages", "LeadPrograms"}, fields)
}

func TestSuppressedFields_HighOnlyMode(t *testing.T) {
	_, keys := SuppressedFields(map[string]string{"funding": "medium"}, LabelHigh)
	assert.Equal(t, []string{"funding"}, keys)
}

func TestSuppressedFields_NoConfidencePassesThrough(t *testing.T) {
	fields, keys := SuppressedFields(nil, LabelMedium)
	assert.Empty(t, fields)
	assert.Empty(t, keys)
}

func TestSuppressedFields_DeterministicOrder(t *testing.T) {
	confMap := map[string]string{
		"funding":  "low",
		"pipeline": "unverified",
		"email":    "low",
		"title":    "unknown",
	}
	fields, keys := SuppressedFields(confMap, LabelMedium)
	assert.Equal(t, []string{"email", "funding", "pipeline", "title"}, keys)
	assert.Equal(t, []string{
		"Email", "FundingStage", "LatestFundingRound",
		"PipelineStages", "LeadPrograms", "Title",
	}, fields)
	for i := 0; i < 50; i++ {
		f, k := SuppressedFields(confMap, LabelMedium)
		assert.Equal(t, keys, k)
		assert.Equal(t, fields, f)
	}
}
