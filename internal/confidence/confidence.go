// Package confidence reduces per-field confidence-label maps to a single
// ordinal score and drives re-enrichment screening.
package confidence

import (
	"encoding/json"
	"strings"
)

// Label values returned by enrichment alongside facts.
const (
	LabelHigh       = "high"
	LabelMedium     = "medium"
	LabelLow        = "low"
	LabelUnverified = "unverified"
	LabelUnknown    = "unknown"
	LabelFailed     = "failed"
)

// DefaultReworkThreshold selects records for re-enrichment.
const DefaultReworkThreshold = 85

var labelScores = map[string]int{
	LabelHigh:       100,
	LabelMedium:     70,
	LabelLow:        40,
	LabelUnverified: 10,
	LabelUnknown:    0,
	LabelFailed:     0,
}

// Score maps a single label to its ordinal value. Unrecognized labels score 0.
func Score(label string) int {
	return labelScores[strings.ToLower(strings.TrimSpace(label))]
}

// Aggregate reduces a field -> label map to one score using minimum semantics.
// One unverified claim caps the whole record's trustworthiness. An empty or
// nil map aggregates to 0.
func Aggregate(m map[string]string) int {
	if len(m) == 0 {
		return 0
	}
	min := 100
	for _, label := range m {
		if s := Score(label); s < min {
			min = s
		}
	}
	return min
}

// AggregateJSON parses a serialized confidence map and aggregates it.
// Empty or unparseable input aggregates to 0, never errors.
func AggregateJSON(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return 0
	}
	return Aggregate(m)
}

// NeedsRework reports whether a record's aggregate confidence is below the
// re-enrichment threshold.
func NeedsRework(m map[string]string, threshold int) bool {
	return Aggregate(m) < threshold
}
