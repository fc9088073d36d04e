package confidence

import "sort"

// Suppression maps confidence-map keys to the record fields that must not be
// surfaced in generated outreach when the claim behind them is weak.

// companyFieldMap maps company confidence keys to the company fields they gate.
var companyFieldMap = map[string][]string{
	"funding":           {"FundingStage", "LatestFundingRound"},
	"pipeline":          {"PipelineStages", "LeadPrograms"},
	"therapeutic_areas": {"TherapeuticAreas"},
	"cdmo_partnerships": {"ManufacturingStatus"},
	"employees":         {"CompanySize"},
}

// leadFieldMap maps lead confidence keys to the lead fields they gate.
var leadFieldMap = map[string][]string{
	"email":    {"Email"},
	"title":    {"Title"},
	"linkedin": {"LinkedInURL"},
}

// gatedKeys is the fixed evaluation order, so suppression output is stable.
var gatedKeys = func() []string {
	keys := make([]string, 0, len(companyFieldMap)+len(leadFieldMap))
	for k := range companyFieldMap {
		keys = append(keys, k)
	}
	for k := range leadFieldMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// SuppressedFields returns the record field names that should be blanked out
// before handing a record to content generation, given its confidence map and
// the minimum acceptable label ("high" keeps only high; anything else keeps
// high and medium). Keys with no recorded label pass through untouched.
// Output order is deterministic (sorted by confidence key).
func SuppressedFields(confMap map[string]string, minLabel string) (fields, keys []string) {
	if len(confMap) == 0 {
		return nil, nil
	}
	acceptable := map[string]bool{LabelHigh: true, LabelMedium: true}
	if minLabel == LabelHigh {
		acceptable = map[string]bool{LabelHigh: true}
	}

	for _, key := range gatedKeys {
		label, ok := confMap[key]
		if !ok || label == "" || acceptable[label] {
			continue
		}
		names := companyFieldMap[key]
		if names == nil {
			names = leadFieldMap[key]
		}
		fields = append(fields, names...)
		keys = append(keys, key)
	}
	return fields, keys
}
