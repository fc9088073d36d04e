package model

import (
	"strings"
)

// Allowed values for the classified company fields. Writes go through the
// Validate helpers so the store never sees an off-list value.
var (
	CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}

	FundingStages = []string{
		"Seed", "Series A", "Series B", "Series C", "Series D+",
		"Public", "Acquired", "Unknown",
	}

	PipelineStages = []string{
		"Preclinical", "Phase 1", "Phase 2", "Phase 3", "Commercial", "Unknown",
	}

	TechnologyPlatforms = []string{
		"Mammalian CHO", "Mammalian Non-CHO", "Microbial", "Cell-Free", "Other",
	}

	ManufacturingStatuses = []string{
		"No Public Partner", "Has Partner", "Building In-House", "Unknown",
	}

	FocusAreas = []string{
		"mAbs", "Bispecifics", "ADCs", "Recombinant Proteins",
		"Cell Therapy", "Gene Therapy", "Vaccines", "Other",
	}

	TherapeuticAreas = []string{
		"Oncology", "Autoimmune", "Rare Disease", "Infectious Disease",
		"CNS", "Metabolic", "Other",
	}
)

// ValidateSingleSelect maps a raw value onto one of the allowed options.
// Matching is exact first, then case-insensitive, then substring containment
// in either direction. Anything unmatched collapses to fallback.
func ValidateSingleSelect(value string, allowed []string, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	for _, opt := range allowed {
		if value == opt {
			return opt
		}
	}
	lower := strings.ToLower(value)
	for _, opt := range allowed {
		if lower == strings.ToLower(opt) {
			return opt
		}
	}
	for _, opt := range allowed {
		lo := strings.ToLower(opt)
		if strings.Contains(lower, lo) || strings.Contains(lo, lower) {
			return opt
		}
	}
	return fallback
}

// ValidateMultiSelect maps each raw value onto the allowed options, dropping
// duplicates after validation. Unmatched values collapse to fallback, which
// therefore appears at most once.
func ValidateMultiSelect(values []string, allowed []string, fallback string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		mapped := ValidateSingleSelect(v, allowed, fallback)
		if seen[mapped] {
			continue
		}
		seen[mapped] = true
		out = append(out, mapped)
	}
	return out
}

// ParseCompanySize buckets a raw size string (a bucket label, a bare count, or
// a range like "about 250 employees") into one of CompanySizes. Returns ""
// when nothing numeric or bucket-like is present.
func ParseCompanySize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, b := range CompanySizes {
		if strings.Contains(raw, b) {
			return b
		}
	}
	n, ok := firstInt(raw)
	if !ok {
		return ""
	}
	switch {
	case n <= 10:
		return "1-10"
	case n <= 50:
		return "11-50"
	case n <= 200:
		return "51-200"
	case n <= 500:
		return "201-500"
	case n <= 1000:
		return "501-1000"
	default:
		return "1000+"
	}
}

func firstInt(s string) (int, bool) {
	n := 0
	found := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			found = true
			continue
		}
		if found {
			break
		}
	}
	return n, found
}
