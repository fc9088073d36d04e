package icp

import (
	"strings"
)

// Ceilings for the heuristic scoring modes.
const (
	CompanyCeiling = 105
	LeadCeiling    = 100
)

var mammalianKeywords = []string{
	"mammalian", "cho", "mab", "monoclonal", "bispecific", "adc", "antibody",
}

var nonMammalianKeywords = []string{
	"cell therapy", "gene therapy", "viral", "mrna", "oligo", "vaccine",
}

var usPriorityLocations = []string{
	"california", "massachusetts", "new york", "new jersey", "pennsylvania",
	"maryland", "north carolina", "texas", "washington", "usa", "united states",
}

var euPriorityLocations = []string{
	"germany", "uk", "united kingdom", "france", "netherlands", "switzerland",
	"belgium", "sweden", "denmark",
}

var westernEuropeLocations = []string{
	"italy", "spain", "austria", "ireland", "norway", "finland",
}

// CompanyFacts are the classified fields the heuristic scorer reads. The
// enrichment pipeline fills this from a validated company record.
type CompanyFacts struct {
	CompanySize         string
	FundingStage        string
	PipelineStages      []string
	TechnologyPlatforms []string
	FocusAreas          []string
	Location            string
	ManufacturingStatus string
	LatestFundingRound  string
	LeadPrograms        string
	IntelligenceNotes   string
}

// HeuristicScorer is the fallback used when no rubric is configured: fixed
// category weights, each independently bounded, summed and capped.
type HeuristicScorer struct {
	ceiling int
}

// NewHeuristicScorer returns a scorer capped at the given ceiling
// (CompanyCeiling for strategic company scoring, LeadCeiling otherwise).
func NewHeuristicScorer(ceiling int) *HeuristicScorer {
	return &HeuristicScorer{ceiling: ceiling}
}

func (s *HeuristicScorer) Ceiling() int { return s.ceiling }

// Score adapts ScoreCompany to the Scorer interface using flat fact keys.
func (s *HeuristicScorer) Score(facts map[string]string) (int, []CategoryScore) {
	cf := CompanyFacts{
		CompanySize:         facts["company_size"],
		FundingStage:        facts["funding_stage"],
		PipelineStages:      splitList(facts["pipeline_stages"]),
		TechnologyPlatforms: splitList(facts["technology_platforms"]),
		FocusAreas:          splitList(facts["focus_areas"]),
		Location:            facts["location"],
		ManufacturingStatus: facts["manufacturing_status"],
	}
	return s.ScoreCompany(cf)
}

// ScoreCompany scores classified company facts against the built-in profile:
// mid-size, funded, clinical-stage, mammalian-platform biologics developers
// in priority geographies without a locked-in manufacturing partner.
func (s *HeuristicScorer) ScoreCompany(f CompanyFacts) (int, []CategoryScore) {
	var breakdown []CategoryScore
	total := 0
	add := func(criterion, value string, points int) {
		total += points
		breakdown = append(breakdown, CategoryScore{Criterion: criterion, Value: value, Points: points})
	}

	// Company size (0-15).
	size := f.CompanySize
	switch {
	case strings.Contains(size, "51-200") || strings.Contains(size, "201-500") || strings.Contains(size, "501-1000"):
		add("company_size", size, 15)
	case strings.Contains(size, "1000+") || strings.Contains(size, "11-50"):
		add("company_size", size, 3)
	case strings.Contains(size, "1-10"):
		add("company_size", size, 1)
	}

	// Revenue proxy from funding stage (0-15).
	funding := strings.ToLower(f.FundingStage)
	switch {
	case strings.Contains(funding, "series c") || strings.Contains(funding, "series d") || strings.Contains(funding, "public"):
		add("revenue", f.FundingStage, 15)
	case strings.Contains(funding, "series b"):
		add("revenue", f.FundingStage, 7)
	case strings.Contains(funding, "series a"):
		add("revenue", f.FundingStage, 3)
	}

	// Pipeline stage (0-20).
	stages := lowerAll(f.PipelineStages)
	switch {
	case containsAny(stages, "phase 2", "phase 3"):
		add("pipeline_stage", strings.Join(f.PipelineStages, ", "), 20)
	case containsAny(stages, "commercial"):
		add("pipeline_stage", strings.Join(f.PipelineStages, ", "), 15)
	case containsAny(stages, "phase 1"):
		add("pipeline_stage", strings.Join(f.PipelineStages, ", "), 10)
	case containsAny(stages, "preclinical"):
		add("pipeline_stage", strings.Join(f.PipelineStages, ", "), 5)
	}

	// Technology platform (0-20). Full credit only when signals are
	// exclusively mammalian.
	signals := strings.ToLower(strings.Join(append(append([]string{}, f.TechnologyPlatforms...), f.FocusAreas...), " "))
	hasMammalian := containsAnyKeyword(signals, mammalianKeywords)
	hasNonMammalian := containsAnyKeyword(signals, nonMammalianKeywords)
	switch {
	case hasMammalian && !hasNonMammalian:
		add("production_technology", "mammalian", 20)
	case hasMammalian && hasNonMammalian:
		add("production_technology", "mixed", 12)
	}

	// Geography (0-10).
	loc := strings.ToLower(f.Location)
	switch {
	case loc == "":
	case containsAnyKeyword(loc, usPriorityLocations), containsAnyKeyword(loc, euPriorityLocations):
		add("geography", f.Location, 10)
	case containsAnyKeyword(loc, westernEuropeLocations):
		add("geography", f.Location, 8)
	case strings.Contains(loc, "poland") || strings.Contains(loc, "czech"):
		add("geography", f.Location, 6)
	}

	// Manufacturing partner status (0-10).
	mfg := strings.ToLower(f.ManufacturingStatus)
	switch {
	case strings.Contains(mfg, "no public partner"):
		add("manufacturing_status", f.ManufacturingStatus, 10)
	case strings.Contains(mfg, "has partner"):
		add("manufacturing_status", f.ManufacturingStatus, 8)
	case strings.Contains(mfg, "building in-house"):
		add("manufacturing_status", f.ManufacturingStatus, 3)
	default:
		add("manufacturing_status", "unknown", 5)
	}

	// Product focus bonus (0-5).
	focus := strings.ToLower(strings.Join(f.FocusAreas, " "))
	if strings.Contains(focus, "bispecific") || strings.Contains(focus, "adc") ||
		strings.Contains(focus, "mab") || strings.Contains(focus, "antibod") {
		add("product_focus", strings.Join(f.FocusAreas, ", "), 5)
	}

	if total > s.ceiling {
		total = s.ceiling
	}
	return total, breakdown
}

// ScoreUrgency scores timing indicators (recent funding, clinical advance,
// leadership hires, manufacturing mentions) on a 0-100 scale.
func ScoreUrgency(f CompanyFacts, currentYear, previousYear string) int {
	score := 0

	if strings.Contains(f.LatestFundingRound, currentYear) || strings.Contains(f.LatestFundingRound, previousYear) {
		score += 30
	}

	notes := strings.ToLower(f.IntelligenceNotes)
	if notes != "" {
		if containsAnyKeyword(notes, []string{"phase 2", "phase 3", "advancing", "clinical trial"}) {
			score += 25
		}
		if containsAnyKeyword(notes, []string{"cmo", "coo", "chief operating", "head of operations"}) {
			score += 25
		}
		if containsAnyKeyword(notes, []string{"manufacturing", "cdmo", "cmo", "production", "scale-up"}) {
			score += 20
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAny(haystack []string, needles ...string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if h == n {
				return true
			}
		}
	}
	return false
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
