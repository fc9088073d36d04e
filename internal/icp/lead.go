package icp

import (
	"math"
	"regexp"
	"strings"

	"github.com/rezon-bio/leadintel/internal/match"
	"github.com/rezon-bio/leadintel/internal/model"
)

// LeadScore breaks a lead's title-derived assessment into its categories.
// TitleTotal is the 0-100 sum used as the title side of the fit blend.
type LeadScore struct {
	TitleRelevance int // 0-25
	Seniority      int // 0-20
	FunctionFit    int // 0-20
	DecisionPower  int // 0-15
	CareerStage    int // fixed 8 until career data exists
	Geography      int // 0-5
	Engagement     int // fixed 3 until engagement data exists
	TitleTotal     int
	Tier           string
}

// ScoreLead assesses a lead's title and location on the 0-100 scale.
func ScoreLead(title, location string) LeadScore {
	norm := match.NormalizeTitle(title)

	s := LeadScore{
		TitleRelevance: scoreTitleRelevance(norm),
		Seniority:      scoreSeniority(norm),
		FunctionFit:    scoreFunctionFit(norm),
		DecisionPower:  scoreDecisionPower(norm),
		CareerStage:    8,
		Geography:      scoreGeography(strings.ToLower(location)),
		Engagement:     3,
	}
	s.TitleTotal = s.TitleRelevance + s.Seniority + s.FunctionFit +
		s.DecisionPower + s.CareerStage + s.Geography + s.Engagement
	if s.TitleTotal > LeadCeiling {
		s.TitleTotal = LeadCeiling
	}

	switch {
	case s.TitleTotal >= 85:
		s.Tier = "Perfect Fit (Tier 1)"
	case s.TitleTotal >= 70:
		s.Tier = "Strong Fit (Tier 2)"
	case s.TitleTotal >= 55:
		s.Tier = "Good Fit (Tier 3)"
	case s.TitleTotal >= 40:
		s.Tier = "Acceptable Fit (Tier 4)"
	default:
		s.Tier = "Poor Fit (Tier 5)"
	}
	return s
}

// BlendFitScore combines the title score with the owning company's fit score
// 60/40, clamped to [0,100].
func BlendFitScore(titleScore, companyFit int) int {
	blended := int(math.Round(0.6*float64(titleScore) + 0.4*float64(companyFit)))
	if blended < 0 {
		return 0
	}
	if blended > 100 {
		return 100
	}
	return blended
}

// CombinedPriority maps the (company fit, lead fit) pair to an outreach
// priority bucket.
func CombinedPriority(companyFit, leadFit int) string {
	switch {
	case companyFit >= 80 && leadFit >= 70:
		return "HOT - Priority 1"
	case companyFit >= 80 && leadFit >= 55,
		companyFit >= 65 && leadFit >= 70:
		return "WARM - Priority 2"
	case companyFit >= 65 && leadFit >= 55,
		companyFit >= 50 && leadFit >= 40:
		return "MEDIUM - Priority 3"
	case companyFit >= 35 && leadFit >= 40:
		return "LOW - Priority 4"
	default:
		return "SKIP - Priority 5"
	}
}

// ClassifyPersona buckets a title into a messaging persona.
func ClassifyPersona(title string) model.PersonaCategory {
	t := strings.ToLower(title)
	switch {
	case containsAnyKeyword(t, []string{"ceo", "founder", "chief executive", "president", "coo"}):
		return model.PersonaCSuite
	case containsAnyKeyword(t, []string{"cmc", "manufacturing", "technical", "process", "production"}):
		return model.PersonaManufacturing
	case containsAnyKeyword(t, []string{"supply", "procurement", "sourcing"}):
		return model.PersonaSupplyChain
	case containsAnyKeyword(t, []string{"vp", "svp", "evp", "director", "head"}):
		return model.PersonaVPDirector
	case containsAnyKeyword(t, []string{"program", "project", "lead"}):
		return model.PersonaProgramLead
	default:
		return model.PersonaOther
	}
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

func hasWord(text, word string) bool {
	re, ok := wordBoundaryCache[word]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
		wordBoundaryCache[word] = re
	}
	return re.MatchString(text)
}

func hasAnyWord(text string, words ...string) bool {
	for _, w := range words {
		if hasWord(text, w) {
			return true
		}
	}
	return false
}

// scoreTitleRelevance ranks how relevant the role is to manufacturing
// outsourcing decisions (0-25). Operates on a normalized title.
func scoreTitleRelevance(t string) int {
	if t == "" {
		return 3
	}

	// C-suite. Word-boundary matching keeps "director" from matching "cto".
	if hasAnyWord(t, "ceo", "coo", "cfo", "cso", "cto", "cmo", "cbo", "cpo", "cro") ||
		containsAnyKeyword(t, []string{"chief", "president", "founder", "managing director"}) {
		return 25
	}

	if containsAnyKeyword(t, []string{
		"vice president manufacturing", "vice president technical operations",
		"vice president operations", "vice president supply chain",
		"vice president cmc", "vice president chemistry manufacturing controls",
		"vice president production", "vice president process",
	}) {
		return 22
	}
	if containsAnyKeyword(t, []string{
		"vice president strategy", "vice president business development",
		"vice president corporate development", "vice president strategic",
		"vice president partnerships", "vice president alliances", "vice president external",
	}) {
		return 20
	}
	if containsAnyKeyword(t, []string{
		"vice president research", "vice president development", "vice president science",
		"vice president preclinical", "vice president drug development", "vice president biologics",
	}) {
		return 18
	}
	if strings.Contains(t, "vice president") {
		return 16
	}

	if containsAnyKeyword(t, []string{
		"head manufacturing", "head operations", "head supply", "head cmc",
		"head chemistry manufacturing controls", "head technology", "head production", "head process",
	}) {
		return 18
	}
	if containsAnyKeyword(t, []string{
		"head strategy", "head business", "head corporate", "head partnerships",
		"head alliances", "head external",
	}) {
		return 16
	}

	if strings.Contains(t, "director") && !strings.Contains(t, "associate") {
		if containsAnyKeyword(t, []string{"manufacturing", "operations", "supply", "cmc", "production", "process"}) {
			return 16
		}
		if containsAnyKeyword(t, []string{"strategy", "business", "corporate", "research", "development"}) {
			return 14
		}
		return 12
	}
	if strings.Contains(t, "head") {
		return 14
	}

	if strings.Contains(t, "associate director") || strings.Contains(t, "senior manager") {
		return 10
	}
	if strings.Contains(t, "principal") {
		return 8
	}

	if strings.Contains(t, "manager") {
		if containsAnyKeyword(t, []string{"manufacturing", "operations", "supply", "cmc", "production"}) {
			return 6
		}
		return 5
	}

	if containsAnyKeyword(t, []string{"scientist", "engineer", "specialist", "analyst", "coordinator"}) {
		return 4
	}
	return 3
}

func scoreSeniority(t string) int {
	switch {
	case t == "":
		return 5
	case containsAnyKeyword(t, []string{"chief", "president", "founder"}):
		return 20
	case strings.Contains(t, "vice president"):
		return 18
	case strings.Contains(t, "head"):
		return 16
	case strings.Contains(t, "director") && !strings.Contains(t, "associate"):
		return 15
	case containsAnyKeyword(t, []string{"senior manager", "associate director", "principal"}):
		return 10
	case strings.Contains(t, "manager"):
		return 6
	default:
		return 4
	}
}

func scoreFunctionFit(t string) int {
	switch {
	case t == "":
		return 5
	case containsAnyKeyword(t, []string{
		"manufacturing", "cmc", "chemistry manufacturing controls", "supply chain",
		"technical operations", "production", "bioprocessing",
	}):
		return 20
	case containsAnyKeyword(t, []string{"operations", "quality", "gmp", "compliance"}):
		return 18
	case containsAnyKeyword(t, []string{
		"strategy", "strategic", "business development", "corporate development",
		"partnerships", "alliances", "external", "sourcing", "procurement",
	}):
		return 16
	case containsAnyKeyword(t, []string{
		"research", "development", "process development", "drug development",
		"biologics", "science", "scientific",
	}):
		return 14
	case containsAnyKeyword(t, []string{"finance", "financial", "controller", "treasurer"}):
		return 12
	case containsAnyKeyword(t, []string{"clinical", "regulatory", "medical", "pharmacovigilance"}):
		return 10
	case containsAnyKeyword(t, []string{"chief", "president", "founder"}):
		return 14
	case containsAnyKeyword(t, []string{"marketing", "commercial", "sales", "market access"}):
		return 8
	default:
		return 5
	}
}

func scoreDecisionPower(t string) int {
	switch {
	case t == "":
		return 4
	case containsAnyKeyword(t, []string{"chief", "president", "founder"}),
		strings.Contains(t, "vice president"):
		return 15
	case strings.Contains(t, "head"),
		strings.Contains(t, "director") && !strings.Contains(t, "associate"):
		return 12
	case containsAnyKeyword(t, []string{"senior manager", "associate director", "principal"}):
		return 8
	case strings.Contains(t, "manager"):
		return 5
	default:
		return 3
	}
}

var leadGeoEurope = []string{
	"germany", "poland", "uk", "united kingdom", "france", "netherlands",
	"switzerland", "belgium", "sweden", "denmark", "austria", "italy", "spain",
	"ireland", "norway", "finland", "portugal", "czech", "hungary", "europe",
}

var leadGeoUS = []string{
	"usa", "united states", "california", "massachusetts", "new york",
	"new jersey", "maryland", "north carolina", "texas", "boston",
	"san francisco", "san diego",
}

func scoreGeography(loc string) int {
	switch {
	case loc == "":
		return 3
	case containsAnyKeyword(loc, leadGeoEurope), containsAnyKeyword(loc, leadGeoUS):
		return 5
	case containsAnyKeyword(loc, []string{"korea", "japan", "tokyo", "seoul"}):
		return 4
	case containsAnyKeyword(loc, []string{"china", "singapore", "taiwan", "hong kong", "australia", "india"}):
		return 3
	default:
		return 2
	}
}
