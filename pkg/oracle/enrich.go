package oracle

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
)

// CompanyEnrichment is the JSON shape requested from the oracle for a company
// research call. Every field may be missing or junk; validation happens
// downstream against the fixed enumerations.
type CompanyEnrichment struct {
	Website             string            `json:"website"`
	LinkedIn            string            `json:"linkedin"`
	Location            string            `json:"location"`
	CompanySize         string            `json:"company_size"`
	FocusAreas          []string          `json:"focus_areas"`
	TechnologyPlatforms []string          `json:"technology_platforms"`
	TherapeuticAreas    []string          `json:"therapeutic_areas"`
	FundingStage        string            `json:"funding_stage"`
	LatestFundingRound  string            `json:"latest_funding_round"`
	PipelineStages      []string          `json:"pipeline_stages"`
	LeadPrograms        string            `json:"lead_programs"`
	ManufacturingStatus string            `json:"manufacturing_status"`
	IntelligenceNotes   string            `json:"intelligence_notes"`
	Confidence          map[string]string `json:"confidence"`

	// IsCDMOCompetitor flags companies that sell manufacturing capacity
	// themselves. They are prospects for nobody's pipeline and get removed.
	IsCDMOCompetitor bool `json:"is_cdmo_competitor"`
}

// LeadEnrichment is the JSON shape requested for a person research call.
type LeadEnrichment struct {
	Title       string            `json:"title"`
	Email       string            `json:"email"`
	LinkedInURL string            `json:"linkedin_url"`
	Location    string            `json:"location"`
	Confidence  map[string]string `json:"confidence"`
}

// Screen is the JSON shape of the cheap pre-screen used before admitting an
// unknown company seen at a conference.
type Screen struct {
	FitScore         int    `json:"fit_score"`
	IsCDMOCompetitor bool   `json:"is_cdmo_competitor"`
	Rationale        string `json:"rationale"`
}

// CompanySystem is the system prompt for company research calls.
const CompanySystem = `You are a business research analyst for a biologics
contract manufacturer (CDMO). Research companies using web search and report
only what you can verify. Use "Unknown" when you cannot verify a field, and
rate your confidence honestly: facts you could not verify are "unverified",
never "medium".`

// CompanyPrompt builds the research prompt for one company.
func CompanyPrompt(name string) string {
	return fmt.Sprintf(`Research the biotech/pharma company %q.

Reply with a single JSON object, no prose outside it:
{
  "website": "", "linkedin": "", "location": "City, Country",
  "company_size": "one of: 1-10, 11-50, 51-200, 201-500, 501-1000, 1000+",
  "focus_areas": ["mAbs", "Bispecifics", "ADCs", "Recombinant Proteins", "Cell Therapy", "Gene Therapy", "Vaccines", "Other"],
  "technology_platforms": ["Mammalian CHO", "Mammalian Non-CHO", "Microbial", "Cell-Free", "Other"],
  "therapeutic_areas": ["Oncology", "Autoimmune", "Rare Disease", "Infectious Disease", "CNS", "Metabolic", "Other"],
  "funding_stage": "one of: Seed, Series A, Series B, Series C, Series D+, Public, Acquired, Unknown",
  "latest_funding_round": "e.g. Series B, $85M, 2025",
  "pipeline_stages": ["Preclinical", "Phase 1", "Phase 2", "Phase 3", "Commercial"],
  "lead_programs": "short description of the most advanced programs",
  "manufacturing_status": "one of: No Public Partner, Has Partner, Building In-House, Unknown",
  "intelligence_notes": "recent events relevant to a CDMO sales team",
  "is_cdmo_competitor": false,
  "confidence": {"funding": "high|medium|low|unverified", "pipeline": "...", "employees": "...", "therapeutic_areas": "...", "cdmo_partnerships": "..."}
}`, name)
}

// LeadSystem is the system prompt for person research calls.
const LeadSystem = `You are a business research analyst. Verify professional
details about biotech industry contacts using web search. Report "Unknown" for
anything you cannot verify and rate confidence honestly.`

// LeadPrompt builds the research prompt for one person at a known company.
func LeadPrompt(name, company string) string {
	return fmt.Sprintf(`Find current professional details for %q at %q.

Reply with a single JSON object, no prose outside it:
{
  "title": "current job title",
  "email": "work email if published, else empty",
  "linkedin_url": "",
  "location": "City, Country",
  "confidence": {"title": "high|medium|low|unverified", "email": "...", "linkedin": "..."}
}`, name, company)
}

// ScreenPrompt builds the cheap pre-screen prompt for an unknown company.
func ScreenPrompt(name string) string {
	return fmt.Sprintf(`Quickly assess the company %q as a prospect for a
biologics CDMO. Score 0-100 for fit (biologics developer likely to outsource
manufacturing scores high; service providers, consultancies, and CDMOs score 0).

Reply with a single JSON object, no prose outside it:
{"fit_score": 0, "is_cdmo_competitor": false, "rationale": "one sentence"}`, name)
}

// ParseCompanyEnrichment decodes a company research reply.
func ParseCompanyEnrichment(text string) (*CompanyEnrichment, error) {
	return decodeReply[CompanyEnrichment](text)
}

// ParseLeadEnrichment decodes a person research reply.
func ParseLeadEnrichment(text string) (*LeadEnrichment, error) {
	return decodeReply[LeadEnrichment](text)
}

// ParseScreen decodes a pre-screen reply.
func ParseScreen(text string) (*Screen, error) {
	return decodeReply[Screen](text)
}

func decodeReply[T any](text string) (*T, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return nil, ErrMalformedReply
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// Keep the sentinel in the chain so callers can classify.
		return nil, eris.Wrapf(ErrMalformedReply, "decode: %v", err)
	}
	return &v, nil
}
