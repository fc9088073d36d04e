package model

import (
	"time"
)

// PersonaCategory buckets a lead by role for messaging selection.
type PersonaCategory string

const (
	PersonaCSuite        PersonaCategory = "C-Suite"
	PersonaManufacturing PersonaCategory = "CMC/Manufacturing"
	PersonaSupplyChain   PersonaCategory = "Supply Chain/Procurement"
	PersonaVPDirector    PersonaCategory = "VP/Director"
	PersonaProgramLead   PersonaCategory = "Program/Project Lead"
	PersonaOther         PersonaCategory = "Biotech Professional"
)

// Lead is a person record. A Lead references exactly one Company; a Company
// may be referenced by many Leads.
type Lead struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	CompanyID      string `json:"company_id"`

	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Location    string `json:"location,omitempty"`
	Source      string `json:"source,omitempty"`

	ConfidenceMap map[string]string `json:"confidence_map,omitempty"`

	// FitScore is a 60/40 blend of the title-derived score and the owning
	// company's fit score, clamped to [0,100].
	FitScore         int              `json:"fit_score"`
	PersonaCategory  PersonaCategory  `json:"persona_category,omitempty"`
	CombinedPriority string           `json:"combined_priority,omitempty"`
	MonitorFlag      bool             `json:"monitor_flag"`
	EnrichmentStatus EnrichmentStatus `json:"enrichment_status"`
	FailureReason    string           `json:"failure_reason,omitempty"`
	LastEnrichedAt   *time.Time       `json:"last_enriched_at,omitempty"`
	LastMonitoredAt  *time.Time       `json:"last_monitored_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
