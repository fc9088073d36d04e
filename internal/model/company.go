// Package model defines the record types shared by the ingestion pipelines.
package model

import (
	"time"
)

// EnrichmentStatus represents where a record is in the enrichment lifecycle.
type EnrichmentStatus string

const (
	EnrichmentNotEnriched EnrichmentStatus = "Not Enriched"
	EnrichmentEnriched    EnrichmentStatus = "Enriched"
	EnrichmentFailed      EnrichmentStatus = "Failed"
)

// Company is the canonical record for a prospect company. All raw-name
// variants seen by the pipelines resolve to exactly one Company.
type Company struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`

	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Location string `json:"location,omitempty"`

	// Classified facts (validated against the enumerations in validate.go).
	CompanySize         string   `json:"company_size,omitempty"`
	FocusAreas          []string `json:"focus_areas,omitempty"`
	TechnologyPlatforms []string `json:"technology_platforms,omitempty"`
	TherapeuticAreas    []string `json:"therapeutic_areas,omitempty"`
	FundingStage        string   `json:"funding_stage,omitempty"`
	PipelineStages      []string `json:"pipeline_stages,omitempty"`
	ManufacturingStatus string   `json:"manufacturing_status,omitempty"`
	LatestFundingRound  string   `json:"latest_funding_round,omitempty"`
	LeadPrograms        string   `json:"lead_programs,omitempty"`
	IntelligenceNotes   string   `json:"intelligence_notes,omitempty"`

	// ConfidenceMap maps fact field names to confidence labels
	// (high/medium/low/unverified). Serialized as JSON on the record.
	ConfidenceMap map[string]string `json:"confidence_map,omitempty"`

	FitScore         int              `json:"fit_score"`
	UrgencyScore     int              `json:"urgency_score"`
	EnrichmentStatus EnrichmentStatus `json:"enrichment_status"`
	FailureReason    string           `json:"failure_reason,omitempty"`
	LastEnrichedAt   *time.Time       `json:"last_enriched_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
