// Package store defines the persistence boundary for companies, leads, and
// trigger events, with SQLite and Postgres implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/rezon-bio/leadintel/internal/model"
)

// ErrNotFound is returned by Get lookups that miss. Callers resolve it by
// creating or skipping, never by failing the batch.
var ErrNotFound = eris.New("store: record not found")

// CompanyFilter selects companies for listing.
type CompanyFilter struct {
	EnrichmentStatus model.EnrichmentStatus
	NameContains     string
	Limit            int
	Offset           int
}

// LeadFilter selects leads for listing.
type LeadFilter struct {
	CompanyID        string
	EnrichmentStatus model.EnrichmentStatus
	MonitorOnly      bool
	Limit            int
	Offset           int
}

// TriggerFilter selects trigger events for listing.
type TriggerFilter struct {
	LeadID string
	Kind   model.TriggerKind
	Status model.TriggerStatus
	Limit  int
}

// Store is the persistence interface shared by all pipelines.
type Store interface {
	// Companies
	CreateCompany(ctx context.Context, c *model.Company) error
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	GetCompanyByName(ctx context.Context, name string) (*model.Company, error)
	UpdateCompany(ctx context.Context, c *model.Company) error
	DeleteCompany(ctx context.Context, id string) error
	ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error)

	// Leads
	CreateLead(ctx context.Context, l *model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	GetLeadByName(ctx context.Context, name, companyID string) (*model.Lead, error)
	UpdateLead(ctx context.Context, l *model.Lead) error
	DeleteLead(ctx context.Context, id string) error
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// Trigger events
	CreateTrigger(ctx context.Context, t *model.TriggerEvent) error
	GetTrigger(ctx context.Context, id string) (*model.TriggerEvent, error)
	UpdateTrigger(ctx context.Context, t *model.TriggerEvent) error
	DeleteTrigger(ctx context.Context, id string) error
	ListTriggers(ctx context.Context, filter TriggerFilter) ([]model.TriggerEvent, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
