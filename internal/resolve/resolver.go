// Package resolve provides find-or-create identity resolution for companies
// and leads over a run-scoped cache.
package resolve

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/match"
	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
)

// DefaultThreshold is the minimum fuzzy score accepted as a match.
const DefaultThreshold = 0.85

// EntityStore is the slice of the record store the resolver needs.
type EntityStore interface {
	GetCompanyByName(ctx context.Context, name string) (*model.Company, error)
	ListCompanies(ctx context.Context, filter store.CompanyFilter) ([]model.Company, error)
	CreateCompany(ctx context.Context, c *model.Company) error
	GetLeadByName(ctx context.Context, name, companyID string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter store.LeadFilter) ([]model.Lead, error)
	CreateLead(ctx context.Context, l *model.Lead) error
}

// Resolver deduplicates company and lead identities. It owns a cache of
// existing entities loaded once at batch start; creations are inserted into
// the cache so later lookups in the same run see them without a store round
// trip. One Resolver serves exactly one run and is discarded afterwards.
//
// Resolution is read-then-write: the cache is not re-validated against the
// store before a create, so concurrent runs can race. Single-writer
// operational discipline is assumed.
type Resolver struct {
	store     EntityStore
	threshold float64

	companies []cachedEntity // canonical set, stable order
	leads     map[string][]cachedEntity
	loaded    bool
}

type cachedEntity struct {
	id         string
	name       string
	normalized string
}

// NewResolver creates a resolver over the given store using the default
// fuzzy threshold.
func NewResolver(s EntityStore) *Resolver {
	return &Resolver{store: s, threshold: DefaultThreshold, leads: make(map[string][]cachedEntity)}
}

// WithThreshold overrides the fuzzy match threshold.
func (r *Resolver) WithThreshold(t float64) *Resolver {
	r.threshold = t
	return r
}

// Load populates the run cache from the store. Called once at batch start;
// FindOrCreate calls it lazily if the caller did not.
func (r *Resolver) Load(ctx context.Context) error {
	if r.loaded {
		return nil
	}

	companies, err := r.store.ListCompanies(ctx, store.CompanyFilter{})
	if err != nil {
		return eris.Wrap(err, "resolve: load companies")
	}
	r.companies = r.companies[:0]
	for _, c := range companies {
		normalized := c.NormalizedName
		if normalized == "" {
			normalized = match.NormalizeCompany(c.Name)
		}
		r.companies = append(r.companies, cachedEntity{id: c.ID, name: c.Name, normalized: normalized})
	}

	leads, err := r.store.ListLeads(ctx, store.LeadFilter{})
	if err != nil {
		return eris.Wrap(err, "resolve: load leads")
	}
	for _, l := range leads {
		normalized := l.NormalizedName
		if normalized == "" {
			normalized = match.NormalizePerson(l.Name)
		}
		r.leads[l.CompanyID] = append(r.leads[l.CompanyID], cachedEntity{id: l.ID, name: l.Name, normalized: normalized})
	}

	r.loaded = true
	zap.L().Debug("resolve: cache loaded",
		zap.Int("companies", len(r.companies)),
		zap.Int("leads", len(leads)),
	)
	return nil
}

// FindCompany resolves a raw company name to an existing company id using the
// three-tier cascade without creating. Returns store.ErrNotFound on a miss.
func (r *Resolver) FindCompany(ctx context.Context, rawName string) (string, error) {
	id, _, err := r.resolveCompany(ctx, rawName, false)
	return id, err
}

// FindOrCreateCompany resolves a raw company name, creating a canonical
// record seeded with the raw name when no tier matches. Returns the company
// id and whether it was newly created.
//
// Cascade order:
//  1. Exact raw-text match against the store.
//  2. Exact normalized match over the cached canonical set.
//  3. Fuzzy match over the cached canonical set; best score wins if it
//     clears the threshold, ties broken by first-encountered order.
func (r *Resolver) FindOrCreateCompany(ctx context.Context, rawName string) (string, bool, error) {
	return r.resolveCompany(ctx, rawName, true)
}

func (r *Resolver) resolveCompany(ctx context.Context, rawName string, create bool) (string, bool, error) {
	if rawName == "" {
		return "", false, eris.New("resolve: company name is required")
	}
	if err := r.Load(ctx); err != nil {
		return "", false, err
	}

	// Tier 1: exact raw-text match.
	existing, err := r.store.GetCompanyByName(ctx, rawName)
	if err != nil && !eris.Is(err, store.ErrNotFound) {
		return "", false, eris.Wrap(err, "resolve: company by name")
	}
	if existing != nil {
		zap.L().Debug("resolve: company matched by raw name",
			zap.String("name", rawName),
			zap.String("company_id", existing.ID),
		)
		return existing.ID, false, nil
	}

	normalized := match.NormalizeCompany(rawName)

	// Tier 2: exact normalized match over the canonical cache.
	for _, c := range r.companies {
		if c.normalized == normalized {
			zap.L().Debug("resolve: company matched by normalized name",
				zap.String("name", rawName),
				zap.String("company_id", c.id),
			)
			return c.id, false, nil
		}
	}

	// Tier 3: fuzzy match. Candidates are compared only against the
	// canonical cached set, never against each other, so near-matches
	// cannot chain into a transitive merge. First-encountered order breaks
	// ties to keep resolution deterministic.
	if id, ok := r.bestFuzzy(r.companies, rawName, match.NormalizeCompany); ok {
		return id, false, nil
	}

	if !create {
		return "", false, store.ErrNotFound
	}

	company := &model.Company{
		Name:             rawName,
		NormalizedName:   normalized,
		EnrichmentStatus: model.EnrichmentNotEnriched,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := r.store.CreateCompany(ctx, company); err != nil {
		return "", false, eris.Wrap(err, "resolve: create company")
	}
	r.companies = append(r.companies, cachedEntity{id: company.ID, name: rawName, normalized: normalized})

	zap.L().Info("resolve: created new company",
		zap.String("name", rawName),
		zap.String("company_id", company.ID),
	)
	return company.ID, true, nil
}

// FindOrCreateLead resolves a raw person name within its owning company,
// creating a lead when no tier matches. The cascade mirrors company
// resolution but is scoped to the company's leads.
func (r *Resolver) FindOrCreateLead(ctx context.Context, rawName, companyID string) (string, bool, error) {
	if rawName == "" {
		return "", false, eris.New("resolve: lead name is required")
	}
	if companyID == "" {
		return "", false, eris.New("resolve: lead requires an owning company")
	}
	if err := r.Load(ctx); err != nil {
		return "", false, err
	}

	existing, err := r.store.GetLeadByName(ctx, rawName, companyID)
	if err != nil && !eris.Is(err, store.ErrNotFound) {
		return "", false, eris.Wrap(err, "resolve: lead by name")
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	normalized := match.NormalizePerson(rawName)
	scoped := r.leads[companyID]

	for _, l := range scoped {
		if l.normalized == normalized {
			zap.L().Debug("resolve: lead matched by normalized name",
				zap.String("name", rawName),
				zap.String("lead_id", l.id),
			)
			return l.id, false, nil
		}
	}

	if id, ok := r.bestFuzzy(scoped, rawName, match.NormalizePerson); ok {
		return id, false, nil
	}

	lead := &model.Lead{
		Name:             rawName,
		NormalizedName:   normalized,
		CompanyID:        companyID,
		EnrichmentStatus: model.EnrichmentNotEnriched,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := r.store.CreateLead(ctx, lead); err != nil {
		return "", false, eris.Wrap(err, "resolve: create lead")
	}
	r.leads[companyID] = append(r.leads[companyID], cachedEntity{id: lead.ID, name: rawName, normalized: normalized})

	zap.L().Info("resolve: created new lead",
		zap.String("name", rawName),
		zap.String("company_id", companyID),
		zap.String("lead_id", lead.ID),
	)
	return lead.ID, true, nil
}

func (r *Resolver) bestFuzzy(entities []cachedEntity, rawName string, normalize match.NormalizeFunc) (string, bool) {
	bestID := ""
	bestName := ""
	bestScore := 0.0
	for _, e := range entities {
		score := match.Score(rawName, e.name, normalize)
		if score > bestScore {
			bestScore = score
			bestID = e.id
			bestName = e.name
		}
	}
	if bestScore >= r.threshold {
		zap.L().Debug("resolve: fuzzy match",
			zap.String("name", rawName),
			zap.String("matched", bestName),
			zap.Float64("score", bestScore),
		)
		return bestID, true
	}
	return "", false
}
