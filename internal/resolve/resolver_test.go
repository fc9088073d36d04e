package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
)

// fakeStore is an in-memory EntityStore for resolver tests.
type fakeStore struct {
	companies []model.Company
	leads     []model.Lead
	nextID    int
}

func (f *fakeStore) GetCompanyByName(_ context.Context, name string) (*model.Company, error) {
	for i := range f.companies {
		if f.companies[i].Name == name {
			return &f.companies[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListCompanies(_ context.Context, _ store.CompanyFilter) ([]model.Company, error) {
	return f.companies, nil
}

func (f *fakeStore) CreateCompany(_ context.Context, c *model.Company) error {
	f.nextID++
	c.ID = fmt.Sprintf("cmp-%d", f.nextID)
	f.companies = append(f.companies, *c)
	return nil
}

func (f *fakeStore) GetLeadByName(_ context.Context, name, companyID string) (*model.Lead, error) {
	for i := range f.leads {
		if f.leads[i].Name == name && f.leads[i].CompanyID == companyID {
			return &f.leads[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListLeads(_ context.Context, _ store.LeadFilter) ([]model.Lead, error) {
	return f.leads, nil
}

func (f *fakeStore) CreateLead(_ context.Context, l *model.Lead) error {
	f.nextID++
	l.ID = fmt.Sprintf("lead-%d", f.nextID)
	f.leads = append(f.leads, *l)
	return nil
}

func seededStore() *fakeStore {
	return &fakeStore{
		companies: []model.Company{
			{ID: "cmp-pfizer", Name: "Pfizer"},
			{ID: "cmp-sandoz", Name: "Sandoz Group"},
			{ID: "cmp-moderna", Name: "Moderna"},
		},
	}
}

func TestFindOrCreateCompany_ExactRawMatch(t *testing.T) {
	r := NewResolver(seededStore())
	id, created, err := r.FindOrCreateCompany(context.Background(), "Pfizer")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "cmp-pfizer", id)
}

func TestFindOrCreateCompany_NormalizedMatch(t *testing.T) {
	r := NewResolver(seededStore())
	id, created, err := r.FindOrCreateCompany(context.Background(), "Pfizer, Inc.")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "cmp-pfizer", id)
}

func TestFindOrCreateCompany_FuzzyMatch(t *testing.T) {
	r := NewResolver(seededStore())
	// "Sandoz" vs cached "Sandoz Group" normalizes to the same form.
	id, created, err := r.FindOrCreateCompany(context.Background(), "Sandoz")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "cmp-sandoz", id)
}

func TestFindOrCreateCompany_ExactBeatsFuzzy(t *testing.T) {
	fs := seededStore()
	// A record whose raw name equals the query must win even though a
	// different record would fuzzy-match with a high score.
	fs.companies = append(fs.companies, model.Company{ID: "cmp-exact", Name: "Sandoz"})
	r := NewResolver(fs)
	id, created, err := r.FindOrCreateCompany(context.Background(), "Sandoz")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "cmp-exact", id)
}

func TestFindOrCreateCompany_BelowThresholdCreates(t *testing.T) {
	fs := seededStore()
	r := NewResolver(fs).WithThreshold(0.85)
	// "Novo Nordisk" scores below 0.85 against everything cached.
	id, created, err := r.FindOrCreateCompany(context.Background(), "Novo Nordisk")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, id)
	assert.Len(t, fs.companies, 4)

	got := fs.companies[3]
	assert.Equal(t, "Novo Nordisk", got.Name)
	assert.Equal(t, model.EnrichmentNotEnriched, got.EnrichmentStatus)
	assert.NotEmpty(t, got.NormalizedName)
}

func TestFindOrCreateCompany_CacheSeesCreations(t *testing.T) {
	fs := seededStore()
	r := NewResolver(fs)
	id1, created, err := r.FindOrCreateCompany(context.Background(), "Argenx")
	require.NoError(t, err)
	require.True(t, created)

	// A variant of the just-created name resolves without another create.
	id2, created, err := r.FindOrCreateCompany(context.Background(), "Argenx SE")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id1, id2)
	assert.Len(t, fs.companies, 4)
}

func TestFindOrCreateCompany_NoTransitiveMerge(t *testing.T) {
	// Candidates are compared against the canonical cached set only. A
	// candidate that resolves fuzzily does not become a comparison target
	// for later candidates unless it was actually created.
	fs := &fakeStore{companies: []model.Company{{ID: "cmp-a", Name: "Acme Biologics"}}}
	r := NewResolver(fs)

	idB, createdB, err := r.FindOrCreateCompany(context.Background(), "Acme Biologics Inc")
	require.NoError(t, err)
	assert.False(t, createdB)
	assert.Equal(t, "cmp-a", idB)

	// Still only the canonical record in cache; nothing was appended.
	_, err = r.FindCompany(context.Background(), "Completely Different Co")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Len(t, fs.companies, 1)
}

func TestFindCompany_NoCreateOnMiss(t *testing.T) {
	fs := seededStore()
	r := NewResolver(fs)
	_, err := r.FindCompany(context.Background(), "Genmab")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Len(t, fs.companies, 3)
}

func TestFindOrCreateCompany_FirstWinsTieBreak(t *testing.T) {
	fs := &fakeStore{companies: []model.Company{
		{ID: "cmp-1", Name: "BioWorks Therapeutics"},
		{ID: "cmp-2", Name: "BioWorks Pharmaceuticals"},
	}}
	r := NewResolver(fs)
	// Both cached records normalize to "bioworks"; the first encountered wins.
	id, created, err := r.FindOrCreateCompany(context.Background(), "BioWorks")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "cmp-1", id)
}

func TestFindOrCreateLead_ScopedToCompany(t *testing.T) {
	fs := seededStore()
	fs.leads = []model.Lead{{ID: "lead-js", Name: "John Smith", CompanyID: "cmp-pfizer"}}
	r := NewResolver(fs)

	id, created, err := r.FindOrCreateLead(context.Background(), "Dr. John Smith", "cmp-pfizer")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "lead-js", id)

	// Same person name at a different company is a different lead.
	id2, created, err := r.FindOrCreateLead(context.Background(), "Dr. John Smith", "cmp-moderna")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "lead-js", id2)
}

func TestFindOrCreateLead_RequiresCompany(t *testing.T) {
	r := NewResolver(seededStore())
	_, _, err := r.FindOrCreateLead(context.Background(), "Jane Doe", "")
	assert.Error(t, err)
}

func TestFindOrCreateCompany_EmptyNameErrors(t *testing.T) {
	r := NewResolver(seededStore())
	_, _, err := r.FindOrCreateCompany(context.Background(), "")
	assert.Error(t, err)
}
