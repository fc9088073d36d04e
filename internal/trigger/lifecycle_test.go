package trigger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
)

type fakeTriggerStore struct {
	triggers []model.TriggerEvent
	leads    map[string]model.Lead
	nextID   int
}

func newFakeTriggerStore(leadIDs ...string) *fakeTriggerStore {
	f := &fakeTriggerStore{leads: map[string]model.Lead{}}
	for _, id := range leadIDs {
		f.leads[id] = model.Lead{ID: id}
	}
	return f
}

func (f *fakeTriggerStore) CreateTrigger(_ context.Context, t *model.TriggerEvent) error {
	f.nextID++
	t.ID = fmt.Sprintf("trg-%d", f.nextID)
	f.triggers = append(f.triggers, *t)
	return nil
}

func (f *fakeTriggerStore) GetTrigger(_ context.Context, id string) (*model.TriggerEvent, error) {
	for i := range f.triggers {
		if f.triggers[i].ID == id {
			t := f.triggers[i]
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTriggerStore) UpdateTrigger(_ context.Context, t *model.TriggerEvent) error {
	for i := range f.triggers {
		if f.triggers[i].ID == t.ID {
			f.triggers[i] = *t
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeTriggerStore) DeleteTrigger(_ context.Context, id string) error {
	for i := range f.triggers {
		if f.triggers[i].ID == id {
			f.triggers = append(f.triggers[:i], f.triggers[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeTriggerStore) ListTriggers(_ context.Context, filter store.TriggerFilter) ([]model.TriggerEvent, error) {
	var out []model.TriggerEvent
	for _, t := range f.triggers {
		if filter.LeadID != "" && t.LeadID != filter.LeadID {
			continue
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTriggerStore) GetLead(_ context.Context, id string) (*model.Lead, error) {
	if l, ok := f.leads[id]; ok {
		return &l, nil
	}
	return nil, store.ErrNotFound
}

func conferenceTrigger(leadID string) *model.TriggerEvent {
	return &model.TriggerEvent{
		LeadID:        leadID,
		Kind:          model.TriggerConferenceAttendance,
		EventIdentity: "BIO International Convention 2026",
		Urgency:       model.UrgencyHigh,
	}
}

func TestCreateOrSkip_CreatesOnce(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)

	first, created, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.TriggerStatusNew, first.Status)
	assert.Equal(t, 0, first.OutreachVersion)

	second, created, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, fs.triggers, 1)
}

func TestCreateOrSkip_SubstringIdentityIsDuplicate(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)

	_, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)

	shorter := conferenceTrigger("lead-1")
	shorter.EventIdentity = "bio international convention"
	_, created, err := l.CreateOrSkip(context.Background(), shorter)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, fs.triggers, 1)
}

func TestCreateOrSkip_DifferentKindIsNotDuplicate(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)

	_, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)

	funding := conferenceTrigger("lead-1")
	funding.Kind = model.TriggerFunding
	_, created, err := l.CreateOrSkip(context.Background(), funding)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, fs.triggers, 2)
}

func TestCreateOrSkip_CompletedDoesNotBlock(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)

	first, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)
	first.Status = model.TriggerStatusCompleted
	require.NoError(t, fs.UpdateTrigger(context.Background(), first))

	_, created, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCreateOrSkip_MissingLeadIsOrphan(t *testing.T) {
	fs := newFakeTriggerStore()
	l := NewLifecycle(fs)

	_, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-gone"))
	assert.ErrorIs(t, err, ErrOrphan)
	assert.Empty(t, fs.triggers)
}

func TestRegenerate_IncrementsAndClearsValidity(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)
	created, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)

	validity := 72
	created.ValidityScore = &validity
	require.NoError(t, fs.UpdateTrigger(context.Background(), created))

	ok, err := l.Regenerate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := fs.GetTrigger(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.OutreachVersion)
	assert.Nil(t, stored.ValidityScore)
}

func TestRegenerate_RefusesAtCap(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs).WithVersionCap(2)
	created, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := l.Regenerate(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Regenerate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, _ := fs.GetTrigger(context.Background(), created.ID)
	assert.Equal(t, 2, stored.OutreachVersion)
}

func TestRegenerate_OrphanedLeadRefused(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)
	created, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)

	delete(fs.leads, "lead-1")
	_, err = l.Regenerate(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrOrphan)
}

func TestMarkNotified(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)
	created, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)

	require.NoError(t, l.MarkNotified(context.Background(), created.ID))
	stored, _ := fs.GetTrigger(context.Background(), created.ID)
	assert.Equal(t, model.TriggerStatusNotified, stored.Status)

	// Second notify is an invalid transition.
	assert.Error(t, l.MarkNotified(context.Background(), created.ID))
}

func TestNewSince_FiltersByCutoff(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)

	old := conferenceTrigger("lead-1")
	old.EventIdentity = "old funding round"
	old.Kind = model.TriggerFunding
	old.DetectedAt = time.Now().UTC().Add(-72 * time.Hour)
	_, _, err := l.CreateOrSkip(context.Background(), old)
	require.NoError(t, err)

	recent := conferenceTrigger("lead-1")
	recent.DetectedAt = time.Now().UTC()
	_, _, err = l.CreateOrSkip(context.Background(), recent)
	require.NoError(t, err)

	got, err := l.NewSince(context.Background(), time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.TriggerConferenceAttendance, got[0].Kind)
}

func TestCleanupOrphans_DryRunReportsOnly(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)
	_, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)
	delete(fs.leads, "lead-1")

	report, err := l.CleanupOrphans(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Len(t, report.Orphans, 1)
	assert.Len(t, fs.triggers, 1)
}

func TestCleanupOrphans_RelinksWhenPossible(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)
	created, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)
	delete(fs.leads, "lead-1")
	fs.leads["lead-2"] = model.Lead{ID: "lead-2"}

	relink := func(_ context.Context, _ model.TriggerEvent) (string, error) {
		return "lead-2", nil
	}
	report, err := l.CleanupOrphans(context.Background(), relink, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Relinked)
	assert.Equal(t, 0, report.Deleted)

	stored, _ := fs.GetTrigger(context.Background(), created.ID)
	assert.Equal(t, "lead-2", stored.LeadID)
}

func TestCleanupOrphans_DeletesUnlinkable(t *testing.T) {
	fs := newFakeTriggerStore("lead-1")
	l := NewLifecycle(fs)
	_, _, err := l.CreateOrSkip(context.Background(), conferenceTrigger("lead-1"))
	require.NoError(t, err)
	delete(fs.leads, "lead-1")

	report, err := l.CleanupOrphans(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Empty(t, fs.triggers)
}
