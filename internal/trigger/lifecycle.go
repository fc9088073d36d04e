// Package trigger manages the trigger-event lifecycle: deduplicated
// creation, outreach regeneration versioning, digest notification, and
// orphan repair.
package trigger

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
)

// TriggerStore is the slice of the record store the lifecycle needs.
type TriggerStore interface {
	CreateTrigger(ctx context.Context, t *model.TriggerEvent) error
	GetTrigger(ctx context.Context, id string) (*model.TriggerEvent, error)
	UpdateTrigger(ctx context.Context, t *model.TriggerEvent) error
	DeleteTrigger(ctx context.Context, id string) error
	ListTriggers(ctx context.Context, filter store.TriggerFilter) ([]model.TriggerEvent, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
}

// Lifecycle enforces the dedup and versioning contract for trigger events.
type Lifecycle struct {
	store      TriggerStore
	versionCap int
}

// NewLifecycle creates a trigger lifecycle with the default regeneration cap.
func NewLifecycle(s TriggerStore) *Lifecycle {
	return &Lifecycle{store: s, versionCap: model.DefaultOutreachVersionCap}
}

// WithVersionCap overrides the outreach regeneration ceiling.
func (l *Lifecycle) WithVersionCap(n int) *Lifecycle {
	l.versionCap = n
	return l
}

// CreateOrSkip inserts a trigger unless an equivalent open one exists for the
// same lead and kind. Identity matching is a case-insensitive substring check
// in both directions: near-duplicate descriptions of one real-world event
// must not produce two triggers. Returns the surviving trigger and whether it
// was newly created.
//
// A missing owning lead is an orphan condition: the trigger is not created
// and the error wraps ErrOrphan for the repair pass.
func (l *Lifecycle) CreateOrSkip(ctx context.Context, t *model.TriggerEvent) (*model.TriggerEvent, bool, error) {
	if t.LeadID == "" || t.Kind == "" || t.EventIdentity == "" {
		return nil, false, eris.New("trigger: lead, kind, and event identity are required")
	}

	if _, err := l.store.GetLead(ctx, t.LeadID); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			return nil, false, eris.Wrapf(ErrOrphan, "trigger: lead %s not found", t.LeadID)
		}
		return nil, false, eris.Wrap(err, "trigger: lookup lead")
	}

	existing, err := l.store.ListTriggers(ctx, store.TriggerFilter{LeadID: t.LeadID, Kind: t.Kind})
	if err != nil {
		return nil, false, eris.Wrap(err, "trigger: list for dedup")
	}

	identity := strings.ToLower(strings.TrimSpace(t.EventIdentity))
	for i := range existing {
		if !isOpen(existing[i].Status) {
			continue
		}
		stored := strings.ToLower(strings.TrimSpace(existing[i].EventIdentity))
		if stored == "" {
			continue
		}
		if strings.Contains(stored, identity) || strings.Contains(identity, stored) {
			zap.L().Debug("trigger: duplicate event skipped",
				zap.String("lead_id", t.LeadID),
				zap.String("kind", string(t.Kind)),
				zap.String("existing_id", existing[i].ID),
			)
			return &existing[i], false, nil
		}
	}

	t.Status = model.TriggerStatusNew
	t.OutreachVersion = 0
	if t.Urgency == "" {
		t.Urgency = model.UrgencyMedium
	}
	if t.DetectedAt.IsZero() {
		t.DetectedAt = time.Now().UTC()
	}
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt

	if err := l.store.CreateTrigger(ctx, t); err != nil {
		return nil, false, eris.Wrap(err, "trigger: create")
	}

	zap.L().Info("trigger: created",
		zap.String("lead_id", t.LeadID),
		zap.String("kind", string(t.Kind)),
		zap.String("trigger_id", t.ID),
	)
	return t, true, nil
}

// Regenerate advances the outreach version by exactly one and clears the
// stored validity score so regenerated content gets re-validated. Returns
// false without mutating anything once the version cap is reached; this
// bounds the otherwise unbounded regeneration loop.
func (l *Lifecycle) Regenerate(ctx context.Context, triggerID string) (bool, error) {
	t, err := l.store.GetTrigger(ctx, triggerID)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			return false, eris.Wrapf(ErrOrphan, "trigger: %s not found", triggerID)
		}
		return false, eris.Wrap(err, "trigger: lookup for regenerate")
	}

	if _, err := l.store.GetLead(ctx, t.LeadID); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			return false, eris.Wrapf(ErrOrphan, "trigger: lead %s deleted", t.LeadID)
		}
		return false, eris.Wrap(err, "trigger: lookup lead for regenerate")
	}

	if t.OutreachVersion >= l.versionCap {
		zap.L().Warn("trigger: regeneration refused at version cap",
			zap.String("trigger_id", triggerID),
			zap.Int("version", t.OutreachVersion),
			zap.Int("cap", l.versionCap),
		)
		return false, nil
	}

	t.OutreachVersion++
	t.ValidityScore = nil
	t.UpdatedAt = time.Now().UTC()
	if err := l.store.UpdateTrigger(ctx, t); err != nil {
		return false, eris.Wrap(err, "trigger: update version")
	}
	return true, nil
}

// MarkNotified transitions a New trigger to Notified. Used by the digest
// pass; other transitions are driven by the sales process, not this engine.
func (l *Lifecycle) MarkNotified(ctx context.Context, triggerID string) error {
	t, err := l.store.GetTrigger(ctx, triggerID)
	if err != nil {
		return eris.Wrap(err, "trigger: lookup for notify")
	}
	if t.Status != model.TriggerStatusNew {
		return eris.Errorf("trigger: cannot notify from status %q", t.Status)
	}
	t.Status = model.TriggerStatusNotified
	t.UpdatedAt = time.Now().UTC()
	if err := l.store.UpdateTrigger(ctx, t); err != nil {
		return eris.Wrap(err, "trigger: update status")
	}
	return nil
}

// NewSince lists New triggers detected after the cutoff, for the digest.
func (l *Lifecycle) NewSince(ctx context.Context, cutoff time.Time) ([]model.TriggerEvent, error) {
	all, err := l.store.ListTriggers(ctx, store.TriggerFilter{Status: model.TriggerStatusNew})
	if err != nil {
		return nil, eris.Wrap(err, "trigger: list new")
	}
	out := all[:0]
	for _, t := range all {
		if !t.DetectedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

// isOpen reports whether a trigger still blocks duplicate creation.
// Completed triggers do not: the same real-world event recurring later is a
// new opportunity.
func isOpen(s model.TriggerStatus) bool {
	return s == model.TriggerStatusNew || s == model.TriggerStatusNotified || s == model.TriggerStatusInProgress
}
