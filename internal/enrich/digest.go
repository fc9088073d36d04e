package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/model"
)

// DigestEntry is one new trigger joined with the names downstream messaging
// needs.
type DigestEntry struct {
	Trigger model.TriggerEvent
	Lead    string
	Company string
}

// Digest collects triggers detected since the cutoff that are still New.
// With markNotified set, each collected trigger transitions New -> Notified
// so the next digest does not repeat it.
func (p *Pipeline) Digest(ctx context.Context, since time.Time, markNotified bool) ([]DigestEntry, error) {
	triggers, err := p.triggers.NewSince(ctx, since)
	if err != nil {
		return nil, err
	}

	entries := make([]DigestEntry, 0, len(triggers))
	for _, t := range triggers {
		entry := DigestEntry{Trigger: t}

		lead, err := p.store.GetLead(ctx, t.LeadID)
		if err != nil {
			// Orphan; the cleanup pass owns it, the digest just reports less.
			zap.L().Warn("digest: trigger without lead",
				zap.String("trigger_id", t.ID),
				zap.String("lead_id", t.LeadID),
			)
			continue
		}
		entry.Lead = lead.Name

		if company, err := p.store.GetCompany(ctx, lead.CompanyID); err == nil {
			entry.Company = company.Name
		}

		if markNotified {
			if err := p.triggers.MarkNotified(ctx, t.ID); err != nil {
				return entries, eris.Wrapf(err, "enrich: mark trigger %s notified", t.ID)
			}
		}
		entries = append(entries, entry)
	}

	zap.L().Info("digest collected",
		zap.Int("triggers", len(entries)),
		zap.Time("since", since),
		zap.Bool("marked_notified", markNotified),
	)
	return entries, nil
}
