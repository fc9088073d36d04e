package trigger

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
)

// ErrOrphan marks a trigger whose owning lead or company was deleted
// out-of-band. Orphans are routed to the repair pass, never processed.
var ErrOrphan = eris.New("trigger: orphaned record")

// OrphanReport summarizes one cleanup pass.
type OrphanReport struct {
	Scanned  int
	Orphans  []model.TriggerEvent
	Relinked int
	Deleted  int
}

// RelinkFunc attempts to find a replacement lead id for an orphaned trigger,
// typically by name resolution against current leads. Empty return means no
// candidate.
type RelinkFunc func(ctx context.Context, t model.TriggerEvent) (string, error)

// CleanupOrphans scans all triggers for ones whose lead no longer exists,
// attempts to relink them via relink, and deletes the rest unless dryRun is
// set. Scan errors on individual records are logged and skipped so one bad
// record cannot abort the pass.
func (l *Lifecycle) CleanupOrphans(ctx context.Context, relink RelinkFunc, dryRun bool) (*OrphanReport, error) {
	all, err := l.store.ListTriggers(ctx, store.TriggerFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "trigger: list for orphan scan")
	}

	report := &OrphanReport{Scanned: len(all)}
	for _, t := range all {
		if t.LeadID != "" {
			_, err := l.store.GetLead(ctx, t.LeadID)
			if err == nil {
				continue
			}
			if !eris.Is(err, store.ErrNotFound) {
				zap.L().Warn("trigger: orphan scan lookup failed",
					zap.String("trigger_id", t.ID), zap.Error(err))
				continue
			}
		}

		report.Orphans = append(report.Orphans, t)

		if relink != nil {
			leadID, err := relink(ctx, t)
			if err != nil {
				zap.L().Warn("trigger: relink attempt failed",
					zap.String("trigger_id", t.ID), zap.Error(err))
			} else if leadID != "" {
				if !dryRun {
					t.LeadID = leadID
					if err := l.store.UpdateTrigger(ctx, &t); err != nil {
						zap.L().Warn("trigger: relink update failed",
							zap.String("trigger_id", t.ID), zap.Error(err))
						continue
					}
				}
				report.Relinked++
				zap.L().Info("trigger: orphan relinked",
					zap.String("trigger_id", t.ID),
					zap.String("lead_id", leadID),
					zap.Bool("dry_run", dryRun),
				)
				continue
			}
		}

		if !dryRun {
			if err := l.store.DeleteTrigger(ctx, t.ID); err != nil {
				zap.L().Warn("trigger: orphan delete failed",
					zap.String("trigger_id", t.ID), zap.Error(err))
				continue
			}
		}
		report.Deleted++
	}

	zap.L().Info("trigger: orphan cleanup complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("orphans", len(report.Orphans)),
		zap.Int("relinked", report.Relinked),
		zap.Int("deleted", report.Deleted),
		zap.Bool("dry_run", dryRun),
	)
	return report, nil
}
