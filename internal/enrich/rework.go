package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/confidence"
	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
)

// ScreenRework walks enriched companies and leads and sends any whose
// aggregate confidence falls below the threshold back to Not Enriched, so
// the next enrichment batch re-researches them. Confidence aggregates by the
// weakest field: one unverified fact drags the whole record down.
func (p *Pipeline) ScreenRework(ctx context.Context, threshold int) (*Report, error) {
	if threshold <= 0 {
		threshold = p.cfg.ReworkThreshold
	}

	report := &Report{}

	companies, err := p.store.ListCompanies(ctx, store.CompanyFilter{EnrichmentStatus: model.EnrichmentEnriched})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list enriched companies")
	}
	for i := range companies {
		c := &companies[i]
		report.Processed++
		if !confidence.NeedsRework(c.ConfidenceMap, threshold) {
			report.Skipped++
			continue
		}
		c.EnrichmentStatus = model.EnrichmentNotEnriched
		if err := p.store.UpdateCompany(ctx, c); err != nil {
			report.Failed++
			continue
		}
		report.Updated++
		zap.L().Info("company queued for rework",
			zap.String("company", c.Name),
			zap.Int("aggregate_confidence", confidence.Aggregate(c.ConfidenceMap)),
		)
	}

	leads, err := p.store.ListLeads(ctx, store.LeadFilter{EnrichmentStatus: model.EnrichmentEnriched})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list enriched leads")
	}
	for i := range leads {
		l := &leads[i]
		report.Processed++
		if !confidence.NeedsRework(l.ConfidenceMap, threshold) {
			report.Skipped++
			continue
		}
		l.EnrichmentStatus = model.EnrichmentNotEnriched
		if err := p.store.UpdateLead(ctx, l); err != nil {
			report.Failed++
			continue
		}
		report.Updated++
		zap.L().Info("lead queued for rework",
			zap.String("lead", l.Name),
			zap.Int("aggregate_confidence", confidence.Aggregate(l.ConfidenceMap)),
		)
	}

	zap.L().Info("rework screening finished",
		zap.Int("processed", report.Processed),
		zap.Int("queued", report.Updated),
	)
	return report, nil
}
