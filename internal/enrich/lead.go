package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/icp"
	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
	"github.com/rezon-bio/leadintel/pkg/oracle"
)

// EnrichLeads researches every lead in the given enrichment status. Each
// lead's fit blends its title score with the owning company's fit 60/40.
func (p *Pipeline) EnrichLeads(ctx context.Context, status model.EnrichmentStatus, limit int) (*Report, error) {
	leads, err := p.store.ListLeads(ctx, store.LeadFilter{EnrichmentStatus: status, Limit: limit})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list leads")
	}

	report := &Report{}
	for i := range leads {
		l := &leads[i]
		report.Processed++

		if err := p.enrichLead(ctx, l); err != nil {
			if ctx.Err() != nil {
				return report, err
			}
			report.Failed++
			p.markLeadFailed(ctx, l, err)
			continue
		}
		report.Updated++
	}

	zap.L().Info("lead enrichment batch finished",
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (p *Pipeline) enrichLead(ctx context.Context, l *model.Lead) error {
	company, err := p.store.GetCompany(ctx, l.CompanyID)
	if err != nil {
		return eris.Wrapf(err, "enrich: owning company of %s", l.Name)
	}

	text, err := p.research(ctx, oracle.LeadSystem, oracle.LeadPrompt(l.Name, company.Name), "enrich_lead")
	if err != nil {
		return eris.Wrapf(err, "enrich: research lead %s", l.Name)
	}

	facts, err := oracle.ParseLeadEnrichment(text)
	if err != nil {
		return eris.Wrapf(err, "enrich: parse reply for %s", l.Name)
	}

	setIfPresent(&l.Title, facts.Title)
	setIfPresent(&l.Email, facts.Email)
	setIfPresent(&l.LinkedInURL, facts.LinkedInURL)
	setIfPresent(&l.Location, facts.Location)
	if len(facts.Confidence) > 0 {
		l.ConfidenceMap = facts.Confidence
	}

	p.scoreLead(l, company)

	now := time.Now().UTC()
	l.EnrichmentStatus = model.EnrichmentEnriched
	l.FailureReason = ""
	l.LastEnrichedAt = &now

	if err := p.store.UpdateLead(ctx, l); err != nil {
		return eris.Wrapf(err, "enrich: persist lead %s", l.Name)
	}

	zap.L().Info("lead enriched",
		zap.String("lead", l.Name),
		zap.String("company", company.Name),
		zap.Int("fit_score", l.FitScore),
		zap.String("priority", l.CombinedPriority),
	)
	return nil
}

// scoreLead recomputes the title score, blend, persona, and priority bucket.
func (p *Pipeline) scoreLead(l *model.Lead, company *model.Company) {
	ls := icp.ScoreLead(l.Title, l.Location)
	l.FitScore = icp.BlendFitScore(ls.TitleTotal, company.FitScore)
	l.PersonaCategory = icp.ClassifyPersona(l.Title)
	l.CombinedPriority = icp.CombinedPriority(company.FitScore, ls.TitleTotal)
}

func (p *Pipeline) markLeadFailed(ctx context.Context, l *model.Lead, cause error) {
	l.EnrichmentStatus = model.EnrichmentFailed
	l.FailureReason = eris.Cause(cause).Error()
	if err := p.store.UpdateLead(ctx, l); err != nil {
		zap.L().Error("could not mark lead failed",
			zap.String("lead", l.Name),
			zap.Error(err),
		)
		return
	}
	zap.L().Warn("lead enrichment failed",
		zap.String("lead", l.Name),
		zap.Error(cause),
	)
}
