package enrich

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/icp"
	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
	"github.com/rezon-bio/leadintel/pkg/oracle"
)

// EnrichCompanies researches every company in the given enrichment status,
// one at a time. A company whose retries run out or whose reply cannot be
// parsed is marked Failed and the batch moves on; a company identified as a
// CDMO competitor is deleted along with its leads.
func (p *Pipeline) EnrichCompanies(ctx context.Context, status model.EnrichmentStatus, limit int) (*Report, error) {
	companies, err := p.store.ListCompanies(ctx, store.CompanyFilter{EnrichmentStatus: status, Limit: limit})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list companies")
	}

	report := &Report{}
	for i := range companies {
		c := &companies[i]
		report.Processed++

		if err := p.enrichCompany(ctx, c, report); err != nil {
			if ctx.Err() != nil {
				return report, err
			}
			report.Failed++
			p.markCompanyFailed(ctx, c, err)
		}
	}

	zap.L().Info("company enrichment batch finished",
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.Int("deleted", report.Deleted),
	)
	return report, nil
}

func (p *Pipeline) enrichCompany(ctx context.Context, c *model.Company, report *Report) error {
	text, err := p.research(ctx, oracle.CompanySystem, oracle.CompanyPrompt(c.Name), "enrich_company")
	if err != nil {
		return eris.Wrapf(err, "enrich: research company %s", c.Name)
	}

	facts, err := oracle.ParseCompanyEnrichment(text)
	if err != nil {
		return eris.Wrapf(err, "enrich: parse reply for %s", c.Name)
	}

	if facts.IsCDMOCompetitor {
		if err := p.deleteCompetitor(ctx, c); err != nil {
			return err
		}
		report.Deleted++
		return nil
	}

	applyCompanyFacts(c, facts)
	p.scoreCompany(c)

	now := time.Now().UTC()
	c.EnrichmentStatus = model.EnrichmentEnriched
	c.FailureReason = ""
	c.LastEnrichedAt = &now

	if err := p.store.UpdateCompany(ctx, c); err != nil {
		return eris.Wrapf(err, "enrich: persist company %s", c.Name)
	}
	report.Updated++

	zap.L().Info("company enriched",
		zap.String("company", c.Name),
		zap.Int("fit_score", c.FitScore),
		zap.Int("urgency_score", c.UrgencyScore),
	)
	return nil
}

// Assess researches and scores a single company by name without persisting
// anything. Used for one-off fit checks from the CLI.
func (p *Pipeline) Assess(ctx context.Context, name string) (*model.Company, error) {
	text, err := p.research(ctx, oracle.CompanySystem, oracle.CompanyPrompt(name), "assess_company")
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: research company %s", name)
	}
	facts, err := oracle.ParseCompanyEnrichment(text)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: parse reply for %s", name)
	}

	c := &model.Company{Name: name}
	applyCompanyFacts(c, facts)
	p.scoreCompany(c)
	if facts.IsCDMOCompetitor {
		c.FitScore = 0
		c.IntelligenceNotes = strings.TrimSpace("CDMO competitor. " + c.IntelligenceNotes)
	}
	return c, nil
}

// applyCompanyFacts merges oracle facts into the record, validating every
// classified value against the fixed enumerations first.
func applyCompanyFacts(c *model.Company, f *oracle.CompanyEnrichment) {
	setIfPresent(&c.Website, f.Website)
	setIfPresent(&c.LinkedIn, f.LinkedIn)
	setIfPresent(&c.Location, f.Location)
	setIfPresent(&c.LatestFundingRound, f.LatestFundingRound)
	setIfPresent(&c.LeadPrograms, f.LeadPrograms)
	setIfPresent(&c.IntelligenceNotes, f.IntelligenceNotes)

	if f.CompanySize != "" {
		c.CompanySize = model.ParseCompanySize(f.CompanySize)
	}
	if f.FundingStage != "" {
		c.FundingStage = model.ValidateSingleSelect(f.FundingStage, model.FundingStages, "Unknown")
	}
	if f.ManufacturingStatus != "" {
		c.ManufacturingStatus = model.ValidateSingleSelect(f.ManufacturingStatus, model.ManufacturingStatuses, "Unknown")
	}
	if len(f.FocusAreas) > 0 {
		c.FocusAreas = model.ValidateMultiSelect(f.FocusAreas, model.FocusAreas, "Other")
	}
	if len(f.TechnologyPlatforms) > 0 {
		c.TechnologyPlatforms = model.ValidateMultiSelect(f.TechnologyPlatforms, model.TechnologyPlatforms, "Other")
	}
	if len(f.TherapeuticAreas) > 0 {
		c.TherapeuticAreas = model.ValidateMultiSelect(f.TherapeuticAreas, model.TherapeuticAreas, "Other")
	}
	if len(f.PipelineStages) > 0 {
		c.PipelineStages = model.ValidateMultiSelect(f.PipelineStages, model.PipelineStages, "Unknown")
	}
	if len(f.Confidence) > 0 {
		c.ConfidenceMap = f.Confidence
	}
}

// scoreCompany computes fit and urgency from the record's current facts.
func (p *Pipeline) scoreCompany(c *model.Company) {
	fit, _ := p.scorer.Score(map[string]string{
		"company_size":         c.CompanySize,
		"funding_stage":        c.FundingStage,
		"pipeline_stages":      strings.Join(c.PipelineStages, ", "),
		"technology_platforms": strings.Join(c.TechnologyPlatforms, ", "),
		"focus_areas":          strings.Join(c.FocusAreas, ", "),
		"location":             c.Location,
		"manufacturing_status": c.ManufacturingStatus,
	})
	c.FitScore = fit

	year := time.Now().UTC().Year()
	c.UrgencyScore = icp.ScoreUrgency(icp.CompanyFacts{
		LatestFundingRound:  c.LatestFundingRound,
		LeadPrograms:        c.LeadPrograms,
		IntelligenceNotes:   c.IntelligenceNotes,
		ManufacturingStatus: c.ManufacturingStatus,
	}, strconv.Itoa(year), strconv.Itoa(year-1))
}

// deleteCompetitor removes a company that turned out to sell manufacturing
// capacity itself, together with its leads. Their triggers become orphans and
// are swept by the cleanup pass.
func (p *Pipeline) deleteCompetitor(ctx context.Context, c *model.Company) error {
	leads, err := p.store.ListLeads(ctx, store.LeadFilter{CompanyID: c.ID})
	if err != nil {
		return eris.Wrapf(err, "enrich: list leads of competitor %s", c.Name)
	}
	for _, l := range leads {
		if err := p.store.DeleteLead(ctx, l.ID); err != nil && !eris.Is(err, store.ErrNotFound) {
			return eris.Wrapf(err, "enrich: delete lead %s", l.Name)
		}
	}
	if err := p.store.DeleteCompany(ctx, c.ID); err != nil && !eris.Is(err, store.ErrNotFound) {
		return eris.Wrapf(err, "enrich: delete competitor %s", c.Name)
	}

	zap.L().Warn("competitor removed",
		zap.String("company", c.Name),
		zap.Int("leads_removed", len(leads)),
	)
	return nil
}

func (p *Pipeline) markCompanyFailed(ctx context.Context, c *model.Company, cause error) {
	c.EnrichmentStatus = model.EnrichmentFailed
	c.FailureReason = eris.Cause(cause).Error()
	if err := p.store.UpdateCompany(ctx, c); err != nil {
		zap.L().Error("could not mark company failed",
			zap.String("company", c.Name),
			zap.Error(err),
		)
		return
	}
	zap.L().Warn("company enrichment failed",
		zap.String("company", c.Name),
		zap.Error(cause),
	)
}

func setIfPresent(dst *string, v string) {
	v = strings.TrimSpace(v)
	if v != "" && !strings.EqualFold(v, "unknown") {
		*dst = v
	}
}
