package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
	"github.com/rezon-bio/leadintel/internal/trigger"
	"github.com/rezon-bio/leadintel/pkg/oracle"
)

// MonitorLeads checks every monitor-flagged lead for recent public activity
// and books a trigger for each verifiable event found. Created counts new
// triggers, Skipped counts events deduplicated against open ones, Updated
// counts leads whose monitoring timestamp advanced.
func (p *Pipeline) MonitorLeads(ctx context.Context, daysBack, limit int) (*Report, error) {
	leads, err := p.store.ListLeads(ctx, store.LeadFilter{MonitorOnly: true, Limit: limit})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list monitored leads")
	}

	report := &Report{}
	for i := range leads {
		l := &leads[i]
		report.Processed++

		created, skipped, err := p.monitorLead(ctx, l, daysBack)
		if err != nil {
			if ctx.Err() != nil {
				return report, err
			}
			report.Failed++
			zap.L().Warn("lead monitoring failed",
				zap.String("lead", l.Name),
				zap.Error(err),
			)
			continue
		}
		report.Created += created
		report.Skipped += skipped
		report.Updated++
	}

	zap.L().Info("monitoring batch finished",
		zap.Int("processed", report.Processed),
		zap.Int("triggers_created", report.Created),
		zap.Int("duplicates_skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (p *Pipeline) monitorLead(ctx context.Context, l *model.Lead, daysBack int) (created, skipped int, err error) {
	companyName := ""
	if c, err := p.store.GetCompany(ctx, l.CompanyID); err == nil {
		companyName = c.Name
	}

	text, err := p.research(ctx, oracle.MonitorSystem, oracle.MonitorPrompt(l.Name, l.Title, companyName, daysBack), "monitor_lead")
	if err != nil {
		return 0, 0, eris.Wrapf(err, "enrich: monitor %s", l.Name)
	}

	activity, err := oracle.ParseLeadActivity(text)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "enrich: parse activity for %s", l.Name)
	}

	for _, finding := range activity.TriggerEvents {
		if strings.TrimSpace(finding.Description) == "" {
			continue
		}
		t := &model.TriggerEvent{
			LeadID:        l.ID,
			CompanyID:     l.CompanyID,
			Kind:          classifyTriggerKind(finding.Type, finding.Description),
			EventIdentity: finding.Description,
			Description:   finding.Description,
			SourceURL:     finding.SourceURL,
			Urgency:       parseUrgency(finding.Urgency),
		}
		if d, derr := time.Parse("2006-01-02", finding.Date); derr == nil {
			t.DetectedAt = d.UTC()
		}

		_, isNew, cerr := p.triggers.CreateOrSkip(ctx, t)
		if cerr != nil {
			if eris.Is(cerr, trigger.ErrOrphan) {
				continue
			}
			return created, skipped, eris.Wrapf(cerr, "enrich: book trigger for %s", l.Name)
		}
		if isNew {
			created++
		} else {
			skipped++
		}
	}

	now := time.Now().UTC()
	l.LastMonitoredAt = &now
	if err := p.store.UpdateLead(ctx, l); err != nil {
		return created, skipped, eris.Wrapf(err, "enrich: persist monitored lead %s", l.Name)
	}

	zap.L().Info("lead monitored",
		zap.String("lead", l.Name),
		zap.Int("events", len(activity.TriggerEvents)),
		zap.Int("triggers_created", created),
	)
	return created, skipped, nil
}

// classifyTriggerKind maps a reported event type onto the trigger taxonomy.
// Unknown types fall back to keyword matching against the description so a
// chatty reply still lands in a usable bucket.
func classifyTriggerKind(reported, description string) model.TriggerKind {
	switch kind := model.TriggerKind(strings.ToUpper(strings.TrimSpace(reported))); kind {
	case model.TriggerFunding, model.TriggerPromotion, model.TriggerJobChange,
		model.TriggerSpeaking, model.TriggerConferenceAttendance, model.TriggerHiring,
		model.TriggerPipeline, model.TriggerPartnership, model.TriggerAward,
		model.TriggerPainPoint, model.TriggerRoadshow, model.TriggerOther:
		return kind
	}

	text := strings.ToUpper(reported + " " + description)
	switch {
	case strings.Contains(text, "TRIAL"), strings.Contains(text, "PHASE"), strings.Contains(text, "PIPELINE"):
		return model.TriggerPipeline
	case strings.Contains(text, "CONFERENCE"):
		return model.TriggerConferenceAttendance
	case strings.Contains(text, "SPEAK"):
		return model.TriggerSpeaking
	case strings.Contains(text, "FUND"):
		return model.TriggerFunding
	case strings.Contains(text, "HIRING"):
		return model.TriggerHiring
	case strings.Contains(text, "JOB"), strings.Contains(text, "PROMOTION"), strings.Contains(text, "ROLE"):
		return model.TriggerJobChange
	case strings.Contains(text, "PARTNER"):
		return model.TriggerPartnership
	case strings.Contains(text, "AWARD"):
		return model.TriggerAward
	case strings.Contains(text, "PAIN"):
		return model.TriggerPainPoint
	default:
		return model.TriggerOther
	}
}

func parseUrgency(s string) model.TriggerUrgency {
	switch model.TriggerUrgency(strings.ToUpper(strings.TrimSpace(s))) {
	case model.UrgencyHigh:
		return model.UrgencyHigh
	case model.UrgencyLow:
		return model.UrgencyLow
	default:
		return model.UrgencyMedium
	}
}
