// Package sync mirrors the local record store into an Airtable base so the
// business-development team can work the records in their existing views.
// The mirror is one-way: local records are the source of truth and push
// overwrites the remote copy.
package sync

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/confidence"
	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
	"github.com/rezon-bio/leadintel/pkg/airtable"
)

// externalIDField is the Airtable column holding the local record id. It is
// the join key between the two stores.
const externalIDField = "External ID"

// Tables names the destination tables inside the base.
type Tables struct {
	Companies string
	Leads     string
	Triggers  string
}

// SourceStore is the slice of the record store the mirror reads.
type SourceStore interface {
	ListCompanies(ctx context.Context, filter store.CompanyFilter) ([]model.Company, error)
	ListLeads(ctx context.Context, filter store.LeadFilter) ([]model.Lead, error)
	ListTriggers(ctx context.Context, filter store.TriggerFilter) ([]model.TriggerEvent, error)
}

// Mirror pushes local records into one Airtable base.
type Mirror struct {
	store  SourceStore
	client airtable.Client
	tables Tables
}

// NewMirror wires a mirror over the given store and Airtable client.
func NewMirror(s SourceStore, c airtable.Client, tables Tables) *Mirror {
	return &Mirror{store: s, client: c, tables: tables}
}

// Report tallies one push.
type Report struct {
	Created int
	Updated int
	Failed  int
}

// Push mirrors companies, leads, and triggers into the base. Existing remote
// rows (matched on the external id column) are updated in place; the rest are
// batch-created. Remote rows with no local counterpart are left alone.
func (m *Mirror) Push(ctx context.Context) (*Report, error) {
	report := &Report{}

	companies, err := m.store.ListCompanies(ctx, store.CompanyFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "sync: list companies")
	}
	companyNames := make(map[string]string, len(companies))
	for _, c := range companies {
		companyNames[c.ID] = c.Name
	}

	companyRows := make([]row, 0, len(companies))
	for _, c := range companies {
		companyRows = append(companyRows, row{id: c.ID, fields: companyFields(&c)})
	}
	if err := m.pushTable(ctx, m.tables.Companies, companyRows, report); err != nil {
		return report, err
	}

	leads, err := m.store.ListLeads(ctx, store.LeadFilter{})
	if err != nil {
		return report, eris.Wrap(err, "sync: list leads")
	}
	leadNames := make(map[string]string, len(leads))
	leadRows := make([]row, 0, len(leads))
	for _, l := range leads {
		leadNames[l.ID] = l.Name
		leadRows = append(leadRows, row{id: l.ID, fields: leadFields(&l, companyNames[l.CompanyID])})
	}
	if err := m.pushTable(ctx, m.tables.Leads, leadRows, report); err != nil {
		return report, err
	}

	triggers, err := m.store.ListTriggers(ctx, store.TriggerFilter{})
	if err != nil {
		return report, eris.Wrap(err, "sync: list triggers")
	}
	triggerRows := make([]row, 0, len(triggers))
	for _, t := range triggers {
		triggerRows = append(triggerRows, row{id: t.ID, fields: triggerFields(&t, leadNames[t.LeadID])})
	}
	if err := m.pushTable(ctx, m.tables.Triggers, triggerRows, report); err != nil {
		return report, err
	}

	zap.L().Info("airtable push finished",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

type row struct {
	id     string
	fields map[string]any
}

func (m *Mirror) pushTable(ctx context.Context, table string, rows []row, report *Report) error {
	remote, err := m.client.ListRecords(ctx, table, airtable.ListOptions{Fields: []string{externalIDField}})
	if err != nil {
		return eris.Wrapf(err, "sync: list remote %s", table)
	}
	byExternalID := make(map[string]string, len(remote))
	for _, r := range remote {
		if id, ok := r.Fields[externalIDField].(string); ok && id != "" {
			byExternalID[id] = r.ID
		}
	}

	var creates []map[string]any
	for _, r := range rows {
		recordID, exists := byExternalID[r.id]
		if !exists {
			creates = append(creates, r.fields)
			continue
		}
		if _, err := m.client.UpdateRecord(ctx, table, recordID, r.fields); err != nil {
			report.Failed++
			zap.L().Warn("airtable update failed",
				zap.String("table", table),
				zap.String("external_id", r.id),
				zap.Error(err),
			)
			continue
		}
		report.Updated++
	}

	if len(creates) > 0 {
		created, err := m.client.CreateRecords(ctx, table, creates)
		report.Created += len(created)
		if err != nil {
			report.Failed += len(creates) - len(created)
			return eris.Wrapf(err, "sync: create in %s", table)
		}
	}
	return nil
}

func companyFields(c *model.Company) map[string]any {
	f := map[string]any{
		externalIDField:     c.ID,
		"Name":              c.Name,
		"Enrichment Status": string(c.EnrichmentStatus),
		"Fit Score":         c.FitScore,
		"Urgency Score":     c.UrgencyScore,
	}
	setStr(f, "Website", c.Website)
	setStr(f, "LinkedIn", c.LinkedIn)
	setStr(f, "Location", c.Location)
	setStr(f, "Company Size", c.CompanySize)
	setStr(f, "Funding Stage", c.FundingStage)
	setStr(f, "Latest Funding Round", c.LatestFundingRound)
	setStr(f, "Manufacturing Status", c.ManufacturingStatus)
	setStr(f, "Lead Programs", c.LeadPrograms)
	setStr(f, "Intelligence Notes", c.IntelligenceNotes)
	setStr(f, "Focus Areas", strings.Join(c.FocusAreas, ", "))
	setStr(f, "Technology Platforms", strings.Join(c.TechnologyPlatforms, ", "))
	setStr(f, "Therapeutic Areas", strings.Join(c.TherapeuticAreas, ", "))
	setStr(f, "Pipeline Stages", strings.Join(c.PipelineStages, ", "))
	if c.LastEnrichedAt != nil {
		f["Last Enriched At"] = c.LastEnrichedAt.Format("2006-01-02")
	}
	suppressWeakFacts(f, c.ConfidenceMap)
	return f
}

func leadFields(l *model.Lead, companyName string) map[string]any {
	f := map[string]any{
		externalIDField:     l.ID,
		"Name":              l.Name,
		"Enrichment Status": string(l.EnrichmentStatus),
		"Fit Score":         l.FitScore,
		"Monitor Only":      l.MonitorFlag,
	}
	setStr(f, "Company", companyName)
	setStr(f, "Title", l.Title)
	setStr(f, "Email", l.Email)
	setStr(f, "LinkedIn URL", l.LinkedInURL)
	setStr(f, "Location", l.Location)
	setStr(f, "Source", l.Source)
	setStr(f, "Persona", string(l.PersonaCategory))
	setStr(f, "Combined Priority", l.CombinedPriority)
	suppressWeakFacts(f, l.ConfidenceMap)
	return f
}

// weakFactColumns maps the record fields gated by SuppressedFields to their
// Airtable columns.
var weakFactColumns = map[string]string{
	"FundingStage":        "Funding Stage",
	"LatestFundingRound":  "Latest Funding Round",
	"PipelineStages":      "Pipeline Stages",
	"LeadPrograms":        "Lead Programs",
	"TherapeuticAreas":    "Therapeutic Areas",
	"ManufacturingStatus": "Manufacturing Status",
	"CompanySize":         "Company Size",
	"Email":               "Email",
	"Title":               "Title",
	"LinkedInURL":         "LinkedIn URL",
}

// suppressWeakFacts drops columns whose backing claim is below medium
// confidence so the team never works off facts the oracle could not support,
// and records which topics were held back.
func suppressWeakFacts(f map[string]any, confMap map[string]string) {
	fields, keys := confidence.SuppressedFields(confMap, confidence.LabelMedium)
	for _, name := range fields {
		delete(f, weakFactColumns[name])
	}
	if len(keys) > 0 {
		f["Low Confidence Facts"] = strings.Join(keys, ", ")
	}
}

func triggerFields(t *model.TriggerEvent, leadName string) map[string]any {
	f := map[string]any{
		externalIDField:    t.ID,
		"Kind":             string(t.Kind),
		"Event":            t.EventIdentity,
		"Urgency":          string(t.Urgency),
		"Status":           string(t.Status),
		"Outreach Version": t.OutreachVersion,
		"Detected At":      t.DetectedAt.Format("2006-01-02"),
	}
	setStr(f, "Lead", leadName)
	setStr(f, "Description", t.Description)
	setStr(f, "Source URL", t.SourceURL)
	setStr(f, "Outreach Subject", t.OutreachSubject)
	setStr(f, "Outreach Body", t.OutreachBody)
	if t.ValidityScore != nil {
		f["Validity Score"] = *t.ValidityScore
	}
	return f
}

func setStr(f map[string]any, key, val string) {
	if val != "" {
		f[key] = val
	}
}
