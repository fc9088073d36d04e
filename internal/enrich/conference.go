package enrich

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/icp"
	"github.com/rezon-bio/leadintel/internal/model"
	"github.com/rezon-bio/leadintel/internal/store"
	"github.com/rezon-bio/leadintel/internal/trigger"
	"github.com/rezon-bio/leadintel/pkg/oracle"
)

// Attendee is one row of a conference attendee export.
type Attendee struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// ConferenceIngest names the event the attendees came from. The event name is
// the trigger dedup identity, so re-running an export cannot double-book.
type ConferenceIngest struct {
	Event     string
	Attendees []Attendee
}

// LoadAttendees decodes an attendee export.
func LoadAttendees(r io.Reader) ([]Attendee, error) {
	var attendees []Attendee
	if err := json.NewDecoder(r).Decode(&attendees); err != nil {
		return nil, eris.Wrap(err, "enrich: decode attendees")
	}
	return attendees, nil
}

// IngestConference processes an attendee list: resolves each person against
// the store, admits unknown companies only after a pre-screen, and books one
// conference-attendance trigger per resolved lead.
func (p *Pipeline) IngestConference(ctx context.Context, in ConferenceIngest) (*Report, error) {
	if in.Event == "" {
		return nil, eris.New("enrich: conference event name is required")
	}

	report := &Report{}
	for _, a := range in.Attendees {
		report.Processed++

		if skip, reason := attendeeSkipReason(a); skip {
			report.Skipped++
			zap.L().Debug("attendee skipped",
				zap.String("name", a.Name),
				zap.String("reason", reason),
			)
			continue
		}

		created, err := p.processAttendee(ctx, a, in.Event)
		if err != nil {
			if ctx.Err() != nil {
				return report, err
			}
			report.Failed++
			zap.L().Warn("attendee processing failed",
				zap.String("name", a.Name),
				zap.String("company", a.Company),
				zap.Error(err),
			)
			continue
		}
		if created {
			report.Created++
		} else {
			report.Skipped++
		}
	}

	zap.L().Info("conference ingest finished",
		zap.String("event", in.Event),
		zap.Int("processed", report.Processed),
		zap.Int("triggers_created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// attendeeSkipReason filters export glitches: blank fields, and rows where
// the badge parser put the title in the name column.
func attendeeSkipReason(a Attendee) (bool, string) {
	name := strings.TrimSpace(a.Name)
	title := strings.TrimSpace(a.Title)
	company := strings.TrimSpace(a.Company)

	if name == "" || title == "" || company == "" {
		return true, "incomplete row"
	}
	if strings.EqualFold(name, title) {
		return true, "name equals title"
	}
	return false, ""
}

func (p *Pipeline) processAttendee(ctx context.Context, a Attendee, event string) (bool, error) {
	companyID, err := p.resolver.FindCompany(ctx, a.Company)
	if eris.Is(err, store.ErrNotFound) {
		companyID, err = p.admitCompany(ctx, a.Company)
		if err != nil {
			return false, err
		}
		if companyID == "" {
			// Screened out.
			return false, nil
		}
	} else if err != nil {
		return false, err
	}

	leadID, createdLead, err := p.resolver.FindOrCreateLead(ctx, a.Name, companyID)
	if err != nil {
		return false, err
	}

	if createdLead {
		lead, err := p.store.GetLead(ctx, leadID)
		if err != nil {
			return false, eris.Wrap(err, "enrich: reload created lead")
		}
		lead.Title = strings.TrimSpace(a.Title)
		lead.Source = "conference:" + event
		lead.PersonaCategory = icp.ClassifyPersona(lead.Title)
		if err := p.store.UpdateLead(ctx, lead); err != nil {
			return false, eris.Wrap(err, "enrich: persist attendee title")
		}
	}

	_, created, err := p.triggers.CreateOrSkip(ctx, &model.TriggerEvent{
		LeadID:        leadID,
		CompanyID:     companyID,
		Kind:          model.TriggerConferenceAttendance,
		EventIdentity: event,
		Description:   strings.TrimSpace(a.Name) + " is attending " + event,
		Urgency:       model.UrgencyHigh,
	})
	if err != nil {
		if eris.Is(err, trigger.ErrOrphan) {
			return false, nil
		}
		return false, err
	}
	return created, nil
}

// admitCompany pre-screens an unknown company before letting it into the
// store. Competitors and low-fit companies are rejected; the returned id is
// empty when the company was screened out.
func (p *Pipeline) admitCompany(ctx context.Context, name string) (string, error) {
	text, err := p.research(ctx, oracle.CompanySystem, oracle.ScreenPrompt(name), "screen_company")
	if err != nil {
		return "", eris.Wrapf(err, "enrich: screen %s", name)
	}
	screen, err := oracle.ParseScreen(text)
	if err != nil {
		return "", eris.Wrapf(err, "enrich: parse screen for %s", name)
	}

	if screen.IsCDMOCompetitor || screen.FitScore < p.cfg.ScreenMinFit {
		zap.L().Info("company screened out",
			zap.String("company", name),
			zap.Int("fit_score", screen.FitScore),
			zap.Bool("competitor", screen.IsCDMOCompetitor),
		)
		return "", nil
	}

	id, _, err := p.resolver.FindOrCreateCompany(ctx, name)
	if err != nil {
		return "", err
	}
	return id, nil
}
