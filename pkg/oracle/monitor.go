package oracle

import "fmt"

// TriggerFinding is one activity event reported by a surveillance call.
type TriggerFinding struct {
	Type        string `json:"type"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
	SourceURL   string `json:"source_url"`
}

// LeadActivity is the JSON shape requested from the oracle when checking a
// monitored lead for recent activity worth an outreach.
type LeadActivity struct {
	TriggerEvents []TriggerFinding `json:"trigger_events"`
	Summary       string           `json:"summary"`
}

// MonitorSystem is the system prompt for lead surveillance calls.
const MonitorSystem = `You are a business intelligence analyst for a biologics
contract manufacturer (CDMO). Search for recent public activity around named
industry contacts and report only dated, verifiable events. Never invent
events; an empty list is a valid answer.`

// MonitorPrompt builds the surveillance prompt for one monitored lead.
func MonitorPrompt(name, title, company string, daysBack int) string {
	who := fmt.Sprintf("%q", name)
	if title != "" {
		who = fmt.Sprintf("%q (%s)", name, title)
	}
	return fmt.Sprintf(`Search for activity in the last %d days involving %s at %q:
funding rounds, promotions or role changes, conference speaking or attendance,
hiring in manufacturing or CMC, pipeline advancement, manufacturing
partnerships, awards, and publicly stated manufacturing pain points.

Reply with a single JSON object, no prose outside it:
{
  "trigger_events": [
    {
      "type": "one of: FUNDING, PROMOTION, JOB_CHANGE, SPEAKING, CONFERENCE_ATTENDANCE, HIRING, PIPELINE, PARTNERSHIP, AWARD, PAIN_POINT, OTHER",
      "date": "YYYY-MM-DD",
      "description": "one sentence on what happened",
      "urgency": "HIGH, MEDIUM, or LOW",
      "source_url": ""
    }
  ],
  "summary": "one sentence, or empty when nothing was found"
}`, daysBack, who, company)
}

// ParseLeadActivity decodes a surveillance reply.
func ParseLeadActivity(text string) (*LeadActivity, error) {
	return decodeReply[LeadActivity](text)
}
