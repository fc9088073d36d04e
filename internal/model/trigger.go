package model

import (
	"time"
)

// TriggerKind classifies the event that makes a lead worth contacting now.
type TriggerKind string

const (
	TriggerFunding              TriggerKind = "FUNDING"
	TriggerPromotion            TriggerKind = "PROMOTION"
	TriggerJobChange            TriggerKind = "JOB_CHANGE"
	TriggerSpeaking             TriggerKind = "SPEAKING"
	TriggerConferenceAttendance TriggerKind = "CONFERENCE_ATTENDANCE"
	TriggerHiring               TriggerKind = "HIRING"
	TriggerPipeline             TriggerKind = "PIPELINE"
	TriggerPartnership          TriggerKind = "PARTNERSHIP"
	TriggerAward                TriggerKind = "AWARD"
	TriggerPainPoint            TriggerKind = "PAIN_POINT"
	TriggerRoadshow             TriggerKind = "ROADSHOW"
	TriggerOther                TriggerKind = "OTHER"
)

// TriggerUrgency ranks how quickly outreach should follow the event.
type TriggerUrgency string

const (
	UrgencyHigh   TriggerUrgency = "HIGH"
	UrgencyMedium TriggerUrgency = "MEDIUM"
	UrgencyLow    TriggerUrgency = "LOW"
)

// TriggerStatus tracks a trigger through the outreach workflow. Only the
// New -> Notified transition is automated; the rest are operator moves.
type TriggerStatus string

const (
	TriggerStatusNew        TriggerStatus = "New"
	TriggerStatusNotified   TriggerStatus = "Notified"
	TriggerStatusInProgress TriggerStatus = "In Progress"
	TriggerStatusCompleted  TriggerStatus = "Completed"
)

// DefaultOutreachVersionCap bounds how many times generated outreach for a
// single trigger may be regenerated.
const DefaultOutreachVersionCap = 10

// TriggerEvent records one reason-to-reach-out tied to a lead. EventIdentity
// is the free-text dedup key; two triggers for the same lead and kind whose
// identities contain one another are considered the same event.
type TriggerEvent struct {
	ID        string `json:"id"`
	LeadID    string `json:"lead_id"`
	CompanyID string `json:"company_id,omitempty"`

	Kind          TriggerKind    `json:"kind"`
	EventIdentity string         `json:"event_identity"`
	Description   string         `json:"description,omitempty"`
	SourceURL     string         `json:"source_url,omitempty"`
	Urgency       TriggerUrgency `json:"urgency"`
	Status        TriggerStatus  `json:"status"`

	// Generated outreach content. The engine stores and gates these but never
	// interprets them.
	OutreachSubject string `json:"outreach_subject,omitempty"`
	OutreachBody    string `json:"outreach_body,omitempty"`
	ValidityScore   *int   `json:"validity_score,omitempty"`
	OutreachVersion int    `json:"outreach_version"`

	DetectedAt time.Time `json:"detected_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
