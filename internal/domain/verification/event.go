package verification

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventRequestCreated  EventType = "verification.request.created"
	EventRequestApproved EventType = "verification.request.approved"
	EventRequestRejected EventType = "verification.request.rejected"
)

// EventTypeFor returns the event emitted when a request reaches status s.
func EventTypeFor(s Status) EventType {
	switch s {
	case StatusApproved:
		return EventRequestApproved
	case StatusRejected:
		return EventRequestRejected
	default:
		return EventRequestCreated
	}
}

// Event is published after a request is created or decided. Addresses are
// kept out of the serialized form.
type Event struct {
	Type        EventType `json:"type"`
	RequestID   uuid.UUID `json:"request_id"`
	SkillID     uuid.UUID `json:"skill_id"`
	SkillName   string    `json:"skill_name"`
	RequesterID uuid.UUID `json:"requester_id"`
	ReviewerID  uuid.UUID `json:"reviewer_id"`
	Status      Status    `json:"status"`
	Note        *string   `json:"note,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`

	RequesterName  string `json:"-"`
	RequesterEmail string `json:"-"`
	ReviewerName   string `json:"-"`
	ReviewerEmail  string `json:"-"`
}

// Recipient is the party who did not cause the event: the reviewer for a new
// request, the requester for a decision.
func (e Event) Recipient() uuid.UUID {
	if e.Type == EventRequestCreated {
		return e.ReviewerID
	}
	return e.RequesterID
}
