package verification

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func ParseStatus(s string) (Status, bool) {
	v := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case StatusPending, StatusApproved, StatusRejected:
		return v, true
	}
	return "", false
}

func (s Status) String() string { return string(s) }

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether a request in state from may move to to.
// PENDING is the only non-terminal state and the only valid source.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to.Terminal()
}

type Request struct {
	ID            uuid.UUID
	SkillID       uuid.UUID
	RequesterID   uuid.UUID
	ReviewerID    uuid.UUID
	Status        Status
	Message       string
	EvidenceURL   *string
	EvidenceTitle *string
	ReviewNote    *string
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r Request) IsParticipant(userID uuid.UUID) bool {
	return userID != uuid.Nil && (r.RequesterID == userID || r.ReviewerID == userID)
}

// Box selects which side of a request the caller is listing.
type Box string

const (
	BoxSent     Box = "sent"
	BoxReceived Box = "received"
)

// Detailed is a request joined with the skill and party names shown in
// inbox listings.
type Detailed struct {
	Request

	SkillName     string
	SkillSector   string
	RequesterName string
	ReviewerName  string
}
