package dto

import (
	"time"

	"skillxintell/internal/domain/verification"

	"github.com/google/uuid"
)

type RequestResponse struct {
	ID            uuid.UUID  `json:"id"`
	SkillID       uuid.UUID  `json:"skill_id"`
	RequesterID   uuid.UUID  `json:"requester_id"`
	ReviewerID    uuid.UUID  `json:"reviewer_id"`
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	EvidenceURL   *string    `json:"evidence_url"`
	EvidenceTitle *string    `json:"evidence_title"`
	ReviewNote    *string    `json:"review_note"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	SkillName     string `json:"skill_name,omitempty"`
	SkillSector   string `json:"skill_sector,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	ReviewerName  string `json:"reviewer_name,omitempty"`
}

func NewRequestResponse(r verification.Request) RequestResponse {
	return RequestResponse{
		ID:            r.ID,
		SkillID:       r.SkillID,
		RequesterID:   r.RequesterID,
		ReviewerID:    r.ReviewerID,
		Status:        r.Status.String(),
		Message:       r.Message,
		EvidenceURL:   r.EvidenceURL,
		EvidenceTitle: r.EvidenceTitle,
		ReviewNote:    r.ReviewNote,
		ReviewedAt:    r.ReviewedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func NewDetailedRequestResponse(d verification.Detailed) RequestResponse {
	res := NewRequestResponse(d.Request)
	res.SkillName = d.SkillName
	res.SkillSector = d.SkillSector
	res.RequesterName = d.RequesterName
	res.ReviewerName = d.ReviewerName
	return res
}

type RequestEnvelope struct {
	Request RequestResponse `json:"request"`
	Created *bool           `json:"created,omitempty"`
}

type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Count    int               `json:"count"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

func NewRequestListResponse(items []verification.Detailed, count, limit, offset int) RequestListResponse {
	out := make([]RequestResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewDetailedRequestResponse(it))
	}
	return RequestListResponse{Requests: out, Count: count, Limit: limit, Offset: offset}
}
