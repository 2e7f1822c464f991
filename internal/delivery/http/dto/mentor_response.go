package dto

import (
	"skillxintell/internal/domain/mentor"

	"github.com/google/uuid"
)

type MentorResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Sectors  []string  `json:"sectors"`
	Bio      string    `json:"bio,omitempty"`
}

type MentorListResponse struct {
	Mentors []MentorResponse `json:"mentors"`
	Count   int              `json:"count"`
}

func NewMentorListResponse(items []mentor.Mentor) MentorListResponse {
	out := make([]MentorResponse, 0, len(items))
	for _, m := range items {
		sectors := make([]string, 0, len(m.Sectors))
		for _, s := range m.Sectors {
			sectors = append(sectors, s.String())
		}
		out = append(out, MentorResponse{
			ID:       m.UserID,
			FullName: m.FullName,
			Email:    m.Email,
			Sectors:  sectors,
			Bio:      m.Bio,
		})
	}
	return MentorListResponse{Mentors: out, Count: len(out)}
}
