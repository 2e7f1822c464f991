package dto

import (
	"time"

	"skillxintell/internal/domain/skill"

	"github.com/google/uuid"
)

type SkillResponse struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Name               string    `json:"name"`
	Sector             string    `json:"sector"`
	Category           string    `json:"category"`
	Proficiency        int       `json:"proficiency"`
	Verified           bool      `json:"verified"`
	VerificationSource *string   `json:"verification_source"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewSkillResponse(s skill.Skill) SkillResponse {
	return SkillResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		Name:               s.Name,
		Sector:             s.Sector.String(),
		Category:           s.Category,
		Proficiency:        s.Proficiency,
		Verified:           s.Verified,
		VerificationSource: s.VerificationSource,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

type SkillEnvelope struct {
	Skill SkillResponse `json:"skill"`
}

type SkillListResponse struct {
	Skills []SkillResponse `json:"skills"`
	Count  int             `json:"count"`
}

func NewSkillListResponse(items []skill.Skill) SkillListResponse {
	out := make([]SkillResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewSkillResponse(it))
	}
	return SkillListResponse{Skills: out, Count: len(out)}
}
