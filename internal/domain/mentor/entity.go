package mentor

import (
	"time"

	"skillxintell/internal/domain/skill"

	"github.com/google/uuid"
)

// Profile belongs to an EDUCATOR user. Only approved profiles may review.
type Profile struct {
	UserID     uuid.UUID
	IsApproved bool
	Sectors    []skill.Sector
	Bio        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Profile) Covers(s skill.Sector) bool {
	for _, it := range p.Sectors {
		if it == s {
			return true
		}
	}
	return false
}

// CanReview reports whether the profile may review a skill in sector s.
func (p Profile) CanReview(s skill.Sector) bool {
	return p.IsApproved && p.Covers(s)
}

// Mentor is the directory view of an approved reviewer.
type Mentor struct {
	UserID   uuid.UUID      `json:"user_id"`
	FullName string         `json:"full_name"`
	Email    string         `json:"email"`
	Sectors  []skill.Sector `json:"sectors"`
	Bio      string         `json:"bio"`
}
