package skill

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Sector string

const (
	SectorHealthcare  Sector = "HEALTHCARE"
	SectorAgriculture Sector = "AGRICULTURE"
	SectorUrban       Sector = "URBAN"
)

var Sectors = []Sector{SectorHealthcare, SectorAgriculture, SectorUrban}

func ParseSector(s string) (Sector, bool) {
	v := Sector(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Sectors {
		if v == known {
			return v, true
		}
	}
	return "", false
}

func (s Sector) String() string { return string(s) }

const (
	MinProficiency = 1
	MaxProficiency = 5
)

func ValidProficiency(v int) bool {
	return v >= MinProficiency && v <= MaxProficiency
}

// Skill is a claimed skill owned by exactly one user. Verified and
// VerificationSource change only through an approved verification request.
type Skill struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Name               string
	Sector             Sector
	Category           string
	Proficiency        int
	Verified           bool
	VerificationSource *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s Skill) OwnedBy(userID uuid.UUID) bool {
	return s.UserID != uuid.Nil && s.UserID == userID
}
