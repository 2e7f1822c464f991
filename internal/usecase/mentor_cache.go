package usecase

import (
	"context"
	"strings"
	"time"

	"skillxintell/internal/domain/skill"
)

const mentorsCachePrefix = "mentors:"

type MentorCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// MentorsCacheKey returns the directory cache key for a sector. The empty
// sector stands for the unfiltered directory.
func MentorsCacheKey(sector skill.Sector) string {
	if sector == "" {
		return mentorsCachePrefix + "all"
	}
	return mentorsCachePrefix + strings.ToLower(string(sector))
}

func MentorsCachePattern() string {
	return mentorsCachePrefix + "*"
}
