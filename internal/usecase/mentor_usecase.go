package usecase

import (
	"context"
	"errors"
	"strings"

	"skillxintell/internal/domain/mentor"
	"skillxintell/internal/domain/skill"
	"skillxintell/internal/domain/user"
	"skillxintell/internal/pkg/logger"
	"skillxintell/internal/repository"
)

var (
	ErrMentorUserNotFound = errors.New("no user with this email")
	ErrNotEducator        = errors.New("user is not an educator")
	ErrMentorNotFound     = errors.New("mentor profile not found")
)

type MentorUsecase interface {
	ListApproved(ctx context.Context, sector string) ([]mentor.Mentor, error)
	Approve(ctx context.Context, email string, sectors []string) (mentor.Profile, error)
	Revoke(ctx context.Context, email string) error
}

type Mentor struct {
	repo   repository.MentorRepository
	users  user.Repository
	cache  MentorCache
	logger logger.Logger
}

func NewMentorUsecase(repo repository.MentorRepository, users user.Repository, cache MentorCache, log logger.Logger) *Mentor {
	if log == nil {
		log = logger.Nop()
	}
	return &Mentor{repo: repo, users: users, cache: cache, logger: log}
}

// ListApproved returns approved mentors covering sector. Results are served
// from the cache when present; cache failures fall through to the database.
func (u *Mentor) ListApproved(ctx context.Context, sector string) ([]mentor.Mentor, error) {
	var s skill.Sector
	if strings.TrimSpace(sector) != "" {
		parsed, ok := skill.ParseSector(sector)
		if !ok {
			return nil, ErrInvalidInput
		}
		s = parsed
	}

	key := MentorsCacheKey(s)
	if u.cache != nil {
		var cached []mentor.Mentor
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			u.logger.Warn("mentor cache read failed", "key", key, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	items, err := u.repo.ListApproved(ctx, s)
	if err != nil {
		return nil, ErrInternal
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, items, 0); err != nil {
			u.logger.Warn("mentor cache write failed", "key", key, "error", err)
		}
	}
	return items, nil
}

// Approve marks the educator identified by email as an eligible reviewer.
// When sectors is empty the profile keeps its current sectors.
func (u *Mentor) Approve(ctx context.Context, email string, sectors []string) (mentor.Profile, error) {
	usr, err := u.educatorByEmail(ctx, email)
	if err != nil {
		return mentor.Profile{}, err
	}

	parsed := make([]skill.Sector, 0, len(sectors))
	for _, raw := range sectors {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		s, ok := skill.ParseSector(raw)
		if !ok {
			return mentor.Profile{}, ErrInvalidInput
		}
		if !containsSector(parsed, s) {
			parsed = append(parsed, s)
		}
	}

	profile, err := u.repo.GetProfile(ctx, usr.ID)
	if err != nil && !errors.Is(err, repository.ErrMentorNotFound) {
		return mentor.Profile{}, ErrInternal
	}
	profile.UserID = usr.ID
	profile.IsApproved = true
	if len(parsed) > 0 {
		profile.Sectors = parsed
	}
	if len(profile.Sectors) == 0 {
		return mentor.Profile{}, ErrInvalidInput
	}

	if err := u.repo.UpsertProfile(ctx, profile); err != nil {
		return mentor.Profile{}, ErrInternal
	}
	u.invalidate(ctx)

	u.logger.Info("mentor approved", "user_id", usr.ID, "sectors", profile.Sectors)
	return profile, nil
}

func (u *Mentor) Revoke(ctx context.Context, email string) error {
	usr, err := u.educatorByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := u.repo.SetApproval(ctx, usr.ID, false); err != nil {
		if errors.Is(err, repository.ErrMentorNotFound) {
			return ErrMentorNotFound
		}
		return ErrInternal
	}
	u.invalidate(ctx)

	u.logger.Info("mentor approval revoked", "user_id", usr.ID)
	return nil
}

func (u *Mentor) educatorByEmail(ctx context.Context, email string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return user.User{}, ErrInvalidInput
	}
	usr, err := u.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrMentorUserNotFound
		}
		return user.User{}, ErrInternal
	}
	if usr.Role != user.RoleEducator {
		return user.User{}, ErrNotEducator
	}
	return usr, nil
}

func (u *Mentor) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.DeleteByPattern(ctx, MentorsCachePattern()); err != nil {
		u.logger.Warn("mentor cache invalidation failed", "error", err)
	}
}

func containsSector(list []skill.Sector, s skill.Sector) bool {
	for _, it := range list {
		if it == s {
			return true
		}
	}
	return false
}
