package usecase

import (
	"context"
	"errors"
	"strings"

	"skillxintell/internal/domain/skill"
	"skillxintell/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrSkillNotFound  = errors.New("skill not found")
	ErrSkillForbidden = errors.New("skill belongs to another user")
	ErrSkillExists    = errors.New("skill with this name already exists")
	ErrSkillLocked    = errors.New("name and sector of a verified skill cannot change")
)

type CreateSkillInput struct {
	Name        string
	Sector      string
	Category    string
	Proficiency int
}

// UpdateSkillInput carries the owner-editable fields. Nil fields are left
// unchanged.
type UpdateSkillInput struct {
	Name        *string
	Sector      *string
	Category    *string
	Proficiency *int
}

type SkillUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateSkillInput) (skill.Skill, error)
	List(ctx context.Context, userID uuid.UUID) ([]skill.Skill, error)
	Get(ctx context.Context, userID, skillID uuid.UUID) (skill.Skill, error)
	Update(ctx context.Context, userID, skillID uuid.UUID, in UpdateSkillInput) (skill.Skill, error)
}

type Skill struct {
	repo repository.SkillRepository
}

func NewSkillUsecase(repo repository.SkillRepository) *Skill {
	return &Skill{repo: repo}
}

func (u *Skill) Create(ctx context.Context, userID uuid.UUID, in CreateSkillInput) (skill.Skill, error) {
	if userID == uuid.Nil {
		return skill.Skill{}, ErrUnauthorized
	}

	name := normalizeName(in.Name)
	if name == "" {
		return skill.Skill{}, ErrInvalidInput
	}
	sector, ok := skill.ParseSector(in.Sector)
	if !ok {
		return skill.Skill{}, ErrInvalidInput
	}
	if !skill.ValidProficiency(in.Proficiency) {
		return skill.Skill{}, ErrInvalidInput
	}

	created, err := u.repo.Create(ctx, skill.Skill{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Sector:      sector,
		Category:    strings.TrimSpace(in.Category),
		Proficiency: in.Proficiency,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSkillAlreadyExists) {
			return skill.Skill{}, ErrSkillExists
		}
		return skill.Skill{}, ErrInternal
	}
	return created, nil
}

func (u *Skill) List(ctx context.Context, userID uuid.UUID) ([]skill.Skill, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	items, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *Skill) Get(ctx context.Context, userID, skillID uuid.UUID) (skill.Skill, error) {
	s, err := u.repo.GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			return skill.Skill{}, ErrSkillNotFound
		}
		return skill.Skill{}, ErrInternal
	}
	if !s.OwnedBy(userID) {
		return skill.Skill{}, ErrSkillForbidden
	}
	return s, nil
}

func (u *Skill) Update(ctx context.Context, userID, skillID uuid.UUID, in UpdateSkillInput) (skill.Skill, error) {
	current, err := u.Get(ctx, userID, skillID)
	if err != nil {
		return skill.Skill{}, err
	}

	next := current
	if in.Name != nil {
		name := normalizeName(*in.Name)
		if name == "" {
			return skill.Skill{}, ErrInvalidInput
		}
		next.Name = name
	}
	if in.Sector != nil {
		sector, ok := skill.ParseSector(*in.Sector)
		if !ok {
			return skill.Skill{}, ErrInvalidInput
		}
		next.Sector = sector
	}
	if in.Category != nil {
		next.Category = strings.TrimSpace(*in.Category)
	}
	if in.Proficiency != nil {
		if !skill.ValidProficiency(*in.Proficiency) {
			return skill.Skill{}, ErrInvalidInput
		}
		next.Proficiency = *in.Proficiency
	}

	if current.Verified && (!strings.EqualFold(next.Name, current.Name) || next.Sector != current.Sector) {
		return skill.Skill{}, ErrSkillLocked
	}

	updated, err := u.repo.Update(ctx, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSkillNotFound):
			return skill.Skill{}, ErrSkillNotFound
		case errors.Is(err, repository.ErrSkillAlreadyExists):
			return skill.Skill{}, ErrSkillExists
		}
		return skill.Skill{}, ErrInternal
	}
	return updated, nil
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
