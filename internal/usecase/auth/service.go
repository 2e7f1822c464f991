package auth

import (
	"context"
	"errors"
	"strings"

	"skillxintell/internal/domain/mentor"
	"skillxintell/internal/domain/skill"
	"skillxintell/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrRoleNotAllowed         = errors.New("role cannot be self-assigned")
	ErrInternal               = errors.New("internal error")
)

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
	// Sectors and Bio apply to EDUCATOR accounts only and seed an
	// unapproved mentor profile.
	Sectors []string
	Bio     string
}

type LoginInput struct {
	Email    string
	Password string
}

// MentorProfiles is the slice of the mentor store registration needs.
type MentorProfiles interface {
	UpsertProfile(ctx context.Context, p mentor.Profile) error
}

type Service struct {
	users   user.Repository
	mentors MentorProfiles
}

func NewService(users user.Repository, mentors MentorProfiles) *Service {
	return &Service{users: users, mentors: mentors}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return user.User{}, ErrInvalidInput
	}
	if !isValidPassword(in.Password) {
		return user.User{}, ErrInvalidInput
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return user.User{}, ErrInvalidInput
	}

	role := user.RoleStudent
	if strings.TrimSpace(in.Role) != "" {
		r, ok := user.ParseRole(in.Role)
		if !ok {
			return user.User{}, ErrInvalidInput
		}
		if !r.SelfAssignable() {
			return user.User{}, ErrRoleNotAllowed
		}
		role = r
	}

	sectors, ok := parseSectors(in.Sectors)
	if !ok {
		return user.User{}, ErrInvalidInput
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, ErrInternal
	}
	if exists {
		return user.User{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, ErrInternal
	}

	u := user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         role,
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		exists, exErr := s.users.ExistsByEmail(ctx, email)
		if exErr == nil && exists {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}

	if role == user.RoleEducator && s.mentors != nil {
		err := s.mentors.UpsertProfile(ctx, mentor.Profile{
			UserID:     u.ID,
			IsApproved: false,
			Sectors:    sectors,
			Bio:        strings.TrimSpace(in.Bio),
		})
		if err != nil {
			// An educator account is never kept without its profile.
			_ = s.users.DeleteUser(ctx, u.ID)
			return user.User{}, ErrInternal
		}
	}

	created, err := s.users.GetUserByID(ctx, u.ID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(created), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return user.User{}, ErrInvalidCredentials
	}
	if in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return sanitizeUser(u), nil
}

func parseSectors(in []string) ([]skill.Sector, bool) {
	out := make([]skill.Sector, 0, len(in))
	seen := map[skill.Sector]struct{}{}
	for _, raw := range in {
		s, ok := skill.ParseSector(raw)
		if !ok {
			return nil, false
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, true
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(email)
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= 8
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
