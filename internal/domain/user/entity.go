package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleEmployee Role = "EMPLOYEE"
	RoleEducator Role = "EDUCATOR"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts any casing and reports whether s names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleEmployee, RoleEducator, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// CanRequestVerification reports whether users of this role may ask a mentor
// to verify one of their skills.
func (r Role) CanRequestVerification() bool {
	return r == RoleStudent || r == RoleEmployee
}

// SelfAssignable reports whether the role may be chosen at registration.
func (r Role) SelfAssignable() bool {
	return r == RoleStudent || r == RoleEmployee || r == RoleEducator
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
