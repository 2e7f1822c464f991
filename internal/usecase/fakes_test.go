package usecase

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"skillxintell/internal/domain/mentor"
	"skillxintell/internal/domain/skill"
	"skillxintell/internal/domain/user"
	"skillxintell/internal/repository"

	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newFakeUsers(us ...user.User) *fakeUsers {
	f := &fakeUsers{users: map[uuid.UUID]user.User{}}
	for _, u := range us {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, u user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, u user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakeSkills struct {
	skills map[uuid.UUID]skill.Skill
}

func newFakeSkills(ss ...skill.Skill) *fakeSkills {
	f := &fakeSkills{skills: map[uuid.UUID]skill.Skill{}}
	for _, s := range ss {
		f.skills[s.ID] = s
	}
	return f
}

func (f *fakeSkills) Create(_ context.Context, s skill.Skill) (skill.Skill, error) {
	for _, it := range f.skills {
		if it.UserID == s.UserID && strings.EqualFold(it.Name, s.Name) {
			return skill.Skill{}, repository.ErrSkillAlreadyExists
		}
	}
	f.skills[s.ID] = s
	return s, nil
}

func (f *fakeSkills) GetByID(_ context.Context, id uuid.UUID) (skill.Skill, error) {
	s, ok := f.skills[id]
	if !ok {
		return skill.Skill{}, repository.ErrSkillNotFound
	}
	return s, nil
}

func (f *fakeSkills) ListByUser(_ context.Context, userID uuid.UUID) ([]skill.Skill, error) {
	out := make([]skill.Skill, 0)
	for _, s := range f.skills {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSkills) Update(_ context.Context, s skill.Skill) (skill.Skill, error) {
	cur, ok := f.skills[s.ID]
	if !ok || cur.UserID != s.UserID {
		return skill.Skill{}, repository.ErrSkillNotFound
	}
	for _, it := range f.skills {
		if it.ID != s.ID && it.UserID == s.UserID && strings.EqualFold(it.Name, s.Name) {
			return skill.Skill{}, repository.ErrSkillAlreadyExists
		}
	}
	s.Verified = cur.Verified
	s.VerificationSource = cur.VerificationSource
	f.skills[s.ID] = s
	return s, nil
}

func (f *fakeSkills) MarkVerified(_ context.Context, id uuid.UUID, source string) error {
	s, ok := f.skills[id]
	if !ok {
		return repository.ErrSkillNotFound
	}
	s.Verified = true
	s.VerificationSource = &source
	f.skills[id] = s
	return nil
}

type fakeMentors struct {
	profiles   map[uuid.UUID]mentor.Profile
	users      *fakeUsers
	listCalls  int
	lastSector skill.Sector
}

func (f *fakeMentors) GetProfile(_ context.Context, userID uuid.UUID) (mentor.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return mentor.Profile{}, repository.ErrMentorNotFound
	}
	return p, nil
}

func (f *fakeMentors) ListApproved(ctx context.Context, sector skill.Sector) ([]mentor.Mentor, error) {
	f.listCalls++
	f.lastSector = sector
	out := make([]mentor.Mentor, 0)
	for _, p := range f.profiles {
		if !p.IsApproved || (sector != "" && !p.Covers(sector)) {
			continue
		}
		u, _ := f.users.GetUserByID(ctx, p.UserID)
		out = append(out, mentor.Mentor{UserID: p.UserID, FullName: u.FullName, Email: u.Email, Sectors: p.Sectors})
	}
	return out, nil
}

func (f *fakeMentors) UpsertProfile(_ context.Context, p mentor.Profile) error {
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeMentors) SetApproval(_ context.Context, userID uuid.UUID, approved bool) error {
	p, ok := f.profiles[userID]
	if !ok {
		return repository.ErrMentorNotFound
	}
	p.IsApproved = approved
	f.profiles[userID] = p
	return nil
}

// memCache stores values as-is; GetJSON copies through the typed pointer
// used by the mentor use case.
type memCache struct {
	items   map[string][]mentor.Mentor
	deletes []string
}

func newMemCache() *memCache { return &memCache{items: map[string][]mentor.Mentor{}} }

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	v, ok := c.items[key]
	if !ok {
		return false, nil
	}
	*(out.(*[]mentor.Mentor)) = v
	return true, nil
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.items[key] = value.([]mentor.Mentor)
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.deletes = append(c.deletes, pattern)
	for k := range c.items {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.items, k)
		}
	}
	return nil
}
