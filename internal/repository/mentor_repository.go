package repository

import (
	"context"
	"errors"
	"fmt"

	"skillxintell/internal/database"
	"skillxintell/internal/domain/mentor"
	"skillxintell/internal/domain/skill"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var ErrMentorNotFound = errors.New("mentor profile not found")

type MentorRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (mentor.Profile, error)
	ListApproved(ctx context.Context, sector skill.Sector) ([]mentor.Mentor, error)
	UpsertProfile(ctx context.Context, p mentor.Profile) error
	SetApproval(ctx context.Context, userID uuid.UUID, approved bool) error
}

type PostgresMentorRepository struct {
	db database.DB
}

func NewPostgresMentorRepository(db database.DB) *PostgresMentorRepository {
	return &PostgresMentorRepository{db: db}
}

func (r *PostgresMentorRepository) GetProfile(ctx context.Context, userID uuid.UUID) (mentor.Profile, error) {
	return getMentorProfile(ctx, r.db, userID)
}

// ListApproved returns approved mentors covering sector, ordered by name.
// An empty sector lists every approved mentor.
func (r *PostgresMentorRepository) ListApproved(ctx context.Context, sector skill.Sector) ([]mentor.Mentor, error) {
	b := psql.Select("u.id", "u.full_name", "u.email", "mp.sectors", "mp.bio").
		From("mentor_profiles mp").
		Join("users u ON u.id = mp.user_id").
		Where(squirrel.Eq{"mp.is_approved": true}).
		OrderBy("u.full_name ASC", "u.id ASC")
	if sector != "" {
		b = b.Where(squirrel.Expr("? = ANY(mp.sectors)", string(sector)))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]mentor.Mentor, 0)
	for rows.Next() {
		var m mentor.Mentor
		var sectors []string
		if err := rows.Scan(&m.UserID, &m.FullName, &m.Email, &sectors, &m.Bio); err != nil {
			return nil, err
		}
		m.Sectors = toSectors(sectors)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMentorRepository) UpsertProfile(ctx context.Context, p mentor.Profile) error {
	query, args, err := psql.Insert("mentor_profiles").
		Columns("user_id", "is_approved", "sectors", "bio").
		Values(p.UserID, p.IsApproved, fromSectors(p.Sectors), p.Bio).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			is_approved = EXCLUDED.is_approved,
			sectors = EXCLUDED.sectors,
			bio = EXCLUDED.bio,
			updated_at = now()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building upsert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *PostgresMentorRepository) SetApproval(ctx context.Context, userID uuid.UUID, approved bool) error {
	query, args, err := psql.Update("mentor_profiles").
		Set("is_approved", approved).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}

	affected, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMentorNotFound
	}
	return nil
}

func getMentorProfile(ctx context.Context, q database.Querier, userID uuid.UUID) (mentor.Profile, error) {
	query, args, err := psql.Select("user_id", "is_approved", "sectors", "bio", "created_at", "updated_at").
		From("mentor_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return mentor.Profile{}, fmt.Errorf("building select query: %w", err)
	}

	var p mentor.Profile
	var sectors []string
	err = q.QueryRow(ctx, query, args...).Scan(&p.UserID, &p.IsApproved, &sectors, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return mentor.Profile{}, ErrMentorNotFound
		}
		return mentor.Profile{}, err
	}
	p.Sectors = toSectors(sectors)
	return p, nil
}

func toSectors(in []string) []skill.Sector {
	out := make([]skill.Sector, 0, len(in))
	for _, s := range in {
		out = append(out, skill.Sector(s))
	}
	return out
}

func fromSectors(in []skill.Sector) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
