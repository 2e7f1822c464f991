package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"skillxintell/internal/database"
	"skillxintell/internal/domain/skill"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var (
	ErrSkillNotFound      = errors.New("skill not found")
	ErrSkillAlreadyExists = errors.New("skill already exists")
)

var skillColumns = []string{
	"id", "user_id", "name", "sector", "category", "proficiency",
	"verified", "verification_source", "created_at", "updated_at",
}

type SkillRepository interface {
	Create(ctx context.Context, s skill.Skill) (skill.Skill, error)
	GetByID(ctx context.Context, id uuid.UUID) (skill.Skill, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]skill.Skill, error)
	Update(ctx context.Context, s skill.Skill) (skill.Skill, error)
	MarkVerified(ctx context.Context, id uuid.UUID, source string) error
}

type PostgresSkillRepository struct {
	db database.DB
}

func NewPostgresSkillRepository(db database.DB) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

func (r *PostgresSkillRepository) Create(ctx context.Context, s skill.Skill) (skill.Skill, error) {
	query, args, err := psql.Insert("skills").
		Columns("id", "user_id", "name", "sector", "category", "proficiency").
		Values(s.ID, s.UserID, s.Name, string(s.Sector), s.Category, s.Proficiency).
		Suffix("RETURNING " + strings.Join(skillColumns, ", ")).
		ToSql()
	if err != nil {
		return skill.Skill{}, fmt.Errorf("building insert query: %w", err)
	}

	created, err := scanSkill(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if IsUniqueViolation(err) {
			return skill.Skill{}, ErrSkillAlreadyExists
		}
		return skill.Skill{}, err
	}
	return created, nil
}

func (r *PostgresSkillRepository) GetByID(ctx context.Context, id uuid.UUID) (skill.Skill, error) {
	return getSkill(ctx, r.db, id, false)
}

func (r *PostgresSkillRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]skill.Skill, error) {
	query, args, err := psql.Select(skillColumns...).
		From("skills").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.Skill, 0)
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the owner-editable fields. Verification fields are never
// touched here.
func (r *PostgresSkillRepository) Update(ctx context.Context, s skill.Skill) (skill.Skill, error) {
	query, args, err := psql.Update("skills").
		Set("name", s.Name).
		Set("sector", string(s.Sector)).
		Set("category", s.Category).
		Set("proficiency", s.Proficiency).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID, "user_id": s.UserID}).
		Suffix("RETURNING " + strings.Join(skillColumns, ", ")).
		ToSql()
	if err != nil {
		return skill.Skill{}, fmt.Errorf("building update query: %w", err)
	}

	updated, err := scanSkill(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return skill.Skill{}, ErrSkillNotFound
		}
		if IsUniqueViolation(err) {
			return skill.Skill{}, ErrSkillAlreadyExists
		}
		return skill.Skill{}, err
	}
	return updated, nil
}

func (r *PostgresSkillRepository) MarkVerified(ctx context.Context, id uuid.UUID, source string) error {
	return markSkillVerified(ctx, r.db, id, source)
}

func getSkill(ctx context.Context, q database.Querier, id uuid.UUID, forUpdate bool) (skill.Skill, error) {
	b := psql.Select(skillColumns...).
		From("skills").
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return skill.Skill{}, fmt.Errorf("building select query: %w", err)
	}

	s, err := scanSkill(q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return skill.Skill{}, ErrSkillNotFound
		}
		return skill.Skill{}, err
	}
	return s, nil
}

func markSkillVerified(ctx context.Context, q database.Querier, id uuid.UUID, source string) error {
	query, args, err := psql.Update("skills").
		Set("verified", true).
		Set("verification_source", source).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}

	affected, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSkillNotFound
	}
	return nil
}

func scanSkill(row database.Row) (skill.Skill, error) {
	var s skill.Skill
	var sector string
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &sector, &s.Category, &s.Proficiency,
		&s.Verified, &s.VerificationSource, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return skill.Skill{}, err
	}
	s.Sector = skill.Sector(sector)
	return s, nil
}
