package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"skillxintell/internal/database"
	"skillxintell/internal/domain/verification"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var (
	ErrRequestNotFound   = errors.New("verification request not found")
	ErrRequestForbidden  = errors.New("caller is not the reviewer of this request")
	ErrRequestNotPending = errors.New("verification request is not pending")
)

var requestColumns = []string{
	"id", "skill_id", "requester_id", "reviewer_id", "status", "message",
	"evidence_url", "evidence_title", "review_note", "reviewed_at", "created_at", "updated_at",
}

type RequestListFilter struct {
	UserID uuid.UUID
	Box    verification.Box
	Status *verification.Status
	Limit  int
	Offset int
}

type VerificationRepository interface {
	Create(ctx context.Context, req verification.Request) (verification.Request, bool, error)
	FindPending(ctx context.Context, skillID, requesterID, reviewerID uuid.UUID) (verification.Request, error)
	GetByID(ctx context.Context, id uuid.UUID) (verification.Detailed, error)
	List(ctx context.Context, f RequestListFilter) ([]verification.Detailed, int, error)
	Transition(ctx context.Context, id, reviewerID uuid.UUID, to verification.Status, note *string) (verification.Request, error)
	SetEvidenceTitle(ctx context.Context, id uuid.UUID, title string) error
}

type PostgresVerificationRepository struct {
	db database.DB
}

func NewPostgresVerificationRepository(db database.DB) *PostgresVerificationRepository {
	return &PostgresVerificationRepository{db: db}
}

// Create inserts a PENDING request. When a PENDING request already exists for
// the same skill, requester and reviewer, that request is returned and the
// boolean result is false.
func (r *PostgresVerificationRepository) Create(ctx context.Context, req verification.Request) (verification.Request, bool, error) {
	query, args, err := psql.Insert("verification_requests").
		Columns("id", "skill_id", "requester_id", "reviewer_id", "status", "message", "evidence_url").
		Values(req.ID, req.SkillID, req.RequesterID, req.ReviewerID, string(verification.StatusPending), req.Message, req.EvidenceURL).
		Suffix("ON CONFLICT (skill_id, requester_id, reviewer_id) WHERE status = 'PENDING' DO NOTHING RETURNING " + strings.Join(requestColumns, ", ")).
		ToSql()
	if err != nil {
		return verification.Request{}, false, fmt.Errorf("building insert query: %w", err)
	}

	// The conflicting PENDING row can be decided between the insert and the
	// lookup, so one more insert is attempted before giving up.
	for attempt := 0; attempt < 2; attempt++ {
		created, err := scanRequest(r.db.QueryRow(ctx, query, args...))
		if err == nil {
			return created, true, nil
		}
		if !isNoRows(err) {
			return verification.Request{}, false, err
		}

		existing, err := r.FindPending(ctx, req.SkillID, req.RequesterID, req.ReviewerID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrRequestNotFound) {
			return verification.Request{}, false, err
		}
	}
	return verification.Request{}, false, errors.New("insert verification request: pending conflict did not settle")
}

func (r *PostgresVerificationRepository) FindPending(ctx context.Context, skillID, requesterID, reviewerID uuid.UUID) (verification.Request, error) {
	query, args, err := psql.Select(requestColumns...).
		From("verification_requests").
		Where(squirrel.Eq{
			"skill_id":     skillID,
			"requester_id": requesterID,
			"reviewer_id":  reviewerID,
			"status":       string(verification.StatusPending),
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return verification.Request{}, fmt.Errorf("building select query: %w", err)
	}

	req, err := scanRequest(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return verification.Request{}, ErrRequestNotFound
		}
		return verification.Request{}, err
	}
	return req, nil
}

func (r *PostgresVerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (verification.Detailed, error) {
	query, args, err := detailedSelect().
		Where(squirrel.Eq{"vr.id": id}).
		ToSql()
	if err != nil {
		return verification.Detailed{}, fmt.Errorf("building select query: %w", err)
	}

	d, err := scanDetailed(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return verification.Detailed{}, ErrRequestNotFound
		}
		return verification.Detailed{}, err
	}
	return d, nil
}

// List returns one page of the caller's sent or received requests, newest
// first, together with the total number of matching requests.
func (r *PostgresVerificationRepository) List(ctx context.Context, f RequestListFilter) ([]verification.Detailed, int, error) {
	where := squirrel.And{}
	switch f.Box {
	case verification.BoxSent:
		where = append(where, squirrel.Eq{"vr.requester_id": f.UserID})
	case verification.BoxReceived:
		where = append(where, squirrel.Eq{"vr.reviewer_id": f.UserID})
	default:
		return nil, 0, fmt.Errorf("unknown box %q", f.Box)
	}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"vr.status": string(*f.Status)})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").
		From("verification_requests vr").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	b := detailedSelect().
		Where(where).
		OrderBy("vr.created_at DESC", "vr.id DESC")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]verification.Detailed, 0)
	for rows.Next() {
		d, err := scanDetailed(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Transition moves a PENDING request to a terminal status. The row is locked,
// the status is set with a conditional update, and on approval the skill is
// marked verified with the reviewer as source, all in one transaction.
func (r *PostgresVerificationRepository) Transition(ctx context.Context, id, reviewerID uuid.UUID, to verification.Status, note *string) (verification.Request, error) {
	if !to.Terminal() {
		return verification.Request{}, fmt.Errorf("invalid target status %q", to)
	}

	var out verification.Request
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		lockQuery, lockArgs, err := psql.Select(requestColumns...).
			From("verification_requests").
			Where(squirrel.Eq{"id": id}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("building lock query: %w", err)
		}

		current, err := scanRequest(tx.QueryRow(ctx, lockQuery, lockArgs...))
		if err != nil {
			if isNoRows(err) {
				return ErrRequestNotFound
			}
			return err
		}
		if current.ReviewerID != reviewerID {
			return ErrRequestForbidden
		}
		if !verification.CanTransition(current.Status, to) {
			return ErrRequestNotPending
		}

		updQuery, updArgs, err := psql.Update("verification_requests").
			Set("status", string(to)).
			Set("review_note", note).
			Set("reviewed_at", squirrel.Expr("now()")).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id, "status": string(verification.StatusPending)}).
			Suffix("RETURNING " + strings.Join(requestColumns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("building update query: %w", err)
		}

		updated, err := scanRequest(tx.QueryRow(ctx, updQuery, updArgs...))
		if err != nil {
			if isNoRows(err) {
				return ErrRequestNotPending
			}
			return err
		}

		if to == verification.StatusApproved {
			if err := markSkillVerified(ctx, tx, updated.SkillID, reviewerID.String()); err != nil {
				return err
			}
		}

		out = updated
		return nil
	})
	if err != nil {
		return verification.Request{}, err
	}
	return out, nil
}

func (r *PostgresVerificationRepository) SetEvidenceTitle(ctx context.Context, id uuid.UUID, title string) error {
	query, args, err := psql.Update("verification_requests").
		Set("evidence_title", title).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}

	affected, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func detailedSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(requestColumns)+4)
	for _, c := range requestColumns {
		cols = append(cols, "vr."+c)
	}
	cols = append(cols, "s.name", "s.sector", "ru.full_name", "rv.full_name")

	return psql.Select(cols...).
		From("verification_requests vr").
		Join("skills s ON s.id = vr.skill_id").
		Join("users ru ON ru.id = vr.requester_id").
		Join("users rv ON rv.id = vr.reviewer_id")
}

func scanRequest(row database.Row) (verification.Request, error) {
	var req verification.Request
	var status string
	if err := row.Scan(
		&req.ID, &req.SkillID, &req.RequesterID, &req.ReviewerID, &status, &req.Message,
		&req.EvidenceURL, &req.EvidenceTitle, &req.ReviewNote, &req.ReviewedAt, &req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return verification.Request{}, err
	}
	req.Status = verification.Status(status)
	return req, nil
}

func scanDetailed(row database.Row) (verification.Detailed, error) {
	var d verification.Detailed
	var status string
	if err := row.Scan(
		&d.ID, &d.SkillID, &d.RequesterID, &d.ReviewerID, &status, &d.Message,
		&d.EvidenceURL, &d.EvidenceTitle, &d.ReviewNote, &d.ReviewedAt, &d.CreatedAt, &d.UpdatedAt,
		&d.SkillName, &d.SkillSector, &d.RequesterName, &d.ReviewerName,
	); err != nil {
		return verification.Detailed{}, err
	}
	d.Status = verification.Status(status)
	return d, nil
}
