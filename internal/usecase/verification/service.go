package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"skillxintell/internal/domain/mentor"
	"skillxintell/internal/domain/skill"
	"skillxintell/internal/domain/user"
	domain "skillxintell/internal/domain/verification"
	"skillxintell/internal/evidence"
	"skillxintell/internal/pkg/logger"
	"skillxintell/internal/pkg/metrics"
	"skillxintell/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSkillNotFound    = errors.New("skill not found")
	ErrReviewerNotFound = errors.New("reviewer not found")
	ErrRequestNotFound  = errors.New("verification request not found")

	ErrNotSkillOwner      = errors.New("only the skill owner can request verification")
	ErrReviewerIneligible = errors.New("reviewer is not an approved mentor for this sector")
	ErrRoleCannotRequest  = errors.New("role cannot request verification")
	ErrNotReviewer        = errors.New("only the assigned reviewer can decide this request")
	ErrNotParticipant     = errors.New("not a participant of this request")

	ErrSkillAlreadyVerified = errors.New("skill is already verified")
	ErrRequestNotPending    = errors.New("verification request is no longer pending")

	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("status must be APPROVED or REJECTED")
	ErrInternal      = errors.New("internal error")
)

const (
	DefaultLimit     = 20
	MaxLimit         = 50
	MaxMessageLength = 2000

	notifyTimeout = 10 * time.Second
)

type SkillReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (skill.Skill, error)
}

type MentorReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (mentor.Profile, error)
}

type UserReader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

// EvidenceQueue schedules a background preview of an evidence link.
type EvidenceQueue interface {
	Enqueue(requestID uuid.UUID, rawURL string) bool
}

// Notifier delivers workflow events to one channel. Delivery failures are
// logged by the service and never fail the operation that produced them.
type Notifier interface {
	Notify(ctx context.Context, ev domain.Event) error
}

// Caller is the authenticated identity an operation runs as.
type Caller struct {
	UserID uuid.UUID
	Role   user.Role
}

type CreateInput struct {
	SkillID     uuid.UUID
	ReviewerID  uuid.UUID
	Message     string
	EvidenceURL *string
}

type TransitionInput struct {
	Status string
	Note   *string
}

type ListInput struct {
	Box    string
	Status string
	Limit  int
	Offset int
}

type ListResult struct {
	Requests []domain.Detailed
	Count    int
	Limit    int
	Offset   int
}

type Deps struct {
	Requests  repository.VerificationRepository
	Skills    SkillReader
	Mentors   MentorReader
	Users     UserReader
	Evidence  EvidenceQueue
	Notifiers []Notifier
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

type Service struct {
	requests  repository.VerificationRepository
	skills    SkillReader
	mentors   MentorReader
	users     UserReader
	evidence  EvidenceQueue
	notifiers []Notifier
	metrics   *metrics.Metrics
	logger    logger.Logger

	now func() time.Time
	wg  sync.WaitGroup
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		requests:  d.Requests,
		skills:    d.Skills,
		mentors:   d.Mentors,
		users:     d.Users,
		evidence:  d.Evidence,
		notifiers: d.Notifiers,
		metrics:   d.Metrics,
		logger:    log,
		now:       time.Now,
	}
}

// Create asks reviewer to verify one of the caller's skills. When a PENDING
// request already exists for the same skill and reviewer it is returned
// unchanged and created is false.
func (s *Service) Create(ctx context.Context, caller Caller, in CreateInput) (domain.Request, bool, error) {
	if !caller.Role.CanRequestVerification() {
		return domain.Request{}, false, ErrRoleCannotRequest
	}
	if in.SkillID == uuid.Nil || in.ReviewerID == uuid.Nil {
		return domain.Request{}, false, ErrInvalidInput
	}

	message := strings.TrimSpace(in.Message)
	if len(message) > MaxMessageLength {
		return domain.Request{}, false, ErrInvalidInput
	}
	evidenceURL, err := normalizeEvidenceURL(in.EvidenceURL)
	if err != nil {
		return domain.Request{}, false, err
	}

	sk, err := s.skills.GetByID(ctx, in.SkillID)
	if err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			return domain.Request{}, false, ErrSkillNotFound
		}
		return domain.Request{}, false, s.internal("load skill", err)
	}
	if !sk.OwnedBy(caller.UserID) {
		return domain.Request{}, false, ErrNotSkillOwner
	}
	if sk.Verified {
		return domain.Request{}, false, ErrSkillAlreadyVerified
	}

	if in.ReviewerID == caller.UserID {
		return domain.Request{}, false, ErrReviewerIneligible
	}
	if _, err := s.users.GetUserByID(ctx, in.ReviewerID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return domain.Request{}, false, ErrReviewerNotFound
		}
		return domain.Request{}, false, s.internal("load reviewer", err)
	}
	profile, err := s.mentors.GetProfile(ctx, in.ReviewerID)
	if err != nil {
		if errors.Is(err, repository.ErrMentorNotFound) {
			return domain.Request{}, false, ErrReviewerIneligible
		}
		return domain.Request{}, false, s.internal("load mentor profile", err)
	}
	if !profile.CanReview(sk.Sector) {
		return domain.Request{}, false, ErrReviewerIneligible
	}

	req, created, err := s.requests.Create(ctx, domain.Request{
		ID:          uuid.New(),
		SkillID:     sk.ID,
		RequesterID: caller.UserID,
		ReviewerID:  in.ReviewerID,
		Status:      domain.StatusPending,
		Message:     message,
		EvidenceURL: evidenceURL,
	})
	if err != nil {
		return domain.Request{}, false, s.internal("create request", err)
	}
	s.metrics.RequestCreated(created)

	if created {
		s.logger.Info("verification request created",
			"request_id", req.ID,
			"skill_id", req.SkillID,
			"requester_id", req.RequesterID,
			"reviewer_id", req.ReviewerID,
		)
		if req.EvidenceURL != nil && s.evidence != nil {
			s.evidence.Enqueue(req.ID, *req.EvidenceURL)
		}
		s.publish(ctx, req, sk.Name)
	}
	return req, created, nil
}

// Transition records the reviewer's decision on a PENDING request.
func (s *Service) Transition(ctx context.Context, caller Caller, requestID uuid.UUID, in TransitionInput) (domain.Request, error) {
	to, ok := domain.ParseStatus(in.Status)
	if !ok || !to.Terminal() {
		return domain.Request{}, ErrInvalidStatus
	}
	note := trimNote(in.Note)
	if note != nil && len(*note) > MaxMessageLength {
		return domain.Request{}, ErrInvalidInput
	}

	req, err := s.requests.Transition(ctx, requestID, caller.UserID, to, note)
	s.metrics.Transition(to.String(), err == nil)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			return domain.Request{}, ErrRequestNotFound
		case errors.Is(err, repository.ErrRequestForbidden):
			return domain.Request{}, ErrNotReviewer
		case errors.Is(err, repository.ErrRequestNotPending):
			return domain.Request{}, ErrRequestNotPending
		case errors.Is(err, repository.ErrSkillNotFound):
			return domain.Request{}, ErrSkillNotFound
		}
		return domain.Request{}, s.internal("transition request", err)
	}

	s.logger.Info("verification request decided",
		"request_id", req.ID,
		"status", req.Status,
		"reviewer_id", req.ReviewerID,
	)
	s.publish(ctx, req, "")
	return req, nil
}

func (s *Service) List(ctx context.Context, caller Caller, in ListInput) (ListResult, error) {
	box := domain.Box(strings.ToLower(strings.TrimSpace(in.Box)))
	if box != domain.BoxSent && box != domain.BoxReceived {
		return ListResult{}, ErrInvalidInput
	}
	if in.Offset < 0 || in.Limit < 0 {
		return ListResult{}, ErrInvalidInput
	}

	var status *domain.Status
	if strings.TrimSpace(in.Status) != "" {
		st, ok := domain.ParseStatus(in.Status)
		if !ok {
			return ListResult{}, ErrInvalidStatus
		}
		status = &st
	}

	limit := in.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	items, total, err := s.requests.List(ctx, repository.RequestListFilter{
		UserID: caller.UserID,
		Box:    box,
		Status: status,
		Limit:  limit,
		Offset: in.Offset,
	})
	if err != nil {
		return ListResult{}, s.internal("list requests", err)
	}
	return ListResult{Requests: items, Count: total, Limit: limit, Offset: in.Offset}, nil
}

func (s *Service) Get(ctx context.Context, caller Caller, requestID uuid.UUID) (domain.Detailed, error) {
	d, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return domain.Detailed{}, ErrRequestNotFound
		}
		return domain.Detailed{}, s.internal("load request", err)
	}
	if !d.IsParticipant(caller.UserID) {
		return domain.Detailed{}, ErrNotParticipant
	}
	return d, nil
}

// Wait blocks until in-flight notifications have been delivered.
func (s *Service) Wait() {
	s.wg.Wait()
}

// publish fans the event for req out to every notifier in the background.
// It is only called after the owning write has committed.
func (s *Service) publish(ctx context.Context, req domain.Request, skillName string) {
	if len(s.notifiers) == 0 {
		return
	}

	ev := domain.Event{
		Type:        domain.EventTypeFor(req.Status),
		RequestID:   req.ID,
		SkillID:     req.SkillID,
		SkillName:   skillName,
		RequesterID: req.RequesterID,
		ReviewerID:  req.ReviewerID,
		Status:      req.Status,
		Note:        req.ReviewNote,
		OccurredAt:  s.now().UTC(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		s.enrich(nctx, &ev)
		for _, n := range s.notifiers {
			if n == nil {
				continue
			}
			if err := n.Notify(nctx, ev); err != nil {
				s.logger.Warn("notification failed",
					"notifier", fmt.Sprintf("%T", n),
					"event", ev.Type,
					"request_id", ev.RequestID,
					"error", err,
				)
			}
		}
	}()
}

// enrich fills names and addresses used by human-facing channels. Lookup
// failures leave the fields empty.
func (s *Service) enrich(ctx context.Context, ev *domain.Event) {
	if ev.SkillName == "" {
		if sk, err := s.skills.GetByID(ctx, ev.SkillID); err == nil {
			ev.SkillName = sk.Name
		}
	}
	if u, err := s.users.GetUserByID(ctx, ev.RequesterID); err == nil {
		ev.RequesterName = u.FullName
		ev.RequesterEmail = u.Email
	}
	if u, err := s.users.GetUserByID(ctx, ev.ReviewerID); err == nil {
		ev.ReviewerName = u.FullName
		ev.ReviewerEmail = u.Email
	}
}

func (s *Service) internal(op string, err error) error {
	s.logger.Error("verification "+op+" failed", "error", err)
	return fmt.Errorf("%w: %s", ErrInternal, op)
}

func normalizeEvidenceURL(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	if _, err := evidence.ValidateURL(v); err != nil {
		return nil, ErrInvalidInput
	}
	return &v, nil
}

func trimNote(note *string) *string {
	if note == nil {
		return nil
	}
	v := strings.TrimSpace(*note)
	if v == "" {
		return nil
	}
	return &v
}
