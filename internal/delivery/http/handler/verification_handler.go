package handler

import (
	"context"
	"errors"

	"skillxintell/internal/delivery/http/dto"
	"skillxintell/internal/delivery/http/middleware"
	"skillxintell/internal/domain/verification"
	"skillxintell/internal/pkg/response"
	"skillxintell/internal/pkg/validator"
	ucverification "skillxintell/internal/usecase/verification"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type VerificationUsecase interface {
	Create(ctx context.Context, caller ucverification.Caller, in ucverification.CreateInput) (verification.Request, bool, error)
	Transition(ctx context.Context, caller ucverification.Caller, requestID uuid.UUID, in ucverification.TransitionInput) (verification.Request, error)
	List(ctx context.Context, caller ucverification.Caller, in ucverification.ListInput) (ucverification.ListResult, error)
	Get(ctx context.Context, caller ucverification.Caller, requestID uuid.UUID) (verification.Detailed, error)
}

type VerificationHandler struct {
	uc       VerificationUsecase
	validate *validator.Validator
}

type createRequestRequest struct {
	ReviewerID  string  `json:"reviewer_id" validate:"required,uuid"`
	Message     string  `json:"message" validate:"max=2000"`
	EvidenceURL *string `json:"evidence_url" validate:"omitempty,http_url,max=2048"`
}

type transitionRequest struct {
	Status string  `json:"status" validate:"required,decision"`
	Note   *string `json:"note" validate:"omitempty,max=2000"`
}

type listRequestsQuery struct {
	Status string `query:"status"`
	Limit  int    `query:"limit" validate:"min=0"`
	Offset int    `query:"offset" validate:"min=0"`
}

func NewVerificationHandler(uc VerificationUsecase, v *validator.Validator) *VerificationHandler {
	return &VerificationHandler{uc: uc, validate: v}
}

func (h *VerificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/skills/:skillId/requests", h.Create)
	r.Get("/requests/sent", h.ListSent)
	r.Get("/requests/received", h.ListReceived)
	r.Get("/requests/:id", h.Get)
	r.Patch("/requests/:id", h.Transition)
}

func (h *VerificationHandler) Create(c fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	skillID, err := uuid.Parse(c.Params("skillId"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid skill id", nil, err)
	}

	var req createRequestRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}
	reviewerID, err := uuid.Parse(req.ReviewerID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid reviewer id", nil, err)
	}

	out, created, err := h.uc.Create(c.Context(), caller, ucverification.CreateInput{
		SkillID:     skillID,
		ReviewerID:  reviewerID,
		Message:     req.Message,
		EvidenceURL: req.EvidenceURL,
	})
	if err != nil {
		return mapVerificationUsecaseError(err)
	}

	status, msg := fiber.StatusCreated, "Verification request created"
	if !created {
		status, msg = fiber.StatusOK, "Verification request already pending"
	}
	return response.Success(c, status, msg, dto.RequestEnvelope{Request: dto.NewRequestResponse(out), Created: &created})
}

func (h *VerificationHandler) ListSent(c fiber.Ctx) error {
	return h.list(c, verification.BoxSent)
}

func (h *VerificationHandler) ListReceived(c fiber.Ctx) error {
	return h.list(c, verification.BoxReceived)
}

func (h *VerificationHandler) list(c fiber.Ctx, box verification.Box) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var q listRequestsQuery
	if err := c.Bind().Query(&q); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid query parameters", nil, err)
	}
	if err := h.validate.Validate(q); err != nil {
		return err
	}

	res, err := h.uc.List(c.Context(), caller, ucverification.ListInput{
		Box:    string(box),
		Status: q.Status,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return mapVerificationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRequestListResponse(res.Requests, res.Count, res.Limit, res.Offset))
}

func (h *VerificationHandler) Get(c fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request id", nil, err)
	}

	d, err := h.uc.Get(c.Context(), caller, requestID)
	if err != nil {
		return mapVerificationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RequestEnvelope{Request: dto.NewDetailedRequestResponse(d)})
}

func (h *VerificationHandler) Transition(c fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request id", nil, err)
	}

	var req transitionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	out, err := h.uc.Transition(c.Context(), caller, requestID, ucverification.TransitionInput{
		Status: req.Status,
		Note:   req.Note,
	})
	if err != nil {
		return mapVerificationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Verification request "+string(out.Status), dto.RequestEnvelope{Request: dto.NewRequestResponse(out)})
}

func currentCaller(c fiber.Ctx) (ucverification.Caller, error) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		return ucverification.Caller{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return ucverification.Caller{UserID: userID, Role: role}, nil
}

func mapVerificationUsecaseError(err error) error {
	switch {
	case errors.Is(err, ucverification.ErrSkillNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Skill not found", nil, err)
	case errors.Is(err, ucverification.ErrReviewerNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Reviewer not found", nil, err)
	case errors.Is(err, ucverification.ErrRequestNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Verification request not found", nil, err)

	case errors.Is(err, ucverification.ErrNotSkillOwner):
		return middleware.NewAppError(fiber.StatusForbidden, "Only the skill owner can request verification", nil, err)
	case errors.Is(err, ucverification.ErrReviewerIneligible):
		return middleware.NewAppError(fiber.StatusForbidden, "Reviewer is not an approved mentor for this sector", nil, err)
	case errors.Is(err, ucverification.ErrRoleCannotRequest):
		return middleware.NewAppError(fiber.StatusForbidden, "Your role cannot request verification", nil, err)
	case errors.Is(err, ucverification.ErrNotReviewer):
		return middleware.NewAppError(fiber.StatusForbidden, "Only the assigned reviewer can decide this request", nil, err)
	case errors.Is(err, ucverification.ErrNotParticipant):
		return middleware.NewAppError(fiber.StatusForbidden, "You are not part of this request", nil, err)

	case errors.Is(err, ucverification.ErrSkillAlreadyVerified):
		return middleware.NewAppError(fiber.StatusConflict, "Skill is already verified", nil, err)
	case errors.Is(err, ucverification.ErrRequestNotPending):
		return middleware.NewAppError(fiber.StatusConflict, "Verification request is no longer pending", nil, err)

	case errors.Is(err, ucverification.ErrInvalidStatus):
		return middleware.NewAppError(fiber.StatusBadRequest, "Status must be APPROVED or REJECTED", nil, err)
	case errors.Is(err, ucverification.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
