package handler

import (
	"errors"

	"skillxintell/internal/delivery/http/dto"
	"skillxintell/internal/delivery/http/middleware"
	"skillxintell/internal/pkg/response"
	"skillxintell/internal/pkg/validator"
	"skillxintell/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SkillHandler struct {
	uc       usecase.SkillUsecase
	validate *validator.Validator
}

type createSkillRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Sector      string `json:"sector" validate:"required,sector"`
	Category    string `json:"category" validate:"max=120"`
	Proficiency int    `json:"proficiency" validate:"required,min=1,max=5"`
}

type updateSkillRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Sector      *string `json:"sector" validate:"omitempty,sector"`
	Category    *string `json:"category" validate:"omitempty,max=120"`
	Proficiency *int    `json:"proficiency" validate:"omitempty,min=1,max=5"`
}

func NewSkillHandler(uc usecase.SkillUsecase, v *validator.Validator) *SkillHandler {
	return &SkillHandler{uc: uc, validate: v}
}

func (h *SkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("", h.Create)
	r.Get("", h.List)
	r.Get("/:id", h.Get)
	r.Patch("/:id", h.Update)
}

func (h *SkillHandler) Create(c fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req createSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	created, err := h.uc.Create(c.Context(), userID, usecase.CreateSkillInput{
		Name:        req.Name,
		Sector:      req.Sector,
		Category:    req.Category,
		Proficiency: req.Proficiency,
	})
	if err != nil {
		return mapSkillUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Skill created", dto.SkillEnvelope{Skill: dto.NewSkillResponse(created)})
}

func (h *SkillHandler) List(c fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapSkillUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillListResponse(items))
}

func (h *SkillHandler) Get(c fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	skillID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid skill id", nil, err)
	}

	s, err := h.uc.Get(c.Context(), userID, skillID)
	if err != nil {
		return mapSkillUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillEnvelope{Skill: dto.NewSkillResponse(s)})
}

func (h *SkillHandler) Update(c fiber.Ctx) error {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	skillID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid skill id", nil, err)
	}

	var req updateSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.Name == nil && req.Sector == nil && req.Category == nil && req.Proficiency == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Nothing to update", nil, nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	updated, err := h.uc.Update(c.Context(), userID, skillID, usecase.UpdateSkillInput{
		Name:        req.Name,
		Sector:      req.Sector,
		Category:    req.Category,
		Proficiency: req.Proficiency,
	})
	if err != nil {
		return mapSkillUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillEnvelope{Skill: dto.NewSkillResponse(updated)})
}

func mapSkillUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrSkillNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Skill not found", nil, err)
	case errors.Is(err, usecase.ErrSkillForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "You do not own this skill", nil, err)
	case errors.Is(err, usecase.ErrSkillExists):
		return middleware.NewAppError(fiber.StatusConflict, "You already have a skill with this name", nil, err)
	case errors.Is(err, usecase.ErrSkillLocked):
		return middleware.NewAppError(fiber.StatusConflict, "Name and sector of a verified skill cannot change", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
