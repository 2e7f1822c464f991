package handler

import (
	"errors"

	"skillxintell/internal/delivery/http/dto"
	"skillxintell/internal/delivery/http/middleware"
	"skillxintell/internal/pkg/response"
	"skillxintell/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MentorHandler struct {
	uc usecase.MentorUsecase
}

func NewMentorHandler(uc usecase.MentorUsecase) *MentorHandler {
	return &MentorHandler{uc: uc}
}

func (h *MentorHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/mentors", h.List)
}

func (h *MentorHandler) List(c fiber.Ctx) error {
	items, err := h.uc.ListApproved(c.Context(), c.Query("sector"))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Unknown sector", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMentorListResponse(items))
}
