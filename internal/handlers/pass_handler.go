package handlers

import (
	"time"

	"hackathon-management-backend/internal/middleware"
	"hackathon-management-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CreatePassTypeRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	ValidFrom string `json:"valid_from" validate:"omitempty"`
}

func (h *Handler) CreatePassType(c *fiber.Ctx) error {
	var req CreatePassTypeRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	validFrom, err := parseOptionalTime(req.ValidFrom)
	if err != nil {
		return utils.Error(c, "valid_from must be RFC 3339", fiber.StatusBadRequest)
	}
	if validFrom.IsZero() {
		validFrom = time.Now()
	}

	passType, err := h.passSvc.CreatePassType(req.Name, validFrom)
	if err != nil {
		return err
	}
	return utils.Success(c, passType, "Pass type created", fiber.StatusCreated)
}

func (h *Handler) ListPassTypes(c *fiber.Ctx) error {
	types, err := h.passSvc.ListPassTypes()
	if err != nil {
		return err
	}
	return utils.Success(c, types, "Pass types retrieved")
}

type GrantPassRequest struct {
	BadgeCode  string `json:"badge_code" validate:"required"`
	PassTypeID string `json:"pass_type_id" validate:"required,uuid"`
}

func (h *Handler) GrantPass(c *fiber.Ctx) error {
	var req GrantPassRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	result, err := h.passSvc.GrantPass(req.BadgeCode, req.PassTypeID)
	if err != nil {
		return err
	}

	message := "Pass granted"
	if result.Notice != "" {
		message = "Pass granted, note: " + result.Notice
	}
	return utils.Success(c, result, message, fiber.StatusCreated)
}

func (h *Handler) ListPassesByPerson(c *fiber.Ctx) error {
	person, passes, err := h.passSvc.ListPassesByPerson(c.Params("badge"))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.Map{"person": person, "passes": passes}, "Passes retrieved")
}
