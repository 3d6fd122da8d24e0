package handlers

import (
	"time"

	"hackathon-management-backend/internal/middleware"
	"hackathon-management-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AssignBadgeRequest struct {
	Email     string `json:"email" validate:"required,email"`
	BadgeCode string `json:"badge_code" validate:"required,min=1,max=64"`
}

func (h *Handler) AssignBadge(c *fiber.Ctx) error {
	var req AssignBadgeRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	person, err := h.attendanceSvc.AssignBadge(req.Email, req.BadgeCode)
	if err != nil {
		return err
	}
	return utils.Success(c, person, "Badge assigned", fiber.StatusCreated)
}

func (h *Handler) CheckIn(c *fiber.Ctx) error {
	result, err := h.attendanceSvc.CheckIn(c.Params("badge"))
	if err != nil {
		return err
	}

	message := "Entry recorded"
	if result.Warning != "" {
		message = "Entry recorded with warning: " + result.Warning
	}
	return utils.Success(c, result, message, fiber.StatusCreated)
}

func (h *Handler) CheckOut(c *fiber.Ctx) error {
	result, err := h.attendanceSvc.CheckOut(c.Params("badge"))
	if err != nil {
		return err
	}

	message := "Exit recorded"
	if result.Warning != "" {
		message = "Exit recorded with warning: " + result.Warning
	}
	return utils.Success(c, result, message)
}

func (h *Handler) AttendanceSummary(c *fiber.Ctx) error {
	summary, err := h.attendanceSvc.Summary(c.Params("badge"))
	if err != nil {
		return err
	}
	return utils.Success(c, summary, "Attendance summary")
}

type EditPresenceRequest struct {
	EntryAt string `json:"entry_at" validate:"omitempty"`
	ExitAt  string `json:"exit_at" validate:"omitempty"`
}

// EditPresence fills in a missing entry or exit timestamp on a presence row.
func (h *Handler) EditPresence(c *fiber.Ctx) error {
	var req EditPresenceRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	var entryAt, exitAt *time.Time
	if req.EntryAt != "" {
		t, err := time.Parse(time.RFC3339, req.EntryAt)
		if err != nil {
			return utils.Error(c, "entry_at must be RFC 3339", fiber.StatusBadRequest)
		}
		entryAt = &t
	}
	if req.ExitAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExitAt)
		if err != nil {
			return utils.Error(c, "exit_at must be RFC 3339", fiber.StatusBadRequest)
		}
		exitAt = &t
	}

	presence, err := h.attendanceSvc.EditPresence(c.Params("id"), entryAt, exitAt)
	if err != nil {
		return err
	}
	return utils.Success(c, presence, "Presence updated")
}
