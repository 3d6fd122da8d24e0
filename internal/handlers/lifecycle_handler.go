package handlers

import (
	"time"

	"hackathon-management-backend/internal/middleware"
	"hackathon-management-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// VerifyEmail redeems the token from the mailed verification link.
func (h *Handler) VerifyEmail(c *fiber.Ctx) error {
	result, err := h.lifecycleSvc.VerifyEmail(c.Params("token"))
	if err != nil {
		return err
	}

	message := "Email verified"
	if result.AlreadyVerified {
		message = "Email was already verified"
	}
	return utils.Success(c, result.Person, message)
}

type AcceptRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,email"`
}

// AcceptPersons bulk-accepts by email. Rows that cannot be accepted are
// reported in their own buckets; the rest proceed.
func (h *Handler) AcceptPersons(c *fiber.Ctx) error {
	var req AcceptRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	result, err := h.lifecycleSvc.AcceptPersons(req.Emails)
	if err != nil {
		return err
	}
	return utils.Success(c, result, "Acceptance processed")
}

// SeatStatus shows the decision state behind a confirmation link without
// consuming the token.
func (h *Handler) SeatStatus(c *fiber.Ctx) error {
	result, err := h.lifecycleSvc.SeatStatus(c.Params("token"))
	if err != nil {
		return err
	}
	return utils.Success(c, result, "Seat status")
}

func (h *Handler) ConfirmSeat(c *fiber.Ctx) error {
	result, err := h.lifecycleSvc.ConfirmSeat(c.Params("token"))
	if err != nil {
		return err
	}

	message := "Seat confirmed, see you there"
	if result.AlreadyFinalized {
		message = "Your decision was already recorded"
	}
	return utils.Success(c, result, message)
}

func (h *Handler) RejectSeat(c *fiber.Ctx) error {
	result, err := h.lifecycleSvc.RejectSeat(c.Params("token"))
	if err != nil {
		return err
	}

	message := "Seat declined"
	if result.AlreadyFinalized {
		message = "Your decision was already recorded"
	}
	return utils.Success(c, result, message)
}

type ResendConfirmationRequest struct {
	Email     string `json:"email" validate:"required,email"`
	ExpiresAt string `json:"expires_at" validate:"omitempty"`
}

func (h *Handler) ResendConfirmation(c *fiber.Ctx) error {
	var req ResendConfirmationRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	expiresAt, err := parseOptionalTime(req.ExpiresAt)
	if err != nil {
		return utils.Error(c, "expires_at must be RFC 3339", fiber.StatusBadRequest)
	}

	if err := h.lifecycleSvc.ResendConfirmation(req.Email, expiresAt); err != nil {
		return err
	}
	return utils.Success(c, nil, "Confirmation mail sent")
}

type SendConfirmationsRequest struct {
	ExpiresAt string `json:"expires_at" validate:"omitempty"`
	DryRun    bool   `json:"dry_run"`
}

// SendConfirmations dispatches confirmation links to everyone accepted but
// still undecided.
func (h *Handler) SendConfirmations(c *fiber.Ctx) error {
	var req SendConfirmationsRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	expiresAt, err := parseOptionalTime(req.ExpiresAt)
	if err != nil {
		return utils.Error(c, "expires_at must be RFC 3339", fiber.StatusBadRequest)
	}

	report, err := h.lifecycleSvc.SendConfirmations(c.Context(), expiresAt, req.DryRun)
	if err != nil {
		return err
	}
	return utils.Success(c, report, "Confirmation dispatch finished")
}

func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
