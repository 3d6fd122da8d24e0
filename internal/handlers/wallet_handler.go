package handlers

import (
	"hackathon-management-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// DownloadPass renders and returns the signed .pkpass for one person.
func (h *Handler) DownloadPass(c *fiber.Ctx) error {
	person, err := h.personSvc.GetPersonByEmail(c.Params("email"))
	if err != nil {
		return err
	}

	artifacts, err := h.walletGen.Generate(person, true)
	if err != nil {
		return utils.Error(c, "Failed to build pass: "+err.Error(), fiber.StatusInternalServerError)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.apple.pkpass")
	c.Set(fiber.HeaderContentDisposition,
		`attachment; filename="`+utils.SafeFilename(person.Email)+`.pkpass"`)
	return c.Send(artifacts.PassBytes)
}

// DownloadQR returns the plain QR badge; it never needs the certificates.
func (h *Handler) DownloadQR(c *fiber.Ctx) error {
	person, err := h.personSvc.GetPersonByEmail(c.Params("email"))
	if err != nil {
		return err
	}

	artifacts, err := h.walletGen.Generate(person, false)
	if err != nil {
		return utils.Error(c, "Failed to build QR code", fiber.StatusInternalServerError)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(artifacts.QRBytes)
}
