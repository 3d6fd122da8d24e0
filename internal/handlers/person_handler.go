package handlers

import (
	"bytes"
	"encoding/csv"

	"hackathon-management-backend/internal/middleware"
	"hackathon-management-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListPeople(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)

	people, total, err := h.personSvc.ListPeople((page-1)*pageSize, pageSize)
	if err != nil {
		return err
	}

	totalPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	return utils.SuccessWithMeta(c, people, &utils.Meta{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}, "People retrieved")
}

func (h *Handler) GetPerson(c *fiber.Ctx) error {
	person, err := h.personSvc.GetPersonByID(c.Params("id"))
	if err != nil {
		return err
	}
	return utils.Success(c, person, "Person retrieved")
}

// ExportPeopleCSV streams the full roster as CSV.
func (h *Handler) ExportPeopleCSV(c *fiber.Ctx) error {
	rows, err := h.personSvc.ExportCSV()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="people.csv"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) FieldValues(c *fiber.Ctx) error {
	values, err := h.personSvc.FieldValues(c.Params("field"))
	if err != nil {
		return err
	}
	return utils.Success(c, values, "Distinct values retrieved")
}

type NormalizeFieldRequest struct {
	Originals   []string `json:"originals" validate:"required,min=1"`
	Replacement string   `json:"replacement" validate:"required,min=1"`
}

func (h *Handler) NormalizeField(c *fiber.Ctx) error {
	var req NormalizeFieldRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	updated, err := h.personSvc.NormalizeField(c.Params("field"), req.Originals, req.Replacement)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.Map{"updated": updated}, "Field normalized")
}

type ChangeEmailRequest struct {
	OldEmail string `json:"old_email" validate:"required,email"`
	NewEmail string `json:"new_email" validate:"required,email"`
}

// ChangeEmail moves a registration to a new address, carrying tokens and
// history along.
func (h *Handler) ChangeEmail(c *fiber.Ctx) error {
	var req ChangeEmailRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	person, err := h.registrationSvc.ChangeEmail(req.OldEmail, req.NewEmail)
	if err != nil {
		return err
	}
	return utils.Success(c, person, "Email changed")
}
