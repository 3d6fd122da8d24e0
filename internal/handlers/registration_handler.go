package handlers

import (
	"time"

	"hackathon-management-backend/internal/middleware"
	"hackathon-management-backend/internal/services"
	"hackathon-management-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func (h *Handler) publicRateLimit() fiber.Handler {
	return middleware.RateLimit(5, 10)
}

type RegisterParticipantRequest struct {
	Email        string `json:"email" form:"email" validate:"required,email"`
	Name         string `json:"name" form:"name" validate:"required,min=2,max=200"`
	NationalID   string `json:"national_id" form:"national_id" validate:"max=32"`
	Phone        string `json:"phone" form:"phone" validate:"max=32"`
	TShirtSize   string `json:"tshirt_size" form:"tshirt_size" validate:"omitempty,oneof=XS S M L XL XXL"`
	DietaryNotes string `json:"dietary_notes" form:"dietary_notes" validate:"max=1000"`

	City         string `json:"city" form:"city" validate:"max=100"`
	StudyLevel   string `json:"study_level" form:"study_level" validate:"max=100"`
	StudyCenter  string `json:"study_center" form:"study_center" validate:"max=200"`
	StudyProgram string `json:"study_program" form:"study_program" validate:"max=200"`
	CourseYear   string `json:"course_year" form:"course_year" validate:"max=20"`
	WantsCredits bool   `json:"wants_credits" form:"wants_credits"`
	Motivation   string `json:"motivation" form:"motivation" validate:"max=5000"`
	ShareCV      bool   `json:"share_cv" form:"share_cv"`
}

type RegisterMentorRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required,min=2,max=200"`
	Phone      string `json:"phone" validate:"max=32"`
	TShirtSize string `json:"tshirt_size" validate:"omitempty,oneof=XS S M L XL XXL"`
	Company    string `json:"company" validate:"max=200"`
	Expertise  string `json:"expertise" validate:"max=2000"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RegisterParticipant handles public participant sign-up. The body may be
// JSON or a multipart form carrying an optional PDF CV under "cv".
func (h *Handler) RegisterParticipant(c *fiber.Ctx) error {
	var req RegisterParticipantRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	cvPath := ""
	if file, err := c.FormFile("cv"); err == nil && file != nil {
		if file.Size > h.cfg.MaxUploadSize {
			return utils.Error(c, "CV exceeds the size limit", fiber.StatusRequestEntityTooLarge)
		}
		if err := utils.ValidateCVFile(file); err != nil {
			return utils.Error(c, err.Error(), fiber.StatusBadRequest)
		}
		filename := utils.GenerateUniqueFilename(file.Filename)
		if err := utils.SaveUploadedFile(file, h.cfg.CVDir, filename); err != nil {
			return utils.Error(c, "Failed to store CV", fiber.StatusInternalServerError)
		}
		cvPath = filename
	}

	person, err := h.registrationSvc.RegisterParticipant(services.RegisterParticipantRequest{
		RegisterPersonRequest: services.RegisterPersonRequest{
			Email:        req.Email,
			Name:         req.Name,
			NationalID:   req.NationalID,
			Phone:        req.Phone,
			TShirtSize:   req.TShirtSize,
			DietaryNotes: req.DietaryNotes,
		},
		City:         req.City,
		StudyLevel:   req.StudyLevel,
		StudyCenter:  req.StudyCenter,
		StudyProgram: req.StudyProgram,
		CourseYear:   req.CourseYear,
		WantsCredits: req.WantsCredits,
		Motivation:   req.Motivation,
		CVPath:       cvPath,
		ShareCV:      req.ShareCV,
	})
	if err != nil {
		return err
	}

	return utils.Success(c, person, "Registered, check your inbox for the verification link", fiber.StatusCreated)
}

func (h *Handler) RegisterMentor(c *fiber.Ctx) error {
	var req RegisterMentorRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	person, err := h.registrationSvc.RegisterMentor(services.RegisterMentorRequest{
		RegisterPersonRequest: services.RegisterPersonRequest{
			Email:      req.Email,
			Name:       req.Name,
			Phone:      req.Phone,
			TShirtSize: req.TShirtSize,
		},
		Company:   req.Company,
		Expertise: req.Expertise,
	})
	if err != nil {
		return err
	}

	return utils.Success(c, person, "Registered, check your inbox for the verification link", fiber.StatusCreated)
}

// ResendVerification re-sends the verification link with a fresh expiry.
func (h *Handler) ResendVerification(c *fiber.Ctx) error {
	var req EmailRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	// Always report success so the endpoint cannot be used to probe for
	// registered or verified addresses. The real outcome only goes to the log.
	if err := h.registrationSvc.ResendVerification(req.Email, time.Time{}); err != nil {
		logrus.WithError(err).WithField("email", req.Email).
			Info("Resend verification request not fulfilled")
	}
	return utils.Success(c, nil, "If that address is registered, a mail is on its way")
}
