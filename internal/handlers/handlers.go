package handlers

import (
	"errors"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/middleware"
	"hackathon-management-backend/internal/services"
	"hackathon-management-backend/internal/utils"
	"hackathon-management-backend/internal/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	authSvc         *services.AuthService
	registrationSvc *services.RegistrationService
	lifecycleSvc    *services.LifecycleService
	attendanceSvc   *services.AttendanceService
	passSvc         *services.PassService
	personSvc       *services.PersonService
	walletGen       *wallet.Generator
	cfg             *config.Config
}

func NewHandler(
	authSvc *services.AuthService,
	registrationSvc *services.RegistrationService,
	lifecycleSvc *services.LifecycleService,
	attendanceSvc *services.AttendanceService,
	passSvc *services.PassService,
	personSvc *services.PersonService,
	walletGen *wallet.Generator,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authSvc:         authSvc,
		registrationSvc: registrationSvc,
		lifecycleSvc:    lifecycleSvc,
		attendanceSvc:   attendanceSvc,
		passSvc:         passSvc,
		personSvc:       personSvc,
		walletGen:       walletGen,
		cfg:             cfg,
	}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	// Public routes
	auth := router.Group("/auth")
	{
		auth.Post("/login", h.Login)
	}

	// Public self-service registration and token redemption, throttled per IP
	public := router.Group("", h.publicRateLimit())
	{
		public.Post("/register/participant", h.RegisterParticipant)
		public.Post("/register/mentor", h.RegisterMentor)
		public.Post("/register/resend-verification", h.ResendVerification)

		public.Get("/verify/:token", h.VerifyEmail)

		public.Get("/confirm/:token", h.SeatStatus)
		public.Post("/confirm/:token", h.ConfirmSeat)
		public.Post("/confirm/:token/decline", h.RejectSeat)
	}

	// Protected routes (JWT required)
	protected := router.Group("", middleware.JWTMiddleware(h.cfg))
	{
		protected.Get("/profile", h.GetProfile)
		protected.Post("/profile/password", h.ChangePassword)

		// Back-office person management
		people := protected.Group("/people")
		people.Use(middleware.StaffOrAbove)
		{
			people.Get("/", h.ListPeople)
			people.Get("/export.csv", h.ExportPeopleCSV)
			people.Get("/:id", h.GetPerson)
		}

		peopleAdmin := protected.Group("/people")
		peopleAdmin.Use(middleware.OrganizerOrAdmin)
		{
			peopleAdmin.Post("/accept", h.AcceptPersons)
			peopleAdmin.Post("/resend-confirmation", h.ResendConfirmation)
			peopleAdmin.Post("/send-confirmations", h.SendConfirmations)
			peopleAdmin.Get("/fields/:field", h.FieldValues)
			peopleAdmin.Post("/fields/:field/normalize", h.NormalizeField)
		}

		// Check-in desk
		attendance := protected.Group("/attendance")
		attendance.Use(middleware.StaffOrAbove)
		{
			attendance.Post("/badge", h.AssignBadge)
			attendance.Post("/:badge/checkin", h.CheckIn)
			attendance.Post("/:badge/checkout", h.CheckOut)
			attendance.Get("/:badge", h.AttendanceSummary)
			attendance.Patch("/presences/:id", h.EditPresence)
		}

		// On-site passes
		passes := protected.Group("/passes")
		passes.Use(middleware.StaffOrAbove)
		{
			passes.Get("/types", h.ListPassTypes)
			passes.Post("/grant", h.GrantPass)
			passes.Get("/:badge", h.ListPassesByPerson)
		}
		protected.Post("/passes/types", middleware.OrganizerOrAdmin, h.CreatePassType)

		// Wallet artifacts
		walletGroup := protected.Group("/wallet")
		walletGroup.Use(middleware.StaffOrAbove)
		{
			walletGroup.Get("/:email/pass.pkpass", h.DownloadPass)
			walletGroup.Get("/:email/qr.png", h.DownloadQR)
		}

		// Admin only routes
		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnly)
		{
			admin.Post("/users", h.CreateUser)
			admin.Post("/people/change-email", h.ChangeEmail)
		}
	}
}

// ErrorHandler maps workflow error codes onto HTTP statuses. Unknown errors
// stay opaque 500s.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	var wfErr *services.WorkflowError
	if errors.As(err, &wfErr) {
		code = statusForWorkflowError(wfErr.Code)
		message = wfErr.Message
	}

	if code >= 500 {
		logrus.WithError(err).WithField("path", c.Path()).Error("Request failed")
	}
	return utils.Error(c, message, code)
}

func statusForWorkflowError(code services.WorkflowErrorType) int {
	switch code {
	case services.ErrInvalidInput, services.ErrInvalidToken, services.ErrInvalidExpiry:
		return fiber.StatusBadRequest
	case services.ErrNotFound:
		return fiber.StatusNotFound
	case services.ErrExpiredToken:
		return fiber.StatusGone
	case services.ErrAlreadyFinalized, services.ErrAlreadyRegistered,
		services.ErrNotEligible, services.ErrBadgeTaken, services.ErrFieldLocked:
		return fiber.StatusConflict
	case services.ErrRegistrationClosed, services.ErrPermissionDenied:
		return fiber.StatusForbidden
	case services.ErrEmailDelivery:
		return fiber.StatusBadGateway
	case services.ErrCertExtraction:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
