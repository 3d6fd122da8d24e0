package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/mailer"
	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"
	"hackathon-management-backend/internal/services"
	"hackathon-management-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Minimal repo doubles for the resend flow. Embedding the interfaces keeps
// them small; any method the flow does not touch panics on a nil receiver.
type resendPersonRepo struct {
	repositories.PersonRepository
	people map[string]*models.Person
}

func (r *resendPersonRepo) GetPersonByEmail(email string) (*models.Person, error) {
	if p, ok := r.people[email]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *resendPersonRepo) UpdatePerson(p *models.Person) error {
	r.people[p.Email] = p
	return nil
}

type resendTokenRepo struct {
	repositories.TokenRepository
	tokens map[uuid.UUID]*models.Token
}

func (r *resendTokenRepo) GetUnusedToken(personID uuid.UUID, kind string) (*models.Token, error) {
	for _, t := range r.tokens {
		if t.PersonID == personID && t.Kind == kind && t.UsedAt == nil {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *resendTokenRepo) CreateToken(t *models.Token) error {
	r.tokens[t.ID] = t
	return nil
}

func (r *resendTokenRepo) UpdateToken(t *models.Token) error {
	r.tokens[t.ID] = t
	return nil
}

type refusingMailer struct{}

func (refusingMailer) SendVerification(*models.Person, *models.Token) error {
	return errors.New("relay refused the message")
}
func (refusingMailer) SendVerified(*models.Person) error                    { return nil }
func (refusingMailer) SendConfirmation(*models.Person, *models.Token) error { return nil }

func resendApp(people map[string]*models.Person, mail mailer.Sender) *fiber.App {
	personRepo := &resendPersonRepo{people: people}
	tokenRepo := &resendTokenRepo{tokens: make(map[uuid.UUID]*models.Token)}
	svc := services.NewRegistrationService(
		personRepo, tokenRepo, services.NewTokenService(tokenRepo), mail, &config.Config{})

	h := &Handler{registrationSvc: svc, cfg: &config.Config{}}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/register/resend-verification", h.ResendVerification)
	return app
}

func postResend(t *testing.T, app *fiber.App, email string) (int, utils.Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/register/resend-verification",
		strings.NewReader(`{"email":"`+email+`"}`))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body utils.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body
}

// The endpoint's reply must not reveal whether an address is registered,
// verified, or failing delivery.
func TestResendVerificationUniformReply(t *testing.T) {
	verified := time.Now().Add(-time.Hour)
	people := map[string]*models.Person{
		"pending@example.org": {
			ID:     uuid.New(),
			Email:  "pending@example.org",
			Name:   "Pending",
			Status: models.StatusRegistered,
		},
		"done@example.org": {
			ID:              uuid.New(),
			Email:           "done@example.org",
			Name:            "Done",
			Status:          models.StatusEmailVerified,
			EmailVerifiedAt: &verified,
		},
	}

	app := resendApp(people, refusingMailer{})

	cases := []struct {
		name  string
		email string
	}{
		{"unknown address", "nobody@example.org"},
		{"already verified", "done@example.org"},
		{"delivery failure", "pending@example.org"},
	}

	const want = "If that address is registered, a mail is on its way"
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := postResend(t, app, tc.email)
			if status != fiber.StatusOK {
				t.Errorf("status = %d, want %d", status, fiber.StatusOK)
			}
			if !body.Success || body.Message != want {
				t.Errorf("body = %+v, want success with %q", body, want)
			}
		})
	}
}
