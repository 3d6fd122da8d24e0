package services

import (
	"errors"
	"strings"
	"time"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/mailer"
	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const emailErrorReasonLimit = 4096

// RegistrationService creates Person records with their role specialization
// and kicks off the verification-token workflow.
type RegistrationService struct {
	people   repositories.PersonRepository
	tokens   repositories.TokenRepository
	tokenSvc *TokenService
	mail     mailer.Sender
	cfg      *config.Config
}

func NewRegistrationService(
	people repositories.PersonRepository,
	tokens repositories.TokenRepository,
	tokenSvc *TokenService,
	mail mailer.Sender,
	cfg *config.Config,
) *RegistrationService {
	return &RegistrationService{
		people:   people,
		tokens:   tokens,
		tokenSvc: tokenSvc,
		mail:     mail,
		cfg:      cfg,
	}
}

type RegisterPersonRequest struct {
	Email        string
	Name         string
	NationalID   string
	Phone        string
	TShirtSize   string
	DietaryNotes string
	Notes        string
}

type RegisterParticipantRequest struct {
	RegisterPersonRequest

	City         string
	StudyLevel   string
	StudyCenter  string
	StudyProgram string
	CourseYear   string
	WantsCredits bool
	Motivation   string
	CVPath       string
	ShareCV      bool
}

type RegisterMentorRequest struct {
	RegisterPersonRequest

	Company   string
	Expertise string
}

// RegisterParticipant creates the person and participant rows, issues a
// verification token and mails the link. A failed delivery leaves the person
// registered with the failure reason recorded; it is not retried.
func (s *RegistrationService) RegisterParticipant(req RegisterParticipantRequest) (*models.Person, error) {
	person, err := s.register(req.RegisterPersonRequest, models.RoleParticipant)
	if err != nil {
		return nil, err
	}

	participant := &models.Participant{
		ID:           uuid.New(),
		PersonID:     person.ID,
		City:         req.City,
		StudyLevel:   req.StudyLevel,
		StudyCenter:  req.StudyCenter,
		StudyProgram: req.StudyProgram,
		CourseYear:   req.CourseYear,
		WantsCredits: req.WantsCredits,
		Motivation:   req.Motivation,
		CVPath:       req.CVPath,
		ShareCV:      req.ShareCV,
	}
	if err := s.people.CreateParticipant(participant); err != nil {
		return nil, NewWorkflowError("failed to register participant", ErrDatabaseError, err)
	}
	person.Participant = participant

	return person, s.sendVerification(person, time.Time{})
}

// RegisterMentor is the mentor-side twin of RegisterParticipant.
func (s *RegistrationService) RegisterMentor(req RegisterMentorRequest) (*models.Person, error) {
	person, err := s.register(req.RegisterPersonRequest, models.RoleMentor)
	if err != nil {
		return nil, err
	}

	mentor := &models.Mentor{
		ID:        uuid.New(),
		PersonID:  person.ID,
		Company:   req.Company,
		Expertise: req.Expertise,
	}
	if err := s.people.CreateMentor(mentor); err != nil {
		return nil, NewWorkflowError("failed to register mentor", ErrDatabaseError, err)
	}
	person.Mentor = mentor

	return person, s.sendVerification(person, time.Time{})
}

func (s *RegistrationService) register(req RegisterPersonRequest, role string) (*models.Person, error) {
	now := time.Now()
	if !s.cfg.RegistrationDeadline.IsZero() && now.After(s.cfg.RegistrationDeadline) {
		return nil, NewWorkflowError("registration is closed", ErrRegistrationClosed, nil)
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Name == "" {
		return nil, NewWorkflowError("email and name are required", ErrInvalidInput, nil)
	}

	if existing, _ := s.people.GetPersonByEmail(email); existing != nil {
		return nil, NewWorkflowError("email already registered", ErrAlreadyRegistered, nil)
	}

	person := &models.Person{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		NationalID:   req.NationalID,
		Phone:        req.Phone,
		TShirtSize:   req.TShirtSize,
		DietaryNotes: req.DietaryNotes,
		Notes:        req.Notes,
		Role:         role,
		Status:       models.StatusRegistered,
		RegisteredAt: now,
	}

	if err := s.people.CreatePerson(person); err != nil {
		return nil, NewWorkflowError("failed to register person", ErrDatabaseError, err)
	}

	logrus.WithFields(logrus.Fields{"email": person.Email, "role": role}).Info("Person registered")
	return person, nil
}

// ResendVerification reissues (or extends) the verification token and re-sends
// the mail. A zero expiresAt selects the default lifetime.
func (s *RegistrationService) ResendVerification(email string, expiresAt time.Time) error {
	person, err := s.people.GetPersonByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewWorkflowError("no person with that email", ErrNotFound, err)
		}
		return NewWorkflowError("failed to look up person", ErrDatabaseError, err)
	}
	if person.EmailVerifiedAt != nil {
		return NewWorkflowError("email already verified", ErrAlreadyFinalized, nil)
	}
	return s.sendVerification(person, expiresAt)
}

// sendVerification issues the token and delivers the mail, recording a
// truncated failure reason on the person when the relay refuses the message.
func (s *RegistrationService) sendVerification(person *models.Person, expiresAt time.Time) error {
	token, err := s.tokenSvc.IssueOrRenew(person, models.TokenVerification, expiresAt)
	if err != nil {
		return err
	}

	if err := s.mail.SendVerification(person, token); err != nil {
		reason := err.Error()
		if len(reason) > emailErrorReasonLimit {
			reason = reason[:emailErrorReasonLimit]
		}
		person.EmailErrorReason = reason
		if saveErr := s.people.UpdatePerson(person); saveErr != nil {
			logrus.WithError(saveErr).WithField("email", person.Email).
				Error("Failed to record mail delivery error")
		}

		logrus.WithError(err).WithField("email", person.Email).Error("Failed to send verification mail")
		return NewWorkflowError(
			"could not deliver the verification mail, please contact support",
			ErrEmailDelivery, err,
		)
	}

	logrus.WithField("email", person.Email).Info("Verification mail sent")
	return nil
}

// ChangeEmail moves an identity to a new address: the person is re-created
// under the new email, tokens are transferred and the old row is deleted.
func (s *RegistrationService) ChangeEmail(oldEmail, newEmail string) (*models.Person, error) {
	oldEmail = strings.TrimSpace(strings.ToLower(oldEmail))
	newEmail = strings.TrimSpace(strings.ToLower(newEmail))
	if oldEmail == "" || newEmail == "" || oldEmail == newEmail {
		return nil, NewWorkflowError("two distinct emails are required", ErrInvalidInput, nil)
	}

	person, err := s.people.GetPersonByEmail(oldEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("no person with that email", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up person", ErrDatabaseError, err)
	}
	if existing, _ := s.people.GetPersonByEmail(newEmail); existing != nil {
		return nil, NewWorkflowError("new email already registered", ErrAlreadyRegistered, nil)
	}

	oldID := person.ID
	replacement := *person
	replacement.ID = uuid.New()
	replacement.Email = newEmail

	err = s.people.Transaction(func(tx *gorm.DB) error {
		// Clear the unique badge code before inserting the replacement row.
		if person.BadgeCode != nil {
			if err := tx.Model(&models.Person{}).Where("id = ?", oldID).
				Update("badge_code", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&replacement).Error; err != nil {
			return err
		}

		// Re-point the specialization and history rows at the new identity.
		for _, model := range []any{
			&models.Participant{}, &models.Mentor{}, &models.Sponsor{},
			&models.Token{}, &models.Presence{}, &models.Pass{},
		} {
			if err := tx.Model(model).Where("person_id = ?", oldID).
				Update("person_id", replacement.ID).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", oldID).Delete(&models.Person{}).Error
	})
	if err != nil {
		return nil, NewWorkflowError("failed to change email", ErrDatabaseError, err)
	}

	logrus.WithFields(logrus.Fields{"old": oldEmail, "new": newEmail}).Info("Email changed")
	return &replacement, nil
}
