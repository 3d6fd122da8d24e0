package services

import (
	"errors"
	"fmt"
	"time"

	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PassService grants on-site passes (meals, swag, workshop seats) against
// badge scans. Pass types gate granting by an activation time.
type PassService struct {
	people repositories.PersonRepository
	passes repositories.PassRepository
}

func NewPassService(people repositories.PersonRepository, passes repositories.PassRepository) *PassService {
	return &PassService{people: people, passes: passes}
}

func (s *PassService) CreatePassType(name string, validFrom time.Time) (*models.PassType, error) {
	if name == "" {
		return nil, NewWorkflowError("pass type name is required", ErrInvalidInput, nil)
	}
	passType := &models.PassType{
		ID:        uuid.New(),
		Name:      name,
		ValidFrom: validFrom,
	}
	if err := s.passes.CreatePassType(passType); err != nil {
		return nil, NewWorkflowError("failed to create pass type", ErrDatabaseError, err)
	}
	return passType, nil
}

func (s *PassService) ListPassTypes() ([]models.PassType, error) {
	types, err := s.passes.ListPassTypes()
	if err != nil {
		return nil, NewWorkflowError("failed to list pass types", ErrDatabaseError, err)
	}
	return types, nil
}

// GrantResult carries the granted pass plus a notice when the same pass was
// already granted to the same person before. Repeats are allowed; the desk
// decides what to do with the notice.
type GrantResult struct {
	Person   *models.Person   `json:"person"`
	PassType *models.PassType `json:"pass_type"`
	Pass     *models.Pass     `json:"pass"`
	Notice   string           `json:"notice,omitempty"`
}

func (s *PassService) GrantPass(badgeCode, passTypeID string) (*GrantResult, error) {
	if badgeCode == "" || passTypeID == "" {
		return nil, NewWorkflowError("badge code and pass type are required", ErrInvalidInput, nil)
	}

	passType, err := s.passes.GetPassTypeByID(passTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("pass type not found", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up pass type", ErrDatabaseError, err)
	}

	now := time.Now()
	if !passType.Issuable(now) {
		// Tell the desk whether anything is grantable right now or the
		// window simply has not opened for any type.
		anyActive, err := s.passes.HasIssuablePassType(now)
		if err != nil {
			return nil, NewWorkflowError("failed to check pass type windows", ErrDatabaseError, err)
		}
		msg := "pass type is not active yet"
		if !anyActive {
			msg = "no pass type is active yet"
		}
		return nil, NewWorkflowError(msg, ErrNotEligible, nil)
	}

	person, err := s.people.GetPersonByBadgeCode(badgeCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("no person with that badge", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up badge", ErrDatabaseError, err)
	}

	previous, err := s.passes.CountPasses(person.ID, passType.ID)
	if err != nil {
		return nil, NewWorkflowError("failed to count passes", ErrDatabaseError, err)
	}

	pass := &models.Pass{
		ID:         uuid.New(),
		PersonID:   person.ID,
		PassTypeID: passType.ID,
		IssuedAt:   now,
	}
	if err := s.passes.CreatePass(pass); err != nil {
		return nil, NewWorkflowError("failed to grant pass", ErrDatabaseError, err)
	}

	result := &GrantResult{Person: person, PassType: passType, Pass: pass}
	if previous > 0 {
		result.Notice = fmt.Sprintf("%q already granted %d time(s) to this person", passType.Name, previous)
	}

	logrus.WithFields(logrus.Fields{
		"badge": badgeCode,
		"pass":  passType.Name,
	}).Info("Pass granted")
	return result, nil
}

func (s *PassService) ListPassesByPerson(badgeCode string) (*models.Person, []models.Pass, error) {
	person, err := s.people.GetPersonByBadgeCode(badgeCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewWorkflowError("no person with that badge", ErrNotFound, err)
		}
		return nil, nil, NewWorkflowError("failed to look up badge", ErrDatabaseError, err)
	}
	passes, err := s.passes.ListPassesByPerson(person.ID)
	if err != nil {
		return nil, nil, NewWorkflowError("failed to list passes", ErrDatabaseError, err)
	}
	return person, passes, nil
}
