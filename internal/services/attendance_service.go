package services

import (
	"errors"
	"time"

	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AttendanceService handles the check-in desk: badge assignment and the
// entry/exit presence log keyed by badge code.
type AttendanceService struct {
	people    repositories.PersonRepository
	presences repositories.PresenceRepository
}

func NewAttendanceService(people repositories.PersonRepository, presences repositories.PresenceRepository) *AttendanceService {
	return &AttendanceService{people: people, presences: presences}
}

// AttendanceResult reports the recorded presence row plus a human-readable
// warning when the scan did not match the expected alternation of entries and
// exits. Warnings never abort the operation: the desk record is kept as-is
// and cleaned up later with EditPresence.
type AttendanceResult struct {
	Person   *models.Person   `json:"person"`
	Presence *models.Presence `json:"presence"`
	Warning  string           `json:"warning,omitempty"`
}

// AssignBadge binds a free badge code to an accepted person. The badge is the
// scan key for every later attendance operation.
func (s *AttendanceService) AssignBadge(email, badgeCode string) (*models.Person, error) {
	if badgeCode == "" {
		return nil, NewWorkflowError("badge code is required", ErrInvalidInput, nil)
	}

	person, err := s.people.GetPersonByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("no person with that email", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up person", ErrDatabaseError, err)
	}

	if person.AcceptedAt == nil {
		return nil, NewWorkflowError("person has not been accepted", ErrNotEligible, nil)
	}
	if person.BadgeCode != nil {
		return nil, NewWorkflowError("person already has a badge", ErrNotEligible, nil)
	}

	if holder, _ := s.people.GetPersonByBadgeCode(badgeCode); holder != nil {
		return nil, NewWorkflowError("badge code already assigned", ErrBadgeTaken, nil)
	}

	person.BadgeCode = &badgeCode
	if err := s.people.UpdatePerson(person); err != nil {
		return nil, NewWorkflowError("failed to assign badge", ErrDatabaseError, err)
	}

	logrus.WithFields(logrus.Fields{"email": person.Email, "badge": badgeCode}).Info("Badge assigned")
	return person, nil
}

// CheckIn records an entry scan. A still-open previous interval produces a
// warning, but the new entry is recorded regardless.
func (s *AttendanceService) CheckIn(badgeCode string) (*AttendanceResult, error) {
	person, err := s.personByBadge(badgeCode)
	if err != nil {
		return nil, err
	}

	result := &AttendanceResult{Person: person}

	latest, err := s.presences.GetLatestPresence(person.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewWorkflowError("failed to read presence log", ErrDatabaseError, err)
	}
	if latest != nil && latest.EntryAt != nil && latest.ExitAt == nil {
		result.Warning = "previous entry was never closed"
	}

	now := time.Now()
	presence := &models.Presence{
		ID:       uuid.New(),
		PersonID: person.ID,
		EntryAt:  &now,
	}
	if err := s.presences.CreatePresence(presence); err != nil {
		return nil, NewWorkflowError("failed to record entry", ErrDatabaseError, err)
	}

	result.Presence = presence
	logrus.WithField("badge", badgeCode).Info("Check-in recorded")
	return result, nil
}

// CheckOut closes the open interval. When there is nothing to close, a
// degenerate exit-only row keeps the scan on record and a warning is returned.
func (s *AttendanceService) CheckOut(badgeCode string) (*AttendanceResult, error) {
	person, err := s.personByBadge(badgeCode)
	if err != nil {
		return nil, err
	}

	result := &AttendanceResult{Person: person}
	now := time.Now()

	latest, err := s.presences.GetLatestPresence(person.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewWorkflowError("failed to read presence log", ErrDatabaseError, err)
	}

	if latest == nil || latest.EntryAt == nil || latest.ExitAt != nil {
		result.Warning = "no open entry to close"
		presence := &models.Presence{
			ID:       uuid.New(),
			PersonID: person.ID,
			ExitAt:   &now,
		}
		if err := s.presences.CreatePresence(presence); err != nil {
			return nil, NewWorkflowError("failed to record exit", ErrDatabaseError, err)
		}
		result.Presence = presence
		return result, nil
	}

	latest.ExitAt = &now
	if err := s.presences.UpdatePresence(latest); err != nil {
		return nil, NewWorkflowError("failed to record exit", ErrDatabaseError, err)
	}

	result.Presence = latest
	logrus.WithField("badge", badgeCode).Info("Check-out recorded")
	return result, nil
}

// AttendanceSummary is the full presence history of one person with the time
// accumulated over complete intervals. Open and degenerate rows contribute
// nothing to the total.
type AttendanceSummary struct {
	Person    *models.Person    `json:"person"`
	Presences []models.Presence `json:"presences"`
	Total     time.Duration     `json:"total_ns"`
}

func (s *AttendanceService) Summary(badgeCode string) (*AttendanceSummary, error) {
	person, err := s.personByBadge(badgeCode)
	if err != nil {
		return nil, err
	}

	presences, err := s.presences.ListPresencesByPerson(person.ID)
	if err != nil {
		return nil, NewWorkflowError("failed to read presence log", ErrDatabaseError, err)
	}

	var total time.Duration
	for i := range presences {
		total += presences[i].Duration()
	}

	return &AttendanceSummary{Person: person, Presences: presences, Total: total}, nil
}

// EditPresence fills in the missing end of a presence row. Ends that already
// hold a timestamp are immutable.
func (s *AttendanceService) EditPresence(id string, entryAt, exitAt *time.Time) (*models.Presence, error) {
	presence, err := s.presences.GetPresenceByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("presence not found", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up presence", ErrDatabaseError, err)
	}

	if entryAt != nil {
		if presence.EntryAt != nil {
			return nil, NewWorkflowError("entry timestamp is already set", ErrFieldLocked, nil)
		}
		presence.EntryAt = entryAt
	}
	if exitAt != nil {
		if presence.ExitAt != nil {
			return nil, NewWorkflowError("exit timestamp is already set", ErrFieldLocked, nil)
		}
		presence.ExitAt = exitAt
	}
	if presence.EntryAt != nil && presence.ExitAt != nil && presence.ExitAt.Before(*presence.EntryAt) {
		return nil, NewWorkflowError("exit precedes entry", ErrInvalidInput, nil)
	}

	if err := s.presences.UpdatePresence(presence); err != nil {
		return nil, NewWorkflowError("failed to update presence", ErrDatabaseError, err)
	}
	return presence, nil
}

func (s *AttendanceService) personByBadge(badgeCode string) (*models.Person, error) {
	if badgeCode == "" {
		return nil, NewWorkflowError("badge code is required", ErrInvalidInput, nil)
	}
	person, err := s.people.GetPersonByBadgeCode(badgeCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("no person with that badge", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up badge", ErrDatabaseError, err)
	}
	return person, nil
}
