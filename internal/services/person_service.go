package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PersonService covers the back-office views over registered people: listing,
// lookup, free-text field normalization and the CSV export.
type PersonService struct {
	people repositories.PersonRepository
}

func NewPersonService(people repositories.PersonRepository) *PersonService {
	return &PersonService{people: people}
}

func (s *PersonService) ListPeople(offset, limit int) ([]models.Person, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	people, total, err := s.people.ListPeople(offset, limit)
	if err != nil {
		return nil, 0, NewWorkflowError("failed to list people", ErrDatabaseError, err)
	}
	return people, total, nil
}

func (s *PersonService) GetPersonByEmail(email string) (*models.Person, error) {
	person, err := s.people.GetPersonByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("no person with that email", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up person", ErrDatabaseError, err)
	}
	return person, nil
}

func (s *PersonService) GetPersonByID(id string) (*models.Person, error) {
	person, err := s.people.GetPersonByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("person not found", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up person", ErrDatabaseError, err)
	}
	return person, nil
}

// FieldValues lists the distinct values currently stored in one of the
// free-text categorical participant fields, as input for normalization.
func (s *PersonService) FieldValues(field string) ([]string, error) {
	values, err := s.people.DistinctParticipantFieldValues(field)
	if err != nil {
		return nil, NewWorkflowError(fmt.Sprintf("cannot read field %q", field), ErrInvalidInput, err)
	}
	return values, nil
}

// NormalizeField rewrites a set of variant spellings to one canonical value.
func (s *PersonService) NormalizeField(field string, originals []string, replacement string) (int64, error) {
	if len(originals) == 0 || strings.TrimSpace(replacement) == "" {
		return 0, NewWorkflowError("originals and replacement are required", ErrInvalidInput, nil)
	}
	updated, err := s.people.NormalizeParticipantField(field, originals, replacement)
	if err != nil {
		return 0, NewWorkflowError(fmt.Sprintf("cannot normalize field %q", field), ErrInvalidInput, err)
	}
	logrus.WithFields(logrus.Fields{
		"field":       field,
		"replacement": replacement,
		"rows":        updated,
	}).Info("Field normalized")
	return updated, nil
}

var csvHeader = []string{
	"email", "name", "role", "status", "badge_code",
	"registered_at", "email_verified_at", "accepted_at", "confirmed_at", "rejected_at",
	"tshirt_size", "city", "study_level", "study_center", "study_program", "course_year",
}

// ExportCSV renders every person as one row. Timestamps are RFC 3339 and nil
// timestamps are empty cells.
func (s *PersonService) ExportCSV() ([][]string, error) {
	const page = 500

	rows := [][]string{csvHeader}
	for offset := 0; ; offset += page {
		people, _, err := s.people.ListPeople(offset, page)
		if err != nil {
			return nil, NewWorkflowError("failed to list people", ErrDatabaseError, err)
		}
		if len(people) == 0 {
			break
		}
		for i := range people {
			rows = append(rows, csvRow(&people[i]))
		}
		if len(people) < page {
			break
		}
	}
	return rows, nil
}

func csvRow(p *models.Person) []string {
	badge := ""
	if p.BadgeCode != nil {
		badge = *p.BadgeCode
	}
	row := []string{
		p.Email, p.Name, p.Role, p.Status, badge,
		p.RegisteredAt.Format(time.RFC3339),
		formatTimePtr(p.EmailVerifiedAt),
		formatTimePtr(p.AcceptedAt),
		formatTimePtr(p.ConfirmedAt),
		formatTimePtr(p.RejectedAt),
		p.TShirtSize,
	}
	if p.Participant != nil {
		row = append(row,
			p.Participant.City,
			p.Participant.StudyLevel,
			p.Participant.StudyCenter,
			p.Participant.StudyProgram,
			p.Participant.CourseYear,
		)
	} else {
		row = append(row, "", "", "", "", "")
	}
	return row
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
