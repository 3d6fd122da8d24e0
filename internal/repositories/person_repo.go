package repositories

import (
	"errors"
	"fmt"

	"hackathon-management-backend/internal/models"

	"gorm.io/gorm"
)

// Free-text categorical participant columns open to bulk normalization. Keyed
// by their API names to keep raw column names out of handler input.
var normalizableFields = map[string]string{
	"study_program": "study_program",
	"study_center":  "study_center",
	"course_year":   "course_year",
	"city":          "city",
}

type personRepo struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepo{db: db}
}

func (r *personRepo) CreatePerson(person *models.Person) error {
	return r.db.Create(person).Error
}

func (r *personRepo) CreateParticipant(participant *models.Participant) error {
	return r.db.Create(participant).Error
}

func (r *personRepo) CreateMentor(mentor *models.Mentor) error {
	return r.db.Create(mentor).Error
}

func (r *personRepo) GetPersonByID(id string) (*models.Person, error) {
	var person models.Person
	if err := r.db.
		Preload("Participant").Preload("Mentor").Preload("Sponsor").
		Preload("DietaryRestrictions").
		Where("id = ?", id).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepo) GetPersonByEmail(email string) (*models.Person, error) {
	var person models.Person
	if err := r.db.
		Preload("Participant").Preload("Mentor").Preload("Sponsor").
		Preload("DietaryRestrictions").
		Where("email = ?", email).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepo) GetPersonByBadgeCode(code string) (*models.Person, error) {
	var person models.Person
	if err := r.db.
		Preload("Participant").Preload("Mentor").Preload("Sponsor").
		Where("badge_code = ?", code).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepo) UpdatePerson(person *models.Person) error {
	return r.db.Save(person).Error
}

func (r *personRepo) ListPeople(offset, limit int) ([]models.Person, int64, error) {
	var people []models.Person
	var total int64

	if err := r.db.Model(&models.Person{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Preload("Participant").Preload("Mentor").Preload("Sponsor").
		Order("accepted_at DESC NULLS LAST, registered_at ASC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	if err := query.Find(&people).Error; err != nil {
		return nil, 0, err
	}

	return people, total, nil
}

// ListAwaitingConfirmation returns the accepted people who have neither
// confirmed nor rejected their seat yet.
func (r *personRepo) ListAwaitingConfirmation() ([]models.Person, error) {
	var people []models.Person
	if err := r.db.
		Where("accepted_at IS NOT NULL AND confirmed_at IS NULL AND rejected_at IS NULL").
		Order("registered_at ASC").
		Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func (r *personRepo) DistinctParticipantFieldValues(field string) ([]string, error) {
	column, ok := normalizableFields[field]
	if !ok {
		return nil, fmt.Errorf("field '%s' cannot be normalized", field)
	}

	var values []string
	if err := r.db.Model(&models.Participant{}).
		Distinct(column).
		Order(column + " ASC").
		Pluck(column, &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

func (r *personRepo) NormalizeParticipantField(field string, originals []string, replacement string) (int64, error) {
	column, ok := normalizableFields[field]
	if !ok {
		return 0, fmt.Errorf("field '%s' cannot be normalized", field)
	}
	if len(originals) == 0 {
		return 0, errors.New("no original values given")
	}

	result := r.db.Model(&models.Participant{}).
		Where(column+" IN ?", originals).
		Update(column, replacement)
	return result.RowsAffected, result.Error
}

func (r *personRepo) Transaction(txFunc func(*gorm.DB) error) error {
	return r.db.Transaction(txFunc)
}
