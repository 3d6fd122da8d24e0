package repositories

import (
	"time"

	"hackathon-management-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type passRepo struct {
	db *gorm.DB
}

func NewPassRepository(db *gorm.DB) PassRepository {
	return &passRepo{db: db}
}

func (r *passRepo) CreatePassType(passType *models.PassType) error {
	return r.db.Create(passType).Error
}

func (r *passRepo) GetPassTypeByID(id string) (*models.PassType, error) {
	var passType models.PassType
	if err := r.db.Where("id = ?", id).First(&passType).Error; err != nil {
		return nil, err
	}
	return &passType, nil
}

func (r *passRepo) ListPassTypes() ([]models.PassType, error) {
	var passTypes []models.PassType
	if err := r.db.Order("valid_from ASC").Find(&passTypes).Error; err != nil {
		return nil, err
	}
	return passTypes, nil
}

func (r *passRepo) HasIssuablePassType(now time.Time) (bool, error) {
	var count int64
	if err := r.db.Model(&models.PassType{}).
		Where("valid_from <= ?", now).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *passRepo) CreatePass(pass *models.Pass) error {
	return r.db.Create(pass).Error
}

// CountPasses counts the grants of one type a person already holds. Duplicates
// are allowed; the count only feeds the "repeat grant" notice at the desk.
func (r *passRepo) CountPasses(personID, passTypeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Pass{}).
		Where("person_id = ? AND pass_type_id = ?", personID, passTypeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *passRepo) ListPassesByPerson(personID uuid.UUID) ([]models.Pass, error) {
	var passes []models.Pass
	if err := r.db.Preload("PassType").
		Where("person_id = ?", personID).
		Order("issued_at DESC").
		Find(&passes).Error; err != nil {
		return nil, err
	}
	return passes, nil
}
