package repositories

import (
	"time"

	"hackathon-management-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tokenRepo struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) CreateToken(token *models.Token) error {
	return r.db.Create(token).Error
}

func (r *tokenRepo) UpdateToken(token *models.Token) error {
	return r.db.Save(token).Error
}

func (r *tokenRepo) GetUnusedToken(personID uuid.UUID, kind string) (*models.Token, error) {
	var token models.Token
	if err := r.db.
		Where("person_id = ? AND kind = ? AND used_at IS NULL", personID, kind).
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepo) GetTokenByValue(value, kind string) (*models.Token, error) {
	var token models.Token
	if err := r.db.Preload("Person").
		Where("value = ? AND kind = ?", value, kind).
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkUsed consumes the token only if it is still unconsumed. The conditional
// WHERE closes the race between two concurrent redemptions of the same value.
func (r *tokenRepo) MarkUsed(tokenID uuid.UUID, usedAt time.Time) (bool, error) {
	result := r.db.Model(&models.Token{}).
		Where("id = ? AND used_at IS NULL", tokenID).
		Update("used_at", usedAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *tokenRepo) HasUnusedToken(personIDs []uuid.UUID, kind string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Token{}).
		Where("person_id IN ? AND kind = ? AND used_at IS NULL", personIDs, kind).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
