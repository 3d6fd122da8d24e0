package repositories

import (
	"hackathon-management-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type presenceRepo struct {
	db *gorm.DB
}

func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &presenceRepo{db: db}
}

func (r *presenceRepo) CreatePresence(presence *models.Presence) error {
	return r.db.Create(presence).Error
}

func (r *presenceRepo) UpdatePresence(presence *models.Presence) error {
	return r.db.Save(presence).Error
}

func (r *presenceRepo) GetPresenceByID(id string) (*models.Presence, error) {
	var presence models.Presence
	if err := r.db.Where("id = ?", id).First(&presence).Error; err != nil {
		return nil, err
	}
	return &presence, nil
}

// GetLatestPresence returns the most recent presence by entry time. Degenerate
// exit-only rows sort last so an open interval is always found first.
func (r *presenceRepo) GetLatestPresence(personID uuid.UUID) (*models.Presence, error) {
	var presence models.Presence
	if err := r.db.
		Where("person_id = ?", personID).
		Order("entry_at DESC NULLS LAST").
		First(&presence).Error; err != nil {
		return nil, err
	}
	return &presence, nil
}

func (r *presenceRepo) ListPresencesByPerson(personID uuid.UUID) ([]models.Presence, error) {
	var presences []models.Presence
	if err := r.db.
		Where("person_id = ?", personID).
		Order("entry_at DESC NULLS LAST").
		Find(&presences).Error; err != nil {
		return nil, err
	}
	return presences, nil
}
