package repositories

import (
	"time"

	"hackathon-management-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	DB           *gorm.DB
	PersonRepo   PersonRepository
	TokenRepo    TokenRepository
	PresenceRepo PresenceRepository
	PassRepo     PassRepository
	UserRepo     UserRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:           db,
		PersonRepo:   NewPersonRepository(db),
		TokenRepo:    NewTokenRepository(db),
		PresenceRepo: NewPresenceRepository(db),
		PassRepo:     NewPassRepository(db),
		UserRepo:     NewUserRepository(db),
	}
}

func AutoMigrate(db *gorm.DB) error {
	// Enable UUID extension
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	// Migrate models
	return db.AutoMigrate(
		&models.User{},
		&models.DietaryRestriction{},
		&models.Person{},
		&models.Participant{},
		&models.Mentor{},
		&models.Sponsor{},
		&models.Token{},
		&models.Presence{},
		&models.PassType{},
		&models.Pass{},
	)
}

// Interface definitions
type UserRepository interface {
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
}

type PersonRepository interface {
	CreatePerson(person *models.Person) error
	CreateParticipant(participant *models.Participant) error
	CreateMentor(mentor *models.Mentor) error
	GetPersonByID(id string) (*models.Person, error)
	GetPersonByEmail(email string) (*models.Person, error)
	GetPersonByBadgeCode(code string) (*models.Person, error)
	UpdatePerson(person *models.Person) error
	ListPeople(offset, limit int) ([]models.Person, int64, error)
	ListAwaitingConfirmation() ([]models.Person, error)

	// Normalization over the closed set of free-text categorical participant
	// fields (study_program, study_center, course_year, city).
	DistinctParticipantFieldValues(field string) ([]string, error)
	NormalizeParticipantField(field string, originals []string, replacement string) (int64, error)

	Transaction(txFunc func(*gorm.DB) error) error
}

type TokenRepository interface {
	CreateToken(token *models.Token) error
	UpdateToken(token *models.Token) error
	GetUnusedToken(personID uuid.UUID, kind string) (*models.Token, error)
	GetTokenByValue(value, kind string) (*models.Token, error)

	// MarkUsed is a conditional update: it reports whether this call consumed
	// the token, so two concurrent redemptions cannot both win.
	MarkUsed(tokenID uuid.UUID, usedAt time.Time) (bool, error)

	HasUnusedToken(personIDs []uuid.UUID, kind string) (int64, error)
}

type PresenceRepository interface {
	CreatePresence(presence *models.Presence) error
	UpdatePresence(presence *models.Presence) error
	GetPresenceByID(id string) (*models.Presence, error)
	GetLatestPresence(personID uuid.UUID) (*models.Presence, error)
	ListPresencesByPerson(personID uuid.UUID) ([]models.Presence, error)
}

type PassRepository interface {
	CreatePassType(passType *models.PassType) error
	GetPassTypeByID(id string) (*models.PassType, error)
	ListPassTypes() ([]models.PassType, error)
	HasIssuablePassType(now time.Time) (bool, error)

	CreatePass(pass *models.Pass) error
	CountPasses(personID, passTypeID uuid.UUID) (int64, error)
	ListPassesByPerson(personID uuid.UUID) ([]models.Pass, error)
}
