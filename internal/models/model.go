package models

import (
	"time"

	"github.com/google/uuid"
)

// Staff roles for back-office accounts.
const (
	UserRoleAdmin     = "admin"
	UserRoleOrganizer = "organizer"
	UserRoleStaff     = "staff"
)

// Person roles. Stored as an explicit discriminant rather than inferred from
// which extension row happens to exist.
const (
	RoleParticipant = "participant"
	RoleMentor      = "mentor"
	RoleSponsor     = "sponsor"
)

const (
	TokenVerification = "VERIFICATION"
	TokenConfirmation = "CONFIRMATION"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" json:"role"` // admin|organizer|staff
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Person is the base identity record shared by all role specializations.
// Lifecycle state is kept both as an explicit status column (validated at write
// time, see lifecycle.go) and as the four timestamps that serve as audit trail.
type Person struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Name        string    `gorm:"not null" json:"name"`
	NationalID  string    `json:"national_id"`
	Phone       string    `json:"phone"`
	TShirtSize  string    `gorm:"type:varchar(8)" json:"tshirt_size"`
	Notes       string    `gorm:"type:text" json:"notes"`
	Role        string    `gorm:"type:varchar(20);not null;default:'participant'" json:"role"`
	Status      string    `gorm:"type:varchar(20);not null;default:'REGISTERED'" json:"status"`

	// Short on-site identifier assigned at the check-in desk. Nil until then.
	BadgeCode *string `gorm:"uniqueIndex" json:"badge_code"`

	RegisteredAt    time.Time  `json:"registered_at"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	AcceptedAt      *time.Time `json:"accepted_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at"`
	RejectedAt      *time.Time `json:"rejected_at"`

	// Truncated reason of the last failed verification-mail delivery.
	EmailErrorReason string `gorm:"type:text" json:"-"`

	DietaryRestrictions []DietaryRestriction `gorm:"many2many:person_dietary_restrictions" json:"dietary_restrictions,omitempty"`
	DietaryNotes        string               `gorm:"type:text" json:"dietary_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Participant *Participant `gorm:"foreignKey:PersonID" json:"participant,omitempty"`
	Mentor      *Mentor      `gorm:"foreignKey:PersonID" json:"mentor,omitempty"`
	Sponsor     *Sponsor     `gorm:"foreignKey:PersonID" json:"sponsor,omitempty"`
	Tokens      []Token      `gorm:"foreignKey:PersonID" json:"-"`
	Presences   []Presence   `gorm:"foreignKey:PersonID" json:"presences,omitempty"`
	Passes      []Pass       `gorm:"foreignKey:PersonID" json:"passes,omitempty"`
}

type DietaryRestriction struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
}

type Participant struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PersonID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"person_id"`

	City         string `json:"city"`
	StudyLevel   string `json:"study_level"`
	StudyCenter  string `json:"study_center"`
	StudyProgram string `json:"study_program"`
	CourseYear   string `json:"course_year"`
	WantsCredits bool   `json:"wants_credits"`
	Motivation   string `gorm:"type:text" json:"motivation"`
	CVPath       string `json:"-"`
	ShareCV      bool   `json:"share_cv"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Mentor struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PersonID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"person_id"`

	Company   string `json:"company"`
	Expertise string `gorm:"type:text" json:"expertise"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Sponsor struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PersonID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"person_id"`

	Company string `json:"company"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Token is an opaque, single-use, expiring capability gating one lifecycle
// transition. At most one unused token per (person, kind) exists at a time;
// reissuing extends the existing one instead of creating a second row.
type Token struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PersonID uuid.UUID `gorm:"type:uuid;index;not null" json:"person_id"`
	Value    string    `gorm:"uniqueIndex;not null" json:"-"`
	Kind     string    `gorm:"type:varchar(20);not null" json:"kind"` // VERIFICATION|CONFIRMATION

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`

	Person Person `gorm:"foreignKey:PersonID" json:"-"`
}

// Valid reports whether the token can still be redeemed at the given instant.
func (t *Token) Valid(now time.Time) bool {
	return t.UsedAt == nil && !now.After(t.ExpiresAt)
}

func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Presence is one entry/exit attendance interval. Either end may be nil: an
// entry without exit is an open interval, an exit without entry is the
// degenerate record produced by a check-out with nothing to close.
type Presence struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PersonID uuid.UUID `gorm:"type:uuid;index;not null" json:"person_id"`

	EntryAt *time.Time `json:"entry_at"`
	ExitAt  *time.Time `json:"exit_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Person Person `gorm:"foreignKey:PersonID" json:"-"`
}

// Duration of the interval; open or degenerate intervals contribute zero.
func (p *Presence) Duration() time.Duration {
	if p.EntryAt == nil || p.ExitAt == nil {
		return 0
	}
	return p.ExitAt.Sub(*p.EntryAt)
}

// PassType is a named, time-gated category of pass (e.g. "Friday dinner").
type PassType struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	ValidFrom time.Time `gorm:"not null" json:"valid_from"`

	CreatedAt time.Time `json:"created_at"`
}

// Issuable reports whether passes of this type may currently be granted.
func (pt *PassType) Issuable(now time.Time) bool {
	return !now.Before(pt.ValidFrom)
}

// Pass is one granted instance of a PassType privilege. A person may hold the
// same type several times; meal passes are granted once per meal.
type Pass struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PersonID   uuid.UUID `gorm:"type:uuid;index;not null" json:"person_id"`
	PassTypeID uuid.UUID `gorm:"type:uuid;index;not null" json:"pass_type_id"`
	IssuedAt   time.Time `json:"issued_at"`

	Person   Person   `gorm:"foreignKey:PersonID" json:"-"`
	PassType PassType `gorm:"foreignKey:PassTypeID" json:"pass_type,omitempty"`
}
