package services

import (
	"errors"
	"fmt"
	"time"

	"hackathon-management-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. They model just enough behavior for the
// services under test, including gorm's record-not-found sentinel.

type stubPersonRepo struct {
	people    map[string]*models.Person // keyed by email
	updateErr error
}

func newStubPersonRepo(people ...*models.Person) *stubPersonRepo {
	repo := &stubPersonRepo{people: make(map[string]*models.Person)}
	for _, p := range people {
		repo.people[p.Email] = p
	}
	return repo
}

func (r *stubPersonRepo) CreatePerson(p *models.Person) error {
	r.people[p.Email] = p
	return nil
}

func (r *stubPersonRepo) CreateParticipant(*models.Participant) error { return nil }
func (r *stubPersonRepo) CreateMentor(*models.Mentor) error           { return nil }

func (r *stubPersonRepo) GetPersonByID(id string) (*models.Person, error) {
	for _, p := range r.people {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPersonRepo) GetPersonByEmail(email string) (*models.Person, error) {
	if p, ok := r.people[email]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPersonRepo) GetPersonByBadgeCode(code string) (*models.Person, error) {
	for _, p := range r.people {
		if p.BadgeCode != nil && *p.BadgeCode == code {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPersonRepo) UpdatePerson(p *models.Person) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.people[p.Email] = p
	return nil
}

func (r *stubPersonRepo) ListPeople(offset, limit int) ([]models.Person, int64, error) {
	var out []models.Person
	for _, p := range r.people {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPersonRepo) ListAwaitingConfirmation() ([]models.Person, error) {
	var out []models.Person
	for _, p := range r.people {
		if p.AcceptedAt != nil && !p.Finalized() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPersonRepo) DistinctParticipantFieldValues(string) ([]string, error) {
	return nil, errors.New("not supported")
}

func (r *stubPersonRepo) NormalizeParticipantField(string, []string, string) (int64, error) {
	return 0, errors.New("not supported")
}

func (r *stubPersonRepo) Transaction(func(*gorm.DB) error) error {
	return errors.New("not supported")
}

type stubTokenRepo struct {
	tokens map[uuid.UUID]*models.Token
}

func newStubTokenRepo(tokens ...*models.Token) *stubTokenRepo {
	repo := &stubTokenRepo{tokens: make(map[uuid.UUID]*models.Token)}
	for _, t := range tokens {
		repo.tokens[t.ID] = t
	}
	return repo
}

func (r *stubTokenRepo) CreateToken(t *models.Token) error {
	r.tokens[t.ID] = t
	return nil
}

func (r *stubTokenRepo) UpdateToken(t *models.Token) error {
	if _, ok := r.tokens[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.tokens[t.ID] = t
	return nil
}

func (r *stubTokenRepo) GetUnusedToken(personID uuid.UUID, kind string) (*models.Token, error) {
	for _, t := range r.tokens {
		if t.PersonID == personID && t.Kind == kind && t.UsedAt == nil {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTokenRepo) GetTokenByValue(value, kind string) (*models.Token, error) {
	for _, t := range r.tokens {
		if t.Value == value && t.Kind == kind {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTokenRepo) MarkUsed(tokenID uuid.UUID, usedAt time.Time) (bool, error) {
	t, ok := r.tokens[tokenID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if t.UsedAt != nil {
		return false, nil
	}
	t.UsedAt = &usedAt
	return true, nil
}

func (r *stubTokenRepo) HasUnusedToken(personIDs []uuid.UUID, kind string) (int64, error) {
	var count int64
	for _, t := range r.tokens {
		if t.Kind != kind || t.UsedAt != nil {
			continue
		}
		for _, id := range personIDs {
			if t.PersonID == id {
				count++
				break
			}
		}
	}
	return count, nil
}

type stubPresenceRepo struct {
	presences []*models.Presence
}

func (r *stubPresenceRepo) CreatePresence(p *models.Presence) error {
	r.presences = append(r.presences, p)
	return nil
}

func (r *stubPresenceRepo) UpdatePresence(p *models.Presence) error {
	for i, existing := range r.presences {
		if existing.ID == p.ID {
			r.presences[i] = p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPresenceRepo) GetPresenceByID(id string) (*models.Presence, error) {
	for _, p := range r.presences {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPresenceRepo) GetLatestPresence(personID uuid.UUID) (*models.Presence, error) {
	for i := len(r.presences) - 1; i >= 0; i-- {
		if r.presences[i].PersonID == personID {
			return r.presences[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPresenceRepo) ListPresencesByPerson(personID uuid.UUID) ([]models.Presence, error) {
	var out []models.Presence
	for _, p := range r.presences {
		if p.PersonID == personID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type stubPassRepo struct {
	types  []*models.PassType
	passes []*models.Pass
}

func (r *stubPassRepo) CreatePassType(t *models.PassType) error {
	r.types = append(r.types, t)
	return nil
}

func (r *stubPassRepo) GetPassTypeByID(id string) (*models.PassType, error) {
	for _, t := range r.types {
		if t.ID.String() == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPassRepo) ListPassTypes() ([]models.PassType, error) {
	var out []models.PassType
	for _, t := range r.types {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubPassRepo) HasIssuablePassType(now time.Time) (bool, error) {
	for _, t := range r.types {
		if t.Issuable(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPassRepo) CreatePass(p *models.Pass) error {
	r.passes = append(r.passes, p)
	return nil
}

func (r *stubPassRepo) CountPasses(personID, passTypeID uuid.UUID) (int64, error) {
	var count int64
	for _, p := range r.passes {
		if p.PersonID == personID && p.PassTypeID == passTypeID {
			count++
		}
	}
	return count, nil
}

func (r *stubPassRepo) ListPassesByPerson(personID uuid.UUID) ([]models.Pass, error) {
	var out []models.Pass
	for _, p := range r.passes {
		if p.PersonID == personID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// stubMailer counts deliveries per kind and can be told to fail.
type stubMailer struct {
	verification int
	verified     int
	confirmation int
	failFor      map[string]bool // emails whose sends fail
}

func (m *stubMailer) fail(email string) {
	if m.failFor == nil {
		m.failFor = make(map[string]bool)
	}
	m.failFor[email] = true
}

func (m *stubMailer) SendVerification(p *models.Person, _ *models.Token) error {
	if m.failFor[p.Email] {
		return fmt.Errorf("relay refused %s", p.Email)
	}
	m.verification++
	return nil
}

func (m *stubMailer) SendVerified(p *models.Person) error {
	if m.failFor[p.Email] {
		return fmt.Errorf("relay refused %s", p.Email)
	}
	m.verified++
	return nil
}

func (m *stubMailer) SendConfirmation(p *models.Person, _ *models.Token) error {
	if m.failFor[p.Email] {
		return fmt.Errorf("relay refused %s", p.Email)
	}
	m.confirmation++
	return nil
}

type stubUserRepo struct {
	users map[string]*models.User
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.ID.String()] = u
	}
	return repo
}

func (r *stubUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetUserByID(id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) CreateUser(u *models.User) error {
	r.users[u.ID.String()] = u
	return nil
}

func (r *stubUserRepo) UpdateUser(u *models.User) error {
	if _, ok := r.users[u.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[u.ID.String()] = u
	return nil
}
