package services

import (
	"errors"
	"time"

	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default token lifetimes, clamped to the end of the final day so recipients
// get the whole last day instead of a mid-afternoon cutoff.
const (
	verificationTokenDays = 7
	confirmationTokenDays = 14
)

// TokenService issues and redeems the opaque capability tokens gating the
// email-verification and seat-confirmation transitions.
type TokenService struct {
	tokens repositories.TokenRepository
}

func NewTokenService(tokens repositories.TokenRepository) *TokenService {
	return &TokenService{tokens: tokens}
}

// DefaultExpiry computes the standard lifetime for a token of the given kind.
func (s *TokenService) DefaultExpiry(kind string, now time.Time) time.Time {
	days := verificationTokenDays
	if kind == models.TokenConfirmation {
		days = confirmationTokenDays
	}
	return endOfDay(now.AddDate(0, 0, days))
}

func endOfDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 0, local.Location())
}

// IssueOrRenew returns the person's unused token of the given kind with its
// expiry pushed to expiresAt, creating a fresh token only when none exists.
// A zero expiresAt selects the kind's default lifetime.
func (s *TokenService) IssueOrRenew(person *models.Person, kind string, expiresAt time.Time) (*models.Token, error) {
	now := time.Now()
	if expiresAt.IsZero() {
		expiresAt = s.DefaultExpiry(kind, now)
	}
	if expiresAt.Before(now) {
		return nil, NewWorkflowError("expiry date is in the past", ErrInvalidExpiry, nil)
	}

	token, err := s.tokens.GetUnusedToken(person.ID, kind)
	if err == nil {
		token.ExpiresAt = expiresAt
		if err := s.tokens.UpdateToken(token); err != nil {
			return nil, NewWorkflowError("failed to renew token", ErrDatabaseError, err)
		}
		return token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewWorkflowError("failed to look up token", ErrDatabaseError, err)
	}

	token = &models.Token{
		ID:        uuid.New(),
		PersonID:  person.ID,
		Value:     uuid.NewString(),
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.CreateToken(token); err != nil {
		return nil, NewWorkflowError("failed to create token", ErrDatabaseError, err)
	}
	return token, nil
}

// Redeem looks a token up by its opaque value. It deliberately does not check
// validity: expired tokens get a different user-facing message than unknown
// ones, so the caller inspects Valid separately.
func (s *TokenService) Redeem(value, kind string) (*models.Token, error) {
	if _, err := uuid.Parse(value); err != nil {
		return nil, NewWorkflowError("malformed token", ErrInvalidToken, err)
	}

	token, err := s.tokens.GetTokenByValue(value, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("token not found", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to look up token", ErrDatabaseError, err)
	}
	return token, nil
}

// MarkUsed consumes the token. It reports whether this call won the conditional
// update; a false return means the token was already consumed, which callers
// treat as the transition having already happened.
func (s *TokenService) MarkUsed(token *models.Token, now time.Time) (bool, error) {
	consumed, err := s.tokens.MarkUsed(token.ID, now)
	if err != nil {
		return false, NewWorkflowError("failed to consume token", ErrDatabaseError, err)
	}
	if consumed {
		token.UsedAt = &now
	}
	return consumed, nil
}
