package services

import (
	"context"
	"errors"
	"time"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/mailer"
	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// LifecycleService drives the participant lifecycle:
// REGISTERED -> EMAIL_VERIFIED -> ACCEPTED -> CONFIRMED | REJECTED.
// Every transition is gated either by a token or by staff action, and each
// failure kind is distinguishable so users see a specific explanation.
type LifecycleService struct {
	people   repositories.PersonRepository
	tokens   repositories.TokenRepository
	tokenSvc *TokenService
	mail     mailer.Sender
	cfg      *config.Config
}

func NewLifecycleService(
	people repositories.PersonRepository,
	tokens repositories.TokenRepository,
	tokenSvc *TokenService,
	mail mailer.Sender,
	cfg *config.Config,
) *LifecycleService {
	return &LifecycleService{
		people:   people,
		tokens:   tokens,
		tokenSvc: tokenSvc,
		mail:     mail,
		cfg:      cfg,
	}
}

// releaseToken un-consumes a token after a failed state write so the same
// link stays usable for a retry.
func (s *LifecycleService) releaseToken(token *models.Token) {
	token.UsedAt = nil
	if err := s.tokens.UpdateToken(token); err != nil {
		logrus.WithError(err).WithField("token_id", token.ID).
			Error("Failed to release token after aborted transition")
	}
}

type VerifyEmailResult struct {
	Person          *models.Person `json:"person"`
	AlreadyVerified bool           `json:"already_verified"`
}

// VerifyEmail redeems a verification token and advances the person to
// EMAIL_VERIFIED. Re-visiting the link after verification re-displays the
// confirmation without a second notification; malformed, unknown and expired
// tokens each surface their own error code.
func (s *LifecycleService) VerifyEmail(tokenValue string) (*VerifyEmailResult, error) {
	token, err := s.tokenSvc.Redeem(tokenValue, models.TokenVerification)
	if err != nil {
		return nil, err
	}

	person := &token.Person
	if person.EmailVerifiedAt != nil {
		return &VerifyEmailResult{Person: person, AlreadyVerified: true}, nil
	}

	now := time.Now()
	if !token.Valid(now) {
		return nil, NewWorkflowError("verification token has expired", ErrExpiredToken, nil)
	}

	consumed, err := s.tokenSvc.MarkUsed(token, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// A concurrent redemption of the same value won; the transition is done.
		return &VerifyEmailResult{Person: person, AlreadyVerified: true}, nil
	}

	snapshot := *person
	if err := person.Transition(models.StatusEmailVerified, now); err != nil {
		s.releaseToken(token)
		return nil, NewWorkflowError("person cannot verify in its current state", ErrNotEligible, err)
	}
	if err := s.people.UpdatePerson(person); err != nil {
		*person = snapshot
		s.releaseToken(token)
		return nil, NewWorkflowError("failed to update person", ErrDatabaseError, err)
	}

	// Fire-and-forget notification; delivery failure never rolls the state back.
	if err := s.mail.SendVerified(person); err != nil {
		logrus.WithError(err).WithField("email", person.Email).
			Error("Failed to send verification-success notification")
	}

	logrus.WithField("email", person.Email).Info("Email verified")
	return &VerifyEmailResult{Person: person}, nil
}

// AcceptResult groups the per-row outcomes of a bulk acceptance. The action is
// never all-or-nothing: eligible rows transition even when others fail.
type AcceptResult struct {
	Accepted        []string `json:"accepted"`
	AlreadyAccepted []string `json:"already_accepted"`
	Unverified      []string `json:"unverified"`
	NotFound        []string `json:"not_found"`
}

// AcceptPersons marks each verified, not-yet-accepted person as accepted.
func (s *LifecycleService) AcceptPersons(emails []string) (*AcceptResult, error) {
	if len(emails) == 0 {
		return nil, NewWorkflowError("no emails given", ErrInvalidInput, nil)
	}

	result := &AcceptResult{}
	now := time.Now()

	for _, email := range emails {
		person, err := s.people.GetPersonByEmail(email)
		if err != nil {
			result.NotFound = append(result.NotFound, email)
			continue
		}
		if person.AcceptedAt != nil {
			result.AlreadyAccepted = append(result.AlreadyAccepted, email)
			continue
		}
		if person.EmailVerifiedAt == nil {
			result.Unverified = append(result.Unverified, email)
			continue
		}

		if err := person.Transition(models.StatusAccepted, now); err != nil {
			result.Unverified = append(result.Unverified, email)
			continue
		}
		if err := s.people.UpdatePerson(person); err != nil {
			logrus.WithError(err).WithField("email", email).Error("Failed to persist acceptance")
			result.NotFound = append(result.NotFound, email)
			continue
		}
		result.Accepted = append(result.Accepted, email)
	}

	logrus.WithFields(logrus.Fields{
		"accepted":   len(result.Accepted),
		"already":    len(result.AlreadyAccepted),
		"unverified": len(result.Unverified),
		"not_found":  len(result.NotFound),
	}).Info("Bulk acceptance finished")

	return result, nil
}

type SeatResult struct {
	Person           *models.Person `json:"person"`
	AlreadyFinalized bool           `json:"already_finalized"`
}

// ConfirmSeat finalizes the lifecycle as CONFIRMED.
func (s *LifecycleService) ConfirmSeat(tokenValue string) (*SeatResult, error) {
	return s.finalizeSeat(tokenValue, models.StatusConfirmed)
}

// RejectSeat finalizes the lifecycle as REJECTED.
func (s *LifecycleService) RejectSeat(tokenValue string) (*SeatResult, error) {
	return s.finalizeSeat(tokenValue, models.StatusRejected)
}

// SeatStatus resolves a confirmation token for display without consuming it.
func (s *LifecycleService) SeatStatus(tokenValue string) (*SeatResult, error) {
	token, err := s.tokenSvc.Redeem(tokenValue, models.TokenConfirmation)
	if err != nil {
		return nil, err
	}
	person := &token.Person
	return &SeatResult{Person: person, AlreadyFinalized: person.Finalized()}, nil
}

func (s *LifecycleService) finalizeSeat(tokenValue, to string) (*SeatResult, error) {
	token, err := s.tokenSvc.Redeem(tokenValue, models.TokenConfirmation)
	if err != nil {
		return nil, err
	}

	person := &token.Person
	if person.Finalized() {
		// Informational: the decision already happened, token validity is moot.
		return &SeatResult{Person: person, AlreadyFinalized: true}, nil
	}

	now := time.Now()
	// A still-pending decision requires a live token. Expired tokens do not
	// finalize seats; the person has to ask for a fresh link.
	if !token.Valid(now) {
		return nil, NewWorkflowError("confirmation token has expired", ErrExpiredToken, nil)
	}

	consumed, err := s.tokenSvc.MarkUsed(token, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return &SeatResult{Person: person, AlreadyFinalized: true}, nil
	}

	snapshot := *person
	if err := person.Transition(to, now); err != nil {
		s.releaseToken(token)
		return nil, NewWorkflowError("person cannot finalize in its current state", ErrNotEligible, err)
	}
	if err := s.people.UpdatePerson(person); err != nil {
		*person = snapshot
		s.releaseToken(token)
		return nil, NewWorkflowError("failed to update person", ErrDatabaseError, err)
	}

	logrus.WithFields(logrus.Fields{"email": person.Email, "decision": to}).Info("Seat finalized")
	return &SeatResult{Person: person}, nil
}

// ResendConfirmation reissues (or extends) the confirmation token for one
// person and re-sends the mail. A zero expiresAt selects the default lifetime.
func (s *LifecycleService) ResendConfirmation(email string, expiresAt time.Time) error {
	person, err := s.people.GetPersonByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewWorkflowError("no person with that email", ErrNotFound, err)
		}
		return NewWorkflowError("failed to look up person", ErrDatabaseError, err)
	}
	if person.AcceptedAt == nil {
		return NewWorkflowError("person has not been accepted", ErrNotEligible, nil)
	}
	if person.Finalized() {
		return NewWorkflowError("seat already confirmed or rejected", ErrAlreadyFinalized, nil)
	}

	token, err := s.tokenSvc.IssueOrRenew(person, models.TokenConfirmation, expiresAt)
	if err != nil {
		return err
	}
	if err := s.mail.SendConfirmation(person, token); err != nil {
		return NewWorkflowError("failed to send confirmation mail", ErrEmailDelivery, err)
	}
	return nil
}

// BulkMailReport summarizes one bulk confirmation dispatch.
type BulkMailReport struct {
	Planned        []string `json:"planned,omitempty"`
	Sent           []string `json:"sent"`
	Failed         []string `json:"failed"`
	ExistingTokens int64    `json:"existing_tokens"`
	Halted         bool     `json:"halted"`
}

// SendConfirmations mails a confirmation link to every accepted-but-pending
// person. Sends are throttled against the mail relay and the whole run halts
// once the error budget is exhausted.
func (s *LifecycleService) SendConfirmations(ctx context.Context, expiresAt time.Time, dryRun bool) (*BulkMailReport, error) {
	if !expiresAt.IsZero() && expiresAt.Before(time.Now()) {
		return nil, NewWorkflowError("expiry date is in the past", ErrInvalidExpiry, nil)
	}

	people, err := s.people.ListAwaitingConfirmation()
	if err != nil {
		return nil, NewWorkflowError("failed to list pending people", ErrDatabaseError, err)
	}

	report := &BulkMailReport{}

	ids := make([]uuid.UUID, 0, len(people))
	for i := range people {
		ids = append(ids, people[i].ID)
	}
	if len(ids) > 0 {
		if existing, err := s.tokens.HasUnusedToken(ids, models.TokenConfirmation); err == nil {
			report.ExistingTokens = existing
		}
	}

	if dryRun {
		for i := range people {
			report.Planned = append(report.Planned, people[i].Email)
		}
		return report, nil
	}

	perSecond := s.cfg.Mail.MessagesPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	maxErrors := s.cfg.Mail.MaxErrors
	if maxErrors <= 0 {
		maxErrors = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), perSecond)

	for i := range people {
		person := &people[i]

		if err := limiter.Wait(ctx); err != nil {
			report.Halted = true
			return report, NewWorkflowError("bulk send cancelled", ErrEmailDelivery, err)
		}

		token, err := s.tokenSvc.IssueOrRenew(person, models.TokenConfirmation, expiresAt)
		if err == nil {
			err = s.mail.SendConfirmation(person, token)
		}
		if err != nil {
			logrus.WithError(err).WithField("email", person.Email).Error("Failed to send confirmation mail")
			report.Failed = append(report.Failed, person.Email)
			if len(report.Failed) >= maxErrors {
				report.Halted = true
				break
			}
			continue
		}
		report.Sent = append(report.Sent, person.Email)
	}

	return report, nil
}
