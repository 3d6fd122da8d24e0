package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/models"

	"github.com/google/uuid"
)

func testConfig() *config.Config {
	return &config.Config{
		Mail: config.MailConfig{
			MessagesPerSecond: 100,
			MaxErrors:         2,
		},
	}
}

func newLifecycleFixture(people *stubPersonRepo, tokens *stubTokenRepo, mail *stubMailer) *LifecycleService {
	return NewLifecycleService(people, tokens, NewTokenService(tokens), mail, testConfig())
}

func verificationToken(person *models.Person, expiresAt time.Time) *models.Token {
	return &models.Token{
		ID:        uuid.New(),
		PersonID:  person.ID,
		Value:     uuid.NewString(),
		Kind:      models.TokenVerification,
		ExpiresAt: expiresAt,
		Person:    *person,
	}
}

func confirmationToken(person *models.Person, expiresAt time.Time) *models.Token {
	return &models.Token{
		ID:        uuid.New(),
		PersonID:  person.ID,
		Value:     uuid.NewString(),
		Kind:      models.TokenConfirmation,
		ExpiresAt: expiresAt,
		Person:    *person,
	}
}

func registeredPerson(email string) *models.Person {
	return &models.Person{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test Person",
		Role:         models.RoleParticipant,
		Status:       models.StatusRegistered,
		RegisteredAt: time.Now().Add(-time.Hour),
	}
}

func TestVerifyEmailAdvancesLifecycle(t *testing.T) {
	person := registeredPerson("ada@example.org")
	token := verificationToken(person, time.Now().Add(time.Hour))
	people := newStubPersonRepo(person)
	mail := &stubMailer{}
	svc := newLifecycleFixture(people, newStubTokenRepo(token), mail)

	result, err := svc.VerifyEmail(token.Value)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if result.AlreadyVerified {
		t.Error("first verification must not report already-verified")
	}
	if result.Person.EmailVerifiedAt == nil {
		t.Fatal("EmailVerifiedAt not set")
	}
	if result.Person.Status != models.StatusEmailVerified {
		t.Errorf("status = %s, want %s", result.Person.Status, models.StatusEmailVerified)
	}
	if token.UsedAt == nil {
		t.Error("token must be consumed")
	}
	if mail.verified != 1 {
		t.Errorf("verified notifications = %d, want 1", mail.verified)
	}
}

func TestVerifyEmailExpiredBySecondLeavesStateUntouched(t *testing.T) {
	person := registeredPerson("ada@example.org")
	token := verificationToken(person, time.Now().Add(-time.Second))
	svc := newLifecycleFixture(newStubPersonRepo(person), newStubTokenRepo(token), &stubMailer{})

	_, err := svc.VerifyEmail(token.Value)
	if GetWorkflowErrorCode(err) != ErrExpiredToken {
		t.Fatalf("error code = %v, want %v", GetWorkflowErrorCode(err), ErrExpiredToken)
	}
	if person.EmailVerifiedAt != nil {
		t.Error("expired redemption must not verify the person")
	}
	if token.UsedAt != nil {
		t.Error("expired redemption must not consume the token")
	}
}

func TestVerifyEmailRevisitIsIdempotent(t *testing.T) {
	person := registeredPerson("ada@example.org")
	verifiedAt := time.Now().Add(-time.Minute)
	person.Status = models.StatusEmailVerified
	person.EmailVerifiedAt = &verifiedAt

	token := verificationToken(person, time.Now().Add(time.Hour))
	token.UsedAt = &verifiedAt
	mail := &stubMailer{}
	svc := newLifecycleFixture(newStubPersonRepo(person), newStubTokenRepo(token), mail)

	result, err := svc.VerifyEmail(token.Value)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !result.AlreadyVerified {
		t.Error("revisit must report already-verified")
	}
	if mail.verified != 0 {
		t.Error("revisit must not send a second notification")
	}
}

func TestAcceptPersonsGroupsOutcomes(t *testing.T) {
	now := time.Now()

	verified := registeredPerson("verified@example.org")
	verified.Status = models.StatusEmailVerified
	verified.EmailVerifiedAt = &now

	accepted := registeredPerson("accepted@example.org")
	accepted.Status = models.StatusAccepted
	accepted.EmailVerifiedAt = &now
	accepted.AcceptedAt = &now

	unverified := registeredPerson("unverified@example.org")

	people := newStubPersonRepo(verified, accepted, unverified)
	svc := newLifecycleFixture(people, newStubTokenRepo(), &stubMailer{})

	result, err := svc.AcceptPersons([]string{
		"verified@example.org",
		"accepted@example.org",
		"unverified@example.org",
		"ghost@example.org",
	})
	if err != nil {
		t.Fatalf("AcceptPersons: %v", err)
	}

	if len(result.Accepted) != 1 || result.Accepted[0] != "verified@example.org" {
		t.Errorf("Accepted = %v", result.Accepted)
	}
	if len(result.AlreadyAccepted) != 1 || result.AlreadyAccepted[0] != "accepted@example.org" {
		t.Errorf("AlreadyAccepted = %v", result.AlreadyAccepted)
	}
	if len(result.Unverified) != 1 || result.Unverified[0] != "unverified@example.org" {
		t.Errorf("Unverified = %v", result.Unverified)
	}
	if len(result.NotFound) != 1 || result.NotFound[0] != "ghost@example.org" {
		t.Errorf("NotFound = %v", result.NotFound)
	}
	if verified.AcceptedAt == nil {
		t.Error("eligible person must carry AcceptedAt after the bulk run")
	}
}

func acceptedPerson(email string) *models.Person {
	now := time.Now().Add(-time.Hour)
	p := registeredPerson(email)
	p.Status = models.StatusAccepted
	p.EmailVerifiedAt = &now
	p.AcceptedAt = &now
	return p
}

func TestConfirmSeatSetsConfirmedOnly(t *testing.T) {
	person := acceptedPerson("ada@example.org")
	token := confirmationToken(person, time.Now().Add(time.Hour))
	svc := newLifecycleFixture(newStubPersonRepo(person), newStubTokenRepo(token), &stubMailer{})

	result, err := svc.ConfirmSeat(token.Value)
	if err != nil {
		t.Fatalf("ConfirmSeat: %v", err)
	}
	if result.Person.ConfirmedAt == nil {
		t.Fatal("ConfirmedAt not set")
	}
	if result.Person.RejectedAt != nil {
		t.Error("a confirmed seat must not also be rejected")
	}
	if result.Person.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want %s", result.Person.Status, models.StatusConfirmed)
	}
}

func TestRejectSeatSetsRejectedOnly(t *testing.T) {
	person := acceptedPerson("ada@example.org")
	token := confirmationToken(person, time.Now().Add(time.Hour))
	svc := newLifecycleFixture(newStubPersonRepo(person), newStubTokenRepo(token), &stubMailer{})

	result, err := svc.RejectSeat(token.Value)
	if err != nil {
		t.Fatalf("RejectSeat: %v", err)
	}
	if result.Person.RejectedAt == nil {
		t.Fatal("RejectedAt not set")
	}
	if result.Person.ConfirmedAt != nil {
		t.Error("a rejected seat must not also be confirmed")
	}
}

func TestFinalizeAfterDecisionIsInformational(t *testing.T) {
	person := acceptedPerson("ada@example.org")
	decidedAt := time.Now().Add(-time.Minute)
	person.Status = models.StatusConfirmed
	person.ConfirmedAt = &decidedAt

	// Even an expired, consumed token still shows the decision.
	token := confirmationToken(person, time.Now().Add(-time.Hour))
	token.UsedAt = &decidedAt
	svc := newLifecycleFixture(newStubPersonRepo(person), newStubTokenRepo(token), &stubMailer{})

	result, err := svc.ConfirmSeat(token.Value)
	if err != nil {
		t.Fatalf("ConfirmSeat: %v", err)
	}
	if !result.AlreadyFinalized {
		t.Error("finalized person must report already-finalized")
	}
}

func TestFinalizeExpiredPendingSeatFails(t *testing.T) {
	person := acceptedPerson("ada@example.org")
	token := confirmationToken(person, time.Now().Add(-time.Second))
	svc := newLifecycleFixture(newStubPersonRepo(person), newStubTokenRepo(token), &stubMailer{})

	_, err := svc.ConfirmSeat(token.Value)
	if GetWorkflowErrorCode(err) != ErrExpiredToken {
		t.Fatalf("error code = %v, want %v", GetWorkflowErrorCode(err), ErrExpiredToken)
	}
	if person.ConfirmedAt != nil {
		t.Error("expired token must not finalize a pending seat")
	}
}

func TestResendConfirmationRequiresAcceptance(t *testing.T) {
	person := registeredPerson("ada@example.org")
	svc := newLifecycleFixture(newStubPersonRepo(person), newStubTokenRepo(), &stubMailer{})

	err := svc.ResendConfirmation("ada@example.org", time.Time{})
	if GetWorkflowErrorCode(err) != ErrNotEligible {
		t.Fatalf("error code = %v, want %v", GetWorkflowErrorCode(err), ErrNotEligible)
	}
}

func TestSendConfirmationsDryRunSendsNothing(t *testing.T) {
	people := newStubPersonRepo(
		acceptedPerson("one@example.org"),
		acceptedPerson("two@example.org"),
	)
	mail := &stubMailer{}
	svc := newLifecycleFixture(people, newStubTokenRepo(), mail)

	report, err := svc.SendConfirmations(context.Background(), time.Time{}, true)
	if err != nil {
		t.Fatalf("SendConfirmations: %v", err)
	}
	if len(report.Planned) != 2 {
		t.Errorf("planned = %d, want 2", len(report.Planned))
	}
	if mail.confirmation != 0 {
		t.Errorf("dry run sent %d mails", mail.confirmation)
	}
}

func TestSendConfirmationsHaltsOnErrorBudget(t *testing.T) {
	mail := &stubMailer{}
	var targets []*models.Person
	for _, email := range []string{"a@example.org", "b@example.org", "c@example.org", "d@example.org"} {
		p := acceptedPerson(email)
		targets = append(targets, p)
		mail.fail(email)
	}
	svc := newLifecycleFixture(newStubPersonRepo(targets...), newStubTokenRepo(), mail)

	report, err := svc.SendConfirmations(context.Background(), time.Time{}, false)
	if err != nil {
		t.Fatalf("SendConfirmations: %v", err)
	}
	if !report.Halted {
		t.Error("run must halt once the error budget is spent")
	}
	// MaxErrors is 2 in the test config; the run stops there.
	if len(report.Failed) != 2 {
		t.Errorf("failed = %d, want 2", len(report.Failed))
	}
}

func TestVerifyEmailFailedWriteReleasesToken(t *testing.T) {
	person := registeredPerson("ada@example.org")
	token := verificationToken(person, time.Now().Add(time.Hour))
	people := newStubPersonRepo(person)
	people.updateErr = errors.New("connection reset")
	tokens := newStubTokenRepo(token)
	svc := newLifecycleFixture(people, tokens, &stubMailer{})

	_, err := svc.VerifyEmail(token.Value)
	if GetWorkflowErrorCode(err) != ErrDatabaseError {
		t.Fatalf("error code = %v, want %v", GetWorkflowErrorCode(err), ErrDatabaseError)
	}
	if tokens.tokens[token.ID].UsedAt != nil {
		t.Fatal("token stayed consumed after the failed write")
	}

	// The same link works once the store recovers.
	people.updateErr = nil
	result, err := svc.VerifyEmail(token.Value)
	if err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if result.AlreadyVerified {
		t.Error("retry short-circuited instead of performing the transition")
	}
	if tokens.tokens[token.ID].UsedAt == nil {
		t.Error("token not consumed by the successful retry")
	}
}

func TestConfirmSeatFailedWriteReleasesToken(t *testing.T) {
	person := acceptedPerson("ada@example.org")
	token := confirmationToken(person, time.Now().Add(time.Hour))
	people := newStubPersonRepo(person)
	people.updateErr = errors.New("connection reset")
	tokens := newStubTokenRepo(token)
	svc := newLifecycleFixture(people, tokens, &stubMailer{})

	_, err := svc.ConfirmSeat(token.Value)
	if GetWorkflowErrorCode(err) != ErrDatabaseError {
		t.Fatalf("error code = %v, want %v", GetWorkflowErrorCode(err), ErrDatabaseError)
	}
	if tokens.tokens[token.ID].UsedAt != nil {
		t.Fatal("token stayed consumed after the failed write")
	}

	people.updateErr = nil
	result, err := svc.ConfirmSeat(token.Value)
	if err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if result.AlreadyFinalized {
		t.Error("retry short-circuited instead of confirming")
	}
	if result.Person.ConfirmedAt == nil {
		t.Error("ConfirmedAt not set by the successful retry")
	}
}
