package services

import (
	"testing"
	"time"

	"hackathon-management-backend/internal/models"

	"github.com/google/uuid"
)

func TestGrantPassBeforeActivationFails(t *testing.T) {
	person := badgedPerson("ada@example.org", "B-001")
	passType := &models.PassType{ID: uuid.New(), Name: "Lunch", ValidFrom: time.Now().Add(time.Hour)}
	svc := NewPassService(newStubPersonRepo(person), &stubPassRepo{types: []*models.PassType{passType}})

	_, err := svc.GrantPass("B-001", passType.ID.String())
	if GetWorkflowErrorCode(err) != ErrNotEligible {
		t.Fatalf("error code = %v, want %v", GetWorkflowErrorCode(err), ErrNotEligible)
	}
}

func TestGrantPassRefusalNamesTheWindow(t *testing.T) {
	person := badgedPerson("ada@example.org", "B-001")
	pending := &models.PassType{ID: uuid.New(), Name: "Dinner", ValidFrom: time.Now().Add(time.Hour)}

	// Nothing grantable at all.
	svc := NewPassService(newStubPersonRepo(person), &stubPassRepo{types: []*models.PassType{pending}})
	_, err := svc.GrantPass("B-001", pending.ID.String())
	if wfErr, ok := err.(*WorkflowError); !ok || wfErr.Message != "no pass type is active yet" {
		t.Fatalf("error = %v, want the no-active-window message", err)
	}

	// Another type is already open, only the requested one is pending.
	active := &models.PassType{ID: uuid.New(), Name: "Lunch", ValidFrom: time.Now().Add(-time.Hour)}
	svc = NewPassService(newStubPersonRepo(person), &stubPassRepo{types: []*models.PassType{pending, active}})
	_, err = svc.GrantPass("B-001", pending.ID.String())
	if wfErr, ok := err.(*WorkflowError); !ok || wfErr.Message != "pass type is not active yet" {
		t.Fatalf("error = %v, want the type-specific message", err)
	}
}

func TestGrantPassRepeatCarriesNotice(t *testing.T) {
	person := badgedPerson("ada@example.org", "B-001")
	passType := &models.PassType{ID: uuid.New(), Name: "Lunch", ValidFrom: time.Now().Add(-time.Hour)}
	passes := &stubPassRepo{types: []*models.PassType{passType}}
	svc := NewPassService(newStubPersonRepo(person), passes)

	first, err := svc.GrantPass("B-001", passType.ID.String())
	if err != nil {
		t.Fatalf("first GrantPass: %v", err)
	}
	if first.Notice != "" {
		t.Errorf("first grant carried a notice: %q", first.Notice)
	}

	second, err := svc.GrantPass("B-001", passType.ID.String())
	if err != nil {
		t.Fatalf("second GrantPass: %v", err)
	}
	if second.Notice == "" {
		t.Error("repeat grant must carry a notice")
	}
	if len(passes.passes) != 2 {
		t.Errorf("pass rows = %d, want 2 (repeats are allowed)", len(passes.passes))
	}
}

func TestGrantPassUnknownBadge(t *testing.T) {
	passType := &models.PassType{ID: uuid.New(), Name: "Lunch", ValidFrom: time.Now().Add(-time.Hour)}
	svc := NewPassService(newStubPersonRepo(), &stubPassRepo{types: []*models.PassType{passType}})

	_, err := svc.GrantPass("B-404", passType.ID.String())
	if GetWorkflowErrorCode(err) != ErrNotFound {
		t.Fatalf("error code = %v, want %v", GetWorkflowErrorCode(err), ErrNotFound)
	}
}
